package taskgraph

import "fmt"

// Cluster is the ordered set of workers known to the engine. The order is
// stable: placement decisions (round-robin and otherwise) depend on it.
type Cluster struct {
	workers []string
}

// NewCluster creates a cluster of n synthetic workers named
// worker-0 … worker-(n-1). A non-positive n yields a single worker.
func NewCluster(n int) *Cluster {
	if n < 1 {
		n = 1
	}
	workers := make([]string, n)
	for i := range workers {
		workers[i] = fmt.Sprintf("worker-%d", i)
	}
	return &Cluster{workers: workers}
}

// NewClusterWithWorkers creates a cluster over an explicit ordered worker
// list.
func NewClusterWithWorkers(workers []string) *Cluster {
	w := make([]string, len(workers))
	copy(w, workers)
	return &Cluster{workers: w}
}

// Workers returns the ordered worker ids.
func (c *Cluster) Workers() []string {
	out := make([]string, len(c.workers))
	copy(out, c.workers)
	return out
}

// Size returns the number of workers.
func (c *Cluster) Size() int {
	return len(c.workers)
}

// Worker returns the worker assigned to slot i, wrapping round-robin.
func (c *Cluster) Worker(i int) string {
	return c.workers[i%len(c.workers)]
}
