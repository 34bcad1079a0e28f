package dsort

import "github.com/dsort-io/dsort/internal/pkg/taskgraph"

// Propagate attaches hint to a node and, transitively, to every node it
// depends on, stopping at already-materialized leaves. Intermediate split
// and merge results are otherwise invisible to placement; stamping the
// final destination backward lets the executor co-locate a whole dependency
// chain. Hints accumulate, so a node shared by several output chunks ends
// up with one hint per chunk.
func Propagate(g *taskgraph.Graph, id taskgraph.NodeID, hint taskgraph.Hint) {
	seen := make(map[taskgraph.NodeID]bool)

	var walk func(taskgraph.NodeID)
	walk = func(n taskgraph.NodeID) {
		if seen[n] {
			return
		}
		seen[n] = true
		g.AddHint(n, hint)
		for _, dep := range g.Deps(n) {
			walk(dep)
		}
	}
	walk(id)
}
