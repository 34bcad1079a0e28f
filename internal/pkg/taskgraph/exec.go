package taskgraph

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Executor materializes graph nodes in-process. Dependencies of a node are
// evaluated in parallel; the node functions themselves are gated by a
// weighted semaphore so at most maxConcurrency of them run at once.
//
// Results are memoized in a bounded LRU cache. Node functions are pure, so
// an evicted result is simply recomputed on the next request.
type Executor struct {
	graph *Graph
	sem   *semaphore.Weighted
	cache *lru.Cache

	mu       sync.Mutex
	inflight map[NodeID]*call
}

type call struct {
	done chan struct{}
	val  Value
	err  error
}

// NewExecutor creates an executor over g. maxConcurrency bounds the number
// of node functions running at once; cacheSize bounds the number of
// memoized results.
func NewExecutor(g *Graph, maxConcurrency, cacheSize int) (*Executor, error) {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	if cacheSize < 1 {
		cacheSize = 1
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Executor{
		graph:    g,
		sem:      semaphore.NewWeighted(int64(maxConcurrency)),
		cache:    cache,
		inflight: make(map[NodeID]*call),
	}, nil
}

// Materialize triggers execution of id and blocks until its value is
// available.
func (e *Executor) Materialize(ctx context.Context, id NodeID) (Value, error) {
	return e.eval(ctx, id)
}

// MaterializeAll materializes every node in ids concurrently and returns
// their values in the same order. onDone, if non-nil, is invoked once per
// completed node. The first node failure cancels the rest.
func (e *Executor) MaterializeAll(ctx context.Context, ids []NodeID, onDone func()) ([]Value, error) {
	out := make([]Value, len(ids))
	grp, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		grp.Go(func() error {
			v, err := e.eval(gctx, id)
			if err != nil {
				return err
			}
			out[i] = v
			if onDone != nil {
				onDone()
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Executor) eval(ctx context.Context, id NodeID) (Value, error) {
	n := e.graph.node(id)
	if n.leaf {
		return n.resolved, nil
	}
	if v, ok := e.cache.Get(id); ok {
		return v, nil
	}

	e.mu.Lock()
	if c, ok := e.inflight[id]; ok {
		e.mu.Unlock()
		select {
		case <-c.done:
			return c.val, c.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	c := &call{done: make(chan struct{})}
	e.inflight[id] = c
	e.mu.Unlock()

	c.val, c.err = e.run(ctx, id, n)
	close(c.done)

	e.mu.Lock()
	delete(e.inflight, id)
	e.mu.Unlock()

	return c.val, c.err
}

func (e *Executor) run(ctx context.Context, id NodeID, n node) (Value, error) {
	args := make([]Value, len(n.deps))
	grp, gctx := errgroup.WithContext(ctx)
	for i, dep := range n.deps {
		i, dep := i, dep
		grp.Go(func() error {
			v, err := e.eval(gctx, dep)
			args[i] = v
			return err
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	v, err := n.fn(args)
	e.sem.Release(1)
	if err != nil {
		return nil, errors.Wrapf(err, "taskgraph: node %d failed", id)
	}

	e.cache.Add(id, v)
	return v, nil
}
