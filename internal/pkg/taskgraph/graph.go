// Package taskgraph provides the deferred-computation layer the sort engine
// builds on: an arena-backed DAG of pure operations over chunk handles, a
// local executor that materializes nodes, and the worker registry used for
// placement.
package taskgraph

import (
	"sync"

	"github.com/cockroachdb/errors"
)

// Value is the payload of a materialized node. Chunk payloads are opaque to
// the graph; only the caller's strategy interprets them.
type Value = any

// Func is a pure operation over the materialized values of a node's inputs.
type Func func(args []Value) (Value, error)

// NodeID is an index into a Graph's node arena. Nodes only ever reference
// lower indices, so the graph is acyclic by construction.
type NodeID int

// Hint is a placement preference attached to a node: the worker on which
// the node's result should preferentially materialize.
type Hint struct {
	Worker   string
	Priority int
}

type node struct {
	fn       Func
	deps     []NodeID
	resolved Value
	leaf     bool
}

// Graph is an arena of deferred computation nodes plus a hint table keyed
// by node identity. Hints live beside the arena rather than on the nodes so
// a node shared by several downstream chunks accumulates hints without
// aliasing hazards.
type Graph struct {
	mu    sync.Mutex
	nodes []node
	hints map[NodeID][]Hint
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{hints: make(map[NodeID][]Hint)}
}

// Defer adds a node that computes fn over the materialized values of deps.
func (g *Graph) Defer(fn Func, deps ...NodeID) NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := NodeID(len(g.nodes))
	d := make([]NodeID, len(deps))
	copy(d, deps)
	g.nodes = append(g.nodes, node{fn: fn, deps: d})
	return id
}

// Resolved adds a leaf node carrying an already materialized value. The
// executor returns it as-is, with no further unwrapping.
func (g *Graph) Resolved(v Value) NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, node{resolved: v, leaf: true})
	return id
}

// ReduceTree reduces ids pairwise under op, building a balanced tree that
// preserves left-to-right input order. A singleton reduces to itself.
func (g *Graph) ReduceTree(op func(a, b Value) (Value, error), ids []NodeID) (NodeID, error) {
	if len(ids) == 0 {
		return 0, errors.New("taskgraph: reduce over zero nodes")
	}
	if len(ids) == 1 {
		return ids[0], nil
	}

	mid := (len(ids) + 1) / 2
	left, err := g.ReduceTree(op, ids[:mid])
	if err != nil {
		return 0, err
	}
	right, err := g.ReduceTree(op, ids[mid:])
	if err != nil {
		return 0, err
	}
	return g.Defer(func(args []Value) (Value, error) {
		return op(args[0], args[1])
	}, left, right), nil
}

// Deps returns the direct dependencies of a node. Leaf nodes have none.
func (g *Graph) Deps(id NodeID) []NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()

	deps := g.nodes[id].deps
	out := make([]NodeID, len(deps))
	copy(out, deps)
	return out
}

// AddHint attaches a placement hint to a node. Hints accumulate; they are
// never overwritten.
func (g *Graph) AddHint(id NodeID, h Hint) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hints[id] = append(g.hints[id], h)
}

// Hints returns all hints attached to a node, in attachment order.
func (g *Graph) Hints(id NodeID) []Hint {
	g.mu.Lock()
	defer g.mu.Unlock()

	hints := g.hints[id]
	out := make([]Hint, len(hints))
	copy(out, hints)
	return out
}

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

func (g *Graph) node(id NodeID) node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nodes[id]
}
