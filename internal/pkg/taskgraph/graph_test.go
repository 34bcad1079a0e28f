package taskgraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func add(args []Value) (Value, error) {
	sum := 0
	for _, a := range args {
		sum += a.(int)
	}
	return sum, nil
}

func TestDeferAndMaterialize(t *testing.T) {
	g := New()
	a := g.Resolved(1)
	b := g.Resolved(2)
	c := g.Defer(add, a, b)
	d := g.Defer(add, c, c)

	exec, err := NewExecutor(g, 4, 16)
	require.NoError(t, err)

	v, err := exec.Materialize(context.Background(), d)
	assert.NoError(t, err)
	assert.Equal(t, 6, v)
}

func TestResolvedPassthrough(t *testing.T) {
	g := New()
	id := g.Resolved("already here")

	exec, err := NewExecutor(g, 1, 1)
	require.NoError(t, err)

	v, err := exec.Materialize(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, "already here", v)
	assert.Empty(t, g.Deps(id))
}

func TestReduceTreeOrder(t *testing.T) {
	concat := func(a, b Value) (Value, error) {
		return a.(string) + b.(string), nil
	}

	var reduceTests = []struct {
		inputs   []string
		expected string
	}{
		{[]string{"a"}, "a"},
		{[]string{"a", "b"}, "ab"},
		{[]string{"a", "b", "c"}, "abc"},
		{[]string{"a", "b", "c", "d", "e", "f", "g"}, "abcdefg"},
	}

	for _, test := range reduceTests {
		g := New()
		ids := make([]NodeID, len(test.inputs))
		for i, s := range test.inputs {
			ids[i] = g.Resolved(s)
		}

		root, err := g.ReduceTree(concat, ids)
		require.NoError(t, err)

		exec, err := NewExecutor(g, 4, 64)
		require.NoError(t, err)

		v, err := exec.Materialize(context.Background(), root)
		assert.NoError(t, err)
		assert.Equal(t, test.expected, v)
	}
}

func TestReduceTreeSingletonIsIdentity(t *testing.T) {
	g := New()
	id := g.Resolved(42)

	root, err := g.ReduceTree(func(a, b Value) (Value, error) { return nil, nil }, []NodeID{id})
	assert.NoError(t, err)
	assert.Equal(t, id, root)
}

func TestReduceTreeEmpty(t *testing.T) {
	g := New()
	_, err := g.ReduceTree(func(a, b Value) (Value, error) { return nil, nil }, nil)
	assert.Error(t, err)
}

func TestHintsAccumulate(t *testing.T) {
	g := New()
	id := g.Resolved(0)

	assert.Empty(t, g.Hints(id))

	g.AddHint(id, Hint{Worker: "worker-0", Priority: 1})
	g.AddHint(id, Hint{Worker: "worker-1", Priority: 1})

	hints := g.Hints(id)
	assert.Len(t, hints, 2)
	assert.Equal(t, "worker-0", hints[0].Worker)
	assert.Equal(t, "worker-1", hints[1].Worker)
}

func TestDepsAreCopied(t *testing.T) {
	g := New()
	a := g.Resolved(1)
	b := g.Resolved(2)
	c := g.Defer(add, a, b)

	deps := g.Deps(c)
	assert.Equal(t, []NodeID{a, b}, deps)

	deps[0] = c
	assert.Equal(t, []NodeID{a, b}, g.Deps(c))
}
