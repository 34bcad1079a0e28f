package dsort

import "github.com/dsort-io/dsort/internal/pkg/taskgraph"

// merge2 merges two ascending sequences into one, taking from a on ties so
// equal keys keep their left-to-right input order. Runs in O(len(a)+len(b))
// time and space; an empty input is the merge identity.
func merge2[T any](a, b []T, less func(x, y T) bool) []T {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}

	out := make([]T, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if less(b[j], a[i]) {
			out = append(out, b[j])
			j++
		} else {
			out = append(out, a[i])
			i++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// mergeOp adapts a strategy's pairwise merge to a graph reduction operator.
// K-way merges are always expressed as a tree of these 2-way merges, which
// keeps every single merge's fan-in at two and lets the tree's branches run
// in parallel.
func mergeOp(strat Strategy) func(a, b taskgraph.Value) (taskgraph.Value, error) {
	return func(a, b taskgraph.Value) (taskgraph.Value, error) {
		return strat.MergeChunks(a, b), nil
	}
}
