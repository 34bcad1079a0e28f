package dsort

import "github.com/dsort-io/dsort/internal/pkg/taskgraph"

// quantileIndices implements the evenly spaced quantile rule: divide a
// sorted sequence of length n into m+1 roughly equal buckets (remainder
// spread over the first buckets) and take the index of the last element of
// every bucket except the final one. Deterministic for a fixed input; m is
// clamped to n when the sequence is smaller than the budget.
func quantileIndices(n, m int) []int {
	if m > n {
		m = n
	}
	if m <= 0 || n == 0 {
		return nil
	}

	buckets := m + 1
	size := n / buckets
	rem := n % buckets

	idxs := make([]int, 0, m)
	end := 0
	for i := 0; i < m; i++ {
		end += size
		if i < rem {
			end++
		}
		idxs = append(idxs, end-1)
	}
	return idxs
}

// sampled carries one chunk's sampler output through the graph: the locally
// sorted chunk (nil when the strategy samples keys only) and its quantile
// keys. Samples are transient; they are discarded once splitters are
// selected.
type sampled struct {
	sorted Chunk
	keys   []Key
}

// sampleNodes defers one sampler per input chunk. All samplers are mutually
// independent and may execute in full parallel.
func sampleNodes(g *taskgraph.Graph, strat Strategy, chunks []taskgraph.NodeID, budget int) []taskgraph.NodeID {
	out := make([]taskgraph.NodeID, len(chunks))
	for i, c := range chunks {
		out[i] = g.Defer(func(args []taskgraph.Value) (taskgraph.Value, error) {
			sorted, keys := strat.SampleChunk(args[0], budget)
			return sampled{sorted: sorted, keys: keys}, nil
		}, c)
	}
	return out
}
