package dsort

import (
	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"

	"github.com/dsort-io/dsort/internal/pkg/taskgraph"
)

// splitMerge is the batched split-merge engine. Inputs must be locally
// sorted chunks; the result is always exactly len(splitters)+1 chunks, each
// sorted, with every element of chunk i ordered at or before every element
// of chunk i+1. batchSize bounds how many chunks any single split or merge
// level fans in; larger inputs cost one extra recursion level per factor of
// batchSize.
func splitMerge(g *taskgraph.Graph, strat Strategy, chunks []taskgraph.NodeID, splitters []Key, batchSize int) ([]taskgraph.NodeID, error) {
	if batchSize < 2 {
		batchSize = 2
	}
	if len(chunks) <= batchSize {
		return splitMergeOnce(g, strat, chunks, splitters)
	}

	batches := packChunks(chunks, batchSize)
	coarse, fine := splitterLevels(splitters, len(batches))
	log.Debugf("Split-merge recursing: %d chunks in %d batches, %d coarse splitters", len(chunks), len(batches), len(coarse))

	// Partition every batch independently by the coarse splitters only.
	parts := make([][]taskgraph.NodeID, len(batches))
	for i, batch := range batches {
		p, err := splitMergeOnce(g, strat, batch, coarse)
		if err != nil {
			return nil, err
		}
		parts[i] = p
	}

	// Transpose across batches so each group holds one coarse interval's
	// chunk from every batch, then refine each group by the splitters inside
	// its interval. A group with no finer splitters is already a final
	// partition and is merged directly.
	out := make([]taskgraph.NodeID, 0, len(splitters)+1)
	for j := 0; j <= len(coarse); j++ {
		group := make([]taskgraph.NodeID, len(batches))
		for i := range batches {
			group[i] = parts[i][j]
		}

		if len(fine[j]) == 0 {
			merged, err := g.ReduceTree(mergeOp(strat), group)
			if err != nil {
				return nil, err
			}
			out = append(out, merged)
			continue
		}

		sub, err := splitMerge(g, strat, group, fine[j], batchSize)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

// splitMergeOnce is the non-recursive case: split every chunk by the full
// splitter set, transpose the chunk×range matrix, and tree-merge each
// column into one output chunk.
func splitMergeOnce(g *taskgraph.Graph, strat Strategy, chunks []taskgraph.NodeID, splitters []Key) ([]taskgraph.NodeID, error) {
	groups := make([][]taskgraph.NodeID, len(splitters)+1)
	for _, c := range chunks {
		split := g.Defer(splitFn(strat, splitters), c)
		for i := range groups {
			groups[i] = append(groups[i], g.Defer(pickFn(i), split))
		}
	}

	out := make([]taskgraph.NodeID, len(groups))
	for i, group := range groups {
		merged, err := g.ReduceTree(mergeOp(strat), group)
		if err != nil {
			return nil, err
		}
		out[i] = merged
	}
	return out, nil
}

// splitFn defers the range split of one sorted chunk. The node's value is
// the slice of len(splitters)+1 contiguous pieces.
func splitFn(strat Strategy, splitters []Key) taskgraph.Func {
	return func(args []taskgraph.Value) (taskgraph.Value, error) {
		return strat.SplitChunk(args[0], splitters), nil
	}
}

// pickFn extracts one piece of a split result.
func pickFn(i int) taskgraph.Func {
	return func(args []taskgraph.Value) (taskgraph.Value, error) {
		parts := args[0].([]Chunk)
		if i >= len(parts) {
			return nil, errors.Newf("dsort: split produced %d ranges, want index %d", len(parts), i)
		}
		return parts[i], nil
	}
}

// packChunks groups chunks into consecutive batches of at most batchSize;
// the last batch may be smaller.
func packChunks(chunks []taskgraph.NodeID, batchSize int) [][]taskgraph.NodeID {
	batches := make([][]taskgraph.NodeID, 0, (len(chunks)+batchSize-1)/batchSize)
	for start := 0; start < len(chunks); start += batchSize {
		end := min(start+batchSize, len(chunks))
		batches = append(batches, chunks[start:end])
	}
	return batches
}
