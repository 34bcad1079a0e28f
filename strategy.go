package dsort

import (
	"sort"

	"golang.org/x/exp/constraints"

	"github.com/dsort-io/dsort/internal/pkg/taskgraph"
)

// Chunk is the opaque payload of one data partition. The engine never
// inspects chunks directly; all chunk-level work goes through a Strategy.
type Chunk = taskgraph.Value

// Key is a single ordering key drawn from a chunk.
type Key = taskgraph.Value

// Strategy supplies the chunk-level primitives the engine composes: local
// sort, sampling, pairwise merge, and splitter-based range splitting. The
// engine is strategy-agnostic; callers pick the implementation matching
// their data kind and pass it explicitly.
type Strategy interface {
	// SortChunk returns a new chunk holding the same elements in ascending
	// key order. The input chunk is never modified.
	SortChunk(c Chunk) Chunk

	// SampleChunk sorts c and draws up to budget evenly spaced quantile keys
	// from it. Implementations that sample keys without materializing the
	// sorted chunk may return a nil sorted chunk; the driver then reuses the
	// original chunk.
	SampleChunk(c Chunk, budget int) (sorted Chunk, keys []Key)

	// MergeChunks merges two chunks that are each sorted ascending into one
	// sorted chunk. Equal keys from a precede equal keys from b.
	MergeChunks(a, b Chunk) Chunk

	// SplitChunk partitions a sorted chunk by an ordered splitter set into
	// len(splitters)+1 contiguous pieces covering (-inf, s1], (s1, s2], …,
	// (sn, +inf). Concatenating the pieces in order reproduces the chunk.
	SplitChunk(c Chunk, splitters []Key) []Chunk

	// Compare orders two keys: negative if a < b, zero if equal, positive
	// if a > b.
	Compare(a, b Key) int

	// Length reports the number of elements in a chunk.
	Length(c Chunk) int
}

// ArrayStrategy sorts chunks that are plain slices of ordered elements. The
// element itself is the ordering key.
type ArrayStrategy[E constraints.Ordered] struct{}

// NewArrayStrategy returns the strategy for chunks of type []E.
func NewArrayStrategy[E constraints.Ordered]() ArrayStrategy[E] {
	return ArrayStrategy[E]{}
}

func (ArrayStrategy[E]) SortChunk(c Chunk) Chunk {
	in := c.([]E)
	out := make([]E, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s ArrayStrategy[E]) SampleChunk(c Chunk, budget int) (Chunk, []Key) {
	sorted := s.SortChunk(c).([]E)
	idxs := quantileIndices(len(sorted), budget)
	keys := make([]Key, len(idxs))
	for i, idx := range idxs {
		keys[i] = sorted[idx]
	}
	return sorted, keys
}

func (ArrayStrategy[E]) MergeChunks(a, b Chunk) Chunk {
	return merge2(a.([]E), b.([]E), func(x, y E) bool { return x < y })
}

func (ArrayStrategy[E]) SplitChunk(c Chunk, splitters []Key) []Chunk {
	vals := c.([]E)
	parts := make([]Chunk, 0, len(splitters)+1)
	lo := 0
	for _, sp := range splitters {
		bound := sp.(E)
		// First index past the boundary; elements equal to the splitter stay
		// in the lower range.
		hi := lo + sort.Search(len(vals)-lo, func(i int) bool { return vals[lo+i] > bound })
		parts = append(parts, vals[lo:hi])
		lo = hi
	}
	return append(parts, vals[lo:])
}

func (ArrayStrategy[E]) Compare(a, b Key) int {
	x, y := a.(E), b.(E)
	switch {
	case x < y:
		return -1
	case y < x:
		return 1
	}
	return 0
}

func (ArrayStrategy[E]) Length(c Chunk) int {
	return len(c.([]E))
}

// Row is one key-value record of a table chunk.
type Row[K constraints.Ordered, V any] struct {
	Key   K
	Value V
}

// TableStrategy sorts chunks of key-value rows, ordered by key. Sampling
// reads keys only and never materializes a sorted copy, so input chunks
// must already be sorted by key; the driver substitutes the original chunk
// where SampleChunk returns none.
type TableStrategy[K constraints.Ordered, V any] struct{}

// NewTableStrategy returns the strategy for chunks of type []Row[K, V].
func NewTableStrategy[K constraints.Ordered, V any]() TableStrategy[K, V] {
	return TableStrategy[K, V]{}
}

func (TableStrategy[K, V]) SortChunk(c Chunk) Chunk {
	in := c.([]Row[K, V])
	out := make([]Row[K, V], len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (TableStrategy[K, V]) SampleChunk(c Chunk, budget int) (Chunk, []Key) {
	rows := c.([]Row[K, V])
	idxs := quantileIndices(len(rows), budget)
	keys := make([]Key, len(idxs))
	for i, idx := range idxs {
		keys[i] = rows[idx].Key
	}
	return nil, keys
}

func (TableStrategy[K, V]) MergeChunks(a, b Chunk) Chunk {
	return merge2(a.([]Row[K, V]), b.([]Row[K, V]), func(x, y Row[K, V]) bool { return x.Key < y.Key })
}

func (TableStrategy[K, V]) SplitChunk(c Chunk, splitters []Key) []Chunk {
	rows := c.([]Row[K, V])
	parts := make([]Chunk, 0, len(splitters)+1)
	lo := 0
	for _, sp := range splitters {
		bound := sp.(K)
		hi := lo + sort.Search(len(rows)-lo, func(i int) bool { return rows[lo+i].Key > bound })
		parts = append(parts, rows[lo:hi])
		lo = hi
	}
	return append(parts, rows[lo:])
}

func (TableStrategy[K, V]) Compare(a, b Key) int {
	x, y := a.(K), b.(K)
	switch {
	case x < y:
		return -1
	case y < x:
		return 1
	}
	return 0
}

func (TableStrategy[K, V]) Length(c Chunk) int {
	return len(c.([]Row[K, V]))
}
