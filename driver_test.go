package dsort

import (
	"context"
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortEmptyInput(t *testing.T) {
	driver := NewDriver()
	_, err := driver.Sort(context.Background(), NewArrayStrategy[int]())
	assert.True(t, errors.Is(err, ErrEmptyInput))
}

func TestSortInvalidPartitionCount(t *testing.T) {
	driver := NewDriver(WithPartitions(-1))
	_, err := driver.Sort(context.Background(), NewArrayStrategy[int](), []int{1})
	assert.True(t, errors.Is(err, ErrInvalidPartitionCount))
}

func TestSortScenario(t *testing.T) {
	// 4 chunks of 10 holding a permutation of 1..40, sorted into 3
	// partitions with a sample budget of 5 and a batch ceiling of 2.
	rng := rand.New(rand.NewSource(42))
	perm := rng.Perm(40)

	chunks := make([]Chunk, 4)
	for i := range chunks {
		vals := make([]int, 10)
		for j := range vals {
			vals[j] = perm[i*10+j] + 1
		}
		chunks[i] = vals
	}

	driver := NewDriver(
		WithPartitions(3),
		WithSampleBudget(5),
		WithBatchSize(2),
		WithWorkerCount(2),
	)

	coll, err := driver.Sort(context.Background(), NewArrayStrategy[int](), chunks...)
	require.NoError(t, err)
	require.Equal(t, 3, coll.NumParts())

	var concat []int
	for _, part := range coll.Parts() {
		vals := part.Chunk.([]int)
		for i := 1; i < len(vals); i++ {
			assert.LessOrEqual(t, vals[i-1], vals[i])
		}
		assert.Equal(t, len(concat), part.Domain.Start)
		assert.Equal(t, len(concat)+len(vals), part.Domain.End)
		concat = append(concat, vals...)
	}

	// 1..40, each exactly once.
	require.Len(t, concat, 40)
	for i, v := range concat {
		assert.Equal(t, i+1, v)
	}

	// Round-robin placement over the two workers.
	parts := coll.Parts()
	assert.Equal(t, "worker-0", parts[0].Worker)
	assert.Equal(t, "worker-1", parts[1].Worker)
	assert.Equal(t, "worker-0", parts[2].Worker)
}

func TestSortPartitionCount(t *testing.T) {
	rng := rand.New(rand.NewSource(8))

	for _, partitions := range []int{1, 2, 5, 8} {
		for _, numChunks := range []int{1, 3, 7} {
			chunks := make([]Chunk, numChunks)
			for i := range chunks {
				vals := make([]int, 20)
				for j := range vals {
					vals[j] = rng.Intn(500)
				}
				chunks[i] = vals
			}

			driver := NewDriver(
				WithPartitions(partitions),
				WithSampleBudget(4),
				WithBatchSize(2),
				WithWorkerCount(3),
			)
			coll, err := driver.Sort(context.Background(), NewArrayStrategy[int](), chunks...)
			require.NoError(t, err)
			assert.Equal(t, partitions, coll.NumParts(),
				"partitions=%d chunks=%d", partitions, numChunks)
			assert.Equal(t, numChunks*20, coll.Len())
		}
	}
}

func TestSortTable(t *testing.T) {
	strat := NewTableStrategy[string, int]()

	// Table chunks must arrive sorted by key; the sampler reads keys only.
	chunks := []Chunk{
		[]Row[string, int]{{"ant", 1}, {"fox", 2}, {"owl", 3}},
		[]Row[string, int]{{"bee", 4}, {"cat", 5}, {"yak", 6}},
		[]Row[string, int]{{"elk", 7}, {"hen", 8}, {"ram", 9}},
	}

	driver := NewDriver(
		WithPartitions(2),
		WithSampleBudget(2),
		WithWorkerCount(2),
	)
	coll, err := driver.Sort(context.Background(), strat, chunks...)
	require.NoError(t, err)
	require.Equal(t, 2, coll.NumParts())

	var keys []string
	seen := make(map[int]bool)
	for _, part := range coll.Parts() {
		for _, row := range part.Chunk.([]Row[string, int]) {
			keys = append(keys, row.Key)
			seen[row.Value] = true
		}
	}

	require.Len(t, keys, 9)
	for i := 1; i < len(keys); i++ {
		assert.LessOrEqual(t, keys[i-1], keys[i])
	}
	// Every row survived the shuffle.
	assert.Len(t, seen, 9)
}

func TestSortCollection(t *testing.T) {
	strat := NewArrayStrategy[int]()
	input := NewCollection(strat, []int{5, 3, 1}, []int{6, 4, 2})

	driver := NewDriver(WithPartitions(2), WithWorkerCount(2))
	out, err := driver.SortCollection(context.Background(), strat, input)
	require.NoError(t, err)

	var concat []int
	for _, part := range out.Parts() {
		concat = append(concat, part.Chunk.([]int)...)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, concat)
	assert.Equal(t, input.Len(), out.Len())

	// The input collection's chunks are untouched.
	assert.Equal(t, []int{5, 3, 1}, input.Chunks()[0])
}

func TestSortMorePartitionsThanElements(t *testing.T) {
	driver := NewDriver(WithPartitions(6), WithSampleBudget(3), WithWorkerCount(2))

	coll, err := driver.Sort(context.Background(), NewArrayStrategy[int](), []int{2, 1}, []int{3})
	require.NoError(t, err)
	assert.Equal(t, 6, coll.NumParts())
	assert.Equal(t, 3, coll.Len())

	var concat []int
	for _, part := range coll.Parts() {
		concat = append(concat, part.Chunk.([]int)...)
	}
	assert.Equal(t, []int{1, 2, 3}, concat)
}

func TestSortAllEmptyChunks(t *testing.T) {
	// Zero-length chunks are valid input (empty sequences are merge
	// identities); they produce no sample keys, but the partition count
	// must still be honored.
	driver := NewDriver(WithPartitions(3), WithWorkerCount(2))

	coll, err := driver.Sort(context.Background(), NewArrayStrategy[int](), []int{}, []int{})
	require.NoError(t, err)
	require.Equal(t, 3, coll.NumParts())
	assert.Equal(t, 0, coll.Len())

	for i, part := range coll.Parts() {
		assert.Empty(t, part.Chunk.([]int))
		assert.Equal(t, Domain{0, 0}, part.Domain)
		assert.Equal(t, driver.cluster.Worker(i), part.Worker)
	}
}

func TestSortSingleChunkSinglePartition(t *testing.T) {
	driver := NewDriver(WithPartitions(1))

	coll, err := driver.Sort(context.Background(), NewArrayStrategy[int](), []int{3, 1, 2})
	require.NoError(t, err)
	require.Equal(t, 1, coll.NumParts())
	assert.Equal(t, []int{1, 2, 3}, coll.Parts()[0].Chunk)
}
