package dsort

import (
	"context"

	humanize "github.com/dustin/go-humanize"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	pb "gopkg.in/cheggaaa/pb.v1"

	"github.com/dsort-io/dsort/internal/pkg/taskgraph"
)

// Driver controls the execution of distributed sorts.
type Driver struct {
	config  *config
	cluster *taskgraph.Cluster
}

// config configures a Driver's sorts
type config struct {
	SampleBudget   int
	Partitions     int
	BatchSize      int
	MaxConcurrency int
	WorkerCount    int
	CacheSize      int
	Verbose        bool

	workers []string
}

func newConfig() *config {
	loadConfig() // Load viper config from settings file(s) and environment
	return &config{
		SampleBudget:   viper.GetInt("sample_budget"),
		Partitions:     viper.GetInt("partitions"),
		BatchSize:      viper.GetInt("batch_size"),
		MaxConcurrency: viper.GetInt("max_concurrency"),
		WorkerCount:    viper.GetInt("worker_count"),
		CacheSize:      viper.GetInt("cache_size"),
		Verbose:        viper.GetBool("verbose"),
	}
}

// Option allows configuration of a Driver
type Option func(*config)

// NewDriver creates a new Driver with optional configuration
func NewDriver(options ...Option) *Driver {
	c := newConfig()
	for _, f := range options {
		f(c)
	}

	if c.Verbose {
		log.SetLevel(log.DebugLevel)
	}
	if c.SampleBudget < 1 {
		log.Warn("Configured sample budget is not positive; using 1")
		c.SampleBudget = 1
	}

	cluster := taskgraph.NewCluster(c.WorkerCount)
	if len(c.workers) > 0 {
		cluster = taskgraph.NewClusterWithWorkers(c.workers)
	}

	d := &Driver{
		config:  c,
		cluster: cluster,
	}
	log.Debugf("Loaded config: %#v", c)

	return d
}

// WithSampleBudget sets the number of sample keys drawn per input chunk
func WithSampleBudget(m int) Option {
	return func(c *config) {
		c.SampleBudget = m
	}
}

// WithPartitions sets the number of output chunks a sort produces
func WithPartitions(n int) Option {
	return func(c *config) {
		c.Partitions = n
	}
}

// WithBatchSize sets the split/merge fan-in ceiling. Values below 2 fall
// back to max(2, worker count).
func WithBatchSize(b int) Option {
	return func(c *config) {
		c.BatchSize = b
	}
}

// WithMaxConcurrency sets the maximum number of concurrently executing
// computation nodes
func WithMaxConcurrency(n int) Option {
	return func(c *config) {
		c.MaxConcurrency = n
	}
}

// WithWorkerCount sets the number of synthetic workers in the local cluster
func WithWorkerCount(n int) Option {
	return func(c *config) {
		c.WorkerCount = n
	}
}

// WithWorkers sets an explicit ordered worker list, overriding the worker
// count
func WithWorkers(workers ...string) Option {
	return func(c *config) {
		c.workers = workers
	}
}

// batchSize resolves the configured fan-in ceiling. The max(2, workers)
// floor is kept even for a single worker so fan-in stays bounded locally.
func (d *Driver) batchSize() int {
	if d.config.BatchSize >= 2 {
		return d.config.BatchSize
	}
	return max(2, d.cluster.Size())
}

// partitions resolves the requested output chunk count; zero means one
// partition per worker.
func (d *Driver) partitions() int {
	if d.config.Partitions != 0 {
		return d.config.Partitions
	}
	return d.cluster.Size()
}

// Sort sorts the given chunks into a new, globally ordered collection.
// Chunks are opaque to the driver; strat supplies all chunk-level
// primitives. The input chunks are never modified.
func (d *Driver) Sort(ctx context.Context, strat Strategy, chunks ...Chunk) (*Collection, error) {
	return d.sort(ctx, strat, chunks)
}

// SortCollection sorts an existing collection into a new one, leaving the
// input untouched.
func (d *Driver) SortCollection(ctx context.Context, strat Strategy, coll *Collection) (*Collection, error) {
	return d.sort(ctx, strat, coll.Chunks())
}

func (d *Driver) sort(ctx context.Context, strat Strategy, chunks []Chunk) (*Collection, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyInput
	}
	partitions := d.partitions()
	if partitions <= 0 {
		return nil, ErrInvalidPartitionCount
	}

	logger := log.WithField("sort_id", uuid.New().String())

	g := taskgraph.New()
	exec, err := taskgraph.NewExecutor(g, d.config.MaxConcurrency, d.config.CacheSize)
	if err != nil {
		return nil, err
	}

	inputs := make([]taskgraph.NodeID, len(chunks))
	total := 0
	for i, c := range chunks {
		inputs[i] = g.Resolved(c)
		total += strat.Length(c)
	}
	logger.Debugf("Sorting %s elements in %d chunks into %d partitions", humanize.Comma(int64(total)), len(chunks), partitions)
	if partitions > total {
		logger.Warnf("Requested %d partitions for only %d elements; some partitions will be empty", partitions, total)
	}

	samples, sorted, err := d.runSamplePhase(ctx, g, exec, strat, inputs)
	if err != nil {
		return nil, err
	}

	splitters := selectSplitters(strat, samples, partitions-1)
	// Too few distinct sample positions (tiny inputs) would otherwise shrink
	// the output count; pad with the last splitter, which degenerates to
	// empty tie-bound partitions.
	for len(splitters) > 0 && len(splitters) < partitions-1 {
		splitters = append(splitters, splitters[len(splitters)-1])
	}
	logger.Debugf("Selected %d splitters (batch size %d)", len(splitters), d.batchSize())

	outputs, err := splitMerge(g, strat, sorted, splitters, d.batchSize())
	if err != nil {
		return nil, err
	}
	// All-empty chunks yield no sample keys at all, so no splitter padding
	// could happen above; replicate the single merged (empty) output so the
	// partition count is still honored.
	for len(outputs) < partitions {
		outputs = append(outputs, outputs[0])
	}

	// Placement: round-robin the output partitions across workers and
	// propagate each assignment through the partition's dependency chain.
	workers := make([]string, len(outputs))
	for i, out := range outputs {
		workers[i] = d.cluster.Worker(i)
		Propagate(g, out, taskgraph.Hint{Worker: workers[i], Priority: 1})
	}

	bar := d.newBar(len(outputs), "Merge")
	parts, err := exec.MaterializeAll(ctx, outputs, func() { bar.Increment() })
	bar.Finish()
	if err != nil {
		return nil, err
	}

	return assembleCollection(strat, parts, workers), nil
}

// runSamplePhase sorts every input chunk locally and gathers its quantile
// keys, in parallel. It returns the per-chunk sample keys plus the node to
// use for each chunk downstream: the locally sorted version where the
// strategy materialized one, otherwise the original input.
func (d *Driver) runSamplePhase(ctx context.Context, g *taskgraph.Graph, exec *taskgraph.Executor, strat Strategy, inputs []taskgraph.NodeID) ([][]Key, []taskgraph.NodeID, error) {
	nodes := sampleNodes(g, strat, inputs, d.config.SampleBudget)

	bar := d.newBar(len(nodes), "Sample")
	results, err := exec.MaterializeAll(ctx, nodes, func() { bar.Increment() })
	bar.Finish()
	if err != nil {
		return nil, nil, err
	}

	samples := make([][]Key, len(results))
	sorted := make([]taskgraph.NodeID, len(results))
	for i, r := range results {
		s := r.(sampled)
		samples[i] = s.keys
		if s.sorted != nil {
			sorted[i] = g.Resolved(s.sorted)
		} else {
			sorted[i] = inputs[i]
		}
	}
	return samples, sorted, nil
}

func (d *Driver) newBar(count int, prefix string) *pb.ProgressBar {
	bar := pb.New(count).Prefix(prefix)
	bar.NotPrint = !d.config.Verbose
	return bar.Start()
}
