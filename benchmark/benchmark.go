// Package benchmark drives a configurable key/value workload against a
// *msql.Pool and records per-operation latency, the way the teacher's own
// benchmark command drives a workload against a cowsql-backed *sql.DB.
package benchmark

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/dbmesh/msql"
)

const (
	defaultWorkload    = "kvwrite"
	defaultDuration    = 60 * time.Second
	defaultWorkers     = 1
	defaultKvKeySize   = 32
	defaultKvValueSize = 1024

	schema = `CREATE TABLE IF NOT EXISTS benchmark_kv (k TEXT PRIMARY KEY, v TEXT)`
	upsert = `INSERT INTO benchmark_kv (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`
	lookup = `SELECT v FROM benchmark_kv WHERE k = ?`
)

// Option configures a Benchmark.
type Option func(*config)

type config struct {
	workload    string
	duration    time.Duration
	workers     int
	kvKeySize   int
	kvValueSize int
}

// WithWorkload selects "kvwrite" (blind writes) or "kvreadwrite" (read then
// write, simulating a read-modify-write cycle).
func WithWorkload(name string) Option {
	return func(c *config) { c.workload = strings.ToLower(name) }
}

// WithDuration sets how long Run drives the workload before stopping, in
// seconds (matching the teacher CLI's integer --duration flag).
func WithDuration(seconds int) Option {
	return func(c *config) { c.duration = time.Duration(seconds) * time.Second }
}

// WithWorkers sets the number of concurrent workers (and, via an internal
// semaphore, the number of statements ever in flight at once).
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithKvKeySize sets the byte length of generated keys.
func WithKvKeySize(n int) Option {
	return func(c *config) { c.kvKeySize = n }
}

// WithKvValueSize sets the byte length of generated values.
func WithKvValueSize(n int) Option {
	return func(c *config) { c.kvValueSize = n }
}

// Benchmark drives a workload against pool and writes per-worker latency
// logs under dir/results.
type Benchmark struct {
	pool *msql.Pool
	dir  string
	cfg  config
}

// New validates opts and prepares dir/results for Run's output.
func New(pool *msql.Pool, dir string, opts ...Option) (*Benchmark, error) {
	cfg := config{
		workload:    defaultWorkload,
		duration:    defaultDuration,
		workers:     defaultWorkers,
		kvKeySize:   defaultKvKeySize,
		kvValueSize: defaultKvValueSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	switch cfg.workload {
	case "kvwrite", "kvreadwrite":
	default:
		return nil, fmt.Errorf("unknown workload %q", cfg.workload)
	}

	resultsDir := filepath.Join(dir, "results")
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results directory: %w", err)
	}

	return &Benchmark{pool: pool, dir: dir, cfg: cfg}, nil
}

// Run creates the benchmark table and drives the configured workload with
// cfg.workers concurrent goroutines until cfg.duration elapses or stop is
// signaled, then writes one latency-log file per worker to dir/results.
func (b *Benchmark) Run(stop <-chan os.Signal) error {
	setup := msql.Prepare(b.pool, schema)
	if err := b.pool.Execute(setup); err != nil {
		return fmt.Errorf("creating benchmark schema: %w", err)
	}

	sem := semaphore.NewWeighted(int64(b.cfg.workers))
	deadline := time.Now().Add(b.cfg.duration)

	results := make([][]time.Duration, b.cfg.workers)
	done := make(chan int, b.cfg.workers)

	for w := 0; w < b.cfg.workers; w++ {
		go func(worker int) {
			var latencies []time.Duration
			for time.Now().Before(deadline) {
				select {
				case <-stop:
					results[worker] = latencies
					done <- worker
					return
				default:
				}

				if err := sem.Acquire(context.Background(), 1); err != nil {
					break
				}
				start := time.Now()
				b.runOnce(worker)
				latencies = append(latencies, time.Since(start))
				sem.Release(1)
			}
			results[worker] = latencies
			done <- worker
		}(w)
	}

	for i := 0; i < b.cfg.workers; i++ {
		<-done
	}

	return b.writeResults(results)
}

func (b *Benchmark) runOnce(worker int) {
	raw := strconv.FormatInt(msql.GenTimeRandID(18), 10)
	key := raw + strings.Repeat("0", b.cfg.kvKeySize)
	key = key[:min(b.cfg.kvKeySize, len(key))]
	value := strings.Repeat("x", b.cfg.kvValueSize)

	if b.cfg.workload == "kvreadwrite" {
		read := msql.Prepare(b.pool, lookup)
		_ = read.BindText(key)
		_ = read.NewRow()
		_ = b.pool.Execute(read)
	}

	write := msql.Prepare(b.pool, upsert)
	_ = write.BindText(key)
	_ = write.BindText(value)
	_ = write.NewRow()
	_ = b.pool.Execute(write)
}

func (b *Benchmark) writeResults(results [][]time.Duration) error {
	ts := time.Now().Unix()
	for worker, latencies := range results {
		path := filepath.Join(b.dir, "results", fmt.Sprintf("%d-%s-%d", worker, b.cfg.workload, ts))
		var sb strings.Builder
		for _, d := range latencies {
			fmt.Fprintf(&sb, "%.3f\n", float64(d.Microseconds())/1000.0)
		}
		if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
			return fmt.Errorf("writing results for worker %d: %w", worker, err)
		}
	}
	return nil
}
