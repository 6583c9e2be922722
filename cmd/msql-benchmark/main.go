// Command msql-benchmark drives a configurable key/value workload against
// any msql-supported backend and records per-operation latency.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dbmesh/msql"
	"github.com/dbmesh/msql/benchmark"
	_ "github.com/dbmesh/msql/driver/mysql"
	_ "github.com/dbmesh/msql/driver/oracle"
	_ "github.com/dbmesh/msql/driver/postgres"
	_ "github.com/dbmesh/msql/driver/sqlite"
)

const (
	defaultDir         = "/tmp/msql-benchmark"
	defaultDurationS   = 60
	defaultWorkers     = 1
	defaultKvKeySize   = 32
	defaultKvValueSize = 1024
	defaultWorkload    = "kvwrite"

	docString = "For benchmarking msql-backed SQL access.\n\n" +
		"Run a single-worker write benchmark against a local SQLite file:\n" +
		"msql-benchmark --driver sqlite --conn path=/tmp/bench.db\n\n" +
		"Run an 8-worker read/write benchmark against Postgres for 30s:\n" +
		"msql-benchmark --driver postgres --conn 'db=bench;host=localhost' --workload kvreadwrite --workers 8 --duration 30\n\n" +
		"Results are written to <dir>/results as files named \"n-workload-timestamp\",\n" +
		"one latency in milliseconds per line."
)

func signalChannel() chan os.Signal {
	ch := make(chan os.Signal, 32)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
	return ch
}

func main() {
	var driverName string
	var connStr string
	var dir string
	var duration int
	var workers int
	var kvKeySize int
	var kvValueSize int
	var workload string

	cmd := &cobra.Command{
		Use:   "msql-benchmark",
		Short: "For benchmarking msql",
		Long:  docString,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("can't create %s: %w", dir, err)
			}

			pool, err := msql.NewPool(driverName, connStr, workers, 0, nil)
			if err != nil {
				return err
			}
			if err := pool.Start(); err != nil {
				return err
			}
			defer pool.Destroy()

			bm, err := benchmark.New(
				pool,
				dir,
				benchmark.WithWorkload(workload),
				benchmark.WithDuration(duration),
				benchmark.WithWorkers(workers),
				benchmark.WithKvKeySize(kvKeySize),
				benchmark.WithKvValueSize(kvValueSize),
			)
			if err != nil {
				return err
			}

			fmt.Printf("Running %q for %ds with %d workers against %s...\n", workload, duration, workers, driverName)
			if err := bm.Run(signalChannel()); err != nil {
				return err
			}

			fmt.Printf("Done. Results written to %s\n", filepath.Join(dir, "results"))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&driverName, "driver", "n", "sqlite", "backend driver name (sqlite, mysql, postgres, oracle, odbc)")
	flags.StringVarP(&connStr, "conn", "s", "", "connection string (driver-specific)")
	flags.StringVarP(&dir, "dir", "D", defaultDir, "data/results directory")
	flags.StringVarP(&workload, "workload", "w", defaultWorkload, "the workload to run: \"kvwrite\" or \"kvreadwrite\"")
	flags.IntVar(&duration, "duration", defaultDurationS, "run duration in seconds")
	flags.IntVar(&workers, "workers", defaultWorkers, "number of concurrent workers")
	flags.IntVar(&kvKeySize, "key-size", defaultKvKeySize, "size of the kv keys in bytes")
	flags.IntVar(&kvValueSize, "value-size", defaultKvValueSize, "size of the kv values in bytes")

	cmd.MarkFlagRequired("conn")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
