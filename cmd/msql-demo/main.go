// Command msql-demo shows how to integrate a Go application with msql: it
// opens a pool, creates a tiny key/value table, and exposes it over HTTP.
package main

import (
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dbmesh/msql"
	_ "github.com/dbmesh/msql/driver/mysql"
	_ "github.com/dbmesh/msql/driver/oracle"
	_ "github.com/dbmesh/msql/driver/postgres"
	_ "github.com/dbmesh/msql/driver/sqlite"
	"github.com/dbmesh/msql/logging"
)

const (
	schema = "CREATE TABLE IF NOT EXISTS model (key TEXT, value TEXT, UNIQUE(key))"
	query  = "SELECT value FROM model WHERE key = ?"
	update = "INSERT OR REPLACE INTO model(key, value) VALUES(?, ?)"
)

func main() {
	var api string
	var driverName string
	var connStr string
	var dir string
	var verbose bool
	var hostFile string

	cmd := &cobra.Command{
		Use:   "msql-demo",
		Short: "Demo application using msql",
		Long: `This demo shows how to integrate a Go application with msql.

It serves a tiny key/value store over HTTP, backed by a driver-agnostic
connection pool: GET /<key> returns the stored value, PUT /<key> sets it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if driverName == "sqlite" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return errors.Wrapf(err, "can't create %s", dir)
				}
				if connStr == "" {
					connStr = "path=" + filepath.Join(dir, "demo.db")
				}
			}

			if hostFile != "" {
				hf, err := msql.NewHostFile(hostFile)
				if err != nil {
					return errors.Wrapf(err, "can't open host file %s", hostFile)
				}
				if hosts := hf.ConnString(); hosts != "" {
					connStr = "host=" + hosts + ";" + connStr
				}
			}

			logFunc := func(l logging.Level, format string, a ...any) {
				if !verbose {
					return
				}
				log.Printf(fmt.Sprintf("%s: %s: %s\n", driverName, l, format), a...)
			}

			pool, err := msql.NewPool(driverName, connStr, 8, 0, logFunc)
			if err != nil {
				return err
			}
			if err := pool.Start(); err != nil {
				return err
			}

			setup := msql.Prepare(pool, schema)
			if err := pool.Execute(setup); err != nil {
				return err
			}

			http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
				key := strings.TrimLeft(r.URL.Path, "/")
				result := ""
				switch r.Method {
				case "GET":
					stmt := msql.Prepare(pool, query)
					_ = stmt.BindText(key)
					_ = stmt.NewRow()
					if err := pool.Execute(stmt); err != nil {
						result = fmt.Sprintf("Error: %s", err.Error())
					} else if res := stmt.Result(); res != nil && res.NumRows() > 0 {
						result, _ = res.Text(0, 0)
					}
				case "PUT":
					result = "done"
					value, _ := io.ReadAll(r.Body)
					stmt := msql.Prepare(pool, update)
					_ = stmt.BindText(key)
					_ = stmt.BindText(string(value))
					_ = stmt.NewRow()
					if err := pool.Execute(stmt); err != nil {
						result = fmt.Sprintf("Error: %s", err.Error())
					}
				default:
					result = fmt.Sprintf("Error: unsupported method %q", r.Method)
				}
				fmt.Fprintf(w, "%s\n", result)
			})

			listener, err := net.Listen("tcp", api)
			if err != nil {
				return err
			}

			go http.Serve(listener, nil)

			ch := make(chan os.Signal, 32)
			signal.Notify(ch, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
			<-ch

			listener.Close()
			pool.Destroy()
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&api, "api", "a", "", "address used to expose the demo API")
	flags.StringVarP(&driverName, "driver", "n", "sqlite", "backend driver name (sqlite, mysql, postgres, oracle, odbc)")
	flags.StringVarP(&connStr, "conn", "s", "", "connection string (driver-specific; sqlite defaults to <dir>/demo.db)")
	flags.StringVarP(&dir, "dir", "D", "/tmp/msql-demo", "data directory (sqlite only)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	flags.StringVar(&hostFile, "hostfile", "", "YAML file listing cluster hosts, prepended to --conn as its host= option (non-sqlite backends; --conn must then omit host=)")

	cmd.MarkFlagRequired("api")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
