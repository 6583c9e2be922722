// Package shell implements an interactive line-editing REPL over a
// *msql.Pool, the way a database client lets an operator type ad hoc SQL
// and see it run.
package shell

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/peterh/liner"

	"github.com/dbmesh/msql"
	"github.com/dbmesh/msql/driver"
)

// Shell reads statements from a liner prompt, runs each against a pool and
// prints the result.
type Shell struct {
	pool *msql.Pool
	opts *options
	out  io.Writer
}

// Open creates and starts a pool for driverName/connStr and wraps it in a
// Shell ready to Run.
func Open(driverName, connStr string, out io.Writer, opt ...Option) (*Shell, error) {
	o := defaultOptions()
	for _, apply := range opt {
		apply(o)
	}

	pool, err := msql.NewPool(driverName, connStr, o.maxConns, 0, o.log)
	if err != nil {
		return nil, err
	}
	if err := pool.Start(); err != nil {
		return nil, err
	}

	return &Shell{pool: pool, opts: o, out: out}, nil
}

// Close tears down the shell's pool.
func (s *Shell) Close() error { return s.pool.Destroy() }

// Run drives an interactive liner-backed prompt until the user exits
// (Ctrl-D, or typing "exit"/"quit"), running each entered line as a
// statement against the shell's pool.
func (s *Shell) Run(historyFile string) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	for {
		text, err := line.Prompt("msql> ")
		if err != nil { // io.EOF on Ctrl-D, liner.ErrPromptAborted on Ctrl-C
			fmt.Fprintln(s.out)
			break
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			break
		}

		line.AppendHistory(text)
		if err := s.runOne(text); err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}

	if historyFile != "" {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}
	return nil
}

// runOne executes a single statement and prints its result, if any, one
// chunk at a time as Fetch pages through a larger result set.
func (s *Shell) runOne(query string) error {
	stmt := msql.Prepare(s.pool, query)
	if err := s.pool.Execute(stmt); err != nil {
		return err
	}

	res := stmt.Result()
	if res == nil {
		fmt.Fprintf(s.out, "OK (%d rows affected)\n", stmt.Affected())
		return nil
	}

	if err := s.printResult(res, true); err != nil {
		return err
	}
	for stmt.HasRemainingRows() {
		if err := s.pool.Fetch(stmt); err != nil {
			return err
		}
		if err := s.printResult(res, false); err != nil {
			return err
		}
	}
	return nil
}

// printResult renders the result buffer's current chunk. header controls
// whether a column-name row is emitted (tabular mode only; JSON mode always
// emits one array element per row, so there is no header to suppress).
func (s *Shell) printResult(res *msql.Result, header bool) error {
	if s.opts.format == formatJSON {
		return s.printJSON(res)
	}
	return s.printTabular(res, header)
}

func (s *Shell) printTabular(res *msql.Result, header bool) error {
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)

	if header {
		names := make([]string, res.NumCols())
		for i := range names {
			names[i] = res.ColName(i)
		}
		fmt.Fprintln(tw, strings.Join(names, "\t"))
	}

	for row := 0; row < res.NumRows(); row++ {
		cells := make([]string, res.NumCols())
		for col := range cells {
			cells[col] = cellText(res, row, col)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func (s *Shell) printJSON(res *msql.Result) error {
	rows := make([]map[string]any, 0, res.NumRows())
	for row := 0; row < res.NumRows(); row++ {
		m := make(map[string]any, res.NumCols())
		for col := 0; col < res.NumCols(); col++ {
			if null, _ := res.IsNull(row, col); null {
				m[res.ColName(col)] = nil
				continue
			}
			m[res.ColName(col)] = cellText(res, row, col)
		}
		rows = append(rows, m)
	}

	enc := json.NewEncoder(s.out)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func cellText(res *msql.Result, row, col int) string {
	t, _ := res.ColType(col)
	switch t {
	case driver.Bool:
		v, err := res.Bool(row, col)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("%v", v)
	case driver.Int16:
		v, err := res.Int16(row, col)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("%d", v)
	case driver.Int32:
		v, err := res.Int32(row, col)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("%d", v)
	case driver.Int64:
		v, err := res.Int64(row, col)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("%d", v)
	case driver.Binary:
		v, err := res.Binary(row, col)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("<%d bytes>", len(v))
	default:
		v, err := res.Text(row, col)
		if err != nil {
			return ""
		}
		return v
	}
}
