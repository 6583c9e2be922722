// Package postgres registers the "postgres" backend driver, composing
// jackc/pgx/v5 (via its database/sql-compatible stdlib adapter) on top of
// sqlbase.Base.
package postgres

import (
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/dbmesh/msql/driver"
	"github.com/dbmesh/msql/driver/sqlbase"
)

func init() {
	driver.Register("postgres", newDriver)
}

func newDriver() driver.Driver {
	return &sqlbase.Base{Cfg: sqlbase.Config{
		Name:          "postgres",
		DisplayName:   "PostgreSQL",
		Version:       "pgx/v5",
		SQLDriverName: "pgx",
		BuildDSN:      buildDSN,
		DefaultPort:   5432,
		Placeholder:   driver.PlaceholderDollar,
		UpdLockCap:    driver.UpdLockForUpdateOf,
		BitOpCap:      driver.BitOpInfix,
		TableSuffix:   "",
		ConflictClause: "ON CONFLICT DO NOTHING",
		ConnStrSchema: []driver.ConnStrParam{
			{Name: "db", Required: true},
			{Name: "host", Required: true},
			{Name: "username"},
			{Name: "password"},
			{Name: "ssl"},
			{Name: "application_name"},
		},
		DataTypeFunc: dataType,
	}}
}

// buildDSN assembles a libpq-style keyword/value DSN from the parsed
// connection-string options.
func buildDSN(opts map[string]string) (string, error) {
	hosts, err := driver.ParseHostPorts(opts["host"], 5432)
	if err != nil {
		return "", err
	}
	h := hosts[0]

	var b strings.Builder
	fmt.Fprintf(&b, "host=%s port=%d dbname=%s", h.Host, h.Port, opts["db"])
	if u := opts["username"]; u != "" {
		fmt.Fprintf(&b, " user=%s", u)
	}
	if p := opts["password"]; p != "" {
		fmt.Fprintf(&b, " password=%s", p)
	}
	if app := opts["application_name"]; app != "" {
		fmt.Fprintf(&b, " application_name=%s", app)
	}
	if ssl, ok := opts["ssl"]; ok && parseBool(ssl) {
		b.WriteString(" sslmode=require")
	} else {
		b.WriteString(" sslmode=disable")
	}
	return b.String(), nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func dataType(t driver.DataType, maxLen int) string {
	switch t {
	case driver.Bool:
		return "BOOLEAN"
	case driver.Int16:
		return "SMALLINT"
	case driver.Int32:
		return "INTEGER"
	case driver.Int64:
		return "BIGINT"
	case driver.Binary:
		return "BYTEA"
	case driver.Text:
		if maxLen > 0 {
			return fmt.Sprintf("VARCHAR(%d)", maxLen)
		}
		return "TEXT"
	default:
		return "TEXT"
	}
}
