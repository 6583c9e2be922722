// Package sqlite registers the "sqlite" backend driver, composing
// mattn/go-sqlite3 on top of sqlbase.Base.
package sqlite

import (
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/dbmesh/msql/driver"
	"github.com/dbmesh/msql/driver/sqlbase"
)

func init() {
	driver.Register("sqlite", newDriver)
}

func newDriver() driver.Driver {
	return &sqlbase.Base{Cfg: sqlbase.Config{
		Name:          "sqlite",
		DisplayName:   "SQLite",
		Version:       libVersion(),
		SQLDriverName: "sqlite3",
		BuildDSN:      buildDSN,
		Placeholder:   driver.PlaceholderQuestion,
		UpdLockCap:    driver.UpdLockNone,
		BitOpCap:      driver.BitOpInfix,
		TableSuffix:   "",
		ConnStrSchema: []driver.ConnStrParam{
			{Name: "path", Required: true},
			{Name: "journal_mode"},
			{Name: "analyze"},
			{Name: "integrity_check"},
			{Name: "shared_cache"},
			{Name: "autocreate"},
		},
		DataTypeFunc: dataType,
	}}
}

func libVersion() string {
	v, _, _ := sqlite3.Version()
	return v
}

// buildDSN turns the parsed connection-string options into a go-sqlite3
// DSN: the file path followed by its own "?key=value" query options for the
// pragmas this driver exposes.
func buildDSN(opts map[string]string) (string, error) {
	path := opts["path"]
	if path == "" {
		return "", driver.NewError(driver.ConnParams, "sqlite: path is required")
	}

	var q []string
	if mode, ok := opts["journal_mode"]; ok {
		if parseBool(mode) {
			q = append(q, "_journal_mode=WAL")
		}
	}
	if v, ok := opts["shared_cache"]; ok && parseBool(v) {
		q = append(q, "cache=shared")
	}
	if v, ok := opts["autocreate"]; ok && !parseBool(v) {
		q = append(q, "mode=rw")
	}

	dsn := path
	if len(q) > 0 {
		dsn += "?" + strings.Join(q, "&")
	}
	return dsn, nil
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
	case driver.Int16, driver.Int32, driver.Int64:
		return "INTEGER"
	case driver.Binary:
		return "BLOB"
	case driver.Text:
		if maxLen > 0 {
			return fmt.Sprintf("VARCHAR(%d)", maxLen)
		}
		return "TEXT"
	default:
		return "TEXT"
	}
}
