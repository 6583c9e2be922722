// Package odbc registers the "odbc" backend driver, composing
// alexbrainman/odbc on top of sqlbase.Base. It targets a DSN configured at
// the OS level (odbc.ini/ODBC Data Source Administrator), optionally
// fronting a MySQL server. The mysql_engine/mysql_charset options are
// accepted by the connection-string schema but buildDSN does not use them.
package odbc

import (
	"fmt"
	"strings"

	_ "github.com/alexbrainman/odbc" // registers the "odbc" database/sql driver

	"github.com/dbmesh/msql/driver"
	"github.com/dbmesh/msql/driver/sqlbase"
)

func init() {
	driver.Register("odbc", newDriver)
}

func newDriver() driver.Driver {
	return &sqlbase.Base{Cfg: sqlbase.Config{
		Name:          "odbc",
		DisplayName:   "ODBC",
		Version:       "alexbrainman/odbc",
		SQLDriverName: "odbc",
		BuildDSN:      buildDSN,
		Placeholder:   driver.PlaceholderQuestion,
		UpdLockCap:    driver.UpdLockNone,
		BitOpCap:      driver.BitOpInfix,
		TableSuffix:   "",
		ConnStrSchema: []driver.ConnStrParam{
			{Name: "dsn", Required: true},
			{Name: "username"},
			{Name: "password"},
			{Name: "mysql_engine"},
			{Name: "mysql_charset"},
		},
		DataTypeFunc: dataType,
	}}
}

// buildDSN assembles an ODBC connection string referencing a pre-configured
// DSN by name, with optional UID/PWD overrides.
func buildDSN(opts map[string]string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "DSN=%s", opts["dsn"])
	if u := opts["username"]; u != "" {
		fmt.Fprintf(&b, ";UID=%s", u)
	}
	if p := opts["password"]; p != "" {
		fmt.Fprintf(&b, ";PWD=%s", p)
	}
	return b.String(), nil
}

// dataType renders a conservative, widely-supported ODBC type set; a DSN
// fronting a specific backend may tolerate richer types, but ODBC's
// contract here is the lowest common denominator across drivers.
func dataType(t driver.DataType, maxLen int) string {
	switch t {
	case driver.Bool:
		return "SMALLINT"
	case driver.Int16:
		return "SMALLINT"
	case driver.Int32:
		return "INTEGER"
	case driver.Int64:
		return "BIGINT"
	case driver.Binary:
		return "VARBINARY"
	case driver.Text:
		if maxLen > 0 {
			return fmt.Sprintf("VARCHAR(%d)", maxLen)
		}
		return "VARCHAR(8000)"
	default:
		return "VARCHAR(255)"
	}
}
