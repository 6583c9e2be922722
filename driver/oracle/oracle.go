// Package oracle registers the "oracle" backend driver, composing
// godror/godror on top of sqlbase.Base.
package oracle

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/godror/godror" // registers the "godror" database/sql driver

	"github.com/dbmesh/msql/driver"
	"github.com/dbmesh/msql/driver/sqlbase"
)

func init() {
	driver.Register("oracle", newDriver)
}

func newDriver() driver.Driver {
	return &sqlbase.Base{Cfg: sqlbase.Config{
		Name:          "oracle",
		DisplayName:   "Oracle",
		Version:       "godror",
		SQLDriverName: "godror",
		BuildDSN:      buildDSN,
		Placeholder:   driver.PlaceholderColon,
		UpdLockCap:    driver.UpdLockForUpdate,
		BitOpCap:      driver.BitOpFunction,
		TableSuffix:   "",
		ConnStrSchema: []driver.ConnStrParam{
			{Name: "dsn"},
			{Name: "host"},
			{Name: "service_name"},
			{Name: "username"},
			{Name: "password"},
		},
		DataTypeFunc:         dataType,
		RewriteIndexNameFunc: rewriteIndexName,
		ConnectRunOnceFunc:   connectRunOnce,
	}}
}

func buildDSN(opts map[string]string) (string, error) {
	if dsn := opts["dsn"]; dsn != "" {
		return dsn, nil
	}
	if opts["host"] == "" || opts["service_name"] == "" {
		return "", driver.NewError(driver.ConnParams, "oracle: dsn, or both host and service_name, is required")
	}

	hosts, err := driver.ParseHostPorts(opts["host"], 1521)
	if err != nil {
		return "", err
	}
	h := hosts[0]

	var b strings.Builder
	fmt.Fprintf(&b, "user=%q password=%q connectString=\"%s:%d/%s\"",
		opts["username"], opts["password"], h.Host, h.Port, opts["service_name"])
	return b.String(), nil
}

// connectRunOnce pins the session isolation level to READ COMMITTED on every
// connection, and — once, on the first connection opened against the write
// pool — installs a BITOR function, since Oracle has no native one (it only
// has BITAND); BITOR(x,y) = x + y - BITAND(x,y) is the standard identity for
// two non-negative bitmasks.
func connectRunOnce(ctx context.Context, conn *sql.Conn, firstInPool bool) error {
	if _, err := conn.ExecContext(ctx, "ALTER SESSION SET ISOLATION_LEVEL = READ COMMITTED"); err != nil {
		return driver.WrapError(driver.QueryFailure, err, "set session isolation level failed")
	}

	if !firstInPool {
		return nil
	}

	_, err := conn.ExecContext(ctx, `CREATE OR REPLACE FUNCTION BITOR(x IN NUMBER, y IN NUMBER) RETURN NUMBER AS
BEGIN
  RETURN x + y - BITAND(x, y);
END;`)
	if err != nil {
		return driver.WrapError(driver.QueryFailure, err, "failed to create BITOR function")
	}
	return nil
}

func dataType(t driver.DataType, maxLen int) string {
	switch t {
	case driver.Bool:
		return "NUMBER(1)"
	case driver.Int16:
		return "NUMBER(5)"
	case driver.Int32:
		return "NUMBER(10)"
	case driver.Int64:
		return "NUMBER(19)"
	case driver.Binary:
		if maxLen > 0 && maxLen <= 2000 {
			return fmt.Sprintf("RAW(%d)", maxLen)
		}
		return "BLOB"
	case driver.Text:
		if maxLen > 0 && maxLen <= 4000 {
			return fmt.Sprintf("VARCHAR2(%d)", maxLen)
		}
		return "CLOB"
	default:
		return "VARCHAR2(255)"
	}
}

// rewriteIndexName truncates an over-long index name to Oracle's 30-character
// identifier limit. It splits on underscores and progressively truncates
// each section (from the end, skipping the leading "i" marker section) down
// to as few as 2 characters per section, trying the least destructive cut
// first. If nothing fits, it falls back to "i_" plus an 18-digit
// time-random id — collision-resistant, but no longer traceable to the
// original name.
func rewriteIndexName(name string) string {
	if len(name) <= 30 {
		return name
	}

	sects := strings.Split(name, "_")
	for maxLen := 6; maxLen >= 2; maxLen-- {
		for applyFrom := len(sects) - 1; applyFrom > 0; applyFrom-- {
			candidate := joinTruncated(sects, maxLen, applyFrom)
			if len(candidate) <= 30 {
				return candidate
			}
		}
	}

	return fmt.Sprintf("i_%018d", driver.GenTimeRandID(18))
}

func joinTruncated(sects []string, maxLen, applyFrom int) string {
	var b strings.Builder
	for i, s := range sects {
		if i >= applyFrom && len(s) > maxLen {
			s = s[:maxLen]
		}
		b.WriteString(s)
		if i != len(sects)-1 {
			b.WriteByte('_')
		}
	}
	return b.String()
}
