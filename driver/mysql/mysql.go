// Package mysql registers the "mysql" backend driver, composing
// go-sql-driver/mysql on top of sqlbase.Base.
package mysql

import (
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/dbmesh/msql/driver"
	"github.com/dbmesh/msql/driver/sqlbase"
)

func init() {
	driver.Register("mysql", newDriver)
}

func newDriver() driver.Driver {
	return &sqlbase.Base{Cfg: sqlbase.Config{
		Name:          "mysql",
		DisplayName:   "MySQL",
		Version:       "go-sql-driver",
		SQLDriverName: "mysql",
		BuildDSN:      buildDSN,
		DefaultPort:   3306,
		Placeholder:   driver.PlaceholderQuestion,
		UpdLockCap:    driver.UpdLockForUpdate,
		BitOpCap:      driver.BitOpInfix,
		TableSuffix:   "ENGINE=InnoDB",
		// MySQL has no native ON CONFLICT DO NOTHING; the standard idiom is
		// an UPDATE that writes a column back to itself.
		ConflictClause: "ON DUPLICATE KEY UPDATE id = id",
		ConnStrSchema: []driver.ConnStrParam{
			{Name: "db", Required: true},
			{Name: "host"},
			{Name: "socketpath"},
			{Name: "username"},
			{Name: "password"},
			{Name: "ssl"},
			{Name: "mysql_engine"},
			{Name: "mysql_charset"},
			{Name: "max_isolation"},
		},
		DataTypeFunc: dataType,
	}}
}

// buildDSN assembles a go-sql-driver/mysql DSN of the form
// user:pass@tcp(host:port)/db?params or user:pass@unix(socketpath)/db?params.
func buildDSN(opts map[string]string) (string, error) {
	if opts["host"] == "" && opts["socketpath"] == "" {
		return "", driver.NewError(driver.ConnParams, "mysql: one of host or socketpath is required")
	}

	cfg := mysql.NewConfig()
	cfg.User = opts["username"]
	cfg.Passwd = opts["password"]
	cfg.DBName = opts["db"]
	cfg.ParseTime = true

	if opts["socketpath"] != "" {
		cfg.Net = "unix"
		cfg.Addr = opts["socketpath"]
	} else {
		cfg.Net = "tcp"
		hosts, err := driver.ParseHostPorts(opts["host"], 3306)
		if err != nil {
			return "", err
		}
		cfg.Addr = fmt.Sprintf("%s:%d", hosts[0].Host, hosts[0].Port)
	}

	if charset, ok := opts["mysql_charset"]; ok && charset != "" {
		cfg.Collation = charset + "_general_ci"
	}
	if ssl, ok := opts["ssl"]; ok && parseBool(ssl) {
		cfg.TLSConfig = "true"
	}

	return cfg.FormatDSN(), nil
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
		return "TINYINT(1)"
	case driver.Int16:
		return "SMALLINT"
	case driver.Int32:
		return "INT"
	case driver.Int64:
		return "BIGINT"
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
