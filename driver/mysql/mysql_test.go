package mysql

import (
	"strings"
	"testing"

	"github.com/dbmesh/msql/driver"
)

func TestBuildDSN_TCP(t *testing.T) {
	dsn, err := buildDSN(map[string]string{
		"host": "10.0.0.1:3307", "db": "mydb", "username": "u", "password": "p",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dsn, "@tcp(10.0.0.1:3307)/mydb") {
		t.Errorf("dsn = %q, missing expected tcp address/db", dsn)
	}
	if !strings.HasPrefix(dsn, "u:p@") {
		t.Errorf("dsn = %q, missing expected user:pass prefix", dsn)
	}
}

func TestBuildDSN_UnixSocket(t *testing.T) {
	dsn, err := buildDSN(map[string]string{"socketpath": "/var/run/mysqld/mysqld.sock", "db": "mydb"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dsn, "@unix(/var/run/mysqld/mysqld.sock)/mydb") {
		t.Errorf("dsn = %q, missing expected unix socket address", dsn)
	}
}

func TestBuildDSN_RequiresHostOrSocket(t *testing.T) {
	if _, err := buildDSN(map[string]string{"db": "mydb"}); err == nil {
		t.Error("expected an error when neither host nor socketpath is set")
	}
}

func TestDataType(t *testing.T) {
	cases := map[driver.DataType]string{
		driver.Bool:  "TINYINT(1)",
		driver.Int16: "SMALLINT",
		driver.Int32: "INT",
		driver.Int64: "BIGINT",
	}
	for dt, want := range cases {
		if got := dataType(dt, 0); got != want {
			t.Errorf("dataType(%v, 0) = %q, want %q", dt, got, want)
		}
	}
	if got := dataType(driver.Text, 64); got != "VARCHAR(64)" {
		t.Errorf("dataType(Text, 64) = %q", got)
	}
}
