package postgres

import (
	"strings"
	"testing"

	"github.com/dbmesh/msql/driver"
)

func TestBuildDSN_Basic(t *testing.T) {
	dsn, err := buildDSN(map[string]string{
		"host": "10.0.0.1:5433", "db": "mydb", "username": "u", "password": "p",
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"host=10.0.0.1", "port=5433", "dbname=mydb", "user=u", "password=p", "sslmode=disable"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("dsn = %q, missing %q", dsn, want)
		}
	}
}

func TestBuildDSN_DefaultPort(t *testing.T) {
	dsn, err := buildDSN(map[string]string{"host": "10.0.0.1", "db": "mydb"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dsn, "port=5432") {
		t.Errorf("dsn = %q, want default port 5432", dsn)
	}
}

func TestBuildDSN_SSL(t *testing.T) {
	dsn, err := buildDSN(map[string]string{"host": "10.0.0.1", "db": "mydb", "ssl": "true"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dsn, "sslmode=require") {
		t.Errorf("dsn = %q, want sslmode=require", dsn)
	}
}

func TestBuildDSN_ApplicationName(t *testing.T) {
	dsn, err := buildDSN(map[string]string{"host": "10.0.0.1", "db": "mydb", "application_name": "msql-demo"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dsn, "application_name=msql-demo") {
		t.Errorf("dsn = %q, missing application_name", dsn)
	}
}

func TestBuildDSN_BadHost(t *testing.T) {
	if _, err := buildDSN(map[string]string{"host": "", "db": "mydb"}); err == nil {
		t.Error("expected an error for an empty host")
	}
}

func TestDataType(t *testing.T) {
	cases := map[driver.DataType]string{
		driver.Bool:  "BOOLEAN",
		driver.Int16: "SMALLINT",
		driver.Int32: "INTEGER",
		driver.Int64: "BIGINT",
		driver.Binary: "BYTEA",
	}
	for dt, want := range cases {
		if got := dataType(dt, 0); got != want {
			t.Errorf("dataType(%v, 0) = %q, want %q", dt, got, want)
		}
	}
	if got := dataType(driver.Text, 64); got != "VARCHAR(64)" {
		t.Errorf("dataType(Text, 64) = %q", got)
	}
	if got := dataType(driver.Text, 0); got != "TEXT" {
		t.Errorf("dataType(Text, 0) = %q, want TEXT", got)
	}
}

func TestDriverRegistered(t *testing.T) {
	found := false
	for _, n := range driver.Names() {
		if n == "postgres" {
			found = true
		}
	}
	if !found {
		t.Error(`"postgres" not found in driver.Names() after package import`)
	}
}
