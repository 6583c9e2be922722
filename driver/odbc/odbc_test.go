package odbc

import (
	"strings"
	"testing"

	"github.com/dbmesh/msql/driver"
)

func TestBuildDSN_NameOnly(t *testing.T) {
	dsn, err := buildDSN(map[string]string{"dsn": "MyDataSource"})
	if err != nil {
		t.Fatal(err)
	}
	if dsn != "DSN=MyDataSource" {
		t.Errorf("buildDSN = %q, want \"DSN=MyDataSource\"", dsn)
	}
}

func TestBuildDSN_WithCredentials(t *testing.T) {
	dsn, err := buildDSN(map[string]string{"dsn": "MyDataSource", "username": "u", "password": "p"})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"DSN=MyDataSource", ";UID=u", ";PWD=p"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("dsn = %q, missing %q", dsn, want)
		}
	}
}

func TestDataType(t *testing.T) {
	cases := map[driver.DataType]string{
		driver.Bool:  "SMALLINT",
		driver.Int16: "SMALLINT",
		driver.Int32: "INTEGER",
		driver.Int64: "BIGINT",
		driver.Binary: "VARBINARY",
	}
	for dt, want := range cases {
		if got := dataType(dt, 0); got != want {
			t.Errorf("dataType(%v, 0) = %q, want %q", dt, got, want)
		}
	}
	if got := dataType(driver.Text, 0); got != "VARCHAR(8000)" {
		t.Errorf("dataType(Text, 0) = %q, want VARCHAR(8000)", got)
	}
	if got := dataType(driver.Text, 50); got != "VARCHAR(50)" {
		t.Errorf("dataType(Text, 50) = %q", got)
	}
}

func TestDriverRegistered(t *testing.T) {
	found := false
	for _, n := range driver.Names() {
		if n == "odbc" {
			found = true
		}
	}
	if !found {
		t.Error(`"odbc" not found in driver.Names() after package import`)
	}
}
