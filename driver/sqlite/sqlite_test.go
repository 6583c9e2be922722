package sqlite

import (
	"testing"

	"github.com/dbmesh/msql/driver"
)

func TestBuildDSN(t *testing.T) {
	cases := []struct {
		name string
		opts map[string]string
		want string
	}{
		{"bare path", map[string]string{"path": "/tmp/x.db"}, "/tmp/x.db"},
		{"wal", map[string]string{"path": "/tmp/x.db", "journal_mode": "true"}, "/tmp/x.db?_journal_mode=WAL"},
		{"shared cache", map[string]string{"path": "/tmp/x.db", "shared_cache": "1"}, "/tmp/x.db?cache=shared"},
	}
	for _, c := range cases {
		got, err := buildDSN(c.opts)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, got, c.want)
		}
	}
}

func TestBuildDSN_MissingPath(t *testing.T) {
	if _, err := buildDSN(map[string]string{}); err == nil {
		t.Error("expected an error when path is missing")
	}
}

func TestDataType(t *testing.T) {
	cases := []struct {
		t      driver.DataType
		maxLen int
		want   string
	}{
		{driver.Bool, 0, "BOOLEAN"},
		{driver.Int64, 0, "INTEGER"},
		{driver.Binary, 0, "BLOB"},
		{driver.Text, 0, "TEXT"},
		{driver.Text, 32, "VARCHAR(32)"},
	}
	for _, c := range cases {
		if got := dataType(c.t, c.maxLen); got != c.want {
			t.Errorf("dataType(%v, %d) = %q, want %q", c.t, c.maxLen, got, c.want)
		}
	}
}

func TestDriverRegistered(t *testing.T) {
	found := false
	for _, n := range driver.Names() {
		if n == "sqlite" {
			found = true
		}
	}
	if !found {
		t.Error(`"sqlite" not found in driver.Names() after package import`)
	}
}
