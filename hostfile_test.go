package msql

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dbmesh/msql/driver"
)

func TestHostFile_NewMissingFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	hf, err := NewHostFile(filepath.Join(dir, "hosts.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if got := hf.Get(); len(got) != 0 {
		t.Errorf("Get() on a fresh HostFile = %v, want empty", got)
	}
	if got := hf.ConnString(); got != "" {
		t.Errorf("ConnString() on a fresh HostFile = %q, want empty", got)
	}
}

func TestHostFile_SetPersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hosts.yaml")
	hf, err := NewHostFile(path)
	if err != nil {
		t.Fatal(err)
	}

	hosts := []driver.HostPort{{Host: "10.0.0.1", Port: 5432}, {Host: "10.0.0.2"}}
	if err := hf.Set(hosts); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist after Set: %v", path, err)
	}

	reloaded, err := NewHostFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := reloaded.Get()
	if len(got) != len(hosts) {
		t.Fatalf("got %d hosts after reload, want %d", len(got), len(hosts))
	}
	for i := range hosts {
		if got[i] != hosts[i] {
			t.Errorf("host %d: got %+v, want %+v", i, got[i], hosts[i])
		}
	}
}

func TestHostFile_ConnString(t *testing.T) {
	hf, err := NewHostFile(filepath.Join(t.TempDir(), "hosts.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := hf.Set([]driver.HostPort{{Host: "a"}, {Host: "b", Port: 1234}}); err != nil {
		t.Fatal(err)
	}
	if got, want := hf.ConnString(), "a,b:1234"; got != want {
		t.Errorf("ConnString() = %q, want %q", got, want)
	}
}
