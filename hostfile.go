package msql

import (
	"os"
	"strconv"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/google/renameio"

	"github.com/dbmesh/msql/driver"
)

// HostFile persists a pool's resolved host list to a YAML file across
// process restarts, the same role the teacher's node-store idiom plays for
// a client's candidate server list: read once at startup to seed a
// connection string's host clause, written back whenever the set changes.
type HostFile struct {
	path  string
	mu    sync.RWMutex
	hosts []driver.HostPort
}

// NewHostFile opens (or, if absent, prepares to create) a HostFile backed
// by path.
func NewHostFile(path string) (*HostFile, error) {
	hosts := []driver.HostPort{}

	_, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &hosts); err != nil {
			return nil, err
		}
	}

	return &HostFile{path: path, hosts: hosts}, nil
}

// Get returns a copy of the current host list.
func (h *HostFile) Get() []driver.HostPort {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ret := make([]driver.HostPort, len(h.hosts))
	copy(ret, h.hosts)
	return ret
}

// Set replaces the host list and persists it atomically (write-to-temp +
// rename, via renameio, so a crash mid-write never leaves a truncated
// file).
func (h *HostFile) Set(hosts []driver.HostPort) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := yaml.Marshal(hosts)
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(h.path, data, 0o600); err != nil {
		return err
	}
	h.hosts = hosts
	return nil
}

// ConnString renders the host list as the library's connection-string
// "host=" clause value (comma-separated host:port pairs), for splicing into
// a full connection string alongside the other options.
func (h *HostFile) ConnString() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s := ""
	for i, hp := range h.hosts {
		if i > 0 {
			s += ","
		}
		s += hp.Host
		if hp.Port != 0 {
			s += ":" + strconv.Itoa(hp.Port)
		}
	}
	return s
}
