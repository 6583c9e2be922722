package msql

import (
	"sync"
	"time"

	"github.com/dbmesh/msql/driver"
	"github.com/dbmesh/msql/logging"
)

// Pool is a composite of one primary sub-pool and an optional read-only
// sub-pool, sharing a driver, connection string credentials and flags.
// Statements are routed to the read-only sub-pool when they are a
// non-master-only SELECT and one exists, otherwise to the primary.
//
// The descriptor set (connection string, flags, driver) is frozen once
// Start succeeds; only timeout adjustments (SetReconnectTime and friends)
// remain legal afterward.
type Pool struct {
	mu      sync.Mutex
	drvName string
	drv     driver.Driver

	connStr    string
	flags      driver.PoolFlags
	poolHandle driver.PoolHandle
	hostCount  int

	primary  *subPool
	readOnly *subPool
	started  bool

	log logging.Func

	nextConnID int64
	idMu       sync.Mutex

	giMu  sync.Mutex
	group map[string]*groupInsertEntry
}

// NewPool creates (but does not start) a connection pool for driverName
// against connStr, with maxConns as the primary sub-pool's ceiling. The
// driver is loaded (and Init'd, on first use process-wide) eagerly so
// configuration errors surface immediately rather than on first Start.
func NewPool(driverName, connStr string, maxConns int, flags driver.PoolFlags, log logging.Func) (*Pool, error) {
	d, err := driver.Load(driverName)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Discard
	}

	poolHandle, hostCount, err := d.CreatePool(connStr, flags)
	if err != nil {
		return nil, err
	}

	p := &Pool{
		drvName:    driverName,
		drv:        d,
		connStr:    connStr,
		flags:      flags,
		poolHandle: poolHandle,
		hostCount:  hostCount,
		log:        log,
		group:      map[string]*groupInsertEntry{},
	}

	policy := driver.Failover
	if flags.Has(driver.LoadBalance) {
		policy = driver.LoadBalancePolicy
	}
	p.primary = newSubPool(false, maxConns, flags, policy, hostCount, d, poolHandle, &p.nextConnID, &p.idMu, log)

	return p, nil
}

// AddReadOnly attaches a read-only sub-pool, sharing this pool's driver and
// connection identity. Must be called before Start.
func (p *Pool) AddReadOnly(maxConns int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return driver.NewError(driver.ConnParams, "cannot add read-only sub-pool after Start")
	}
	if p.readOnly != nil {
		return driver.NewError(driver.ConnParams, "read-only sub-pool already configured")
	}

	policy := driver.Failover
	if p.flags.Has(driver.LoadBalance) {
		policy = driver.LoadBalancePolicy
	}
	p.readOnly = newSubPool(true, maxConns, p.flags, policy, p.hostCount, p.drv, p.poolHandle, &p.nextConnID, &p.idMu, p.log)
	return nil
}

// Start establishes the configured sub-pools' initial connections. After
// Start returns successfully, the descriptor set is frozen.
func (p *Pool) Start() error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return driver.NewError(driver.ConnParams, "pool already started")
	}
	p.started = true
	p.mu.Unlock()

	if err := p.primary.start(); err != nil {
		return err
	}
	if p.readOnly != nil {
		if err := p.readOnly.start(); err != nil {
			return err
		}
	}
	return nil
}

// SetReconnectTime sets the primary (and, if present, read-only) sub-pool's
// connection retirement age. Legal before or after Start.
func (p *Pool) SetReconnectTime(d time.Duration) {
	p.primary.mu.Lock()
	p.primary.reconnectTime = d
	p.primary.mu.Unlock()
	if p.readOnly != nil {
		p.readOnly.mu.Lock()
		p.readOnly.reconnectTime = d
		p.readOnly.mu.Unlock()
	}
}

// SetMaxIdleTime sets the idle-eviction threshold on both sub-pools.
func (p *Pool) SetMaxIdleTime(d time.Duration) {
	p.primary.mu.Lock()
	p.primary.maxIdleTime = d
	p.primary.mu.Unlock()
	if p.readOnly != nil {
		p.readOnly.mu.Lock()
		p.readOnly.maxIdleTime = d
		p.readOnly.mu.Unlock()
	}
}

// SetFallbackWindow sets the host-failure deprioritization window on both
// sub-pools.
func (p *Pool) SetFallbackWindow(d time.Duration) {
	p.primary.mu.Lock()
	p.primary.fallbackWin = d
	p.primary.mu.Unlock()
	if p.readOnly != nil {
		p.readOnly.mu.Lock()
		p.readOnly.fallbackWin = d
		p.readOnly.mu.Unlock()
	}
}

// route picks primary or read-only per §4.6 step 2/3: a non-master-only
// SELECT goes to the read-only sub-pool if one exists, everything else to
// primary.
func (p *Pool) route(query string, masterOnly bool) *subPool {
	if !masterOnly && p.readOnly != nil && driver.IsSelectQuery(query) {
		return p.readOnly
	}
	return p.primary
}

// acquire obtains a connection from sp, blocking until one is available.
func (p *Pool) acquire(sp *subPool) (*conn, error) {
	return sp.acquire()
}

// release returns c to its owning sub-pool.
func (p *Pool) release(c *conn, execErr error) {
	c.sub.release(c, execErr)
}

// ActiveConns reports the number of live connections in the primary
// (readonly=false) or read-only (readonly=true) sub-pool. Returns 0 if the
// requested sub-pool is not configured.
func (p *Pool) ActiveConns(readonly bool) int {
	if readonly {
		if p.readOnly == nil {
			return 0
		}
		return p.readOnly.activeConns()
	}
	return p.primary.activeConns()
}

// ServerVersion reports the backend server version as seen by an arbitrary
// live primary connection, acquiring and releasing one if necessary.
func (p *Pool) ServerVersion() (string, error) {
	c, err := p.primary.acquire()
	if err != nil {
		return "", err
	}
	defer p.primary.release(c, nil)
	return p.drv.ServerVersion(c.handle), nil
}

// DriverName returns the short registry name this pool was created with.
func (p *Pool) DriverName() string { return p.drvName }

// DriverDisplayName returns the backend's human-readable name.
func (p *Pool) DriverDisplayName() string { return p.drv.DisplayName() }

// DriverVersion returns the driver plugin's own version tag.
func (p *Pool) DriverVersion() string { return p.drv.Version() }

// Destroy tears down both sub-pools, closing every idle connection. Per §5,
// destruction fails if any connection is still acquired by a caller (i.e.
// not yet released back to the pool); callers must release every handle
// before calling Destroy.
func (p *Pool) Destroy() error {
	if n := p.primary.inUse(); n > 0 {
		return driver.NewError(driver.ConnFailed, "cannot destroy pool: %d primary connection(s) still in use", n)
	}
	if p.readOnly != nil {
		if n := p.readOnly.inUse(); n > 0 {
			return driver.NewError(driver.ConnFailed, "cannot destroy pool: %d read-only connection(s) still in use", n)
		}
	}

	p.primary.destroy()
	if p.readOnly != nil {
		p.readOnly.destroy()
	}
	p.drv.DestroyPool(p.poolHandle)
	return nil
}
