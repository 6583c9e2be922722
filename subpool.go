package msql

import (
	"sync"
	"time"

	"github.com/dbmesh/msql/driver"
	"github.com/dbmesh/msql/logging"
)

// subPool is a homogeneous set of connections to one logical role, primary
// or read-only. It owns host selection, failover/load-balance rotation,
// idle/reconnect eviction and the free-list condition variable the pool
// blocks acquirers on.
type subPool struct {
	readOnly bool

	mu       sync.Mutex
	cond     *sync.Cond
	idle     []*conn
	numConns int
	closed   bool

	maxConns  int
	flags     driver.PoolFlags
	policy    driver.SelectionPolicy
	hostCount int

	reconnectTime time.Duration
	maxIdleTime   time.Duration
	fallbackWin   time.Duration

	hostFailedAt []time.Time
	rrCounter    int

	nextConnID  *int64
	idMu        *sync.Mutex
	drv         driver.Driver
	poolHandle  driver.PoolHandle
	log         logging.Func
	firstSpawn  bool
}

func newSubPool(readOnly bool, maxConns int, flags driver.PoolFlags, policy driver.SelectionPolicy,
	hostCount int, drv driver.Driver, poolHandle driver.PoolHandle,
	nextConnID *int64, idMu *sync.Mutex, log logging.Func) *subPool {

	sp := &subPool{
		readOnly:     readOnly,
		maxConns:     maxConns,
		flags:        flags,
		policy:       policy,
		hostCount:    hostCount,
		hostFailedAt: make([]time.Time, hostCount),
		drv:          drv,
		poolHandle:   poolHandle,
		nextConnID:   nextConnID,
		idMu:         idMu,
		log:          log,
		firstSpawn:   !readOnly,
	}
	sp.cond = sync.NewCond(&sp.mu)
	return sp
}

// start establishes the sub-pool's initial connection(s): one, unless
// PrespawnAll is set, in which case all maxConns slots are filled up front.
func (sp *subPool) start() error {
	n := 1
	if sp.flags.Has(driver.PrespawnAll) {
		n = sp.maxConns
	}
	for i := 0; i < n; i++ {
		c, err := sp.establish()
		if err != nil {
			return err
		}
		sp.mu.Lock()
		sp.idle = append(sp.idle, c)
		sp.mu.Unlock()
	}
	return nil
}

// eligibleHosts computes the set of host indexes not currently within the
// fallback window, falling back to every host if all are currently failed.
func (sp *subPool) eligibleHosts() []int {
	now := time.Now()
	eligible := make([]int, 0, sp.hostCount)
	for i, failedAt := range sp.hostFailedAt {
		if failedAt.IsZero() || now.Sub(failedAt) >= sp.fallbackWin {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		for i := 0; i < sp.hostCount; i++ {
			eligible = append(eligible, i)
		}
	}
	return eligible
}

// pickHost selects the next host index to attempt, per the sub-pool's
// selection policy.
func (sp *subPool) pickHost(eligible []int) int {
	if sp.policy == driver.LoadBalancePolicy {
		idx := eligible[sp.rrCounter%len(eligible)]
		sp.rrCounter++
		return idx
	}
	// Failover: lowest eligible index.
	best := eligible[0]
	for _, h := range eligible[1:] {
		if h < best {
			best = h
		}
	}
	return best
}

// establish runs the full connection-establishment protocol (§4.5): pick an
// eligible host, connect, retry with the next host on disconnect-class
// failure up to one full rotation, then run connect_runonce.
func (sp *subPool) establish() (*conn, error) {
	sp.mu.Lock()
	eligible := sp.eligibleHosts()
	sp.mu.Unlock()

	var lastErr error
	attempts := len(eligible)
	if attempts == 0 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		sp.mu.Lock()
		eligible = sp.eligibleHosts()
		hostIdx := sp.pickHost(eligible)
		sp.mu.Unlock()

		handle, err := sp.drv.Connect(sp.poolHandle, sp.readOnly, hostIdx)
		if err != nil {
			kind := driver.KindOf(err)
			if kind.IsDisconnect() {
				sp.mu.Lock()
				sp.hostFailedAt[hostIdx] = time.Now()
				sp.mu.Unlock()
				sp.log(logging.Warn, "connect to host %d failed: %v", hostIdx, err)
				lastErr = err
				continue
			}
			return nil, err
		}

		sp.idMu.Lock()
		*sp.nextConnID++
		id := *sp.nextConnID
		sp.idMu.Unlock()

		firstInPool := sp.firstSpawn
		sp.firstSpawn = false

		if err := sp.drv.ConnectRunOnce(handle, firstInPool); err != nil {
			sp.drv.Disconnect(handle)
			return nil, driver.WrapError(driver.ConnFailed, err, "connect_runonce failed")
		}

		c := newConn(id, sp, hostIdx, handle)
		sp.mu.Lock()
		sp.numConns++
		sp.mu.Unlock()
		return c, nil
	}

	return nil, driver.WrapError(driver.ConnFailed, lastErr, "exhausted all hosts")
}

// acquire blocks until an idle connection is available, the sub-pool is
// destroyed, or a new one can be established under the maxConns ceiling.
func (sp *subPool) acquire() (*conn, error) {
	sp.mu.Lock()
	for {
		if sp.closed {
			sp.mu.Unlock()
			return nil, driver.NewError(driver.ConnFailed, "sub-pool destroyed")
		}
		if len(sp.idle) > 0 {
			c := sp.idle[len(sp.idle)-1]
			sp.idle = sp.idle[:len(sp.idle)-1]
			sp.mu.Unlock()

			if c.expiredByAge(sp.reconnectTime) || c.expiredByIdle(sp.maxIdleTime) {
				sp.drv.Disconnect(c.handle)
				sp.mu.Lock()
				sp.numConns--
				sp.mu.Unlock()
				fresh, err := sp.establish()
				if err != nil {
					return nil, err
				}
				fresh.markUsed()
				return fresh, nil
			}
			c.markUsed()
			return c, nil
		}
		if sp.numConns < sp.maxConns {
			sp.mu.Unlock()
			c, err := sp.establish()
			if err != nil {
				return nil, err
			}
			c.markUsed()
			return c, nil
		}
		sp.cond.Wait()
	}
}

// release returns c to the idle list, or discards/rolls it back first
// depending on its state.
func (sp *subPool) release(c *conn, execErr error) {
	kind := driver.KindOf(execErr)

	switch {
	case kind.IsDisconnect():
		c.state = connFailed
	case kind.IsRollback():
		c.state = connRollback
	}

	switch c.state {
	case connFailed:
		sp.drv.Disconnect(c.handle)
		sp.mu.Lock()
		sp.numConns--
		sp.cond.Signal()
		sp.mu.Unlock()
		return
	case connRollback:
		if err := sp.drv.Rollback(c.handle); err != nil {
			sp.drv.Disconnect(c.handle)
			sp.mu.Lock()
			sp.numConns--
			sp.cond.Signal()
			sp.mu.Unlock()
			return
		}
		c.state = connOK
	}

	if c.expiredByAge(sp.reconnectTime) {
		sp.drv.Disconnect(c.handle)
		sp.mu.Lock()
		sp.numConns--
		sp.cond.Signal()
		sp.mu.Unlock()
		return
	}

	sp.mu.Lock()
	sp.idle = append(sp.idle, c)
	sp.cond.Signal()
	sp.mu.Unlock()
}

// activeConns reports the number of live (connected) connections, matching
// the original's active-vs-establishing distinction: every conn tracked by
// numConns is, by construction, already connected.
func (sp *subPool) activeConns() int {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.numConns
}

// inUse reports the number of connections currently acquired by a caller
// (tracked but not sitting in the idle list).
func (sp *subPool) inUse() int {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.numConns - len(sp.idle)
}

func (sp *subPool) destroy() {
	sp.mu.Lock()
	sp.closed = true
	idle := sp.idle
	sp.idle = nil
	sp.mu.Unlock()

	for _, c := range idle {
		sp.drv.Disconnect(c.handle)
	}
	sp.cond.Broadcast()
}
