package msql

import (
	"time"

	"github.com/dbmesh/msql/driver"
)

// connState is a connection's position in its OK / ROLLBACK / FAILED state
// machine. Transitions are unidirectional within one acquisition cycle: OK
// may move to ROLLBACK or FAILED; ROLLBACK may only move to OK (via an
// explicit rollback) or FAILED; FAILED is terminal and the connection is
// destroyed on release.
type connState int

const (
	connOK connState = iota
	connRollback
	connFailed
)

// conn wraps one backend session together with the bookkeeping the pool and
// transaction manager need: which sub-pool and host it belongs to, its
// lifecycle timestamps, and its place in the OK/ROLLBACK/FAILED machine.
type conn struct {
	id        int64
	sub       *subPool
	hostIndex int
	handle    driver.ConnHandle

	createdAt time.Time
	lastUsed  time.Time

	state     connState
	inTxn     bool
}

func newConn(id int64, sub *subPool, hostIndex int, handle driver.ConnHandle) *conn {
	now := time.Now()
	return &conn{
		id:        id,
		sub:       sub,
		hostIndex: hostIndex,
		handle:    handle,
		createdAt: now,
		lastUsed:  now,
		state:     connOK,
	}
}

// markUsed stamps the connection's last-use time; called on every acquire.
func (c *conn) markUsed() {
	c.lastUsed = time.Now()
}

// expiredByAge reports whether the connection has lived at least
// reconnectTime, the sub-pool's configured retirement age (0 disables it).
func (c *conn) expiredByAge(reconnectTime time.Duration) bool {
	return reconnectTime > 0 && time.Since(c.createdAt) >= reconnectTime
}

// expiredByIdle reports whether the connection has been idle at least
// maxIdle, the sub-pool's configured idle eviction threshold (0 disables
// it).
func (c *conn) expiredByIdle(maxIdle time.Duration) bool {
	return maxIdle > 0 && time.Since(c.lastUsed) >= maxIdle
}

// executeSimple runs a one-off statement with no bound parameters and
// discards its result, skipping the sanity checks (string-literal
// detection, etc.) the normal prepare path applies. Nothing in this module
// calls it at present: the backends' connect-once hooks (e.g. Oracle's
// BITOR UDF install) run their fixed SQL directly on the *sql.Conn.
func (c *conn) executeSimple(d driver.Driver, query string) error {
	stmt, err := d.Prepare(c.handle, query, nil)
	if err != nil {
		return driver.WrapError(driver.QueryPrepare, err, "executeSimple: prepare failed")
	}
	defer d.PrepareDestroy(stmt)

	_, _, err = d.Execute(c.handle, stmt, nil /* no bind rows */)
	if err != nil {
		return driver.WrapError(driver.QueryFailure, err, "executeSimple: execute failed")
	}
	return nil
}
