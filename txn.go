package msql

import (
	"errors"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/strategy"

	"github.com/dbmesh/msql/driver"
)

// Txn is a transaction handle: from successful Begin to successful
// Commit/Rollback, one connection (always drawn from the primary sub-pool,
// since a transaction may mix reads and writes) services every statement
// submitted through it.
type Txn struct {
	pool      *Pool
	c         *conn
	isolation Isolation
	done      bool
}

// Begin acquires a connection from pool's primary sub-pool and starts a
// transaction at the requested isolation level (handed to the driver's
// Begin as given; no nearest-supported-level substitution is done).
func Begin(pool *Pool, isolation Isolation) (*Txn, error) {
	c, err := pool.acquire(pool.primary)
	if err != nil {
		return nil, err
	}
	if err := pool.drv.Begin(c.handle, isolation); err != nil {
		pool.release(c, err)
		return nil, err
	}
	c.inTxn = true
	return &Txn{pool: pool, c: c, isolation: isolation}, nil
}

// Stmt prepares a statement pinned to this transaction: every Execute call
// on it runs against the transaction's connection instead of acquiring one
// from the pool.
func (t *Txn) Stmt(query string) *Stmt {
	s := Prepare(t.pool, query)
	s.txn = t
	return s
}

// Commit commits the transaction and returns its connection to the pool.
// If the commit itself fails with a rollback-class error, an explicit
// rollback is issued before the connection is released, since not every
// backend guarantees the transaction is already aborted at that point.
func (t *Txn) Commit() error {
	if t.done {
		return NewError(QueryFailure, "transaction already finished")
	}
	t.done = true
	t.c.inTxn = false

	err := t.pool.drv.Commit(t.c.handle)
	if err != nil && driver.KindOf(err).IsRollback() {
		_ = t.pool.drv.Rollback(t.c.handle)
	}
	t.pool.release(t.c, err)
	return err
}

// Rollback aborts the transaction and returns its connection to the pool.
func (t *Txn) Rollback() error {
	if t.done {
		return NewError(QueryFailure, "transaction already finished")
	}
	t.done = true
	t.c.inTxn = false

	err := t.pool.drv.Rollback(t.c.handle)
	t.pool.release(t.c, err)
	return err
}

// TxnFunc is a transaction callback for Process. Its return value is either
// one of UserSuccess/UserRetry/UserFailure, or any ErrorKind propagated
// directly from a statement it executed — Process applies the same
// is_rollback/is_fatal classification to either source.
type TxnFunc func(txn *Txn) ErrorKind

// errRetryTxn is the sentinel retry.Retry sees when Process wants another
// attempt; it never escapes Process itself.
var errRetryTxn = errors.New("msql: transaction rollback, retrying")

// retryForever is a strategy.Strategy that never gives up, sleeping a
// randomized backoff between attempts. Unlike the teacher's connector
// retry (capped by strategy.Limit against a context deadline), Process has
// no such bound — see the open design question on unbounded retry.
func retryForever(attempt uint) bool {
	if attempt > 0 {
		time.Sleep(time.Duration(RollbackDelayMS()) * time.Millisecond)
	}
	return true
}

// Process is the higher-order transaction driver (§4.7): it begins a
// transaction, runs fn, and commits, rolls back, or rolls back and retries
// based on fn's returned kind. Retries use the same randomized backoff as
// the standalone-statement execution pipeline and, like it, have no upper
// bound.
func Process(pool *Pool, isolation Isolation, fn TxnFunc) ErrorKind {
	var final ErrorKind

	retry.Retry(func(attempt uint) error {
		txn, err := Begin(pool, isolation)
		if err != nil {
			final = driver.KindOf(err)
			return nil
		}

		result := fn(txn)

		switch {
		case result == UserSuccess || !result.IsError():
			if err := txn.Commit(); err != nil {
				kind := driver.KindOf(err)
				if kind.IsRollback() {
					return errRetryTxn
				}
				final = kind
				return nil
			}
			final = Success
			return nil

		case result == UserFailure || result.IsFatal():
			_ = txn.Rollback()
			final = result
			return nil

		default: // UserRetry, or any rollback-class kind
			_ = txn.Rollback()
			return errRetryTxn
		}
	}, strategy.Strategy(retryForever))

	return final
}
