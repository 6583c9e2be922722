package msql

import (
	"time"

	"github.com/dbmesh/msql/driver"
)

// Execute drives stmt through the prepare/execute/fetch pipeline (§4.10).
// Outside an explicit transaction, a rollback-class error retries with a
// randomized backoff for as long as the pool allows (unbounded, unless the
// pool was created with NoAutoRetryQuery) — callers wanting an upper bound
// should apply their own deadline via a wrapping goroutine/timeout, since
// the pipeline itself has none (see the open design question on unbounded
// retry).
func (p *Pool) Execute(stmt *Stmt) error {
	stmt.started = true

	if stmt.txn != nil {
		err := p.executeOnConn(stmt.txn.c, stmt)
		stmt.lastErr = err
		return err
	}

	for {
		sp := p.route(stmt.query, stmt.masterOnly)
		c, err := p.acquire(sp)
		if err != nil {
			stmt.lastErr = err
			return err
		}

		err = p.executeOnConn(c, stmt)

		// A statement mid-chunked-fetch keeps its connection pinned; don't
		// release early out from under it.
		if stmt.fetchConn == nil {
			p.release(c, err)
		}

		kind := driver.KindOf(err)
		if kind.IsRollback() && !p.flags.Has(driver.NoAutoRetryQuery) {
			stmt.nextExec = 0
			time.Sleep(time.Duration(RollbackDelayMS()) * time.Millisecond)
			continue
		}

		stmt.lastErr = err
		return err
	}
}

// executeOnConn runs one prepare/bind-execute/fetch cycle of stmt against
// an already-acquired connection.
func (p *Pool) executeOnConn(c *conn, stmt *Stmt) error {
	if stmt.rewritten == "" {
		rewritten, err := p.drv.QueryFormat(stmt.query, len(stmt.rows), stmt.ParamsPerRow(), driver.QueryFormatFlags{})
		if err != nil {
			return err
		}
		stmt.rewritten = rewritten
	}

	prepared, err := p.drv.Prepare(c.handle, stmt.rewritten, stmt.preparedHandle)
	if err != nil {
		return err
	}
	stmt.preparedHandle = prepared
	stmt.affected = 0

	rowCount := p.drv.QueryRowCount(c.handle, len(stmt.rows)-stmt.nextExec)
	rows := stmt.pendingRows(rowCount)
	rowsExec, affected, err := p.drv.Execute(c.handle, prepared, rows)
	stmt.consumeExecuted(rowsExec)
	stmt.affected += affected
	if err != nil {
		return err
	}

	for stmt.hasUnexecutedRows() {
		rowCount = p.drv.QueryRowCount(c.handle, len(stmt.rows)-stmt.nextExec)
		rows = stmt.pendingRows(rowCount)
		rowsExec, affected, err = p.drv.Execute(c.handle, prepared, rows)
		stmt.consumeExecuted(rowsExec)
		stmt.affected += affected
		if err != nil {
			return err
		}
	}

	if !driver.IsSelectQuery(stmt.rewritten) {
		return nil
	}

	if stmt.maxFetchRows == 0 {
		for {
			cols, rows, hasMore, ferr := p.drv.Fetch(c.handle, prepared, 0)
			if ferr != nil {
				return ferr
			}
			if stmt.result == nil {
				stmt.result = newResult(cols)
			}
			stmt.result.appendChunk(rows, hasMore)
			if !hasMore {
				break
			}
		}
		return nil
	}

	// Chunked fetch: buffer the first chunk now, pin the connection for
	// subsequent Pool.Fetch calls.
	cols, rows, hasMore, ferr := p.drv.Fetch(c.handle, prepared, stmt.maxFetchRows)
	if ferr != nil {
		return ferr
	}
	if stmt.result == nil {
		stmt.result = newResult(cols)
	}
	stmt.result.appendChunk(rows, hasMore)
	if hasMore {
		stmt.fetchConn = c
	}
	return nil
}

// Fetch pulls the next chunk for a statement prepared with a non-zero
// SetMaxFetchRows. The call that buffers the final chunk leaves
// HasRemainingRows() false and releases the pinned connection back to the
// pool; calling Fetch again after that returns an error.
func (p *Pool) Fetch(stmt *Stmt) error {
	if stmt.fetchConn == nil {
		return NewError(QueryFailure, "Fetch called with no chunked fetch in progress")
	}
	c := stmt.fetchConn

	cols, rows, hasMore, err := p.drv.Fetch(c.handle, stmt.preparedHandle, stmt.maxFetchRows)
	if err != nil {
		stmt.fetchConn = nil
		if stmt.txn == nil {
			p.release(c, err)
		}
		return err
	}
	if stmt.result == nil {
		stmt.result = newResult(cols)
	}
	stmt.result.appendChunk(rows, hasMore)

	if !hasMore {
		stmt.fetchConn = nil
		if stmt.txn == nil {
			p.release(c, nil)
		}
	}
	return nil
}
