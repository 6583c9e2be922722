package msql

import (
	"github.com/dbmesh/msql/driver"
)

// Stmt is a statement handle: user query text, bound parameter rows,
// execution flags, the driver's prepared-statement object (cached across
// executions when the query text is unchanged), result metadata/buffer,
// affected-row count and error state.
type Stmt struct {
	pool *Pool

	query     string
	rewritten string

	rowTypes []DataType
	rows     [][]any
	curRow   []any
	nextExec int // index into rows of the first not-yet-executed row

	masterOnly   bool
	maxFetchRows int
	started      bool // true once the first Execute has run; freezes flags

	preparedHandle driver.StmtHandle
	// fetchConn is set while a chunked fetch (SetMaxFetchRows > 0) has
	// unfetched server-side rows remaining; it pins the connection across
	// Pool.Fetch calls instead of releasing it back to the pool after
	// Execute returns.
	fetchConn *conn

	result   *Result
	affected int64

	lastErr error

	// txn, if non-nil, pins this statement to an explicit transaction's
	// connection instead of routing through the pool per execute.
	txn *Txn
}

// Prepare creates a statement handle against pool for the given query text.
// No backend call happens yet — the driver prepares lazily, the first time
// the statement is executed, and later executions of this same Stmt can
// reuse its cached prepared handle.
func Prepare(pool *Pool, query string) *Stmt {
	return &Stmt{pool: pool, query: query}
}

// PrepareBuffer is Prepare from a consumable byte buffer: every byte of buf
// is zeroed on return regardless of outcome (its length is unchanged),
// matching the "destroyed upon acceptance" contract of the buffer-based
// prepare entry point.
func PrepareBuffer(pool *Pool, buf []byte) *Stmt {
	query := string(buf)
	for i := range buf {
		buf[i] = 0
	}
	return Prepare(pool, query)
}

// SetMasterOnly forces routing to the primary sub-pool even for a SELECT.
// Rejected once the statement has executed once.
func (s *Stmt) SetMasterOnly(v bool) error {
	if s.started {
		return NewError(QueryFailure, "SetMasterOnly called after first execute")
	}
	s.masterOnly = v
	return nil
}

// SetMaxFetchRows sets the chunk size fetch uses; 0 means fetch everything
// in one shot. Rejected once the statement has executed once.
func (s *Stmt) SetMaxFetchRows(n int) error {
	if s.started {
		return NewError(QueryFailure, "SetMaxFetchRows called after first execute")
	}
	s.maxFetchRows = n
	return nil
}

// bindValue appends v to the row under construction, validating its type
// against row 0's established schema (null is compatible with any column).
func (s *Stmt) bindValue(v any, dtype DataType) error {
	col := len(s.curRow)
	if s.rowTypes != nil {
		if col >= len(s.rowTypes) {
			return NewError(QueryWrongNumParams, "bind: row has more columns than row 0 (%d)", len(s.rowTypes))
		}
		if dtype != Null && s.rowTypes[col] != Null && s.rowTypes[col] != dtype {
			return NewError(QueryWrongNumParams, "bind: column %d type %v does not match row 0's %v", col, dtype, s.rowTypes[col])
		}
	}
	s.curRow = append(s.curRow, v)
	return nil
}

// BindBool binds a boolean as the next column of the current row.
func (s *Stmt) BindBool(v bool) error { return s.bindValue(v, Bool) }

// BindInt16 binds a 16-bit signed integer.
func (s *Stmt) BindInt16(v int16) error { return s.bindValue(v, Int16) }

// BindInt32 binds a 32-bit signed integer.
func (s *Stmt) BindInt32(v int32) error { return s.bindValue(v, Int32) }

// BindInt64 binds a 64-bit signed integer.
func (s *Stmt) BindInt64(v int64) error { return s.bindValue(v, Int64) }

// BindText binds a UTF-8 string. Go's garbage collector makes the source's
// borrowed/owned/duplicated distinction moot; the string is always copied
// by value as Go strings are immutable.
func (s *Stmt) BindText(v string) error { return s.bindValue(v, Text) }

// BindBinary binds a byte blob. The slice is copied so later mutation by
// the caller cannot affect the bound value.
func (s *Stmt) BindBinary(v []byte) error {
	cp := make([]byte, len(v))
	copy(cp, v)
	return s.bindValue(cp, Binary)
}

// BindNull binds a SQL NULL, compatible with any column type.
func (s *Stmt) BindNull() error { return s.bindValue(nil, Null) }

// NewRow finalizes the row under construction and advances to the next
// one. All rows must agree on column count and per-column type with row 0
// (null matches any type); row 0 itself establishes the schema.
func (s *Stmt) NewRow() error {
	if s.rowTypes == nil {
		s.rowTypes = make([]DataType, len(s.curRow))
		for i, v := range s.curRow {
			s.rowTypes[i] = typeOfBoundValue(v)
		}
	} else if len(s.curRow) != len(s.rowTypes) {
		return NewError(QueryWrongNumParams, "row has %d columns, expected %d", len(s.curRow), len(s.rowTypes))
	}
	s.rows = append(s.rows, s.curRow)
	s.curRow = nil
	return nil
}

func typeOfBoundValue(v any) DataType {
	switch v.(type) {
	case bool:
		return Bool
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case string:
		return Text
	case []byte:
		return Binary
	default:
		return Null
	}
}

// Clear drops every bound row while preserving the prepared query text and
// any cached prepared handle.
func (s *Stmt) Clear() {
	s.rows = nil
	s.curRow = nil
	s.rowTypes = nil
	s.nextExec = 0
}

// pendingRows returns up to n of the bind rows not yet consumed by an
// Execute call, for the driver's Execute method.
func (s *Stmt) pendingRows(n int) [][]any {
	if n <= 0 || s.nextExec >= len(s.rows) {
		return nil
	}
	end := s.nextExec + n
	if end > len(s.rows) {
		end = len(s.rows)
	}
	return s.rows[s.nextExec:end]
}

// consumeExecuted advances the not-yet-executed row cursor by n, matching
// the execution pipeline's "sum of rows_executed equals R" invariant.
func (s *Stmt) consumeExecuted(n int64) {
	s.nextExec += int(n)
	if s.nextExec > len(s.rows) {
		s.nextExec = len(s.rows)
	}
}

// hasUnexecutedRows reports whether any bound row remains to be consumed by
// a further Execute call.
func (s *Stmt) hasUnexecutedRows() bool {
	return s.nextExec < len(s.rows)
}

// HasRemainingRows reports whether unfetched server-side result rows
// remain.
func (s *Stmt) HasRemainingRows() bool {
	if s.result == nil {
		return false
	}
	return s.result.HasRemainingRows()
}

// Result returns the statement's result buffer, or nil if it hasn't
// executed a SELECT-shaped query yet.
func (s *Stmt) Result() *Result { return s.result }

// Affected returns the affected-row count of the most recent non-SELECT
// execution.
func (s *Stmt) Affected() int64 { return s.affected }

// Err returns the statement's last error, or nil.
func (s *Stmt) Err() error { return s.lastErr }

// RowCount returns the number of fully bound rows (excluding the row under
// construction, which has not been finalized by NewRow).
func (s *Stmt) RowCount() int { return len(s.rows) }

// ParamsPerRow returns row 0's column count, or 0 if no row has been bound
// yet.
func (s *Stmt) ParamsPerRow() int { return len(s.rowTypes) }
