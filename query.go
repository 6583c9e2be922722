package msql

import "github.com/dbmesh/msql/driver"

// AppendUpdLock emits this pool's backend-specific row-lock hint for table,
// inserted at whichever position (table reference or query end) the
// backend requires. Application code building ad-hoc queries uses this
// instead of hand-coding a dialect's lock syntax.
func (p *Pool) AppendUpdLock(query, table string) string {
	return p.drv.AppendUpdLock(query, table)
}

// AppendBitOp emits a portable bitwise AND/OR expression using whichever
// form this pool's backend supports (infix operator, function call, or
// infix with a cast).
func (p *Pool) AppendBitOp(op driver.BitOp, left, right string) string {
	return p.drv.AppendBitOp(op, left, right)
}

// DataType emits this pool's backend-specific column-type declaration for a
// (unified type, max length) pair, for CREATE TABLE construction.
func (p *Pool) DataType(t DataType, maxLen int) string {
	return p.drv.DataType(t, maxLen)
}

// CreateTableSuffix returns this pool's backend-specific CREATE TABLE
// trailer (e.g. "ENGINE=InnoDB CHARSET=utf8mb4"), or "" if none.
func (p *Pool) CreateTableSuffix() string {
	return p.drv.CreateTableSuffix()
}
