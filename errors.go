// Package msql implements a driver-agnostic connection pool and statement
// execution engine over SQLite, MySQL/MariaDB, PostgreSQL, Oracle and ODBC.
// Backend plugins live under their own driver/<name> subpackages and import
// only github.com/dbmesh/msql/driver, never this package, so there is no
// import cycle between the public pool API and its plugins — the same
// split database/sql keeps from database/sql/driver.
package msql

import "github.com/dbmesh/msql/driver"

// ErrorKind is an alias of driver.ErrorKind: the unified error taxonomy
// every backend maps its native error codes onto, and the sole currency
// for flow-control decisions across the pool, transaction manager and
// execution pipeline.
type ErrorKind = driver.ErrorKind

// Error is an alias of driver.Error.
type Error = driver.Error

// Error kind constants, re-exported for callers that only import msql.
const (
	Success             = driver.Success
	SuccessRow          = driver.SuccessRow
	ConnFailed          = driver.ConnFailed
	ConnLost            = driver.ConnLost
	ConnBadAuth         = driver.ConnBadAuth
	ConnNoDriver        = driver.ConnNoDriver
	ConnDriverLoad      = driver.ConnDriverLoad
	ConnDriverVer       = driver.ConnDriverVer
	ConnParams          = driver.ConnParams
	PrepareInvalid      = driver.PrepareInvalid
	PrepareStrNotBound  = driver.PrepareStrNotBound
	PrepareNoMultiQuery = driver.PrepareNoMultiQuery
	QueryNotPrepared    = driver.QueryNotPrepared
	QueryWrongNumParams = driver.QueryWrongNumParams
	QueryPrepare        = driver.QueryPrepare
	QueryDeadlock       = driver.QueryDeadlock
	QueryConstraint     = driver.QueryConstraint
	QueryFailure        = driver.QueryFailure
	UserSuccess         = driver.UserSuccess
	UserRetry           = driver.UserRetry
	UserFailure         = driver.UserFailure
)

// NewError is an alias of driver.NewError.
func NewError(kind ErrorKind, format string, args ...any) Error {
	return driver.NewError(kind, format, args...)
}

// WrapError is an alias of driver.WrapError.
func WrapError(kind ErrorKind, native error, format string, args ...any) Error {
	return driver.WrapError(kind, native, format, args...)
}

// KindOf is an alias of driver.KindOf.
func KindOf(err error) ErrorKind {
	return driver.KindOf(err)
}
