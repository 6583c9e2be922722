// Package driver defines the capability contract every backend plugin
// implements (sqlite, mysql, postgres, oracle, odbc) and the registry that
// loads them by short name. It is the low-level counterpart of package
// msql, the same way database/sql/driver is the low-level counterpart of
// database/sql: backend implementations import only this package, never
// msql, so there is no import cycle between the public pool API and its
// plugins.
package driver

import "fmt"

// ErrorKind is the unified error taxonomy every backend maps its native
// error codes onto. It is the sole currency for flow-control decisions
// across the pool, transaction manager and execution pipeline.
type ErrorKind int

const (
	// Success indicates the operation completed with no more rows pending.
	Success ErrorKind = iota
	// SuccessRow indicates the operation completed and at least one result
	// row is available to fetch.
	SuccessRow

	// ConnFailed means a connection attempt to the backend failed outright.
	ConnFailed
	// ConnLost means an established connection was lost mid-operation.
	ConnLost
	// ConnBadAuth means the backend rejected the supplied credentials.
	ConnBadAuth
	// ConnNoDriver means no driver is registered under the requested name.
	ConnNoDriver
	// ConnDriverLoad means the driver module failed to initialize.
	ConnDriverLoad
	// ConnDriverVer means the loaded driver reported an incompatible version.
	ConnDriverVer
	// ConnParams means connection-string validation failed.
	ConnParams

	// PrepareInvalid means the query text is malformed before the backend
	// ever saw it (e.g. an unescaped quote outside a placeholder).
	PrepareInvalid
	// PrepareStrNotBound means a string literal was detected that should
	// have been a bound parameter.
	PrepareStrNotBound
	// PrepareNoMultiQuery means multiple statements were found in one query.
	PrepareNoMultiQuery

	// QueryNotPrepared means execute was called before prepare succeeded.
	QueryNotPrepared
	// QueryWrongNumParams means the bound parameter count didn't match the
	// query's placeholder count.
	QueryWrongNumParams
	// QueryPrepare means the backend rejected the rewritten query at
	// prepare time.
	QueryPrepare

	// QueryDeadlock means the backend signalled a deadlock or a
	// serialization failure that requires rollback and retry.
	QueryDeadlock
	// QueryConstraint means a uniqueness, foreign-key or check constraint
	// was violated.
	QueryConstraint
	// QueryFailure is any other backend-side failure.
	QueryFailure

	// UserSuccess is returned by a transaction callback to request commit.
	UserSuccess
	// UserRetry is returned by a transaction callback to request rollback
	// and retry from the beginning.
	UserRetry
	// UserFailure is returned by a transaction callback to request rollback
	// and propagate the error to the caller.
	UserFailure
)

var errorKindNames = map[ErrorKind]string{
	Success:             "SUCCESS",
	SuccessRow:          "SUCCESS_ROW",
	ConnFailed:          "CONN_FAILED",
	ConnLost:            "CONN_LOST",
	ConnBadAuth:         "CONN_BADAUTH",
	ConnNoDriver:        "CONN_NODRIVER",
	ConnDriverLoad:      "CONN_DRIVERLOAD",
	ConnDriverVer:       "CONN_DRIVERVER",
	ConnParams:          "CONN_PARAMS",
	PrepareInvalid:      "PREPARE_INVALID",
	PrepareStrNotBound:  "PREPARE_STRNOTBOUND",
	PrepareNoMultiQuery: "PREPARE_NOMULTIQUERY",
	QueryNotPrepared:    "QUERY_NOTPREPARED",
	QueryWrongNumParams: "QUERY_WRONGNUMPARAMS",
	QueryPrepare:        "QUERY_PREPARE",
	QueryDeadlock:       "QUERY_DEADLOCK",
	QueryConstraint:     "QUERY_CONSTRAINT",
	QueryFailure:        "QUERY_FAILURE",
	UserSuccess:         "USER_SUCCESS",
	UserRetry:           "USER_RETRY",
	UserFailure:         "USER_FAILURE",
}

// String returns the taxonomy name of the kind, or "UNKNOWN" if out of range.
func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsError reports whether k represents anything other than a clean success.
func (k ErrorKind) IsError() bool {
	return k != Success && k != SuccessRow
}

// IsDisconnect reports whether k means the connection cannot be (re)used and
// was or must be discarded.
func (k ErrorKind) IsDisconnect() bool {
	switch k {
	case ConnFailed, ConnLost, ConnBadAuth, ConnNoDriver, ConnDriverLoad, ConnDriverVer, ConnParams:
		return true
	default:
		return false
	}
}

// IsRollback reports whether k requires the current transaction (or
// standalone statement) to be rolled back and potentially retried: deadlocks,
// any disconnect, and a user-requested retry.
func (k ErrorKind) IsRollback() bool {
	return k == QueryDeadlock || k == UserRetry || k.IsDisconnect()
}

// IsFatal reports whether k is an error that is not a rollback or disconnect
// condition — retrying it is pointless without caller intervention.
func (k ErrorKind) IsFatal() bool {
	return k.IsError() && !k.IsRollback() && !k.IsDisconnect()
}

// Error wraps an ErrorKind with a human-readable message and satisfies the
// standard error interface. Every statement and pool operation that can fail
// returns one of these (or wraps one), so callers can inspect both the
// taxonomy kind and the free-form message.
type Error struct {
	Kind    ErrorKind
	Message string
	// Native, if set, is the underlying driver error this Error was
	// classified from.
	Native error
}

func (e Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the native driver error for errors.As/errors.Is.
func (e Error) Unwrap() error {
	return e.Native
}

// NewError builds an Error with no wrapped native cause.
func NewError(kind ErrorKind, format string, args ...any) Error {
	return Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds an Error classified as kind, recording native for
// unwrapping.
func WrapError(kind ErrorKind, native error, format string, args ...any) Error {
	return Error{Kind: kind, Message: fmt.Sprintf(format, args...), Native: native}
}

// KindOf extracts the ErrorKind from err, returning QueryFailure for any
// error not produced by this package — the classifier's conservative
// default, preferring QueryFailure over a more specific kind when ambiguous.
func KindOf(err error) ErrorKind {
	if err == nil {
		return Success
	}
	var e Error
	if asError(err, &e) {
		return e.Kind
	}
	return QueryFailure
}

// asError is a tiny errors.As shim kept local to this package; it only
// needs to unwrap our own Error.
func asError(err error, target *Error) bool {
	for err != nil {
		if e, ok := err.(Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
