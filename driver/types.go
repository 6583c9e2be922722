package driver

// DataType is the unified value type every bound parameter and result
// column carries. Drivers translate to/from their native wire types at the
// boundary; the core only ever deals in these seven plus null.
type DataType int

const (
	// Bool is a boolean value.
	Bool DataType = iota
	// Int16 is a 16-bit signed integer.
	Int16
	// Int32 is a 32-bit signed integer.
	Int32
	// Int64 is a 64-bit signed integer.
	Int64
	// Text is UTF-8 text.
	Text
	// Binary is an arbitrary byte blob.
	Binary
	// Null represents an absent value; compatible with any column type.
	Null
)

func (t DataType) String() string {
	switch t {
	case Bool:
		return "BOOL"
	case Int16:
		return "INT16"
	case Int32:
		return "INT32"
	case Int64:
		return "INT64"
	case Text:
		return "TEXT"
	case Binary:
		return "BINARY"
	case Null:
		return "NULL"
	default:
		return "UNKNOWN"
	}
}

// ColumnDesc describes a single result or schema column: its name, declared
// type, and maximum length for variable-length types. MaxLen of 0 means
// "unbounded up to the backend's own limit".
type ColumnDesc struct {
	Name   string
	Type   DataType
	MaxLen int
}

// Isolation is a transaction isolation level, as requested by the caller of
// Begin/Process. sqlbase.Base passes it to the backend's database/sql driver
// as the matching sql.IsolationLevel; no upgrade or downgrade to a level the
// backend supports is done.
type Isolation int

const (
	// ReadUncommitted is the weakest isolation level.
	ReadUncommitted Isolation = iota
	// ReadCommitted disallows dirty reads.
	ReadCommitted
	// RepeatableRead disallows non-repeatable reads.
	RepeatableRead
	// Serializable is the strongest standard isolation level.
	Serializable
	// Snapshot is MVCC snapshot isolation (passed through as
	// sql.LevelSnapshot; not remapped on backends that lack it).
	Snapshot
)

func (i Isolation) String() string {
	switch i {
	case ReadUncommitted:
		return "READ UNCOMMITTED"
	case ReadCommitted:
		return "READ COMMITTED"
	case RepeatableRead:
		return "REPEATABLE READ"
	case Serializable:
		return "SERIALIZABLE"
	case Snapshot:
		return "SNAPSHOT"
	default:
		return "UNKNOWN"
	}
}

// PoolFlags configures optional connection-pool behavior.
type PoolFlags uint32

const (
	// PrespawnAll fills every max-connections slot at pool start instead of
	// just the first, with the remainder spawned lazily on demand.
	PrespawnAll PoolFlags = 1 << iota
	// NoAutoRetryQuery disables the automatic retry of standalone
	// (non-transactional) statements on a rollback-class error.
	NoAutoRetryQuery
	// LoadBalance spreads connection attempts round-robin across every
	// configured host instead of preferring the first until it fails.
	LoadBalance
)

// Has reports whether flag is set in f.
func (f PoolFlags) Has(flag PoolFlags) bool {
	return f&flag != 0
}

// SelectionPolicy is the sub-pool's host-selection strategy, derived from
// PoolFlags.LoadBalance.
type SelectionPolicy int

const (
	// Failover prefers the lowest-index eligible host, only moving on when
	// it is within its fallback window.
	Failover SelectionPolicy = iota
	// LoadBalancePolicy round-robins across every eligible host.
	LoadBalancePolicy
)

// UpdLockCap describes a backend's row-lock hint support.
type UpdLockCap int

const (
	// UpdLockNone means the backend has no row-lock hint syntax.
	UpdLockNone UpdLockCap = iota
	// UpdLockForUpdate emits a trailing "FOR UPDATE".
	UpdLockForUpdate
	// UpdLockForUpdateOf emits a trailing "FOR UPDATE OF <table>".
	UpdLockForUpdateOf
	// UpdLockMSSQLHint emits an inline "WITH (ROWLOCK, XLOCK, HOLDLOCK)".
	UpdLockMSSQLHint
)

// BitOpCap describes a backend's bitwise-operator support.
type BitOpCap int

const (
	// BitOpInfix uses native infix operators ("&", "|").
	BitOpInfix BitOpCap = iota
	// BitOpFunction uses function-call form ("BITAND(a,b)").
	BitOpFunction
	// BitOpInfixCast uses infix operators with a BIGINT cast on the right
	// operand (some ODBC dialects require this to avoid overflow).
	BitOpInfixCast
)

// PlaceholderStyle selects the bound-parameter marker a backend expects.
type PlaceholderStyle int

const (
	// PlaceholderQuestion leaves "?" markers untouched.
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar rewrites to "$1".."$N" (PostgreSQL).
	PlaceholderDollar
	// PlaceholderColon rewrites to ":1".. ":N" (Oracle).
	PlaceholderColon
)

// QueryFormatFlags parameterizes the generic query-format helper.
type QueryFormatFlags struct {
	// Placeholder selects the marker rewrite.
	Placeholder PlaceholderStyle
	// StripTerminator removes a trailing ";" if present.
	StripTerminator bool
	// RequireTerminator appends a trailing ";" if absent.
	RequireTerminator bool
	// OnConflictDoNothing appends the backend's "skip on unique conflict"
	// clause to an INSERT statement.
	OnConflictDoNothing bool
	// ConflictClause is the literal clause text to append when
	// OnConflictDoNothing is set (backend-specific, e.g.
	// "ON CONFLICT DO NOTHING" or "ON DUPLICATE KEY UPDATE id=id").
	ConflictClause string
}
