package driver

import "sync"

// HostPort is one (hostname, port) pair parsed out of a connection string's
// host list.
type HostPort struct {
	Host string
	Port int
}

// BitOp is the bitwise operator a query wants to emit, for AppendBitOp.
type BitOp int

const (
	// BitAnd is a bitwise AND.
	BitAnd BitOp = iota
	// BitOr is a bitwise OR.
	BitOr
)

// UpdLockPosition selects where AppendUpdLock inserts its hint.
type UpdLockPosition int

const (
	// UpdLockAtTable inserts the hint immediately after the table reference
	// (used by the Microsoft-style inline hint).
	UpdLockAtTable UpdLockPosition = iota
	// UpdLockAtEnd appends the hint at the end of the query (FOR UPDATE
	// forms).
	UpdLockAtEnd
)

// ConnStrParam declares one recognized connection-string option for
// ValidateConnString.
type ConnStrParam struct {
	Name     string
	Required bool
	MinLen   int
	MaxLen   int
}

// PoolHandle is opaque per-pool state a driver allocates in CreatePool:
// typically the parsed connection string and resolved host list. The core
// never inspects it.
type PoolHandle any

// ConnHandle is an opaque established backend session returned by Connect.
// Concretely it wraps a *sql.Conn (or equivalent) of the backend's own
// database/sql driver.
type ConnHandle any

// StmtHandle is an opaque prepared-statement object returned by Prepare.
type StmtHandle any

// Driver is the capability contract every backend plugin implements. A
// backend is composed on top of the real database/sql/driver
// implementation for that database (mattn/go-sqlite3, go-sql-driver/mysql,
// jackc/pgx, godror, alexbrainman/odbc) rather than speaking the wire
// protocol itself; Driver's job is to adapt that implementation's
// connection/statement objects to the shapes the pool, statement handle and
// query rewriter expect.
type Driver interface {
	// Name is the short registry key ("sqlite", "mysql", "postgresql",
	// "oracle", "odbc").
	Name() string
	// DisplayName is a human-readable backend name.
	DisplayName() string
	// Version is the driver plugin's own version tag (not the backend
	// server's — see ServerVersion).
	Version() string

	// Init performs one-time process-wide setup. Called once, the first
	// time a pool is created for this driver.
	Init() error
	// Destroy performs one-time process-wide teardown. Never called before
	// process exit in practice — drivers are not unloaded mid-process.
	Destroy()

	// CreatePool parses connStr and allocates per-pool driver state. It
	// returns the resolved host count so the sub-pool can size its
	// rotation schedule.
	CreatePool(connStr string, flags PoolFlags) (PoolHandle, int, error)
	// DestroyPool releases per-pool driver state.
	DestroyPool(pool PoolHandle)

	// Connect establishes one backend session for the given pool, role
	// (readOnly) and host index.
	Connect(pool PoolHandle, readOnly bool, hostIndex int) (ConnHandle, error)
	// Disconnect closes a session opened by Connect.
	Disconnect(conn ConnHandle)
	// ServerVersion returns a short string identifying the backend server
	// this connection is talking to.
	ServerVersion(conn ConnHandle) string
	// ConnectRunOnce runs once per connection right after Connect succeeds.
	// firstInPool is true only for the very first connection the pool
	// establishes, letting a backend perform one-time schema setup exactly
	// once (e.g. installing a BITOR UDF on Oracle).
	ConnectRunOnce(conn ConnHandle, firstInPool bool) error

	// QueryFormat rewrites a "?"-placeholder query into this backend's
	// convention, expanding multi-row inserts per rowCount/paramsPerRow.
	QueryFormat(query string, rowCount, paramsPerRow int, flags QueryFormatFlags) (string, error)
	// QueryRowCount reports how many of the remaining bound rows a single
	// Execute call will consume, letting backends with a per-statement row
	// limit chunk a large bind set across several Execute calls.
	QueryRowCount(conn ConnHandle, remainingRows int) int

	// Prepare creates the backend's prepared-statement object for query.
	// cached, if non-nil, is a previously returned StmtHandle for the
	// identical query text that the core is offering back for reuse; a
	// driver that supports caching may return it unchanged.
	Prepare(conn ConnHandle, query string, cached StmtHandle) (StmtHandle, error)
	// PrepareDestroy releases a prepared-statement object.
	PrepareDestroy(stmt StmtHandle)

	// Execute runs stmt against rows, a slice of the statement's next
	// unconsumed bind rows (each row itself a slice of positional values).
	// Passing whole rows rather than a pre-flattened arg list lets the
	// backend derive how many were actually consumed without the core
	// needing to know the backend's own per-row column count.
	Execute(conn ConnHandle, stmt StmtHandle, rows [][]any) (rowsConsumed int64, affected int64, err error)
	// Fetch pulls up to maxRows of the pending result into memory. A
	// maxRows of 0 means "fetch everything remaining". hasMore reports
	// whether unfetched server-side rows remain.
	Fetch(conn ConnHandle, stmt StmtHandle, maxRows int) (cols []ColumnDesc, rows [][]any, hasMore bool, err error)

	// Begin starts a transaction at the requested isolation level.
	// sqlbase.Base hands the level to the backend's database/sql driver as
	// the matching sql.IsolationLevel; it does not substitute the nearest
	// supported level, so whether a level is accepted is up to that driver.
	Begin(conn ConnHandle, isolation Isolation) error
	// Rollback aborts the open transaction.
	Rollback(conn ConnHandle) error
	// Commit commits the open transaction.
	Commit(conn ConnHandle) error

	// DataType emits the backend-specific column-type declaration for a
	// (unified type, max length) pair, for CREATE TABLE construction.
	DataType(t DataType, maxLen int) string
	// CreateTableSuffix appends a backend-specific CREATE TABLE trailer
	// (e.g. "ENGINE=InnoDB CHARSET=utf8mb4"). Empty string if none.
	CreateTableSuffix() string
	// AppendUpdLock emits this backend's row-lock hint, given its
	// capability class.
	AppendUpdLock(query, table string) string
	// AppendBitOp emits a bitwise AND/OR expression using whichever form
	// this backend supports.
	AppendBitOp(op BitOp, left, right string) string
	// RewriteIndexName reshapes an over-long index name to fit this
	// backend's identifier-length limit. Returns name unchanged if the
	// backend has no such limit or name already fits.
	RewriteIndexName(name string) string

	// UpdLockCap reports this backend's row-lock capability class.
	UpdLockCap() UpdLockCap
	// BitOpCap reports this backend's bit-operator capability class.
	BitOpCap() BitOpCap
	// ConnStrSchema declares the recognized connection-string options for
	// ValidateConnString.
	ConnStrSchema() []ConnStrParam
}

// Factory constructs a fresh Driver instance. Registered factories are
// invoked lazily, the first time a pool is created for that driver name.
type Factory func() Driver

var (
	registryMu sync.Mutex
	registry   = map[string]Factory{}
	loaded     = map[string]Driver{}
)

// Register adds factory to the registry under name. Called from backend
// package init() functions (github.com/dbmesh/msql/driver/sqlite and
// siblings), mirroring how database/sql drivers register themselves.
// Registering the same name twice panics, matching database/sql.Register's
// behavior.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("driver: Register called twice for driver " + name)
	}
	registry[name] = factory
}

// Load returns the Driver registered under name, constructing and Init-ing
// it on first use and caching the instance for subsequent calls.
func Load(name string) (Driver, error) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if d, ok := loaded[name]; ok {
		return d, nil
	}
	factory, ok := registry[name]
	if !ok {
		return nil, NewError(ConnNoDriver, "no driver registered for %q", name)
	}
	d := factory()
	if err := d.Init(); err != nil {
		return nil, WrapError(ConnDriverLoad, err, "driver %q failed to initialize", name)
	}
	loaded[name] = d
	return d, nil
}

// Names returns the short names of every registered driver, for
// diagnostics.
func Names() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}
