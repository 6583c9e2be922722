// Package sqlbase implements driver.Driver generically on top of Go's own
// database/sql package: a pool is a *sql.DB, a connection is a *sql.Conn
// (optionally wrapping a *sql.Tx once Begin has run), and a prepared
// statement is a *sql.Stmt. Each backend package (sqlite, mysql, postgres,
// oracle, odbc) supplies a Config describing its DSN construction, dialect
// quirks and capability set, and gets the rest of the contract for free.
//
// This mirrors the teacher's own driver.Conn, which composes a lower-level
// connection object (there, internal/protocol.Protocol) instead of
// re-implementing a wire protocol; here the lower-level object is simply
// another, narrower database/sql driver.
package sqlbase

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/dbmesh/msql/driver"
)

// Config is the per-backend description a concrete driver package supplies
// to Base.
type Config struct {
	Name        string
	DisplayName string
	Version     string

	// SQLDriverName is the name the backend's own database/sql driver
	// registered itself under (e.g. "sqlite3", "mysql", "pgx", "godror",
	// "odbc").
	SQLDriverName string
	// BuildDSN turns the parsed connection-string options into the DSN
	// string SQLDriverName's sql.Open expects.
	BuildDSN func(opts map[string]string) (string, error)
	// DefaultPort fills in a host entry that omits one; 0 if not
	// applicable (e.g. sqlite has no host list).
	DefaultPort int

	Placeholder   driver.PlaceholderStyle
	UpdLockCap    driver.UpdLockCap
	BitOpCap      driver.BitOpCap
	ConnStrSchema []driver.ConnStrParam
	TableSuffix   string

	// ConflictClause, if non-empty, is appended by QueryFormat when asked
	// for OnConflictDoNothing (the insert-on-conflict-do-nothing rewrite).
	ConflictClause string

	// DataTypeFunc emits this backend's column-type declaration.
	DataTypeFunc func(t driver.DataType, maxLen int) string
	// UpdLockFunc, if set, overrides the generic EmitUpdLock rendering
	// (needed when a backend's hint text varies by more than its
	// capability class, e.g. table name substitution already covers the
	// common case via driver.EmitUpdLock).
	UpdLockFunc func(query, table string, cap driver.UpdLockCap) string
	// RewriteIndexNameFunc, if set, reshapes an over-long identifier (only
	// Oracle needs this; nil elsewhere).
	RewriteIndexNameFunc func(name string) string
	// ConnectRunOnceFunc, if set, runs once per connection right after
	// Connect succeeds (e.g. installing Oracle's BITOR UDF).
	ConnectRunOnceFunc func(ctx context.Context, conn *sql.Conn, firstInPool bool) error
}

// Base is the shared driver.Driver implementation. Concrete backend
// packages embed it with their Config.
type Base struct {
	Cfg Config
}

// poolState is the driver.PoolHandle Base.CreatePool returns.
type poolState struct {
	db    *sql.DB
	hosts []driver.HostPort
}

// connState is the driver.ConnHandle Base.Connect returns.
type connState struct {
	mu       sync.Mutex
	conn     *sql.Conn
	tx       *sql.Tx
	poolHost int
}

// stmtState is the driver.StmtHandle Base.Prepare returns. For a SELECT
// query, rows holds the open cursor from the most recent Execute call;
// Fetch pages through that same cursor rather than re-running the query,
// since re-running would lose the bound arguments and duplicate work.
type stmtState struct {
	query string
	stmt  *sql.Stmt
	conn  *connState // connection this stmt was prepared against; cache is only valid here

	rows       *sql.Rows
	cols       []driver.ColumnDesc
	pending    []any
	hasPending bool
}

func (b *Base) Name() string        { return b.Cfg.Name }
func (b *Base) DisplayName() string { return b.Cfg.DisplayName }
func (b *Base) Version() string     { return b.Cfg.Version }

func (b *Base) Init() error { return nil }
func (b *Base) Destroy()    {}

func (b *Base) CreatePool(connStr string, flags driver.PoolFlags) (driver.PoolHandle, int, error) {
	opts, err := driver.ParseConnString(connStr)
	if err != nil {
		return nil, 0, err
	}
	if err := driver.ValidateConnString(opts, b.Cfg.ConnStrSchema); err != nil {
		return nil, 0, err
	}

	dsn, err := b.Cfg.BuildDSN(opts)
	if err != nil {
		return nil, 0, err
	}

	db, err := sql.Open(b.Cfg.SQLDriverName, dsn)
	if err != nil {
		return nil, 0, driver.WrapError(driver.ConnDriverLoad, err, "opening %s pool", b.Cfg.Name)
	}

	hosts := []driver.HostPort{{Host: "localhost"}}
	if hostOpt, ok := opts["host"]; ok && hostOpt != "" {
		hosts, err = driver.ParseHostPorts(hostOpt, b.Cfg.DefaultPort)
		if err != nil {
			db.Close()
			return nil, 0, err
		}
	}

	return &poolState{db: db, hosts: hosts}, len(hosts), nil
}

func (b *Base) DestroyPool(pool driver.PoolHandle) {
	ps := pool.(*poolState)
	ps.db.Close()
}

func (b *Base) Connect(pool driver.PoolHandle, readOnly bool, hostIndex int) (driver.ConnHandle, error) {
	ps := pool.(*poolState)
	c, err := ps.db.Conn(context.Background())
	if err != nil {
		return nil, driver.WrapError(driver.ConnFailed, err, "connecting to host %d", hostIndex)
	}
	return &connState{conn: c, poolHost: hostIndex}, nil
}

func (b *Base) Disconnect(conn driver.ConnHandle) {
	cs := conn.(*connState)
	cs.conn.Close()
}

func (b *Base) ServerVersion(conn driver.ConnHandle) string {
	cs := conn.(*connState)
	var version string
	_ = cs.conn.QueryRowContext(context.Background(), "SELECT 1").Scan(&version)
	return version
}

func (b *Base) ConnectRunOnce(conn driver.ConnHandle, firstInPool bool) error {
	if b.Cfg.ConnectRunOnceFunc == nil {
		return nil
	}
	cs := conn.(*connState)
	return b.Cfg.ConnectRunOnceFunc(context.Background(), cs.conn, firstInPool)
}

func (b *Base) QueryFormat(query string, rowCount, paramsPerRow int, flags driver.QueryFormatFlags) (string, error) {
	flags.Placeholder = b.Cfg.Placeholder
	if flags.OnConflictDoNothing && flags.ConflictClause == "" {
		flags.ConflictClause = b.Cfg.ConflictClause
	}
	return driver.FormatQuery(query, rowCount, paramsPerRow, flags)
}

// QueryRowCount always offers every remaining bind row to a single Execute
// call: the query rewriter already expanded the VALUES clause for the full
// row count at prepare time, so there is nothing left to chunk for a
// database/sql-backed connection.
func (b *Base) QueryRowCount(conn driver.ConnHandle, remainingRows int) int {
	return remainingRows
}

func (b *Base) Prepare(conn driver.ConnHandle, query string, cached driver.StmtHandle) (driver.StmtHandle, error) {
	c := conn.(*connState)

	if cs, ok := cached.(*stmtState); ok && cs.query == query && cs.conn == c {
		return cs, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var stmt *sql.Stmt
	var err error
	if c.tx != nil {
		stmt, err = c.tx.PrepareContext(context.Background(), query)
	} else {
		stmt, err = c.conn.PrepareContext(context.Background(), query)
	}
	if err != nil {
		return nil, driver.WrapError(driver.QueryPrepare, err, "prepare failed")
	}
	return &stmtState{query: query, stmt: stmt, conn: c}, nil
}

func (b *Base) PrepareDestroy(stmt driver.StmtHandle) {
	ss := stmt.(*stmtState)
	if ss.rows != nil {
		ss.rows.Close()
	}
	ss.stmt.Close()
}

func (b *Base) Execute(conn driver.ConnHandle, stmt driver.StmtHandle, rows [][]any) (int64, int64, error) {
	ss := stmt.(*stmtState)

	var args []any
	for _, row := range rows {
		args = append(args, row...)
	}

	if driver.IsSelectQuery(ss.query) {
		if ss.rows != nil {
			ss.rows.Close()
			ss.rows, ss.pending, ss.hasPending = nil, nil, false
		}

		rs, err := ss.stmt.QueryContext(context.Background(), args...)
		if err != nil {
			return 0, 0, classifyErr(err)
		}
		cols, err := columnDescs(rs)
		if err != nil {
			rs.Close()
			return 0, 0, classifyErr(err)
		}
		ss.rows, ss.cols = rs, cols
		return int64(len(rows)), 0, nil
	}

	res, err := ss.stmt.ExecContext(context.Background(), args...)
	if err != nil {
		return 0, 0, classifyErr(err)
	}
	affected, _ := res.RowsAffected()
	return int64(len(rows)), affected, nil
}

func columnDescs(rows *sql.Rows) ([]driver.ColumnDesc, error) {
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	cols := make([]driver.ColumnDesc, len(colTypes))
	for i, ct := range colTypes {
		cols[i] = driver.ColumnDesc{Name: ct.Name(), Type: mapSQLType(ct)}
		if length, ok := ct.Length(); ok {
			cols[i].MaxLen = int(length)
		}
	}
	return cols, nil
}

func scanRow(rows *sql.Rows, cols []driver.ColumnDesc) ([]any, error) {
	scanTargets := make([]any, len(cols))
	scanPtrs := make([]any, len(cols))
	for i := range scanTargets {
		scanPtrs[i] = &scanTargets[i]
	}
	if err := rows.Scan(scanPtrs...); err != nil {
		return nil, err
	}
	return normalizeRow(scanTargets, cols), nil
}

// Fetch pages through the cursor Execute opened on ss, buffering one
// lookahead row so a maxRows-bounded call can report hasMore accurately
// without losing the row it peeked at.
func (b *Base) Fetch(conn driver.ConnHandle, stmt driver.StmtHandle, maxRows int) ([]driver.ColumnDesc, [][]any, bool, error) {
	ss := stmt.(*stmtState)
	if ss.rows == nil {
		return ss.cols, nil, false, nil
	}

	var out [][]any
	if ss.hasPending {
		out = append(out, ss.pending)
		ss.pending, ss.hasPending = nil, false
	}

	for maxRows <= 0 || len(out) < maxRows {
		if !ss.rows.Next() {
			break
		}
		row, err := scanRow(ss.rows, ss.cols)
		if err != nil {
			ss.rows.Close()
			ss.rows = nil
			return ss.cols, out, false, classifyErr(err)
		}
		out = append(out, row)
	}

	hasMore := false
	if maxRows > 0 && len(out) == maxRows && ss.rows.Next() {
		row, err := scanRow(ss.rows, ss.cols)
		if err != nil {
			ss.rows.Close()
			ss.rows = nil
			return ss.cols, out, false, classifyErr(err)
		}
		ss.pending, ss.hasPending = row, true
		hasMore = true
	}

	if !hasMore {
		err := ss.rows.Err()
		ss.rows.Close()
		ss.rows = nil
		if err != nil {
			return ss.cols, out, false, classifyErr(err)
		}
	}

	return ss.cols, out, hasMore, nil
}

func (b *Base) Begin(conn driver.ConnHandle, isolation driver.Isolation) error {
	cs := conn.(*connState)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	tx, err := cs.conn.BeginTx(context.Background(), &sql.TxOptions{Isolation: mapIsolation(isolation)})
	if err != nil {
		return classifyErr(err)
	}
	cs.tx = tx
	return nil
}

func (b *Base) Rollback(conn driver.ConnHandle) error {
	cs := conn.(*connState)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.tx == nil {
		return nil
	}
	err := cs.tx.Rollback()
	cs.tx = nil
	if err != nil {
		return classifyErr(err)
	}
	return nil
}

func (b *Base) Commit(conn driver.ConnHandle) error {
	cs := conn.(*connState)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.tx == nil {
		return nil
	}
	err := cs.tx.Commit()
	cs.tx = nil
	if err != nil {
		return classifyErr(err)
	}
	return nil
}

func (b *Base) DataType(t driver.DataType, maxLen int) string {
	return b.Cfg.DataTypeFunc(t, maxLen)
}

func (b *Base) CreateTableSuffix() string { return b.Cfg.TableSuffix }

func (b *Base) AppendUpdLock(query, table string) string {
	if b.Cfg.UpdLockFunc != nil {
		return b.Cfg.UpdLockFunc(query, table, b.Cfg.UpdLockCap)
	}
	clause, pos := driver.EmitUpdLock(b.Cfg.UpdLockCap, table)
	if clause == "" {
		return query
	}
	if pos == driver.UpdLockAtTable {
		return strings.Replace(query, table, table+" "+clause, 1)
	}
	return strings.TrimRight(query, "; \t\n") + " " + clause
}

func (b *Base) AppendBitOp(op driver.BitOp, left, right string) string {
	return driver.EmitBitOp(b.Cfg.BitOpCap, op, left, right)
}

func (b *Base) RewriteIndexName(name string) string {
	if b.Cfg.RewriteIndexNameFunc == nil {
		return name
	}
	return b.Cfg.RewriteIndexNameFunc(name)
}

func (b *Base) UpdLockCap() driver.UpdLockCap { return b.Cfg.UpdLockCap }
func (b *Base) BitOpCap() driver.BitOpCap     { return b.Cfg.BitOpCap }
func (b *Base) ConnStrSchema() []driver.ConnStrParam {
	return b.Cfg.ConnStrSchema
}

func mapIsolation(i driver.Isolation) sql.IsolationLevel {
	switch i {
	case driver.ReadUncommitted:
		return sql.LevelReadUncommitted
	case driver.ReadCommitted:
		return sql.LevelReadCommitted
	case driver.RepeatableRead:
		return sql.LevelRepeatableRead
	case driver.Serializable:
		return sql.LevelSerializable
	case driver.Snapshot:
		return sql.LevelSnapshot
	default:
		return sql.LevelDefault
	}
}

func mapSQLType(ct *sql.ColumnType) driver.DataType {
	switch strings.ToUpper(ct.DatabaseTypeName()) {
	case "BOOL", "BOOLEAN":
		return driver.Bool
	case "SMALLINT", "INT2":
		return driver.Int16
	case "INT", "INTEGER", "INT4", "MEDIUMINT":
		return driver.Int32
	case "BIGINT", "INT8":
		return driver.Int64
	case "BLOB", "BYTEA", "BINARY", "VARBINARY":
		return driver.Binary
	default:
		return driver.Text
	}
}

// normalizeRow converts database/sql's scanned any values (mostly []byte
// for text in drivers that don't do native string conversion) into the
// unified type each column declares.
func normalizeRow(scanned []any, cols []driver.ColumnDesc) []any {
	row := make([]any, len(scanned))
	for i, v := range scanned {
		if v == nil {
			row[i] = nil
			continue
		}
		if cols[i].Type == driver.Binary {
			if b, ok := v.([]byte); ok {
				row[i] = b
				continue
			}
		}
		switch x := v.(type) {
		case []byte:
			row[i] = convertScalar(string(x), cols[i].Type)
		case string:
			row[i] = convertScalar(x, cols[i].Type)
		case int64:
			row[i] = convertInt(x, cols[i].Type)
		case float64:
			row[i] = convertInt(int64(x), cols[i].Type)
		case bool:
			row[i] = x
		default:
			row[i] = v
		}
	}
	return row
}

func convertScalar(s string, t driver.DataType) any {
	switch t {
	case driver.Text:
		return s
	default:
		return s
	}
}

func convertInt(n int64, t driver.DataType) any {
	switch t {
	case driver.Bool:
		return n != 0
	case driver.Int16:
		return int16(n)
	case driver.Int32:
		return int32(n)
	default:
		return n
	}
}

// classifyErr maps a generic database/sql error to a taxonomy kind using
// only information every backend exposes (sql.ErrConnDone, sql.ErrTxDone,
// or the error text). Backend packages that can do better (inspect a
// typed *mysql.MySQLError, *pgconn.PgError etc.) should classify before
// falling back to this.
func classifyErr(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrConnDone || err == sql.ErrTxDone {
		return driver.WrapError(driver.ConnLost, err, "connection no longer usable")
	}
	return driver.WrapError(driver.QueryFailure, err, "backend error")
}
