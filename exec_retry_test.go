package msql

import (
	"sync/atomic"
	"testing"

	"github.com/dbmesh/msql/driver"
)

// retryFakeDriver is a minimal driver.Driver whose Execute fails once with a
// rollback-class error, then succeeds, so tests can observe exactly what
// bind data Pool.Execute hands the driver on the retried attempt.
type retryFakeDriver struct {
	execCalls    int32
	lastRowCount int
}

func (d *retryFakeDriver) Name() string                                { return "retryfake" }
func (d *retryFakeDriver) DisplayName() string                         { return "RetryFake" }
func (d *retryFakeDriver) Version() string                             { return "0" }
func (d *retryFakeDriver) Init() error                                 { return nil }
func (d *retryFakeDriver) Destroy()                                    {}
func (d *retryFakeDriver) CreatePool(string, driver.PoolFlags) (driver.PoolHandle, int, error) {
	return struct{}{}, 1, nil
}
func (d *retryFakeDriver) DestroyPool(driver.PoolHandle) {}
func (d *retryFakeDriver) Connect(driver.PoolHandle, bool, int) (driver.ConnHandle, error) {
	return struct{}{}, nil
}
func (d *retryFakeDriver) Disconnect(driver.ConnHandle)                    {}
func (d *retryFakeDriver) ServerVersion(driver.ConnHandle) string          { return "0" }
func (d *retryFakeDriver) ConnectRunOnce(driver.ConnHandle, bool) error    { return nil }
func (d *retryFakeDriver) QueryFormat(q string, _, _ int, _ driver.QueryFormatFlags) (string, error) {
	return q, nil
}
func (d *retryFakeDriver) QueryRowCount(driver.ConnHandle, int) int { return 1 << 30 }
func (d *retryFakeDriver) Prepare(driver.ConnHandle, string, driver.StmtHandle) (driver.StmtHandle, error) {
	return struct{}{}, nil
}
func (d *retryFakeDriver) PrepareDestroy(driver.StmtHandle) {}
func (d *retryFakeDriver) Execute(_ driver.ConnHandle, _ driver.StmtHandle, rows [][]any) (int64, int64, error) {
	d.lastRowCount = len(rows)
	if atomic.AddInt32(&d.execCalls, 1) == 1 {
		return 0, 0, driver.NewError(driver.QueryDeadlock, "simulated deadlock")
	}
	return int64(len(rows)), int64(len(rows)), nil
}
func (d *retryFakeDriver) Fetch(driver.ConnHandle, driver.StmtHandle, int) ([]driver.ColumnDesc, [][]any, bool, error) {
	return nil, nil, false, nil
}
func (d *retryFakeDriver) Begin(driver.ConnHandle, driver.Isolation) error { return nil }
func (d *retryFakeDriver) Rollback(driver.ConnHandle) error                { return nil }
func (d *retryFakeDriver) Commit(driver.ConnHandle) error                  { return nil }
func (d *retryFakeDriver) DataType(driver.DataType, int) string            { return "" }
func (d *retryFakeDriver) CreateTableSuffix() string                       { return "" }
func (d *retryFakeDriver) AppendUpdLock(query, _ string) string            { return query }
func (d *retryFakeDriver) AppendBitOp(driver.BitOp, string, string) string { return "" }
func (d *retryFakeDriver) RewriteIndexName(name string) string             { return name }
func (d *retryFakeDriver) UpdLockCap() driver.UpdLockCap                   { return driver.UpdLockNone }
func (d *retryFakeDriver) BitOpCap() driver.BitOpCap                       { return driver.BitOpInfix }
func (d *retryFakeDriver) ConnStrSchema() []driver.ConnStrParam            { return nil }

func TestExecute_RollbackRetryPreservesBoundRows(t *testing.T) {
	fd := &retryFakeDriver{}
	driver.Register("retryfake-preserves-rows", func() driver.Driver { return fd })

	pool, err := NewPool("retryfake-preserves-rows", "", 1, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := pool.Start(); err != nil {
		t.Fatal(err)
	}

	stmt := Prepare(pool, "INSERT INTO t (id) VALUES (?)")
	for i := int64(1); i <= 3; i++ {
		if err := stmt.BindInt64(i); err != nil {
			t.Fatal(err)
		}
		if err := stmt.NewRow(); err != nil {
			t.Fatal(err)
		}
	}

	if err := pool.Execute(stmt); err != nil {
		t.Fatalf("Execute() = %v, want nil after the rollback-class retry succeeds", err)
	}
	if fd.execCalls != 2 {
		t.Fatalf("driver Execute called %d times, want 2 (one failure, one retry)", fd.execCalls)
	}
	if fd.lastRowCount != 3 {
		t.Errorf("retried Execute call received %d rows, want 3 (all originally bound rows, not cleared)", fd.lastRowCount)
	}
}
