package msql_test

import (
	"testing"

	"github.com/dbmesh/msql"
)

func TestTxn_CommitPersists(t *testing.T) {
	pool := newTestPool(t)
	requireNoError(t, pool.Execute(msql.Prepare(pool, "CREATE TABLE t (id INTEGER)")))

	txn, err := msql.Begin(pool, msql.ReadCommitted)
	requireNoError(t, err)

	insert := txn.Stmt("INSERT INTO t (id) VALUES (?)")
	requireNoError(t, insert.BindInt64(1))
	requireNoError(t, insert.NewRow())
	requireNoError(t, pool.Execute(insert))

	requireNoError(t, txn.Commit())

	count := msql.Prepare(pool, "SELECT COUNT(*) FROM t")
	requireNoError(t, pool.Execute(count))
	n, err := count.Result().Int64(0, 0)
	requireNoError(t, err)
	if n != 1 {
		t.Errorf("COUNT(*) after commit = %d, want 1", n)
	}
}

func TestTxn_RollbackDiscards(t *testing.T) {
	pool := newTestPool(t)
	requireNoError(t, pool.Execute(msql.Prepare(pool, "CREATE TABLE t (id INTEGER)")))

	txn, err := msql.Begin(pool, msql.ReadCommitted)
	requireNoError(t, err)

	insert := txn.Stmt("INSERT INTO t (id) VALUES (?)")
	requireNoError(t, insert.BindInt64(1))
	requireNoError(t, insert.NewRow())
	requireNoError(t, pool.Execute(insert))

	requireNoError(t, txn.Rollback())

	count := msql.Prepare(pool, "SELECT COUNT(*) FROM t")
	requireNoError(t, pool.Execute(count))
	n, err := count.Result().Int64(0, 0)
	requireNoError(t, err)
	if n != 0 {
		t.Errorf("COUNT(*) after rollback = %d, want 0", n)
	}
}

func TestTxn_DoubleCommitRejected(t *testing.T) {
	pool := newTestPool(t)
	txn, err := msql.Begin(pool, msql.ReadCommitted)
	requireNoError(t, err)
	requireNoError(t, txn.Commit())

	if err := txn.Commit(); err == nil {
		t.Error("expected an error committing an already-finished transaction")
	}
}

func TestProcess_CommitsOnSuccess(t *testing.T) {
	pool := newTestPool(t)
	requireNoError(t, pool.Execute(msql.Prepare(pool, "CREATE TABLE t (id INTEGER)")))

	kind := msql.Process(pool, msql.ReadCommitted, func(txn *msql.Txn) msql.ErrorKind {
		insert := txn.Stmt("INSERT INTO t (id) VALUES (?)")
		insert.BindInt64(42)
		insert.NewRow()
		if err := pool.Execute(insert); err != nil {
			return msql.KindOf(err)
		}
		return msql.UserSuccess
	})
	if kind.IsError() {
		t.Fatalf("Process() = %s, want success", kind)
	}

	count := msql.Prepare(pool, "SELECT COUNT(*) FROM t")
	requireNoError(t, pool.Execute(count))
	n, err := count.Result().Int64(0, 0)
	requireNoError(t, err)
	if n != 1 {
		t.Errorf("COUNT(*) after Process success = %d, want 1", n)
	}
}

func TestProcess_RollsBackOnUserFailure(t *testing.T) {
	pool := newTestPool(t)
	requireNoError(t, pool.Execute(msql.Prepare(pool, "CREATE TABLE t (id INTEGER)")))

	kind := msql.Process(pool, msql.ReadCommitted, func(txn *msql.Txn) msql.ErrorKind {
		insert := txn.Stmt("INSERT INTO t (id) VALUES (?)")
		insert.BindInt64(1)
		insert.NewRow()
		if err := pool.Execute(insert); err != nil {
			return msql.KindOf(err)
		}
		return msql.UserFailure
	})
	if kind != msql.UserFailure {
		t.Errorf("Process() = %s, want USER_FAILURE", kind)
	}

	count := msql.Prepare(pool, "SELECT COUNT(*) FROM t")
	requireNoError(t, pool.Execute(count))
	n, err := count.Result().Int64(0, 0)
	requireNoError(t, err)
	if n != 0 {
		t.Errorf("COUNT(*) after Process failure = %d, want 0 (rolled back)", n)
	}
}
