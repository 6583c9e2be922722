package msql

import (
	"runtime"
	"sync"

	"github.com/dbmesh/msql/driver"
)

// groupInsertEntry is the query-keyed rendezvous point concurrent callers
// append bind rows to before one of them executes the merged batch on
// everyone's behalf.
type groupInsertEntry struct {
	key string

	mu      sync.Mutex
	cond    *sync.Cond
	stmt    *Stmt
	refCnt  int
	claimed bool
	done    bool
	result  driver.ErrorKind
	err     error
}

// GroupInsert is a caller's handle onto a shared groupInsertEntry: bind rows
// through it, then Execute to join the coalesced batch.
type GroupInsert struct {
	pool  *Pool
	entry *groupInsertEntry
}

// GroupInsertPrepare requests a group-insert statement keyed by the verbatim
// query string. If no entry exists for this key yet, one is created with a
// fresh shared statement handle; otherwise the caller joins the existing
// entry. Group-insert statements may not use Prepare/PrepareBuffer directly
// — they are preconfigured by this call.
func (p *Pool) GroupInsertPrepare(query string) *GroupInsert {
	p.giMu.Lock()
	entry, ok := p.group[query]
	if !ok {
		entry = &groupInsertEntry{key: query, stmt: Prepare(p, query)}
		entry.cond = sync.NewCond(&entry.mu)
		p.group[query] = entry
	}
	entry.refCnt++
	p.giMu.Unlock()

	return &GroupInsert{pool: p, entry: entry}
}

// BindRow appends one bound row to the shared statement under the entry's
// lock, so concurrent appenders never interleave a partial row. Once the
// batch has been executed (entry.done), the row can no longer be part of
// what ran, so BindRow rejects it instead of silently accepting a row that
// will never run.
func (g *GroupInsert) BindRow(values ...any) error {
	g.entry.mu.Lock()
	defer g.entry.mu.Unlock()

	if g.entry.done {
		return NewError(QueryFailure, "group insert already executed, BindRow too late")
	}

	for _, v := range values {
		if err := g.entry.stmt.bindValue(v, typeOfBoundValue(v)); err != nil {
			return err
		}
	}
	return g.entry.stmt.NewRow()
}

// Execute joins the coalesced batch. The first caller to reach Execute
// yields briefly (a cooperative scheduling hint, giving other already-bound
// joiners a chance to attach before the batch closes) then claims the
// executor role, removes the entry from the pool's key table so no new
// joiner can attach, and runs the merged statement; every other caller
// blocks on the entry's condition variable and receives the same result
// kind without the backend seeing more than one execute call.
func (g *GroupInsert) Execute() driver.ErrorKind {
	entry := g.entry

	entry.mu.Lock()
	if entry.done {
		kind := entry.result
		entry.mu.Unlock()
		return kind
	}
	if entry.claimed {
		for !entry.done {
			entry.cond.Wait()
		}
		kind := entry.result
		entry.mu.Unlock()
		return kind
	}
	entry.claimed = true
	entry.mu.Unlock()

	runtime.Gosched()

	g.pool.giMu.Lock()
	if g.pool.group[entry.key] == entry {
		delete(g.pool.group, entry.key)
	}
	g.pool.giMu.Unlock()

	entry.mu.Lock()
	err := g.pool.Execute(entry.stmt)
	entry.result = driver.KindOf(err)
	entry.err = err
	entry.done = true
	entry.cond.Broadcast()
	entry.mu.Unlock()

	return entry.result
}

// Err returns the error (if any) associated with the batch's result kind,
// shared identically across every participating caller.
func (g *GroupInsert) Err() error {
	g.entry.mu.Lock()
	defer g.entry.mu.Unlock()
	return g.entry.err
}

// Release decrements the entry's reference count, freeing it from the
// pool's key table once the last participant has released it. Safe to call
// whether or not the entry has already been removed by Execute.
func (g *GroupInsert) Release() {
	g.pool.giMu.Lock()
	defer g.pool.giMu.Unlock()

	g.entry.refCnt--
	if g.entry.refCnt <= 0 {
		if g.pool.group[g.entry.key] == g.entry {
			delete(g.pool.group, g.entry.key)
		}
	}
}
