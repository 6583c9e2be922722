package msql

import (
	"math/rand/v2"
	"sync"
)

var backoffMu sync.Mutex

// RollbackDelayMS returns a random delay, in milliseconds, to wait before
// retrying a statement or transaction after a rollback-class error
// (deadlock, serialization failure, lost connection). The delay is uniform
// over [10,110]ms: long enough that competing retriers are unlikely to
// collide again immediately, short enough not to matter to a human caller.
func RollbackDelayMS() uint64 {
	backoffMu.Lock()
	defer backoffMu.Unlock()
	return uint64(10 + rand.IntN(101))
}
