package driver

import (
	"math/rand/v2"
	"sync"
	"time"
)

// idMu guards the package-level random source GenTimeRandID draws its
// suffix from. A single mutex-guarded source is simpler than per-thread
// state and cheap enough: callers are off the per-statement hot path.
var idMu sync.Mutex

// GenTimeRandID generates a positive signed 64-bit integer suitable for use
// as a primary key when auto-increment is undesirable. maxLen is the
// requested decimal-digit length, valid range 9-18; the returned value's
// decimal representation has at most maxLen digits.
//
// The integer is [time-prefix][random-suffix]: the time prefix increases
// monotonically on the second (or sub-day) scale to reduce B-tree index-page
// splits, while the random suffix supplies enough entropy to avoid
// collisions across concurrent callers. Callers are responsible for
// regenerating and retrying on a unique-constraint violation.
func GenTimeRandID(maxLen int) int64 {
	if maxLen < 9 || maxLen > 18 {
		return 0
	}

	now := time.Now().UTC()
	year := now.Year() % 10
	julianDay := now.YearDay() - 1 // time.YearDay is 1-366; normalize to 0-365
	secOfDay := now.Hour()*3600 + now.Minute()*60 + now.Second()

	var prefix int64
	var randDigits int

	switch {
	case maxLen >= 16:
		yDigits := 2
		if maxLen >= 17 {
			yDigits = 3
		}
		yVal := now.Year() % int(pow10(yDigits))
		prefix = int64(yVal)
		prefix = prefix*1000 + int64(julianDay)
		prefix = prefix*100000 + int64(secOfDay)
		randDigits = maxLen - (yDigits + 3 + 5)
	case maxLen == 14 || maxLen == 15:
		prefix = int64(year)
		prefix = prefix*1000 + int64(julianDay)
		prefix = prefix*100000 + int64(secOfDay)
		randDigits = maxLen - (1 + 3 + 5)
	case maxLen == 13:
		prefix = int64(year)
		prefix = prefix*1000 + int64(julianDay)
		prefix = prefix*10000 + int64(secOfDay/10)
		randDigits = maxLen - (1 + 3 + 4)
	case maxLen == 11 || maxLen == 12:
		prefix = int64(year)
		prefix = prefix*1000 + int64(julianDay)
		prefix = prefix*100 + int64(secOfDay/1000)
		randDigits = maxLen - (1 + 3 + 2)
	default: // 9-10
		prefix = int64(year)
		prefix = prefix*1000 + int64(julianDay)
		randDigits = maxLen - (1 + 3)
	}

	if randDigits < 1 {
		randDigits = 1
	}

	idMu.Lock()
	suffix := rand.Int64N(pow10(randDigits))
	idMu.Unlock()

	return prefix*pow10(randDigits) + suffix
}

func pow10(n int) int64 {
	v := int64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}
