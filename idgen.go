package msql

import "github.com/dbmesh/msql/driver"

// GenTimeRandID generates a positive signed 64-bit integer suitable for use
// as a primary key when auto-increment is undesirable. See
// driver.GenTimeRandID for the digit-length/composition rules.
func GenTimeRandID(maxLen int) int64 {
	return driver.GenTimeRandID(maxLen)
}
