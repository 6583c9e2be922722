package msql

import "github.com/dbmesh/msql/driver"

// DataType is an alias of driver.DataType: the seven-member value universe
// every bound parameter and result column carries, plus null.
type DataType = driver.DataType

// Data type constants, re-exported for callers that only import msql.
const (
	Bool   = driver.Bool
	Int16  = driver.Int16
	Int32  = driver.Int32
	Int64  = driver.Int64
	Text   = driver.Text
	Binary = driver.Binary
	Null   = driver.Null
)

// ColumnDesc is an alias of driver.ColumnDesc.
type ColumnDesc = driver.ColumnDesc

// Isolation is an alias of driver.Isolation.
type Isolation = driver.Isolation

const (
	ReadUncommitted = driver.ReadUncommitted
	ReadCommitted   = driver.ReadCommitted
	RepeatableRead  = driver.RepeatableRead
	Serializable    = driver.Serializable
	Snapshot        = driver.Snapshot
)

// PoolFlags is an alias of driver.PoolFlags.
type PoolFlags = driver.PoolFlags

const (
	PrespawnAll      = driver.PrespawnAll
	NoAutoRetryQuery = driver.NoAutoRetryQuery
	LoadBalance      = driver.LoadBalance
)

// SelectionPolicy is an alias of driver.SelectionPolicy.
type SelectionPolicy = driver.SelectionPolicy

const (
	Failover          = driver.Failover
	LoadBalancePolicy = driver.LoadBalancePolicy
)
