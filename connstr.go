package msql

import "github.com/dbmesh/msql/driver"

// ParseConnString parses the library's common connection-string grammar:
// semicolon-separated key=value pairs. A value may be single-quoted, with a
// doubled single-quote as the escape for a literal quote inside it.
// Whitespace around "=" and ";" is insignificant outside quotes, significant
// inside them.
//
// Example: `host=10.1.2.3:5432,10.1.2.4;db=mydb;ssl=true`.
//
// This is an alias of driver.ParseConnString: every backend plugin parses
// connection strings with it too, so the grammar lives in the driver
// package and this function is exported here for application code that
// only imports msql.
func ParseConnString(s string) (map[string]string, error) {
	return driver.ParseConnString(s)
}
