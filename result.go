package msql

import "strings"

// Result is the column-typed, row-structured value store produced by
// executing a SELECT-shaped statement. Storage is indexed (row, col); a nil
// cell value represents SQL NULL regardless of the column's declared type.
type Result struct {
	cols []ColumnDesc
	rows [][]any

	totalRows    int
	hasRemaining bool
}

func newResult(cols []ColumnDesc) *Result {
	return &Result{cols: cols}
}

// appendChunk adds a freshly fetched chunk of rows to the buffer and
// accumulates the total-rows counter, per §4.8's "current buffer" vs.
// "cumulative across fetches" distinction.
func (r *Result) appendChunk(rows [][]any, hasRemaining bool) {
	r.rows = rows
	r.totalRows += len(rows)
	r.hasRemaining = hasRemaining
}

// NumCols returns the column count.
func (r *Result) NumCols() int { return len(r.cols) }

// ColName returns the name of column i.
func (r *Result) ColName(i int) string {
	if i < 0 || i >= len(r.cols) {
		return ""
	}
	return r.cols[i].Name
}

// ColType returns the declared type and maximum length of column i.
func (r *Result) ColType(i int) (DataType, int) {
	if i < 0 || i >= len(r.cols) {
		return Null, 0
	}
	return r.cols[i].Type, r.cols[i].MaxLen
}

// ColIdx returns the index of the column named name, case-insensitively,
// and whether it was found.
func (r *Result) ColIdx(name string) (int, bool) {
	for i, c := range r.cols {
		if strings.EqualFold(c.Name, name) {
			return i, true
		}
	}
	return 0, false
}

// NumRows returns the row count currently held in the buffer (the most
// recent fetch's chunk).
func (r *Result) NumRows() int { return len(r.rows) }

// TotalRows returns the cumulative row count across every fetch so far.
func (r *Result) TotalRows() int { return r.totalRows }

// HasRemainingRows reports whether unfetched server-side rows remain.
func (r *Result) HasRemainingRows() bool { return r.hasRemaining }

func (r *Result) cell(row, col int) (any, error) {
	if row < 0 || row >= len(r.rows) {
		return nil, NewError(QueryFailure, "result row index %d out of range", row)
	}
	if col < 0 || col >= len(r.rows[row]) {
		return nil, NewError(QueryFailure, "result column index %d out of range", col)
	}
	return r.rows[row][col], nil
}

// IsNull reports whether cell (row, col) holds SQL NULL.
func (r *Result) IsNull(row, col int) (bool, error) {
	v, err := r.cell(row, col)
	if err != nil {
		return false, err
	}
	return v == nil, nil
}

// IsNullByName is IsNull addressed by column name.
func (r *Result) IsNullByName(row int, name string) (bool, error) {
	col, ok := r.ColIdx(name)
	if !ok {
		return false, NewError(QueryFailure, "no such column %q", name)
	}
	return r.IsNull(row, col)
}

// Bool reads cell (row, col) as a boolean.
func (r *Result) Bool(row, col int) (bool, error) {
	v, err := r.cell(row, col)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, NewError(QueryFailure, "cell (%d,%d) is not a bool", row, col)
	}
	return b, nil
}

// BoolDirect is Bool's unchecked fast-path variant: it returns false on any
// type mismatch or null instead of an error, for code that has already
// validated the schema.
func (r *Result) BoolDirect(row, col int) bool {
	b, err := r.Bool(row, col)
	if err != nil {
		return false
	}
	return b
}

// Int16 reads cell (row, col) as a 16-bit signed integer.
func (r *Result) Int16(row, col int) (int16, error) {
	v, err := r.cell(row, col)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int16)
	if !ok {
		return 0, NewError(QueryFailure, "cell (%d,%d) is not an int16", row, col)
	}
	return n, nil
}

// Int16Direct is Int16's unchecked fast-path variant.
func (r *Result) Int16Direct(row, col int) int16 {
	n, err := r.Int16(row, col)
	if err != nil {
		return 0
	}
	return n
}

// Int32 reads cell (row, col) as a 32-bit signed integer.
func (r *Result) Int32(row, col int) (int32, error) {
	v, err := r.cell(row, col)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int32)
	if !ok {
		return 0, NewError(QueryFailure, "cell (%d,%d) is not an int32", row, col)
	}
	return n, nil
}

// Int32Direct is Int32's unchecked fast-path variant.
func (r *Result) Int32Direct(row, col int) int32 {
	n, err := r.Int32(row, col)
	if err != nil {
		return 0
	}
	return n
}

// Int64 reads cell (row, col) as a 64-bit signed integer.
func (r *Result) Int64(row, col int) (int64, error) {
	v, err := r.cell(row, col)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int64)
	if !ok {
		return 0, NewError(QueryFailure, "cell (%d,%d) is not an int64", row, col)
	}
	return n, nil
}

// Int64Direct is Int64's unchecked fast-path variant.
func (r *Result) Int64Direct(row, col int) int64 {
	n, err := r.Int64(row, col)
	if err != nil {
		return 0
	}
	return n
}

// Text reads cell (row, col) as a string.
func (r *Result) Text(row, col int) (string, error) {
	v, err := r.cell(row, col)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", NewError(QueryFailure, "cell (%d,%d) is not text", row, col)
	}
	return s, nil
}

// TextDirect is Text's unchecked fast-path variant.
func (r *Result) TextDirect(row, col int) string {
	s, err := r.Text(row, col)
	if err != nil {
		return ""
	}
	return s
}

// Binary reads cell (row, col) as a byte slice.
func (r *Result) Binary(row, col int) ([]byte, error) {
	v, err := r.cell(row, col)
	if err != nil {
		return nil, err
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, NewError(QueryFailure, "cell (%d,%d) is not binary", row, col)
	}
	return b, nil
}

// BinaryDirect is Binary's unchecked fast-path variant.
func (r *Result) BinaryDirect(row, col int) []byte {
	b, err := r.Binary(row, col)
	if err != nil {
		return nil
	}
	return b
}

// BoolByName, Int16ByName, Int32ByName, Int64ByName, TextByName and
// BinaryByName address a cell by case-insensitive column name instead of
// index.

func (r *Result) BoolByName(row int, name string) (bool, error) {
	col, ok := r.ColIdx(name)
	if !ok {
		return false, NewError(QueryFailure, "no such column %q", name)
	}
	return r.Bool(row, col)
}

func (r *Result) Int16ByName(row int, name string) (int16, error) {
	col, ok := r.ColIdx(name)
	if !ok {
		return 0, NewError(QueryFailure, "no such column %q", name)
	}
	return r.Int16(row, col)
}

func (r *Result) Int32ByName(row int, name string) (int32, error) {
	col, ok := r.ColIdx(name)
	if !ok {
		return 0, NewError(QueryFailure, "no such column %q", name)
	}
	return r.Int32(row, col)
}

func (r *Result) Int64ByName(row int, name string) (int64, error) {
	col, ok := r.ColIdx(name)
	if !ok {
		return 0, NewError(QueryFailure, "no such column %q", name)
	}
	return r.Int64(row, col)
}

func (r *Result) TextByName(row int, name string) (string, error) {
	col, ok := r.ColIdx(name)
	if !ok {
		return "", NewError(QueryFailure, "no such column %q", name)
	}
	return r.Text(row, col)
}

func (r *Result) BinaryByName(row int, name string) ([]byte, error) {
	col, ok := r.ColIdx(name)
	if !ok {
		return nil, NewError(QueryFailure, "no such column %q", name)
	}
	return r.Binary(row, col)
}
