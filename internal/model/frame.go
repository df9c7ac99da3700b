package model

// ColumnType is the semantic type of a Frame column, independent of its
// underlying Go representation (spec §3 Frame).
type ColumnType int

const (
	ColumnInt ColumnType = iota
	ColumnUint
	ColumnFloat
	ColumnBool
	ColumnString
	ColumnTimestamp
)

// Frame is the minimal capability trait a tabular input must satisfy for
// FrameSerializer to project it into lines, per spec §9's design note:
// "frames are a polymorphic trait whose minimal capability set is
// {columns(), iter_rows(), column_type(name)}." Any caller-supplied table
// type (a loaded CSV, a Parquet batch, an Arrow record, a hand-built
// in-memory table) need only implement this to be writable.
type Frame interface {
	// Columns returns the column names in declaration order.
	Columns() []string
	// ColumnType returns the semantic type of a named column.
	ColumnType(name string) ColumnType
	// Rows returns the number of rows in the frame.
	Rows() int
	// Value returns the value of a column at a row, and whether it is
	// null. The concrete type of value matches ColumnType: int64, uint64,
	// float64, bool, string, or time.Time/int64 for ColumnTimestamp
	// (int64 is treated as already-scaled-to-target-precision; anything
	// else is parsed as an instant, see internal/frame).
	Value(row int, column string) (value any, isNull bool)
	// Nullable reports whether any value in the named column may be
	// null; used to pick the fast (no null-check) or careful serialization
	// path per spec §4.2.
	Nullable(column string) bool
}
