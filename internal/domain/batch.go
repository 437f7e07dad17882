package domain

// ColumnType is a best-effort inferred column type for batch columns.
type ColumnType string

// Inferred column types, mapped to warehouse types by the warehouse layer.
const (
	TypeVarchar   ColumnType = "VARCHAR"
	TypeBigint    ColumnType = "BIGINT"
	TypeDouble    ColumnType = "DOUBLE"
	TypeBoolean   ColumnType = "BOOLEAN"
	TypeTimestamp ColumnType = "TIMESTAMP"
)

// Column describes one column of a batch.
type Column struct {
	Name string
	Type ColumnType
}

// Batch is a row set ready for a warehouse append. Values are Go natives
// (string, int64, float64, bool, time.Time) or nil for missing cells.
type Batch struct {
	Columns []Column
	Rows    [][]any
}

// NumRows returns the number of rows in the batch.
func (b *Batch) NumRows() int {
	if b == nil {
		return 0
	}
	return len(b.Rows)
}

// ColumnIndex returns the index of the named column, or -1.
func (b *Batch) ColumnIndex(name string) int {
	for i, c := range b.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}
