// pkg/table/table.go
package table

// Record represents a single row as a mapping from column name to cell value.
// Cell values are one of: nil, string, float64, int64, bool, time.Time.
type Record map[string]any

// Table is an ordered sequence of records sharing a column set.
// Column order is significant and is preserved on write.
type Table struct {
	Columns []string
	Rows    []Record
}

// New creates an empty table with the given column order.
func New(columns ...string) Table {
	return Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([]Record, 0),
	}
}

// RowCount returns the number of rows in the table.
func (t Table) RowCount() int {
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// HasColumn checks if a column with the given name exists.
func (t Table) HasColumn(name string) bool {
	for _, col := range t.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the table. Transformations operate on
// clones so that no stage ever mutates its input.
func (t Table) Clone() Table {
	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Record, 0, len(t.Rows)),
	}
	for _, row := range t.Rows {
		cloned := make(Record, len(row))
		for k, v := range row {
			cloned[k] = v
		}
		out.Rows = append(out.Rows, cloned)
	}
	return out
}

// Append adds a row to the table. Columns not yet known to the table
// are appended to the column list in iteration-independent order only
// when added via AddColumn; Append assumes the record's keys are a
// subset of t.Columns.
func (t *Table) Append(row Record) {
	t.Rows = append(t.Rows, row)
}

// AddColumn registers a new column name if not already present.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// NullCount returns the number of nil cells across all declared columns.
func (t Table) NullCount() int {
	count := 0
	for _, row := range t.Rows {
		for _, col := range t.Columns {
			if v, ok := row[col]; !ok || v == nil {
				count++
			}
		}
	}
	return count
}
