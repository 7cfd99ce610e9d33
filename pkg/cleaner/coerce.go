// pkg/cleaner/coerce.go
package cleaner

import (
	"strings"

	"github.com/jafshop/medallion/pkg/table"
)

// CoerceDates attempts to parse every cell of the named columns as a
// calendar date or timestamp. Cells that fail to parse become nil;
// coercion is cell-local and never fails the table. Columns not present
// are silently skipped.
func CoerceDates(t table.Table, cols []string) table.Table {
	return coerce(t, cols, func(v any) any {
		parsed, err := table.AsTime(v)
		if err != nil {
			return nil
		}
		return parsed
	})
}

// CoerceNumerics attempts to parse every cell of the named columns as a
// number. Failures become nil; the caller is responsible for a
// subsequent fill pass if nils are undesired for the column.
func CoerceNumerics(t table.Table, cols []string) table.Table {
	return coerce(t, cols, func(v any) any {
		parsed, err := table.AsFloat(v)
		if err != nil {
			return nil
		}
		return parsed
	})
}

func coerce(t table.Table, cols []string, convert func(any) any) table.Table {
	targets := make([]string, 0, len(cols))
	for _, col := range cols {
		if t.HasColumn(col) {
			targets = append(targets, col)
		}
	}
	if len(targets) == 0 {
		return t.Clone()
	}

	out := t.Clone()
	for _, row := range out.Rows {
		for _, col := range targets {
			v, ok := row[col]
			if !ok || v == nil {
				row[col] = nil
				continue
			}
			row[col] = convert(v)
		}
	}
	return out
}

// DateColumns returns the columns whose names indicate a date or
// timestamp: containing "date" or ending in "_at".
func DateColumns(t table.Table) []string {
	var cols []string
	for _, col := range t.Columns {
		lower := strings.ToLower(col)
		if strings.Contains(lower, "date") || strings.HasSuffix(lower, "_at") {
			cols = append(cols, col)
		}
	}
	return cols
}
