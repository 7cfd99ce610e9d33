// pkg/cleaner/normalize.go
package cleaner

import (
	"strings"

	"github.com/jafshop/medallion/pkg/table"
)

var labelReplacer = strings.NewReplacer(" ", "_", "-", "_")

// NormalizeLabel standardizes a single column label: lowercase with
// spaces and hyphens replaced by underscores.
func NormalizeLabel(name string) string {
	return labelReplacer.Replace(strings.ToLower(name))
}

// NormalizeColumns returns a table with identical row content but
// standardized column names. Idempotent; a table with zero columns or
// zero rows passes through unchanged. If two raw labels normalize to
// the same name the first occurrence wins.
func NormalizeColumns(t table.Table) table.Table {
	out := table.New()
	rename := make(map[string]string, len(t.Columns))

	for _, col := range t.Columns {
		normalized := NormalizeLabel(col)
		if out.HasColumn(normalized) {
			continue
		}
		out.AddColumn(normalized)
		rename[col] = normalized
	}

	for _, row := range t.Rows {
		cleaned := make(table.Record, len(row))
		for raw, normalized := range rename {
			if v, ok := row[raw]; ok {
				cleaned[normalized] = v
			}
		}
		out.Append(cleaned)
	}

	return out
}

// Rename applies a raw-alias to canonical-name map. Only keys actually
// present in the table are renamed; unknown columns pass through
// untouched. When a rename target collides with an existing column the
// existing column is kept and the alias column is dropped.
func Rename(t table.Table, mapping map[string]string) table.Table {
	if len(mapping) == 0 {
		return t.Clone()
	}

	out := table.New()
	applied := make(map[string]string, len(t.Columns))

	for _, col := range t.Columns {
		target, ok := mapping[col]
		if !ok {
			target = col
		}
		if out.HasColumn(target) {
			continue
		}
		out.AddColumn(target)
		applied[col] = target
	}

	for _, row := range t.Rows {
		renamed := make(table.Record, len(row))
		for raw, target := range applied {
			if v, ok := row[raw]; ok {
				renamed[target] = v
			}
		}
		out.Append(renamed)
	}

	return out
}
