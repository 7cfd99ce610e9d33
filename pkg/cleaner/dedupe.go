// pkg/cleaner/dedupe.go
package cleaner

import (
	"strings"

	"github.com/jafshop/medallion/pkg/table"
)

// Deduplicate removes rows whose identity key already occurred earlier
// in the sequence. Identity is defined by the given subset of columns;
// an empty subset means full-row identity over all declared columns.
// The first occurrence wins and relative order among survivors is
// preserved. Returns the deduplicated table and the number of rows
// removed.
func Deduplicate(t table.Table, keyCols []string) (table.Table, int) {
	if len(keyCols) == 0 {
		keyCols = t.Columns
	}

	out := table.New(t.Columns...)
	seen := make(map[string]struct{}, len(t.Rows))
	removed := 0

	for _, row := range t.Rows {
		key := identityKey(row, keyCols)
		if _, dup := seen[key]; dup {
			removed++
			continue
		}
		seen[key] = struct{}{}

		cloned := make(table.Record, len(row))
		for k, v := range row {
			cloned[k] = v
		}
		out.Append(cloned)
	}

	return out, removed
}

// identityKey builds a stable composite key from the row's values in
// key-column order. Nil and the empty string hash differently so that
// genuinely missing cells are not conflated with empty text.
func identityKey(row table.Record, keyCols []string) string {
	var sb strings.Builder
	for i, col := range keyCols {
		if i > 0 {
			sb.WriteByte(0x1f)
		}
		v, ok := row[col]
		if !ok || v == nil {
			sb.WriteString("\x00nil")
			continue
		}
		sb.WriteString(table.AsString(v))
	}
	return sb.String()
}
