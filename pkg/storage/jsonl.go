// pkg/storage/jsonl.go
package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jafshop/medallion/pkg/table"
)

// DecodeJSONL decodes newline-delimited JSON into a table. Each line is
// one JSON object; a line that fails to decode is logged and skipped,
// never fatal. The column order is the first-seen key order across
// records (keys within an object are taken in sorted-map order from
// the decoder, so ordering across runs is stable for identical input).
func DecodeJSONL(data []byte, logger *zap.Logger) table.Table {
	t := table.New()

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			logger.Warn("Skipping malformed JSONL line",
				zap.Int("line", lineNo),
				zap.String("prefix", truncate(line, 100)),
				zap.Error(err))
			continue
		}

		row := make(table.Record, len(obj))
		for _, key := range sortedKeys(obj) {
			t.AddColumn(key)
			row[key] = obj[key]
		}
		t.Append(row)
	}

	return t
}

func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
