// pkg/storage/csv.go
package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jafshop/medallion/pkg/table"
)

// ReadTable reads a CSV file into a table. The header row defines the
// column order; every cell is read as raw text, with typing left to the
// cleaning pipeline.
func ReadTable(path string) (table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return table.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// ragged rows are tolerated here; validation belongs to the cleaner
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return table.Table{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return table.New(), nil
	}

	t := table.New(records[0]...)
	for _, line := range records[1:] {
		row := make(table.Record, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(line) {
				row[col] = line[i]
			}
		}
		t.Append(row)
	}
	return t, nil
}

// WriteTable writes a table to a CSV file, creating parent directories
// as needed. Column order on write matches the table's current column
// order; re-running overwrites the file wholesale.
func WriteTable(t table.Table, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	line := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			line[i] = table.AsString(row[col])
		}
		if err := writer.Write(line); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// ListCSVFiles returns the basenames of all .csv files in a folder.
func ListCSVFiles(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", folder, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) == ".csv" {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}
