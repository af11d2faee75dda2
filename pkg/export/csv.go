package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Table is the tabular content rendered by the exporters. Rows are positional
// and must match the column count.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// RenderCSV produces CSV-encoded bytes for the table.
func RenderCSV(table Table) ([]byte, error) {
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("csv requires at least one column")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(table.Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range table.Rows {
		if len(row) != len(table.Columns) {
			return nil, fmt.Errorf("csv row %d has %d cells, want %d", i, len(row), len(table.Columns))
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
