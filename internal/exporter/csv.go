package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/han30230/Stock-filtering/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	// BOMPrefix adds a UTF-8 BOM for Excel compatibility
	BOMPrefix bool
}

// NewCSVWriter creates a CSV writer that emits a BOM.
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{BOMPrefix: true}
}

// WriteTable writes the header and every row of t. Missing cells become
// empty fields.
func (cw *CSVWriter) WriteTable(w io.Writer, t *domain.Table) error {
	if cw.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, row := range t.Rows() {
		record := make([]string, len(row))
		for j, cell := range row {
			if !cell.Missing {
				record[j] = cell.Raw
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
