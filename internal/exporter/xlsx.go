package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/han30230/Stock-filtering/pkg/contracts/domain"
)

// DefaultSheet names the worksheet when none is given.
const DefaultSheet = "Filtered"

// XLSXWriter writes tables as single-sheet workbooks.
type XLSXWriter struct {
	Sheet string
}

// NewXLSXWriter creates a writer using DefaultSheet.
func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{Sheet: DefaultSheet}
}

// WriteTable streams t into a workbook and writes it to w. Cells of numeric
// columns that coerce are stored as numbers; everything else stays text.
func (xw *XLSXWriter) WriteTable(w io.Writer, t *domain.Table) error {
	sheet := xw.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E0E7EF"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	columns := t.Columns()
	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col.Name
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: headerStyle}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := 0; i < t.Len(); i++ {
		values := make([]interface{}, len(columns))
		for j, col := range columns {
			values[j] = cellValue(col.Kind, col.Cells[i])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func cellValue(kind domain.ColumnKind, c domain.Cell) interface{} {
	if c.Missing {
		return nil
	}
	if kind == domain.KindNumeric {
		if n := domain.Coerce(c); n.Valid {
			return n.Value
		}
	}
	return c.Raw
}
