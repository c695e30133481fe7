package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/han30230/Stock-filtering/pkg/contracts/domain"
)

// table builds a table from a header row and string rows. Blank strings are
// missing cells.
func table(t *testing.T, header []string, rows ...[]string) *domain.Table {
	t.Helper()
	cols := make([]domain.Column, len(header))
	for j, name := range header {
		cells := make([]domain.Cell, len(rows))
		for i, row := range rows {
			cells[i] = domain.NewCell(row[j])
		}
		cols[j] = domain.Column{Name: name, Cells: cells}
	}
	tbl, err := domain.NewTable(cols)
	require.NoError(t, err)
	return tbl
}

// column returns the raw values of a column.
func column(t *testing.T, tbl *domain.Table, name string) []string {
	t.Helper()
	col, ok := tbl.Column(name)
	require.True(t, ok, "column %q not found", name)
	out := make([]string, len(col.Cells))
	for i, c := range col.Cells {
		out[i] = c.Raw
	}
	return out
}

func bounds(lo, hi float64) *domain.Bounds {
	return &domain.Bounds{Min: lo, Max: hi}
}
