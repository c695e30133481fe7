package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/han30230/Stock-filtering/pkg/contracts/domain"
)

func sampleTable(t *testing.T) *domain.Table {
	t.Helper()
	tbl, err := domain.NewTable([]domain.Column{
		{Name: "종목명", Cells: []domain.Cell{domain.NewCell("Alpha"), domain.NewCell("Gamma, Inc")}},
		{Name: "종가", Cells: []domain.Cell{domain.NewCell("12.5"), domain.MissingCell()}},
		{Name: "업종", Cells: []domain.Cell{domain.NewCell("Tech"), domain.NewCell("Tech")}},
	})
	require.NoError(t, err)
	return tbl
}

func TestCSVWriter_WriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter().WriteTable(&buf, sampleTable(t)))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, utf8BOM), "BOM prefix")

	records, err := csv.NewReader(bytes.NewReader(raw[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"종목명", "종가", "업종"},
		{"Alpha", "12.5", "Tech"},
		{"Gamma, Inc", "", "Tech"},
	}, records)
}

func TestCSVWriter_NoBOM(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{}
	require.NoError(t, w.WriteTable(&buf, sampleTable(t)))
	assert.False(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))
}

func TestXLSXWriter_WriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewXLSXWriter().WriteTable(&buf, sampleTable(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheet}, f.GetSheetList())

	header, err := f.GetCellValue(DefaultSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "종가", header)

	cellType, err := f.GetCellType(DefaultSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, excelize.CellTypeNumber, cellType, "numeric column stored as number")

	price, err := f.GetCellValue(DefaultSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "12.5", price)

	missing, err := f.GetCellValue(DefaultSheet, "B3")
	require.NoError(t, err)
	assert.Empty(t, missing)

	name, err := f.GetCellValue(DefaultSheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Gamma, Inc", name)

	panes, err := f.GetPanes(DefaultSheet)
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()
	tbl := sampleTable(t)

	csvPath := filepath.Join(dir, "nested", "out.csv")
	require.NoError(t, ExportFile(csvPath, tbl))
	assert.FileExists(t, csvPath)

	xlsxPath := filepath.Join(dir, "out.XLSX")
	require.NoError(t, ExportFile(xlsxPath, tbl))
	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	err = ExportFile(filepath.Join(dir, "out.json"), tbl)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, statErr := os.Stat(filepath.Join(dir, "out.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{" XLSX ", FormatXLSX, false},
		{"", "", true},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilenameAndContentType(t *testing.T) {
	at := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "52week_high_filtered_20240102-150405.csv", Filename("", FormatCSV, at))
	assert.Equal(t, "highs_20240102-150405.xlsx", Filename("highs", FormatXLSX, at))
	assert.Contains(t, FormatCSV.ContentType(), "text/csv")
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
}
