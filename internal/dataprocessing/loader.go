package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/han30230/Stock-filtering/pkg/contracts/domain"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither XLSX nor CSV.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrNoHeader is returned when a sheet has no non-empty row.
	ErrNoHeader = errors.New("no header row found")
	// ErrSheetNotFound is returned when the requested sheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
)

const utf8BOM = "\ufeff"

// Format identifies a tabular file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DetectFormat maps a file extension to a Format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadOptions control how a file becomes a table.
type LoadOptions struct {
	// Sheet selects a worksheet by name; empty means the first sheet.
	Sheet  string
	Logger *slog.Logger
}

func (o LoadOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// LoadFile reads an XLSX or CSV file into a table. All cells are kept as raw
// strings; numeric coercion happens later, per operation.
func LoadFile(path string, opts LoadOptions) (*domain.Table, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	t, err := Load(f, format, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// Load reads a table from r in the given format.
func Load(r io.Reader, format Format, opts LoadOptions) (*domain.Table, error) {
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatXLSX:
		rows, err = readXLSX(r, opts)
	case FormatCSV:
		rows, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	t, err := buildTable(rows)
	if err != nil {
		return nil, err
	}

	opts.logger().Info("table loaded",
		slog.String("format", string(format)),
		slog.Int("rows", t.Len()),
		slog.Int("columns", len(t.ColumnNames())))
	return t, nil
}

func readXLSX(r io.Reader, opts LoadOptions) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoHeader
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	// raw values keep numbers free of display formatting such as "1,234"
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	opts.logger().Debug("sheet read", slog.String("sheet", sheet), slog.Int("raw_rows", len(rows)))
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}
	return rows, nil
}

// buildTable turns raw rows into a table. The first non-empty row is the
// header; blank headers become column_N and repeats get a _2, _3... suffix.
// Short rows are padded with missing cells and blank rows are dropped.
func buildTable(rows [][]string) (*domain.Table, error) {
	headerAt := -1
	for i, row := range rows {
		if !blankRow(row) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, ErrNoHeader
	}

	names := headerNames(rows[headerAt])
	cells := make([][]domain.Cell, len(names))
	for _, row := range rows[headerAt+1:] {
		if blankRow(row) {
			continue
		}
		for j := range names {
			var raw string
			if j < len(row) {
				raw = row[j]
			}
			cells[j] = append(cells[j], domain.NewCell(raw))
		}
	}

	columns := make([]domain.Column, len(names))
	for j, name := range names {
		if cells[j] == nil {
			cells[j] = []domain.Cell{}
		}
		columns[j] = domain.Column{Name: name, Kind: domain.InferKind(cells[j]), Cells: cells[j]}
	}
	return domain.NewTable(columns)
}

func headerNames(row []string) []string {
	// trailing blank header cells carry no column
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}

	names := make([]string, end)
	seen := make(map[string]int, end)
	for j := 0; j < end; j++ {
		name := strings.TrimSpace(row[j])
		if name == "" {
			name = "column_" + strconv.Itoa(j+1)
		}
		if seen[name] > 0 {
			base := name
			for n := seen[base] + 1; ; n++ {
				name = base + "_" + strconv.Itoa(n)
				if seen[name] == 0 {
					seen[base] = n
					break
				}
			}
		}
		seen[name]++
		names[j] = name
	}
	return names
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
