package exporter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/han30230/Stock-filtering/pkg/contracts/domain"
)

// ErrUnsupportedFormat is returned for export formats other than CSV/XLSX.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format names an export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename builds a timestamped download name such as
// 52week_high_filtered_20240102-150405.csv.
func Filename(prefix string, f Format, at time.Time) string {
	if prefix == "" {
		prefix = "52week_high_filtered"
	}
	return fmt.Sprintf("%s_%s.%s", prefix, at.Format("20060102-150405"), f)
}

// Write writes t in format f.
func Write(w io.Writer, f Format, t *domain.Table) error {
	switch f {
	case FormatCSV:
		return NewCSVWriter().WriteTable(w, t)
	case FormatXLSX:
		return NewXLSXWriter().WriteTable(w, t)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// ExportFile writes t to path, choosing the format from the extension and
// creating parent directories. A partially written file is removed.
func ExportFile(path string, t *domain.Table) (err error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	return Write(file, f, t)
}
