package services

import "errors"

// Screener service errors
var (
	// ErrNoTable is returned before the first successful load.
	ErrNoTable = errors.New("no table loaded")

	// ErrUnknownField is returned when a name is neither a logical field
	// nor a column of the loaded table.
	ErrUnknownField = errors.New("unknown field or column")

	// ErrNoNumericValues is returned when a range is asked for a column
	// without any numeric value.
	ErrNoNumericValues = errors.New("column has no numeric values")

	// ErrUnsupportedFormat is returned for export formats other than CSV
	// and XLSX.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
