package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// Cell is a single spreadsheet value as loaded, before any interpretation.
type Cell struct {
	Raw     string `json:"raw"`
	Missing bool   `json:"missing,omitempty"`
}

// MissingCell returns the missing marker.
func MissingCell() Cell {
	return Cell{Missing: true}
}

// NewCell builds a cell from raw text. Blank text is treated as missing.
func NewCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return MissingCell()
	}
	return Cell{Raw: trimmed}
}

// NumberCell builds a cell holding a float that round-trips through Coerce.
func NumberCell(v float64) Cell {
	return Cell{Raw: strconv.FormatFloat(v, 'f', -1, 64)}
}

// Number is the result of numeric coercion. Valid=false means missing.
type Number struct {
	Value float64
	Valid bool
}

// Missing is the tagged missing number.
var Missing = Number{}

// Num wraps a valid float.
func Num(v float64) Number {
	return Number{Value: v, Valid: true}
}

// plainNumber accepts optionally signed integers and decimals with an optional
// exponent. Currency symbols, thousands separators, percent signs, NaN and Inf
// all fail to match.
var plainNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Coerce interprets the cell as a number. Anything that is not a plain integer
// or decimal becomes Missing, so malformed values never pass a range check.
func Coerce(c Cell) Number {
	if c.Missing {
		return Missing
	}
	return CoerceString(c.Raw)
}

// CoerceString applies the Coerce rules to raw text.
func CoerceString(raw string) Number {
	s := strings.TrimSpace(raw)
	if !plainNumber.MatchString(s) {
		return Missing
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// out of float64 range
		return Missing
	}
	return Num(v)
}
