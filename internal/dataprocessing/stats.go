package dataprocessing

import (
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/han30230/Stock-filtering/pkg/contracts/domain"
)

// NumericValues returns the coerced values of a column, skipping missing,
// together with the number of missing cells.
func NumericValues(t *domain.Table, column string) ([]float64, int) {
	col, ok := t.Column(column)
	if !ok {
		return nil, 0
	}
	values := make([]float64, 0, len(col.Cells))
	missing := 0
	for _, c := range col.Cells {
		n := domain.Coerce(c)
		if !n.Valid {
			missing++
			continue
		}
		values = append(values, n.Value)
	}
	return values, missing
}

// NumericRange summarises a column's numeric values. The second result is
// false when the column is unbound or holds no numeric value at all, in which
// case no default range exists for it.
func NumericRange(t *domain.Table, column string) (domain.ColumnRange, bool) {
	values, missing := NumericValues(t, column)
	if len(values) == 0 {
		return domain.ColumnRange{}, false
	}

	data := stats.Float64Data(values)
	minV, err := data.Min()
	if err != nil {
		return domain.ColumnRange{}, false
	}
	maxV, err := data.Max()
	if err != nil {
		return domain.ColumnRange{}, false
	}
	mean, _ := data.Mean()
	median, _ := data.Median()

	return domain.ColumnRange{
		Column:  column,
		Min:     minV,
		Max:     maxV,
		Mean:    mean,
		Median:  median,
		Count:   len(values),
		Missing: missing,
	}, true
}

// Categories returns the sorted distinct non-missing raw values of a column.
func Categories(t *domain.Table, column string) []string {
	col, ok := t.Column(column)
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, c := range col.Cells {
		if c.Missing {
			continue
		}
		if _, dup := seen[c.Raw]; dup {
			continue
		}
		seen[c.Raw] = struct{}{}
		out = append(out, c.Raw)
	}
	sort.Strings(out)
	return out
}
