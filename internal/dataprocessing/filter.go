package dataprocessing

import (
	"fmt"

	"github.com/han30230/Stock-filtering/pkg/contracts/domain"
)

// FilterSpec is one row-keep predicate over a table. Apply never mutates its
// input and never removes rows it was not asked to remove, so a sequence of
// specs can only shrink a table.
type FilterSpec interface {
	Name() string
	Apply(t *domain.Table) *domain.Table
}

// CategorySpec keeps rows whose raw value is in Allowed.
type CategorySpec struct {
	Column  string
	Allowed []string
}

// Name implements FilterSpec.
func (s CategorySpec) Name() string {
	return fmt.Sprintf("category(%s)", s.Column)
}

// Apply implements FilterSpec.
func (s CategorySpec) Apply(t *domain.Table) *domain.Table {
	return ApplyCategoryFilter(t, s.Column, s.Allowed)
}

// RangeSpec keeps rows whose coerced value lies in [Lower, Upper]. With
// LowerExclusive the lower end becomes strict.
type RangeSpec struct {
	Column         string
	Lower          float64
	Upper          float64
	LowerExclusive bool
}

// Name implements FilterSpec.
func (s RangeSpec) Name() string {
	open := "["
	if s.LowerExclusive {
		open = "("
	}
	return fmt.Sprintf("range(%s %s%g, %g])", s.Column, open, s.Lower, s.Upper)
}

// Apply implements FilterSpec.
func (s RangeSpec) Apply(t *domain.Table) *domain.Table {
	if s.LowerExclusive {
		return keepNumeric(t, s.Column, func(v float64) bool {
			return v > s.Lower && v <= s.Upper
		})
	}
	return ApplyRangeFilter(t, s.Column, s.Lower, s.Upper)
}

// ApplyCategoryFilter keeps rows whose value in column is one of allowed.
// Missing cells never match. An unbound column returns t unchanged.
func ApplyCategoryFilter(t *domain.Table, column string, allowed []string) *domain.Table {
	col, ok := t.Column(column)
	if !ok {
		return t
	}

	set := make(map[string]struct{}, len(allowed))
	for _, v := range allowed {
		set[v] = struct{}{}
	}

	keep := make([]int, 0, len(col.Cells))
	for i, c := range col.Cells {
		if c.Missing {
			continue
		}
		if _, ok := set[c.Raw]; ok {
			keep = append(keep, i)
		}
	}
	return t.Select(keep)
}

// ApplyRangeFilter keeps rows with lower <= value <= upper after numeric
// coercion. Values that fail coercion are missing and are dropped. An unbound
// column returns t unchanged.
func ApplyRangeFilter(t *domain.Table, column string, lower, upper float64) *domain.Table {
	return keepNumeric(t, column, func(v float64) bool {
		return v >= lower && v <= upper
	})
}

func keepNumeric(t *domain.Table, column string, pred func(float64) bool) *domain.Table {
	col, ok := t.Column(column)
	if !ok {
		return t
	}

	keep := make([]int, 0, len(col.Cells))
	for i, c := range col.Cells {
		n := domain.Coerce(c)
		if n.Valid && pred(n.Value) {
			keep = append(keep, i)
		}
	}
	return t.Select(keep)
}

// ApplyFilters folds specs over t from left to right.
func ApplyFilters(t *domain.Table, specs ...FilterSpec) *domain.Table {
	cur := t
	for _, s := range specs {
		cur = s.Apply(cur)
	}
	return cur
}
