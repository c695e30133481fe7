package dataprocessing

import (
	"math"
	"time"

	"github.com/han30230/Stock-filtering/pkg/contracts/domain"
)

// Step skip reasons reported in domain.StepReport.
const (
	SkipFiltersDisabled = "filters disabled"
	SkipUnbound         = "column not present"
	SkipNoNumericValues = "no numeric values"
	SkipNotRequested    = "not requested"
)

// Step names in execution order.
const (
	StepIndustry          = "industry"
	StepPER               = "per_range"
	StepMinPrice          = "min_price"
	StepPositiveEPS       = "positive_eps"
	StepPrice             = "price_range"
	StepEPS               = "eps_range"
	StepPEG               = "peg_range"
	StepDeriveGrowth      = "derive_growth"
	StepRevenueGrowthQ1Q2 = "revenue_growth_q1_q2_range"
	StepRevenueGrowthQ2Q3 = "revenue_growth_q2_q3_range"
	StepProfitGrowthQ1Q2  = "profit_growth_q1_q2_range"
)

// rangeDefaults seeds a missing bound pair from the observed column range.
// A nil end means "use the observed value". Optional ranges are not applied
// at all without explicit bounds.
type rangeDefaults struct {
	lower    *float64
	upper    *float64
	optional bool
}

func fixed(v float64) *float64 { return &v }

var (
	// price slider starts at zero, EPS slider at one cent
	priceDefaults = rangeDefaults{lower: fixed(0)}
	epsDefaults   = rangeDefaults{lower: fixed(0.01)}
	observed      = rangeDefaults{}
	onRequest     = rangeDefaults{optional: true}
)

// Screen runs the filter-and-derive pipeline over a working copy of t.
// It never mutates t and never fails: unbound fields and degenerate columns
// turn into skipped steps.
func Screen(t *domain.Table, b domain.Bindings, p domain.ScreenParams) domain.ScreenResult {
	start := time.Now()
	r := &run{
		table:    t.Clone(),
		bindings: b,
		enabled:  p.FiltersEnabled,
	}

	r.category(StepIndustry, domain.FieldIndustry, p.Industries)
	r.rangeStep(StepPER, b.Name(domain.FieldPER), p.PER, observed)

	if p.MinPrice != nil {
		r.apply(StepMinPrice, b.Name(domain.FieldPrice), RangeSpec{
			Column: b.Name(domain.FieldPrice),
			Lower:  *p.MinPrice,
			Upper:  math.Inf(1),
		})
	} else {
		r.skip(StepMinPrice, b.Name(domain.FieldPrice), SkipNotRequested)
	}

	if p.RequirePositiveEPS {
		r.apply(StepPositiveEPS, b.Name(domain.FieldEPS), RangeSpec{
			Column:         b.Name(domain.FieldEPS),
			Lower:          0,
			Upper:          math.Inf(1),
			LowerExclusive: true,
		})
	} else {
		r.skip(StepPositiveEPS, b.Name(domain.FieldEPS), SkipNotRequested)
	}

	r.rangeStep(StepPrice, b.Name(domain.FieldPrice), p.Price, priceDefaults)
	r.rangeStep(StepEPS, b.Name(domain.FieldEPS), p.EPS, epsDefaults)
	r.rangeStep(StepPEG, b.Name(domain.FieldPEG), p.PEG, onRequest)

	before := r.table.Len()
	derivedTable, derived := DeriveGrowthColumns(r.table, b)
	r.table = derivedTable
	r.steps = append(r.steps, domain.StepReport{
		Name:       StepDeriveGrowth,
		Applied:    len(derived) > 0,
		SkipReason: skipIf(len(derived) == 0, SkipUnbound),
		RowsBefore: before,
		RowsAfter:  r.table.Len(),
	})

	r.rangeStep(StepRevenueGrowthQ1Q2, derivedName(derived, ColRevenueGrowthQ1Q2), p.RevenueGrowthQ1Q2, onRequest)
	r.rangeStep(StepRevenueGrowthQ2Q3, derivedName(derived, ColRevenueGrowthQ2Q3), p.RevenueGrowthQ2Q3, onRequest)
	r.rangeStep(StepProfitGrowthQ1Q2, derivedName(derived, ColProfitGrowthQ1Q2), p.ProfitGrowthQ1Q2, onRequest)

	return domain.ScreenResult{
		Table:          r.table,
		OriginalRows:   t.Len(),
		FilteredRows:   r.table.Len(),
		Bindings:       b,
		DerivedColumns: derived,
		Steps:          r.steps,
		Duration:       time.Since(start),
	}
}

// run carries the working table through one Screen call.
type run struct {
	table    *domain.Table
	bindings domain.Bindings
	enabled  bool
	steps    []domain.StepReport
}

func (r *run) skip(name, column, reason string) {
	r.steps = append(r.steps, domain.StepReport{
		Name:       name,
		Column:     column,
		SkipReason: reason,
		RowsBefore: r.table.Len(),
		RowsAfter:  r.table.Len(),
	})
}

func (r *run) apply(name, column string, spec FilterSpec) {
	if !r.enabled {
		r.skip(name, column, SkipFiltersDisabled)
		return
	}
	if !r.table.HasColumn(column) {
		r.skip(name, column, SkipUnbound)
		return
	}

	report := domain.StepReport{
		Name:       name,
		Column:     column,
		Applied:    true,
		RowsBefore: r.table.Len(),
	}
	if rs, ok := spec.(RangeSpec); ok {
		report.Lower, report.Upper = rs.Lower, finite(rs.Upper)
	}
	r.table = spec.Apply(r.table)
	report.RowsAfter = r.table.Len()
	r.steps = append(r.steps, report)
}

func (r *run) category(name string, field domain.LogicalField, selected []string) {
	column := r.bindings.Name(field)
	if !r.enabled || !r.table.HasColumn(column) {
		r.apply(name, column, nil)
		return
	}
	allowed := selected
	if allowed == nil {
		allowed = Categories(r.table, column)
	}
	r.apply(name, column, CategorySpec{Column: column, Allowed: allowed})
}

// rangeStep applies an inclusive range filter, seeding unset bounds from the
// current working table unless the range is optional. A column with no
// numeric value has no range, so the step is skipped instead of emptying the
// table.
func (r *run) rangeStep(name, column string, bounds *domain.Bounds, defaults rangeDefaults) {
	if !r.enabled || !r.table.HasColumn(column) {
		r.apply(name, column, nil)
		return
	}
	if bounds == nil && defaults.optional {
		r.skip(name, column, SkipNotRequested)
		return
	}

	rng, ok := NumericRange(r.table, column)
	if !ok {
		r.skip(name, column, SkipNoNumericValues)
		return
	}

	var lower, upper float64
	if bounds != nil {
		lower, upper = bounds.Min, bounds.Max
	} else {
		lower, upper = rng.Min, rng.Max
		if defaults.lower != nil {
			lower = *defaults.lower
		}
		if defaults.upper != nil {
			upper = *defaults.upper
		}
	}
	r.apply(name, column, RangeSpec{Column: column, Lower: lower, Upper: upper})
}

func derivedName(derived []string, column string) string {
	for _, d := range derived {
		if d == column {
			return column
		}
	}
	return ""
}

func skipIf(cond bool, reason string) string {
	if cond {
		return reason
	}
	return ""
}

// finite keeps +Inf out of JSON step reports.
func finite(v float64) float64 {
	if math.IsInf(v, 0) {
		return 0
	}
	return v
}
