package domain

import "time"

// Bounds is an inclusive [Min, Max] pair chosen by the caller. The pipeline
// never reorders it; ordering is validated at the request boundary.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ScreenParams is the full parameter surface of one screen run.
// Nil bounds fall back to defaults seeded from the observed data.
type ScreenParams struct {
	FiltersEnabled bool `json:"filters_enabled"`

	// Industries restricts the industry column. Nil selects every observed
	// industry; rows without an industry are excluded either way.
	Industries []string `json:"industries,omitempty"`

	// MinPrice is the baseline price floor applied before the price range.
	MinPrice *float64 `json:"min_price,omitempty"`
	// RequirePositiveEPS drops loss-making companies (EPS <= 0).
	RequirePositiveEPS bool `json:"require_positive_eps"`

	Price *Bounds `json:"price,omitempty"`
	EPS   *Bounds `json:"eps,omitempty"`
	PER   *Bounds `json:"per,omitempty"`
	PEG   *Bounds `json:"peg,omitempty"`

	RevenueGrowthQ1Q2 *Bounds `json:"revenue_growth_q1_q2,omitempty"`
	RevenueGrowthQ2Q3 *Bounds `json:"revenue_growth_q2_q3,omitempty"`
	ProfitGrowthQ1Q2  *Bounds `json:"profit_growth_q1_q2,omitempty"`
}

// DefaultMinPrice is the price floor used when none is configured.
const DefaultMinPrice = 10.0

// DefaultScreenParams mirrors the dashboard's initial state: filters on,
// $10 price floor, profitable companies only, every other bound seeded.
func DefaultScreenParams() ScreenParams {
	minPrice := DefaultMinPrice
	return ScreenParams{
		FiltersEnabled:     true,
		MinPrice:           &minPrice,
		RequirePositiveEPS: true,
	}
}

// StepReport describes what a single pipeline step did.
type StepReport struct {
	Name       string  `json:"name"`
	Column     string  `json:"column,omitempty"`
	Applied    bool    `json:"applied"`
	SkipReason string  `json:"skip_reason,omitempty"`
	Lower      float64 `json:"lower,omitempty"`
	Upper      float64 `json:"upper,omitempty"`
	RowsBefore int     `json:"rows_before"`
	RowsAfter  int     `json:"rows_after"`
}

// ScreenResult is what the presentation layer receives.
type ScreenResult struct {
	Table          *Table        `json:"-"`
	OriginalRows   int           `json:"original_rows"`
	FilteredRows   int           `json:"filtered_rows"`
	Bindings       Bindings      `json:"bindings"`
	DerivedColumns []string      `json:"derived_columns,omitempty"`
	Steps          []StepReport  `json:"steps"`
	Duration       time.Duration `json:"-"`
}

// ColumnRange summarises the numeric values of one column, ignoring missing.
type ColumnRange struct {
	Column  string  `json:"column"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	Count   int     `json:"count"`
	Missing int     `json:"missing"`
}
