package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/han30230/Stock-filtering/pkg/contracts/domain"
)

func highsTable(t *testing.T) *domain.Table {
	return table(t, []string{"종가", "PER", "EPS"},
		[]string{"12", "15", "2.0"},
		[]string{"8", "10", "-1.0"},
		[]string{"20", "30", "3.0"},
	)
}

func stepByName(t *testing.T, res domain.ScreenResult, name string) domain.StepReport {
	t.Helper()
	for _, s := range res.Steps {
		if s.Name == name {
			return s
		}
	}
	require.Failf(t, "step not found", "step %q", name)
	return domain.StepReport{}
}

func TestScreen_PriceFloorAndPositiveEPS(t *testing.T) {
	tbl := highsTable(t)

	res := Screen(tbl, ResolveTable(tbl), domain.DefaultScreenParams())

	assert.Equal(t, 3, res.OriginalRows)
	assert.Equal(t, 2, res.FilteredRows)
	assert.Equal(t, []string{"12", "20"}, column(t, res.Table, "종가"))
	assert.Equal(t, []string{"15", "30"}, column(t, res.Table, "PER"))
	assert.Equal(t, []string{"2.0", "3.0"}, column(t, res.Table, "EPS"))

	floor := stepByName(t, res, StepMinPrice)
	assert.True(t, floor.Applied)
	assert.Equal(t, 3, floor.RowsBefore)
	assert.Equal(t, 2, floor.RowsAfter)

	eps := stepByName(t, res, StepPositiveEPS)
	assert.True(t, eps.Applied)
	assert.Equal(t, 2, eps.RowsAfter)

	assert.Equal(t, SkipUnbound, stepByName(t, res, StepIndustry).SkipReason)
	assert.Equal(t, SkipUnbound, stepByName(t, res, StepPEG).SkipReason)
	assert.Equal(t, SkipUnbound, stepByName(t, res, StepDeriveGrowth).SkipReason)

	assert.Equal(t, 3, tbl.Len(), "input table must not change")
}

func TestScreen_SameRowsAsManualFold(t *testing.T) {
	tbl := highsTable(t)

	manual := ApplyFilters(tbl,
		RangeSpec{Column: "종가", Lower: 10, Upper: 1e18},
		RangeSpec{Column: "EPS", Lower: 0, Upper: 1e18, LowerExclusive: true},
	)
	res := Screen(tbl, ResolveTable(tbl), domain.DefaultScreenParams())

	assert.Equal(t, manual.Rows(), res.Table.Rows())
}

func TestScreen_FiltersDisabled(t *testing.T) {
	tbl := table(t, []string{"종가", "EPS", "1분기 총매출", "2분기 총매출"},
		[]string{"1", "-1", "100", "120"},
		[]string{"2", "x", "0", "5"},
	)
	p := domain.DefaultScreenParams()
	p.FiltersEnabled = false

	res := Screen(tbl, ResolveTable(tbl), p)

	assert.Equal(t, 2, res.OriginalRows)
	assert.Equal(t, 2, res.FilteredRows)
	assert.Equal(t, []string{ColRevenueGrowthQ1Q2}, res.DerivedColumns)
	assert.NotSame(t, tbl, res.Table)
	for _, s := range res.Steps {
		if s.Name == StepDeriveGrowth {
			continue
		}
		assert.False(t, s.Applied, s.Name)
		assert.Equal(t, SkipFiltersDisabled, s.SkipReason, s.Name)
	}
}

func TestScreen_ExplicitBounds(t *testing.T) {
	tbl := table(t, []string{"종가", "PER", "EPS", "PEG (PER/EPS)", "업종"},
		[]string{"15", "8", "1", "0.5", "Tech"},
		[]string{"25", "12", "2", "1.5", "Tech"},
		[]string{"35", "20", "3", "2.5", "Energy"},
		[]string{"45", "40", "4", "", "Energy"},
	)

	tests := []struct {
		name   string
		modify func(p *domain.ScreenParams)
		expect []string
	}{
		{
			name:   "defaults keep every row",
			modify: func(p *domain.ScreenParams) {},
			expect: []string{"15", "25", "35", "45"},
		},
		{
			name:   "industry selection",
			modify: func(p *domain.ScreenParams) { p.Industries = []string{"Energy"} },
			expect: []string{"35", "45"},
		},
		{
			name:   "per range",
			modify: func(p *domain.ScreenParams) { p.PER = bounds(10, 20) },
			expect: []string{"25", "35"},
		},
		{
			name:   "price range",
			modify: func(p *domain.ScreenParams) { p.Price = bounds(20, 30) },
			expect: []string{"25"},
		},
		{
			name:   "eps range",
			modify: func(p *domain.ScreenParams) { p.EPS = bounds(2, 3) },
			expect: []string{"25", "35"},
		},
		{
			name:   "peg range drops missing peg",
			modify: func(p *domain.ScreenParams) { p.PEG = bounds(0, 3) },
			expect: []string{"15", "25", "35"},
		},
		{
			name:   "empty industry selection keeps nothing",
			modify: func(p *domain.ScreenParams) { p.Industries = []string{} },
			expect: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := domain.DefaultScreenParams()
			tt.modify(&p)

			res := Screen(tbl, ResolveTable(tbl), p)

			assert.Equal(t, tt.expect, column(t, res.Table, "종가"))
			assert.Equal(t, 4, res.OriginalRows)
			assert.Equal(t, len(tt.expect), res.FilteredRows)
		})
	}
}

func TestScreen_GrowthFilters(t *testing.T) {
	tbl := table(t, []string{"종가", "EPS", "1분기 총매출", "2분기 총매출", "1분기 순이익", "2분기 순이익"},
		[]string{"11", "1", "100", "150", "", ""},
		[]string{"12", "1", "100", "90", "", ""},
		[]string{"13", "1", "0", "90", "", ""},
	)
	p := domain.DefaultScreenParams()
	p.RevenueGrowthQ1Q2 = bounds(0, 100)
	p.ProfitGrowthQ1Q2 = bounds(0, 10)

	res := Screen(tbl, ResolveTable(tbl), p)

	assert.Equal(t, []string{"11"}, column(t, res.Table, "종가"))
	assert.Contains(t, res.DerivedColumns, ColProfitGrowthQ1Q2)

	profit := stepByName(t, res, StepProfitGrowthQ1Q2)
	assert.False(t, profit.Applied)
	assert.Equal(t, SkipNoNumericValues, profit.SkipReason)

	q2q3 := stepByName(t, res, StepRevenueGrowthQ2Q3)
	assert.Equal(t, SkipUnbound, q2q3.SkipReason)
}

func TestScreen_OptionalRangesNeedBounds(t *testing.T) {
	tbl := table(t, []string{"종가", "EPS", "PEG", "1분기 총매출", "2분기 총매출"},
		[]string{"11", "1", "", "100", "150"},
		[]string{"12", "1", "1.5", "0", "90"},
	)

	res := Screen(tbl, ResolveTable(tbl), domain.DefaultScreenParams())

	assert.Equal(t, 2, res.FilteredRows, "missing PEG and growth values survive defaults")
	assert.Equal(t, SkipNotRequested, stepByName(t, res, StepPEG).SkipReason)
	assert.Equal(t, SkipNotRequested, stepByName(t, res, StepRevenueGrowthQ1Q2).SkipReason)
}

func TestScreen_StepOrder(t *testing.T) {
	tbl := highsTable(t)

	res := Screen(tbl, ResolveTable(tbl), domain.DefaultScreenParams())

	var names []string
	for _, s := range res.Steps {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		StepIndustry, StepPER, StepMinPrice, StepPositiveEPS, StepPrice, StepEPS, StepPEG,
		StepDeriveGrowth, StepRevenueGrowthQ1Q2, StepRevenueGrowthQ2Q3, StepProfitGrowthQ1Q2,
	}, names)

	for i := 1; i < len(res.Steps); i++ {
		assert.LessOrEqual(t, res.Steps[i].RowsAfter, res.Steps[i-1].RowsAfter)
	}
}

func TestScreen_NoMinPrice(t *testing.T) {
	tbl := highsTable(t)
	p := domain.DefaultScreenParams()
	p.MinPrice = nil
	p.RequirePositiveEPS = false

	res := Screen(tbl, ResolveTable(tbl), p)

	assert.Equal(t, SkipNotRequested, stepByName(t, res, StepMinPrice).SkipReason)
	assert.Equal(t, SkipNotRequested, stepByName(t, res, StepPositiveEPS).SkipReason)
	// default EPS range starts at 0.01, so the loss-maker still goes
	assert.Equal(t, []string{"12", "20"}, column(t, res.Table, "종가"))
}
