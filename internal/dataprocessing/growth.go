package dataprocessing

import (
	"math"

	"github.com/han30230/Stock-filtering/pkg/contracts/domain"
)

// Derived growth column headers.
const (
	ColRevenueGrowthQ1Q2 = "매출 성장률 1→2분기 (%)"
	ColRevenueGrowthQ2Q3 = "매출 성장률 2→3분기 (%)"
	ColProfitGrowthQ1Q2  = "순이익 성장률 1→2분기 (%)"
)

// GrowthDef describes one derived percentage-change column.
type GrowthDef struct {
	Column   string
	Previous domain.LogicalField
	Current  domain.LogicalField
}

// GrowthColumns are derived in this order on every run.
var GrowthColumns = []GrowthDef{
	{Column: ColRevenueGrowthQ1Q2, Previous: domain.FieldQ1Revenue, Current: domain.FieldQ2Revenue},
	{Column: ColRevenueGrowthQ2Q3, Previous: domain.FieldQ2Revenue, Current: domain.FieldQ3Revenue},
	{Column: ColProfitGrowthQ1Q2, Previous: domain.FieldQ1Profit, Current: domain.FieldQ2Profit},
}

// Growth returns the signed percentage change from previous to current.
// Unparseable inputs and a zero previous value yield Missing; the denominator
// is |previous| so a shrinking loss reads as positive growth.
func Growth(current, previous domain.Cell) domain.Number {
	cur := domain.Coerce(current)
	prev := domain.Coerce(previous)
	if !cur.Valid || !prev.Valid || prev.Value == 0 {
		return domain.Missing
	}
	g := (cur.Value - prev.Value) / math.Abs(prev.Value) * 100
	if math.IsInf(g, 0) || math.IsNaN(g) {
		return domain.Missing
	}
	return domain.Num(g)
}

// DeriveGrowthColumns adds every growth column whose two source fields are
// bound. It returns the new table and the names of the columns it added.
// Source columns are not modified.
func DeriveGrowthColumns(t *domain.Table, b domain.Bindings) (*domain.Table, []string) {
	var added []string
	cur := t
	for _, def := range GrowthColumns {
		next, ok := deriveGrowth(cur, b, def)
		if !ok {
			continue
		}
		cur = next
		added = append(added, def.Column)
	}
	return cur, added
}

func deriveGrowth(t *domain.Table, b domain.Bindings, def GrowthDef) (*domain.Table, bool) {
	prevCol, ok := t.Column(b.Name(def.Previous))
	if !ok {
		return t, false
	}
	curCol, ok := t.Column(b.Name(def.Current))
	if !ok {
		return t, false
	}

	out := make([]domain.Cell, t.Len())
	for i := range out {
		g := Growth(curCol.Cells[i], prevCol.Cells[i])
		if g.Valid {
			out[i] = domain.NumberCell(g.Value)
		} else {
			out[i] = domain.MissingCell()
		}
	}

	next, err := t.WithColumn(domain.Column{Name: def.Column, Kind: domain.KindNumeric, Cells: out})
	if err != nil {
		// lengths always match; keep the table as is rather than fail the run
		return t, false
	}
	return next, true
}
