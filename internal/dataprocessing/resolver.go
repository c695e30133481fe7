package dataprocessing

import (
	"strings"

	"github.com/han30230/Stock-filtering/pkg/contracts/domain"
)

// FieldAliases lists the header names that may carry a logical field,
// highest priority first.
type FieldAliases struct {
	Field      domain.LogicalField
	Candidates []string
}

// DefaultAliases are the header variants found in the 52-week-high workbook.
var DefaultAliases = []FieldAliases{
	{Field: domain.FieldPrice, Candidates: []string{"종가", "현재가"}},
	{Field: domain.FieldEPS, Candidates: []string{"EPS", "EPS (TTM)", "주당순이익(TTM)"}},
	{Field: domain.FieldPEG, Candidates: []string{"PEG (PER/EPS)", "PEG"}},
	{Field: domain.FieldPER, Candidates: []string{"PER"}},
	{Field: domain.FieldIndustry, Candidates: []string{"업종"}},
	{Field: domain.FieldQ1Revenue, Candidates: []string{"1분기 총매출"}},
	{Field: domain.FieldQ2Revenue, Candidates: []string{"2분기 총매출"}},
	{Field: domain.FieldQ3Revenue, Candidates: []string{"3분기 총매출"}},
	{Field: domain.FieldQ1Profit, Candidates: []string{"1분기 순이익"}},
	{Field: domain.FieldQ2Profit, Candidates: []string{"2분기 순이익"}},
}

// ResolveColumns binds each logical field to the first candidate header that
// exists in names. Fields without a match are left unbound; absence is a
// normal outcome, never an error.
func ResolveColumns(names []string, aliases []FieldAliases) domain.Bindings {
	present := make(map[string]string, len(names))
	for _, n := range names {
		key := strings.TrimSpace(n)
		if _, dup := present[key]; !dup {
			present[key] = n
		}
	}

	bindings := make(domain.Bindings, len(aliases))
	for _, a := range aliases {
		for _, candidate := range a.Candidates {
			if actual, ok := present[strings.TrimSpace(candidate)]; ok {
				bindings[a.Field] = actual
				break
			}
		}
	}
	return bindings
}

// ResolveTable is ResolveColumns over a table's headers using DefaultAliases.
func ResolveTable(t *domain.Table) domain.Bindings {
	return ResolveColumns(t.ColumnNames(), DefaultAliases)
}
