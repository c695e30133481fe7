package domain

// LogicalField names a concept independently of the header that carries it.
type LogicalField string

const (
	FieldPrice     LogicalField = "price"
	FieldEPS       LogicalField = "eps"
	FieldPEG       LogicalField = "peg"
	FieldPER       LogicalField = "per"
	FieldIndustry  LogicalField = "industry"
	FieldQ1Revenue LogicalField = "q1_revenue"
	FieldQ2Revenue LogicalField = "q2_revenue"
	FieldQ3Revenue LogicalField = "q3_revenue"
	FieldQ1Profit  LogicalField = "q1_profit"
	FieldQ2Profit  LogicalField = "q2_profit"
)

// LogicalFields lists every field in a stable order.
var LogicalFields = []LogicalField{
	FieldPrice,
	FieldEPS,
	FieldPEG,
	FieldPER,
	FieldIndustry,
	FieldQ1Revenue,
	FieldQ2Revenue,
	FieldQ3Revenue,
	FieldQ1Profit,
	FieldQ2Profit,
}

// IsValid reports whether f is one of the known logical fields.
func (f LogicalField) IsValid() bool {
	for _, known := range LogicalFields {
		if f == known {
			return true
		}
	}
	return false
}

// Bindings maps logical fields to physical column names. A field that is
// absent, or mapped to "", is unbound.
type Bindings map[LogicalField]string

// Column returns the bound column name and whether the field is bound.
func (b Bindings) Column(f LogicalField) (string, bool) {
	name, ok := b[f]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// Name returns the bound column name, or "" when unbound. Filters treat ""
// as a no-op column reference.
func (b Bindings) Name(f LogicalField) string {
	name, _ := b.Column(f)
	return name
}

// Bound returns the bound fields in LogicalFields order.
func (b Bindings) Bound() []LogicalField {
	var out []LogicalField
	for _, f := range LogicalFields {
		if _, ok := b.Column(f); ok {
			out = append(out, f)
		}
	}
	return out
}
