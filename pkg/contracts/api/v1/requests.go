// Package api contains the JSON contracts of the screener API.
// Version v1 represents the current stable API version.
package api

import (
	"github.com/han30230/Stock-filtering/pkg/contracts/domain"
)

// MaxIndustries caps the industry selection of one request.
const MaxIndustries = 500

// MaxLimit caps the number of rows returned inline by a screen request.
const MaxLimit = 10000

// BoundsRequest is an inclusive numeric range. Both ends are required and
// Min must not exceed Max.
type BoundsRequest struct {
	Min *float64 `json:"min" validate:"required"`
	Max *float64 `json:"max" validate:"required"`
}

// ToBounds converts a validated request range. A nil receiver yields nil.
func (b *BoundsRequest) ToBounds() *domain.Bounds {
	if b == nil || b.Min == nil || b.Max == nil {
		return nil
	}
	return &domain.Bounds{Min: *b.Min, Max: *b.Max}
}

// NewBoundsRequest is a convenience constructor used by tests and the
// query-string parser.
func NewBoundsRequest(min, max float64) *BoundsRequest {
	return &BoundsRequest{Min: &min, Max: &max}
}

// ScreenRequest is the body of POST /api/screen and /api/screen/export.
// Omitted fields fall back to the server's configured defaults.
type ScreenRequest struct {
	FiltersEnabled     *bool    `json:"filters_enabled,omitempty"`
	Industries         []string `json:"industries,omitempty" validate:"omitempty,max=500,dive,required,max=200"`
	MinPrice           *float64 `json:"min_price,omitempty" validate:"omitempty,gte=0"`
	RequirePositiveEPS *bool    `json:"require_positive_eps,omitempty"`

	Price *BoundsRequest `json:"price,omitempty"`
	EPS   *BoundsRequest `json:"eps,omitempty"`
	PER   *BoundsRequest `json:"per,omitempty"`
	PEG   *BoundsRequest `json:"peg,omitempty"`

	RevenueGrowthQ1Q2 *BoundsRequest `json:"revenue_growth_q1_q2,omitempty"`
	RevenueGrowthQ2Q3 *BoundsRequest `json:"revenue_growth_q2_q3,omitempty"`
	ProfitGrowthQ1Q2  *BoundsRequest `json:"profit_growth_q1_q2,omitempty"`

	// Limit caps the rows returned inline; 0 uses the server default.
	Limit int `json:"limit,omitempty" validate:"gte=0,lte=10000"`
}

// ToParams overlays the request onto defaults.
func (r ScreenRequest) ToParams(defaults domain.ScreenParams) domain.ScreenParams {
	p := defaults
	if r.FiltersEnabled != nil {
		p.FiltersEnabled = *r.FiltersEnabled
	}
	if r.Industries != nil {
		p.Industries = append([]string(nil), r.Industries...)
	}
	if r.MinPrice != nil {
		v := *r.MinPrice
		p.MinPrice = &v
	}
	if r.RequirePositiveEPS != nil {
		p.RequirePositiveEPS = *r.RequirePositiveEPS
	}
	overlay := func(dst **domain.Bounds, src *BoundsRequest) {
		if b := src.ToBounds(); b != nil {
			*dst = b
		}
	}
	overlay(&p.Price, r.Price)
	overlay(&p.EPS, r.EPS)
	overlay(&p.PER, r.PER)
	overlay(&p.PEG, r.PEG)
	overlay(&p.RevenueGrowthQ1Q2, r.RevenueGrowthQ1Q2)
	overlay(&p.RevenueGrowthQ2Q3, r.RevenueGrowthQ2Q3)
	overlay(&p.ProfitGrowthQ1Q2, r.ProfitGrowthQ1Q2)
	return p
}

// ExportFormat names a download format.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// IsValid reports whether f is a supported export format.
func (f ExportFormat) IsValid() bool {
	return f == ExportCSV || f == ExportXLSX
}
