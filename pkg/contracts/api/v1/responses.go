package api

import (
	"time"

	"github.com/han30230/Stock-filtering/pkg/contracts/domain"
)

// Response is the envelope of every successful JSON answer.
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// OK wraps data in a success envelope.
func OK(data interface{}) Response {
	return Response{Status: "success", Data: data}
}

// ScreenResponse is the answer to POST /api/screen.
type ScreenResponse struct {
	OriginalRows   int                  `json:"original_rows"`
	FilteredRows   int                  `json:"filtered_rows"`
	Columns        []string             `json:"columns"`
	Rows           []map[string]*string `json:"rows"`
	Truncated      bool                 `json:"truncated"`
	Bindings       domain.Bindings      `json:"bindings"`
	DerivedColumns []string             `json:"derived_columns,omitempty"`
	Steps          []domain.StepReport  `json:"steps"`
	DurationMS     float64              `json:"duration_ms"`
}

// NewScreenResponse flattens a result, returning at most limit rows.
// Missing cells become JSON null.
func NewScreenResponse(res domain.ScreenResult, limit int) ScreenResponse {
	resp := ScreenResponse{
		OriginalRows:   res.OriginalRows,
		FilteredRows:   res.FilteredRows,
		Bindings:       res.Bindings,
		DerivedColumns: res.DerivedColumns,
		Steps:          res.Steps,
		DurationMS:     float64(res.Duration.Microseconds()) / 1000,
		Columns:        []string{},
		Rows:           []map[string]*string{},
	}
	if res.Table == nil {
		return resp
	}
	resp.Columns = res.Table.ColumnNames()

	n := res.Table.Len()
	if limit > 0 && n > limit {
		n = limit
		resp.Truncated = true
	}
	resp.Rows = make([]map[string]*string, 0, n)
	for i := 0; i < n; i++ {
		row := make(map[string]*string, len(resp.Columns))
		for name, cell := range res.Table.Row(i) {
			if cell.Missing {
				row[name] = nil
				continue
			}
			raw := cell.Raw
			row[name] = &raw
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp
}

// ColumnInfo describes one column of the loaded table.
type ColumnInfo struct {
	Name    string            `json:"name"`
	Kind    domain.ColumnKind `json:"kind"`
	Missing int               `json:"missing"`
}

// SchemaResponse is the answer to GET /api/screen/schema. Ranges are keyed
// by logical field and only present for bound fields with numeric values.
type SchemaResponse struct {
	Source     string                                     `json:"source"`
	LoadedAt   time.Time                                  `json:"loaded_at"`
	Rows       int                                        `json:"rows"`
	Columns    []ColumnInfo                               `json:"columns"`
	Bindings   domain.Bindings                            `json:"bindings"`
	Ranges     map[domain.LogicalField]domain.ColumnRange `json:"ranges"`
	Industries []string                                   `json:"industries"`
	Defaults   domain.ScreenParams                        `json:"defaults"`
}

// ReloadResponse is the answer to POST /api/screen/reload.
type ReloadResponse struct {
	Source   string          `json:"source"`
	Rows     int             `json:"rows"`
	Columns  int             `json:"columns"`
	LoadedAt time.Time       `json:"loaded_at"`
	Bindings domain.Bindings `json:"bindings"`
}
