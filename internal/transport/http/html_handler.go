package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	apierrors "github.com/han30230/Stock-filtering/internal/errors"
	"github.com/han30230/Stock-filtering/internal/middleware"
	"github.com/han30230/Stock-filtering/pkg/contracts"
	api "github.com/han30230/Stock-filtering/pkg/contracts/api/v1"
	"github.com/han30230/Stock-filtering/pkg/contracts/domain"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// rangeInput is one min/max pair of the sidebar form.
type rangeInput struct {
	Label   string
	Prefix  string
	Field   domain.LogicalField
	MinHint string
	MaxHint string
}

var dashboardRanges = []rangeInput{
	{Label: "PER 범위", Prefix: "per", Field: domain.FieldPER},
	{Label: "주가 범위 (달러)", Prefix: "price", Field: domain.FieldPrice},
	{Label: "EPS 범위", Prefix: "eps", Field: domain.FieldEPS},
	{Label: "PEG 범위", Prefix: "peg"},
	{Label: "매출 성장률 1→2분기 (%)", Prefix: "rev12"},
	{Label: "매출 성장률 2→3분기 (%)", Prefix: "rev23"},
	{Label: "순이익 성장률 1→2분기 (%)", Prefix: "profit12"},
}

// dashboardView is the template model.
type dashboardView struct {
	Title           string
	Version         string
	Error           string
	FiltersEnabled  bool
	RequireEPS      bool
	DefaultMinPrice string
	Schema          api.SchemaResponse
	Ranges          []rangeInput
	Result          *api.ScreenResponse

	query    url.Values
	selected map[string]bool
}

// Value echoes a submitted form value.
func (v *dashboardView) Value(key string) string {
	return v.query.Get(key)
}

// Selected reports whether an industry box is checked. With no industry
// submitted every box is checked, matching the default of all industries.
func (v *dashboardView) Selected(industry string) bool {
	if v.selected == nil {
		return true
	}
	return v.selected[industry]
}

// DashboardHandler renders the server-side HTML view of a screen.
type DashboardHandler struct {
	service     ScreenerService
	validator   *middleware.Validator
	logger      *slog.Logger
	previewRows int
}

// NewDashboardHandler creates the dashboard handler
func NewDashboardHandler(service ScreenerService, validator *middleware.Validator, logger *slog.Logger, previewRows int) *DashboardHandler {
	return &DashboardHandler{
		service:     service,
		validator:   validator,
		logger:      logger.With(slog.String("component", "dashboard_handler")),
		previewRows: previewRows,
	}
}

// ServeHTTP handles GET / with the filter parameters in the query string.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	defaults := h.service.Defaults()
	view := &dashboardView{
		Title:          contracts.AppName,
		Version:        contracts.GetVersionString(),
		FiltersEnabled: defaults.FiltersEnabled,
		RequireEPS:     defaults.RequirePositiveEPS,
		query:          q,
	}
	if defaults.MinPrice != nil {
		view.DefaultMinPrice = strconv.FormatFloat(*defaults.MinPrice, 'f', -1, 64)
	}
	if inds, ok := q["industry"]; ok {
		view.selected = make(map[string]bool, len(inds))
		for _, ind := range inds {
			view.selected[ind] = true
		}
	}

	status := http.StatusOK
	schema, err := h.service.Schema(r.Context())
	if err != nil {
		status = h.fail(view, err)
		h.render(w, r, status, view)
		return
	}
	view.Schema = schema
	view.Ranges = rangeHints(schema)

	req, err := ParseScreenQuery(q)
	if err == nil {
		err = h.validator.ValidateStruct(req)
	}
	if err != nil {
		status = h.fail(view, err)
		h.render(w, r, status, view)
		return
	}

	params := req.ToParams(defaults)
	view.FiltersEnabled = params.FiltersEnabled
	view.RequireEPS = params.RequirePositiveEPS

	res, err := h.service.Screen(r.Context(), params)
	if err != nil {
		status = h.fail(view, err)
		h.render(w, r, status, view)
		return
	}

	limit := req.Limit
	if limit == 0 {
		limit = h.previewRows
	}
	resp := api.NewScreenResponse(res, limit)
	view.Result = &resp
	h.render(w, r, status, view)
}

// fail records a user-facing message and picks the status code.
func (h *DashboardHandler) fail(view *dashboardView, err error) int {
	var apiErr *apierrors.APIError
	switch {
	case errors.As(err, &apiErr):
		view.Error = apiErr.Message
		if details, ok := apiErr.Details.(apierrors.ValidationErrors); ok {
			for _, e := range details.Errors {
				view.Error += " · " + e.Message
			}
		}
		return apiErr.StatusCode
	case isNoTable(err):
		view.Error = "데이터 파일이 로드되지 않았습니다."
		return http.StatusServiceUnavailable
	default:
		h.logger.Error("dashboard failed", slog.String("error", err.Error()))
		view.Error = "요청을 처리하지 못했습니다."
		return http.StatusInternalServerError
	}
}

func (h *DashboardHandler) render(w http.ResponseWriter, r *http.Request, status int, view *dashboardView) {
	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, view); err != nil {
		h.logger.ErrorContext(r.Context(), "template render failed", slog.String("error", err.Error()))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// rangeHints fills placeholders with the observed ranges of bound fields.
func rangeHints(schema api.SchemaResponse) []rangeInput {
	out := make([]rangeInput, len(dashboardRanges))
	copy(out, dashboardRanges)
	for i := range out {
		if out[i].Field == "" {
			continue
		}
		if rng, ok := schema.Ranges[out[i].Field]; ok {
			out[i].MinHint = strconv.FormatFloat(rng.Min, 'f', -1, 64)
			out[i].MaxHint = strconv.FormatFloat(rng.Max, 'f', -1, 64)
		}
	}
	return out
}
