package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "github.com/han30230/Stock-filtering/internal/errors"
	"github.com/han30230/Stock-filtering/internal/middleware"
	"github.com/han30230/Stock-filtering/internal/services"
	api "github.com/han30230/Stock-filtering/pkg/contracts/api/v1"
	"github.com/han30230/Stock-filtering/pkg/contracts/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newScreenRouter(svc ScreenerService, opts ScreenHandlerOptions) http.Handler {
	logger := quietLogger()
	eh := apierrors.NewErrorHandler(logger, false)
	h := NewScreenHandler(svc, middleware.NewValidator(logger), eh, logger, opts)

	r := chi.NewRouter()
	r.Mount("/api/screen", h.Routes())
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func sampleResult() domain.ScreenResult {
	tbl := domain.MustTable([]domain.Column{
		{Name: "종목명", Cells: []domain.Cell{domain.NewCell("Alpha"), domain.NewCell("Gamma"), domain.NewCell("Epsilon")}},
		{Name: "PEG (PER/EPS)", Cells: []domain.Cell{domain.NewCell("0.8"), domain.MissingCell(), domain.NewCell("2")}},
	})
	return domain.ScreenResult{
		Table:        tbl,
		OriginalRows: 5,
		FilteredRows: 3,
		Bindings:     domain.Bindings{domain.FieldPEG: "PEG (PER/EPS)"},
		Steps:        []domain.StepReport{{Name: "peg_range", Column: "PEG (PER/EPS)", SkipReason: "not requested"}},
	}
}

func TestScreenHandler_RunScreen(t *testing.T) {
	svc := new(mockScreener)
	svc.On("Screen", mock.Anything, mock.MatchedBy(func(p domain.ScreenParams) bool {
		return p.FiltersEnabled && p.PER != nil && p.PER.Min == 5 && p.PER.Max == 25 &&
			len(p.Industries) == 1 && p.Industries[0] == "Tech" && p.RequirePositiveEPS
	})).Return(sampleResult(), nil)

	rec := doJSON(t, newScreenRouter(svc, ScreenHandlerOptions{PreviewRows: 2}), http.MethodPost, "/api/screen",
		`{"industries":["Tech"],"per":{"min":5,"max":25}}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])

	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 5, data["original_rows"])
	assert.EqualValues(t, 3, data["filtered_rows"])
	assert.Equal(t, true, data["truncated"])

	rows := data["rows"].([]interface{})
	require.Len(t, rows, 2)
	second := rows[1].(map[string]interface{})
	assert.Equal(t, "Gamma", second["종목명"])
	assert.Nil(t, second["PEG (PER/EPS)"], "missing cells are null")
	svc.AssertExpectations(t)
}

func TestScreenHandler_RunScreenLimitOverride(t *testing.T) {
	svc := new(mockScreener)
	svc.On("Screen", mock.Anything, mock.Anything).Return(sampleResult(), nil)

	rec := doJSON(t, newScreenRouter(svc, ScreenHandlerOptions{PreviewRows: 1}), http.MethodPost, "/api/screen", `{"limit":10}`)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Len(t, data["rows"], 3)
	assert.Equal(t, false, data["truncated"])
}

func TestScreenHandler_RunScreenErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		opts       ScreenHandlerOptions
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{name: "inverted bounds", body: `{"price":{"min":50,"max":10}}`, wantStatus: 400, wantCode: apierrors.CodeValidationFailed},
		{name: "malformed body", body: `{"price":`, wantStatus: 400, wantCode: apierrors.CodeInvalidRequest},
		{name: "too many industries for config", body: `{"industries":["a","b","c"]}`, opts: ScreenHandlerOptions{MaxIndustries: 2}, wantStatus: 400, wantCode: apierrors.CodeValidationFailed},
		{name: "no table", body: `{}`, serviceErr: services.ErrNoTable, wantStatus: 503, wantCode: apierrors.CodeTableNotLoaded},
		{name: "deadline", body: `{}`, serviceErr: context.DeadlineExceeded, wantStatus: 504},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockScreener)
			if tt.serviceErr != nil {
				svc.On("Screen", mock.Anything, mock.Anything).Return(domain.ScreenResult{}, tt.serviceErr)
			}

			rec := doJSON(t, newScreenRouter(svc, tt.opts), http.MethodPost, "/api/screen", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeBody(t, rec)["error_code"])
			}
			if tt.serviceErr == nil {
				svc.AssertNotCalled(t, "Screen", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestScreenHandler_UnsupportedContentType(t *testing.T) {
	svc := new(mockScreener)
	req := httptest.NewRequest(http.MethodPost, "/api/screen", strings.NewReader("per=1"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	newScreenRouter(svc, ScreenHandlerOptions{}).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestScreenHandler_GetRange(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		rng        domain.ColumnRange
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "found", field: "per", rng: domain.ColumnRange{Column: "PER", Min: 10, Max: 30, Count: 5}, wantStatus: 200},
		{name: "unknown", field: "volume", err: fmt.Errorf("%w: volume", services.ErrUnknownField), wantStatus: 404, wantCode: apierrors.CodeUnknownField},
		{name: "no numbers", field: "industry", err: services.ErrNoNumericValues, wantStatus: 422, wantCode: apierrors.CodeNoNumericValues},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockScreener)
			svc.On("Range", mock.Anything, tt.field).Return(tt.rng, tt.err)

			rec := doJSON(t, newScreenRouter(svc, ScreenHandlerOptions{}), http.MethodGet, "/api/screen/range/"+tt.field, "")
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			body := decodeBody(t, rec)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
				return
			}
			data := body["data"].(map[string]interface{})
			assert.EqualValues(t, 10, data["min"])
			assert.EqualValues(t, 30, data["max"])
		})
	}
}

func TestScreenHandler_GetSchema(t *testing.T) {
	svc := new(mockScreener)
	svc.On("Schema", mock.Anything).Return(api.SchemaResponse{
		Rows:       5,
		Industries: []string{"Energy", "Tech"},
		Ranges:     map[domain.LogicalField]domain.ColumnRange{domain.FieldPER: {Column: "PER", Min: 10, Max: 30}},
	}, nil)

	rec := doJSON(t, newScreenRouter(svc, ScreenHandlerOptions{}), http.MethodGet, "/api/screen/schema", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.EqualValues(t, 5, data["rows"])
	assert.Contains(t, data["ranges"], "per")
}

func TestScreenHandler_Export(t *testing.T) {
	svc := new(mockScreener)
	svc.On("Export", mock.Anything, mock.Anything, "xlsx", mock.Anything).
		Return(sampleResult(), nil, func(w io.Writer) { _, _ = w.Write([]byte("PK-fake")) })

	rec := doJSON(t, newScreenRouter(svc, ScreenHandlerOptions{}), http.MethodPost, "/api/screen/export?format=xlsx", `{"filters_enabled":false}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.Equal(t, "5", rec.Header().Get(HeaderOriginalRows))
	assert.Equal(t, "3", rec.Header().Get(HeaderFilteredRows))
	assert.Equal(t, "PK-fake", rec.Body.String())

	params := svc.Calls[0].Arguments.Get(1).(domain.ScreenParams)
	assert.False(t, params.FiltersEnabled)
}

func TestScreenHandler_ExportErrors(t *testing.T) {
	t.Run("bad format", func(t *testing.T) {
		svc := new(mockScreener)
		rec := doJSON(t, newScreenRouter(svc, ScreenHandlerOptions{}), http.MethodPost, "/api/screen/export?format=pdf", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Export", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("write failure", func(t *testing.T) {
		svc := new(mockScreener)
		svc.On("Export", mock.Anything, mock.Anything, "csv", mock.Anything).
			Return(domain.ScreenResult{}, apierrors.NewExportError("disk full", errors.New("boom")), nil)

		rec := doJSON(t, newScreenRouter(svc, ScreenHandlerOptions{}), http.MethodPost, "/api/screen/export", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Empty(t, rec.Header().Get("Content-Disposition"))
	})
}

func TestScreenHandler_Reload(t *testing.T) {
	svc := new(mockScreener)
	svc.On("Reload", mock.Anything).Return(api.ReloadResponse{Source: "a.xlsx", Rows: 5}, nil).Once()
	svc.On("Reload", mock.Anything).Return(api.ReloadResponse{},
		apierrors.NewParsingError("failed to read data file", errors.New("zip: not a valid zip file"))).Once()

	h := newScreenRouter(svc, ScreenHandlerOptions{})

	rec := doJSON(t, h, http.MethodPost, "/api/screen/reload", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 5, decodeBody(t, rec)["data"].(map[string]interface{})["rows"])

	rec = doJSON(t, h, http.MethodPost, "/api/screen/reload", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, apierrors.TypeDataUnreadable, decodeBody(t, rec)["type"])
}
