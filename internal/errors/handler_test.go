package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/han30230/Stock-filtering/internal/shared/testutil"
)

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
	}{
		{
			name:       "api validation error",
			err:        ErrValidation("price", "min must not exceed max"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantCode:   CodeValidationFailed,
		},
		{
			name:       "unknown field",
			err:        UnknownFieldError("volume"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeUnknownField,
			wantCode:   CodeUnknownField,
		},
		{
			name:       "no numeric values",
			err:        NoNumericValuesError("업종"),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeNoNumericValues,
			wantCode:   CodeNoNumericValues,
		},
		{
			name:       "table not loaded",
			err:        ErrTableNotLoaded,
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeTableNotLoaded,
			wantCode:   CodeTableNotLoaded,
		},
		{
			name:       "wrapped api error",
			err:        fmt.Errorf("export: %w", ErrUnsupportedFormat),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeUnsupportedFormat,
			wantCode:   CodeUnsupportedFormat,
		},
		{
			name:       "deadline exceeded",
			err:        fmt.Errorf("screen: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "parsing app error",
			err:        NewParsingError("workbook unreadable", fmt.Errorf("zip: not a valid zip file")),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDataUnreadable,
		},
		{
			name:       "not found app error",
			err:        NewNotFoundError("column"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "plain error",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			h := NewErrorHandler(logger, false)
			req := httptest.NewRequest(http.MethodGet, "/api/screen", nil)
			rec := httptest.NewRecorder()

			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/screen", body["instance"])
			assert.Contains(t, body, "trace_id")
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
			}
			assert.NotContains(t, body, "stack")
		})
	}
}

func TestErrorHandler_HandleError_Nil(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)
	rec := httptest.NewRecorder()

	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, 0, rec.Body.Len())
	assert.Empty(t, logs.Records())
}

func TestErrorHandler_LogLevels(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, true)
	req := httptest.NewRequest(http.MethodGet, "/api/screen", nil)

	h.HandleError(httptest.NewRecorder(), req, ErrValidationFailed)
	h.HandleError(httptest.NewRecorder(), req, fmt.Errorf("disk gone"))

	assert.Equal(t, 1, logs.Count(slog.LevelWarn))
	assert.Equal(t, 1, logs.Count(slog.LevelError))
	rec, ok := logs.Find("request failed")
	require.True(t, ok)
	assert.Equal(t, "error_handler", rec.Attrs["component"])
}

func TestErrorHandler_ValidationDetails(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)
	rec := httptest.NewRecorder()

	h.HandleError(rec, httptest.NewRequest(http.MethodPost, "/api/screen", nil), NewValidationErrors([]ValidationError{
		{Field: "price", Message: "min must not exceed max"},
		{Field: "industries", Message: "too many values"},
	}))

	body := decodeProblem(t, rec)
	details, ok := body["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, details["errors"], 2)
}

func TestErrorHandler_Recoverer(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, true)
	panicky := h.Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil table")
	}))
	rec := httptest.NewRecorder()

	panicky.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/screen/schema", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, "nil table", body["panic"])
	assert.Contains(t, body, "stack")
	testutil.AssertLogged(t, logs, slog.LevelError, "panic recovered")
}

func TestErrorHandler_NotFoundAndMethod(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, rec)["type"])

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/screen", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, decodeProblem(t, rec)["detail"], "DELETE")
}
