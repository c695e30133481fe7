package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/han30230/Stock-filtering/internal/middleware"
	"github.com/han30230/Stock-filtering/internal/services"
	api "github.com/han30230/Stock-filtering/pkg/contracts/api/v1"
	"github.com/han30230/Stock-filtering/pkg/contracts/domain"
)

func newDashboard(svc ScreenerService) *DashboardHandler {
	return NewDashboardHandler(svc, middleware.NewValidator(quietLogger()), quietLogger(), 200)
}

func sampleSchema() api.SchemaResponse {
	return api.SchemaResponse{
		Rows:       5,
		Industries: []string{"Energy", "Tech"},
		Ranges: map[domain.LogicalField]domain.ColumnRange{
			domain.FieldPER: {Column: "PER", Min: 8, Max: 40},
		},
	}
}

func TestDashboardHandler_Renders(t *testing.T) {
	svc := new(mockScreener)
	svc.On("Schema", mock.Anything).Return(sampleSchema(), nil)
	svc.On("Screen", mock.Anything, mock.MatchedBy(func(p domain.ScreenParams) bool {
		return len(p.Industries) == 1 && p.Industries[0] == "Tech"
	})).Return(sampleResult(), nil)

	rec := httptest.NewRecorder()
	newDashboard(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?industry=Tech&per_min=10&per_max=20", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "원본 5개 종목 → 필터 후 3개 종목")
	assert.Contains(t, body, "Gamma")
	assert.Contains(t, body, `class="missing"`)
	assert.Contains(t, body, `value="Tech" checked`)
	assert.NotContains(t, body, `value="Energy" checked`)
	assert.Contains(t, body, `placeholder="40"`, "observed PER max is the hint")
	svc.AssertExpectations(t)
}

func TestDashboardHandler_DefaultsSelectEveryIndustry(t *testing.T) {
	svc := new(mockScreener)
	svc.On("Schema", mock.Anything).Return(sampleSchema(), nil)
	svc.On("Screen", mock.Anything, mock.MatchedBy(func(p domain.ScreenParams) bool {
		return p.Industries == nil && p.FiltersEnabled
	})).Return(sampleResult(), nil)

	rec := httptest.NewRecorder()
	newDashboard(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Energy" checked`)
	assert.Contains(t, rec.Body.String(), `value="Tech" checked`)
}

func TestDashboardHandler_Errors(t *testing.T) {
	t.Run("invalid range", func(t *testing.T) {
		svc := new(mockScreener)
		svc.On("Schema", mock.Anything).Return(sampleSchema(), nil)

		rec := httptest.NewRecorder()
		newDashboard(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?price_min=50&price_max=10", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `class="error"`)
		svc.AssertNotCalled(t, "Screen", mock.Anything, mock.Anything)
	})

	t.Run("no table", func(t *testing.T) {
		svc := new(mockScreener)
		svc.On("Schema", mock.Anything).Return(api.SchemaResponse{}, services.ErrNoTable)

		rec := httptest.NewRecorder()
		newDashboard(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "데이터 파일이 로드되지 않았습니다.")
	})
}
