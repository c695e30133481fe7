package http

import (
	"net/http"

	apierrors "github.com/han30230/Stock-filtering/internal/errors"
)

// MetricsHandler serves the Prometheus scrape endpoint.
type MetricsHandler struct {
	scrape       http.Handler
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler wraps scrape, which is nil when metrics are disabled.
func NewMetricsHandler(scrape http.Handler, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{scrape: scrape, errorHandler: errorHandler}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.scrape == nil {
		h.errorHandler.HandleError(w, r, apierrors.New(http.StatusNotFound, apierrors.CodeNotFound, "Metrics are disabled"))
		return
	}
	h.scrape.ServeHTTP(w, r)
}
