package http

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/han30230/Stock-filtering/internal/errors"
	"github.com/han30230/Stock-filtering/internal/exporter"
	"github.com/han30230/Stock-filtering/internal/middleware"
	"github.com/han30230/Stock-filtering/internal/services"
	api "github.com/han30230/Stock-filtering/pkg/contracts/api/v1"
)

// Response headers carrying the row counts of an export.
const (
	HeaderOriginalRows = "X-Original-Rows"
	HeaderFilteredRows = "X-Filtered-Rows"
)

// ScreenHandlerOptions configures a ScreenHandler.
type ScreenHandlerOptions struct {
	// PreviewRows is the inline row limit when a request sets none.
	PreviewRows int
	// MaxIndustries caps the industry list of a request.
	MaxIndustries int
}

// ScreenHandler serves the /api/screen resource with RFC 7807 errors
type ScreenHandler struct {
	service      ScreenerService
	validator    *middleware.Validator
	query        *middleware.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
	opts         ScreenHandlerOptions
}

// NewScreenHandler creates a new screen handler
func NewScreenHandler(service ScreenerService, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger, opts ScreenHandlerOptions) *ScreenHandler {
	if opts.MaxIndustries <= 0 || opts.MaxIndustries > api.MaxIndustries {
		opts.MaxIndustries = api.MaxIndustries
	}
	return &ScreenHandler{
		service:      service,
		validator:    validator,
		query:        middleware.NewQueryParamValidator(errorHandler),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "screen_handler")),
		opts:         opts,
	}
}

// Routes returns the screen routes
func (h *ScreenHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.ContentTypeValidator(h.errorHandler, "application/json"))

	r.Get("/schema", h.GetSchema)
	r.Get("/range/{field}", h.GetRange)
	r.Post("/", h.RunScreen)
	r.Post("/export", h.Export)
	r.Post("/reload", h.Reload)
	return r
}

// GetSchema handles GET /api/screen/schema
func (h *ScreenHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := h.service.Schema(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err, ""))
		return
	}
	render.JSON(w, r, api.OK(schema))
}

// GetRange handles GET /api/screen/range/{field}
func (h *ScreenHandler) GetRange(w http.ResponseWriter, r *http.Request) {
	field := chi.URLParam(r, "field")
	rng, err := h.service.Range(r.Context(), field)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err, field))
		return
	}
	render.JSON(w, r, api.OK(rng))
}

// RunScreen handles POST /api/screen
func (h *ScreenHandler) RunScreen(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	res, err := h.service.Screen(r.Context(), req.ToParams(h.service.Defaults()))
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err, ""))
		return
	}

	limit := req.Limit
	if limit == 0 {
		limit = h.opts.PreviewRows
	}
	render.JSON(w, r, api.OK(api.NewScreenResponse(res, limit)))
}

// Export handles POST /api/screen/export?format=csv|xlsx. The file is
// rendered fully before anything is written, so failures still produce a
// problem response.
func (h *ScreenHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, ok := h.query.ValidateEnum(w, r, "format",
		[]string{string(exporter.FormatCSV), string(exporter.FormatXLSX)}, string(exporter.FormatCSV))
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	res, err := h.service.Export(r.Context(), req.ToParams(h.service.Defaults()), format, &buf)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err, ""))
		return
	}

	f := exporter.Format(format)
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+exporter.Filename("", f, time.Now())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set(HeaderOriginalRows, strconv.Itoa(res.OriginalRows))
	w.Header().Set(HeaderFilteredRows, strconv.Itoa(res.FilteredRows))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export write interrupted", slog.String("error", err.Error()))
	}
}

// Reload handles POST /api/screen/reload
func (h *ScreenHandler) Reload(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Reload(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err, ""))
		return
	}
	h.logger.InfoContext(r.Context(), "table reloaded on request", slog.Int("rows", resp.Rows))
	render.JSON(w, r, api.OK(resp))
}

func (h *ScreenHandler) decode(w http.ResponseWriter, r *http.Request) (api.ScreenRequest, bool) {
	var req api.ScreenRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return req, false
	}
	if len(req.Industries) > h.opts.MaxIndustries {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("industries",
			"industries must contain at most "+strconv.Itoa(h.opts.MaxIndustries)+" entries"))
		return req, false
	}
	return req, true
}

// mapError turns service sentinels into API errors. Anything else is left
// for the error handler to classify.
func (h *ScreenHandler) mapError(err error, field string) error {
	switch {
	case errors.Is(err, services.ErrNoTable):
		return apierrors.ErrTableNotLoaded
	case errors.Is(err, services.ErrUnknownField):
		return apierrors.UnknownFieldError(field)
	case errors.Is(err, services.ErrNoNumericValues):
		return apierrors.NoNumericValuesError(field)
	case errors.Is(err, services.ErrUnsupportedFormat):
		return apierrors.ErrUnsupportedFormat
	default:
		return err
	}
}

func isNoTable(err error) bool {
	return errors.Is(err, services.ErrNoTable)
}
