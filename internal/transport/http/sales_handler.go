package http

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"salespulse/internal/config"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/exporter"
	"salespulse/internal/filter"
	"salespulse/internal/infrastructure"
	"salespulse/internal/middleware"
)

// Export formats
const (
	FormatHTML = "html"
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

// SalesHandler serves dashboard queries and document exports
type SalesHandler struct {
	service      SalesServiceInterface
	validator    *middleware.QueryParamValidator
	metrics      *infrastructure.SalesMetrics
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	now          func() time.Time
}

// NewSalesHandler creates a new sales handler. metrics may be nil.
func NewSalesHandler(service SalesServiceInterface, metrics *infrastructure.SalesMetrics, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SalesHandler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	return &SalesHandler{
		service:      service,
		validator:    middleware.NewQueryParamValidator(logger, errorHandler),
		metrics:      metrics,
		logger:       logger.With(slog.String("component", "sales_handler")),
		errorHandler: errorHandler,
		now:          time.Now,
	}
}

// Routes returns the sales routes, mounted under /api/sales
func (h *SalesHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/dataset", h.GetDataset)
		r.Get("/options", h.GetOptions)
		r.Get("/dashboard", h.GetDashboard)
		r.Get("/kpis", h.GetKPIs)
		r.Get("/records", h.GetRecords)
	})

	// Downloads
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuditLog(h.logger))
		r.Get("/report.html", h.export(FormatHTML))
		r.Get("/export.xlsx", h.export(FormatXLSX))
		r.Get("/export.csv", h.export(FormatCSV))
	})

	return r
}

// GetDataset handles GET /api/sales/dataset
func (h *SalesHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Dataset())
}

// GetOptions handles GET /api/sales/options
func (h *SalesHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Options(r.Context(), r.URL.Query().Get("state")))
}

// GetDashboard handles GET /api/sales/dashboard
func (h *SalesHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseFilter(w, r)
	if !ok {
		return
	}
	dashboard, err := h.service.Dashboard(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, dashboard)
}

// GetKPIs handles GET /api/sales/kpis
func (h *SalesHandler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseFilter(w, r)
	if !ok {
		return
	}
	kpis, err := h.service.KPIs(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, kpis)
}

// GetRecords handles GET /api/sales/records
func (h *SalesHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseFilter(w, r)
	if !ok {
		return
	}
	page, ok := h.validator.ValidatePage(w, r, config.DefaultRecordsLimit, config.MaxRecordsLimit)
	if !ok {
		return
	}
	result, err := h.service.Records(r.Context(), req, page.Limit, page.Offset)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// export returns the download handler for format. The document is rendered
// into memory first so failures can still be reported as problems.
func (h *SalesHandler) export(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := h.parseFilter(w, r)
		if !ok {
			return
		}

		write, err := h.document(r, req, format)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		var buf bytes.Buffer
		if err := write(&buf); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrExport(format, err))
			return
		}

		h.metrics.RecordExport(r.Context(), format)
		h.logger.InfoContext(r.Context(), "document exported",
			slog.String("format", format),
			slog.Int("bytes", buf.Len()))

		w.Header().Set("Content-Type", contentType(format))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		if format != FormatHTML {
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.filename(format)))
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(buf.Bytes()); err != nil {
			h.logger.WarnContext(r.Context(), "failed to write export",
				slog.String("format", format),
				slog.String("error", err.Error()))
		}
	}
}

// document loads the data for format and returns the function that renders it
func (h *SalesHandler) document(r *http.Request, req filter.Request, format string) (func(io.Writer) error, error) {
	if format == FormatCSV {
		records, err := h.service.Filtered(r.Context(), req)
		if err != nil {
			return nil, err
		}
		return func(w io.Writer) error { return exporter.WriteRecords(w, records) }, nil
	}

	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		title = config.DefaultReportTitle
	}
	report, err := h.service.Report(r.Context(), req, title)
	if err != nil {
		return nil, err
	}
	if format == FormatXLSX {
		return func(w io.Writer) error { return exporter.WriteXLSX(w, report) }, nil
	}
	return func(w io.Writer) error { return exporter.WriteHTML(w, report) }, nil
}

// parseFilter reads the filter from the query string, reporting a problem
// response when it is invalid.
func (h *SalesHandler) parseFilter(w http.ResponseWriter, r *http.Request) (filter.Request, bool) {
	req, err := filter.ParseQuery(r.URL.Query())
	if err != nil {
		h.logger.DebugContext(r.Context(), "invalid filter",
			slog.String("query", r.URL.RawQuery),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return filter.Request{}, false
	}
	return req, true
}

func (h *SalesHandler) filename(format string) string {
	return fmt.Sprintf("ventas-%s.%s", h.now().Format("20060102-150405"), format)
}

func contentType(format string) string {
	switch format {
	case FormatXLSX:
		return contentTypeXLSX
	case FormatCSV:
		return contentTypeCSV
	default:
		return contentTypeHTML
	}
}
