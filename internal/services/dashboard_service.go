package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"salespulse/internal/analytics"
	"salespulse/internal/cache"
	"salespulse/internal/exporter"
	"salespulse/internal/filter"
	"salespulse/internal/infrastructure"
	"salespulse/internal/ingest"
	"salespulse/internal/sales"
)

const dashboardCacheNamespace = "dashboard"

// Query kinds used in metrics and spans
const (
	QueryDashboard = "dashboard"
	QueryKPIs      = "kpis"
	QueryRecords   = "records"
	QueryOptions   = "options"
	QueryReport    = "report"
)

// RecordPage is one page of filtered records
type RecordPage struct {
	Total   int            `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
	Records []sales.Record `json:"records"`
}

// DatasetInfo describes the loaded dataset
type DatasetInfo struct {
	Records  int          `json:"records"`
	Files    []string     `json:"files"`
	MinDate  string       `json:"min_date,omitempty"`
	MaxDate  string       `json:"max_date,omitempty"`
	LoadedAt time.Time    `json:"loaded_at"`
	Stats    ingest.Stats `json:"stats"`
}

// DashboardService answers filter queries against one immutable dataset.
// It is safe for concurrent use: the dataset is never modified and every
// query works on its own filtered copy.
type DashboardService struct {
	dataset *ingest.Dataset
	cache   cache.Cache[analytics.Dashboard]
	config  analytics.Config
	base    analytics.KPIs
	metrics *infrastructure.SalesMetrics
	tracer  trace.Tracer
	logger  *slog.Logger
	now     func() time.Time
}

// NewDashboardService creates the service. A nil cache disables memoization,
// a nil metrics records nothing.
func NewDashboardService(dataset *ingest.Dataset, c cache.Cache[analytics.Dashboard], cfg analytics.Config, metrics *infrastructure.SalesMetrics, logger *slog.Logger) (*DashboardService, error) {
	if dataset == nil {
		return nil, ErrNoDataset
	}
	if c == nil {
		c = cache.Noop[analytics.Dashboard]{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &DashboardService{
		dataset: dataset,
		cache:   c,
		config:  cfg,
		base:    analytics.Summarize(dataset.Records()),
		metrics: metrics,
		tracer:  otel.Tracer(infrastructure.MeterName),
		logger:  logger.With(slog.String("component", "dashboard_service")),
		now:     time.Now,
	}
	s.logger.Info("Dashboard service initialized",
		slog.Int("records", dataset.Len()),
		slog.String("revenue", s.base.Revenue.StringFixed(2)),
		slog.String("cache", c.Backend()))
	return s, nil
}

// Dataset returns a summary of the loaded dataset
func (s *DashboardService) Dataset() DatasetInfo {
	minDate, maxDate := s.dataset.Span()
	info := DatasetInfo{
		Records:  s.dataset.Len(),
		LoadedAt: s.dataset.LoadedAt(),
		Stats:    s.dataset.Stats(),
		Files:    make([]string, 0, len(s.dataset.Sources())),
	}
	for _, src := range s.dataset.Sources() {
		info.Files = append(info.Files, src.Name)
	}
	if !minDate.IsZero() {
		info.MinDate = minDate.Format(sales.DateLayout)
		info.MaxDate = maxDate.Format(sales.DateLayout)
	}
	return info
}

// Options lists the values every filter can take. Cities are restricted to
// state unless state is unconstrained.
func (s *DashboardService) Options(ctx context.Context, state string) filter.Options {
	_, span := s.tracer.Start(ctx, "sales.options", trace.WithAttributes(attribute.String("filter.state", state)))
	defer span.End()

	start := time.Now()
	opts := filter.BuildOptions(s.dataset.Records(), state)
	s.metrics.RecordQuery(ctx, QueryOptions, time.Since(start), false)
	return opts
}

// Dashboard computes every dashboard table for the records matching req.
// Results are memoized by normalized request; a failing cache only costs a
// recomputation.
func (s *DashboardService) Dashboard(ctx context.Context, req filter.Request) (analytics.Dashboard, error) {
	ctx, span := s.startQuery(ctx, QueryDashboard, req)
	defer span.End()
	start := time.Now()

	req, err := s.validate(ctx, QueryDashboard, req)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return analytics.Dashboard{}, err
	}

	key, keyErr := cache.Key(dashboardCacheNamespace, req)
	if keyErr == nil {
		d, hit, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.WarnContext(ctx, "dashboard cache read failed",
				slog.String("backend", s.cache.Backend()),
				slog.String("error", err.Error()))
		}
		s.metrics.RecordCacheLookup(ctx, s.cache.Backend(), hit)
		if hit {
			span.SetAttributes(attribute.Bool("query.cached", true))
			s.metrics.RecordQuery(ctx, QueryDashboard, time.Since(start), true)
			return d, nil
		}
	}

	records, err := s.filter(ctx, req)
	if err != nil {
		return analytics.Dashboard{}, err
	}
	if err := ctx.Err(); err != nil {
		return analytics.Dashboard{}, err
	}

	d := analytics.BuildDashboard(records, s.config)
	d.KPIs = d.KPIs.WithShare(s.base.Revenue)

	if keyErr == nil {
		if err := s.cache.Set(ctx, key, d); err != nil {
			s.logger.WarnContext(ctx, "dashboard cache write failed",
				slog.String("backend", s.cache.Backend()),
				slog.String("error", err.Error()))
		}
	}

	span.SetAttributes(attribute.Int("query.records", len(records)))
	s.metrics.RecordQuery(ctx, QueryDashboard, time.Since(start), false)
	s.logger.DebugContext(ctx, "dashboard computed",
		slog.Int("records", len(records)),
		slog.Duration("duration", time.Since(start)))
	return d, nil
}

// KPIs computes only the headline figures for req
func (s *DashboardService) KPIs(ctx context.Context, req filter.Request) (analytics.KPIs, error) {
	ctx, span := s.startQuery(ctx, QueryKPIs, req)
	defer span.End()
	start := time.Now()

	req, err := s.validate(ctx, QueryKPIs, req)
	if err != nil {
		return analytics.KPIs{}, err
	}
	records, err := s.filter(ctx, req)
	if err != nil {
		return analytics.KPIs{}, err
	}

	k := analytics.Summarize(records).WithShare(s.base.Revenue)
	s.metrics.RecordQuery(ctx, QueryKPIs, time.Since(start), false)
	return k, nil
}

// Records returns a page of the records matching req, in load order
func (s *DashboardService) Records(ctx context.Context, req filter.Request, limit, offset int) (RecordPage, error) {
	ctx, span := s.startQuery(ctx, QueryRecords, req)
	defer span.End()
	start := time.Now()

	req, err := s.validate(ctx, QueryRecords, req)
	if err != nil {
		return RecordPage{}, err
	}
	records, err := s.filter(ctx, req)
	if err != nil {
		return RecordPage{}, err
	}

	page := RecordPage{Total: len(records), Limit: limit, Offset: offset}
	if offset > len(records) {
		offset = len(records)
	}
	end := len(records)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	page.Records = records[offset:end]

	s.metrics.RecordQuery(ctx, QueryRecords, time.Since(start), false)
	return page, nil
}

// Filtered returns all records matching req, e.g. for a CSV export
func (s *DashboardService) Filtered(ctx context.Context, req filter.Request) ([]sales.Record, error) {
	req, err := s.validate(ctx, QueryRecords, req)
	if err != nil {
		return nil, err
	}
	return s.filter(ctx, req)
}

// Report builds the export document for req
func (s *DashboardService) Report(ctx context.Context, req filter.Request, title string) (exporter.Report, error) {
	ctx, span := s.startQuery(ctx, QueryReport, req)
	defer span.End()

	req, err := s.validate(ctx, QueryReport, req)
	if err != nil {
		return exporter.Report{}, err
	}
	d, err := s.Dashboard(ctx, req)
	if err != nil {
		return exporter.Report{}, err
	}
	records, err := s.filter(ctx, req)
	if err != nil {
		return exporter.Report{}, err
	}

	report := exporter.NewReport(title, records, d, s.now().UTC())
	report.Filter = DescribeFilter(req)
	return report, nil
}

// DescribeFilter renders req for humans; an empty request reads "Todos".
func DescribeFilter(req filter.Request) string {
	if req.IsEmpty() {
		return "Todos"
	}
	return req.Query().Encode()
}

func (s *DashboardService) startQuery(ctx context.Context, kind string, req filter.Request) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "sales."+kind, trace.WithAttributes(
		attribute.String("query.kind", kind),
		attribute.String("query.filter", req.Query().Encode()),
	))
}

func (s *DashboardService) validate(ctx context.Context, kind string, req filter.Request) (filter.Request, error) {
	req, err := filter.Validate(req)
	if err != nil {
		s.metrics.RecordQueryError(ctx, kind, "invalid_filter")
		return req, err
	}
	return req, nil
}

func (s *DashboardService) filter(ctx context.Context, req filter.Request) ([]sales.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := filter.Apply(s.dataset.Records(), req)
	if err != nil {
		return nil, fmt.Errorf("apply filter: %w", err)
	}
	return records, nil
}
