package infrastructure

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// SalesMetrics holds all application-specific metrics. A nil *SalesMetrics
// records nothing.
type SalesMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Query metrics
	QueriesTotal  metric.Int64Counter
	QueryDuration metric.Float64Histogram
	QueryErrors   metric.Int64Counter
	CacheHits     metric.Int64Counter
	CacheMisses   metric.Int64Counter

	// Dataset metrics
	RecordsLoaded metric.Int64Counter
	RowsRejected  metric.Int64Counter

	// Delivery metrics
	ExportsTotal     metric.Int64Counter
	WebSocketClients metric.Int64UpDownCounter
}

// CreateSalesMetrics creates the application metrics on meter
func CreateSalesMetrics(meter metric.Meter) (*SalesMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(MeterName)
	}
	var (
		m   SalesMetrics
		err error
	)
	counter := func(dst *metric.Int64Counter, name, desc string) {
		if err == nil {
			*dst, err = meter.Int64Counter(name, metric.WithDescription(desc))
		}
	}
	histogram := func(dst *metric.Float64Histogram, name, desc string) {
		if err == nil {
			*dst, err = meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
		}
	}
	gauge := func(dst *metric.Int64UpDownCounter, name, desc string) {
		if err == nil {
			*dst, err = meter.Int64UpDownCounter(name, metric.WithDescription(desc))
		}
	}

	counter(&m.HTTPRequestsTotal, "http_requests_total", "Total number of HTTP requests")
	histogram(&m.HTTPRequestDuration, "http_request_duration_seconds", "HTTP request duration in seconds")
	gauge(&m.HTTPActiveRequests, "http_active_requests", "Number of active HTTP requests")

	counter(&m.QueriesTotal, "sales_queries_total", "Total number of dashboard queries")
	histogram(&m.QueryDuration, "sales_query_duration_seconds", "Dashboard query duration in seconds")
	counter(&m.QueryErrors, "sales_query_errors_total", "Total number of rejected dashboard queries")
	counter(&m.CacheHits, "sales_cache_hits_total", "Total number of query cache hits")
	counter(&m.CacheMisses, "sales_cache_misses_total", "Total number of query cache misses")

	counter(&m.RecordsLoaded, "sales_records_loaded_total", "Total number of sales records loaded")
	counter(&m.RowsRejected, "sales_rows_rejected_total", "Total number of input rows rejected")

	counter(&m.ExportsTotal, "sales_exports_total", "Total number of exported documents")
	gauge(&m.WebSocketClients, "sales_websocket_clients", "Number of connected websocket clients")

	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordHTTPRequest records one finished HTTP request
func (m *SalesMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.String("http.status_code", strconv.Itoa(status)),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, d.Seconds(), attrs)
}

// AddActiveRequests changes the in-flight request count by delta
func (m *SalesMetrics) AddActiveRequests(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.HTTPActiveRequests.Add(ctx, delta)
}

// RecordQuery records a served query of the given kind
func (m *SalesMetrics) RecordQuery(ctx context.Context, kind string, d time.Duration, cached bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("query.kind", kind),
		attribute.Bool("query.cached", cached),
	)
	m.QueriesTotal.Add(ctx, 1, attrs)
	m.QueryDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordQueryError records a query rejected before computation
func (m *SalesMetrics) RecordQueryError(ctx context.Context, kind, reason string) {
	if m == nil {
		return
	}
	m.QueryErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("query.kind", kind),
		attribute.String("reason", reason),
	))
}

// RecordCacheLookup counts a cache hit or miss for backend
func (m *SalesMetrics) RecordCacheLookup(ctx context.Context, backend string, hit bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("cache.backend", backend))
	if hit {
		m.CacheHits.Add(ctx, 1, attrs)
		return
	}
	m.CacheMisses.Add(ctx, 1, attrs)
}

// RecordLoad records the outcome of a dataset load
func (m *SalesMetrics) RecordLoad(ctx context.Context, retained, rejected int) {
	if m == nil {
		return
	}
	m.RecordsLoaded.Add(ctx, int64(retained))
	m.RowsRejected.Add(ctx, int64(rejected))
}

// RecordExport counts one exported document
func (m *SalesMetrics) RecordExport(ctx context.Context, format string) {
	if m == nil {
		return
	}
	m.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("export.format", format)))
}

// AddWebSocketClients changes the connected client count by delta
func (m *SalesMetrics) AddWebSocketClients(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.WebSocketClients.Add(ctx, delta)
}
