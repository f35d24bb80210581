package http

import (
	"context"

	"salespulse/internal/analytics"
	"salespulse/internal/exporter"
	"salespulse/internal/filter"
	"salespulse/internal/sales"
	"salespulse/internal/services"
)

// SalesServiceInterface defines the queries served over HTTP.
// services.DashboardService implements it.
type SalesServiceInterface interface {
	Dataset() services.DatasetInfo
	Options(ctx context.Context, state string) filter.Options
	Dashboard(ctx context.Context, req filter.Request) (analytics.Dashboard, error)
	KPIs(ctx context.Context, req filter.Request) (analytics.KPIs, error)
	Records(ctx context.Context, req filter.Request, limit, offset int) (services.RecordPage, error)
	Filtered(ctx context.Context, req filter.Request) ([]sales.Record, error)
	Report(ctx context.Context, req filter.Request, title string) (exporter.Report, error)
}
