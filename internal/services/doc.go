// Package services holds the query layer between the HTTP and websocket
// handlers and the analytics engine.
//
// DashboardService owns the one immutable sales dataset loaded at startup.
// Every operation validates its filter.Request, filters the dataset into a
// fresh slice and aggregates that slice, so concurrent callers never share
// mutable state. Dashboards are memoized per normalized request through
// internal/cache; a failing cache is logged and the dashboard is recomputed.
//
// HealthService reports liveness, readiness (dataset loaded, cache reachable)
// and build information.
package services
