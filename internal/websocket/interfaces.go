package websocket

import (
	"context"
	"time"

	"salespulse/internal/analytics"
	"salespulse/internal/filter"
)

// Connection defines the interface for WebSocket connections
// This allows for proper mocking in tests
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() string
}

// QueryService answers live queries. services.DashboardService implements it.
type QueryService interface {
	Dashboard(ctx context.Context, req filter.Request) (analytics.Dashboard, error)
	KPIs(ctx context.Context, req filter.Request) (analytics.KPIs, error)
	Options(ctx context.Context, state string) filter.Options
}
