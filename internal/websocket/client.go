package websocket

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"salespulse/internal/filter"
	"salespulse/internal/infrastructure"
)

// Time allowed to write a message to the peer
const writeWait = 10 * time.Second

// sendBuffer bounds the replies queued for one client
const sendBuffer = 16

// Settings tune a client connection
type Settings struct {
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
	QueryTimeout   time.Duration
}

func (s Settings) withDefaults() Settings {
	if s.PongWait <= 0 {
		s.PongWait = 60 * time.Second
	}
	if s.PingPeriod <= 0 || s.PingPeriod >= s.PongWait {
		s.PingPeriod = (s.PongWait * 9) / 10
	}
	if s.MaxMessageSize <= 0 {
		s.MaxMessageSize = 64 * 1024
	}
	if s.QueryTimeout <= 0 {
		s.QueryTimeout = 30 * time.Second
	}
	return s
}

// gorillaConn adapts *websocket.Conn to Connection
type gorillaConn struct {
	*websocket.Conn
}

func (c gorillaConn) RemoteAddr() string {
	if addr := c.Conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// Client is a middleman between one websocket connection, the hub and the
// query service. Requests are answered in arrival order.
type Client struct {
	hub      *Hub
	conn     Connection
	service  QueryService
	settings Settings

	mu     sync.Mutex
	send   chan []byte
	closed bool

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	logger *slog.Logger

	queriesServed int64
}

// NewClient creates a client for conn. traceID may be empty.
func NewClient(hub *Hub, conn Connection, service QueryService, settings Settings, traceID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	id := uuid.New().String()
	logger = logger.With(
		slog.String("component", "websocket.client"),
		slog.String("client_id", id),
	)
	if traceID != "" {
		logger = logger.With(slog.String("trace_id", traceID))
	}
	return &Client{
		hub:         hub,
		conn:        conn,
		service:     service,
		settings:    settings.withDefaults(),
		send:        make(chan []byte, sendBuffer),
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		logger:      logger,
	}
}

// ID returns the client identifier
func (c *Client) ID() string { return c.id }

func (c *Client) context() context.Context {
	ctx := context.Background()
	if c.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, c.traceID)
	}
	return ctx
}

// enqueue queues data for the write pump. It reports false when the client
// is closed or too slow to keep up.
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) reply(resp Response) {
	resp.TraceID = c.traceID
	data, err := encode(resp)
	if err != nil {
		c.logger.ErrorContext(c.context(), "Error marshaling response",
			slog.String("type", resp.Type),
			slog.String("error", err.Error()))
		return
	}
	if !c.enqueue(data) {
		c.logger.WarnContext(c.context(), "Client send buffer full, dropping response",
			slog.String("type", resp.Type),
			slog.String("request_id", resp.ID))
	}
}

// greet sends the connection message; the hub calls it after registration.
func (c *Client) greet() {
	c.reply(Response{
		Type: TypeConnection,
		Data: map[string]interface{}{
			"status":    "connected",
			"client_id": c.id,
		},
	})
}

// ReadPump reads requests until the connection fails, answering each one.
func (c *Client) ReadPump() {
	defer func() {
		c.logger.InfoContext(c.context(), "WebSocket client disconnected",
			slog.Duration("connection_duration", time.Since(c.connectedAt)),
			slog.Int64("queries_served", c.queriesServed))
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.settings.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.settings.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.settings.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.WarnContext(c.context(), "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}
		if resp, ok := c.handle(message); ok {
			c.reply(resp)
		}
	}
}

// handle answers one raw message. ok is false for messages that need no reply.
func (c *Client) handle(message []byte) (Response, bool) {
	var req Request
	if err := decodeRequest(message, &req); err != nil {
		return errorResponse("", CodeBadMessage, "message is not a valid request: "+err.Error(), nil), true
	}

	switch req.Type {
	case TypeHeartbeat:
		return Response{}, false
	case TypeQuery, TypeKPIs, TypeOptions:
	default:
		return errorResponse(req.ID, CodeUnknownType, "unknown message type "+strconv.Quote(req.Type), nil), true
	}

	ctx, cancel := context.WithTimeout(c.context(), c.settings.QueryTimeout)
	defer cancel()
	start := time.Now()

	var (
		data interface{}
		err  error
	)
	switch req.Type {
	case TypeQuery:
		data, err = c.service.Dashboard(ctx, req.Filter)
	case TypeKPIs:
		data, err = c.service.KPIs(ctx, req.Filter)
	case TypeOptions:
		data = c.service.Options(ctx, req.State)
	}
	if err != nil {
		return c.queryError(ctx, req, err), true
	}

	c.queriesServed++
	c.logger.DebugContext(ctx, "Live query answered",
		slog.String("type", req.Type),
		slog.String("request_id", req.ID),
		slog.Duration("duration", time.Since(start)))

	respType := req.Type
	if req.Type == TypeQuery {
		respType = TypeDashboard
	}
	return Response{Type: respType, ID: req.ID, Data: data}, true
}

func (c *Client) queryError(ctx context.Context, req Request, err error) Response {
	var invalid *filter.InvalidRequestError
	switch {
	case errors.As(err, &invalid):
		return errorResponse(req.ID, CodeInvalidFilter, invalid.Error(), invalid.Fields)
	case errors.Is(err, context.DeadlineExceeded):
		return errorResponse(req.ID, CodeTimeout, "query timed out", nil)
	default:
		c.logger.ErrorContext(ctx, "Live query failed",
			slog.String("type", req.Type),
			slog.String("error", err.Error()))
		return errorResponse(req.ID, CodeInternal, "query failed", nil)
	}
}

func errorResponse(id, code, message string, fields []filter.FieldError) Response {
	return Response{
		Type:  TypeError,
		ID:    id,
		Error: &ErrorBody{Code: code, Message: message, Fields: fields},
	}
}

// WritePump writes queued replies and keeps the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.settings.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.WarnContext(c.context(), "Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.context(), "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}
