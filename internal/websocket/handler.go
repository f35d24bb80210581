package websocket

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"salespulse/internal/config"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/infrastructure"
	"salespulse/internal/middleware"
)

// Handler upgrades HTTP requests to live query connections
type Handler struct {
	hub          *Hub
	upgrader     websocket.Upgrader
	service      QueryService
	settings     Settings
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewHandler creates the websocket endpoint. Browser origins are checked
// against allowedOrigins; requests without an Origin header are accepted.
func NewHandler(hub *Hub, service QueryService, cfg config.WebSocketConfig, queryTimeout time.Duration, allowedOrigins []string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	h := &Handler{
		hub:     hub,
		service: service,
		settings: Settings{
			PongWait:       cfg.PongWait,
			PingPeriod:     cfg.PingPeriod,
			MaxMessageSize: cfg.MaxMessageSize,
			QueryTimeout:   queryTimeout,
		},
		logger:       logger.With(slog.String("component", "websocket.handler")),
		errorHandler: errorHandler,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || middleware.OriginAllowed(allowedOrigins, origin)
		},
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			h.errorHandler.HandleError(w, r, apierrors.ErrWebSocketUpgrade.WithStatus(status).WithDetails(reason.Error()))
		},
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader already reported the failure through Error
		h.logger.WarnContext(r.Context(), "WebSocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()))
		return
	}

	client := NewClient(h.hub, gorillaConn{conn}, h.service, h.settings, middleware.GetReqID(r.Context()), h.logger)
	if !h.hub.Register(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
