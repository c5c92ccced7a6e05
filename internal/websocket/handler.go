package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"cordexplorer/internal/config"
)

// wsConn adapts *websocket.Conn to Connection.
type wsConn struct {
	*websocket.Conn
}

func (c wsConn) RemoteAddr() string {
	if addr := c.Conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// Handler upgrades dashboard connections and attaches them to the hub.
type Handler struct {
	hub       *Hub
	upgrader  websocket.Upgrader
	clientCfg ClientConfig
	logger    *slog.Logger
}

// NewHandler creates the upgrade handler. Requests without an Origin
// header, same-host origins and allowedOrigins are accepted.
func NewHandler(hub *Hub, cfg config.WebSocketConfig, allowedOrigins []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		hub:       hub,
		clientCfg: ClientConfigFrom(cfg),
		logger:    logger.With(slog.String("component", "websocket.handler")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r, allowedOrigins)
		},
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			h.logger.WarnContext(r.Context(), "websocket upgrade rejected",
				slog.Int("status", status),
				slog.String("reason", reason.Error()),
				slog.String("origin", r.Header.Get("Origin")))
			http.Error(w, http.StatusText(status), status)
		},
	}
	return h
}

func originAllowed(r *http.Request, allowed []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if strings.EqualFold(strings.TrimPrefix(strings.TrimPrefix(origin, "http://"), "https://"), r.Host) {
		return true
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

// ServeHTTP upgrades the request and starts the client's pumps.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := NewClient(context.WithoutCancel(r.Context()), h.hub, wsConn{conn}, h.clientCfg, h.logger)
	h.hub.Register(client)

	h.logger.DebugContext(client.context(), "websocket client connected",
		slog.String("client_id", client.id),
		slog.String("remote_addr", client.remoteAddr))

	go client.WritePump()
	go client.ReadPump()
}
