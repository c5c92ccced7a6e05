package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"cordexplorer/internal/infrastructure"
	"cordexplorer/pkg/contracts/events"
)

// TransportName labels view renders requested over websocket.
const TransportName = "websocket"

// Hub tracks connected dashboard clients. Each client gets its own view
// updates; the hub never broadcasts a view computed for someone else.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client

	provider ViewProvider
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger

	mu      sync.RWMutex
	running bool
	quit    chan struct{}
	done    chan struct{}

	totalConnections atomic.Int64
	viewsServed      atomic.Int64
	viewErrors       atomic.Int64
}

// HubStats is a snapshot of hub counters.
type HubStats struct {
	ActiveClients    int   `json:"active_clients"`
	TotalConnections int64 `json:"total_connections"`
	ViewsServed      int64 `json:"views_served"`
	ViewErrors       int64 `json:"view_errors"`
}

// NewHub creates a hub that answers range changes from provider. metrics
// may be nil.
func NewHub(provider ViewProvider, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		provider:   provider,
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "websocket.hub")),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop in its own goroutine. It is idempotent.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.running = true
	go h.Run()
}

// Run is the hub's main loop; it returns after Stop.
func (h *Hub) Run() {
	defer close(h.done)
	ctx := context.Background()

	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				client.closeSend()
				delete(h.clients, client)
				h.recordClients(ctx, -1)
			}
			h.mu.Unlock()
			h.logger.Info("hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			h.totalConnections.Add(1)
			h.recordClients(ctx, 1)

			cctx := client.context()
			h.logger.InfoContext(cctx, "client registered",
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr),
				slog.Int("total_clients", count))

			client.sendMessage(events.NewMessage(events.MessageTypeConnect, client.traceID, events.ConnectPayload{
				ClientID: client.id,
				Bounds:   h.provider.Bounds(),
			}))

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				client.closeSend()
			}
			count := len(h.clients)
			h.mu.Unlock()
			if !ok {
				continue
			}
			h.recordClients(ctx, -1)

			h.logger.InfoContext(client.context(), "client unregistered",
				slog.String("client_id", client.id),
				slog.Int("total_clients", count),
				slog.Duration("connection_duration", client.connectedFor()))
		}
	}
}

func (h *Hub) recordClients(ctx context.Context, delta int64) {
	if h.metrics != nil {
		h.metrics.WebSocketClients.Add(ctx, delta)
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
		client.closeSend()
	}
}

// Unregister removes a client; it is a no-op once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns the current hub counters.
func (h *Hub) Stats() HubStats {
	return HubStats{
		ActiveClients:    h.ClientCount(),
		TotalConnections: h.totalConnections.Load(),
		ViewsServed:      h.viewsServed.Load(),
		ViewErrors:       h.viewErrors.Load(),
	}
}

// Stop closes every client and ends Run. It is idempotent.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
	<-h.done
}

func marshal(msg events.WebSocketMessage) ([]byte, error) {
	return json.Marshal(msg)
}
