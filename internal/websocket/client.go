package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"cordexplorer/internal/config"
	apperrors "cordexplorer/internal/errors"
	"cordexplorer/internal/infrastructure"
	"cordexplorer/pkg/contracts/domain"
	"cordexplorer/pkg/contracts/events"
)

// Error codes sent back in error messages.
const (
	CodeInvalidMessage = "INVALID_MESSAGE"
	CodeUnknownType    = "UNKNOWN_MESSAGE_TYPE"
	CodeViewFailed     = "VIEW_FAILED"
)

// ClientConfig holds connection timing and limits.
type ClientConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration
	// Time allowed to read the next pong message from the peer
	PongWait time.Duration
	// Send pings to peer with this period. Must be less than PongWait
	PingPeriod time.Duration
	// Maximum message size allowed from peer
	MaxMessageSize int64
	// Outbound queue length before the client is considered stuck
	SendBuffer int
}

// ClientConfigFrom maps the websocket section of the application config.
func ClientConfigFrom(cfg config.WebSocketConfig) ClientConfig {
	return ClientConfig{
		WriteWait:      10 * time.Second,
		PongWait:       cfg.PongWait,
		PingPeriod:     cfg.PingPeriod,
		MaxMessageSize: cfg.MaxMessageSize,
		SendBuffer:     16,
	}
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub  *Hub
	conn Connection
	cfg  ClientConfig

	// Buffered channel of outbound messages
	send   chan []byte
	sendMu sync.Mutex
	closed bool

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time
	baseCtx     context.Context

	logger *slog.Logger
}

type inboundMessage struct {
	ID   string             `json:"id,omitempty"`
	Type events.MessageType `json:"type"`
	Data json.RawMessage    `json:"data,omitempty"`
}

// NewClient wraps conn. ctx carries request-scoped values such as the
// trace ID; it must not be cancelled when the upgrade handler returns.
func NewClient(ctx context.Context, hub *Hub, conn Connection, cfg ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 16
	}

	id := uuid.New().String()
	traceID := infrastructure.GetTraceID(ctx)
	if traceID == "" {
		traceID = id
		ctx = infrastructure.WithTraceID(ctx, traceID)
	}

	return &Client{
		hub:         hub,
		conn:        conn,
		cfg:         cfg,
		send:        make(chan []byte, cfg.SendBuffer),
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		baseCtx:     ctx,
		logger: logger.With(
			slog.String("component", "websocket.client"),
			slog.String("client_id", id),
		),
	}
}

// ID returns the client identifier sent in the connect message.
func (c *Client) ID() string {
	return c.id
}

func (c *Client) context() context.Context {
	return c.baseCtx
}

func (c *Client) connectedFor() time.Duration {
	return time.Since(c.connectedAt)
}

// sendMessage queues msg without blocking. A full queue drops the client.
func (c *Client) sendMessage(msg events.WebSocketMessage) bool {
	data, err := marshal(msg)
	if err != nil {
		c.logger.ErrorContext(c.baseCtx, "failed to marshal message",
			slog.String("type", string(msg.Type)),
			slog.String("error", err.Error()))
		return false
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		c.logger.WarnContext(c.baseCtx, "client send buffer full, dropping message",
			slog.String("type", string(msg.Type)))
		return false
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads range changes from the peer and answers each with a view
// update for this client only. It returns when the connection fails.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
		c.logger.DebugContext(c.baseCtx, "read pump stopped",
			slog.Duration("connection_duration", c.connectedFor()))
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.WarnContext(c.baseCtx, "unexpected websocket close",
					slog.String("error", err.Error()))
			}
			return
		}
		c.handleMessage(raw)
	}
}

func (c *Client) handleMessage(raw []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("", CodeInvalidMessage, "message is not valid JSON")
		return
	}

	switch msg.Type {
	case events.MessageTypeHeartbeat:
		return
	case events.MessageTypeRangeChange:
		c.handleRangeChange(msg)
	default:
		c.sendError(msg.ID, CodeUnknownType, "unsupported message type "+string(msg.Type))
	}
}

func (c *Client) handleRangeChange(msg inboundMessage) {
	var change events.RangeChange
	if err := json.Unmarshal(msg.Data, &change); err != nil {
		c.sendError(msg.ID, CodeInvalidMessage, "range:change needs integer from and to")
		return
	}

	view, err := c.hub.provider.View(c.baseCtx, domain.YearRange{From: change.From, To: change.To}, TransportName)
	if err != nil {
		c.hub.viewErrors.Add(1)
		code, message := CodeViewFailed, "failed to compute view"
		var apiErr *apperrors.APIError
		if errors.As(err, &apiErr) {
			code, message = apiErr.ErrorCode, apiErr.Message
		}
		c.logger.WarnContext(c.baseCtx, "range change rejected",
			slog.Int("from", change.From),
			slog.Int("to", change.To),
			slog.String("error", err.Error()))
		c.sendError(msg.ID, code, message)
		return
	}

	c.hub.viewsServed.Add(1)
	reply := events.NewMessage(events.MessageTypeViewUpdate, c.traceID, view)
	reply.ID = msg.ID
	c.sendMessage(reply)
}

func (c *Client) sendError(id, code, message string) {
	reply := events.NewMessage(events.MessageTypeError, c.traceID, events.ErrorPayload{
		Code:    code,
		Message: message,
	})
	reply.ID = id
	c.sendMessage(reply)
}

// WritePump pumps messages from the hub to the websocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.WarnContext(c.baseCtx, "websocket write failed",
					slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.baseCtx, "failed to send ping",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}
