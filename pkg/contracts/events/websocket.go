// Package events contains the websocket message contracts exchanged between
// the explorer dashboard and the server.
package events

import (
	"time"

	"cordexplorer/pkg/contracts/domain"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Client to server: the year-range control changed
	MessageTypeRangeChange MessageType = "range:change"
	MessageTypeHeartbeat   MessageType = "heartbeat"

	// Server to client
	MessageTypeViewUpdate MessageType = "view:update"
	MessageTypeConnect    MessageType = "connect"
	MessageTypeError      MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// RangeChange is the payload of a range:change message.
type RangeChange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// ConnectPayload is sent once when a client connects.
type ConnectPayload struct {
	ClientID string              `json:"client_id"`
	Bounds   domain.SliderBounds `json:"bounds"`
}

// ErrorPayload reports a failed range change back to the client.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewMessage builds a server message stamped with the current time.
func NewMessage(msgType MessageType, traceID string, data interface{}) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			Type:      msgType,
			Timestamp: time.Now().UTC(),
			TraceID:   traceID,
		},
		Data: data,
	}
}
