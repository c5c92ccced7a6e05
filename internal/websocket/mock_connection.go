package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrMockClosed is returned by a MockConnection after Close.
var ErrMockClosed = errors.New("connection closed")

// MockConnection is an in-memory Connection for tests. Reads block until a
// message is queued with AddReadMessage or the connection is closed.
type MockConnection struct {
	mu sync.Mutex

	inbound chan []byte
	written chan []byte
	closeCh chan struct{}
	closed  bool

	// WriteErr, when set, fails every write.
	WriteErr error

	RemoteAddress string
	ReadLimit     int64
	ReadDeadline  time.Time
	WriteDeadline time.Time
	PongHandler   func(string) error
}

// NewMockConnection creates a new mock connection
func NewMockConnection() *MockConnection {
	return &MockConnection{
		inbound:       make(chan []byte, 16),
		written:       make(chan []byte, 64),
		closeCh:       make(chan struct{}),
		RemoteAddress: "127.0.0.1:8080",
	}
}

// AddReadMessage queues a text message for ReadMessage.
func (m *MockConnection) AddReadMessage(data []byte) {
	m.inbound <- data
}

// Written returns the channel of text frames written to the connection.
func (m *MockConnection) Written() <-chan []byte {
	return m.written
}

// IsClosed reports whether Close was called.
func (m *MockConnection) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// WriteMessage implements Connection.WriteMessage. Control frames are
// accepted and discarded.
func (m *MockConnection) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrMockClosed
	}
	if m.WriteErr != nil {
		return m.WriteErr
	}
	if messageType == websocket.TextMessage {
		select {
		case m.written <- append([]byte(nil), data...):
		default:
			return errors.New("mock write buffer full")
		}
	}
	return nil
}

// ReadMessage implements Connection.ReadMessage
func (m *MockConnection) ReadMessage() (int, []byte, error) {
	select {
	case data := <-m.inbound:
		return websocket.TextMessage, data, nil
	case <-m.closeCh:
		return 0, nil, ErrMockClosed
	}
}

// Close implements Connection.Close
func (m *MockConnection) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.closeCh)
	}
	return nil
}

// SetReadDeadline implements Connection.SetReadDeadline
func (m *MockConnection) SetReadDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadDeadline = t
	return nil
}

// SetWriteDeadline implements Connection.SetWriteDeadline
func (m *MockConnection) SetWriteDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteDeadline = t
	return nil
}

// SetReadLimit implements Connection.SetReadLimit
func (m *MockConnection) SetReadLimit(limit int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadLimit = limit
}

// SetPongHandler implements Connection.SetPongHandler
func (m *MockConnection) SetPongHandler(h func(string) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PongHandler = h
}

// RemoteAddr implements Connection.RemoteAddr
func (m *MockConnection) RemoteAddr() string {
	return m.RemoteAddress
}
