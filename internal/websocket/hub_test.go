package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cordexplorer/internal/config"
	apperrors "cordexplorer/internal/errors"
	"cordexplorer/pkg/contracts/domain"
	"cordexplorer/pkg/contracts/events"
)

var testBounds = domain.SliderBounds{Min: 2019, Max: 2022, Default: domain.YearRange{From: 2020, To: 2021}}

type fakeProvider struct {
	calls atomic.Int32
}

func (f *fakeProvider) Bounds() domain.SliderBounds { return testBounds }

func (f *fakeProvider) View(ctx context.Context, r domain.YearRange, transport string) (*domain.ExplorerView, error) {
	f.calls.Add(1)
	if r.From > r.To || r.From < testBounds.Min || r.To > testBounds.Max {
		return nil, apperrors.InvalidRange(r.From, r.To, testBounds.Min, testBounds.Max)
	}
	return &domain.ExplorerView{Range: r, Matched: r.To - r.From + 1}, nil
}

type received struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	TraceID string          `json:"trace_id"`
	Data    json.RawMessage `json:"data"`
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClientConfig() ClientConfig {
	return ClientConfig{
		WriteWait:      time.Second,
		PongWait:       time.Minute,
		PingPeriod:     50 * time.Second,
		MaxMessageSize: 4096,
	}
}

func startHub(t *testing.T, provider ViewProvider) *Hub {
	t.Helper()
	hub := NewHub(provider, nil, quietLogger())
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

func connectMock(t *testing.T, hub *Hub) (*Client, *MockConnection) {
	t.Helper()
	conn := NewMockConnection()
	client := NewClient(context.Background(), hub, conn, testClientConfig(), quietLogger())
	hub.Register(client)
	go client.WritePump()
	go client.ReadPump()

	msg := next(t, conn)
	require.Equal(t, string(events.MessageTypeConnect), msg.Type)
	return client, conn
}

func next(t *testing.T, conn *MockConnection) received {
	t.Helper()
	select {
	case data := <-conn.Written():
		var msg received
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return received{}
	}
}

func TestHub_ConnectMessage(t *testing.T) {
	hub := startHub(t, &fakeProvider{})
	conn := NewMockConnection()
	client := NewClient(context.Background(), hub, conn, testClientConfig(), quietLogger())
	hub.Register(client)
	go client.WritePump()

	msg := next(t, conn)
	assert.Equal(t, string(events.MessageTypeConnect), msg.Type)
	assert.NotEmpty(t, msg.TraceID)

	var payload events.ConnectPayload
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Equal(t, client.ID(), payload.ClientID)
	assert.Equal(t, testBounds, payload.Bounds)
	assert.Equal(t, 1, hub.ClientCount())
}

func TestClient_RangeChange(t *testing.T) {
	provider := &fakeProvider{}
	hub := startHub(t, provider)
	_, conn := connectMock(t, hub)

	conn.AddReadMessage([]byte(`{"id":"r1","type":"range:change","data":{"from":2020,"to":2021}}`))
	msg := next(t, conn)
	assert.Equal(t, string(events.MessageTypeViewUpdate), msg.Type)
	assert.Equal(t, "r1", msg.ID)

	var view domain.ExplorerView
	require.NoError(t, json.Unmarshal(msg.Data, &view))
	assert.Equal(t, domain.YearRange{From: 2020, To: 2021}, view.Range)
	assert.Equal(t, 2, view.Matched)
	assert.Equal(t, int64(1), hub.Stats().ViewsServed)
}

func TestClient_ErrorReplies(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		wantCode string
	}{
		{"inverted range", `{"id":"a","type":"range:change","data":{"from":2021,"to":2020}}`, "INVALID_YEAR_RANGE"},
		{"out of bounds", `{"id":"b","type":"range:change","data":{"from":1990,"to":2020}}`, "INVALID_YEAR_RANGE"},
		{"bad payload", `{"id":"c","type":"range:change","data":{"from":"x"}}`, CodeInvalidMessage},
		{"unknown type", `{"id":"d","type":"subscribe"}`, CodeUnknownType},
		{"not json", `range please`, CodeInvalidMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := startHub(t, &fakeProvider{})
			_, conn := connectMock(t, hub)

			conn.AddReadMessage([]byte(tt.message))
			msg := next(t, conn)
			assert.Equal(t, string(events.MessageTypeError), msg.Type)

			var payload events.ErrorPayload
			require.NoError(t, json.Unmarshal(msg.Data, &payload))
			assert.Equal(t, tt.wantCode, payload.Code)
			assert.NotEmpty(t, payload.Message)
		})
	}
}

func TestClient_HeartbeatIgnored(t *testing.T) {
	provider := &fakeProvider{}
	hub := startHub(t, provider)
	_, conn := connectMock(t, hub)

	conn.AddReadMessage([]byte(`{"type":"heartbeat"}`))
	conn.AddReadMessage([]byte(`{"id":"after","type":"range:change","data":{"from":2019,"to":2019}}`))

	msg := next(t, conn)
	assert.Equal(t, "after", msg.ID)
	assert.Equal(t, int32(1), provider.calls.Load())
}

func TestHub_UpdatesArePerClient(t *testing.T) {
	hub := startHub(t, &fakeProvider{})
	_, connA := connectMock(t, hub)
	_, connB := connectMock(t, hub)
	require.Equal(t, 2, hub.ClientCount())

	connA.AddReadMessage([]byte(`{"id":"only-a","type":"range:change","data":{"from":2020,"to":2020}}`))
	assert.Equal(t, "only-a", next(t, connA).ID)

	select {
	case data := <-connB.Written():
		t.Fatalf("client B received %s", data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub := startHub(t, &fakeProvider{})
	_, conn := connectMock(t, hub)
	require.Equal(t, 1, hub.ClientCount())

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), hub.Stats().TotalConnections)
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub(&fakeProvider{}, nil, quietLogger())
	hub.Start()
	hub.Start()

	_, conn := connectMock(t, hub)

	hub.Stop()
	hub.Stop()

	assert.Equal(t, 0, hub.ClientCount())
	assert.Eventually(t, conn.IsClosed, 2*time.Second, 10*time.Millisecond)
}

func TestOriginAllowed(t *testing.T) {
	allowed := []string{"http://localhost:8501"}

	tests := []struct {
		origin string
		host   string
		want   bool
	}{
		{"", "example.com", true},
		{"http://localhost:8501", "127.0.0.1:8501", true},
		{"http://dash.example:8501", "dash.example:8501", true},
		{"http://evil.example", "dash.example:8501", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		req.Host = tt.host
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.want, originAllowed(req, allowed), tt.origin)
	}
}

func TestHandler_RoundTrip(t *testing.T) {
	hub := startHub(t, &fakeProvider{})
	srv := httptest.NewServer(NewHandler(hub, config.Default().WebSocket, nil, quietLogger()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var connect received
	require.NoError(t, conn.ReadJSON(&connect))
	assert.Equal(t, string(events.MessageTypeConnect), connect.Type)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"id":   "rt",
		"type": events.MessageTypeRangeChange,
		"data": events.RangeChange{From: 2021, To: 2022},
	}))

	var update received
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, string(events.MessageTypeViewUpdate), update.Type)
	assert.Equal(t, "rt", update.ID)
}
