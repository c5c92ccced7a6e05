package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cordexplorer/internal/config"
	apperrors "cordexplorer/internal/errors"
	"cordexplorer/internal/services"
	"cordexplorer/internal/shared/testutil"
	"cordexplorer/pkg/contracts/events"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T, input string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.InputFile = input
	cfg.Server.Host = "127.0.0.1"
	cfg.Telemetry.TracingEnabled = false
	cfg.Telemetry.MetricsEnabled = true
	cfg.Security.RateLimit.Enabled = false
	return cfg
}

func newTestApp(t *testing.T) *Application {
	t.Helper()
	input := testutil.WriteMetadataCSV(t, testutil.SamplePapers()...)
	app, err := NewApplication(context.Background(), testConfig(t, input), quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.OTelProviders.Shutdown(context.Background()) })
	return app
}

func TestNewApplication(t *testing.T) {
	app := newTestApp(t)

	require.NotNil(t, app.Explorer)
	require.NotNil(t, app.WebSocketHub)
	require.NotNil(t, app.Router)
	assert.Equal(t, 5, app.Explorer.PaperCount())

	b := app.Explorer.Bounds()
	assert.Equal(t, 2019, b.Min)
	assert.Equal(t, 2021, b.Max)
	assert.Equal(t, 2020, b.Default.From)
	assert.Equal(t, 2021, b.Default.To)

	assert.Equal(t, "127.0.0.1:8501", app.Server.Addr)
	assert.Equal(t, app.Config.Server.ReadTimeout, app.Server.ReadTimeout)
}

func TestNewApplication_Failures(t *testing.T) {
	tests := []struct {
		name     string
		input    func(t *testing.T) string
		wantType apperrors.ErrorType
		wantIs   error
	}{
		{
			name:     "missing file",
			input:    func(t *testing.T) string { return t.TempDir() + "/absent.csv" },
			wantType: apperrors.ErrTypeLoad,
		},
		{
			name: "no usable years",
			input: func(t *testing.T) string {
				return testutil.WriteMetadataCSV(t,
					testutil.MetadataRow{Title: "Undated one", PublishTime: ""},
					testutil.MetadataRow{Title: "Undated two", PublishTime: "soon"},
				)
			},
			wantType: apperrors.ErrTypeValidation,
			wantIs:   services.ErrNoPublicationYears,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := NewApplication(context.Background(), testConfig(t, tt.input(t)), quietLogger())
			require.Error(t, err)
			assert.Nil(t, app)
			assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestApplication_Routes(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		method      string
		path        string
		wantStatus  int
		contentType string
	}{
		{http.MethodGet, "/", http.StatusOK, "text/html"},
		{http.MethodGet, "/api/health", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/health/ready", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/health/live", http.StatusOK, "application/json"},
		{http.MethodGet, "/healthz", http.StatusOK, "application/json"},
		{http.MethodGet, "/readyz", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/version", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/explorer/bounds", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/explorer/view?from=2019&to=2021", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/explorer/view?from=2021&to=2019", http.StatusBadRequest, "application/problem+json"},
		{http.MethodGet, "/api/explorer/charts/years.png", http.StatusOK, "image/png"},
		{http.MethodGet, "/api/explorer/export.csv", http.StatusOK, "text/csv"},
		{http.MethodGet, "/metrics", http.StatusOK, "text/plain"},
		{http.MethodGet, "/metrics/websocket", http.StatusOK, "application/json"},
		{http.MethodGet, "/nowhere", http.StatusNotFound, "application/problem+json"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			app.Router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), tt.contentType),
				"content type %q", rec.Header().Get("Content-Type"))
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestApplication_ClientLog(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/client-log",
		strings.NewReader(`{"level":"warn","message":"slow render","source":"dashboard"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/client-log",
		strings.NewReader(`{"message":"`+strings.Repeat("x", 70*1024)+`"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestApplication_MetricsRecordRoutes(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/explorer/bounds", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_route="/api/explorer/bounds"`)
	assert.Contains(t, rec.Body.String(), "dataset_rows_loaded_total")
}

func TestApplication_getCORSConfig(t *testing.T) {
	app := newTestApp(t)

	cors := app.getCORSConfig()
	assert.Equal(t, []string{"http://localhost:8501"}, cors.AllowedOrigins)
	assert.Contains(t, cors.AllowedMethods, http.MethodPost)
	assert.Contains(t, cors.ExposedHeaders, "X-Request-ID")
	assert.False(t, cors.AllowCredentials)
}

func TestApplication_Serve(t *testing.T) {
	app := newTestApp(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	resp, err := http.Get(base + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(base, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg events.WebSocketMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, events.MessageTypeConnect, msg.Type)

	require.NoError(t, conn.WriteJSON(events.WebSocketMessage{
		BaseMessage: events.BaseMessage{ID: "1", Type: events.MessageTypeRangeChange},
		Data:        events.RangeChange{From: 2020, To: 2020},
	}))
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, events.MessageTypeViewUpdate, msg.Type)
	assert.Equal(t, "1", msg.ID)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	// the hub closes websocket clients on shutdown
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestApplication_RunAddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	app := newTestApp(t)
	app.Server.Addr = ln.Addr().String()

	err = app.Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestNew_WithoutProviders(t *testing.T) {
	input := testutil.WriteMetadataCSV(t, testutil.SamplePapers()...)
	cfg := testConfig(t, input)
	loader := services.NewDatasetLoader(cfg.Dataset, nil, quietLogger())
	ds, err := loader.Load(context.Background(), input)
	require.NoError(t, err)

	app, err := New(cfg, ds.Clean.Papers, nil, nil, quietLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/explorer/view", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApplication_CompressesJSON(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/explorer/bounds/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}
