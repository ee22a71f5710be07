package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-tracker/internal/dashboard"
	"crypto-tracker/internal/models"
	"crypto-tracker/internal/simulator"
	"crypto-tracker/internal/stream"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupServer(t *testing.T, cfg Config) (*Server, *dashboard.Dashboard) {
	t.Helper()
	d := dashboard.New(dashboard.DefaultConfig(), dashboard.Deps{
		Rand:   simulator.ConstSource(0.5),
		Logger: zerolog.Nop(),
	})
	t.Cleanup(d.Stop)
	cfg.Debug = true
	return New(d, cfg, zerolog.Nop()), d
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _ := setupServer(t, DefaultConfig())

	w := do(s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	var resp struct {
		Status     string `json:"status"`
		Components []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// The tick loop is not started.
	assert.Equal(t, "DEGRADED", resp.Status)
	require.Len(t, resp.Components, 3)
	assert.Equal(t, "goroutines", resp.Components[0].Name)
	assert.Equal(t, "ticker", resp.Components[2].Name)
	assert.Equal(t, "DEGRADED", resp.Components[2].Status)
}

func TestHealth_Running(t *testing.T) {
	s, d := setupServer(t, DefaultConfig())
	d.Start(context.Background())

	w := do(s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"HEALTHY"`)
}

func TestGetViews(t *testing.T) {
	s, _ := setupServer(t, DefaultConfig())

	tests := []struct {
		path   string
		status int
	}{
		{"/api/market", http.StatusOK},
		{"/api/recommendations", http.StatusOK},
		{"/api/allocation", http.StatusOK},
		{"/api/alerts", http.StatusOK},
		{"/api/portfolio", http.StatusOK},
		{"/api/history/BTC", http.StatusOK},
		{"/api/history/DOGE", http.StatusNotFound},
		{"/api/news", http.StatusOK},
		{"/api/view", http.StatusOK},
		{"/api/stats", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := do(s, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestGetMarket(t *testing.T) {
	s, _ := setupServer(t, DefaultConfig())

	w := do(s, http.MethodGet, "/api/market", "")
	require.Equal(t, http.StatusOK, w.Code)

	var entries []struct {
		Symbol string `json:"symbol"`
		Record struct {
			Price  float64 `json:"price"`
			Volume string  `json:"volume"`
		} `json:"record"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 10)
	assert.Equal(t, "BTC", entries[0].Symbol)
	assert.Equal(t, 43250.50, entries[0].Record.Price)
	assert.Equal(t, "23.4B", entries[0].Record.Volume)
}

func TestGetAllocation(t *testing.T) {
	s, _ := setupServer(t, DefaultConfig())

	w := do(s, http.MethodGet, "/api/allocation", "")
	var plan []models.AllocationSlot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plan))
	require.Len(t, plan, 5)
	total := 0
	for _, slot := range plan {
		total += slot.Percent
	}
	assert.Equal(t, 100, total)
}

func TestAlertLifecycle(t *testing.T) {
	s, d := setupServer(t, DefaultConfig())

	w := do(s, http.MethodPost, "/api/alerts", `{"symbol":"BTC","target_price":50000}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var alert models.Alert
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &alert))
	assert.Equal(t, models.DirectionAbove, alert.Direction)
	assert.Len(t, d.ActiveAlerts(), 1)

	w = do(s, http.MethodDelete, "/api/alerts/"+alert.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(s, http.MethodDelete, "/api/alerts/"+alert.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(s, http.MethodDelete, "/api/alerts/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCommandErrors(t *testing.T) {
	s, _ := setupServer(t, Config{RateLimit: 1000, RateBurst: 1000})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"negative target", http.MethodPost, "/api/alerts", `{"symbol":"BTC","target_price":-1}`, http.StatusBadRequest},
		{"unknown alert symbol", http.MethodPost, "/api/alerts", `{"symbol":"DOGE","target_price":1}`, http.StatusNotFound},
		{"zero quantity", http.MethodPost, "/api/holdings", `{"symbol":"BTC","quantity":0}`, http.StatusBadRequest},
		{"unknown holding symbol", http.MethodPost, "/api/holdings", `{"symbol":"DOGE","quantity":1}`, http.StatusNotFound},
		{"unknown select", http.MethodPost, "/api/select", `{"symbol":"DOGE"}`, http.StatusNotFound},
		{"bad view", http.MethodPost, "/api/view", `{"view":"charts"}`, http.StatusBadRequest},
		{"malformed", http.MethodPost, "/api/holdings", `{"symbol":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(s, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestCommands(t *testing.T) {
	s, d := setupServer(t, DefaultConfig())

	w := do(s, http.MethodPost, "/api/holdings", `{"symbol":"BTC","quantity":2}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"cost_basis_value":"86501"`)

	w = do(s, http.MethodPost, "/api/select", `{"symbol":"ETH"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ETH", d.ViewState().Selected)

	w = do(s, http.MethodPost, "/api/theme", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ThemeDark, d.ViewState().Theme)

	w = do(s, http.MethodPost, "/api/view", `{"view":"portfolio"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ViewPortfolio, d.ViewState().ActiveView)

	w = do(s, http.MethodGet, "/api/portfolio", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"current_value":"86501"`)
}

func TestRateLimit(t *testing.T) {
	s, _ := setupServer(t, Config{RateLimit: 0.001, RateBurst: 2})

	assert.Equal(t, http.StatusOK, do(s, http.MethodPost, "/api/theme", "").Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodPost, "/api/theme", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(s, http.MethodPost, "/api/theme", "").Code)

	// Reads are not limited.
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/api/view", "").Code)
}

func TestClientLimiter_EvictsIdleClients(t *testing.T) {
	l := newClientLimiter(1, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.lastSweep = now

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	now = now.Add(limiterIdleTTL / 2)
	assert.True(t, l.Allow("10.0.0.2"))
	assert.Len(t, l.clients, 2)

	// One TTL after the first client's last request it is swept; the second
	// is still within its TTL.
	now = now.Add(limiterIdleTTL / 2)
	l.Allow("10.0.0.3")
	assert.Len(t, l.clients, 2)
	assert.NotContains(t, l.clients, "10.0.0.1")
	assert.Contains(t, l.clients, "10.0.0.2")
}

func TestWebSocketStreamsUpdates(t *testing.T) {
	s, d := setupServer(t, DefaultConfig())
	d.StartHub(context.Background())

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return d.Stats().Hub.Subscribers == 1 }, time.Second, 5*time.Millisecond)
	require.True(t, d.Tick(context.Background()))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var u stream.Update
	require.NoError(t, conn.ReadJSON(&u))
	assert.Equal(t, uint64(1), u.Seq)
	assert.Equal(t, "BTC", u.Selected)
	assert.Len(t, u.Recommendations, 5)
}
