package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakoutbot/internal/account"
	"breakoutbot/internal/core"
)

func seededStore(t *testing.T) *account.Store {
	t.Helper()
	store := account.NewStore(100, 10)
	require.NoError(t, store.OpenPosition(core.Position{
		ID:           uuid.New(),
		Side:         core.Long,
		EntryPrice:   99.0396,
		EntryTime:    time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		Quantity:     10 / 99.0396,
		NotionalUSDT: 10,
	}, 12))
	require.NoError(t, store.OpenPosition(core.Position{
		ID:           uuid.New(),
		Side:         core.Short,
		EntryPrice:   120,
		EntryTime:    time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC),
		Quantity:     10.0 / 120,
		NotionalUSDT: 10,
	}, 12))
	store.RecordPrice(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC), 100)
	store.RecordCapital(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	return store
}

func newTestServer(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := NewServer(":0", seededStore(t))
	return srv, srv.Router()
}

func TestPing(t *testing.T) {
	_, router := newTestServer(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "success")
}

func TestStatus(t *testing.T) {
	_, router := newTestServer(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		CurrentPrice  float64 `json:"current_price"`
		Capital       float64 `json:"capital"`
		OpenTrades    int     `json:"open_trades"`
		LongTrades    int     `json:"long_trades"`
		ShortTrades   int     `json:"short_trades"`
		UnrealizedPnL float64 `json:"unrealized_pnl"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 100.0, resp.CurrentPrice)
	assert.Equal(t, 100.0, resp.Capital)
	assert.Equal(t, 2, resp.OpenTrades)
	assert.Equal(t, 1, resp.LongTrades)
	assert.Equal(t, 1, resp.ShortTrades)
	// long: (100-99.0396)*10/99.0396 ≈ 0.0970; short: (120-100)*10/120 ≈ 1.6667
	assert.InDelta(t, 1.7637, resp.UnrealizedPnL, 1e-3)
}

func TestState(t *testing.T) {
	_, router := newTestServer(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp stateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 100.0, resp.Capital)
	require.Len(t, resp.Open, 2)
	assert.InDelta(t, 0.0970, resp.Open[0].UnrealizedPnLUSDT, 1e-3)
	assert.Len(t, resp.PriceHistory, 1)
	assert.Len(t, resp.CapitalHistory, 1)
	assert.Empty(t, resp.Closed)
}

func TestTradesCSV(t *testing.T) {
	srv, router := newTestServer(t)
	srv.store.CloseEligible(130, time.Now(), 10, 3, 0.0004)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/trades.csv", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 3) // header + long TP + short SL
	assert.True(t, strings.HasPrefix(lines[0], "id,side,entry_time"))
}

func TestCapitalCSV(t *testing.T) {
	_, router := newTestServer(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/capital.csv", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "ts,capital")
}

func TestDashboard(t *testing.T) {
	_, router := newTestServer(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "Breakout Bot Dashboard")
	assert.Contains(t, body, "LONG")
	assert.Contains(t, body, "SHORT")
	assert.Contains(t, body, "99.04")
}

func TestMetricsExposed(t *testing.T) {
	_, router := newTestServer(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "breakoutbot_")
}
