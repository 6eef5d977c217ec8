// Package web is the read-only presentation layer: dashboard HTML, JSON
// API, CSV export and a websocket push stream. Every handler works off a
// store snapshot; nothing here mutates simulation state.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"breakoutbot/internal/account"
	"breakoutbot/internal/core"
	"breakoutbot/internal/export"
	"breakoutbot/internal/metrics"
)

type Server struct {
	addr  string
	store *account.Store
	hub   *hub
	srv   *http.Server
}

func NewServer(addr string, store *account.Store) *Server {
	if addr == "" {
		addr = ":8080"
	}
	return &Server{addr: addr, store: store, hub: newHub()}
}

// PublishEvent forwards a loop event to connected websocket clients.
func (s *Server) PublishEvent(evt core.Event) { s.hub.broadcast(evt) }

// Router builds the gin handler; split out for httptest.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", s.handleDashboard)
	r.GET("/api/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "simulation running"})
	})
	r.GET("/api/status", s.handleStatus)
	r.GET("/api/state", s.handleState)
	r.GET("/api/trades.csv", s.handleTradesCSV)
	r.GET("/api/capital.csv", s.handleCapitalCSV)
	r.GET("/ws", func(c *gin.Context) { s.hub.subscribe(c.Writer, c.Request) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	return r
}

func (s *Server) Serve() error {
	gin.SetMode(gin.ReleaseMode)
	s.srv = &http.Server{Addr: s.addr, Handler: s.Router()}
	log.Info().Str("addr", s.addr).Msg("web listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

type statusResponse struct {
	CurrentPrice  float64   `json:"current_price"`
	Capital       float64   `json:"capital"`
	OpenTrades    int       `json:"open_trades"`
	LongTrades    int       `json:"long_trades"`
	ShortTrades   int       `json:"short_trades"`
	ClosedTrades  int       `json:"closed_trades"`
	UnrealizedPnL float64   `json:"unrealized_pnl"`
	LastUpdate    time.Time `json:"last_update"`
}

func (s *Server) handleStatus(c *gin.Context) {
	snap := s.store.Snapshot()
	resp := statusResponse{
		CurrentPrice: snap.LastPrice,
		Capital:      snap.Capital,
		OpenTrades:   len(snap.Open),
		LongTrades:   snap.OpenBySide(core.Long),
		ShortTrades:  snap.OpenBySide(core.Short),
		ClosedTrades: len(snap.Closed),
		LastUpdate:   snap.LastUpdate,
	}
	for _, p := range snap.Open {
		resp.UnrealizedPnL += p.UnrealizedPnL(snap.LastPrice)
	}
	c.JSON(http.StatusOK, resp)
}

type openPosition struct {
	core.Position
	UnrealizedPnLUSDT float64 `json:"unrealized_pnl_usdt"`
}

type stateResponse struct {
	Capital        float64            `json:"capital"`
	LastPrice      float64            `json:"last_price"`
	LastUpdate     time.Time          `json:"last_update"`
	Open           []openPosition     `json:"open_positions"`
	Closed         []core.ClosedTrade `json:"closed_trades"`
	PriceHistory   []account.Point    `json:"price_history"`
	CapitalHistory []account.Point    `json:"capital_history"`
}

func (s *Server) handleState(c *gin.Context) {
	snap := s.store.Snapshot()
	resp := stateResponse{
		Capital:        snap.Capital,
		LastPrice:      snap.LastPrice,
		LastUpdate:     snap.LastUpdate,
		Open:           make([]openPosition, 0, len(snap.Open)),
		Closed:         snap.Closed,
		PriceHistory:   snap.Prices.Points(),
		CapitalHistory: snap.Capitals.Points(),
	}
	for _, p := range snap.Open {
		resp.Open = append(resp.Open, openPosition{Position: p, UnrealizedPnLUSDT: p.UnrealizedPnL(snap.LastPrice)})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleTradesCSV(c *gin.Context) {
	snap := s.store.Snapshot()
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="trades.csv"`)
	if err := export.WriteTrades(c.Writer, snap.Closed); err != nil {
		log.Warn().Err(err).Msg("trades csv")
	}
}

func (s *Server) handleCapitalCSV(c *gin.Context) {
	snap := s.store.Snapshot()
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="capital.csv"`)
	if err := export.WriteSeries(c.Writer, "capital", snap.Capitals.Points()); err != nil {
		log.Warn().Err(err).Msg("capital csv")
	}
}
