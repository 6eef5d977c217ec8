// Package engine runs the simulation loop: one background goroutine pulls
// candles, evaluates the breakout strategy and applies position transitions
// to the account store, then sleeps. Errors and panics inside a cycle
// abandon that cycle only; mutations already applied stand.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"breakoutbot/internal/account"
	"breakoutbot/internal/core"
	"breakoutbot/internal/metrics"
	"breakoutbot/internal/strategy"
)

// MarketData supplies candle series and the last trade price. A failed
// fetch must return an error instead of hanging; the loop treats it as a
// recoverable per-cycle condition.
type MarketData interface {
	Candles(ctx context.Context, interval string, limit int) ([]core.Candle, error)
	LastPrice(ctx context.Context) (float64, time.Time, error)
}

type Config struct {
	Symbol          string
	CoarseInterval  string
	FineInterval    string
	CoarseLimit     int
	FineLimit       int
	TriggerPct      float64
	ProfitTargetPct float64
	StopLossPct     float64
	FeeRate         float64
	NotionalUSDT    float64
	MaxPerSide      int
	CycleSleep      time.Duration
	StatusEvery     time.Duration
}

type Engine struct {
	cfg     Config
	market  MarketData
	store   *account.Store
	publish func(core.Event)

	lastStatus time.Time
}

func New(cfg Config, market MarketData, store *account.Store, publish func(core.Event)) *Engine {
	if publish == nil {
		publish = func(core.Event) {}
	}
	return &Engine{cfg: cfg, market: market, store: store, publish: publish}
}

// Run executes cycles until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	log.Info().
		Str("symbol", e.cfg.Symbol).
		Str("coarse", e.cfg.CoarseInterval).
		Str("fine", e.cfg.FineInterval).
		Msg("simulation started")
	e.publish(core.Event{Kind: core.EventStarted, TS: time.Now().UTC(),
		Detail: fmt.Sprintf("%s breakout simulation %s/%s", e.cfg.Symbol, e.cfg.CoarseInterval, e.cfg.FineInterval)})
	e.lastStatus = time.Now()

	for {
		if err := e.Cycle(ctx); err != nil {
			metrics.CycleErrors.Inc()
			log.Warn().Err(err).Msg("cycle abandoned")
		} else {
			metrics.Cycles.Inc()
		}
		select {
		case <-ctx.Done():
			log.Info().Msg("simulation stopped")
			return
		case <-time.After(e.cfg.CycleSleep):
		}
	}
}

// Cycle runs one pass: fetch, detect, select entry, admit, evaluate exits,
// record histories, emit events. Exported for tests.
func (e *Engine) Cycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()

	coarse, err := e.market.Candles(ctx, e.cfg.CoarseInterval, e.cfg.CoarseLimit)
	if err != nil {
		return fmt.Errorf("coarse candles: %w", err)
	}
	fine, err := e.market.Candles(ctx, e.cfg.FineInterval, e.cfg.FineLimit)
	if err != nil {
		return fmt.Errorf("fine candles: %w", err)
	}
	px, ts, err := e.market.LastPrice(ctx)
	if err != nil {
		return fmt.Errorf("last price: %w", err)
	}
	e.store.RecordPrice(ts, px)

	if sig, ok := strategy.Detect(coarse, e.cfg.TriggerPct); ok {
		e.tryEnter(sig, coarse, fine)
	}

	// Entries above are admitted before exits run, so a position opened
	// this cycle is evaluated against the same coarse close.
	lastClose := 0.0
	if len(coarse) > 0 {
		lastClose = coarse[len(coarse)-1].Close
	}
	if lastClose > 0 {
		closed := e.store.CloseEligible(lastClose, ts, e.cfg.ProfitTargetPct, e.cfg.StopLossPct, e.cfg.FeeRate)
		for i := range closed {
			ct := closed[i]
			metrics.TradesClosed.WithLabelValues(string(ct.Reason)).Inc()
			log.Info().
				Str("side", string(ct.Side)).
				Str("reason", string(ct.Reason)).
				Float64("exit", ct.ExitPrice).
				Float64("pnl", ct.RealizedPnLUSDT).
				Msg("position closed")
			e.publish(core.Event{Kind: core.EventExit, TS: ts, Trade: &ct, Price: lastClose})
		}
	}
	e.store.RecordCapital(ts)

	snap := e.store.Snapshot()
	metrics.Capital.Set(snap.Capital)
	metrics.OpenPositions.Set(float64(len(snap.Open)))

	if e.cfg.StatusEvery > 0 && time.Since(e.lastStatus) >= e.cfg.StatusEvery {
		e.lastStatus = time.Now()
		e.publish(core.Event{Kind: core.EventStatus, TS: ts,
			Price: px, Capital: snap.Capital, OpenCount: len(snap.Open)})
	}
	return nil
}

func (e *Engine) tryEnter(sig strategy.Signal, coarse, fine []core.Candle) {
	// Detect guarantees >= 2 coarse bars.
	winStart := coarse[len(coarse)-2].CloseTime
	winEnd := coarse[len(coarse)-1].CloseTime

	pos, ok := strategy.SelectEntry(sig, fine, winStart, winEnd, e.cfg.FeeRate, e.cfg.NotionalUSDT)
	if !ok {
		return
	}

	switch err := e.store.OpenPosition(pos, e.cfg.MaxPerSide); {
	case err == nil:
		metrics.TradesOpened.WithLabelValues(string(pos.Side)).Inc()
		log.Info().
			Str("side", string(pos.Side)).
			Float64("entry", pos.EntryPrice).
			Float64("qty", pos.Quantity).
			Msg("position opened")
		e.publish(core.Event{Kind: core.EventEntry, TS: pos.EntryTime, Position: &pos, Price: sig.Reference})
	case errors.Is(err, account.ErrInsufficientCapital), errors.Is(err, account.ErrPyramidingLimit):
		metrics.EntriesSkipped.WithLabelValues(skipReason(err)).Inc()
		log.Info().Str("side", string(pos.Side)).Str("reason", skipReason(err)).Msg("entry skipped")
		e.publish(core.Event{Kind: core.EventSkip, TS: pos.EntryTime, Position: &pos, Detail: err.Error()})
	default:
		log.Error().Err(err).Msg("open position")
	}
}

func skipReason(err error) string {
	if errors.Is(err, account.ErrInsufficientCapital) {
		return "capital"
	}
	return "pyramiding"
}
