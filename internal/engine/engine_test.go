package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakoutbot/internal/account"
	"breakoutbot/internal/core"
	"breakoutbot/internal/data"
)

type stubMarket struct {
	coarse []core.Candle
	fine   []core.Candle
	px     float64
	ts     time.Time
	err    error
}

func (m *stubMarket) Candles(_ context.Context, interval string, _ int) ([]core.Candle, error) {
	if m.err != nil {
		return nil, m.err
	}
	if interval == "2h" {
		return m.coarse, nil
	}
	return m.fine, nil
}

func (m *stubMarket) LastPrice(context.Context) (float64, time.Time, error) {
	if m.err != nil {
		return 0, time.Time{}, m.err
	}
	return m.px, m.ts, nil
}

func testConfig() Config {
	return Config{
		Symbol:          "BTCUSDT",
		CoarseInterval:  "2h",
		FineInterval:    "30m",
		CoarseLimit:     50,
		FineLimit:       200,
		TriggerPct:      1.5,
		ProfitTargetPct: 10,
		StopLossPct:     3,
		FeeRate:         0.0004,
		NotionalUSDT:    10,
		MaxPerSide:      12,
		CycleSleep:      time.Millisecond,
	}
}

func coarseBar(low, high, close float64, closeTime time.Time) core.Candle {
	return core.Candle{OpenTime: closeTime.Add(-2 * time.Hour), CloseTime: closeTime,
		Open: close, High: high, Low: low, Close: close, Volume: 1}
}

func fineBar(close float64, closeTime time.Time) core.Candle {
	return core.Candle{OpenTime: closeTime.Add(-30 * time.Minute), CloseTime: closeTime,
		Open: close, High: close, Low: close, Close: close, Volume: 1}
}

func TestCycleOpensPullbackEntry(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	market := &stubMarket{
		coarse: []core.Candle{
			coarseBar(95, 96, 95.5, t0),
			coarseBar(99, 101, 100, t0.Add(2*time.Hour)),
		},
		fine: []core.Candle{
			fineBar(101, t0.Add(30*time.Minute)),
			fineBar(99, t0.Add(60*time.Minute)),
		},
		px: 100,
		ts: t0.Add(2 * time.Hour),
	}
	store := account.NewStore(100, 10)

	var events []core.Event
	eng := New(testConfig(), market, store, func(e core.Event) { events = append(events, e) })
	require.NoError(t, eng.Cycle(context.Background()))

	snap := store.Snapshot()
	require.Len(t, snap.Open, 1)
	p := snap.Open[0]
	assert.Equal(t, core.Long, p.Side)
	assert.InDelta(t, 99.0396, p.EntryPrice, 1e-9)
	assert.InDelta(t, 0.10097, p.Quantity, 1e-5)
	assert.Equal(t, 100.0, snap.Capital)
	assert.Equal(t, 100.0, snap.LastPrice)
	assert.Equal(t, 1, snap.Prices.Len())
	assert.Equal(t, 1, snap.Capitals.Len())

	require.Len(t, events, 1)
	assert.Equal(t, core.EventEntry, events[0].Kind)
	require.NotNil(t, events[0].Position)
	assert.Equal(t, p.ID, events[0].Position.ID)
}

func TestCycleClosesOnTakeProfit(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	market := &stubMarket{
		// No fresh breakout relative to a 108 low, and the coarse close of
		// 109 is what exits are evaluated against.
		coarse: []core.Candle{
			coarseBar(108, 110, 108.5, t0),
			coarseBar(108, 110, 109, t0.Add(2*time.Hour)),
		},
		fine: []core.Candle{fineBar(109, t0.Add(90*time.Minute))},
		px:   109,
		ts:   t0.Add(2 * time.Hour),
	}
	store := account.NewStore(100, 10)
	require.NoError(t, store.OpenPosition(core.Position{
		Side: core.Long, EntryPrice: 99.0396, EntryTime: t0,
		Quantity: 10 / 99.0396, NotionalUSDT: 10,
	}, 12))

	var events []core.Event
	eng := New(testConfig(), market, store, func(e core.Event) { events = append(events, e) })
	require.NoError(t, eng.Cycle(context.Background()))

	snap := store.Snapshot()
	assert.Empty(t, snap.Open)
	require.Len(t, snap.Closed, 1)
	ct := snap.Closed[0]
	assert.Equal(t, core.TakeProfit, ct.Reason)
	assert.InDelta(t, 108.9564, ct.ExitPrice, 1e-4)
	assert.InDelta(t, 1.0013, ct.RealizedPnLUSDT, 1e-3)
	assert.InDelta(t, 101.0013, snap.Capital, 1e-3)

	require.Len(t, events, 1)
	assert.Equal(t, core.EventExit, events[0].Kind)
}

// A position admitted this cycle is evaluated against the same coarse
// close: with a tight profit target the entry and exit land in one cycle.
func TestCycleSameCycleEntryAndExit(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	market := &stubMarket{
		coarse: []core.Candle{
			coarseBar(95, 96, 95.5, t0),
			coarseBar(99, 101, 100, t0.Add(2*time.Hour)),
		},
		fine: []core.Candle{fineBar(99, t0.Add(60*time.Minute))},
		px:   100,
		ts:   t0.Add(2 * time.Hour),
	}
	store := account.NewStore(100, 10)

	cfg := testConfig()
	cfg.ProfitTargetPct = 0.5 // entry at 99.0396 vs close 100 is ~0.97%

	var kinds []core.EventKind
	eng := New(cfg, market, store, func(e core.Event) { kinds = append(kinds, e.Kind) })
	require.NoError(t, eng.Cycle(context.Background()))

	snap := store.Snapshot()
	assert.Empty(t, snap.Open)
	require.Len(t, snap.Closed, 1)
	assert.Equal(t, []core.EventKind{core.EventEntry, core.EventExit}, kinds)
}

func TestCycleSkipsWhenCapitalTooLow(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	market := &stubMarket{
		coarse: []core.Candle{
			coarseBar(95, 96, 95.5, t0),
			coarseBar(99, 101, 100, t0.Add(2*time.Hour)),
		},
		fine: []core.Candle{fineBar(99, t0.Add(60*time.Minute))},
		px:   100,
		ts:   t0.Add(2 * time.Hour),
	}
	store := account.NewStore(5, 10) // below the 10 USDT notional

	var events []core.Event
	eng := New(testConfig(), market, store, func(e core.Event) { events = append(events, e) })
	require.NoError(t, eng.Cycle(context.Background()))

	snap := store.Snapshot()
	assert.Empty(t, snap.Open)
	assert.Empty(t, snap.Closed)
	require.Len(t, events, 1)
	assert.Equal(t, core.EventSkip, events[0].Kind)
}

func TestCycleAbandonedOnFetchFailure(t *testing.T) {
	market := &stubMarket{err: data.ErrUnavailable}
	store := account.NewStore(100, 10)

	eng := New(testConfig(), market, store, nil)
	err := eng.Cycle(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, data.ErrUnavailable))

	snap := store.Snapshot()
	assert.Empty(t, snap.Open)
	assert.Equal(t, 0, snap.Prices.Len())
	assert.Equal(t, 0, snap.Capitals.Len())
	assert.Equal(t, 100.0, snap.Capital)
}

func TestRunStopsOnCancel(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	market := &stubMarket{
		coarse: []core.Candle{
			coarseBar(99, 101, 100, t0),
			coarseBar(99, 101, 100, t0.Add(2*time.Hour)),
		},
		fine: []core.Candle{fineBar(100, t0.Add(time.Hour))},
		px:   100,
		ts:   t0.Add(2 * time.Hour),
	}
	store := account.NewStore(100, 10)
	eng := New(testConfig(), market, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		eng.Run(ctx)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("engine did not stop on cancel")
	}
}
