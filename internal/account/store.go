// Package account holds the shared simulation state: capital, open
// positions, the closed-trade log and the bounded price/capital histories.
// The simulation loop is the only writer; the web layer reads through
// Snapshot copies and never sees a half-applied transition.
package account

import (
	"errors"
	"sync"
	"time"

	"breakoutbot/internal/core"
)

// Expected admission rejections, not faults.
var (
	ErrInsufficientCapital = errors.New("capital below per-trade notional")
	ErrPyramidingLimit     = errors.New("per-side position limit reached")
)

// State is the full account state. Fields are owned by the Store; readers
// only ever get deep copies.
type State struct {
	Capital    float64            `json:"capital"`
	Open       []core.Position    `json:"open_positions"`
	Closed     []core.ClosedTrade `json:"closed_trades"`
	Prices     Series             `json:"-"`
	Capitals   Series             `json:"-"`
	LastPrice  float64            `json:"last_price"`
	LastUpdate time.Time          `json:"last_update"`
}

// OpenBySide counts open positions on one side.
func (st State) OpenBySide(side core.Side) int {
	n := 0
	for _, p := range st.Open {
		if p.Side == side {
			n++
		}
	}
	return n
}

type Store struct {
	mu sync.RWMutex
	st State
}

func NewStore(startCapital float64, historyLen int) *Store {
	return &Store{st: State{
		Capital:  startCapital,
		Prices:   NewSeries(historyLen),
		Capitals: NewSeries(historyLen),
	}}
}

// Apply runs a mutation atomically with respect to readers.
func (s *Store) Apply(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.st)
}

// Snapshot returns a deep copy of the state. Safe to read and marshal
// while the loop keeps writing.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.st
	out.Open = make([]core.Position, len(s.st.Open))
	copy(out.Open, s.st.Open)
	out.Closed = make([]core.ClosedTrade, len(s.st.Closed))
	copy(out.Closed, s.st.Closed)
	out.Prices = s.st.Prices.clone()
	out.Capitals = s.st.Capitals.clone()
	return out
}

// OpenPosition admits a candidate entry. Capital must cover the notional
// and the side must be under maxPerSide; capital is not debited at entry
// (paper-margin accounting: it only moves on realized PnL at close).
func (s *Store) OpenPosition(p core.Position, maxPerSide int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.Capital < p.NotionalUSDT {
		return ErrInsufficientCapital
	}
	if s.st.OpenBySide(p.Side) >= maxPerSide {
		return ErrPyramidingLimit
	}
	s.st.Open = append(s.st.Open, p)
	return nil
}

// CloseEligible evaluates every open position against one price snapshot px
// and closes those crossing the profit target or stop loss. For each close,
// the exit fee, realized PnL, capital update, closed-trade append and
// open-set removal are applied under the same lock, so no reader observes a
// position in neither or both sets.
func (s *Store) CloseEligible(px float64, ts time.Time, tpPct, slPct, feeRate float64) []core.ClosedTrade {
	s.mu.Lock()
	defer s.mu.Unlock()

	var closed []core.ClosedTrade
	remaining := s.st.Open[:0]
	for _, p := range s.st.Open {
		reason, ok := exitReason(p, px, tpPct, slPct)
		if !ok {
			remaining = append(remaining, p)
			continue
		}

		exit := px * (1 - feeRate)
		if p.Side == core.Short {
			exit = px * (1 + feeRate)
		}
		pnl := (exit - p.EntryPrice) * p.NotionalUSDT / p.EntryPrice
		if p.Side == core.Short {
			pnl = (p.EntryPrice - exit) * p.NotionalUSDT / p.EntryPrice
		}

		s.st.Capital += pnl
		ct := core.ClosedTrade{
			Position:        p,
			ExitPrice:       exit,
			ExitTime:        ts,
			Reason:          reason,
			RealizedPnLUSDT: pnl,
		}
		s.st.Closed = append(s.st.Closed, ct)
		closed = append(closed, ct)
	}
	s.st.Open = remaining
	return closed
}

func exitReason(p core.Position, px, tpPct, slPct float64) (core.CloseReason, bool) {
	if p.EntryPrice == 0 {
		return "", false
	}
	pnlPct := (px - p.EntryPrice) / p.EntryPrice * 100
	if p.Side == core.Short {
		pnlPct = (p.EntryPrice - px) / p.EntryPrice * 100
	}
	switch {
	case pnlPct >= tpPct:
		return core.TakeProfit, true
	case pnlPct <= -slPct:
		return core.StopLoss, true
	}
	return "", false
}

// RecordPrice appends to the bounded price history and refreshes the last
// known price for read-time PnL derivation.
func (s *Store) RecordPrice(ts time.Time, px float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Prices.Append(ts, px)
	s.st.LastPrice = px
	s.st.LastUpdate = ts
}

// RecordCapital appends the current capital to the bounded capital history.
func (s *Store) RecordCapital(ts time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Capitals.Append(ts, s.st.Capital)
}
