package data

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"breakoutbot/internal/core"
)

// Sim is a random-walk market for development runs without exchange
// connectivity. Candle series are regenerated per call around the current
// walk price; good enough to exercise the whole loop.
type Sim struct {
	mu  sync.Mutex
	r   *rand.Rand
	px  float64
	vol float64
}

func NewSim(startPrice, vol float64, seed int64) *Sim {
	return &Sim{r: rand.New(rand.NewSource(seed)), px: startPrice, vol: vol}
}

func (s *Sim) Candles(_ context.Context, interval string, limit int) ([]core.Candle, error) {
	step, err := time.ParseDuration(interval)
	if err != nil || step <= 0 {
		step = time.Minute
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Truncate(step)
	out := make([]core.Candle, 0, limit)
	px := s.px
	for i := limit; i > 0; i-- {
		open := px
		ret := (s.r.Float64() - 0.5) * 2 * s.vol
		cl := open * (1 + ret)
		high := maxf(open, cl) * (1 + s.r.Float64()*s.vol*0.5)
		low := minf(open, cl) * (1 - s.r.Float64()*s.vol*0.5)
		closeTime := now.Add(time.Duration(-i+1) * step)
		out = append(out, core.Candle{
			OpenTime:  closeTime.Add(-step),
			CloseTime: closeTime,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     cl,
			Volume:    10_000 + s.r.Float64()*5_000,
		})
		px = cl
	}
	s.px = px
	return out, nil
}

func (s *Sim) LastPrice(context.Context) (float64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.px, time.Now().UTC(), nil
}

func maxf(a, b float64) float64 {
	if a < b {
		return b
	}
	return a
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
