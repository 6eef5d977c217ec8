package data

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"golang.org/x/time/rate"

	"breakoutbot/internal/core"
)

// ErrUnavailable marks any market-data fetch failure. The loop matches on
// it and abandons the cycle.
var ErrUnavailable = errors.New("market data unavailable")

// Binance serves spot klines and ticker prices. Every call carries its own
// timeout and passes a shared limiter, so a slow exchange delays a cycle
// but never wedges the process.
type Binance struct {
	client  *binance.Client
	symbol  string
	limiter *rate.Limiter
	timeout time.Duration
}

func NewBinance(symbol string) *Binance {
	return &Binance{
		client:  binance.NewClient("", ""),
		symbol:  symbol,
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		timeout: 10 * time.Second,
	}
}

func (b *Binance) Candles(ctx context.Context, interval string, limit int) ([]core.Candle, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	klines, err := b.client.NewKlinesService().
		Symbol(b.symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: klines %s: %v", ErrUnavailable, interval, err)
	}
	if len(klines) == 0 {
		return nil, fmt.Errorf("%w: empty klines %s", ErrUnavailable, interval)
	}

	out := make([]core.Candle, 0, len(klines))
	for _, k := range klines {
		open, _ := strconv.ParseFloat(k.Open, 64)
		high, _ := strconv.ParseFloat(k.High, 64)
		low, _ := strconv.ParseFloat(k.Low, 64)
		cl, _ := strconv.ParseFloat(k.Close, 64)
		vol, _ := strconv.ParseFloat(k.Volume, 64)
		out = append(out, core.Candle{
			OpenTime:  time.UnixMilli(k.OpenTime),
			CloseTime: time.UnixMilli(k.CloseTime),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     cl,
			Volume:    vol,
		})
	}
	return out, nil
}

func (b *Binance) LastPrice(ctx context.Context) (float64, time.Time, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	prices, err := b.client.NewListPricesService().Symbol(b.symbol).Do(ctx)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: ticker: %v", ErrUnavailable, err)
	}
	if len(prices) == 0 {
		return 0, time.Time{}, fmt.Errorf("%w: ticker empty", ErrUnavailable)
	}
	px, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: ticker parse: %v", ErrUnavailable, err)
	}
	return px, time.Now().UTC(), nil
}
