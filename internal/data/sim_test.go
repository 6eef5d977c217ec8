package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimCandlesOrderedAndBounded(t *testing.T) {
	sim := NewSim(64_000, 0.002, 42)

	candles, err := sim.Candles(context.Background(), "30m", 20)
	require.NoError(t, err)
	require.Len(t, candles, 20)

	for i, c := range candles {
		assert.Greater(t, c.Close, 0.0)
		assert.GreaterOrEqual(t, c.High, c.Low)
		assert.True(t, c.CloseTime.After(c.OpenTime))
		if i > 0 {
			assert.True(t, c.CloseTime.After(candles[i-1].CloseTime), "series must ascend")
		}
	}
}

func TestSimLastPriceTracksWalk(t *testing.T) {
	sim := NewSim(64_000, 0.002, 42)
	candles, err := sim.Candles(context.Background(), "2h", 5)
	require.NoError(t, err)

	px, ts, err := sim.LastPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, candles[len(candles)-1].Close, px)
	assert.False(t, ts.IsZero())
}

func TestSimBadIntervalFallsBack(t *testing.T) {
	sim := NewSim(100, 0.002, 1)
	candles, err := sim.Candles(context.Background(), "bogus", 3)
	require.NoError(t, err)
	assert.Len(t, candles, 3)
}
