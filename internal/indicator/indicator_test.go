package indicator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		period int
		want   float64
		isNaN  bool
	}{
		{name: "full window", prices: []float64{10, 20, 30, 40, 50}, period: 5, want: 30},
		{name: "trailing window", prices: []float64{10, 20, 30, 40, 50}, period: 3, want: 40},
		{name: "period one", prices: []float64{10, 20, 30}, period: 1, want: 30},
		{name: "not enough data", prices: []float64{10, 20}, period: 3, isNaN: true},
		{name: "zero period", prices: []float64{10, 20}, period: 0, isNaN: true},
		{name: "empty", prices: nil, period: 3, isNaN: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SMA(tt.prices, tt.period)
			if tt.isNaN {
				assert.True(t, math.IsNaN(got))
				return
			}
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSMASeries(t *testing.T) {
	got := SMASeries([]float64{10, 20, 30, 40, 50}, 3)
	require.Len(t, got, 5)
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
	assert.InDelta(t, 20, got[2], 1e-9)
	assert.InDelta(t, 30, got[3], 1e-9)
	assert.InDelta(t, 40, got[4], 1e-9)

	assert.Nil(t, SMASeries([]float64{1, 2}, 0))
}

func TestSMASeriesMatchesScalar(t *testing.T) {
	prices := randomWalk(200, 7)
	series := SMASeries(prices, 20)
	for i := 19; i < len(prices); i++ {
		assert.InDelta(t, SMA(prices[:i+1], 20), series[i], 1e-9, "index %d", i)
	}
}

func TestRSI_AllGains(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	assert.Equal(t, 100.0, RSI(prices, 14))
}

func TestRSI_AllLosses(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100 - float64(i)
	}
	assert.InDelta(t, 0, RSI(prices, 14), 1e-9)
}

func TestRSI_Alternating(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		if i%2 == 0 {
			prices[i] = 100
		} else {
			prices[i] = 101
		}
	}
	assert.InDelta(t, 50, RSI(prices, 14), 5)
}

func TestRSI_InsufficientData(t *testing.T) {
	prices := make([]float64, 14)
	for i := range prices {
		prices[i] = float64(i + 1)
	}
	assert.True(t, math.IsNaN(RSI(prices, 14)))
	assert.False(t, math.IsNaN(RSI(append(prices, 15), 14)))
	assert.True(t, math.IsNaN(RSI(prices, 0)))
}

func TestRSI_Bounded(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		prices := randomWalk(120, seed)
		for i, v := range RSISeries(prices, 14) {
			if i < 14 {
				assert.True(t, math.IsNaN(v))
				continue
			}
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 100.0)
		}
	}
}

func TestRSISeriesMatchesScalar(t *testing.T) {
	prices := randomWalk(80, 3)
	series := RSISeries(prices, 14)
	for i := 14; i < len(prices); i++ {
		assert.InDelta(t, RSI(prices[:i+1], 14), series[i], 1e-9, "index %d", i)
	}
}

func randomWalk(n int, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	price := 100.0
	for i := range out {
		price += r.NormFloat64() * 2
		if price < 1 {
			price = 1
		}
		out[i] = price
	}
	return out
}
