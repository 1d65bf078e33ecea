package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bar struct {
	Symbol string    `json:"symbol"`
	Closes []float64 `json:"closes"`
}

func TestInMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewCache(time.Minute, time.Minute)

	in := bar{Symbol: "AAPL", Closes: []float64{1, 2, 3}}
	require.NoError(t, c.Set(ctx, "k", in, 0))

	var out bar
	require.NoError(t, c.Get(ctx, "k", &out))
	assert.Equal(t, in, out)

	// the stored copy is independent of the caller's slice
	in.Closes[0] = 100
	require.NoError(t, c.Get(ctx, "k", &out))
	assert.Equal(t, 1.0, out.Closes[0])
}

func TestInMemory_MissAndExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewCache(time.Minute, time.Minute)

	var out bar
	assert.ErrorIs(t, c.Get(ctx, "missing", &out), ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "short", bar{Symbol: "X"}, 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)
	assert.ErrorIs(t, c.Get(ctx, "short", &out), ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "del", bar{Symbol: "Y"}, 0))
	require.NoError(t, c.Delete(ctx, "del"))
	assert.ErrorIs(t, c.Get(ctx, "del", &out), ErrCacheMiss)
}

func TestLayered_PromotesFromSecondLevel(t *testing.T) {
	ctx := context.Background()
	l1 := NewCache(time.Minute, time.Minute)
	l2 := NewCache(time.Minute, time.Minute)
	lc := NewLayeredCache(l1, l2, time.Minute)

	require.NoError(t, l2.Set(ctx, "k", bar{Symbol: "MSFT"}, 0))

	var out bar
	require.NoError(t, lc.Get(ctx, "k", &out))
	assert.Equal(t, "MSFT", out.Symbol)

	var promoted bar
	require.NoError(t, l1.Get(ctx, "k", &promoted))
	assert.Equal(t, "MSFT", promoted.Symbol)
}

func TestLayered_WriteThroughAndDelete(t *testing.T) {
	ctx := context.Background()
	l1 := NewCache(time.Minute, time.Minute)
	l2 := NewCache(time.Minute, time.Minute)
	lc := NewLayeredCache(l1, l2, time.Minute)

	require.NoError(t, lc.Set(ctx, "k", bar{Symbol: "GOOG"}, time.Hour))

	var out bar
	require.NoError(t, l1.Get(ctx, "k", &out))
	require.NoError(t, l2.Get(ctx, "k", &out))

	require.NoError(t, lc.Delete(ctx, "k"))
	assert.ErrorIs(t, lc.Get(ctx, "k", &out), ErrCacheMiss)
}
