package store_test

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-loja/internal/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &store.Store{R: client}
}

func TestGetSetJSONRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	type doc struct {
		Name  string `json:"name"`
		Price int64  `json:"price"`
	}

	found, err := s.GetJSON(ctx, "product:missing", &doc{})
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, s.SetJSON(ctx, "product:p1", doc{Name: "Caneca", Price: 2500}))

	var got doc
	found, err = s.GetJSON(ctx, "product:p1", &got)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, doc{Name: "Caneca", Price: 2500}, got)
}

func TestIncrCappedStopsAtCap(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	v, ok, err := s.IncrCapped(ctx, "coupon:uses:SAVE10", 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 1, v)

	_, ok, err = s.IncrCapped(ctx, "coupon:uses:SAVE10", 1)
	require.NoError(t, err)
	require.False(t, ok, "second increment must be refused at the cap")
}

func TestIncrCappedUnlimited(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		v, ok, err := s.IncrCapped(ctx, "coupon:uses:FREE", 0)
		require.NoError(t, err)
		require.True(t, ok)
		require.EqualValues(t, i, v)
	}
}

func TestDecrAvailable(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	remaining, err := s.DecrAvailable(ctx, "stock:p1", 1)
	require.NoError(t, err)
	require.EqualValues(t, store.DecrUnmanaged, remaining)

	require.NoError(t, s.SetCounter(ctx, "stock:p1", 3))

	remaining, err = s.DecrAvailable(ctx, "stock:p1", 2)
	require.NoError(t, err)
	require.EqualValues(t, 1, remaining)

	remaining, err = s.DecrAvailable(ctx, "stock:p1", 2)
	require.NoError(t, err)
	require.EqualValues(t, store.DecrInsufficient, remaining)
}

func TestKeysScan(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetJSON(ctx, store.ProductKey("a"), map[string]any{"name": "A"}))
	require.NoError(t, s.SetJSON(ctx, store.ProductKey("b"), map[string]any{"name": "B"}))
	require.NoError(t, s.SetJSON(ctx, "order:1", map[string]any{}))

	keys, err := s.Keys(ctx, store.ProductPattern())
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"product:a", "product:b"}, keys)
}
