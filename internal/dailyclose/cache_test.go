package dailyclose

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *StatusCache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStatusCache(client, 5*time.Second)
}

func TestStatusCacheServesCachedValue(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) (CloseStatus, error) {
		loads++
		return CloseStatus{CanClose: true}, nil
	}

	first, err := cache.Fetch(ctx, loader)
	require.NoError(t, err)
	require.True(t, first.CanClose)

	second, err := cache.Fetch(ctx, loader)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, loads)
}

func TestStatusCacheInvalidateForcesReload(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) (CloseStatus, error) {
		loads++
		return CloseStatus{IsClosed: loads > 1}, nil
	}

	_, err := cache.Fetch(ctx, loader)
	require.NoError(t, err)

	cache.Invalidate(ctx)

	status, err := cache.Fetch(ctx, loader)
	require.NoError(t, err)
	require.True(t, status.IsClosed)
	require.Equal(t, 2, loads)
}

func TestStatusCacheNilIsPassthrough(t *testing.T) {
	var cache *StatusCache
	status, err := cache.Fetch(context.Background(), func(context.Context) (CloseStatus, error) {
		return CloseStatus{CanClose: true}, nil
	})
	require.NoError(t, err)
	require.True(t, status.CanClose)
	cache.Invalidate(context.Background())
}
