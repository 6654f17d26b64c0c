package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	_ "github.com/odyssey-erp/odyssey-ledger/testing"
)

type payload struct {
	Total string `json:"total"`
}

func newTestCache(t *testing.T) (*Versioned, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewVersioned(client, "ledger:reports", time.Minute, nil), mr
}

func TestVersionedFetchCachesUntilBump(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return payload{Total: "700.00"}, nil
	}

	key, err := c.BuildKey(ctx, "tb", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Equal(t, "tb:2024-01-01:2024-01-31:v1", key)

	var out payload
	hit, err := c.FetchJSON(ctx, key, &out, loader)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, "700.00", out.Total)

	hit, err = c.FetchJSON(ctx, key, &out, loader)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, 1, calls)
	require.True(t, mr.Exists(key))

	c.Invalidate(ctx)
	require.Equal(t, "2", mustGet(t, mr, "ledger:reports:version"))
	key2, err := c.BuildKey(ctx, "tb", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Equal(t, "tb:2024-01-01:2024-01-31:v2", key2)

	hit, err = c.FetchJSON(ctx, key2, &out, loader)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, 2, calls)
}

func TestVersionedLoaderErrorNotCached(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	boom := errors.New("boom")

	var out payload
	_, err := c.FetchJSON(ctx, "k", &out, func(context.Context) (any, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	require.False(t, mr.Exists("k"))
}

func TestDisabledCacheCallsLoaderEveryTime(t *testing.T) {
	c := NewVersioned(nil, "ledger:reports", time.Minute, nil)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return payload{Total: "1"}, nil
	}
	key, err := c.BuildKey(ctx, "a", "b")
	require.NoError(t, err)
	require.Equal(t, "a:b", key)

	var out payload
	for i := 0; i < 2; i++ {
		hit, err := c.FetchJSON(ctx, key, &out, loader)
		require.NoError(t, err)
		require.False(t, hit)
	}
	require.Equal(t, 2, calls)
	require.False(t, c.Enabled())
	require.NoError(t, c.Bump(ctx))

	var nilCache *Versioned
	_, err = nilCache.FetchJSON(ctx, key, &out, loader)
	require.NoError(t, err)
	require.False(t, nilCache.Enabled())
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}
