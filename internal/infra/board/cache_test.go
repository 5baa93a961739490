package board

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingClient struct {
	Client
	listCalls int
	items     []Project
	err       error
}

func (c *countingClient) ListRecent(ctx context.Context, perPage int, onlyUnnumbered bool) ([]Project, error) {
	c.listCalls++
	return c.items, c.err
}

func newCacheTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestWithListCache(t *testing.T) {
	t.Run("nil redis returns the inner client untouched", func(t *testing.T) {
		inner := &countingClient{}
		assert.Same(t, Client(inner), WithListCache(inner, nil, time.Minute, zap.NewNop()))
	})

	t.Run("second call is served from cache", func(t *testing.T) {
		inner := &countingClient{items: []Project{{ID: "1", ProjectNo: "B-1"}}}
		c := WithListCache(inner, newCacheTestRedis(t), time.Minute, zap.NewNop())

		first, err := c.ListRecent(context.Background(), 50, true)
		require.NoError(t, err)
		second, err := c.ListRecent(context.Background(), 50, true)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, inner.listCalls)
	})

	t.Run("different parameters use different keys", func(t *testing.T) {
		inner := &countingClient{items: []Project{{ID: "1"}}}
		c := WithListCache(inner, newCacheTestRedis(t), time.Minute, zap.NewNop())

		_, err := c.ListRecent(context.Background(), 50, true)
		require.NoError(t, err)
		_, err = c.ListRecent(context.Background(), 50, false)
		require.NoError(t, err)

		assert.Equal(t, 2, inner.listCalls)
	})

	t.Run("inner errors are not cached", func(t *testing.T) {
		inner := &countingClient{err: assert.AnError}
		c := WithListCache(inner, newCacheTestRedis(t), time.Minute, zap.NewNop())

		_, err := c.ListRecent(context.Background(), 50, true)
		assert.Error(t, err)

		inner.err = nil
		inner.items = []Project{{ID: "1"}}
		items, err := c.ListRecent(context.Background(), 50, true)
		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Equal(t, 2, inner.listCalls)
	})
}
