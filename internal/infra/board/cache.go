package board

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// cachedClient memoizes ListRecent in redis. The create form loads the full
// unnumbered listing on every visit, and the Board API is both slow and
// rate-limited; a short TTL keeps the form snappy without going stale for
// long. Cache failures degrade to a direct call.
type cachedClient struct {
	Client
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func WithListCache(inner Client, rdb *redis.Client, ttl time.Duration, log *zap.Logger) Client {
	if rdb == nil {
		return inner
	}
	return &cachedClient{Client: inner, rdb: rdb, ttl: ttl, log: log}
}

func (c *cachedClient) ListRecent(ctx context.Context, perPage int, onlyUnnumbered bool) ([]Project, error) {
	key := fmt.Sprintf("board:projects:%d:%t", perPage, onlyUnnumbered)

	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var cached []Project
		if err := sonic.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	} else if err != redis.Nil {
		c.log.Warn("board list cache read failed", zap.Error(err))
	}

	items, err := c.Client.ListRecent(ctx, perPage, onlyUnnumbered)
	if err != nil {
		return nil, err
	}

	if raw, err := sonic.Marshal(items); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn("board list cache write failed", zap.Error(err))
		}
	}

	return items, nil
}
