package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"murmurnet/internal/core/domain"
	"murmurnet/internal/core/ports"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const recentFeedKey = "murmurnet:feed:recent"

// RedisFeedCache stores the recent-feed page as one JSON blob with a short
// TTL. Cache failures are logged and treated as misses; the repository is
// always the source of truth.
type RedisFeedCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewRedisFeedCache(client *redis.Client, ttl time.Duration, logger *zap.SugaredLogger) *RedisFeedCache {
	return &RedisFeedCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

var _ ports.FeedCache = (*RedisFeedCache)(nil)

func (c *RedisFeedCache) GetRecent(ctx context.Context) ([]domain.FeedEvent, bool) {
	data, err := c.client.Get(ctx, recentFeedKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warnw("feed cache read failed", "error", err)
		}
		return nil, false
	}

	var events []domain.FeedEvent
	if err := json.Unmarshal(data, &events); err != nil {
		c.logger.Warnw("feed cache entry corrupt, dropping", "error", err)
		c.Invalidate(ctx)
		return nil, false
	}
	return events, true
}

func (c *RedisFeedCache) SetRecent(ctx context.Context, events []domain.FeedEvent) {
	data, err := json.Marshal(events)
	if err != nil {
		c.logger.Warnw("feed cache marshal failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, recentFeedKey, data, c.ttl).Err(); err != nil {
		c.logger.Warnw("feed cache write failed", "error", err)
	}
}

func (c *RedisFeedCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, recentFeedKey).Err(); err != nil {
		c.logger.Warnw("feed cache invalidate failed", "error", err)
	}
}
