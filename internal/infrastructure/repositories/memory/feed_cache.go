package memory

import (
	"context"
	"time"

	"murmurnet/internal/core/domain"
	"murmurnet/internal/core/ports"
	"murmurnet/pkg/cache"
)

const recentKey = "feed:recent"

// MemoryFeedCache backs the feed cache with the in-process TTL cache when
// redis is disabled.
type MemoryFeedCache struct {
	cache *cache.Cache
}

func NewMemoryFeedCache(ttl time.Duration) *MemoryFeedCache {
	return &MemoryFeedCache{cache: cache.NewCache(ttl)}
}

var _ ports.FeedCache = (*MemoryFeedCache)(nil)

func (c *MemoryFeedCache) GetRecent(ctx context.Context) ([]domain.FeedEvent, bool) {
	value, ok := c.cache.Get(recentKey)
	if !ok {
		return nil, false
	}
	events, ok := value.([]domain.FeedEvent)
	return events, ok
}

func (c *MemoryFeedCache) SetRecent(ctx context.Context, events []domain.FeedEvent) {
	c.cache.Set(recentKey, events)
}

func (c *MemoryFeedCache) Invalidate(ctx context.Context) {
	c.cache.Delete(recentKey)
}

func (c *MemoryFeedCache) Close() {
	c.cache.Stop()
}
