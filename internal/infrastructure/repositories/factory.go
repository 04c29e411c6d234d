package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"murmurnet/internal/core/ports"
	"murmurnet/internal/infrastructure/repositories/memory"
	"murmurnet/internal/infrastructure/repositories/postgres"
	"murmurnet/internal/infrastructure/repositories/redis"
	"murmurnet/pkg/config"
)

// Repositories bundles the storage backends selected from configuration.
// Postgres is used when a database URL is configured, the in-memory
// implementations otherwise. The feed cache is Redis-backed when Redis is
// enabled and in-process otherwise.
type Repositories struct {
	Users ports.UserRepository
	Posts ports.PostRepository
	Cache ports.FeedCache

	pool        *pgxpool.Pool
	redisClient *goredis.Client
	memoryCache *memory.MemoryFeedCache
}

func NewRepositories(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*Repositories, error) {
	repos := &Repositories{}

	if cfg.Database.URL != "" {
		pool, err := postgres.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize postgres: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		repos.pool = pool
		repos.Users = postgres.NewPostgresUserRepository(pool)
		repos.Posts = postgres.NewPostgresPostRepository(pool)
	} else {
		users := memory.NewMemoryUserRepository()
		repos.Users = users
		repos.Posts = memory.NewMemoryPostRepository(users)
		logger.Warn("no database configured, using in-memory repositories")
	}

	if cfg.Redis.Enabled {
		client, err := redis.NewRedisClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize, logger)
		if err != nil {
			repos.Close()
			return nil, fmt.Errorf("initialize redis: %w", err)
		}
		repos.redisClient = client
		repos.Cache = redis.NewRedisFeedCache(client, cfg.Redis.FeedTTL, logger)
	} else {
		cache := memory.NewMemoryFeedCache(cfg.Redis.FeedTTL)
		repos.memoryCache = cache
		repos.Cache = cache
	}

	return repos, nil
}

// RedisClient exposes the shared redis connection, nil when redis is
// disabled. The broadcast bridge reuses it for pub/sub.
func (r *Repositories) RedisClient() *goredis.Client {
	return r.redisClient
}

// HealthCheck verifies the configured backends are reachable.
func (r *Repositories) HealthCheck(ctx context.Context) error {
	if r.pool != nil {
		if err := r.pool.Ping(ctx); err != nil {
			return fmt.Errorf("postgres health check: %w", err)
		}
	}
	if r.redisClient != nil {
		if err := r.redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis health check: %w", err)
		}
	}
	return nil
}

func (r *Repositories) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
	if r.redisClient != nil {
		_ = redis.CloseRedisClient(r.redisClient)
	}
	if r.memoryCache != nil {
		r.memoryCache.Close()
	}
}
