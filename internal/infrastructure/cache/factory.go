package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wbpos/backend/internal/domain/catalog"
	"github.com/wbpos/backend/internal/infrastructure/config"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// CatalogCacheFactory creates the catalog snapshot cache selected in config
type CatalogCacheFactory struct {
	cfg                   config.CatalogConfig
	redisConfig           config.RedisConfig
	client                *redis.Client
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// CatalogCacheFactoryOption is a functional option for configuring the factory
type CatalogCacheFactoryOption func(*CatalogCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) CatalogCacheFactoryOption {
	return func(f *CatalogCacheFactory) {
		f.logger = logger
	}
}

// WithRedisClient reuses an existing client instead of dialing a new one
func WithRedisClient(client *redis.Client) CatalogCacheFactoryOption {
	return func(f *CatalogCacheFactory) {
		f.client = client
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory cache. Default is true.
func WithInMemoryFallback(allow bool) CatalogCacheFactoryOption {
	return func(f *CatalogCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewCatalogCacheFactory creates a new factory
func NewCatalogCacheFactory(cfg config.CatalogConfig, redisCfg config.RedisConfig, opts ...CatalogCacheFactoryOption) *CatalogCacheFactory {
	f := &CatalogCacheFactory{
		cfg:                   cfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCache returns the configured cache and a func releasing what the
// factory opened for it.
func (f *CatalogCacheFactory) CreateCache() (catalog.SnapshotCache, func() error, error) {
	if f.cfg.CacheBackend != config.StoreBackendRedis {
		c := NewMemoryCatalogCache()
		return c, c.Close, nil
	}

	client := f.client
	if client == nil {
		var err error
		client, err = NewRedisClient(f.redisConfig)
		if err != nil {
			if !f.allowInMemoryFallback {
				return nil, nil, fmt.Errorf("redis required for catalog cache but unavailable: %w", err)
			}
			f.logger.Warn("Redis unavailable, falling back to in-memory catalog cache", zap.Error(err))
			c := NewMemoryCatalogCache()
			return c, c.Close, nil
		}
		f.logger.Info("using Redis catalog cache", zap.String("addr", f.redisConfig.Addr()))
		return NewRedisCatalogCacheWithClient(client, f.redisConfig.KeyPrefix), client.Close, nil
	}
	f.logger.Info("using Redis catalog cache", zap.String("addr", f.redisConfig.Addr()))
	return NewRedisCatalogCacheWithClient(client, f.redisConfig.KeyPrefix), func() error { return nil }, nil
}
