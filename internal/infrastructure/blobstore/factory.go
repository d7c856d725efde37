// Package blobstore opens the config blob store selected in configuration.
package blobstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wbpos/backend/internal/domain/shared"
	"github.com/wbpos/backend/internal/domain/tracking"
	"github.com/wbpos/backend/internal/infrastructure/cache"
	"github.com/wbpos/backend/internal/infrastructure/config"
	"github.com/wbpos/backend/internal/infrastructure/logger"
	"github.com/wbpos/backend/internal/infrastructure/persistence"
	"github.com/wbpos/backend/internal/infrastructure/storage"
	"github.com/wbpos/backend/internal/infrastructure/telemetry"
)

// Store is an opened blob store plus whatever must be released with it
type Store struct {
	shared.BlobStore
	Backend string
	closers []func() error
}

// Close releases the connections opened for the store, last opened first
func (s *Store) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}

// Factory opens the blob store named by config.StoreConfig.Backend
type Factory struct {
	cfg         *config.Config
	logger      *zap.Logger
	tracing     *telemetry.DBTracingPlugin
	redisClient redis.UniversalClient
}

// Option configures a Factory
type Option func(*Factory)

// WithLogger sets the logger used for the store and GORM
func WithLogger(l *zap.Logger) Option {
	return func(f *Factory) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithDBTracing registers otelgorm on the database backend
func WithDBTracing(p *telemetry.DBTracingPlugin) Option {
	return func(f *Factory) {
		f.tracing = p
	}
}

// WithRedisClient reuses an existing client for the redis backend.
// The caller keeps ownership of it.
func WithRedisClient(c redis.UniversalClient) Option {
	return func(f *Factory) {
		f.redisClient = c
	}
}

// NewFactory creates a Factory
func NewFactory(cfg *config.Config, opts ...Option) *Factory {
	f := &Factory{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open connects the configured backend
func (f *Factory) Open(ctx context.Context) (*Store, error) {
	backend := f.cfg.Store.Backend
	if backend == "" {
		backend = config.StoreBackendMemory
	}
	log := f.logger.With(zap.String("backend", backend))

	switch backend {
	case config.StoreBackendMemory:
		log.Warn("Using in-memory config store, state is lost on restart")
		return &Store{BlobStore: cache.NewMemoryBlobStore(), Backend: backend}, nil

	case config.StoreBackendDatabase:
		opts := []persistence.DatabaseOption{
			persistence.WithLogger(f.logger, logger.MapGormLogLevel(f.cfg.Log.Level),
				logger.WithSlowThreshold(f.cfg.Telemetry.DBSlowQueryThresh),
				logger.WithFullSQL(f.cfg.Telemetry.DBLogFullSQL)),
		}
		if f.tracing != nil {
			opts = append(opts, persistence.WithTracing(f.tracing))
		}
		if f.cfg.Database.Driver == "sqlite" {
			opts = append(opts, persistence.WithAutoMigrate())
		}
		db, err := persistence.NewDatabase(&f.cfg.Database, opts...)
		if err != nil {
			return nil, fmt.Errorf("open database store: %w", err)
		}
		log.Info("Using database config store", zap.String("driver", f.cfg.Database.Driver))
		return &Store{BlobStore: persistence.NewGormBlobStore(db.DB), Backend: backend, closers: []func() error{db.Close}}, nil

	case config.StoreBackendRedis:
		if f.redisClient != nil {
			log.Info("Using Redis config store")
			return &Store{BlobStore: cache.NewRedisBlobStoreWithClient(f.redisClient, f.cfg.Redis.KeyPrefix), Backend: backend}, nil
		}
		client, err := cache.NewRedisClient(f.cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		log.Info("Using Redis config store", zap.String("addr", f.cfg.Redis.Addr()))
		return &Store{BlobStore: cache.NewRedisBlobStoreWithClient(client, f.cfg.Redis.KeyPrefix), Backend: backend, closers: []func() error{client.Close}}, nil

	case config.StoreBackendS3:
		s3Store, err := storage.NewS3BlobStore(&f.cfg.Storage, storage.WithLogger(f.logger))
		if err != nil {
			return nil, fmt.Errorf("open s3 store: %w", err)
		}
		if err := s3Store.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("open s3 store: %w", err)
		}
		log.Info("Using S3 config store", zap.String("bucket", f.cfg.Storage.Bucket))
		return &Store{BlobStore: s3Store, Backend: backend}, nil

	default:
		return nil, fmt.Errorf("unsupported store backend %q", backend)
	}
}

// StorageKey returns the configured blob key
func StorageKey(cfg *config.Config) string {
	if cfg.Store.Key != "" {
		return cfg.Store.Key
	}
	return tracking.StorageKey
}
