package blobstore

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wbpos/backend/internal/domain/tracking"
	"github.com/wbpos/backend/internal/infrastructure/config"
)

func roundTrip(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))
	v, err := s.Put(ctx, "k", []byte(`{"token":"t"}`), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	blob, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(1), blob.Version)
	assert.JSONEq(t, `{"token":"t"}`, string(blob.Data))
}

func TestFactory_Memory(t *testing.T) {
	s, err := NewFactory(&config.Config{}, WithLogger(zaptest.NewLogger(t))).Open(context.Background())
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, config.StoreBackendMemory, s.Backend)
	roundTrip(t, s)
}

func TestFactory_SQLite(t *testing.T) {
	cfg := &config.Config{
		Store:    config.StoreConfig{Backend: config.StoreBackendDatabase},
		Database: config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"},
		Log:      config.LogConfig{Level: "warn"},
	}
	s, err := NewFactory(cfg, WithLogger(zaptest.NewLogger(t))).Open(context.Background())
	require.NoError(t, err)

	assert.Equal(t, config.StoreBackendDatabase, s.Backend)
	roundTrip(t, s)
	require.NoError(t, s.Close())
	assert.NoError(t, s.Close(), "second close is a no-op")
}

func TestFactory_RedisWithClient(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{Store: config.StoreConfig{Backend: config.StoreBackendRedis}}
	s, err := NewFactory(cfg, WithRedisClient(client)).Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, config.StoreBackendRedis, s.Backend)

	// the borrowed client is not closed with the store
	require.NoError(t, s.Close())
	assert.NotErrorIs(t, client.Ping(context.Background()).Err(), redis.ErrClosed)
}

func TestFactory_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{"unknown backend", &config.Config{Store: config.StoreConfig{Backend: "etcd"}}},
		{"bad driver", &config.Config{
			Store:    config.StoreConfig{Backend: config.StoreBackendDatabase},
			Database: config.DatabaseConfig{Driver: "mysql"},
		}},
		{"s3 without bucket", &config.Config{Store: config.StoreConfig{Backend: config.StoreBackendS3}}},
		{"redis unreachable", &config.Config{
			Store: config.StoreConfig{Backend: config.StoreBackendRedis},
			Redis: config.RedisConfig{Host: "127.0.0.1", Port: 1},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFactory(tt.cfg).Open(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestStorageKey(t *testing.T) {
	assert.Equal(t, tracking.StorageKey, StorageKey(&config.Config{}))
	assert.Equal(t, "custom", StorageKey(&config.Config{Store: config.StoreConfig{Key: "custom"}}))
}
