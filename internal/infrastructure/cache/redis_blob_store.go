package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wbpos/backend/internal/domain/shared"
)

const (
	fieldData      = "data"
	fieldVersion   = "version"
	fieldUpdatedAt = "updated_at"
)

// RedisBlobStore implements shared.BlobStore as one Redis hash per key.
// Put runs WATCH/MULTI/EXEC so a concurrent writer aborts the transaction.
type RedisBlobStore struct {
	client    redis.UniversalClient
	keyPrefix string
	now       func() time.Time
}

var _ shared.BlobStore = (*RedisBlobStore)(nil)

// NewRedisBlobStoreWithClient creates a store on an existing client.
// The caller retains ownership of the client.
func NewRedisBlobStoreWithClient(client redis.UniversalClient, keyPrefix string) *RedisBlobStore {
	if keyPrefix == "" {
		keyPrefix = "wbpos:"
	}
	return &RedisBlobStore{
		client:    client,
		keyPrefix: keyPrefix + "blob:",
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the blob under key
func (s *RedisBlobStore) Get(ctx context.Context, key string) (*shared.Blob, error) {
	fields, err := s.client.HGetAll(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get blob %q: %w", key, err)
	}
	if len(fields) == 0 {
		return nil, shared.ErrNotFound
	}

	version, err := strconv.ParseInt(fields[fieldVersion], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("redis blob %q has invalid version: %w", key, err)
	}
	updated, _ := time.Parse(time.RFC3339Nano, fields[fieldUpdatedAt])
	return &shared.Blob{Data: []byte(fields[fieldData]), Version: version, UpdatedAt: updated}, nil
}

// Put stores data if the current version equals expectedVersion
func (s *RedisBlobStore) Put(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error) {
	if expectedVersion < 0 {
		return 0, shared.NewValidationError("version", "must not be negative")
	}
	redisKey := s.keyPrefix + key
	next := expectedVersion + 1

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, redisKey, fieldVersion).Result()
		switch {
		case errors.Is(err, redis.Nil):
			if expectedVersion != 0 {
				return shared.ErrVersionConflict
			}
		case err != nil:
			return err
		default:
			current, perr := strconv.ParseInt(raw, 10, 64)
			if perr != nil || current != expectedVersion {
				return shared.ErrVersionConflict
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, redisKey,
				fieldData, data,
				fieldVersion, next,
				fieldUpdatedAt, s.now().Format(time.RFC3339Nano),
			)
			return nil
		})
		return err
	}, redisKey)

	switch {
	case err == nil:
		return next, nil
	case errors.Is(err, shared.ErrVersionConflict), errors.Is(err, redis.TxFailedErr):
		return 0, shared.ErrVersionConflict
	default:
		return 0, fmt.Errorf("redis put blob %q: %w", key, err)
	}
}

// Ping checks the Redis connection
func (s *RedisBlobStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
