package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wbpos/backend/internal/domain/shared"
	"github.com/wbpos/backend/internal/domain/tracking"
)

// BlobConfigRepository implements tracking.ConfigRepository as a JSON
// document in any shared.BlobStore. The store's version is authoritative;
// the version field inside the document is informational.
type BlobConfigRepository struct {
	store shared.BlobStore
	key   string
}

var _ tracking.ConfigRepository = (*BlobConfigRepository)(nil)

// NewBlobConfigRepository creates a repository storing under key,
// or under tracking.StorageKey when key is empty
func NewBlobConfigRepository(store shared.BlobStore, key string) *BlobConfigRepository {
	if key == "" {
		key = tracking.StorageKey
	}
	return &BlobConfigRepository{store: store, key: key}
}

// Key returns the storage key
func (r *BlobConfigRepository) Key() string {
	return r.key
}

// Load decodes the stored config
func (r *BlobConfigRepository) Load(ctx context.Context) (*tracking.Config, error) {
	blob, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("load tracking config: %w", err)
	}

	cfg := tracking.NewConfig()
	if err := json.Unmarshal(blob.Data, cfg); err != nil {
		return nil, &shared.PersistenceError{Key: r.key, Version: blob.Version, Cause: err}
	}
	cfg.Normalize()
	cfg.SetVersion(blob.Version)
	return cfg, nil
}

// Save encodes cfg and writes it with compare-and-swap on cfg.Version
func (r *BlobConfigRepository) Save(ctx context.Context, cfg *tracking.Config) error {
	snapshot := *cfg
	snapshot.SetVersion(cfg.GetVersion() + 1)
	data, err := json.Marshal(&snapshot)
	if err != nil {
		return fmt.Errorf("encode tracking config: %w", err)
	}

	version, err := r.store.Put(ctx, r.key, data, cfg.GetVersion())
	if err != nil {
		if errors.Is(err, shared.ErrVersionConflict) {
			return shared.ErrVersionConflict
		}
		return fmt.Errorf("save tracking config: %w", err)
	}
	cfg.SetVersion(version)
	return nil
}
