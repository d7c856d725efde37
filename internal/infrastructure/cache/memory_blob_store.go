package cache

import (
	"context"
	"sync"
	"time"

	"github.com/wbpos/backend/internal/domain/shared"
)

// MemoryBlobStore implements shared.BlobStore in process memory.
// Contents are lost on restart.
type MemoryBlobStore struct {
	mu    sync.Mutex
	blobs map[string]shared.Blob
	now   func() time.Time
}

var _ shared.BlobStore = (*MemoryBlobStore)(nil)

// NewMemoryBlobStore creates an empty store
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{
		blobs: make(map[string]shared.Blob),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Get returns a copy of the blob under key
func (s *MemoryBlobStore) Get(_ context.Context, key string) (*shared.Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blobs[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	b.Data = append([]byte(nil), b.Data...)
	return &b, nil
}

// Put stores data if the current version equals expectedVersion
func (s *MemoryBlobStore) Put(_ context.Context, key string, data []byte, expectedVersion int64) (int64, error) {
	if expectedVersion < 0 {
		return 0, shared.NewValidationError("version", "must not be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.blobs[key]
	switch {
	case !exists && expectedVersion != 0:
		return 0, shared.ErrVersionConflict
	case exists && current.Version != expectedVersion:
		return 0, shared.ErrVersionConflict
	}

	next := expectedVersion + 1
	s.blobs[key] = shared.Blob{
		Data:      append([]byte(nil), data...),
		Version:   next,
		UpdatedAt: s.now(),
	}
	return next, nil
}

// Ping always succeeds
func (s *MemoryBlobStore) Ping(context.Context) error {
	return nil
}
