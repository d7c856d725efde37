package shared

import (
	"context"
	"time"
)

// Blob is a versioned opaque value held by a BlobStore
type Blob struct {
	Data      []byte
	Version   int64
	UpdatedAt time.Time
}

// BlobStore is a key-value store of opaque blobs with compare-and-swap writes.
//
// Get returns ErrNotFound when the key has never been written.
// Put stores data only if the current version equals expectedVersion; an
// expectedVersion of 0 means the key must not exist yet. On success the new
// version (expectedVersion+1) is returned; otherwise ErrVersionConflict.
type BlobStore interface {
	Get(ctx context.Context, key string) (*Blob, error)
	Put(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error)
	Ping(ctx context.Context) error
}
