package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wbpos/backend/internal/domain/shared"
)

// ConfigBlobModel is the config_blobs row holding one versioned blob
type ConfigBlobModel struct {
	Key       string    `gorm:"column:blob_key;primaryKey;size:128"`
	Data      []byte    `gorm:"column:data;not null"`
	Version   int64     `gorm:"column:version;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName returns the table name for GORM
func (ConfigBlobModel) TableName() string {
	return "config_blobs"
}

// GormBlobStore implements shared.BlobStore on a SQL table.
// Writes are guarded by the version column.
type GormBlobStore struct {
	db  *gorm.DB
	now func() time.Time
}

var _ shared.BlobStore = (*GormBlobStore)(nil)

// NewGormBlobStore creates a new GormBlobStore
func NewGormBlobStore(db *gorm.DB) *GormBlobStore {
	return &GormBlobStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Get returns the blob stored under key
func (s *GormBlobStore) Get(ctx context.Context, key string) (*shared.Blob, error) {
	var model ConfigBlobModel
	if err := s.db.WithContext(ctx).Where("blob_key = ?", key).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("get blob %q: %w", key, err)
	}
	return &shared.Blob{Data: model.Data, Version: model.Version, UpdatedAt: model.UpdatedAt}, nil
}

// Put writes data if the stored version still equals expectedVersion
func (s *GormBlobStore) Put(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error) {
	if expectedVersion < 0 {
		return 0, shared.NewValidationError("version", "must not be negative")
	}
	next := expectedVersion + 1
	now := s.now()

	if expectedVersion == 0 {
		result := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "blob_key"}}, DoNothing: true}).
			Create(&ConfigBlobModel{Key: key, Data: data, Version: next, UpdatedAt: now})
		if result.Error != nil {
			return 0, fmt.Errorf("insert blob %q: %w", key, result.Error)
		}
		if result.RowsAffected == 0 {
			return 0, shared.ErrVersionConflict
		}
		return next, nil
	}

	result := s.db.WithContext(ctx).
		Model(&ConfigBlobModel{}).
		Where("blob_key = ? AND version = ?", key, expectedVersion).
		Updates(map[string]any{"data": data, "version": next, "updated_at": now})
	if result.Error != nil {
		return 0, fmt.Errorf("update blob %q: %w", key, result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, shared.ErrVersionConflict
	}
	return next, nil
}

// Ping checks the database connection
func (s *GormBlobStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
