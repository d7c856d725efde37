package tracking

import "context"

// ConfigRepository loads and saves the tracking config.
//
// Load returns shared.ErrNotFound when nothing is stored and a
// *shared.PersistenceError when the stored blob cannot be decoded.
// Save succeeds only if the stored version still equals cfg.Version, then
// advances cfg.Version; otherwise it returns shared.ErrVersionConflict.
type ConfigRepository interface {
	Load(ctx context.Context) (*Config, error)
	Save(ctx context.Context, cfg *Config) error
}
