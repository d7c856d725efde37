package persistence

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wbpos/backend/internal/infrastructure/config"
	"github.com/wbpos/backend/internal/infrastructure/logger"
	"github.com/wbpos/backend/internal/infrastructure/telemetry"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB *gorm.DB
}

// DatabaseOption configures NewDatabase
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	logger      *zap.Logger
	logLevel    gormlogger.LogLevel
	logOpts     []logger.GormLoggerOption
	tracing     *telemetry.DBTracingPlugin
	skipPing    bool
	autoMigrate bool
}

// WithLogger routes GORM logs through zap at the given level
func WithLogger(l *zap.Logger, level gormlogger.LogLevel, opts ...logger.GormLoggerOption) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = l
		o.logLevel = level
		o.logOpts = opts
	}
}

// WithTracing registers the otelgorm tracing plugin
func WithTracing(plugin *telemetry.DBTracingPlugin) DatabaseOption {
	return func(o *databaseOptions) {
		o.tracing = plugin
	}
}

// WithAutoMigrate creates the config_blobs table if it is missing.
// Used for sqlite files, where golang-migrate is not run.
func WithAutoMigrate() DatabaseOption {
	return func(o *databaseOptions) {
		o.autoMigrate = true
	}
}

// NewDatabase opens a postgres or sqlite connection per cfg.Driver
func NewDatabase(cfg *config.DatabaseConfig, opts ...DatabaseOption) (*Database, error) {
	o := &databaseOptions{logLevel: gormlogger.Silent}
	for _, opt := range opts {
		opt(o)
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}
	return open(dialector, cfg, o)
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "postgres":
		return postgres.Open(cfg.DSN()), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func open(dialector gorm.Dialector, cfg *config.DatabaseConfig, o *databaseOptions) (*Database, error) {
	gormCfg := &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(o.logLevel),
		SkipDefaultTransaction: true,
	}
	if o.logger != nil {
		gormCfg.Logger = logger.NewGormLogger(o.logger, o.logLevel, o.logOpts...)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if o.tracing != nil {
		if err := o.tracing.Register(db); err != nil {
			return nil, fmt.Errorf("failed to register database tracing: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// One writer keeps sqlite from returning SQLITE_BUSY under concurrent saves.
		sqlDB.SetMaxOpenConns(1)
	} else {
		tunePool(sqlDB, cfg)
	}

	if !o.skipPing {
		if err := sqlDB.Ping(); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
	}

	d := &Database{DB: db}
	if o.autoMigrate {
		if err := d.AutoMigrate(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Pool settings used when the config leaves a field at zero. They match
// the defaults config.Load applies.
const (
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 2
	defaultConnMaxLifetime = 60 * time.Minute
	defaultConnMaxIdleTime = 30 * time.Minute
)

// tunePool applies the pool limits in cfg. A zero MaxIdleConns would close
// every connection after use, so zero fields take the defaults.
func tunePool(sqlDB *sql.DB, cfg *config.DatabaseConfig) {
	maxOpen := cmp.Or(cfg.MaxOpenConns, defaultMaxOpenConns)
	maxIdle := min(cmp.Or(cfg.MaxIdleConns, defaultMaxIdleConns), maxOpen)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(cmp.Or(time.Duration(cfg.ConnMaxLifetime)*time.Minute, defaultConnMaxLifetime))
	sqlDB.SetConnMaxIdleTime(cmp.Or(time.Duration(cfg.ConnMaxIdleTime)*time.Minute, defaultConnMaxIdleTime))
}

// NewDatabaseFromDialector wraps an already configured dialector, e.g. sqlmock
func NewDatabaseFromDialector(dialector gorm.Dialector, opts ...DatabaseOption) (*Database, error) {
	o := &databaseOptions{logLevel: gormlogger.Silent, skipPing: true}
	for _, opt := range opts {
		opt(o)
	}
	return open(dialector, &config.DatabaseConfig{}, o)
}

// AutoMigrate creates the tables used by the blob store
func (d *Database) AutoMigrate() error {
	if err := d.DB.AutoMigrate(&ConfigBlobModel{}); err != nil {
		return fmt.Errorf("failed to migrate config_blobs: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Stats returns database connection pool statistics
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
}
