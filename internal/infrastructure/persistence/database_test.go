package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wbpos/backend/internal/infrastructure/config"
	"github.com/wbpos/backend/internal/infrastructure/telemetry"
)

// newSQLiteDatabase opens an in-memory sqlite database with the blob table
func newSQLiteDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"},
		WithLogger(zaptest.NewLogger(t), gormlogger.Warn),
		WithAutoMigrate(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newMockDatabase creates a Database instance with a mocked postgres connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db, err := NewDatabaseFromDialector(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}))
	require.NoError(t, err)
	return db, mock, mockDB
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(&config.DatabaseConfig{Driver: "mysql"})
	assert.ErrorContains(t, err, `unsupported database driver "mysql"`)
}

func TestNewDatabase_SQLite(t *testing.T) {
	db := newSQLiteDatabase(t)

	assert.NoError(t, db.Ping(context.Background()))
	assert.True(t, db.DB.Migrator().HasTable(&ConfigBlobModel{}))

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
}

func TestNewDatabase_WithTracing(t *testing.T) {
	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{Enabled: true, DBSystem: "sqlite"}, nil)
	db, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"}, WithTracing(plugin))
	require.NoError(t, err)
	defer db.Close()

	assert.NotNil(t, db.DB.Callback().Query().Get("wbpos_slow_query:query"))
}

func TestDatabase_PingAndClose(t *testing.T) {
	db, mock, _ := newMockDatabase(t)

	// sqlmock hands out a single connection, so the second ping only
	// passes if the pool kept it idle
	assert.NoError(t, db.Ping(context.Background()))
	assert.NoError(t, db.Ping(context.Background()))

	mock.ExpectClose()
	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTunePool(t *testing.T) {
	t.Run("zero config takes defaults", func(t *testing.T) {
		db, _, _ := newMockDatabase(t)
		stats, err := db.Stats()
		require.NoError(t, err)
		assert.Equal(t, defaultMaxOpenConns, stats.MaxOpenConnections)
	})

	t.Run("explicit limits", func(t *testing.T) {
		sqlDB, _, err := sqlmock.New()
		require.NoError(t, err)
		defer sqlDB.Close()

		tunePool(sqlDB, &config.DatabaseConfig{MaxOpenConns: 4, MaxIdleConns: 8})
		assert.Equal(t, 4, sqlDB.Stats().MaxOpenConnections)
	})
}
