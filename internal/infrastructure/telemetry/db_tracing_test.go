package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wbpos/backend/internal/infrastructure/telemetry"
)

func openMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	return db
}

func TestDBTracingPlugin_DisabledRegistersNothing(t *testing.T) {
	db := openMemoryDB(t)
	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{}, nil)
	require.NoError(t, plugin.Register(db))
	assert.Nil(t, db.Callback().Query().Get("wbpos_slow_query:query"))
}

func TestDBTracingPlugin_EmitsSpans(t *testing.T) {
	recorder := withRecorder(t)

	db := openMemoryDB(t)
	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{Enabled: true, DBSystem: "sqlite"}, zap.NewNop())
	require.NoError(t, plugin.Register(db))
	assert.NotNil(t, db.Callback().Query().Get("wbpos_slow_query:query"))

	type row struct {
		ID   uint
		Name string
	}
	require.NoError(t, db.AutoMigrate(&row{}))

	ctx, span := telemetry.StartSpan(context.Background(), "test.root")
	require.NoError(t, db.WithContext(ctx).Create(&row{Name: "a"}).Error)
	span.End()

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	assert.Contains(t, names, "test.root")
	assert.Greater(t, len(names), 1, "expected otelgorm spans next to the root span")
}
