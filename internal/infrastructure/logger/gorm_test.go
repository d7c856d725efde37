package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_Trace(t *testing.T) {
	sqlFn := func() (string, int64) {
		return `UPDATE config_blobs SET data = '{"token": "secret","nmID":42}' WHERE key = 'tracker'`, 1
	}

	t.Run("omits SQL by default", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Info)

		ctx := WithCheckID(WithRequestID(context.Background(), "req-1"), "chk-1")
		l.Trace(ctx, time.Now(), sqlFn, nil)

		entries := recorded.FilterMessage("SQL").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		fields := entries[0].ContextMap()
		assert.NotContains(t, fields, "sql")
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "chk-1", fields["check_id"])
		assert.Equal(t, int64(1), fields["rows"])
	})

	t.Run("full SQL is redacted", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Info, WithFullSQL(true))
		l.Trace(context.Background(), time.Now(), sqlFn, nil)

		sql := recorded.All()[0].ContextMap()["sql"]
		assert.Equal(t, `UPDATE config_blobs SET data = '{"token": "****","nmID":42}' WHERE key = 'tracker'`, sql)
	})

	t.Run("errors and slow queries", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(time.Millisecond))

		l.Trace(context.Background(), time.Now(), sqlFn, errors.New("deadlock"))
		l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)
		l.Trace(context.Background(), time.Now(), sqlFn, gormlogger.ErrRecordNotFound)
		l.Trace(context.Background(), time.Now(), sqlFn, nil)

		assert.Equal(t, 1, recorded.FilterMessage("SQL error").Len())
		slow := recorded.FilterMessage("Slow SQL").All()
		require.Len(t, slow, 1)
		assert.Equal(t, time.Millisecond, slow[0].ContextMap()["threshold"])
		assert.Equal(t, 2, recorded.Len())
	})

	t.Run("record not found on request", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Error, WithRecordNotFound(true))
		l.Trace(context.Background(), time.Now(), sqlFn, gormlogger.ErrRecordNotFound)
		assert.Equal(t, 1, recorded.FilterLevelExact(zapcore.ErrorLevel).Len())
	})

	t.Run("silent", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Info).LogMode(gormlogger.Silent)
		l.Trace(context.Background(), time.Now(), sqlFn, errors.New("x"))
		assert.Zero(t, recorded.Len())
	})
}

func TestGormLogger_Printf(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Warn)

	ctx := WithRequestID(context.Background(), "req-2")
	l.Info(ctx, "skipped %d", 1)
	l.Warn(ctx, "replacing callback %s", "otelgorm")
	l.Error(ctx, "failed: %v", errors.New("boom"))

	entries := recorded.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "replacing callback otelgorm", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "req-2", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "failed: boom", entries[1].Message)
}

func TestRedactSQL(t *testing.T) {
	assert.Equal(t, `SELECT 1`, RedactSQL(`SELECT 1`))
	assert.Equal(t, `'{"token":"****"}'`, RedactSQL(`'{"token":"abc123"}'`))
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("unknown"))
}
