package logger

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// tokenField matches the seller token inside a rendered config blob
var tokenField = regexp.MustCompile(`("token"\s*:\s*")[^"]*(")`)

// GormLogger routes GORM statements for the config blob table into zap.
// Statements carry the request and check IDs found on the context.
type GormLogger struct {
	log      *zap.Logger
	level    gormlogger.LogLevel
	slow     time.Duration
	withSQL  bool
	notFound bool
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the duration above which a statement is logged
// as slow. Zero disables slow query logging.
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) {
		l.slow = threshold
	}
}

// WithFullSQL adds the rendered statement to each entry with the seller
// token masked
func WithFullSQL(enabled bool) GormLoggerOption {
	return func(l *GormLogger) {
		l.withSQL = enabled
	}
}

// WithRecordNotFound logs gorm.ErrRecordNotFound as an error. A missing
// blob is the normal first-run state, so it is skipped by default.
func WithRecordNotFound(enabled bool) GormLoggerOption {
	return func(l *GormLogger) {
		l.notFound = enabled
	}
}

// NewGormLogger creates a GORM logger backed by zap
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	l := &GormLogger{
		log:   zapLogger.Named("gorm"),
		level: level,
		slow:  defaultSlowQuery,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, min gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if l.level < min {
		return
	}
	l.log.With(l.contextFields(ctx)...).Sugar().Logf(lvl, msg, data...)
}

// Trace implements gormlogger.Interface
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var (
		lvl zapcore.Level
		msg string
	)
	switch {
	case err != nil:
		if l.level < gormlogger.Error || (!l.notFound && errors.Is(err, gormlogger.ErrRecordNotFound)) {
			return
		}
		lvl, msg = zapcore.ErrorLevel, "SQL error"
	case l.slow > 0 && elapsed > l.slow:
		if l.level < gormlogger.Warn {
			return
		}
		lvl, msg = zapcore.WarnLevel, "Slow SQL"
	default:
		if l.level < gormlogger.Info {
			return
		}
		lvl, msg = zapcore.DebugLevel, "SQL"
	}

	sql, rows := fc()
	fields := append(l.contextFields(ctx),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
	)
	if lvl == zapcore.WarnLevel {
		fields = append(fields, zap.Duration("threshold", l.slow))
	}
	if l.withSQL {
		fields = append(fields, zap.String("sql", RedactSQL(sql)))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	l.log.Log(lvl, msg, fields...)
}

func (l *GormLogger) contextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetCheckID(ctx); id != "" {
		fields = append(fields, zap.String("check_id", id))
	}
	return fields
}

// RedactSQL masks the seller token in a rendered statement
func RedactSQL(sql string) string {
	return tokenField.ReplaceAllString(sql, "${1}****${2}")
}

// MapGormLogLevel maps the application log level to a GORM level.
// debug and info show every statement; unknown levels fall back to warn.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
