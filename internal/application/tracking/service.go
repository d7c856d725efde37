// Package tracking runs keyword position checks and renders their history.
package tracking

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wbpos/backend/internal/domain/shared"
	"github.com/wbpos/backend/internal/domain/tracking"
	"github.com/wbpos/backend/internal/infrastructure/logger"
	"github.com/wbpos/backend/internal/infrastructure/telemetry"
)

// ProductLabeler names a product for the table header
type ProductLabeler interface {
	ProductLabel(ctx context.Context, token string, productID int64) string
}

// Service owns the tracking config load/merge/save cycle
type Service struct {
	repo       tracking.ConfigRepository
	sampler    tracking.RankSampler
	labeler    ProductLabeler
	windowDays int
	topN       int
	metrics    *telemetry.TrackerMetrics
	logger     *zap.Logger
	now        func() time.Time

	running atomic.Bool
}

// Option configures a Service
type Option func(*Service)

// WithLabeler resolves product labels, e.g. from the catalog snapshot
func WithLabeler(l ProductLabeler) Option {
	return func(s *Service) {
		s.labeler = l
	}
}

// WithWindowDays sets how many trailing days a check samples
func WithWindowDays(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.windowDays = n
		}
	}
}

// WithTopN sets the rank window. Stored or sampled ranks above it are
// recorded as Absent.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithMetrics records check counters
func WithMetrics(m *telemetry.TrackerMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithClock sets the time source used for check timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a tracking service
func NewService(repo tracking.ConfigRepository, sampler tracking.RankSampler, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		sampler:    sampler,
		windowDays: tracking.DefaultWindowDays,
		topN:       tracking.DefaultTopN,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveConfigCommand replaces the configurable part of the tracking config.
// Version must equal the version the caller last loaded.
type SaveConfigCommand struct {
	Token     string
	ProductID int64
	Keywords  []string
	Version   int64
}

// RunCheckCommand starts a check. When ExpectedVersion is set the check is
// refused unless the stored config still has that version.
type RunCheckCommand struct {
	ExpectedVersion *int64
}

// CheckResult reports one completed check
type CheckResult struct {
	CheckID    string           `json:"checkId"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
	Version    int64            `json:"version"`
	Points     int              `json:"points"`
	Config     *tracking.Config `json:"-"`
	Table      *Table           `json:"table"`
}

// IsCheckRunning reports whether a check is in flight
func (s *Service) IsCheckRunning() bool {
	return s.running.Load()
}

// LoadConfig returns the stored config. Nothing stored yields an empty
// config at version 0. An undecodable blob is logged and replaced by an
// empty config carrying the blob's version, so the next save overwrites it.
func (s *Service) LoadConfig(ctx context.Context) (*tracking.Config, error) {
	cfg, err := s.repo.Load(ctx)
	if err == nil {
		if n := cfg.History.BoundRanks(s.topN); n > 0 {
			logger.WithLogger(ctx, s.logger).Warn("Stored ranks outside the top-N window loaded as absent",
				zap.Int("points", n), zap.Int("top_n", s.topN))
		}
		return cfg, nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		return tracking.NewConfig(), nil
	}
	var pe *shared.PersistenceError
	if errors.As(err, &pe) {
		logger.WithLogger(ctx, s.logger).Error("Stored tracking config is malformed, starting empty",
			zap.String("key", pe.Key), zap.Int64("version", pe.Version), zap.Error(pe.Cause))
		empty := tracking.NewConfig()
		empty.SetVersion(pe.Version)
		return empty, nil
	}
	return nil, err
}

// SaveConfig stores token, product and keywords. The recorded history is kept.
func (s *Service) SaveConfig(ctx context.Context, cmd SaveConfigCommand) (*tracking.Config, error) {
	if cmd.Version < 0 {
		return nil, shared.NewValidationError("version", "must not be negative")
	}
	cfg, err := s.LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.GetVersion() != cmd.Version {
		return nil, shared.ErrVersionConflict
	}

	cfg.Token = strings.TrimSpace(cmd.Token)
	if err := cfg.SetProduct(cmd.ProductID); err != nil {
		return nil, err
	}
	cfg.SetKeywords(cmd.Keywords)

	if err := s.repo.Save(ctx, cfg); err != nil {
		return nil, err
	}
	s.metrics.SetTrackedKeywords(ctx, len(cfg.Keywords))
	s.logger.Info("Tracking config saved",
		zap.Int64("product_id", cfg.ProductID),
		zap.Int("keywords", len(cfg.Keywords)),
		zap.Int64("version", cfg.GetVersion()),
	)
	return cfg, nil
}

// RunCheck samples ranks for the configured product and keywords, merges
// them into the history and saves the result. Only one check runs at a
// time; a second call while one is in flight gets ErrCheckInProgress.
func (s *Service) RunCheck(ctx context.Context, cmd RunCheckCommand) (*CheckResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, shared.ErrCheckInProgress
	}
	defer s.running.Store(false)

	result := &CheckResult{CheckID: uuid.NewString(), StartedAt: s.now()}
	ctx = logger.WithCheckID(ctx, result.CheckID)
	ctx, span := telemetry.StartServiceSpan(ctx, "tracking", "run_check",
		telemetry.WithAttribute(telemetry.SpanAttrCheckID, result.CheckID))
	defer span.End()
	log := logger.WithLogger(ctx, s.logger)

	outcome := telemetry.CheckResultFailed
	defer func() {
		s.metrics.RecordCheck(ctx, outcome, s.now().Sub(result.StartedAt))
	}()

	err := s.runCheck(ctx, cmd, result)
	if err != nil {
		outcome = checkOutcome(err)
		telemetry.RecordError(span, err)
		log.Warn("Position check failed", zap.String("result", outcome), zap.Error(err))
		return nil, err
	}

	outcome = telemetry.CheckResultSuccess
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProductID, result.Config.ProductID,
		telemetry.SpanAttrKeywordCount, len(result.Config.Keywords),
	)
	telemetry.SetOK(span)
	log.Info("Position check finished",
		zap.Int64("product_id", result.Config.ProductID),
		zap.Int("points", result.Points),
		zap.Int64("version", result.Version),
	)
	return result, nil
}

func (s *Service) runCheck(ctx context.Context, cmd RunCheckCommand, result *CheckResult) error {
	cfg, err := s.LoadConfig(ctx)
	if err != nil {
		return err
	}
	if cmd.ExpectedVersion != nil && *cmd.ExpectedVersion != cfg.GetVersion() {
		return shared.ErrVersionConflict
	}
	if err := cfg.ValidateForCheck(); err != nil {
		return err
	}

	obs, err := s.sampler.Sample(ctx, tracking.SampleRequest{
		Token:      cfg.Token,
		ProductID:  cfg.ProductID,
		Keywords:   cfg.Keywords,
		WindowDays: s.windowDays,
	})
	if err != nil {
		return err
	}

	cfg.Record(obs)
	if n := cfg.History.BoundRanks(s.topN); n > 0 {
		logger.WithLogger(ctx, s.logger).Warn("Sampled ranks outside the top-N window recorded as absent",
			zap.Int("points", n), zap.Int("top_n", s.topN))
	}
	if err := s.repo.Save(ctx, cfg); err != nil {
		return err
	}

	for _, points := range obs {
		result.Points += len(points)
	}
	result.FinishedAt = s.now()
	result.Version = cfg.GetVersion()
	result.Config = cfg
	result.Table = Render(cfg.History, cfg.Keywords, s.productLabel(ctx, cfg))
	s.metrics.SetTrackedKeywords(ctx, len(cfg.Keywords))
	return nil
}

// Table renders the stored history for the configured keywords
func (s *Service) Table(ctx context.Context) (*Table, error) {
	cfg, err := s.LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return Render(cfg.History, cfg.Keywords, s.productLabel(ctx, cfg)), nil
}

func (s *Service) productLabel(ctx context.Context, cfg *tracking.Config) string {
	if !cfg.HasProduct() {
		return NoProductLabel
	}
	if s.labeler == nil {
		return fallbackLabel(cfg.ProductID)
	}
	return s.labeler.ProductLabel(ctx, cfg.Token, cfg.ProductID)
}

func checkOutcome(err error) string {
	switch {
	case shared.IsValidation(err):
		return telemetry.CheckResultInvalid
	case shared.IsUpstream(err):
		return telemetry.CheckResultUpstream
	case errors.Is(err, shared.ErrVersionConflict):
		return telemetry.CheckResultConflict
	default:
		return telemetry.CheckResultFailed
	}
}
