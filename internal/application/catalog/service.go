// Package catalog lists a seller's marketplace products.
package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wbpos/backend/internal/domain/catalog"
	"github.com/wbpos/backend/internal/domain/shared"
	"github.com/wbpos/backend/internal/infrastructure/logger"
	"github.com/wbpos/backend/internal/infrastructure/telemetry"
)

// NoProductLabel is shown when no product is selected
const NoProductLabel = "—"

// DefaultCacheTTL is how long a fetched listing stays available for labels
const DefaultCacheTTL = time.Hour

// Service fetches complete product listings from the upstream catalog
type Service struct {
	fetcher  catalog.PageFetcher
	cache    catalog.SnapshotCache
	cacheTTL time.Duration
	maxPages int
	metrics  *telemetry.TrackerMetrics
	logger   *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithCache keeps the last listing per token for ttl
func WithCache(cache catalog.SnapshotCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithMaxPages overrides the page cap of one sync
func WithMaxPages(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

// WithMetrics records page and product counters
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

// NewService creates a catalog service over fetcher
func NewService(fetcher catalog.PageFetcher, opts ...Option) *Service {
	s := &Service{
		fetcher:  fetcher,
		cacheTTL: DefaultCacheTTL,
		maxPages: catalog.DefaultMaxPages,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchCatalog walks every page for token, optionally narrowed by a text
// search, and returns the deduplicated products. A failing page fails the
// whole call with an UpstreamError and no products.
func (s *Service) FetchCatalog(ctx context.Context, token, search string) ([]catalog.Product, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, shared.NewValidationError("token", "is required")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "fetch")
	defer span.End()

	pager := catalog.NewPager(s.fetcher, catalog.NewPageRequest(token, strings.TrimSpace(search)),
		catalog.WithMaxPages(s.maxPages))
	raw, err := catalog.Collect(ctx, pager)
	if err != nil {
		s.metrics.RecordCatalogFetch(ctx, pager.Pages(), 0, true)
		telemetry.RecordError(span, err)
		logger.WithLogger(ctx, s.logger).Warn("Catalog fetch failed",
			zap.Int("pages", pager.Pages()), zap.Error(err))
		if !shared.IsUpstream(err) {
			err = shared.NewUpstreamFailure("catalog fetch failed", err)
		}
		return nil, err
	}

	products := catalog.Dedup(raw)
	s.metrics.RecordCatalogFetch(ctx, pager.Pages(), len(products), false)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPageCount, pager.Pages(),
		telemetry.SpanAttrProductCount, len(products),
	)
	telemetry.SetOK(span)

	if pager.Pages() >= s.maxPages {
		s.logger.Warn("Catalog sync stopped at page cap", zap.Int("max_pages", s.maxPages))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, snapshotKey(token), products, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache catalog snapshot", zap.Error(err))
		}
	}
	return products, nil
}

// ProductLabel names productID from the last listing fetched for token
func (s *Service) ProductLabel(ctx context.Context, token string, productID int64) string {
	if productID <= 0 {
		return NoProductLabel
	}
	fallback := fmt.Sprintf("nmID %d", productID)
	if s.cache == nil || strings.TrimSpace(token) == "" {
		return fallback
	}

	products, ok, err := s.cache.Get(ctx, snapshotKey(strings.TrimSpace(token)))
	if err != nil {
		s.logger.Debug("Catalog snapshot unavailable", zap.Error(err))
		return fallback
	}
	if !ok {
		return fallback
	}
	for _, p := range products {
		if p.ID == productID {
			return p.Label()
		}
	}
	return fallback
}

// snapshotKey keeps raw tokens out of cache keys
func snapshotKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:16])
}
