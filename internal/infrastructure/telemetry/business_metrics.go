package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Check results recorded on wbpos_checks_total.
const (
	CheckResultSuccess  = "success"
	CheckResultInvalid  = "invalid"
	CheckResultUpstream = "upstream_error"
	CheckResultConflict = "conflict"
	CheckResultFailed   = "failed"
)

// TrackerMetrics records catalog fetches and position checks.
type TrackerMetrics struct {
	pagesFetched    *Counter
	productsFetched *Counter
	fetchFailures   *Counter
	checks          *Counter
	checkDuration   *Histogram
	trackedKeywords *Gauge
}

// NewTrackerMetrics registers the tracker instruments on meter.
func NewTrackerMetrics(meter metric.Meter) (*TrackerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &TrackerMetrics{}
	var err error

	if m.pagesFetched, err = NewCounter(meter,
		"wbpos_catalog_pages_fetched_total", "Catalog pages fetched from Wildberries", "{pages}"); err != nil {
		return nil, err
	}
	if m.productsFetched, err = NewCounter(meter,
		"wbpos_catalog_products_total", "Distinct products returned by catalog fetches", "{products}"); err != nil {
		return nil, err
	}
	if m.fetchFailures, err = NewCounter(meter,
		"wbpos_catalog_fetch_failures_total", "Catalog fetches aborted by an upstream error", "{fetches}"); err != nil {
		return nil, err
	}
	if m.checks, err = NewCounter(meter,
		"wbpos_checks_total", "Position checks by result", "{checks}"); err != nil {
		return nil, err
	}
	if m.checkDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "wbpos_check_duration_seconds",
		Description: "Duration of a full position check",
		Unit:        "s",
		Boundaries:  UpstreamDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.trackedKeywords, err = NewGauge(meter,
		"wbpos_tracked_keywords", "Keywords in the saved tracking configuration", "{keywords}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordCatalogFetch records a finished catalog fetch. A failed fetch
// still counts the pages that were requested before the error.
func (m *TrackerMetrics) RecordCatalogFetch(ctx context.Context, pages, products int, failed bool) {
	if m == nil {
		return
	}
	m.pagesFetched.Add(ctx, int64(pages))
	if failed {
		m.fetchFailures.Inc(ctx)
		return
	}
	m.productsFetched.Add(ctx, int64(products))
}

// RecordCheck records a position check outcome and its duration.
func (m *TrackerMetrics) RecordCheck(ctx context.Context, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.checks.Inc(ctx, AttrResult.String(result))
	m.checkDuration.RecordDuration(ctx, d, AttrResult.String(result))
}

// SetTrackedKeywords records the configured keyword count.
func (m *TrackerMetrics) SetTrackedKeywords(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.trackedKeywords.Record(ctx, int64(n))
}
