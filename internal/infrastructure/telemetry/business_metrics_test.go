package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/wbpos/backend/internal/infrastructure/telemetry"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumValue(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewTrackerMetrics_NilMeter(t *testing.T) {
	m, err := telemetry.NewTrackerMetrics(nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, m)
}

func TestTrackerMetrics_Noop(t *testing.T) {
	m, err := telemetry.NewTrackerMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordCatalogFetch(ctx, 3, 250, false)
	m.RecordCheck(ctx, telemetry.CheckResultSuccess, time.Second)
	m.SetTrackedKeywords(ctx, 4)
}

func TestTrackerMetrics_NilReceiver(t *testing.T) {
	var m *telemetry.TrackerMetrics
	assert.NotPanics(t, func() {
		m.RecordCatalogFetch(context.Background(), 1, 1, false)
		m.RecordCheck(context.Background(), telemetry.CheckResultFailed, 0)
		m.SetTrackedKeywords(context.Background(), 1)
	})
}

func TestTrackerMetrics_Values(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := telemetry.NewTrackerMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordCatalogFetch(ctx, 3, 210, false)
	m.RecordCatalogFetch(ctx, 2, 0, true)
	m.RecordCheck(ctx, telemetry.CheckResultSuccess, 2*time.Second)
	m.RecordCheck(ctx, telemetry.CheckResultSuccess, time.Second)
	m.RecordCheck(ctx, telemetry.CheckResultInvalid, time.Millisecond)
	m.SetTrackedKeywords(ctx, 7)

	got := collect(t, reader)

	assert.Equal(t, int64(5), sumValue(t, got["wbpos_catalog_pages_fetched_total"]))
	assert.Equal(t, int64(210), sumValue(t, got["wbpos_catalog_products_total"]))
	assert.Equal(t, int64(1), sumValue(t, got["wbpos_catalog_fetch_failures_total"]))
	assert.Equal(t, int64(3), sumValue(t, got["wbpos_checks_total"]))

	checks := got["wbpos_checks_total"].Data.(metricdata.Sum[int64])
	byResult := map[string]int64{}
	for _, dp := range checks.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("result"))
		byResult[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"success": 2, "invalid": 1}, byResult)

	hist, ok := got["wbpos_check_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)

	gauge, ok := got["wbpos_tracked_keywords"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(7), gauge.DataPoints[0].Value)
}
