package observability

import (
	"context"
	"testing"
	"time"

	"animalitos/config"
	"animalitos/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

func newTestProvider(t *testing.T) (*MetricsProvider, *sdkmetric.ManualReader) {
	t.Helper()
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true

	reader := sdkmetric.NewManualReader()
	mp := NewMetricsProviderWithReader(cfg, reader)
	require.NoError(t, mp.Initialize(context.Background()))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumInt(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewResource(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelServiceName = "animalitos-test"

	res, err := newResource(cfg)
	require.NoError(t, err)

	attrs := make(map[attribute.Key]string)
	for _, kv := range res.Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	assert.Equal(t, "animalitos-test", attrs[semconv.ServiceNameKey])
	assert.Equal(t, "test", attrs["environment"])
	assert.Equal(t, resource.Default().SchemaURL(), res.SchemaURL())
}

func TestMetricsProvider_ExportsServiceResource(t *testing.T) {
	mp, reader := newTestProvider(t)
	mp.RecordOperation(context.Background(), "sync", "success")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.NotNil(t, rm.Resource)

	name, ok := rm.Resource.Set().Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, config.NewTestConfig().OTelServiceName, name.AsString())
}

func TestMetricsProvider_RecordOperation(t *testing.T) {
	mp, reader := newTestProvider(t)
	ctx := context.Background()

	mp.RecordOperation(ctx, "transfer", "success")
	mp.RecordOperation(ctx, "transfer", "local")
	mp.RecordOperation(ctx, "withdraw", "rejected")
	mp.RecordHTTPRequest(ctx, "GET", "/pots", 200, 15*time.Millisecond)

	metrics := collect(t, reader)
	require.Contains(t, metrics, LedgerOperationsTotal)
	assert.Equal(t, int64(3), sumInt(t, metrics[LedgerOperationsTotal]))
	assert.Equal(t, int64(1), sumInt(t, metrics[HTTPRequestsTotal]))
	assert.Contains(t, metrics, HTTPRequestDuration)
}

func TestRegisterEventMetrics(t *testing.T) {
	mp, reader := newTestProvider(t)
	bus := events.NewBus()
	RegisterEventMetrics(bus, mp)

	ctx := context.Background()
	bus.Emit(ctx, events.BetDistributedEvent{BetID: "b1", Amount: decimal.NewFromInt(100)})
	bus.Emit(ctx, events.DrawSettledEvent{DrawID: "d1", PayoutPot: "Prize", TotalPayout: decimal.NewFromInt(37)})
	bus.Emit(ctx, events.DrawSettlementFailedEvent{DrawID: "d2", PayoutPot: "Prize"})

	// Bus handlers are asynchronous
	assert.Eventually(t, func() bool {
		metrics := collect(t, reader)
		bets, ok := metrics[BetsDistributedTotal]
		if !ok || sumInt(t, bets) != 1 {
			return false
		}
		settlements, ok := metrics[DrawSettlementsTotal]
		if !ok || sumInt(t, settlements) != 2 {
			return false
		}
		payout, ok := metrics[DrawPayoutTotal].(metricdata.Sum[float64])
		return ok && len(payout.DataPoints) == 1 && payout.DataPoints[0].Value == 37
	}, 2*time.Second, 20*time.Millisecond)
}

func TestMetricsProvider_Disabled(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = false
	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))

	// Recording on a disabled provider is a no-op
	mp.RecordOperation(context.Background(), "transfer", "success")
	mp.RecordSettlement(context.Background(), "Prize", SettlementStatusSettled, 10)

	var nilProvider *MetricsProvider
	nilProvider.RecordOperation(context.Background(), "transfer", "success")
}

func TestMetricsProvider_NoneExporter(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "none"
	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))

	mp.RecordOperation(context.Background(), "transfer", "success")
	assert.NoError(t, mp.Shutdown(context.Background()))
}
