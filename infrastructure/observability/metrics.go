package observability

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"animalitos/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// newResource describes the service on top of the SDK defaults. The service
// attributes carry no schema URL so the merge holds whatever schema version the
// SDK default resource is built with.
func newResource(cfg *config.Config) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(cfg.OTelServiceName),
			attribute.String("environment", cfg.Environment),
		),
	)
}

// MetricsProvider manages OpenTelemetry metrics for the ledger service
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	reader        sdkmetric.Reader
	initialized   bool
	mu            sync.RWMutex

	// Metric instruments
	operationsCounter  metric.Int64Counter
	payoutCounter      metric.Float64Counter
	settlementsCounter metric.Int64Counter
	betsCounter        metric.Int64Counter
	driftCounter       metric.Int64Counter
	httpCounter        metric.Int64Counter
	httpDurationHist   metric.Float64Histogram
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// NewMetricsProviderWithReader uses reader instead of an exporter, e.g. a manual reader in tests
func NewMetricsProviderWithReader(cfg *config.Config, reader sdkmetric.Reader) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
		reader: reader,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	res, err := newResource(mp.config)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	reader := mp.reader
	if reader == nil {
		var exporter sdkmetric.Exporter
		switch mp.config.OTelExporterType {
		case "console":
			exporter, err = stdoutmetric.New()
			if err != nil {
				return fmt.Errorf("failed to create console exporter: %w", err)
			}
			log.Info("Using console metric exporter")

		case "otlp":
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			exporter, err = otlpmetricgrpc.New(ctx,
				otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
				otlpmetricgrpc.WithInsecure(),
			)
			if err != nil {
				return fmt.Errorf("failed to create OTLP exporter: %w", err)
			}
			log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

		case "none":
			log.Info("Metrics export disabled (exporter_type='none')")
			mp.initialized = true
			return nil

		default:
			return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
		}

		reader = sdkmetric.NewPeriodicReader(
			exporter,
			sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
		)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)

	otel.SetMeterProvider(mp.meterProvider)

	mp.meter = mp.meterProvider.Meter("animalitos-ledger")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.operationsCounter, err = mp.meter.Int64Counter(
		LedgerOperationsTotal,
		metric.WithDescription("Total number of ledger operations by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create ledger operations counter: %w", err)
	}

	mp.payoutCounter, err = mp.meter.Float64Counter(
		DrawPayoutTotal,
		metric.WithDescription("Total amount paid to winners by payout pot"),
	)
	if err != nil {
		return fmt.Errorf("failed to create payout counter: %w", err)
	}

	mp.settlementsCounter, err = mp.meter.Int64Counter(
		DrawSettlementsTotal,
		metric.WithDescription("Total number of draw settlements by status"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create settlements counter: %w", err)
	}

	mp.betsCounter, err = mp.meter.Int64Counter(
		BetsDistributedTotal,
		metric.WithDescription("Total number of bets distributed across pots"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create bets counter: %w", err)
	}

	mp.driftCounter, err = mp.meter.Int64Counter(
		ReconciliationDriftTotal,
		metric.WithDescription("Total number of reconciliation runs that found drift"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create drift counter: %w", err)
	}

	mp.httpCounter, err = mp.meter.Int64Counter(
		HTTPRequestsTotal,
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create HTTP requests counter: %w", err)
	}

	mp.httpDurationHist, err = mp.meter.Float64Histogram(
		HTTPRequestDuration,
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request duration histogram: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordOperation counts a ledger operation by its outcome
func (mp *MetricsProvider) RecordOperation(ctx context.Context, operation, outcome string) {
	if !mp.isEnabled() {
		return
	}

	mp.operationsCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(LabelOperation, operation),
			attribute.String(LabelOutcome, outcome),
		),
	)
}

// RecordBetDistributed counts a bet whose stake was split across pots
func (mp *MetricsProvider) RecordBetDistributed(ctx context.Context) {
	if !mp.isEnabled() {
		return
	}
	mp.betsCounter.Add(ctx, 1)
}

// RecordSettlement counts a draw settlement and adds its payout
func (mp *MetricsProvider) RecordSettlement(ctx context.Context, payoutPot string, status string, payout float64) {
	if !mp.isEnabled() {
		return
	}

	mp.settlementsCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(LabelPot, payoutPot),
			attribute.String(LabelStatus, status),
		),
	)
	if payout > 0 {
		mp.payoutCounter.Add(ctx, payout, metric.WithAttributes(attribute.String(LabelPot, payoutPot)))
	}
}

// RecordDrift counts a reconciliation run that reported drift
func (mp *MetricsProvider) RecordDrift(ctx context.Context) {
	if !mp.isEnabled() {
		return
	}
	mp.driftCounter.Add(ctx, 1)
}

// RecordHTTPRequest records an HTTP request with duration
func (mp *MetricsProvider) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelMethod, method),
		attribute.String(LabelRoute, route),
		attribute.String(LabelStatus, strconv.Itoa(status)),
	)

	mp.httpCounter.Add(ctx, 1, attrs)
	mp.httpDurationHist.Record(ctx, duration.Seconds(), attrs)
}

// isEnabled checks if metrics are enabled and instruments exist
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.config.OTelEnabled && mp.meter != nil
}

// Global metrics provider instance
var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics != nil {
		return globalMetrics.Shutdown(ctx)
	}
	return nil
}
