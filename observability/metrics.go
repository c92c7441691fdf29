package observability

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"

	"medals/config"
	"medals/events"
)

// MetricsProvider manages OpenTelemetry metrics for the medals service
type MetricsProvider struct {
	config        *config.Config
	reader        sdkmetric.Reader
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	distributionRunsCounter   metric.Int64Counter
	medalsDistributedCounter  metric.Float64Counter
	cappedPlayersCounter      metric.Int64Counter
	raffleDrawsCounter        metric.Int64Counter
	raffleMedalsCounter       metric.Float64Counter
	ledgerTransactionsCounter metric.Int64Counter
	scoresCommittedCounter    metric.Int64Counter
	scoresSkippedCounter      metric.Int64Counter
	httpRequestsCounter       metric.Int64Counter
	httpRequestDurationHist   metric.Float64Histogram
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// NewMetricsProviderWithReader creates a provider that exports through the
// given reader regardless of the configured exporter
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

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	reader, err := mp.newReader(ctx)
	if err != nil {
		return err
	}
	if reader != nil {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter("medals")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.WithField("exporter", mp.config.OTelExporterType).Info("Metrics provider initialized successfully")
	return nil
}

// newReader picks the reader for the configured exporter. A nil reader
// with no error means instruments are created but nothing is exported.
func (mp *MetricsProvider) newReader(ctx context.Context) (sdkmetric.Reader, error) {
	if mp.reader != nil {
		return mp.reader, nil
	}

	interval := sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis) * time.Millisecond)

	switch mp.config.OTelExporterType {
	case "console":
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")
		return sdkmetric.NewPeriodicReader(exporter, interval), nil

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")
		return sdkmetric.NewPeriodicReader(exporter, interval), nil

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}
}

func (mp *MetricsProvider) createInstruments() error {
	var err error

	if mp.distributionRunsCounter, err = mp.meter.Int64Counter(
		DistributionRunsTotal,
		metric.WithDescription("Completed weighted distribution runs"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create distribution runs counter: %w", err)
	}

	if mp.medalsDistributedCounter, err = mp.meter.Float64Counter(
		MedalsDistributedTotal,
		metric.WithDescription("Medals paid out by weighted distribution"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create medals distributed counter: %w", err)
	}

	if mp.cappedPlayersCounter, err = mp.meter.Int64Counter(
		CappedPlayersTotal,
		metric.WithDescription("Players whose share hit the distribution cap"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create capped players counter: %w", err)
	}

	if mp.raffleDrawsCounter, err = mp.meter.Int64Counter(
		RaffleDrawsTotal,
		metric.WithDescription("Completed raffle draws"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create raffle draws counter: %w", err)
	}

	if mp.raffleMedalsCounter, err = mp.meter.Float64Counter(
		RaffleMedalsTotal,
		metric.WithDescription("Medals paid out to raffle winners"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create raffle medals counter: %w", err)
	}

	if mp.ledgerTransactionsCounter, err = mp.meter.Int64Counter(
		LedgerTransactionsTotal,
		metric.WithDescription("Ledger transactions recorded"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create ledger transactions counter: %w", err)
	}

	if mp.scoresCommittedCounter, err = mp.meter.Int64Counter(
		ScoresCommittedTotal,
		metric.WithDescription("Score rows committed"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create scores committed counter: %w", err)
	}

	if mp.scoresSkippedCounter, err = mp.meter.Int64Counter(
		ScoresSkippedTotal,
		metric.WithDescription("Score rows skipped at the commit gate"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create scores skipped counter: %w", err)
	}

	if mp.httpRequestsCounter, err = mp.meter.Int64Counter(
		HTTPRequestsTotal,
		metric.WithDescription("HTTP requests served"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create http requests counter: %w", err)
	}

	if mp.httpRequestDurationHist, err = mp.meter.Float64Histogram(
		HTTPRequestDuration,
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	); err != nil {
		return fmt.Errorf("failed to create http request duration histogram: %w", err)
	}

	return nil
}

// Shutdown flushes and stops the meter provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// Attach records domain events from the bus as metrics
func (mp *MetricsProvider) Attach(bus *events.Bus) {
	bus.SubscribeAll(func(ctx context.Context, event events.Event) {
		mp.RecordEvent(ctx, event)
	})
}

// RecordEvent updates the counters an event feeds
func (mp *MetricsProvider) RecordEvent(ctx context.Context, event events.Event) {
	if !mp.isEnabled() {
		return
	}

	switch e := event.(type) {
	case events.DistributionCompletedEvent:
		medal := metric.WithAttributes(attribute.String(LabelMedal, strconv.FormatInt(e.MedalID, 10)))
		mp.distributionRunsCounter.Add(ctx, 1, medal)
		mp.medalsDistributedCounter.Add(ctx, e.DistributedNow.InexactFloat64(), medal)
		mp.cappedPlayersCounter.Add(ctx, int64(e.CappedPlayers), medal)

	case events.RaffleDrawnEvent:
		medal := metric.WithAttributes(attribute.String(LabelMedal, strconv.FormatInt(e.MedalID, 10)))
		mp.raffleDrawsCounter.Add(ctx, 1, medal)
		mp.raffleMedalsCounter.Add(ctx, e.PaidOut.InexactFloat64(), medal)

	case events.LedgerTransactionRecordedEvent:
		mp.ledgerTransactionsCounter.Add(ctx, 1,
			metric.WithAttributes(attribute.String(LabelType, string(e.TransactionType))),
		)

	case events.ScoresCommittedEvent:
		mp.scoresCommittedCounter.Add(ctx, int64(e.Committed))
		mp.scoresSkippedCounter.Add(ctx, int64(e.Skipped))
	}
}

// RecordHTTPRequest records one served request
func (mp *MetricsProvider) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelMethod, method),
		attribute.String(LabelRoute, route),
		attribute.Int(LabelStatus, status),
	)
	mp.httpRequestsCounter.Add(context.Background(), 1, attrs)
	mp.httpRequestDurationHist.Record(context.Background(), duration.Seconds(), attrs)
}

func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.config.OTelEnabled
}

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

// GetMetrics returns the global metrics provider, or nil before initialization
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
