package observability

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"gambler/challenge-service/config"
	"gambler/challenge-service/domain/events"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider manages OpenTelemetry metrics for the challenge service
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	eventsCounter         metric.Int64Counter
	openChallengesGauge   metric.Int64UpDownCounter
	settledStakeCounter   metric.Float64Counter
	expirySweepsCounter   metric.Int64Counter
	expiredCounter        metric.Int64Counter
	balanceChangesCounter metric.Int64Counter
	natsPublishedCounter  metric.Int64Counter
	httpRequestsCounter   metric.Int64Counter
	httpDurationHist      metric.Float64Histogram
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Println("OpenTelemetry metrics disabled")
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

	var exporter sdkmetric.Exporter
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Println("Using console metric exporter")

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
		log.Printf("Using OTLP metric exporter: %s", mp.config.OTelOTLPEndpoint)

	case "none":
		log.Println("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				exporter,
				sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
			),
		),
	)
	otel.SetMeterProvider(mp.meterProvider)

	if err := mp.createInstruments(mp.meterProvider.Meter("challenge-service")); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Println("Metrics provider initialized successfully")
	return nil
}

// createInstruments creates all metric instruments on the given meter
func (mp *MetricsProvider) createInstruments(meter metric.Meter) error {
	var err error
	mp.meter = meter

	if mp.eventsCounter, err = meter.Int64Counter(EventsTotal,
		metric.WithDescription("Total number of domain events published"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create events counter: %w", err)
	}

	if mp.openChallengesGauge, err = meter.Int64UpDownCounter(ChallengesOpen,
		metric.WithDescription("Challenges created but not yet closed by this process"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create open challenges gauge: %w", err)
	}

	if mp.settledStakeCounter, err = meter.Float64Counter(SettledStakeTotal,
		metric.WithDescription("Total stake amount of settled challenges"),
		metric.WithUnit("USD"),
	); err != nil {
		return fmt.Errorf("failed to create settled stake counter: %w", err)
	}

	if mp.expirySweepsCounter, err = meter.Int64Counter(ExpirySweepsTotal,
		metric.WithDescription("Total number of expiry sweeps run"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create expiry sweeps counter: %w", err)
	}

	if mp.expiredCounter, err = meter.Int64Counter(ExpiredTotal,
		metric.WithDescription("Total number of negotiations expired"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create expired counter: %w", err)
	}

	if mp.balanceChangesCounter, err = meter.Int64Counter(BalanceChangesTotal,
		metric.WithDescription("Total number of balance transactions"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create balance transactions counter: %w", err)
	}

	if mp.natsPublishedCounter, err = meter.Int64Counter(NATSPublishedTotal,
		metric.WithDescription("Total number of NATS messages published"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create NATS published counter: %w", err)
	}

	if mp.httpRequestsCounter, err = meter.Int64Counter(HTTPRequestsTotal,
		metric.WithDescription("Total number of HTTP requests served"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create HTTP requests counter: %w", err)
	}

	if mp.httpDurationHist, err = meter.Float64Histogram(HTTPRequestDuration,
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	); err != nil {
		return fmt.Errorf("failed to create HTTP duration histogram: %w", err)
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

// HandleEvent records metrics for a published domain event.
// It has the local event handler signature so the publisher can call it in-process.
func (mp *MetricsProvider) HandleEvent(ctx context.Context, event events.Event) error {
	if !mp.isEnabled() {
		return nil
	}

	eventType := string(event.Type())
	mp.eventsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelEventType, eventType)))

	switch e := event.(type) {
	case events.ChallengeStateChangeEvent:
		gameType := attribute.String(LabelGameType, string(e.GameType))
		switch e.Kind {
		case events.EventTypeChallengeCreated:
			mp.openChallengesGauge.Add(ctx, 1, metric.WithAttributes(gameType))
		case events.EventTypeChallengeDeclined, events.EventTypeChallengeExpired, events.EventTypeChallengeVoided:
			mp.openChallengesGauge.Add(ctx, -1, metric.WithAttributes(gameType))
		}
		if e.Kind == events.EventTypeChallengeExpired {
			mp.expiredCounter.Add(ctx, 1)
		}
	case events.ChallengeSettledEvent:
		stake, _ := e.StakeAmount.Float64()
		gameType := attribute.String(LabelGameType, string(e.GameType))
		mp.settledStakeCounter.Add(ctx, stake, metric.WithAttributes(gameType))
		mp.openChallengesGauge.Add(ctx, -1, metric.WithAttributes(gameType))
	case events.BalanceChangeEvent:
		mp.balanceChangesCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelType, string(e.TransactionType))))
	}
	return nil
}

// RecordNATSMessagePublished records a NATS message being published
func (mp *MetricsProvider) RecordNATSMessagePublished(eventType string) {
	if !mp.isEnabled() {
		return
	}
	mp.natsPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)),
	)
}

// RecordExpirySweep records one run of the expiry worker
func (mp *MetricsProvider) RecordExpirySweep() {
	if !mp.isEnabled() {
		return
	}
	mp.expirySweepsCounter.Add(context.Background(), 1)
}

// RecordHTTPRequest records a served HTTP request with its duration
func (mp *MetricsProvider) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelMethod, method),
		attribute.String(LabelRoute, route),
		attribute.Int(LabelStatusCode, status),
	)
	mp.httpRequestsCounter.Add(context.Background(), 1, attrs)
	mp.httpDurationHist.Record(context.Background(), duration.Seconds(), attrs)
}

// isEnabled checks if metrics are enabled and initialized
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.meter != nil
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
