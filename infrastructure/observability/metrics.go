package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"plushiebot/config"
	"plushiebot/events"

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

// MetricsProvider manages OpenTelemetry metrics for the bot
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	messagesClassifiedCounter    metric.Int64Counter
	dropRollsCounter             metric.Int64Counter
	dropsRecordedCounter         metric.Int64Counter
	cyclesCounter                metric.Int64Counter
	natsMessagesPublishedCounter metric.Int64Counter
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

	if err := mp.createInstruments(mp.meterProvider.Meter("plushiebot")); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// createInstruments creates all metric instruments on the meter
func (mp *MetricsProvider) createInstruments(meter metric.Meter) error {
	mp.meter = meter

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&mp.messagesClassifiedCounter, MessagesClassifiedTotal, "Game bot messages classified, by kind"},
		{&mp.dropRollsCounter, DropRollsTotal, "Drop rolls, by method and result"},
		{&mp.dropsRecordedCounter, DropsRecordedTotal, "Drops committed to the database"},
		{&mp.cyclesCounter, CyclesTotal, "Announcement cycle runs, by status"},
		{&mp.natsMessagesPublishedCounter, NATSMessagesPublishedTotal, "Events published to NATS"},
	}

	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.description), metric.WithUnit("1"))
		if err != nil {
			return fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
		*c.target = counter
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

// RecordClassification counts a classified game bot message
func (mp *MetricsProvider) RecordClassification(ctx context.Context, kind string) {
	if !mp.isEnabled() {
		return
	}
	mp.messagesClassifiedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelKind, kind)))
}

// RecordRoll counts a drop roll
func (mp *MetricsProvider) RecordRoll(ctx context.Context, method string, dropped bool) {
	if !mp.isEnabled() {
		return
	}
	result := "miss"
	if dropped {
		result = "hit"
	}
	mp.dropRollsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(LabelMethod, method),
		attribute.String(LabelResult, result),
	))
}

// RecordCycle counts an announcement cycle run
func (mp *MetricsProvider) RecordCycle(ctx context.Context, status string) {
	if !mp.isEnabled() {
		return
	}
	mp.cyclesCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelStatus, status)))
}

// RecordNATSMessagePublished counts an event published to NATS
func (mp *MetricsProvider) RecordNATSMessagePublished(eventType string) {
	if !mp.isEnabled() {
		return
	}
	mp.natsMessagesPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)),
	)
}

// SubscribeToBus counts committed drops from the local event bus
func (mp *MetricsProvider) SubscribeToBus(bus *events.Bus) {
	bus.Subscribe(events.EventTypeDropRecorded, func(ctx context.Context, event events.Event) {
		drop, ok := event.(events.DropRecordedEvent)
		if !ok || !mp.isEnabled() {
			return
		}
		mp.dropsRecordedCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String(LabelMethod, drop.Method),
			attribute.Bool(LabelManual, drop.Manual),
		))
	})
}

// isEnabled checks if metrics are enabled and initialized
func (mp *MetricsProvider) isEnabled() bool {
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
