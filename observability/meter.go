package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/terralab/prockit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g. "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds metric instruments for provider registry observability.
type Metrics struct {
	refreshTotal    metric.Int64Counter
	refreshDuration metric.Float64Histogram
	algorithmCount  metric.Int64UpDownCounter
	providerCount   metric.Int64UpDownCounter
	errorTotal      metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	refreshTotal, err := meter.Int64Counter("provider.refresh.total",
		metric.WithDescription("Total number of algorithm refreshes by provider and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating provider.refresh.total counter: %w", err)
	}

	refreshDuration, err := meter.Float64Histogram("provider.refresh.duration",
		metric.WithDescription("Duration of algorithm refreshes in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating provider.refresh.duration histogram: %w", err)
	}

	algorithmCount, err := meter.Int64UpDownCounter("provider.algorithms",
		metric.WithDescription("Number of algorithms currently registered per provider"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating provider.algorithms gauge: %w", err)
	}

	providerCount, err := meter.Int64UpDownCounter("registry.providers",
		metric.WithDescription("Number of providers currently in the registry"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registry.providers gauge: %w", err)
	}

	errorTotal, err := meter.Int64Counter("error.total",
		metric.WithDescription("Total errors by type and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &Metrics{
		refreshTotal:    refreshTotal,
		refreshDuration: refreshDuration,
		algorithmCount:  algorithmCount,
		providerCount:   providerCount,
		errorTotal:      errorTotal,
	}, nil
}

// RecordRefresh records a completed algorithm refresh for a provider.
// The delta is the change in the provider's registered algorithm count.
func (m *Metrics) RecordRefresh(ctx context.Context, providerID, status string, duration time.Duration, delta int64) {
	m.refreshTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrProviderID, providerID),
		attribute.String(AttrStatus, status),
	))
	m.refreshDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrProviderID, providerID),
	))
	if delta != 0 {
		m.algorithmCount.Add(ctx, delta, metric.WithAttributes(
			attribute.String(AttrProviderID, providerID),
		))
	}
}

// RecordProviderAdded increments the registered provider count.
func (m *Metrics) RecordProviderAdded(ctx context.Context) {
	m.providerCount.Add(ctx, 1)
}

// RecordProviderRemoved decrements the registered provider count.
func (m *Metrics) RecordProviderRemoved(ctx context.Context) {
	m.providerCount.Add(ctx, -1)
}

// RecordError records an error by type and component.
func (m *Metrics) RecordError(ctx context.Context, errType, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", errType),
		attribute.String("component", component),
	))
}
