package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/cloudapp/webapp/config"
)

const meterName = "github.com/cloudapp/webapp"

// Metrics owns the meter provider and the instruments recorded around every handler.
type Metrics struct {
	provider        *sdkmetric.MeterProvider
	calls           metric.Int64Counter
	requestDuration metric.Float64Histogram
	dbDuration      metric.Float64Histogram
	storageDuration metric.Float64Histogram
}

// NewMetrics builds the meter provider. Without an OTLP endpoint measurements stay in-process,
// readers passed in are attached in addition to the exporter.
func NewMetrics(ctx context.Context, cfg config.AppConfig, readers ...sdkmetric.Reader) (*Metrics, error) {
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
	))
	if err != nil {
		return nil, fmt.Errorf("metrics resource: %w", err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if cfg.OTLPEndpoint != "" {
		exporter, err := newOTLPExporter(ctx, cfg.OTLPEndpoint)
		if err != nil {
			return nil, err
		}
		interval := time.Duration(cfg.MetricsExportInterval) * time.Second
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))))
	}
	for _, r := range readers {
		opts = append(opts, sdkmetric.WithReader(r))
	}

	provider := sdkmetric.NewMeterProvider(opts...)
	m, err := newInstruments(provider)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}
	if err := runtime.Start(runtime.WithMeterProvider(provider)); err != nil {
		_ = provider.Shutdown(ctx)
		return nil, fmt.Errorf("runtime metrics: %w", err)
	}
	return m, nil
}

func newOTLPExporter(ctx context.Context, endpoint string) (sdkmetric.Exporter, error) {
	var opt otlpmetrichttp.Option
	if strings.Contains(endpoint, "://") {
		opt = otlpmetrichttp.WithEndpointURL(endpoint)
	} else {
		opt = otlpmetrichttp.WithEndpoint(endpoint)
	}
	exporter, err := otlpmetrichttp.New(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("otlp metric exporter: %w", err)
	}
	return exporter, nil
}

func newInstruments(provider *sdkmetric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(meterName)

	calls, err := meter.Int64Counter("api.calls",
		metric.WithDescription("Handler invocations per endpoint"))
	if err != nil {
		return nil, err
	}
	requestDuration, err := meter.Float64Histogram("api.duration",
		metric.WithDescription("Wall-clock handler duration"), metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	dbDuration, err := meter.Float64Histogram("db.duration",
		metric.WithDescription("Database call duration"), metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	storageDuration, err := meter.Float64Histogram("storage.duration",
		metric.WithDescription("Object storage call duration"), metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		provider:        provider,
		calls:           calls,
		requestDuration: requestDuration,
		dbDuration:      dbDuration,
		storageDuration: storageDuration,
	}, nil
}

// RecordCall increments the per-endpoint call counter.
func (m *Metrics) RecordCall(ctx context.Context, endpoint, method string) {
	m.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("method", method),
	))
}

// ObserveRequest records the whole-handler timer.
func (m *Metrics) ObserveRequest(ctx context.Context, endpoint, method string, status int, d time.Duration) {
	m.requestDuration.Record(ctx, millis(d), metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("method", method),
		attribute.Int("status", status),
	))
}

// ObserveDB records one database call started at start.
func (m *Metrics) ObserveDB(ctx context.Context, operation string, start time.Time) {
	m.dbDuration.Record(ctx, millis(time.Since(start)), metric.WithAttributes(attribute.String("operation", operation)))
}

// ObserveStorage records one object-storage call started at start.
func (m *Metrics) ObserveStorage(ctx context.Context, operation string, start time.Time) {
	m.storageDuration.Record(ctx, millis(time.Since(start)), metric.WithAttributes(attribute.String("operation", operation)))
}

// Shutdown flushes pending measurements to the exporter.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if err := m.provider.Shutdown(ctx); err != nil && !errors.Is(err, sdkmetric.ErrReaderShutdown) {
		return err
	}
	return nil
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
