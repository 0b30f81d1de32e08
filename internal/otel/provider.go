// Package otel wires the render loop's optional metrics into the global
// OpenTelemetry MeterProvider, the same otel.Meter(name) pattern
// internal/dispatcher uses for its own counters.
package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Config selects whether Meter returns the global meter. ServiceName is
// stored with the provider; it is not attached to emitted metrics.
type Config struct {
	Enabled     bool
	ServiceName string
}

// Provider is a thin handle around the global MeterProvider. With no SDK
// registered, Meter returns a no-op meter and instrumentation calls cost
// nothing; a caller that wants real export registers an SDK
// MeterProvider via otel.SetMeterProvider before constructing render
// components.
type Provider struct {
	config Config
}

// New creates a Provider for cfg.
func New(cfg Config) (*Provider, error) {
	return &Provider{config: cfg}, nil
}

// Meter returns a meter with the given instrumentation name.
func (p *Provider) Meter(name string) metric.Meter {
	if !p.config.Enabled {
		return noop.Meter{}
	}
	return otel.Meter(name)
}

// Enabled returns whether metrics collection is enabled.
func (p *Provider) Enabled() bool { return p.config.Enabled }

// Flush is a no-op: without an SDK MeterProvider registered, there is
// nothing to force-export.
func (p *Provider) Flush(ctx context.Context) error { return nil }

// Shutdown is a no-op for the same reason as Flush.
func (p *Provider) Shutdown(ctx context.Context) error { return nil }
