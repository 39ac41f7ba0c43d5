// Package observe holds the OpenTelemetry metric instruments of the service
// and the Prometheus bridge that exposes them on /metrics.
//
// A package-level default [Metrics] instance ([DefaultMetrics]) reads the
// global meter provider; tests should use [NewMetrics] with their own
// provider.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/pokedex-genai/server"

// Metrics holds all metric instruments. The OTel types are safe for
// concurrent use.
type Metrics struct {
	// TurnDuration tracks end-to-end turn latency by route.
	TurnDuration metric.Float64Histogram

	// Turns counts turns. Attributes: route, outcome.
	Turns metric.Int64Counter

	// TurnErrors counts failed turns. Attribute: failure.
	TurnErrors metric.Int64Counter

	// RefinerRetries counts reduced-constraint retries.
	RefinerRetries metric.Int64Counter

	// RefinerDrops counts opponents that ended without a candidate.
	RefinerDrops metric.Int64Counter

	// ToolCalls counts tool invocations. Attributes: tool, status.
	ToolCalls metric.Int64Counter

	// HTTPRequestDuration tracks HTTP latency by method and path.
	HTTPRequestDuration metric.Float64Histogram
}

// turnBuckets are in seconds; a turn makes several sequential model calls.
var turnBuckets = []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60}

func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.TurnDuration, err = m.Float64Histogram("pokedex.turn.duration",
		metric.WithDescription("Latency of one orchestrated turn."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(turnBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Turns, err = m.Int64Counter("pokedex.turns",
		metric.WithDescription("Total turns by route and outcome."),
	); err != nil {
		return nil, err
	}
	if met.TurnErrors, err = m.Int64Counter("pokedex.turn.errors",
		metric.WithDescription("Total failed turns by failure reason."),
	); err != nil {
		return nil, err
	}
	if met.RefinerRetries, err = m.Int64Counter("pokedex.refiner.retries",
		metric.WithDescription("Total reduced-constraint retries issued by the refiner."),
	); err != nil {
		return nil, err
	}
	if met.RefinerDrops, err = m.Int64Counter("pokedex.refiner.drops",
		metric.WithDescription("Total opponents that produced no candidate."),
	); err != nil {
		return nil, err
	}
	if met.ToolCalls, err = m.Int64Counter("pokedex.tool.calls",
		metric.WithDescription("Total tool invocations by tool name and status."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("pokedex.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level instance built from
// otel.GetMeterProvider on first use.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

func (m *Metrics) RecordTurn(ctx context.Context, route, outcome, failure string, seconds float64) {
	m.Turns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("outcome", outcome),
	))
	m.TurnDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String("route", route)))
	if failure != "" {
		m.TurnErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("failure", failure)))
	}
}

func (m *Metrics) RecordRefinerRetry(ctx context.Context) {
	m.RefinerRetries.Add(ctx, 1)
}

func (m *Metrics) RecordRefinerDrop(ctx context.Context) {
	m.RefinerDrops.Add(ctx, 1)
}

func (m *Metrics) RecordToolCall(ctx context.Context, tool, status string) {
	m.ToolCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("status", status),
	))
}
