package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/archon-research/snapshot-scores/internal/ports/outbound"
)

var _ outbound.MetricsRecorder = (*ScoreMetrics)(nil)

const instrumentationName = "github.com/archon-research/snapshot-scores"

// ScoreMetrics records strategy and multicall metrics with OpenTelemetry.
type ScoreMetrics struct {
	strategyDuration  metric.Float64Histogram
	strategiesSkipped metric.Int64Counter
	batchSize         metric.Int64Histogram
}

// NewScoreMetrics uses the global meter provider.
func NewScoreMetrics() (*ScoreMetrics, error) {
	return NewScoreMetricsWithProvider(otel.GetMeterProvider())
}

// NewScoreMetricsWithProvider uses mp instead of the global meter provider.
func NewScoreMetricsWithProvider(mp metric.MeterProvider) (*ScoreMetrics, error) {
	meter := mp.Meter(instrumentationName)

	duration, err := meter.Float64Histogram(
		"strategy_duration_seconds",
		metric.WithDescription("Time taken by one strategy invocation"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create strategy_duration_seconds histogram: %w", err)
	}

	skipped, err := meter.Int64Counter(
		"strategies_skipped_total",
		metric.WithDescription("Strategies not yet active at the requested snapshot"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create strategies_skipped_total counter: %w", err)
	}

	batch, err := meter.Int64Histogram(
		"multicall_batch_size",
		metric.WithDescription("Number of calls per aggregated multicall"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 50, 100, 500, 1000),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create multicall_batch_size histogram: %w", err)
	}

	return &ScoreMetrics{
		strategyDuration:  duration,
		strategiesSkipped: skipped,
		batchSize:         batch,
	}, nil
}

func (m *ScoreMetrics) RecordStrategy(ctx context.Context, name string, duration time.Duration, status string) {
	m.strategyDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("strategy", name),
		attribute.String("status", status),
	))
}

func (m *ScoreMetrics) RecordStrategySkipped(ctx context.Context, name string) {
	m.strategiesSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("strategy", name)))
}

func (m *ScoreMetrics) RecordBatch(ctx context.Context, network string, size int) {
	m.batchSize.Record(ctx, int64(size), metric.WithAttributes(attribute.String("network", network)))
}
