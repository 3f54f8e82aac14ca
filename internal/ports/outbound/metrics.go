package outbound

import (
	"context"
	"time"
)

// MetricsRecorder lets services record metrics without depending on a
// telemetry implementation.
type MetricsRecorder interface {
	// RecordStrategy records one strategy invocation. status is "ok" or "error".
	RecordStrategy(ctx context.Context, name string, duration time.Duration, status string)

	// RecordStrategySkipped records a strategy not yet active at the snapshot.
	RecordStrategySkipped(ctx context.Context, name string)

	// RecordBatch records the size of one aggregated call.
	RecordBatch(ctx context.Context, network string, size int)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordStrategy(context.Context, string, time.Duration, string) {}
func (NopMetrics) RecordStrategySkipped(context.Context, string)                 {}
func (NopMetrics) RecordBatch(context.Context, string, int)                      {}
