// Package scores runs every strategy of a space concurrently and assembles the
// per-strategy score sets in request order.
package scores

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/archon-research/snapshot-scores/internal/domain/entity"
	"github.com/archon-research/snapshot-scores/internal/ports/outbound"
)

const tracerName = "github.com/archon-research/snapshot-scores/internal/services/scores"

// Config holds the orchestrator's optional collaborators.
type Config struct {
	Logger  *slog.Logger
	Metrics outbound.MetricsRecorder
	Tracer  trace.Tracer
}

// Service is the score orchestrator.
type Service struct {
	registry outbound.StrategyRegistry
	metrics  outbound.MetricsRecorder
	tracer   trace.Tracer
	logger   *slog.Logger
}

func NewService(config Config, registry outbound.StrategyRegistry) (*Service, error) {
	if registry == nil {
		return nil, fmt.Errorf("strategy registry cannot be nil")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Metrics == nil {
		config.Metrics = outbound.NopMetrics{}
	}
	if config.Tracer == nil {
		config.Tracer = otel.Tracer(tracerName)
	}
	return &Service{
		registry: registry,
		metrics:  config.Metrics,
		tracer:   config.Tracer,
		logger:   config.Logger.With("component", "scores"),
	}, nil
}

// GetScores returns one ScoreSet per descriptor, in descriptor order.
//
// Strategies whose params.start lies after the snapshot are not invoked and
// yield an empty set. The remaining strategies run concurrently; if any of them
// fails the whole call fails with a *entity.StrategyError and no partial
// result is returned.
func (s *Service) GetScores(
	ctx context.Context,
	space string,
	strategies []entity.StrategyDescriptor,
	network entity.Network,
	conn outbound.ContractCaller,
	addresses []string,
	snapshot entity.Snapshot,
) ([]entity.ScoreSet, error) {
	ctx, span := s.tracer.Start(ctx, "scores.GetScores",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("space", space),
			attribute.String("network", string(network)),
			attribute.String("snapshot", snapshot.String()),
			attribute.Int("strategies", len(strategies)),
			attribute.Int("addresses", len(addresses)),
		),
	)
	defer span.End()

	results := make([]entity.ScoreSet, len(strategies))
	funcs := make([]outbound.StrategyFunc, len(strategies))

	// Resolve every eligible strategy before starting any of them.
	for i, d := range strategies {
		if !d.ActiveAt(snapshot) {
			results[i] = entity.ScoreSet{}
			s.metrics.RecordStrategySkipped(ctx, d.Name)
			s.logger.Debug("strategy not active at snapshot",
				"space", space,
				"strategy", d.Name,
				"snapshot", snapshot.String())
			continue
		}
		fn, ok := s.registry.Lookup(d.Name)
		if !ok {
			err := &entity.StrategyError{Index: i, Name: d.Name, Err: entity.ErrUnknownStrategy}
			span.RecordError(err)
			span.SetStatus(codes.Error, "unknown strategy")
			return nil, err
		}
		funcs[i] = fn
	}

	var g errgroup.Group
	for i, fn := range funcs {
		if fn == nil {
			continue
		}
		d := strategies[i]
		g.Go(func() error {
			set, err := s.run(ctx, fn, d, space, network, conn, addresses, snapshot)
			if err != nil {
				return &entity.StrategyError{Index: i, Name: d.Name, Err: err}
			}
			results[i] = set
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "strategy failed")
		s.logger.Warn("scoring failed", "space", space, "network", network, "error", err)
		return nil, err
	}

	s.logger.Debug("scores computed", "space", space, "network", network, "strategies", len(strategies))
	return results, nil
}

func (s *Service) run(
	ctx context.Context,
	fn outbound.StrategyFunc,
	d entity.StrategyDescriptor,
	space string,
	network entity.Network,
	conn outbound.ContractCaller,
	addresses []string,
	snapshot entity.Snapshot,
) (set entity.ScoreSet, err error) {
	ctx, span := s.tracer.Start(ctx, "scores.strategy",
		trace.WithAttributes(attribute.String("strategy", d.Name)))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			set, err = nil, fmt.Errorf("strategy panicked: %v", r)
		}
		status := "ok"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		s.metrics.RecordStrategy(ctx, d.Name, time.Since(start), status)
		span.End()
	}()

	set, err = fn(ctx, space, network, conn, addresses, d.Params, snapshot)
	if err != nil {
		return nil, err
	}
	if set == nil {
		set = entity.ScoreSet{}
	}
	return set, nil
}
