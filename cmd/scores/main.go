// Package main provides a CLI that computes strategy scores for a space.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/archon-research/snapshot-scores/internal/adapters/outbound/telemetry"
	"github.com/archon-research/snapshot-scores/internal/domain/entity"
	"github.com/archon-research/snapshot-scores/internal/pkg/blockchain/multicall"
	"github.com/archon-research/snapshot-scores/internal/pkg/env"
	"github.com/archon-research/snapshot-scores/internal/pkg/networks"
	"github.com/archon-research/snapshot-scores/internal/ports/outbound"
	"github.com/archon-research/snapshot-scores/internal/services/scores"
	"github.com/archon-research/snapshot-scores/internal/strategies"
)

// Build-time variables - can be set via ldflags, otherwise populated from Go's build info.
var (
	GitCommit string
	BuildTime string
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if GitCommit == "" {
					GitCommit = setting.Value
				}
			case "vcs.time":
				if BuildTime == "" {
					BuildTime = setting.Value
				}
			}
		}
	}
}

type runConfig struct {
	space        string
	network      entity.Network
	strategies   []entity.StrategyDescriptor
	addresses    []string
	snapshot     entity.Snapshot
	otlpEndpoint string
}

func parseFlags(args []string) (runConfig, bool, error) {
	fs := flag.NewFlagSet("scores", flag.ContinueOnError)
	space := fs.String("space", env.Get("SPACE", ""), "Space id")
	network := fs.String("network", env.Get("NETWORK", string(entity.NetworkHecoTestnet)), "Network id")
	strategiesJSON := fs.String("strategies", env.Get("STRATEGIES", ""), `Strategies as JSON, e.g. [{"name":"ticket","params":{}}]`)
	addresses := fs.String("addresses", env.Get("ADDRESSES", ""), "Comma separated voter addresses")
	snapshot := fs.String("snapshot", env.Get("SNAPSHOT", "latest"), `Block height or "latest"`)
	otlpEndpoint := fs.String("otlp-endpoint", env.Get("OTEL_EXPORTER_OTLP_ENDPOINT", ""), "OTLP gRPC endpoint (empty disables export)")
	showVersion := fs.Bool("version", false, "Show version information and exit")
	if err := fs.Parse(args); err != nil {
		return runConfig{}, false, err
	}
	if *showVersion {
		return runConfig{}, true, nil
	}

	cfg := runConfig{
		space:        *space,
		network:      entity.Network(*network),
		addresses:    splitAddresses(*addresses),
		otlpEndpoint: *otlpEndpoint,
	}

	var err error
	if cfg.strategies, err = parseStrategies(*strategiesJSON); err != nil {
		return runConfig{}, false, err
	}
	if cfg.snapshot, err = entity.ParseSnapshot(*snapshot); err != nil {
		return runConfig{}, false, err
	}
	if len(cfg.addresses) == 0 {
		return runConfig{}, false, fmt.Errorf("at least one address is required")
	}
	return cfg, false, nil
}

func parseStrategies(raw string) ([]entity.StrategyDescriptor, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("strategies are required")
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var out []entity.StrategyDescriptor
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("parsing strategies: %w", err)
	}
	for i, s := range out {
		if s.Name == "" {
			return nil, fmt.Errorf("strategy %d has no name", i)
		}
	}
	return out, nil
}

func splitAddresses(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

func main() {
	cfg, showVersion, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if showVersion {
		fmt.Printf("scores\n")
		fmt.Printf("  Commit:     %s\n", GitCommit)
		fmt.Printf("  Build Time: %s\n", BuildTime)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: env.ParseLogLevel(slog.LevelInfo),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, cfg, os.Stdout); err != nil {
		logger.Error("scoring failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg runConfig, out io.Writer) error {
	shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.TracerConfig{
		ServiceName:  "snapshot-scores",
		OTLPEndpoint: cfg.otlpEndpoint,
	})
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	shutdownMetrics, err := telemetry.InitMetrics(ctx, telemetry.MetricConfig{
		ServiceName:  "snapshot-scores",
		OTLPEndpoint: cfg.otlpEndpoint,
	})
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			logger.Warn("metrics shutdown failed", "error", err)
		}
	}()

	nets, err := networks.FromEnv()
	if err != nil {
		return fmt.Errorf("loading network tables: %w", err)
	}
	providers, err := networks.DialProviders(ctx, nets)
	if err != nil {
		return fmt.Errorf("dialing providers: %w", err)
	}
	defer providers.Close()

	return score(ctx, logger, cfg, nets, providers, out)
}

// score is run without the telemetry and dialing, so tests can inject providers.
func score(
	ctx context.Context,
	logger *slog.Logger,
	cfg runConfig,
	nets *networks.Config,
	providers outbound.ProviderSet,
	out io.Writer,
) error {
	conn, err := providers.Provider(cfg.network)
	if err != nil {
		return err
	}

	metrics, err := telemetry.NewScoreMetrics()
	if err != nil {
		return fmt.Errorf("creating metrics: %w", err)
	}

	batcher, err := multicall.NewBatcher(multicall.BatcherConfig{
		Networks: nets,
		Metrics:  metrics,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("creating multicall batcher: %w", err)
	}

	registry, err := strategies.Default(batcher, nets)
	if err != nil {
		return fmt.Errorf("creating strategy registry: %w", err)
	}

	service, err := scores.NewService(scores.Config{Logger: logger, Metrics: metrics}, registry)
	if err != nil {
		return fmt.Errorf("creating score service: %w", err)
	}

	logger.Info("computing scores",
		"commit", GitCommit,
		"space", cfg.space,
		"network", cfg.network,
		"strategies", len(cfg.strategies),
		"addresses", len(cfg.addresses),
		"snapshot", cfg.snapshot.String())

	result, err := service.GetScores(ctx, cfg.space, cfg.strategies, cfg.network, conn, cfg.addresses, cfg.snapshot)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
