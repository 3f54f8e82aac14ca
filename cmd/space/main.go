// Package main provides a CLI that looks up a space in its registry.
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
	"syscall"

	"github.com/archon-research/snapshot-scores/internal/adapters/outbound/ipfs"
	"github.com/archon-research/snapshot-scores/internal/adapters/outbound/subgraph"
	"github.com/archon-research/snapshot-scores/internal/domain/entity"
	"github.com/archon-research/snapshot-scores/internal/pkg/env"
	"github.com/archon-research/snapshot-scores/internal/pkg/httpclient"
	"github.com/archon-research/snapshot-scores/internal/pkg/networks"
	"github.com/archon-research/snapshot-scores/internal/ports/outbound"
	"github.com/archon-research/snapshot-scores/internal/services/space_resolver"
)

type result struct {
	Space     string          `json:"space"`
	Exists    bool            `json:"exists"`
	Owner     string          `json:"owner,omitempty"`
	Settings  json.RawMessage `json:"settings,omitempty"`
	Proposals []any           `json:"proposals,omitempty"`
}

type runConfig struct {
	spaceID  string
	settings bool
	// proposalsNetwork selects the snapshot subgraph; empty skips the query.
	proposalsNetwork entity.Network
	proposalsLimit   int
}

type deps struct {
	networks  *networks.Config
	providers outbound.ProviderSet
	content   outbound.ContentFetcher
	subgraph  outbound.SubgraphClient
}

func main() {
	fs := flag.NewFlagSet("space", flag.ExitOnError)
	spaceID := fs.String("id", env.Get("SPACE", ""), "Space id, e.g. yam.heco")
	settings := fs.Bool("settings", false, "Fetch the space settings document from the registry bucket")
	proposals := fs.String("proposals", "", "Network whose snapshot subgraph lists the space's proposals (empty skips)")
	limit := fs.Int("limit", 10, "Maximum proposals to list")
	_ = fs.Parse(os.Args[1:])

	if *spaceID == "" {
		fmt.Fprintln(os.Stderr, "-id is required")
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: env.ParseLogLevel(slog.LevelInfo),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	nets, err := networks.FromEnv()
	if err != nil {
		logger.Error("loading network tables", "error", err)
		os.Exit(1)
	}
	providers, err := networks.DialProviders(ctx, nets)
	if err != nil {
		logger.Error("dialing providers", "error", err)
		os.Exit(1)
	}
	defer providers.Close()

	http := httpclient.NewClient(httpclient.DefaultConfig(), nil, logger)
	d := deps{
		networks:  nets,
		providers: providers,
		content:   ipfs.NewClient(ipfs.ClientConfig{Logger: logger}, http),
		subgraph:  subgraph.NewClient(subgraph.ClientConfig{Logger: logger}, http),
	}
	cfg := runConfig{
		spaceID:          *spaceID,
		settings:         *settings,
		proposalsNetwork: entity.Network(*proposals),
		proposalsLimit:   *limit,
	}

	if err := run(ctx, logger, cfg, d, os.Stdout); err != nil {
		logger.Error("space lookup failed", "space", *spaceID, "error", err)
		providers.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg runConfig, d deps, out io.Writer) error {
	resolver, err := space_resolver.NewService(space_resolver.Config{Logger: logger}, d.networks, d.providers)
	if err != nil {
		return fmt.Errorf("creating space resolver: %w", err)
	}

	res := result{Space: cfg.spaceID}
	if res.Exists, err = resolver.Exists(ctx, cfg.spaceID); err != nil {
		return fmt.Errorf("checking space: %w", err)
	}
	if res.Exists {
		owner, err := resolver.Owner(ctx, cfg.spaceID)
		if err != nil {
			return fmt.Errorf("resolving owner: %w", err)
		}
		res.Owner = owner.Hex()

		if cfg.settings {
			if res.Settings, err = d.content.FleekGet(ctx, res.Owner, cfg.spaceID); err != nil {
				return fmt.Errorf("fetching settings: %w", err)
			}
		}
	}

	if cfg.proposalsNetwork != "" {
		if res.Proposals, err = listProposals(ctx, d, cfg); err != nil {
			return err
		}
	}

	return json.NewEncoder(out).Encode(res)
}

func listProposals(ctx context.Context, d deps, cfg runConfig) ([]any, error) {
	url, err := d.networks.SubgraphURL(cfg.proposalsNetwork)
	if err != nil {
		return nil, err
	}
	data, err := d.subgraph.Request(ctx, url, map[string]any{
		"proposals": map[string]any{
			"__args": map[string]any{
				"first":          cfg.proposalsLimit,
				"where":          map[string]any{"space": cfg.spaceID},
				"orderBy":        subgraph.EnumValue("start"),
				"orderDirection": subgraph.EnumValue("desc"),
			},
			"id":    true,
			"title": true,
			"start": true,
			"end":   true,
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("listing proposals: %w", err)
	}
	proposals, _ := data["proposals"].([]any)
	return proposals, nil
}
