package outbound

import (
	"context"

	"github.com/archon-research/snapshot-scores/internal/domain/entity"
)

// StrategyFunc computes a score per address from chain state at snapshot.
type StrategyFunc func(
	ctx context.Context,
	space string,
	network entity.Network,
	conn ContractCaller,
	addresses []string,
	params map[string]any,
	snapshot entity.Snapshot,
) (entity.ScoreSet, error)

// StrategyRegistry resolves strategy implementations by name.
type StrategyRegistry interface {
	Lookup(name string) (StrategyFunc, bool)
}
