package strategies

import (
	"context"
	"strings"

	"github.com/archon-research/snapshot-scores/internal/domain/entity"
	"github.com/archon-research/snapshot-scores/internal/ports/outbound"
)

// whitelist gives weight 1 to listed addresses and 0 to the rest. Matching
// ignores case. Params: addresses.
func whitelist(
	_ context.Context,
	_ string,
	_ entity.Network,
	_ outbound.ContractCaller,
	addresses []string,
	params map[string]any,
	_ entity.Snapshot,
) (entity.ScoreSet, error) {
	listed, err := stringSliceParam(params, "addresses")
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]struct{}, len(listed))
	for _, addr := range listed {
		allowed[strings.ToLower(addr)] = struct{}{}
	}

	scores := make(entity.ScoreSet, len(addresses))
	for _, addr := range addresses {
		if _, ok := allowed[strings.ToLower(addr)]; ok {
			scores[addr] = 1
		} else {
			scores[addr] = 0
		}
	}
	return scores, nil
}

// ticket gives every address the same weight. Params: value (default 1).
func ticket(
	_ context.Context,
	_ string,
	_ entity.Network,
	_ outbound.ContractCaller,
	addresses []string,
	params map[string]any,
	_ entity.Snapshot,
) (entity.ScoreSet, error) {
	value, err := floatParam(params, "value", 1)
	if err != nil {
		return nil, err
	}
	scores := make(entity.ScoreSet, len(addresses))
	for _, addr := range addresses {
		scores[addr] = value
	}
	return scores, nil
}
