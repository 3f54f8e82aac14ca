// Package blockchain holds chain-level helpers shared by the call executor,
// the multicall batcher and the strategies.
package blockchain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/archon-research/snapshot-scores/internal/domain/entity"
)

// NormalizeAddress lower-cases and validates a hex address. Mixed-case input with
// a bad checksum is accepted, matching how the aggregator receives targets.
func NormalizeAddress(addr string) (common.Address, error) {
	lower := strings.ToLower(strings.TrimSpace(addr))
	if !common.IsHexAddress(lower) {
		return common.Address{}, fmt.Errorf("%w: %q", entity.ErrInvalidAddress, addr)
	}
	return common.HexToAddress(lower), nil
}
