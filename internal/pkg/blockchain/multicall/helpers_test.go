package multicall

import (
	"math/big"

	"github.com/archon-research/snapshot-scores/internal/ports/outbound"
)

func outboundOpts(block *big.Int) outbound.CallOptions {
	return outbound.CallOptions{BlockNumber: block}
}
