// Package outbound defines the outbound port interfaces.
package outbound

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"

	"github.com/archon-research/snapshot-scores/internal/domain/entity"
)

// ContractCaller is the only chain capability the core depends on: an eth_call
// at an optional block height. *ethclient.Client satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ProviderSet resolves the chain connection for a network.
type ProviderSet interface {
	Provider(network entity.Network) (ContractCaller, error)
}

// CallOptions are per-call overrides.
type CallOptions struct {
	// BlockNumber pins the call to a height. nil means latest.
	BlockNumber *big.Int
}
