package outbound

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/archon-research/snapshot-scores/internal/domain/entity"
)

// Multicaller batches read-only calls into one aggregator invocation.
type Multicaller interface {
	// Multicall returns one decoded output list per call, in call order. Any
	// failure aborts the whole batch.
	Multicall(ctx context.Context, network entity.Network, conn ContractCaller, contractABI *abi.ABI, calls []entity.CallDescriptor, opts CallOptions) ([][]any, error)

	// TryMulticall isolates failures per position instead of aborting.
	TryMulticall(ctx context.Context, network entity.Network, conn ContractCaller, contractABI *abi.ABI, calls []entity.CallDescriptor, opts CallOptions) ([]CallResult, error)
}

// CallResult is the outcome of one call in an isolated batch. Exactly one of
// Values and Err is meaningful.
type CallResult struct {
	Values []any
	Err    error
}
