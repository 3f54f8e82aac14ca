// Package caller invokes a single read-only contract method.
package caller

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/archon-research/snapshot-scores/internal/domain/entity"
	"github.com/archon-research/snapshot-scores/internal/pkg/blockchain"
	"github.com/archon-research/snapshot-scores/internal/ports/outbound"
)

// Call binds contractABI to call.Target, invokes call.Method with call.Args and
// returns the decoded outputs.
//
// Errors from conn are returned as-is so the caller can inspect the original
// cause. Encoding and decoding failures come back as *entity.EncodeError and
// *entity.DecodeError.
func Call(
	ctx context.Context,
	conn outbound.ContractCaller,
	contractABI *abi.ABI,
	call entity.CallDescriptor,
	opts outbound.CallOptions,
) ([]any, error) {
	method, ok := contractABI.Methods[call.Method]
	if !ok {
		return nil, &entity.EncodeError{Method: call.Method, Err: entity.ErrUnknownMethod}
	}

	target, err := blockchain.NormalizeAddress(call.Target)
	if err != nil {
		return nil, &entity.EncodeError{Method: call.Method, Err: err}
	}

	data, err := contractABI.Pack(method.Name, call.Args...)
	if err != nil {
		return nil, &entity.EncodeError{Method: call.Method, Err: err}
	}

	raw, err := conn.CallContract(ctx, ethereum.CallMsg{To: &target, Data: data}, opts.BlockNumber)
	if err != nil {
		return nil, err
	}

	values, err := method.Outputs.Unpack(raw)
	if err != nil {
		return nil, &entity.DecodeError{Method: call.Method, Err: fmt.Errorf("%w (%d bytes)", err, len(raw))}
	}
	return values, nil
}
