// Package multicall merges independent contract reads into one aggregator call
// and demultiplexes the results.
package multicall

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/archon-research/snapshot-scores/internal/domain/entity"
	"github.com/archon-research/snapshot-scores/internal/pkg/blockchain/abis"
	"github.com/archon-research/snapshot-scores/internal/ports/outbound"
)

// Client talks to one aggregator deployment over one connection.
type Client struct {
	conn    outbound.ContractCaller
	address common.Address
	abi     *abi.ABI
}

func NewClient(conn outbound.ContractCaller, address common.Address) (*Client, error) {
	multicallABI, err := abis.GetMulticallABI()
	if err != nil {
		return nil, fmt.Errorf("failed to load multicall ABI: %w", err)
	}

	return &Client{
		conn:    conn,
		address: address,
		abi:     multicallABI,
	}, nil
}

func (c *Client) Address() common.Address {
	return c.address
}

// Aggregate runs all calls atomically at one block. A revert in any sub-call
// reverts the whole aggregate.
func (c *Client) Aggregate(ctx context.Context, calls []Call, blockNumber *big.Int) (*AggregateResult, error) {
	unpacked, err := c.invoke(ctx, "aggregate", blockNumber, len(calls), calls)
	if err != nil {
		return nil, err
	}

	block, ok := unpacked[0].(*big.Int)
	if !ok || len(unpacked) < 2 {
		return nil, fmt.Errorf("unexpected aggregate output layout")
	}
	returnData, ok := unpacked[1].([][]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected aggregate return data type %T", unpacked[1])
	}
	if len(returnData) != len(calls) {
		return nil, fmt.Errorf("%w: %d results for %d calls", entity.ErrResultLengthMismatch, len(returnData), len(calls))
	}

	return &AggregateResult{
		BlockNumber: block.Uint64(),
		ReturnData:  returnData,
	}, nil
}

// TryAggregate runs all calls at one block without requiring success, reporting
// a success flag per call.
func (c *Client) TryAggregate(ctx context.Context, calls []Call, blockNumber *big.Int) ([]Result, error) {
	unpacked, err := c.invoke(ctx, "tryAggregate", blockNumber, len(calls), false, calls)
	if err != nil {
		return nil, err
	}

	results := *abi.ConvertType(unpacked[0], new([]Result)).(*[]Result)
	if len(results) != len(calls) {
		return nil, fmt.Errorf("%w: %d results for %d calls", entity.ErrResultLengthMismatch, len(results), len(calls))
	}
	return results, nil
}

func (c *Client) invoke(ctx context.Context, method string, blockNumber *big.Int, n int, args ...any) ([]any, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	msg := ethereum.CallMsg{
		To:   &c.address,
		Data: data,
	}

	raw, err := c.conn.CallContract(ctx, msg, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to call multicall contract at address=%s block=%s calls=%d: %w",
			c.address.Hex(), blockNumberString(blockNumber), n, err)
	}

	unpacked, err := c.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s response at block=%s: %w",
			method, blockNumberString(blockNumber), err)
	}
	if len(unpacked) == 0 {
		return nil, fmt.Errorf("empty %s response at block=%s", method, blockNumberString(blockNumber))
	}
	return unpacked, nil
}

func blockNumberString(blockNumber *big.Int) string {
	if blockNumber == nil {
		return "latest"
	}
	return blockNumber.String()
}
