package strategies

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/archon-research/snapshot-scores/internal/domain/entity"
	"github.com/archon-research/snapshot-scores/internal/pkg/blockchain"
	"github.com/archon-research/snapshot-scores/internal/pkg/blockchain/abis"
	"github.com/archon-research/snapshot-scores/internal/pkg/networks"
	"github.com/archon-research/snapshot-scores/internal/ports/outbound"
)

const defaultDecimals = 18

// balanceReader backs the strategies that score by on-chain balance. Every
// balance is read in one aggregated call per strategy invocation.
type balanceReader struct {
	multicaller  outbound.Multicaller
	networks     *networks.Config
	erc20ABI     *abi.ABI
	multicallABI *abi.ABI
}

func newBalanceReader(mc outbound.Multicaller, nets *networks.Config) (*balanceReader, error) {
	erc20ABI, err := abis.GetERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("loading ERC20 ABI: %w", err)
	}
	multicallABI, err := abis.GetMulticallABI()
	if err != nil {
		return nil, fmt.Errorf("loading multicall ABI: %w", err)
	}
	return &balanceReader{
		multicaller:  mc,
		networks:     nets,
		erc20ABI:     erc20ABI,
		multicallABI: multicallABI,
	}, nil
}

// erc20BalanceOf scores each address by its token balance.
// Params: address (token), decimals (default 18).
func (b *balanceReader) erc20BalanceOf(
	ctx context.Context,
	_ string,
	network entity.Network,
	conn outbound.ContractCaller,
	addresses []string,
	params map[string]any,
	snapshot entity.Snapshot,
) (entity.ScoreSet, error) {
	token, err := stringParam(params, "address")
	if err != nil {
		return nil, err
	}
	decimals, err := intParam(params, "decimals", defaultDecimals)
	if err != nil {
		return nil, err
	}

	balances, err := b.read(ctx, network, conn, b.erc20ABI, token, "balanceOf", addresses, snapshot)
	if err != nil {
		return nil, err
	}

	scores := make(entity.ScoreSet, len(addresses))
	for i, addr := range addresses {
		scores[addr] = blockchain.ToFloat(balances[i], decimals)
	}
	return scores, nil
}

// erc20WithBalance gives weight 1 to every address holding at least minBalance
// of the token, 0 otherwise.
// Params: address (token), decimals (default 18), minBalance (default 0).
func (b *balanceReader) erc20WithBalance(
	ctx context.Context,
	space string,
	network entity.Network,
	conn outbound.ContractCaller,
	addresses []string,
	params map[string]any,
	snapshot entity.Snapshot,
) (entity.ScoreSet, error) {
	minBalance, err := floatParam(params, "minBalance", 0)
	if err != nil {
		return nil, err
	}

	balances, err := b.erc20BalanceOf(ctx, space, network, conn, addresses, params, snapshot)
	if err != nil {
		return nil, err
	}

	scores := make(entity.ScoreSet, len(balances))
	for addr, balance := range balances {
		if balance >= minBalance {
			scores[addr] = 1
		} else {
			scores[addr] = 0
		}
	}
	return scores, nil
}

// ethBalance scores each address by its native balance, read through the
// aggregator's getEthBalance. Params: decimals (default 18).
func (b *balanceReader) ethBalance(
	ctx context.Context,
	_ string,
	network entity.Network,
	conn outbound.ContractCaller,
	addresses []string,
	params map[string]any,
	snapshot entity.Snapshot,
) (entity.ScoreSet, error) {
	decimals, err := intParam(params, "decimals", defaultDecimals)
	if err != nil {
		return nil, err
	}
	aggregator, err := b.networks.MulticallAddress(network)
	if err != nil {
		return nil, err
	}

	balances, err := b.read(ctx, network, conn, b.multicallABI, aggregator.Hex(), "getEthBalance", addresses, snapshot)
	if err != nil {
		return nil, err
	}

	scores := make(entity.ScoreSet, len(addresses))
	for i, addr := range addresses {
		scores[addr] = blockchain.ToFloat(balances[i], decimals)
	}
	return scores, nil
}

// read calls method(address) on target for every address in one batch and
// returns the uint256 results in address order.
func (b *balanceReader) read(
	ctx context.Context,
	network entity.Network,
	conn outbound.ContractCaller,
	contractABI *abi.ABI,
	target, method string,
	addresses []string,
	snapshot entity.Snapshot,
) ([]*big.Int, error) {
	calls := make([]entity.CallDescriptor, len(addresses))
	for i, addr := range addresses {
		holder, err := blockchain.NormalizeAddress(addr)
		if err != nil {
			return nil, err
		}
		call, err := entity.NewCallDescriptor(target, method, holder)
		if err != nil {
			return nil, err
		}
		calls[i] = call
	}

	results, err := b.multicaller.Multicall(ctx, network, conn, contractABI, calls, outbound.CallOptions{
		BlockNumber: snapshot.BlockNumber(),
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", method, err)
	}

	balances := make([]*big.Int, len(results))
	for i, values := range results {
		if len(values) == 0 {
			return nil, &entity.DecodeError{Index: i, Method: method, Err: fmt.Errorf("no outputs")}
		}
		balance, ok := values[0].(*big.Int)
		if !ok {
			return nil, &entity.DecodeError{Index: i, Method: method, Err: fmt.Errorf("unexpected type %T", values[0])}
		}
		balances[i] = balance
	}
	return balances, nil
}
