package multicall

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/archon-research/snapshot-scores/internal/domain/entity"
	"github.com/archon-research/snapshot-scores/internal/pkg/blockchain"
	"github.com/archon-research/snapshot-scores/internal/pkg/networks"
	"github.com/archon-research/snapshot-scores/internal/ports/outbound"
)

var _ outbound.Multicaller = (*Batcher)(nil)

// BatcherConfig holds the batcher's collaborators.
type BatcherConfig struct {
	Networks *networks.Config
	Metrics  outbound.MetricsRecorder
	Logger   *slog.Logger
}

// Batcher encodes call descriptors against a caller-supplied ABI, sends them as
// one aggregator call and decodes every result with the method of its own
// position.
type Batcher struct {
	networks *networks.Config
	metrics  outbound.MetricsRecorder
	logger   *slog.Logger
}

func NewBatcher(cfg BatcherConfig) (*Batcher, error) {
	if cfg.Networks == nil {
		return nil, fmt.Errorf("networks cannot be nil")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = outbound.NopMetrics{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Batcher{
		networks: cfg.Networks,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger.With("component", "multicall"),
	}, nil
}

// encodedBatch keeps the method of every position so decoding never uses
// another call's signature.
type encodedBatch struct {
	calls   []Call
	methods []abi.Method
}

// Multicall returns len(calls) decoded output lists in submission order. Any
// transport failure, revert or decode failure fails the whole batch.
func (b *Batcher) Multicall(
	ctx context.Context,
	network entity.Network,
	conn outbound.ContractCaller,
	contractABI *abi.ABI,
	calls []entity.CallDescriptor,
	opts outbound.CallOptions,
) ([][]any, error) {
	client, batch, err := b.prepare(network, conn, contractABI, calls)
	if err != nil {
		return nil, err
	}
	if len(calls) == 0 {
		return [][]any{}, nil
	}

	b.logger.Debug("aggregating calls", "network", network, "calls", len(calls), "block", blockNumberString(opts.BlockNumber))
	b.metrics.RecordBatch(ctx, string(network), len(calls))

	res, err := client.Aggregate(ctx, batch.calls, opts.BlockNumber)
	if err != nil {
		return nil, err
	}

	decoded := make([][]any, len(res.ReturnData))
	for i, raw := range res.ReturnData {
		values, err := decode(i, batch.methods[i], raw)
		if err != nil {
			return nil, err
		}
		decoded[i] = values
	}
	return decoded, nil
}

// TryMulticall is Multicall with per-position failure isolation. A reverted
// sub-call yields entity.ErrCallReverted at its position and a malformed result
// yields *entity.DecodeError; the remaining positions still decode. Transport
// failures of the aggregate call itself still fail the whole batch.
func (b *Batcher) TryMulticall(
	ctx context.Context,
	network entity.Network,
	conn outbound.ContractCaller,
	contractABI *abi.ABI,
	calls []entity.CallDescriptor,
	opts outbound.CallOptions,
) ([]outbound.CallResult, error) {
	client, batch, err := b.prepare(network, conn, contractABI, calls)
	if err != nil {
		return nil, err
	}
	if len(calls) == 0 {
		return []outbound.CallResult{}, nil
	}

	b.logger.Debug("aggregating calls with failure isolation", "network", network, "calls", len(calls), "block", blockNumberString(opts.BlockNumber))
	b.metrics.RecordBatch(ctx, string(network), len(calls))

	results, err := client.TryAggregate(ctx, batch.calls, opts.BlockNumber)
	if err != nil {
		return nil, err
	}

	out := make([]outbound.CallResult, len(results))
	for i, r := range results {
		method := batch.methods[i]
		if !r.Success {
			out[i] = outbound.CallResult{Err: fmt.Errorf("call %d (%s) to %s: %w", i, method.Name, batch.calls[i].Target.Hex(), entity.ErrCallReverted)}
			continue
		}
		values, err := decode(i, method, r.ReturnData)
		out[i] = outbound.CallResult{Values: values, Err: err}
	}
	return out, nil
}

func (b *Batcher) prepare(
	network entity.Network,
	conn outbound.ContractCaller,
	contractABI *abi.ABI,
	calls []entity.CallDescriptor,
) (*Client, *encodedBatch, error) {
	address, err := b.networks.MulticallAddress(network)
	if err != nil {
		return nil, nil, err
	}

	batch, err := encode(contractABI, calls)
	if err != nil {
		return nil, nil, err
	}

	client, err := NewClient(conn, address)
	if err != nil {
		return nil, nil, err
	}
	return client, batch, nil
}

func encode(contractABI *abi.ABI, calls []entity.CallDescriptor) (*encodedBatch, error) {
	batch := &encodedBatch{
		calls:   make([]Call, len(calls)),
		methods: make([]abi.Method, len(calls)),
	}

	for i, c := range calls {
		method, ok := contractABI.Methods[c.Method]
		if !ok {
			return nil, &entity.EncodeError{Index: i, Method: c.Method, Err: entity.ErrUnknownMethod}
		}
		target, err := blockchain.NormalizeAddress(c.Target)
		if err != nil {
			return nil, &entity.EncodeError{Index: i, Method: c.Method, Err: err}
		}
		data, err := contractABI.Pack(method.Name, c.Args...)
		if err != nil {
			return nil, &entity.EncodeError{Index: i, Method: c.Method, Err: err}
		}

		batch.calls[i] = Call{Target: target, CallData: data}
		batch.methods[i] = method
	}
	return batch, nil
}

func decode(index int, method abi.Method, raw []byte) ([]any, error) {
	values, err := method.Outputs.Unpack(raw)
	if err != nil {
		return nil, &entity.DecodeError{Index: index, Method: method.Name, Err: err}
	}
	return values, nil
}
