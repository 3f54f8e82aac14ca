package testutil

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/archon-research/snapshot-scores/internal/pkg/blockchain/abis"
)

// AggregateCall mirrors one tuple of the aggregator's calls argument.
type AggregateCall struct {
	Target   common.Address
	CallData []byte
}

// MulticallResult matches the tryAggregate output tuple.
type MulticallResult struct {
	Success    bool
	ReturnData []byte
}

func multicallABI(t *testing.T) *abi.ABI {
	t.Helper()
	parsed, err := abis.GetMulticallABI()
	if err != nil {
		t.Fatalf("loading multicall ABI: %v", err)
	}
	return parsed
}

// PackAggregate ABI-encodes aggregate return data.
func PackAggregate(t *testing.T, blockNumber int64, returnData [][]byte) []byte {
	t.Helper()
	data, err := multicallABI(t).Methods["aggregate"].Outputs.Pack(big.NewInt(blockNumber), returnData)
	if err != nil {
		t.Fatalf("packing aggregate: %v", err)
	}
	return data
}

// PackTryAggregate ABI-encodes tryAggregate return data.
func PackTryAggregate(t *testing.T, results []MulticallResult) []byte {
	t.Helper()
	data, err := multicallABI(t).Methods["tryAggregate"].Outputs.Pack(results)
	if err != nil {
		t.Fatalf("packing tryAggregate: %v", err)
	}
	return data
}

// UnpackAggregateCalls decodes the calls argument of aggregate or tryAggregate
// calldata.
func UnpackAggregateCalls(t *testing.T, calldata []byte) (string, []AggregateCall) {
	t.Helper()
	calls, method, err := unpackAggregateCalls(calldata)
	if err != nil {
		t.Fatalf("unpacking aggregate calldata: %v", err)
	}
	return method, calls
}

func unpackAggregateCalls(calldata []byte) ([]AggregateCall, string, error) {
	parsed, err := abis.GetMulticallABI()
	if err != nil {
		return nil, "", err
	}
	if len(calldata) < 4 {
		return nil, "", fmt.Errorf("calldata too short: %d bytes", len(calldata))
	}
	method, err := parsed.MethodById(calldata[:4])
	if err != nil {
		return nil, "", err
	}
	args, err := method.Inputs.Unpack(calldata[4:])
	if err != nil {
		return nil, "", err
	}
	raw := args[len(args)-1]
	calls := *abi.ConvertType(raw, new([]AggregateCall)).(*[]AggregateCall)
	return calls, method.Name, nil
}

// PackOutputs ABI-encodes the return data of method in contractABI.
func PackOutputs(t *testing.T, contractABI *abi.ABI, method string, values ...any) []byte {
	t.Helper()
	m, ok := contractABI.Methods[method]
	if !ok {
		t.Fatalf("method %q not in ABI", method)
	}
	data, err := m.Outputs.Pack(values...)
	if err != nil {
		t.Fatalf("packing %s outputs: %v", method, err)
	}
	return data
}

// SubCallHandler answers one sub-call of an aggregate. ok=false marks a revert.
type SubCallHandler func(target common.Address, calldata []byte) (ret []byte, ok bool)

// NewAggregatorMock returns a MockContractCaller acting as an aggregator
// contract at the given block. aggregate reverts when any sub-call fails,
// tryAggregate reports per-call success.
func NewAggregatorMock(block int64, handler SubCallHandler) *MockContractCaller {
	parsed, err := abis.GetMulticallABI()
	if err != nil {
		panic(err)
	}
	return &MockContractCaller{
		CallContractFn: func(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
			calls, method, err := unpackAggregateCalls(msg.Data)
			if err != nil {
				return nil, err
			}

			switch method {
			case "aggregate":
				returnData := make([][]byte, len(calls))
				for i, c := range calls {
					ret, ok := handler(c.Target, c.CallData)
					if !ok {
						return nil, fmt.Errorf("execution reverted: call %d failed", i)
					}
					returnData[i] = ret
				}
				return parsed.Methods["aggregate"].Outputs.Pack(big.NewInt(block), returnData)
			case "tryAggregate":
				results := make([]MulticallResult, len(calls))
				for i, c := range calls {
					ret, ok := handler(c.Target, c.CallData)
					results[i] = MulticallResult{Success: ok, ReturnData: ret}
				}
				return parsed.Methods["tryAggregate"].Outputs.Pack(results)
			default:
				return nil, fmt.Errorf("unexpected aggregator method %s", method)
			}
		},
	}
}

// HasSelector reports whether calldata invokes method of contractABI.
func HasSelector(contractABI *abi.ABI, method string, calldata []byte) bool {
	m, ok := contractABI.Methods[method]
	return ok && len(calldata) >= 4 && bytes.Equal(calldata[:4], m.ID)
}

// UnpackInputs decodes the arguments of a sub-call.
func UnpackInputs(contractABI *abi.ABI, method string, calldata []byte) ([]any, error) {
	m, ok := contractABI.Methods[method]
	if !ok {
		return nil, fmt.Errorf("method %q not in ABI", method)
	}
	return m.Inputs.Unpack(calldata[4:])
}
