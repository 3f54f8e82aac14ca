package multicall

import "github.com/ethereum/go-ethereum/common"

// Call is one (target, calldata) tuple of the aggregator's calls argument.
type Call struct {
	Target   common.Address
	CallData []byte
}

// Result is one entry of tryAggregate's return data.
type Result struct {
	Success    bool
	ReturnData []byte
}

// AggregateResult is the decoded output of aggregate.
type AggregateResult struct {
	BlockNumber uint64
	ReturnData  [][]byte
}
