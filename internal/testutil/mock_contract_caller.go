// Package testutil provides mocks and ABI helpers shared by package tests.
package testutil

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"

	"github.com/archon-research/snapshot-scores/internal/ports/outbound"
)

var _ outbound.ContractCaller = (*MockContractCaller)(nil)

// MockContractCaller implements outbound.ContractCaller for testing.
type MockContractCaller struct {
	mu             sync.Mutex
	CallContractFn func(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	CallCount      int
	Calls          []ethereum.CallMsg
	Blocks         []*big.Int
}

func (m *MockContractCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	m.mu.Lock()
	m.CallCount++
	m.Calls = append(m.Calls, msg)
	m.Blocks = append(m.Blocks, blockNumber)
	m.mu.Unlock()
	if m.CallContractFn != nil {
		return m.CallContractFn(ctx, msg, blockNumber)
	}
	return nil, errors.New("CallContract not mocked")
}

// Count returns CallCount under the lock.
func (m *MockContractCaller) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}
