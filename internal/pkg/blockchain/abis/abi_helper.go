// Package abis holds the contract ABIs the scorer talks to. Parsed ABIs are
// cached and shared; callers must treat them as read-only.
package abis

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

func ParseABI(abiJSON string) (*abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func cached(abiJSON string) func() (*abi.ABI, error) {
	return sync.OnceValues(func() (*abi.ABI, error) {
		return ParseABI(abiJSON)
	})
}
