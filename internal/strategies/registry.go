// Package strategies holds the strategy registry and the built-in scoring
// strategies.
package strategies

import (
	"fmt"
	"maps"
	"slices"

	"github.com/archon-research/snapshot-scores/internal/pkg/networks"
	"github.com/archon-research/snapshot-scores/internal/ports/outbound"
)

var _ outbound.StrategyRegistry = (*Registry)(nil)

// Registry maps strategy names to implementations. It is filled at start and
// only read afterwards; Register must not race with Lookup.
type Registry struct {
	strategies map[string]outbound.StrategyFunc
}

func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]outbound.StrategyFunc)}
}

// Register adds fn under name. Names are unique.
func (r *Registry) Register(name string, fn outbound.StrategyFunc) error {
	if name == "" {
		return fmt.Errorf("strategy name cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("strategy %q: implementation cannot be nil", name)
	}
	if _, exists := r.strategies[name]; exists {
		return fmt.Errorf("strategy %q already registered", name)
	}
	r.strategies[name] = fn
	return nil
}

func (r *Registry) Lookup(name string) (outbound.StrategyFunc, bool) {
	fn, ok := r.strategies[name]
	return fn, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.strategies))
}

// Default returns a registry holding every built-in strategy. Chain-reading
// strategies batch their calls through mc.
func Default(mc outbound.Multicaller, nets *networks.Config) (*Registry, error) {
	if mc == nil {
		return nil, fmt.Errorf("multicaller cannot be nil")
	}
	if nets == nil {
		return nil, fmt.Errorf("networks cannot be nil")
	}

	balances, err := newBalanceReader(mc, nets)
	if err != nil {
		return nil, err
	}

	r := NewRegistry()
	for name, fn := range map[string]outbound.StrategyFunc{
		"erc20-balance-of":   balances.erc20BalanceOf,
		"erc20-with-balance": balances.erc20WithBalance,
		"eth-balance":        balances.ethBalance,
		"whitelist":          whitelist,
		"ticket":             ticket,
	} {
		if err := r.Register(name, fn); err != nil {
			return nil, err
		}
	}
	return r, nil
}
