// Package networks holds the process-wide lookup tables: aggregator address,
// space registry route, RPC endpoint and subgraph endpoint per network.
//
// A Config is built once at start and never mutated afterwards, so it is safe to
// share across goroutines without locking.
package networks

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/archon-research/snapshot-scores/internal/domain/entity"
	"github.com/archon-research/snapshot-scores/internal/pkg/env"
)

// RegistryRoute binds a space id suffix to the registry that owns it.
// An empty Suffix marks the default route.
type RegistryRoute struct {
	Suffix   string
	Network  entity.Network
	Registry common.Address
}

// Config is the immutable network table.
type Config struct {
	multicall    map[entity.Network]common.Address
	routes       []RegistryRoute
	rpcURLs      map[entity.Network]string
	subgraphURLs map[entity.Network]string
}

// Tables is the input to New.
type Tables struct {
	Multicall map[entity.Network]common.Address
	// Routes are matched in order; the first route whose suffix matches wins.
	// At most one route may have an empty suffix and it must come last.
	Routes       []RegistryRoute
	RPCURLs      map[entity.Network]string
	SubgraphURLs map[entity.Network]string
}

// New validates and freezes the given tables. The maps are copied.
func New(t Tables) (*Config, error) {
	for i, r := range t.Routes {
		if r.Suffix == "" && i != len(t.Routes)-1 {
			return nil, fmt.Errorf("default registry route must be last, found at %d", i)
		}
		if r.Network == "" {
			return nil, fmt.Errorf("registry route %d has no network", i)
		}
	}
	return &Config{
		multicall:    maps.Clone(t.Multicall),
		routes:       slices.Clone(t.Routes),
		rpcURLs:      maps.Clone(t.RPCURLs),
		subgraphURLs: maps.Clone(t.SubgraphURLs),
	}, nil
}

// DefaultTables returns the production tables.
func DefaultTables() Tables {
	return Tables{
		Multicall: map[entity.Network]common.Address{
			entity.NetworkHecoMainnet: common.HexToAddress("0x37ab26db3df780e7026f3e767f65efb739f48d8e"),
			entity.NetworkHecoTestnet: common.HexToAddress("0xC33994Eb943c61a8a59a918E2de65e03e4e385E0"),
		},
		Routes: []RegistryRoute{
			{
				Suffix:   ".heco",
				Network:  entity.NetworkHecoMainnet,
				Registry: common.HexToAddress("0xC403190d6155cd2A44fBe80A09c23cf3707B1B69"),
			},
			{
				Network:  entity.NetworkHecoTestnet,
				Registry: common.HexToAddress("0xB14C5711db68081C52C5Bf6825741Bd28B3255d1"),
			},
		},
		RPCURLs: map[entity.Network]string{
			entity.NetworkHecoMainnet: "https://http-mainnet.hecochain.com",
			entity.NetworkHecoTestnet: "https://http-testnet.hecochain.com",
		},
		SubgraphURLs: map[entity.Network]string{
			"1":  "https://api.thegraph.com/subgraphs/name/snapshot-labs/snapshot",
			"4":  "https://api.thegraph.com/subgraphs/name/snapshot-labs/snapshot-rinkeby",
			"42": "https://api.thegraph.com/subgraphs/name/snapshot-labs/snapshot-kovan",
		},
	}
}

// FromEnv returns the default tables with RPC_URL_<network> overrides applied.
func FromEnv() (*Config, error) {
	t := DefaultTables()
	for network, url := range t.RPCURLs {
		t.RPCURLs[network] = env.Get(env.RPCURLKey(string(network)), url)
	}
	return New(t)
}

// MulticallAddress returns the aggregator contract of a network.
func (c *Config) MulticallAddress(network entity.Network) (common.Address, error) {
	addr, ok := c.multicall[network]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: no aggregator for network %q", entity.ErrUnsupportedNetwork, network)
	}
	return addr, nil
}

// RouteSpace picks the registry that owns spaceID. Both space existence and
// owner lookups go through here so they can never disagree.
func (c *Config) RouteSpace(spaceID string) (RegistryRoute, error) {
	for _, r := range c.routes {
		if r.Suffix == "" || strings.HasSuffix(spaceID, r.Suffix) {
			return r, nil
		}
	}
	return RegistryRoute{}, fmt.Errorf("%w: no registry route for space %q", entity.ErrUnsupportedNetwork, spaceID)
}

// RPCURL returns the JSON-RPC endpoint of a network.
func (c *Config) RPCURL(network entity.Network) (string, error) {
	url, ok := c.rpcURLs[network]
	if !ok || url == "" {
		return "", fmt.Errorf("%w: no RPC endpoint for network %q", entity.ErrUnsupportedNetwork, network)
	}
	return url, nil
}

// RPCNetworks lists the networks with an RPC endpoint, sorted.
func (c *Config) RPCNetworks() []entity.Network {
	return slices.Sorted(maps.Keys(c.rpcURLs))
}

// SubgraphURL returns the snapshot subgraph endpoint of a network.
func (c *Config) SubgraphURL(network entity.Network) (string, error) {
	url, ok := c.subgraphURLs[network]
	if !ok {
		return "", fmt.Errorf("%w: no subgraph for network %q", entity.ErrUnsupportedNetwork, network)
	}
	return url, nil
}
