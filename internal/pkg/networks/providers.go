package networks

import (
	"context"
	"fmt"
	"maps"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/archon-research/snapshot-scores/internal/domain/entity"
	"github.com/archon-research/snapshot-scores/internal/ports/outbound"
)

var _ outbound.ProviderSet = (*Providers)(nil)

// Providers is the read-only network -> connection table.
type Providers struct {
	conns   map[entity.Network]outbound.ContractCaller
	closers []func()
}

// NewProviders wraps an existing set of connections.
func NewProviders(conns map[entity.Network]outbound.ContractCaller) *Providers {
	return &Providers{conns: maps.Clone(conns)}
}

// DialProviders opens one ethclient per network with an RPC endpoint.
// ethclient dials lazily for HTTP endpoints, so this does not touch the network.
func DialProviders(ctx context.Context, cfg *Config) (*Providers, error) {
	p := &Providers{conns: make(map[entity.Network]outbound.ContractCaller)}
	for _, network := range cfg.RPCNetworks() {
		url, err := cfg.RPCURL(network)
		if err != nil {
			p.Close()
			return nil, err
		}
		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("dialing network %s at %s: %w", network, url, err)
		}
		p.conns[network] = client
		p.closers = append(p.closers, client.Close)
	}
	return p, nil
}

// Provider returns the connection for a network.
func (p *Providers) Provider(network entity.Network) (outbound.ContractCaller, error) {
	conn, ok := p.conns[network]
	if !ok {
		return nil, fmt.Errorf("%w: no provider for network %q", entity.ErrUnsupportedNetwork, network)
	}
	return conn, nil
}

// Close releases dialed connections.
func (p *Providers) Close() {
	for _, closeFn := range p.closers {
		closeFn()
	}
	p.closers = nil
}
