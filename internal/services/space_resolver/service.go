// Package space_resolver maps a space id to its registry entry: whether the
// space exists and which address owns it.
package space_resolver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/archon-research/snapshot-scores/internal/domain/entity"
	"github.com/archon-research/snapshot-scores/internal/pkg/blockchain/abis"
	"github.com/archon-research/snapshot-scores/internal/pkg/blockchain/caller"
	"github.com/archon-research/snapshot-scores/internal/pkg/networks"
	"github.com/archon-research/snapshot-scores/internal/ports/outbound"
)

// Config holds configuration for the resolver.
type Config struct {
	Logger *slog.Logger
}

// Service resolves spaces through the per-network registry contracts.
type Service struct {
	networks    *networks.Config
	providers   outbound.ProviderSet
	registryABI *abi.ABI
	logger      *slog.Logger
}

func NewService(config Config, nets *networks.Config, providers outbound.ProviderSet) (*Service, error) {
	if nets == nil {
		return nil, fmt.Errorf("networks cannot be nil")
	}
	if providers == nil {
		return nil, fmt.Errorf("providers cannot be nil")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	registryABI, err := abis.GetSpaceRegistryABI()
	if err != nil {
		return nil, fmt.Errorf("loading space registry ABI: %w", err)
	}

	return &Service{
		networks:    nets,
		providers:   providers,
		registryABI: registryABI,
		logger:      config.Logger.With("component", "space-resolver"),
	}, nil
}

// Exists reports whether spaceID is registered.
func (s *Service) Exists(ctx context.Context, spaceID string) (bool, error) {
	values, err := s.call(ctx, spaceID, "spaceExist")
	if err != nil {
		return false, err
	}
	exists, ok := values[0].(bool)
	if !ok {
		return false, &entity.DecodeError{Method: "spaceExist", Err: fmt.Errorf("unexpected type %T", values[0])}
	}
	return exists, nil
}

// Owner returns the address registered for spaceID.
func (s *Service) Owner(ctx context.Context, spaceID string) (common.Address, error) {
	values, err := s.call(ctx, spaceID, "getSpace")
	if err != nil {
		return common.Address{}, err
	}
	owner, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, &entity.DecodeError{Method: "getSpace", Err: fmt.Errorf("unexpected type %T", values[0])}
	}
	return owner, nil
}

func (s *Service) call(ctx context.Context, spaceID, method string) ([]any, error) {
	route, err := s.networks.RouteSpace(spaceID)
	if err != nil {
		return nil, err
	}
	conn, err := s.providers.Provider(route.Network)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("querying space registry",
		"space", spaceID,
		"method", method,
		"network", route.Network,
		"registry", route.Registry.Hex())

	values, err := caller.Call(ctx, conn, s.registryABI, entity.CallDescriptor{
		Target: route.Registry.Hex(),
		Method: method,
		Args:   []any{spaceID},
	}, outbound.CallOptions{})
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, &entity.DecodeError{Method: method, Err: fmt.Errorf("no outputs")}
	}
	return values, nil
}
