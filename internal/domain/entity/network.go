// Package entity contains the core domain types for space resolution and scoring.
// These types are request-scoped values with no external dependencies.
package entity

// Network identifies a chain by its decimal chain id, e.g. "128".
type Network string

const (
	NetworkHecoMainnet Network = "128"
	NetworkHecoTestnet Network = "256"
)

// NetworkNames maps known network ids to human readable names.
var NetworkNames = map[Network]string{
	"1":                 "mainnet",
	"4":                 "rinkeby",
	"42":                "kovan",
	NetworkHecoMainnet: "heco",
	NetworkHecoTestnet: "heco-testnet",
}

// Name returns the human readable name of the network, or the id itself when unknown.
func (n Network) Name() string {
	if name, ok := NetworkNames[n]; ok {
		return name
	}
	return string(n)
}
