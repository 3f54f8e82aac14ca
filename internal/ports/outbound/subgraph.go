package outbound

import (
	"context"
	"encoding/json"
)

// SubgraphClient runs GraphQL queries described as JSON objects.
type SubgraphClient interface {
	// Request returns the response's data object, or an empty map when absent.
	Request(ctx context.Context, url string, query map[string]any, headers map[string]string) (map[string]any, error)
}

// ContentFetcher loads JSON documents from IPFS gateways and the Fleek bucket.
type ContentFetcher interface {
	Get(ctx context.Context, gateway, hash, protocol string) (json.RawMessage, error)
	FleekGet(ctx context.Context, address, id string) (json.RawMessage, error)
}
