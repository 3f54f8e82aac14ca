// Package subgraph queries The Graph endpoints for snapshot data.
package subgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/archon-research/snapshot-scores/internal/pkg/httpclient"
	"github.com/archon-research/snapshot-scores/internal/ports/outbound"
)

var _ outbound.SubgraphClient = (*Client)(nil)

// ClientConfig holds the subgraph client's configuration.
type ClientConfig struct {
	HTTP   httpclient.Config
	Logger *slog.Logger
}

// Client sends GraphQL queries built from JSON-style descriptions.
type Client struct {
	http   *httpclient.Client
	logger *slog.Logger
}

func NewClient(config ClientConfig, http *httpclient.Client) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	logger := config.Logger.With("component", "subgraph")
	if http == nil {
		http = httpclient.NewClient(config.HTTP, nil, logger)
	}
	return &Client{http: http, logger: logger}
}

type graphQLRequest struct {
	Query string `json:"query"`
}

type graphQLResponse struct {
	Data   map[string]any  `json:"data"`
	Errors json.RawMessage `json:"errors,omitempty"`
}

// Request posts the query to url and returns the response's data object. A
// response without data yields an empty map, not an error.
func (c *Client) Request(ctx context.Context, url string, query map[string]any, headers map[string]string) (map[string]any, error) {
	text, err := BuildQuery(query)
	if err != nil {
		return nil, fmt.Errorf("building subgraph query: %w", err)
	}

	c.logger.Debug("querying subgraph", "url", url, "query", text)

	var resp graphQLResponse
	err = c.http.Do(ctx, httpclient.Request{
		URL:     url,
		Headers: headers,
		Body:    graphQLRequest{Query: text},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("subgraph request to %s: %w", url, err)
	}

	if len(resp.Errors) > 0 && string(resp.Errors) != "null" {
		c.logger.Warn("subgraph returned errors", "url", url, "errors", string(resp.Errors))
	}
	if resp.Data == nil {
		return map[string]any{}, nil
	}
	return resp.Data, nil
}
