// Package ipfs fetches JSON documents from IPFS gateways and the Fleek
// storage bucket that mirrors the space registry.
package ipfs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/archon-research/snapshot-scores/internal/pkg/httpclient"
	"github.com/archon-research/snapshot-scores/internal/ports/outbound"
)

var _ outbound.ContentFetcher = (*Client)(nil)

const (
	defaultProtocol  = "ipfs"
	defaultFleekBase = "https://fankouzu-team-bucket.storage.fleek.co"
)

// ClientConfig holds configuration for the content client.
type ClientConfig struct {
	// FleekBaseURL is the bucket root. Defaults to the public registry bucket.
	FleekBaseURL string

	// Scheme used for gateway URLs. Defaults to https.
	Scheme string

	HTTP   httpclient.Config
	Logger *slog.Logger
}

func configDefaults() ClientConfig {
	return ClientConfig{
		FleekBaseURL: defaultFleekBase,
		Scheme:       "https",
		HTTP:         httpclient.DefaultConfig(),
	}
}

// Client implements outbound.ContentFetcher.
type Client struct {
	fleekBase string
	scheme    string
	http      *httpclient.Client
	logger    *slog.Logger
}

func NewClient(config ClientConfig, http *httpclient.Client) *Client {
	defaults := configDefaults()
	if config.FleekBaseURL == "" {
		config.FleekBaseURL = defaults.FleekBaseURL
	}
	if config.Scheme == "" {
		config.Scheme = defaults.Scheme
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	logger := config.Logger.With("component", "ipfs")
	if http == nil {
		http = httpclient.NewClient(defaults.HTTP, nil, logger)
	}

	return &Client{
		fleekBase: strings.TrimRight(config.FleekBaseURL, "/"),
		scheme:    config.Scheme,
		http:      http,
		logger:    logger,
	}
}

// Get fetches {scheme}://{gateway}/{protocol}/{hash}. protocol defaults to ipfs.
func (c *Client) Get(ctx context.Context, gateway, hash, protocol string) (json.RawMessage, error) {
	if gateway == "" || hash == "" {
		return nil, fmt.Errorf("gateway and hash are required")
	}
	if protocol == "" {
		protocol = defaultProtocol
	}
	return c.fetch(ctx, fmt.Sprintf("%s://%s/%s/%s", c.scheme, gateway, protocol, url.PathEscape(hash)))
}

// FleekGet fetches the registry document {fleekBase}/registry/{address}/{id}.
func (c *Client) FleekGet(ctx context.Context, address, id string) (json.RawMessage, error) {
	if address == "" || id == "" {
		return nil, fmt.Errorf("address and id are required")
	}
	return c.fetch(ctx, fmt.Sprintf("%s/registry/%s/%s", c.fleekBase, url.PathEscape(address), url.PathEscape(id)))
}

func (c *Client) fetch(ctx context.Context, target string) (json.RawMessage, error) {
	c.logger.Debug("fetching content", "url", target)

	var doc json.RawMessage
	if err := c.http.Do(ctx, httpclient.Request{URL: target}, &doc); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", target, err)
	}
	return doc, nil
}
