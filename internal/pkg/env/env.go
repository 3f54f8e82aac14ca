// Package env provides utilities for working with environment variables.
package env

import (
	"os"
	"strings"
)

// Get returns the value of the environment variable or the default if not set.
func Get(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// RPCURLKey returns the variable name that overrides the RPC endpoint of a
// network, e.g. RPC_URL_128.
func RPCURLKey(network string) string {
	return "RPC_URL_" + strings.ToUpper(network)
}
