// Package hexutil parses 0x-prefixed quantities such as block heights.
package hexutil

import (
	"strconv"
	"strings"
)

// ParseInt64 parses a hex-encoded string to int64.
// Handles both "0x" prefixed and non-prefixed hex strings.
func ParseInt64(hexNum string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(hexNum, "0x"), 16, 64)
}

// ParseUint64 is ParseInt64 for unsigned quantities.
func ParseUint64(hexNum string) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(hexNum, "0x"), 16, 64)
}
