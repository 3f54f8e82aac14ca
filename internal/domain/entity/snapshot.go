package entity

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/archon-research/snapshot-scores/internal/pkg/hexutil"
)

const latestMarker = "latest"

// Snapshot is either the "latest" marker or a fixed block height.
// The zero value means latest.
type Snapshot struct {
	block uint64
	fixed bool
}

// Latest returns the snapshot with no historical constraint.
func Latest() Snapshot {
	return Snapshot{}
}

// AtBlock returns a snapshot pinned to the given block height.
func AtBlock(height uint64) Snapshot {
	return Snapshot{block: height, fixed: true}
}

// ParseSnapshot parses "latest", an empty string (latest), a decimal height or a
// 0x-prefixed hex height.
func ParseSnapshot(s string) (Snapshot, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, latestMarker) {
		return Latest(), nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err := hexutil.ParseInt64(strings.ToLower(s))
		if err != nil || n < 0 {
			return Snapshot{}, fmt.Errorf("%w: %q", ErrInvalidSnapshot, s)
		}
		return AtBlock(uint64(n)), nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrInvalidSnapshot, s)
	}
	return AtBlock(n), nil
}

// IsLatest reports whether the snapshot carries no historical constraint.
func (s Snapshot) IsLatest() bool {
	return !s.fixed
}

// Height returns the block height and true, or 0 and false for latest.
func (s Snapshot) Height() (uint64, bool) {
	return s.block, s.fixed
}

// BlockNumber returns the height as a *big.Int for eth_call, nil for latest.
func (s Snapshot) BlockNumber() *big.Int {
	if !s.fixed {
		return nil
	}
	return new(big.Int).SetUint64(s.block)
}

func (s Snapshot) String() string {
	if !s.fixed {
		return latestMarker
	}
	return strconv.FormatUint(s.block, 10)
}

// MarshalJSON encodes latest as the string "latest" and heights as numbers.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	if !s.fixed {
		return json.Marshal(latestMarker)
	}
	return []byte(strconv.FormatUint(s.block, 10)), nil
}

// UnmarshalJSON accepts "latest", numeric heights and numeric strings.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Latest()
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		raw = string(data)
	}
	parsed, err := ParseSnapshot(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
