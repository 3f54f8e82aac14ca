package entity

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ScoreSet maps an address to its voting weight for one strategy.
type ScoreSet map[string]float64

// StrategyDescriptor selects a registered strategy and carries its opaque params.
type StrategyDescriptor struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

// Start returns the numeric params.start watermark, if declared.
// Numbers and numeric strings are accepted; anything else counts as undeclared.
func (d StrategyDescriptor) Start() (float64, bool) {
	if d.Params == nil {
		return 0, false
	}
	raw, ok := d.Params["start"]
	if !ok || raw == nil {
		return 0, false
	}
	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case uint64:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// ActiveAt reports whether the strategy should run for the snapshot. A strategy
// whose start lies after a fixed snapshot height is not yet active.
func (d StrategyDescriptor) ActiveAt(snapshot Snapshot) bool {
	height, fixed := snapshot.Height()
	if !fixed {
		return true
	}
	start, ok := d.Start()
	if !ok {
		return true
	}
	return start <= float64(height)
}
