package strategies

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/archon-research/snapshot-scores/internal/domain/entity"
)

// Params arrive decoded from JSON, so numbers are usually float64 but may be
// json.Number or numeric strings.

func stringParam(params map[string]any, key string) (string, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return "", fmt.Errorf("%w: %s is required", entity.ErrInvalidParams, key)
	}
	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: %s must be a non-empty string, got %T", entity.ErrInvalidParams, key, raw)
	}
	return s, nil
}

func floatParam(params map[string]any, key string, def float64) (float64, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return def, nil
	}
	v, ok := toFloat(raw)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a number, got %v", entity.ErrInvalidParams, key, raw)
	}
	return v, nil
}

func intParam(params map[string]any, key string, def int) (int, error) {
	v, err := floatParam(params, key, float64(def))
	if err != nil {
		return 0, err
	}
	if v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer, got %v", entity.ErrInvalidParams, key, v)
	}
	return int(v), nil
}

func stringSliceParam(params map[string]any, key string) ([]string, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%w: %s is required", entity.ErrInvalidParams, key)
	}
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d] must be a string, got %T", entity.ErrInvalidParams, key, i, item)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a list, got %T", entity.ErrInvalidParams, key, raw)
	}
}

func toFloat(raw any) (float64, bool) {
	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case int:
		v = float64(n)
	case int64:
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
	return v, !math.IsNaN(v) && !math.IsInf(v, 0)
}
