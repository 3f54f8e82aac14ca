package subgraph

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// argsKey holds a field's arguments in a query description.
const argsKey = "__args"

// EnumValue renders as a bare GraphQL enum literal instead of a quoted string.
type EnumValue string

// BuildQuery renders a JSON-style query description as GraphQL text wrapped in
// an anonymous "query" operation.
//
// Every key is a field. A value of true selects a leaf, false or nil drops the
// field, and a nested map opens a selection set. The "__args" key of a nested
// map holds that field's arguments. Keys are emitted in sorted order.
func BuildQuery(query map[string]any) (string, error) {
	var b strings.Builder
	b.WriteString("query")
	if err := writeSelection(&b, query); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeSelection(b *strings.Builder, fields map[string]any) error {
	b.WriteString(" {")
	wrote := false
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if name == argsKey {
			continue
		}
		switch v := fields[name].(type) {
		case nil:
		case bool:
			if !v {
				continue
			}
			b.WriteString(" ")
			b.WriteString(name)
			wrote = true
		case map[string]any:
			b.WriteString(" ")
			b.WriteString(name)
			if args, ok := v[argsKey]; ok {
				if err := writeArgs(b, args); err != nil {
					return fmt.Errorf("field %s: %w", name, err)
				}
			}
			if hasSelection(v) {
				if err := writeSelection(b, v); err != nil {
					return err
				}
			}
			wrote = true
		default:
			return fmt.Errorf("field %s: unsupported selection value %T", name, v)
		}
	}
	if !wrote {
		return fmt.Errorf("empty selection set")
	}
	b.WriteString(" }")
	return nil
}

func hasSelection(fields map[string]any) bool {
	for name := range fields {
		if name != argsKey {
			return true
		}
	}
	return false
}

func writeArgs(b *strings.Builder, raw any) error {
	args, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("%s must be an object, got %T", argsKey, raw)
	}
	if len(args) == 0 {
		return nil
	}
	b.WriteString("(")
	for i, name := range slices.Sorted(maps.Keys(args)) {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		if err := writeValue(b, args[name]); err != nil {
			return fmt.Errorf("argument %s: %w", name, err)
		}
	}
	b.WriteString(")")
	return nil
}

func writeValue(b *strings.Builder, v any) error {
	switch val := v.(type) {
	case nil:
		b.WriteString("null")
	case EnumValue:
		b.WriteString(string(val))
	case string:
		quoted, err := json.Marshal(val)
		if err != nil {
			return err
		}
		b.Write(quoted)
	case bool, int, int64, uint64, float64, json.Number:
		fmt.Fprint(b, val)
	case []string:
		items := make([]any, len(val))
		for i, s := range val {
			items[i] = s
		}
		return writeList(b, items)
	case []any:
		return writeList(b, val)
	case map[string]any:
		b.WriteString("{")
		for i, name := range slices.Sorted(maps.Keys(val)) {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(name)
			b.WriteString(": ")
			if err := writeValue(b, val[name]); err != nil {
				return err
			}
		}
		b.WriteString("}")
	default:
		return fmt.Errorf("unsupported argument type %T", v)
	}
	return nil
}

func writeList(b *strings.Builder, items []any) error {
	b.WriteString("[")
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		if err := writeValue(b, item); err != nil {
			return err
		}
	}
	b.WriteString("]")
	return nil
}
