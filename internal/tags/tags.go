// Package tags canonicalizes tag input at the request boundary.
//
// Clients send tags as a JSON array, as a string holding a JSON array, or as
// a comma separated string. Everything below the transport works with the
// canonical []string produced here.
package tags

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Input is the tag set submitted with a write. Present distinguishes an
// omitted field (leave links untouched) from an empty list (clear links).
type Input struct {
	Names   []string
	Present bool
}

// Absent is the Input for requests that carry no tags field.
var Absent = Input{}

// FromRaw builds a present Input from a raw request value.
func FromRaw(raw any) Input {
	return Input{Names: Parse(raw), Present: true}
}

// Of builds a present Input from already split names.
func Of(names ...string) Input {
	return Input{Names: Normalize(names), Present: true}
}

// Parse converts a raw tag value into normalized names. Malformed JSON, or
// JSON that is not an array, falls back to comma splitting.
func Parse(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return []string{}
	case []string:
		return Normalize(v)
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			names = append(names, stringify(item))
		}
		return Normalize(names)
	case string:
		return parseString(v)
	default:
		return Normalize([]string{stringify(v)})
	}
}

func parseString(s string) []string {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "[") {
		var items []any
		if err := json.Unmarshal([]byte(trimmed), &items); err == nil {
			return Parse(items)
		}
	}
	return Normalize(strings.Split(s, ","))
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Normalize trims every name, drops empties and removes exact duplicates,
// keeping first-seen order.
func Normalize(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
