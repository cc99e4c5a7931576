// Package jsontree holds helpers for generic JSON documents decoded into
// map[string]any / []any trees.
package jsontree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Decode parses b into a generic JSON value. Integral numbers that fit into an
// int64 are decoded as int64, everything else numeric as float64, so that
// declared ARM types survive a round trip.
func Decode(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
	}
	return normalizeNumbers(v), nil
}

func normalizeNumbers(v any) any {
	switch vv := v.(type) {
	case map[string]any:
		for k, child := range vv {
			vv[k] = normalizeNumbers(child)
		}
		return vv
	case []any:
		for i := range vv {
			vv[i] = normalizeNumbers(vv[i])
		}
		return vv
	case json.Number:
		if n, err := vv.Int64(); err == nil {
			return n
		}
		if f, err := vv.Float64(); err == nil {
			return f
		}
		return vv.String()
	default:
		return v
	}
}

// DeepCopy returns a structural copy of a JSON-like value. Scalars are shared,
// maps and slices are duplicated.
func DeepCopy(v any) any {
	switch vv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, v := range vv {
			out[k] = DeepCopy(v)
		}
		return out
	case []any:
		out := make([]any, len(vv))
		for i := range vv {
			out[i] = DeepCopy(vv[i])
		}
		return out
	case []map[string]any:
		out := make([]any, len(vv))
		for i := range vv {
			out[i] = DeepCopy(vv[i])
		}
		return out
	default:
		return v
	}
}

// CopyObject deep-copies m. A nil map yields an empty one.
func CopyObject(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return DeepCopy(m).(map[string]any)
}

// Object returns v as a JSON object when it is one.
func Object(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// String returns m[key] when it is a string.
func String(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// Child returns m[key] when it is an object.
func Child(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	c, _ := m[key].(map[string]any)
	return c
}

// Get resolves RFC 6901 JSON Pointers against JSON-like values.
//
// It returns (value, true, nil) when the pointer resolves successfully, and
// (nil, false, nil) when any path segment is missing.
func Get(doc any, pointer string) (any, bool, error) {
	if pointer == "" {
		return doc, true, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, false, fmt.Errorf("invalid json pointer %q", pointer)
	}

	current := doc
	parts := strings.Split(pointer, "/")[1:]
	for _, rawPart := range parts {
		part, err := unescapePointerToken(rawPart)
		if err != nil {
			return nil, false, err
		}

		switch node := current.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, false, nil
			}
			current = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false, nil
			}
			current = node[i]
		default:
			return nil, false, nil
		}
	}

	return current, true, nil
}

// GetString is Get narrowed to string leaves. Missing or non-string values
// yield "".
func GetString(doc any, pointer string) string {
	v, ok, err := Get(doc, pointer)
	if err != nil || !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func unescapePointerToken(token string) (string, error) {
	if strings.IndexByte(token, '~') == -1 {
		return token, nil
	}

	var b strings.Builder
	b.Grow(len(token))
	for i := 0; i < len(token); i++ {
		ch := token[i]
		if ch != '~' {
			b.WriteByte(ch)
			continue
		}
		if i+1 >= len(token) {
			return "", fmt.Errorf("invalid json pointer escape %q", token)
		}
		switch token[i+1] {
		case '0':
			b.WriteByte('~')
		case '1':
			b.WriteByte('/')
		default:
			return "", fmt.Errorf("invalid json pointer escape %q", token)
		}
		i++
	}
	return b.String(), nil
}

// WalkStrings calls fn for every string leaf under v. Object members are
// visited in key order so callers see a stable sequence. Map keys themselves
// are not visited.
func WalkStrings(v any, fn func(s string)) {
	switch vv := v.(type) {
	case map[string]any:
		for _, k := range SortedKeys(vv) {
			WalkStrings(vv[k], fn)
		}
	case []any:
		for _, child := range vv {
			WalkStrings(child, fn)
		}
	case string:
		fn(vv)
	}
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MapStrings replaces every string leaf under v in place with fn(leaf) and
// returns the (possibly replaced) root.
func MapStrings(v any, fn func(s string) string) any {
	switch vv := v.(type) {
	case map[string]any:
		for k, child := range vv {
			vv[k] = MapStrings(child, fn)
		}
		return vv
	case []any:
		for i := range vv {
			vv[i] = MapStrings(vv[i], fn)
		}
		return vv
	case string:
		return fn(vv)
	default:
		return v
	}
}

// MarshalCompact encodes v without indentation and without HTML escaping, so
// that expressions such as "@greater(a, b) && x" keep their characters.
func MarshalCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalIndent is MarshalCompact with two-space indentation.
func MarshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
