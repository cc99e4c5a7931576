package migration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConnectionMap is wrapped by LoadConnectionMap for documents that
// decode but do not map names to ids.
var ErrInvalidConnectionMap = errors.New("invalid connection map")

// LoadConnectionMap reads a name to Fabric id map from a YAML or JSON file.
// Two shapes are accepted: a flat {name: id} object, or the same object under
// a top-level "connections" key. An empty path yields an empty map.
func LoadConnectionMap(fs afero.Fs, path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return map[string]string{}, nil
	}
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read connection map: %w", err)
	}
	return ParseConnectionMap(b)
}

// ParseConnectionMap decodes a connection map document.
func ParseConnectionMap(b []byte) (map[string]string, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode connection map: %w", err)
	}
	if nested, ok := doc["connections"]; ok && len(doc) == 1 {
		m, ok := nested.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: \"connections\" must be an object", ErrInvalidConnectionMap)
		}
		doc = m
	}

	out := make(map[string]string, len(doc))
	for name, raw := range doc {
		id, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: id for %q must be a string", ErrInvalidConnectionMap, name)
		}
		name = strings.TrimSpace(name)
		id = strings.TrimSpace(id)
		if name == "" || id == "" {
			return nil, fmt.Errorf("%w: empty name or id", ErrInvalidConnectionMap)
		}
		out[name] = id
	}
	return out, nil
}
