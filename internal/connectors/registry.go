package connectors

import (
	"fmt"
	"strings"

	"github.com/fabric-tools/adf2fabric/internal/normalize"
)

// Entry is one row of the connector classification table.
type Entry struct {
	ADFType    string
	FabricType string
	Confidence Confidence
	// Gateway marks on-premises or file-system-bound connectors that need an
	// on-premises data gateway in Fabric.
	Gateway bool
	// Special marks connectors whose properties need custom translation.
	Special bool
	Notes   string
}

// Registry is an ordered, case-insensitive connector table.
type Registry struct {
	entries map[string]Entry
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
		order:   make([]string, 0),
	}
}

// Register adds an entry. Keys are matched case-insensitively.
func (r *Registry) Register(e Entry) error {
	key := normalizeType(e.ADFType)
	if key == "" {
		return fmt.Errorf("connector type cannot be empty")
	}
	if strings.TrimSpace(e.FabricType) == "" {
		return fmt.Errorf("connector %q: fabric type cannot be empty", e.ADFType)
	}
	if _, exists := r.entries[key]; exists {
		return fmt.Errorf("connector type %q already registered", e.ADFType)
	}
	if e.Confidence == "" {
		e.Confidence = ConfidenceHigh
	}
	r.entries[key] = e
	r.order = append(r.order, key)
	return nil
}

// Get looks up an entry by ADF type.
func (r *Registry) Get(adfType string) (Entry, bool) {
	e, ok := r.entries[normalizeType(adfType)]
	return e, ok
}

// All returns all entries in registration order.
func (r *Registry) All() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.entries[key])
	}
	return out
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	return len(r.order)
}

func normalizeType(t string) string {
	return normalize.Lower(t)
}

func mustRegister(r *Registry, entries ...Entry) *Registry {
	for _, e := range entries {
		if err := r.Register(e); err != nil {
			panic(fmt.Errorf("connectors: %w", err))
		}
	}
	return r
}
