// Package connectors maps Azure Data Factory linked-service types onto
// Microsoft Fabric connection types.
package connectors

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// GenericType is the Fabric type reported for anything without a mapping.
const GenericType = "Generic"

type Confidence string

const (
	ConfidenceHigh         Confidence = "High"
	ConfidenceMedium       Confidence = "Medium"
	ConfidenceLow          Confidence = "Low"
	ConfidenceNotSupported Confidence = "NotSupported"
)

// ErrMissingType is wrapped by MissingTypeError.
var ErrMissingType = errors.New("missing type")

// MissingTypeError reports a linked-service-like value without a type.
type MissingTypeError struct {
	Name string
}

func (e *MissingTypeError) Error() string {
	if strings.TrimSpace(e.Name) == "" {
		return "linked service: missing type"
	}
	return fmt.Sprintf("linked service %q: missing type", e.Name)
}

func (e *MissingTypeError) Unwrap() error { return ErrMissingType }

// ConnectorMapping is the result of mapping one ADF connector type.
//
// IsSupported means the type is in the direct table, the same meaning as
// IsConnectorTypeSupported. Types resolved through the fallback table or a
// version suffix still get a FabricType, with Medium confidence and
// IsSupported false.
type ConnectorMapping struct {
	ADFType           string     `json:"adf_type"`
	FabricType        string     `json:"fabric_type"`
	IsSupported       bool       `json:"is_supported"`
	MappingConfidence Confidence `json:"mapping_confidence"`
	Notes             string     `json:"notes,omitempty"`
}

// Validation is the outcome of ValidateConnectorMapping. CanMap covers every
// resolvable type; IsSupported is limited to the direct table. Reason is empty
// when the type can be mapped.
type Validation struct {
	CanMap      bool   `json:"can_map"`
	FabricType  string `json:"fabric_type"`
	IsSupported bool   `json:"is_supported"`
	Reason      string `json:"reason,omitempty"`
}

// Statistics counts supported and unsupported types in a batch.
type Statistics struct {
	Total       int `json:"total"`
	Supported   int `json:"supported"`
	Unsupported int `json:"unsupported"`
}

var versionSuffix = regexp.MustCompile(`(?i)v[0-9]+$`)

// MapADFToFabricType returns the Fabric connection type for an ADF type using
// the direct table only. Empty or unknown types yield GenericType.
func MapADFToFabricType(adfType string) string {
	if e, ok := directTable.Get(adfType); ok {
		return e.FabricType
	}
	return GenericType
}

// IsConnectorTypeSupported reports whether adfType is in the direct table.
func IsConnectorTypeSupported(adfType string) bool {
	_, ok := directTable.Get(adfType)
	return ok
}

// RequiresGateway reports whether the connector needs an on-premises data
// gateway.
func RequiresGateway(adfType string) bool {
	e, _, ok := resolve(adfType)
	return ok && e.Gateway
}

// RequiresSpecialHandling reports whether the connector needs custom property
// translation. Unknown types always do.
func RequiresSpecialHandling(adfType string) bool {
	key := normalizeType(adfType)
	for _, prefix := range specialPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	e, _, ok := resolve(adfType)
	if !ok {
		return true
	}
	return e.Special
}

// ValidateConnectorMapping explains whether adfType can be mapped.
func ValidateConnectorMapping(adfType string) Validation {
	if strings.TrimSpace(adfType) == "" {
		return Validation{FabricType: GenericType, Reason: "connector type is empty"}
	}
	e, _, ok := resolve(adfType)
	if !ok {
		return Validation{
			FabricType: GenericType,
			Reason:     fmt.Sprintf("no Fabric connection type is known for %q", adfType),
		}
	}
	return Validation{
		CanMap:      true,
		FabricType:  e.FabricType,
		IsSupported: IsConnectorTypeSupported(adfType),
	}
}

// MapConnector maps a linked service given either as {"type": ...} or in the
// ARM shape {"properties": {"type": ..., "typeProperties": {...}}}.
func MapConnector(linkedService map[string]any) (ConnectorMapping, error) {
	adfType := extractType(linkedService)
	if adfType == "" {
		name, _ := linkedService["name"].(string)
		return ConnectorMapping{}, &MissingTypeError{Name: name}
	}
	return mapType(adfType), nil
}

// MapConnectors maps every input in order. It never fails: inputs without a
// type produce a Generic/NotSupported mapping whose Notes carry the error.
func MapConnectors(linkedServices []map[string]any) []ConnectorMapping {
	out := make([]ConnectorMapping, 0, len(linkedServices))
	for _, ls := range linkedServices {
		m, err := MapConnector(ls)
		if err != nil {
			m = ConnectorMapping{
				FabricType:        GenericType,
				MappingConfidence: ConfidenceNotSupported,
				Notes:             err.Error(),
			}
		}
		out = append(out, m)
	}
	return out
}

// MappingStatistics counts how many of the given types the direct table
// supports.
func MappingStatistics(adfTypes []string) Statistics {
	stats := Statistics{Total: len(adfTypes)}
	for _, t := range adfTypes {
		if IsConnectorTypeSupported(t) {
			stats.Supported++
		} else {
			stats.Unsupported++
		}
	}
	return stats
}

func mapType(adfType string) ConnectorMapping {
	e, confidence, ok := resolve(adfType)
	if !ok {
		return ConnectorMapping{
			ADFType:           adfType,
			FabricType:        GenericType,
			MappingConfidence: ConfidenceNotSupported,
			Notes:             fmt.Sprintf("no Fabric connection type is known for %q; create the connection manually", adfType),
		}
	}
	return ConnectorMapping{
		ADFType:           adfType,
		FabricType:        e.FabricType,
		IsSupported:       IsConnectorTypeSupported(adfType),
		MappingConfidence: confidence,
		Notes:             e.Notes,
	}
}

// resolve looks adfType up in the direct table, then the fallback table, then
// retries both without a trailing version suffix such as "V2".
func resolve(adfType string) (Entry, Confidence, bool) {
	if normalizeType(adfType) == "" {
		return Entry{}, ConfidenceNotSupported, false
	}
	if e, ok := directTable.Get(adfType); ok {
		return e, e.Confidence, true
	}
	if e, ok := fallbackTable.Get(adfType); ok {
		return e, ConfidenceMedium, true
	}

	trimmed := versionSuffix.ReplaceAllString(strings.TrimSpace(adfType), "")
	if trimmed == "" || strings.EqualFold(trimmed, strings.TrimSpace(adfType)) {
		return Entry{}, ConfidenceNotSupported, false
	}
	if e, ok := directTable.Get(trimmed); ok {
		e.Notes = joinNotes(e.Notes, fmt.Sprintf("resolved from versioned type %q", adfType))
		return e, ConfidenceMedium, true
	}
	if e, ok := fallbackTable.Get(trimmed); ok {
		e.Notes = joinNotes(e.Notes, fmt.Sprintf("resolved from versioned type %q", adfType))
		return e, ConfidenceMedium, true
	}
	return Entry{}, ConfidenceNotSupported, false
}

func extractType(linkedService map[string]any) string {
	if linkedService == nil {
		return ""
	}
	if t, ok := linkedService["type"].(string); ok && strings.TrimSpace(t) != "" {
		// ARM resources carry "Microsoft.DataFactory/factories/linkedServices"
		// at this level; the connector type lives under properties.
		if !strings.Contains(t, "/") {
			return strings.TrimSpace(t)
		}
	}
	if props, ok := linkedService["properties"].(map[string]any); ok {
		if t, ok := props["type"].(string); ok {
			return strings.TrimSpace(t)
		}
	}
	return ""
}

func joinNotes(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "; " + b
	}
}
