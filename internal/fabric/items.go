// Package fabric builds the request bodies used to create Fabric items from
// migrated components.
package fabric

import (
	"sort"

	"github.com/fabric-tools/adf2fabric/internal/connectors"
	"github.com/fabric-tools/adf2fabric/internal/globalparams"
)

const (
	ItemTypeDataPipeline    = "DataPipeline"
	ItemTypeVariableLibrary = "VariableLibrary"

	PipelineContentPath = "pipeline-content.json"
	PayloadInlineBase64 = "InlineBase64"
)

// DefinitionPart is one file of an item definition, carried inline.
type DefinitionPart struct {
	Path        string `json:"path"`
	Payload     string `json:"payload"`
	PayloadType string `json:"payloadType"`
}

// ItemDefinition is the parts list of a create-item body.
type ItemDefinition struct {
	Parts []DefinitionPart `json:"parts"`
}

// PipelineItemRequest is the body of a create-item call for a Data Pipeline.
type PipelineItemRequest struct {
	Type        string         `json:"type"`
	DisplayName string         `json:"displayName"`
	Description string         `json:"description,omitempty"`
	Definition  ItemDefinition `json:"definition"`
}

// NewPipelineItemRequest wraps a base64 pipeline payload.
func NewPipelineItemRequest(displayName, payload string) PipelineItemRequest {
	return PipelineItemRequest{
		Type:        ItemTypeDataPipeline,
		DisplayName: displayName,
		Definition: ItemDefinition{Parts: []DefinitionPart{{
			Path:        PipelineContentPath,
			Payload:     payload,
			PayloadType: PayloadInlineBase64,
		}}},
	}
}

// Variable is one variable library entry.
type Variable struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// VariableLibraryDefinition holds variables keyed by name.
type VariableLibraryDefinition struct {
	Variables map[string]Variable `json:"variables"`
}

// VariableLibraryItem is the variable library holding migrated global
// parameters.
type VariableLibraryItem struct {
	Type        string                    `json:"type"`
	DisplayName string                    `json:"displayName"`
	Definition  VariableLibraryDefinition `json:"definition"`
}

// NewVariableLibraryItem declares one variable per global parameter, keyed by
// parameter name. Secure parameters get an empty value so secrets are never
// written out.
func NewVariableLibraryItem(displayName string, params []globalparams.Reference) VariableLibraryItem {
	vars := make(map[string]Variable, len(params))
	for _, p := range params {
		value := p.DefaultValue
		if p.IsSecure || value == nil {
			value = ""
		}
		vars[p.Name] = Variable{Type: p.FabricDataType, Value: value}
	}
	return VariableLibraryItem{
		Type:        ItemTypeVariableLibrary,
		DisplayName: displayName,
		Definition:  VariableLibraryDefinition{Variables: vars},
	}
}

// ConnectionPlanEntry describes the Fabric connection a linked service needs.
type ConnectionPlanEntry struct {
	LinkedService   string         `json:"linked_service"`
	ADFType         string         `json:"adf_type"`
	FabricType      string         `json:"fabric_type"`
	Confidence      string         `json:"mapping_confidence"`
	IsSupported     bool           `json:"is_supported"`
	RequiresGateway bool           `json:"requires_gateway"`
	ConnectionID    string         `json:"connection_id,omitempty"`
	Details         map[string]any `json:"connection_details"`
	Notes           string         `json:"notes,omitempty"`
}

// ConnectionPlan lists every linked service with its target connection.
type ConnectionPlan struct {
	Connections []ConnectionPlanEntry `json:"connections"`
	Resolved    int                   `json:"resolved"`
	Unresolved  []string              `json:"unresolved"`
}

// LinkedService is the input for a connection plan entry.
type LinkedService struct {
	Name       string
	Definition map[string]any
	Mapping    connectors.ConnectorMapping
}

// NewConnectionPlan builds the plan, resolving ids from ids (linked-service
// name to Fabric connection id). Unresolved names are sorted.
func NewConnectionPlan(services []LinkedService, ids map[string]string) ConnectionPlan {
	plan := ConnectionPlan{
		Connections: make([]ConnectionPlanEntry, 0, len(services)),
		Unresolved:  []string{},
	}
	for _, ls := range services {
		entry := ConnectionPlanEntry{
			LinkedService:   ls.Name,
			ADFType:         ls.Mapping.ADFType,
			FabricType:      ls.Mapping.FabricType,
			Confidence:      string(ls.Mapping.MappingConfidence),
			IsSupported:     ls.Mapping.IsSupported,
			RequiresGateway: connectors.RequiresGateway(ls.Mapping.ADFType),
			Details:         connectors.BuildConnectionDetailsFromADF(ls.Mapping.FabricType, ls.Definition),
			Notes:           ls.Mapping.Notes,
		}
		if id, ok := ids[ls.Name]; ok && id != "" {
			entry.ConnectionID = id
			plan.Resolved++
		} else {
			plan.Unresolved = append(plan.Unresolved, ls.Name)
		}
		plan.Connections = append(plan.Connections, entry)
	}
	sort.Strings(plan.Unresolved)
	return plan
}
