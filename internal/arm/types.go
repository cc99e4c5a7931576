package arm

import "time"

// ComponentType is the normalized class of a migratable ARM resource.
type ComponentType string

const (
	TypePipeline               ComponentType = "Pipeline"
	TypeDataset                ComponentType = "Dataset"
	TypeLinkedService          ComponentType = "LinkedService"
	TypeTrigger                ComponentType = "Trigger"
	TypeSparkJobDefinition     ComponentType = "SparkJobDefinition"
	TypeNotebook               ComponentType = "Notebook"
	TypeDataflow               ComponentType = "Dataflow"
	TypeSQLScript              ComponentType = "SqlScript"
	TypeIntegrationRuntime     ComponentType = "IntegrationRuntime"
	TypeManagedPrivateEndpoint ComponentType = "ManagedPrivateEndpoint"
	TypeLibrary                ComponentType = "Library"
)

// CompatibilityStatus says whether a component can be migrated automatically.
type CompatibilityStatus string

const (
	StatusSupported          CompatibilityStatus = "Supported"
	StatusPartiallySupported CompatibilityStatus = "PartiallySupported"
	StatusUnsupported        CompatibilityStatus = "Unsupported"
)

// MetadataKey is the key under which the parser injects bookkeeping into a
// component definition.
const MetadataKey = "resourceMetadata"

// Component is one normalized ARM resource.
//
// CompatibilityStatus and FabricTarget are computed once by the parser and
// are not changed by later stages.
type Component struct {
	Name                string              `json:"name"`
	Type                ComponentType       `json:"type"`
	Definition          map[string]any      `json:"definition"`
	Folder              *FolderInfo         `json:"folder,omitempty"`
	TriggerMetadata     *TriggerMetadata    `json:"trigger_metadata,omitempty"`
	FabricTarget        *FabricTarget       `json:"fabric_target,omitempty"`
	CompatibilityStatus CompatibilityStatus `json:"compatibility_status"`
	IsSelected          bool                `json:"is_selected"`
	Warnings            []string            `json:"warnings"`
	Suggestions         []string            `json:"suggestions"`
}

// IsSynapse reports whether the component came from a Synapse workspace
// resource rather than a Data Factory.
func (c Component) IsSynapse() bool {
	meta, _ := c.Definition[MetadataKey].(map[string]any)
	v, _ := meta["synapseWorkspace"].(bool)
	return v
}

// Properties returns the definition without parser bookkeeping.
func (c Component) Properties() map[string]any {
	out := make(map[string]any, len(c.Definition))
	for k, v := range c.Definition {
		if k == MetadataKey {
			continue
		}
		out[k] = v
	}
	return out
}

// FolderInfo is the folder a component sits in, split into segments.
type FolderInfo struct {
	Path     string   `json:"path"`
	Depth    int      `json:"depth"`
	Segments []string `json:"segments"`
}

// Recurrence is a schedule trigger's recurrence block.
type Recurrence struct {
	Frequency string `json:"frequency,omitempty"`
	Interval  int    `json:"interval,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	TimeZone  string `json:"time_zone,omitempty"`
}

// TriggerMetadata is what the parser keeps from a trigger definition.
type TriggerMetadata struct {
	TriggerType  string      `json:"trigger_type"`
	RuntimeState string      `json:"runtime_state,omitempty"`
	Recurrence   *Recurrence `json:"recurrence,omitempty"`
	Pipelines    []string    `json:"pipelines"`
}

// FabricTarget is the Fabric item a component becomes.
type FabricTarget struct {
	ItemType string `json:"item_type"`
	Name     string `json:"name"`
}

// Summary aggregates compatibility counts.
type Summary struct {
	Total              int            `json:"total"`
	Supported          int            `json:"supported"`
	PartiallySupported int            `json:"partially_supported"`
	Unsupported        int            `json:"unsupported"`
	ByType             map[string]int `json:"by_type"`
}

// Severity ranks profile insights.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Insight is a human-readable finding produced while profiling a template.
type Insight struct {
	Icon           string   `json:"icon"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Severity       Severity `json:"severity"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// ProfileMetrics are the counts reported by a profile.
type ProfileMetrics struct {
	TotalPipelines           int            `json:"total_pipelines"`
	TotalActivities          int            `json:"total_activities"`
	AvgActivitiesPerPipeline float64        `json:"avg_activities_per_pipeline"`
	MaxPipelineDepth         int            `json:"max_pipeline_depth"`
	TotalDatasets            int            `json:"total_datasets"`
	TotalLinkedServices      int            `json:"total_linked_services"`
	TotalTriggers            int            `json:"total_triggers"`
	TotalGlobalParameters    int            `json:"total_global_parameters"`
	TotalIntegrationRuntimes int            `json:"total_integration_runtimes"`
	ActivityTypes            map[string]int `json:"activity_types"`
	ExternalDomains          []string       `json:"external_domains"`
}

// Profile is the aggregate view of a parsed template.
type Profile struct {
	FileName         string         `json:"file_name"`
	FileSizeBytes    int64          `json:"file_size_bytes"`
	ParsedAt         time.Time      `json:"parsed_at"`
	Metrics          ProfileMetrics `json:"metrics"`
	Insights         []Insight      `json:"insights"`
	ComponentSummary Summary        `json:"component_summary"`
}
