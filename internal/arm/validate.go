package arm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fabric-tools/adf2fabric/internal/connectors"
)

// partialActivities maps activity types that need manual follow-up in Fabric
// to the warning shown for them.
var partialActivities = map[string]string{
	"ExecuteSSISPackage":     "SSIS package execution has no Fabric pipeline equivalent",
	"HDInsightHive":          "HDInsight activities must be ported to Spark notebooks",
	"HDInsightPig":           "HDInsight activities must be ported to Spark notebooks",
	"HDInsightMapReduce":     "HDInsight activities must be ported to Spark notebooks",
	"HDInsightSpark":         "HDInsight activities must be ported to Spark notebooks",
	"HDInsightStreaming":     "HDInsight activities must be ported to Spark notebooks",
	"Custom":                 "Custom (Azure Batch) activities must be rebuilt",
	"AzureMLExecutePipeline": "Azure ML pipeline activities need a Fabric connection to the ML workspace",
	"ExecuteDataFlow":        "Mapping data flows must be rebuilt as Dataflow Gen2 or notebooks",
	"DatabricksNotebook":     "Databricks activities need a Databricks connection or conversion to Fabric notebooks",
	"DatabricksSparkJar":     "Databricks activities need a Databricks connection or conversion to Fabric notebooks",
	"DatabricksSparkPython":  "Databricks activities need a Databricks connection or conversion to Fabric notebooks",
}

// IsPartiallySupportedActivity reports whether the activity type migrates
// only with manual follow-up.
func IsPartiallySupportedActivity(activityType string) bool {
	_, ok := partialActivities[activityType]
	return ok
}

type compatibility struct {
	status      CompatibilityStatus
	warnings    []string
	suggestions []string
}

func (c *compatibility) degrade(to CompatibilityStatus) {
	if rank(to) > rank(c.status) {
		c.status = to
	}
}

func rank(s CompatibilityStatus) int {
	switch s {
	case StatusUnsupported:
		return 2
	case StatusPartiallySupported:
		return 1
	default:
		return 0
	}
}

func validate(t ComponentType, properties map[string]any, trigger *TriggerMetadata) compatibility {
	c := compatibility{status: StatusSupported}
	switch t {
	case TypePipeline:
		validatePipeline(&c, properties)
	case TypeDataset:
		c.suggestions = append(c.suggestions, "Fabric has no dataset item; source and sink settings are inlined into activities")
	case TypeLinkedService:
		validateLinkedService(&c, properties)
	case TypeTrigger:
		validateTrigger(&c, trigger)
	case TypeIntegrationRuntime:
		validateIntegrationRuntime(&c, properties)
	case TypeNotebook, TypeSparkJobDefinition:
		c.degrade(StatusPartiallySupported)
		c.warnings = append(c.warnings, "Synapse Spark code must be reviewed for Fabric runtime differences")
	case TypeDataflow:
		c.degrade(StatusPartiallySupported)
		c.warnings = append(c.warnings, "Mapping data flows must be rebuilt as Dataflow Gen2 or notebooks")
	case TypeSQLScript, TypeLibrary, TypeManagedPrivateEndpoint:
		c.degrade(StatusUnsupported)
		c.warnings = append(c.warnings, fmt.Sprintf("%s resources are not migrated automatically", t))
	}
	return c
}

func validatePipeline(c *compatibility, properties map[string]any) {
	seen := map[string]bool{}
	var partial []string
	hasExecutePipeline := false
	for _, act := range Activities(properties) {
		at, _ := act["type"].(string)
		if at == "ExecutePipeline" {
			hasExecutePipeline = true
		}
		if IsPartiallySupportedActivity(at) && !seen[at] {
			seen[at] = true
			partial = append(partial, at)
		}
	}
	sort.Strings(partial)
	for _, at := range partial {
		c.degrade(StatusPartiallySupported)
		c.warnings = append(c.warnings, fmt.Sprintf("%s: %s", at, partialActivities[at]))
	}
	if hasExecutePipeline {
		c.suggestions = append(c.suggestions, "ExecutePipeline activities become InvokePipeline; child pipelines must be migrated first")
	}
	if TopLevelActivityCount(properties) == 0 {
		c.suggestions = append(c.suggestions, "pipeline has no activities")
	}
}

func validateLinkedService(c *compatibility, properties map[string]any) {
	lsType, _ := properties["type"].(string)
	if !connectors.IsConnectorTypeSupported(lsType) {
		c.degrade(StatusPartiallySupported)
		c.warnings = append(c.warnings, fmt.Sprintf("connector type %q has no direct Fabric connection type", lsType))
		c.suggestions = append(c.suggestions, "create the Fabric connection manually and add it to the connection map")
		return
	}
	if connectors.RequiresGateway(lsType) {
		c.suggestions = append(c.suggestions, "requires an on-premises data gateway in Fabric")
	}
	if connectors.RequiresSpecialHandling(lsType) {
		c.suggestions = append(c.suggestions, "authentication settings must be re-entered on the Fabric connection")
	}
}

func validateTrigger(c *compatibility, trigger *TriggerMetadata) {
	if trigger == nil {
		c.degrade(StatusUnsupported)
		c.warnings = append(c.warnings, "trigger has no type")
		return
	}
	switch trigger.TriggerType {
	case "ScheduleTrigger":
		if trigger.Recurrence == nil {
			c.warnings = append(c.warnings, "schedule trigger has no recurrence")
		}
	case "TumblingWindowTrigger":
		c.degrade(StatusPartiallySupported)
		c.warnings = append(c.warnings, "tumbling window semantics (backfill, dependencies) are not available on Fabric schedules")
	case "BlobEventsTrigger":
		c.degrade(StatusPartiallySupported)
		c.warnings = append(c.warnings, "storage event triggers must be recreated as Fabric event triggers")
	default:
		c.degrade(StatusUnsupported)
		c.warnings = append(c.warnings, fmt.Sprintf("trigger type %q is not migrated", trigger.TriggerType))
	}
	if len(trigger.Pipelines) == 0 {
		c.suggestions = append(c.suggestions, "trigger does not reference any pipeline")
	}
}

func validateIntegrationRuntime(c *compatibility, properties map[string]any) {
	irType, _ := properties["type"].(string)
	if strings.EqualFold(irType, "SelfHosted") {
		c.degrade(StatusPartiallySupported)
		c.warnings = append(c.warnings, "self-hosted integration runtimes are replaced by an on-premises data gateway")
		return
	}
	c.suggestions = append(c.suggestions, "Fabric manages cloud compute; no integration runtime is needed")
}
