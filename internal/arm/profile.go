package arm

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/fabric-tools/adf2fabric/internal/jsontree"
	"github.com/fabric-tools/adf2fabric/internal/normalize"
)

const (
	// MaxActivitiesPerPipeline is the Fabric limit on activities in a single
	// pipeline.
	MaxActivitiesPerPipeline = 80
	deepFolderThreshold      = 3
)

// endpointKeys are the linked-service typeProperties that hold a host or URL.
var endpointKeys = []string{"url", "baseUrl", "serviceEndpoint", "endpoint", "server", "host", "accountEndpoint", "domain"}

// GenerateProfile aggregates metrics and insights for components. The global
// parameter count comes from the template last parsed by p.
func (p *Parser) GenerateProfile(components []Component, fileName string, fileSize int64) Profile {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return buildProfile(components, fileName, fileSize, p.globalParamsCount, now().UTC())
}

// GlobalParameterCount returns the number of global parameters declared on
// the factory of the last parsed template.
func (p *Parser) GlobalParameterCount() int {
	return p.globalParamsCount
}

func buildProfile(components []Component, fileName string, fileSize int64, globalParams int, parsedAt time.Time) Profile {
	m := ProfileMetrics{
		ActivityTypes:         map[string]int{},
		ExternalDomains:       []string{},
		TotalGlobalParameters: globalParams,
	}

	pipelineNames := map[string]bool{}
	referencedDatasets := map[string]bool{}
	partialTypes := map[string]int{}
	var (
		emptyPipelines []string
		largePipelines []string
		deepPipelines  []string
		selfHosted     []string
		unsupported    []string
	)
	domains := map[string]bool{}

	for _, c := range components {
		switch c.Type {
		case TypePipeline:
			m.TotalPipelines++
			pipelineNames[c.Name] = true
			props := c.Definition
			acts := Activities(props)
			m.TotalActivities += len(acts)
			if TopLevelActivityCount(props) == 0 {
				emptyPipelines = append(emptyPipelines, c.Name)
			}
			if len(acts) > MaxActivitiesPerPipeline {
				largePipelines = append(largePipelines, c.Name)
			}
			for _, act := range acts {
				at, _ := act["type"].(string)
				if at == "" {
					continue
				}
				m.ActivityTypes[at]++
				if IsPartiallySupportedActivity(at) {
					partialTypes[at]++
				}
			}
			collectDatasetRefs(props, referencedDatasets)
			if c.Folder != nil {
				if c.Folder.Depth > m.MaxPipelineDepth {
					m.MaxPipelineDepth = c.Folder.Depth
				}
				if c.Folder.Depth > deepFolderThreshold {
					deepPipelines = append(deepPipelines, c.Name)
				}
			}
		case TypeDataset:
			m.TotalDatasets++
		case TypeLinkedService:
			m.TotalLinkedServices++
			tp := jsontree.Child(c.Definition, "typeProperties")
			for _, key := range endpointKeys {
				if s, ok := tp[key].(string); ok {
					if d := normalize.Domain(s); d != "" {
						domains[d] = true
					}
				}
			}
		case TypeTrigger:
			m.TotalTriggers++
		case TypeIntegrationRuntime:
			m.TotalIntegrationRuntimes++
			if t, _ := c.Definition["type"].(string); strings.EqualFold(t, "SelfHosted") {
				selfHosted = append(selfHosted, c.Name)
			}
		}
		if c.CompatibilityStatus == StatusUnsupported {
			unsupported = append(unsupported, fmt.Sprintf("%s (%s)", c.Name, c.Type))
		}
	}

	if m.TotalPipelines > 0 {
		avg := float64(m.TotalActivities) / float64(m.TotalPipelines)
		m.AvgActivitiesPerPipeline = math.Round(avg*100) / 100
	}
	for d := range domains {
		m.ExternalDomains = append(m.ExternalDomains, d)
	}
	sort.Strings(m.ExternalDomains)

	var insights []Insight
	if len(emptyPipelines) > 0 {
		insights = append(insights, Insight{
			Icon:           "📭",
			Title:          "Empty pipelines",
			Description:    fmt.Sprintf("%d pipeline(s) have no activities: %s", len(emptyPipelines), listPreview(emptyPipelines)),
			Severity:       SeverityInfo,
			Recommendation: "Remove unused pipelines before migrating or confirm they are placeholders.",
		})
	}

	var orphans []string
	for _, c := range components {
		if c.Type == TypeDataset && !referencedDatasets[c.Name] {
			orphans = append(orphans, c.Name)
		}
	}
	if len(orphans) > 0 {
		insights = append(insights, Insight{
			Icon:           "🧩",
			Title:          "Orphan datasets",
			Description:    fmt.Sprintf("%d dataset(s) are not referenced by any pipeline: %s", len(orphans), listPreview(orphans)),
			Severity:       SeverityInfo,
			Recommendation: "Orphan datasets do not need to be migrated.",
		})
	}
	if len(largePipelines) > 0 {
		insights = append(insights, Insight{
			Icon:           "📈",
			Title:          "Pipelines over the activity limit",
			Description:    fmt.Sprintf("%d pipeline(s) have more than %d activities: %s", len(largePipelines), MaxActivitiesPerPipeline, listPreview(largePipelines)),
			Severity:       SeverityCritical,
			Recommendation: "Split these pipelines and chain them with InvokePipeline activities.",
		})
	}
	if len(deepPipelines) > 0 {
		insights = append(insights, Insight{
			Icon:           "🗂️",
			Title:          "Deep folder nesting",
			Description:    fmt.Sprintf("%d pipeline(s) are nested more than %d folders deep", len(deepPipelines), deepFolderThreshold),
			Severity:       SeverityInfo,
			Recommendation: "Fabric workspace folders are flatter; plan the target folder structure.",
		})
	}

	var danglingTriggers []string
	for _, c := range components {
		if c.Type != TypeTrigger || c.TriggerMetadata == nil {
			continue
		}
		for _, name := range c.TriggerMetadata.Pipelines {
			if !pipelineNames[name] {
				danglingTriggers = append(danglingTriggers, fmt.Sprintf("%s -> %s", c.Name, name))
			}
		}
	}
	if len(danglingTriggers) > 0 {
		insights = append(insights, Insight{
			Icon:           "⏰",
			Title:          "Triggers referencing unknown pipelines",
			Description:    fmt.Sprintf("%d trigger reference(s) point to pipelines not in this template: %s", len(danglingTriggers), listPreview(danglingTriggers)),
			Severity:       SeverityWarning,
			Recommendation: "Include the referenced pipelines or drop the trigger references.",
		})
	}
	if globalParams > 0 {
		insights = append(insights, Insight{
			Icon:           "🔧",
			Title:          "Global parameters",
			Description:    fmt.Sprintf("%d global parameter(s) are declared on the factory", globalParams),
			Severity:       SeverityInfo,
			Recommendation: "Global parameters are migrated to a Fabric Variable Library.",
		})
	}
	if len(selfHosted) > 0 {
		insights = append(insights, Insight{
			Icon:           "🏢",
			Title:          "Self-hosted integration runtimes",
			Description:    fmt.Sprintf("%d self-hosted integration runtime(s): %s", len(selfHosted), listPreview(selfHosted)),
			Severity:       SeverityWarning,
			Recommendation: "Install an on-premises data gateway for the connections that use them.",
		})
	}
	if len(unsupported) > 0 {
		insights = append(insights, Insight{
			Icon:           "⛔",
			Title:          "Unsupported components",
			Description:    fmt.Sprintf("%d component(s) cannot be migrated automatically: %s", len(unsupported), listPreview(unsupported)),
			Severity:       SeverityCritical,
			Recommendation: "Plan a manual migration for these components.",
		})
	}
	if len(partialTypes) > 0 {
		types := make([]string, 0, len(partialTypes))
		for t, n := range partialTypes {
			types = append(types, fmt.Sprintf("%s x%d", t, n))
		}
		sort.Strings(types)
		insights = append(insights, Insight{
			Icon:           "⚠️",
			Title:          "Activities needing manual work",
			Description:    "Partially supported activity types: " + strings.Join(types, ", "),
			Severity:       SeverityWarning,
			Recommendation: "Review each flagged activity after migration.",
		})
	}
	if insights == nil {
		insights = []Insight{}
	}

	return Profile{
		FileName:         fileName,
		FileSizeBytes:    fileSize,
		ParsedAt:         parsedAt,
		Metrics:          m,
		Insights:         insights,
		ComponentSummary: Summarize(components),
	}
}

// collectDatasetRefs records every DatasetReference name in a pipeline tree.
func collectDatasetRefs(v any, into map[string]bool) {
	switch t := v.(type) {
	case map[string]any:
		if ref, _ := t["type"].(string); ref == "DatasetReference" {
			if name, ok := t["referenceName"].(string); ok && name != "" {
				into[name] = true
			}
		}
		for k, child := range t {
			if k == MetadataKey {
				continue
			}
			collectDatasetRefs(child, into)
		}
	case []any:
		for _, child := range t {
			collectDatasetRefs(child, into)
		}
	}
}

func listPreview(names []string) string {
	const limit = 5
	if len(names) <= limit {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(names[:limit], ", "), len(names)-limit)
}
