package arm

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const factoryTemplate = `{
  "$schema": "https://schema.management.azure.com/schemas/2015-01-01/deploymentTemplate.json#",
  "parameters": {
    "factoryName": {"type": "string", "defaultValue": "contoso-adf"}
  },
  "resources": [
    {
      "name": "[parameters('factoryName')]",
      "type": "Microsoft.DataFactory/factories",
      "properties": {
        "globalParameters": {
          "apiUrl": {"type": "String", "value": "https://api.example.com"},
          "retries": {"type": "Int", "value": 3}
        }
      },
      "resources": [
        {
          "name": "NestedPipeline",
          "type": "pipelines",
          "properties": {"activities": []}
        }
      ]
    },
    {
      "name": "[concat(parameters('factoryName'), '/TestPipeline')]",
      "type": "Microsoft.DataFactory/factories/pipelines",
      "dependsOn": ["[concat(variables('factoryId'), '/datasets/SourceData')]"],
      "properties": {
        "folder": {"name": "Sales/Daily/Load"},
        "activities": [
          {
            "name": "CopyData",
            "type": "Copy",
            "inputs": [{"referenceName": "SourceData", "type": "DatasetReference"}],
            "linkedServiceName": {"referenceName": "SqlLs", "type": "LinkedServiceReference"}
          },
          {
            "name": "Loop",
            "type": "ForEach",
            "dependsOn": [{"activity": "CopyData", "dependencyConditions": ["Succeeded"]}],
            "typeProperties": {
              "activities": [
                {"name": "RunChild", "type": "ExecutePipeline", "typeProperties": {"pipeline": {"referenceName": "ChildPipeline"}}},
                {"name": "RunSsis", "type": "ExecuteSSISPackage"}
              ]
            }
          }
        ]
      }
    },
    {
      "name": "[concat(parameters('factoryName'), '/SourceData')]",
      "type": "Microsoft.DataFactory/factories/datasets",
      "properties": {"type": "AzureSqlTable", "linkedServiceName": {"referenceName": "SqlLs"}}
    },
    {
      "name": "[concat(parameters('factoryName'), '/UnusedData')]",
      "type": "Microsoft.DataFactory/factories/datasets",
      "properties": {"type": "DelimitedText"}
    },
    {
      "name": "[concat(parameters('factoryName'), '/SqlLs')]",
      "type": "Microsoft.DataFactory/factories/linkedServices",
      "properties": {
        "type": "AzureSqlDatabase",
        "typeProperties": {"server": "contoso.database.windows.net", "database": "sales"}
      }
    },
    {
      "name": "[concat(parameters('factoryName'), '/Mystery')]",
      "type": "Microsoft.DataFactory/factories/linkedServices",
      "properties": {"type": "SomethingProprietary", "typeProperties": {"url": "https://data.partner.co.uk/api"}}
    },
    {
      "name": "[concat(parameters('factoryName'), '/DailyTrigger')]",
      "type": "Microsoft.DataFactory/factories/triggers",
      "properties": {
        "type": "ScheduleTrigger",
        "runtimeState": "Started",
        "typeProperties": {
          "recurrence": {"frequency": "Day", "interval": 1, "startTime": "2024-01-01T02:00:00Z", "timeZone": "UTC"}
        },
        "pipelines": [
          {"pipelineReference": {"referenceName": "TestPipeline", "type": "PipelineReference"}},
          {"pipelineReference": {"referenceName": "Missing", "type": "PipelineReference"}}
        ]
      }
    },
    {
      "name": "[concat(parameters('factoryName'), '/OnPremIR')]",
      "type": "Microsoft.DataFactory/factories/integrationRuntimes",
      "properties": {"type": "SelfHosted"}
    },
    {
      "name": "Spark1",
      "type": "Microsoft.Synapse/workspaces/sparkJobDefinitions",
      "properties": {}
    },
    {
      "name": "[concat(parameters('workspaceName'), '/Script1')]",
      "type": "Microsoft.Synapse/workspaces/sqlscripts",
      "properties": {}
    },
    {
      "name": "storage",
      "type": "Microsoft.Storage/storageAccounts",
      "properties": {}
    }
  ]
}`

func parseFixture(t *testing.T) (*Parser, []Component) {
	t.Helper()
	p := NewParser()
	components, err := p.Parse([]byte(factoryTemplate))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return p, components
}

func TestParseClassifiesResourcesInOrder(t *testing.T) {
	t.Parallel()

	_, components := parseFixture(t)
	type row struct {
		Name   string
		Type   ComponentType
		Status CompatibilityStatus
	}
	var got []row
	for _, c := range components {
		got = append(got, row{c.Name, c.Type, c.CompatibilityStatus})
	}
	want := []row{
		{"NestedPipeline", TypePipeline, StatusSupported},
		{"TestPipeline", TypePipeline, StatusPartiallySupported},
		{"SourceData", TypeDataset, StatusSupported},
		{"UnusedData", TypeDataset, StatusSupported},
		{"SqlLs", TypeLinkedService, StatusSupported},
		{"Mystery", TypeLinkedService, StatusPartiallySupported},
		{"DailyTrigger", TypeTrigger, StatusSupported},
		{"OnPremIR", TypeIntegrationRuntime, StatusPartiallySupported},
		{"Spark1", TypeSparkJobDefinition, StatusPartiallySupported},
		{"Script1", TypeSQLScript, StatusUnsupported},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Parse() components mismatch (-want +got):\n%s", diff)
	}
}

func TestParseIsIdempotent(t *testing.T) {
	t.Parallel()

	p := NewParser()
	first, err := p.Parse([]byte(factoryTemplate))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	second, err := p.Parse([]byte(factoryTemplate))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second Parse() differs (-first +second):\n%s", diff)
	}
}

func TestParseResolvesConcatName(t *testing.T) {
	t.Parallel()

	p, _ := parseFixture(t)
	c, ok := p.PipelineByName("TestPipeline")
	if !ok {
		t.Fatalf("PipelineByName(TestPipeline) not found")
	}
	if c.Name != "TestPipeline" {
		t.Fatalf("Name = %q, want %q", c.Name, "TestPipeline")
	}
	if c.FabricTarget == nil || c.FabricTarget.ItemType != "dataPipeline" || c.FabricTarget.Name != "TestPipeline" {
		t.Fatalf("FabricTarget = %+v, want dataPipeline/TestPipeline", c.FabricTarget)
	}
	meta, _ := c.Definition[MetadataKey].(map[string]any)
	if meta["armName"] != "[concat(parameters('factoryName'), '/TestPipeline')]" {
		t.Fatalf("resourceMetadata.armName = %v", meta["armName"])
	}
	if _, ok := c.Properties()[MetadataKey]; ok {
		t.Fatalf("Properties() still contains %s", MetadataKey)
	}
}

func TestParseExtractsFolderAndTrigger(t *testing.T) {
	t.Parallel()

	p, _ := parseFixture(t)
	pipe, _ := p.PipelineByName("TestPipeline")
	wantFolder := &FolderInfo{Path: "Sales/Daily/Load", Depth: 3, Segments: []string{"Sales", "Daily", "Load"}}
	if diff := cmp.Diff(wantFolder, pipe.Folder); diff != "" {
		t.Fatalf("Folder mismatch (-want +got):\n%s", diff)
	}

	triggers := p.ComponentsByType(TypeTrigger)
	if len(triggers) != 1 {
		t.Fatalf("ComponentsByType(Trigger) len = %d, want 1", len(triggers))
	}
	want := &TriggerMetadata{
		TriggerType:  "ScheduleTrigger",
		RuntimeState: "Started",
		Recurrence:   &Recurrence{Frequency: "Day", Interval: 1, StartTime: "2024-01-01T02:00:00Z", TimeZone: "UTC"},
		Pipelines:    []string{"TestPipeline", "Missing"},
	}
	if diff := cmp.Diff(want, triggers[0].TriggerMetadata); diff != "" {
		t.Fatalf("TriggerMetadata mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTagsSynapseResources(t *testing.T) {
	t.Parallel()

	_, components := parseFixture(t)
	for _, c := range components {
		wantSynapse := c.Name == "Spark1" || c.Name == "Script1"
		if got := c.IsSynapse(); got != wantSynapse {
			t.Fatalf("%s IsSynapse() = %v, want %v", c.Name, got, wantSynapse)
		}
	}
}

func TestParseDoesNotMutateTemplate(t *testing.T) {
	t.Parallel()

	tpl, err := DecodeTemplate([]byte(factoryTemplate))
	if err != nil {
		t.Fatalf("DecodeTemplate() error = %v", err)
	}
	before, _ := DecodeTemplate([]byte(factoryTemplate))
	if _, err := NewParser().ParseTemplate(tpl); err != nil {
		t.Fatalf("ParseTemplate() error = %v", err)
	}
	if diff := cmp.Diff(before, tpl); diff != "" {
		t.Fatalf("ParseTemplate() mutated its input (-before +after):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		doc       string
		format    bool
		structure bool
	}{
		{name: "invalid json", doc: `{"resources": [}`, format: true},
		{name: "empty", doc: ``, format: true},
		{name: "trailing data", doc: `{"resources": []} {}`, format: true},
		{name: "no resources", doc: `{"parameters": {}}`, structure: true},
		{name: "resources not array", doc: `{"resources": {}}`, structure: true},
		{name: "not an object", doc: `[1, 2]`, structure: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewParser().Parse([]byte(tc.doc))
			if err == nil {
				t.Fatalf("Parse() error = nil, want error")
			}
			var fe *FormatError
			var se *StructureError
			if got := errors.As(err, &fe); got != tc.format {
				t.Fatalf("errors.As(FormatError) = %v, want %v (err=%v)", got, tc.format, err)
			}
			if got := errors.As(err, &se); got != tc.structure {
				t.Fatalf("errors.As(StructureError) = %v, want %v (err=%v)", got, tc.structure, err)
			}
			if !IsTemplateError(err) {
				t.Fatalf("IsTemplateError(%v) = false, want true", err)
			}
		})
	}

	_, err := NewParser().Parse([]byte(`{}`))
	if !errors.Is(err, ErrMissingResources) {
		t.Fatalf("Parse({}) error = %v, want ErrMissingResources", err)
	}
}

func TestLookupsReturnFalseWhenAbsent(t *testing.T) {
	t.Parallel()

	p, _ := parseFixture(t)
	if _, ok := p.DatasetByName("SourceData"); !ok {
		t.Fatalf("DatasetByName(SourceData) ok = false, want true")
	}
	if _, ok := p.LinkedServiceByName("SqlLs"); !ok {
		t.Fatalf("LinkedServiceByName(SqlLs) ok = false, want true")
	}
	if _, ok := p.DatasetByName("SqlLs"); ok {
		t.Fatalf("DatasetByName(SqlLs) ok = true, want false")
	}
	if got := p.ComponentsByType(TypeNotebook); got == nil || len(got) != 0 {
		t.Fatalf("ComponentsByType(Notebook) = %#v, want empty slice", got)
	}

	fresh := NewParser()
	if _, ok := fresh.LinkedServiceByName("SqlLs"); ok {
		t.Fatalf("unparsed LinkedServiceByName() ok = true, want false")
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	_, components := parseFixture(t)
	want := Summary{
		Total:              10,
		Supported:          5,
		PartiallySupported: 4,
		Unsupported:        1,
		ByType: map[string]int{
			"Pipeline":           2,
			"Dataset":            2,
			"LinkedService":      2,
			"Trigger":            1,
			"IntegrationRuntime": 1,
			"SparkJobDefinition": 1,
			"SqlScript":          1,
		},
	}
	if diff := cmp.Diff(want, Summarize(components)); diff != "" {
		t.Fatalf("Summarize() mismatch (-want +got):\n%s", diff)
	}
	if got := Summarize(nil); got.Total != 0 || got.ByType == nil {
		t.Fatalf("Summarize(nil) = %+v, want zero counts with non-nil ByType", got)
	}
}

func TestSelectionFollowsStatus(t *testing.T) {
	t.Parallel()

	_, components := parseFixture(t)
	for _, c := range components {
		if want := c.CompatibilityStatus != StatusUnsupported; c.IsSelected != want {
			t.Fatalf("%s IsSelected = %v, want %v", c.Name, c.IsSelected, want)
		}
	}
}

func TestGenerateProfile(t *testing.T) {
	t.Parallel()

	p, components := parseFixture(t)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.Now = func() time.Time { return fixed }

	profile := p.GenerateProfile(components, "arm_template.json", int64(len(factoryTemplate)))
	if !profile.ParsedAt.Equal(fixed) {
		t.Fatalf("ParsedAt = %v, want %v", profile.ParsedAt, fixed)
	}

	wantMetrics := ProfileMetrics{
		TotalPipelines:           2,
		TotalActivities:          4,
		AvgActivitiesPerPipeline: 2,
		MaxPipelineDepth:         3,
		TotalDatasets:            2,
		TotalLinkedServices:      2,
		TotalTriggers:            1,
		TotalGlobalParameters:    2,
		TotalIntegrationRuntimes: 1,
		ActivityTypes: map[string]int{
			"Copy":               1,
			"ForEach":            1,
			"ExecutePipeline":    1,
			"ExecuteSSISPackage": 1,
		},
		ExternalDomains: []string{"partner.co.uk", "windows.net"},
	}
	if diff := cmp.Diff(wantMetrics, profile.Metrics); diff != "" {
		t.Fatalf("Metrics mismatch (-want +got):\n%s", diff)
	}

	titles := map[string]Severity{}
	for _, in := range profile.Insights {
		titles[in.Title] = in.Severity
	}
	for title, sev := range map[string]Severity{
		"Empty pipelines":                        SeverityInfo,
		"Orphan datasets":                        SeverityInfo,
		"Triggers referencing unknown pipelines": SeverityWarning,
		"Global parameters":                      SeverityInfo,
		"Self-hosted integration runtimes":       SeverityWarning,
		"Unsupported components":                 SeverityCritical,
		"Activities needing manual work":         SeverityWarning,
	} {
		got, ok := titles[title]
		if !ok {
			t.Fatalf("insight %q missing; got %v", title, titles)
		}
		if got != sev {
			t.Fatalf("insight %q severity = %q, want %q", title, got, sev)
		}
	}
	if _, ok := titles["Pipelines over the activity limit"]; ok {
		t.Fatalf("unexpected activity-limit insight")
	}
	if profile.ComponentSummary.Total != len(components) {
		t.Fatalf("ComponentSummary.Total = %d, want %d", profile.ComponentSummary.Total, len(components))
	}
}

func TestGenerateProfileEmpty(t *testing.T) {
	t.Parallel()

	p := NewParser()
	components, err := p.Parse([]byte(`{"resources": []}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	profile := p.GenerateProfile(components, "empty.json", 17)
	if profile.Metrics.AvgActivitiesPerPipeline != 0 {
		t.Fatalf("AvgActivitiesPerPipeline = %v, want 0", profile.Metrics.AvgActivitiesPerPipeline)
	}
	if profile.Insights == nil || len(profile.Insights) != 0 {
		t.Fatalf("Insights = %#v, want empty slice", profile.Insights)
	}
}
