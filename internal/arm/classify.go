package arm

import "strings"

type componentKind struct {
	suffix     string
	typ        ComponentType
	fabricItem string
}

// componentKinds is the single table used both to classify a resource type
// suffix and to derive the Fabric target of a component. An empty fabricItem
// means the component has no Fabric item of its own.
var componentKinds = []componentKind{
	{suffix: "pipelines", typ: TypePipeline, fabricItem: "dataPipeline"},
	{suffix: "datasets", typ: TypeDataset},
	{suffix: "linkedservices", typ: TypeLinkedService, fabricItem: "connection"},
	{suffix: "triggers", typ: TypeTrigger, fabricItem: "schedule"},
	{suffix: "sparkjobdefinitions", typ: TypeSparkJobDefinition, fabricItem: "sparkJobDefinition"},
	{suffix: "notebooks", typ: TypeNotebook, fabricItem: "notebook"},
	{suffix: "dataflows", typ: TypeDataflow, fabricItem: "dataflow"},
	{suffix: "sqlscripts", typ: TypeSQLScript},
	{suffix: "integrationruntimes", typ: TypeIntegrationRuntime, fabricItem: "gateway"},
	{suffix: "managedprivateendpoints", typ: TypeManagedPrivateEndpoint, fabricItem: "managedPrivateEndpoint"},
	{suffix: "libraries", typ: TypeLibrary, fabricItem: "environment"},
}

const (
	factoryProvider   = "microsoft.datafactory/factories"
	workspaceProvider = "microsoft.synapse/workspaces"
)

// resourceClass is the outcome of inspecting an ARM resource type string.
type resourceClass struct {
	kind      *componentKind
	container bool // factory or workspace resource whose children are scanned
	synapse   bool
}

// classifyType inspects an ARM type string. nested is true for resources
// declared inside a factory/workspace "resources" array, where relative
// types such as "pipelines" are allowed.
func classifyType(armType string, nested bool) resourceClass {
	t := strings.ToLower(strings.TrimSpace(armType))
	if t == "" {
		return resourceClass{}
	}

	switch t {
	case factoryProvider:
		return resourceClass{container: true}
	case workspaceProvider:
		return resourceClass{container: true, synapse: true}
	}

	var out resourceClass
	switch {
	case strings.HasPrefix(t, factoryProvider+"/"):
	case strings.HasPrefix(t, workspaceProvider+"/"):
		out.synapse = true
	case nested && !strings.Contains(t, "/"):
	default:
		return resourceClass{}
	}

	suffix := t
	if i := strings.LastIndex(t, "/"); i >= 0 {
		suffix = t[i+1:]
	}
	out.kind = kindForSuffix(suffix)
	return out
}

func kindForSuffix(suffix string) *componentKind {
	for i := range componentKinds {
		if componentKinds[i].suffix == suffix {
			return &componentKinds[i]
		}
	}
	return nil
}

func kindForType(t ComponentType) *componentKind {
	for i := range componentKinds {
		if componentKinds[i].typ == t {
			return &componentKinds[i]
		}
	}
	return nil
}

// FabricItemType returns the Fabric item type a component type becomes, or ""
// when it has none.
func FabricItemType(t ComponentType) string {
	if k := kindForType(t); k != nil {
		return k.fabricItem
	}
	return ""
}

func fabricTargetFor(t ComponentType, name string) *FabricTarget {
	item := FabricItemType(t)
	if item == "" {
		return nil
	}
	return &FabricTarget{ItemType: item, Name: name}
}
