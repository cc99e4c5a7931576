// Package transform rewrites Data Factory pipeline definitions into Fabric
// Data Pipeline definitions.
package transform

import (
	"fmt"
	"maps"
	"sort"

	"github.com/fabric-tools/adf2fabric/internal/arm"
	"github.com/fabric-tools/adf2fabric/internal/jsontree"
)

const (
	OriginalTargetKey       = "_originalTargetPipeline"
	OriginalNotebookPathKey = "_originalNotebookPath"
	InvokeFabricPipeline    = "InvokeFabricPipeline"
)

// Transformer rewrites pipeline definitions. Options set on it apply to every
// later call. A Transformer collects warnings and is not safe for concurrent
// use; use one per goroutine.
type Transformer struct {
	databricksToTrident bool
	connections         map[string]string
	warnings            []string
}

func New() *Transformer {
	return &Transformer{}
}

// SetDatabricksToTrident enables rewriting DatabricksNotebook activities into
// Fabric TridentNotebook activities.
func (t *Transformer) SetDatabricksToTrident(enabled bool) {
	t.databricksToTrident = enabled
}

// SetConnectionMappings sets the linked-service (or pipeline) name to Fabric
// id map consulted while rewriting activities. The map is copied.
func (t *Transformer) SetConnectionMappings(m map[string]string) {
	if len(m) == 0 {
		t.connections = nil
		return
	}
	t.connections = maps.Clone(m)
}

// Warnings returns the warnings recorded since the Transformer was created.
func (t *Transformer) Warnings() []string {
	return append([]string(nil), t.warnings...)
}

// TransformPipelineDefinition returns a rewritten copy of def, a resource
// shaped {"name", "properties": {...}} definition. def is not modified. An
// empty definition yields {"properties": {}}.
func (t *Transformer) TransformPipelineDefinition(def map[string]any, pipelineName string) (map[string]any, error) {
	out := jsontree.CopyObject(def)
	if pipelineName == "" {
		pipelineName = jsontree.String(out, "name")
	}

	props, err := ensureProperties(out)
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", pipelineName, err)
	}
	raw, ok := props["activities"]
	if !ok {
		return out, nil
	}
	if err := t.rewriteActivities(raw, "/properties/activities", pipelineName); err != nil {
		return nil, err
	}
	return out, nil
}

func ensureProperties(def map[string]any) (map[string]any, error) {
	raw, ok := def["properties"]
	if !ok || raw == nil {
		props := map[string]any{}
		def["properties"] = props
		return props, nil
	}
	props, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrMalformedProperties
	}
	return props, nil
}

func (t *Transformer) rewriteActivities(raw any, path, pipeline string) error {
	items, ok := raw.([]any)
	if !ok {
		return &MalformedActivitiesError{Pipeline: pipeline, Path: path, Got: jsonKind(raw)}
	}
	for i, item := range items {
		act, ok := item.(map[string]any)
		if !ok {
			continue
		}
		actPath := fmt.Sprintf("%s/%d", path, i)
		t.rewriteActivity(act, pipeline)
		for _, slot := range arm.ChildActivitySlots(act, actPath) {
			if err := t.rewriteActivities(slot.Value(), slot.Path, pipeline); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Transformer) rewriteActivity(act map[string]any, pipeline string) {
	name := jsontree.String(act, "name")

	switch jsontree.String(act, "type") {
	case "ExecutePipeline":
		t.rewriteExecutePipeline(act, pipeline, name)
	case "DatabricksNotebook":
		if t.databricksToTrident {
			rewriteDatabricksNotebook(act)
		}
	}

	if ls, ok := act["linkedServiceName"]; ok {
		ref := jsontree.GetString(ls, "/referenceName")
		delete(act, "linkedServiceName")
		t.attachConnection(act, ref, pipeline, name)
	}
	if _, ok := act["connectVia"]; ok {
		act["connectVia"] = map[string]any{}
	}
}

func (t *Transformer) rewriteExecutePipeline(act map[string]any, pipeline, name string) {
	act["type"] = "InvokePipeline"
	tp, _ := act["typeProperties"].(map[string]any)
	if tp == nil {
		tp = map[string]any{}
		act["typeProperties"] = tp
	}
	target := jsontree.GetString(tp, "/pipeline/referenceName")
	delete(tp, "pipeline")
	tp["operationType"] = InvokeFabricPipeline
	if target == "" {
		t.warnf("pipeline %q activity %q: ExecutePipeline has no target pipeline", pipeline, name)
		return
	}
	act[OriginalTargetKey] = target
	if id, ok := t.connections[target]; ok {
		tp["pipelineId"] = id
	}
}

func rewriteDatabricksNotebook(act map[string]any) {
	act["type"] = "TridentNotebook"
	tp, _ := act["typeProperties"].(map[string]any)
	if tp == nil {
		return
	}
	if path, ok := tp["notebookPath"]; ok {
		act[OriginalNotebookPathKey] = path
		delete(tp, "notebookPath")
	}
	base, ok := tp["baseParameters"].(map[string]any)
	if !ok {
		return
	}
	params := map[string]any{}
	for _, k := range jsontree.SortedKeys(base) {
		params[k] = map[string]any{"value": base[k], "type": "string"}
	}
	tp["parameters"] = params
	delete(tp, "baseParameters")
}

func (t *Transformer) attachConnection(act map[string]any, ref, pipeline, name string) {
	if ref == "" || t.connections == nil {
		return
	}
	id, ok := t.connections[ref]
	if !ok {
		t.warnf("pipeline %q activity %q: no Fabric connection mapped for linked service %q", pipeline, name, ref)
		return
	}
	ext, _ := act["externalReferences"].(map[string]any)
	if ext == nil {
		ext = map[string]any{}
		act["externalReferences"] = ext
	}
	ext["connection"] = id
}

func (t *Transformer) warnf(format string, args ...any) {
	t.warnings = append(t.warnings, fmt.Sprintf(format, args...))
}

// ConnectionNames returns the sorted linked-service names referenced by the
// activities of a pipeline definition (resource shaped or a bare properties
// block).
func ConnectionNames(def map[string]any) []string {
	props := jsontree.Child(def, "properties")
	if props == nil {
		props = def
	}
	set := map[string]struct{}{}
	for _, act := range arm.Activities(props) {
		if ref := jsontree.GetString(act, "/linkedServiceName/referenceName"); ref != "" {
			set[ref] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
