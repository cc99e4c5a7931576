// Package arm parses Azure Data Factory and Synapse ARM templates into
// normalized migration components.
package arm

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/fabric-tools/adf2fabric/internal/jsontree"
)

type indexKey struct {
	typ  ComponentType
	name string
}

// Parser turns ARM templates into components. It keeps an index of the last
// parsed template for the lookup methods, so one Parser must not be shared by
// concurrent Parse calls.
type Parser struct {
	Now func() time.Time

	components        []Component
	index             map[indexKey]int
	globalParamsCount int
}

// NewParser returns a Parser with an empty index.
func NewParser() *Parser {
	return &Parser{}
}

// DecodeTemplate parses doc as JSON and checks it has a top-level
// "resources" array.
func DecodeTemplate(doc []byte) (map[string]any, error) {
	v, err := jsontree.Decode(doc)
	if err != nil {
		fe := &FormatError{Err: err}
		var se *json.SyntaxError
		if errors.As(err, &se) {
			fe.Offset = se.Offset
		}
		if errors.Is(err, io.EOF) {
			fe.Err = errors.New("document is empty")
		}
		return nil, fe
	}

	tpl, ok := v.(map[string]any)
	if !ok {
		return nil, &StructureError{Reason: "top-level value must be an object"}
	}
	raw, ok := tpl["resources"]
	if !ok {
		return nil, &StructureError{Err: ErrMissingResources}
	}
	if _, ok := raw.([]any); !ok {
		return nil, &StructureError{Reason: `top-level "resources" must be an array`, Err: ErrMissingResources}
	}
	return tpl, nil
}

// Parse decodes doc and returns its components in document order.
func (p *Parser) Parse(doc []byte) ([]Component, error) {
	tpl, err := DecodeTemplate(doc)
	if err != nil {
		p.reset()
		return nil, err
	}
	return p.ParseTemplate(tpl)
}

// ParseTemplate extracts components from an already decoded template. The
// template is not modified.
func (p *Parser) ParseTemplate(tpl map[string]any) ([]Component, error) {
	p.reset()
	resources, ok := tpl["resources"].([]any)
	if !ok {
		return nil, &StructureError{Err: ErrMissingResources}
	}

	var out []Component
	var walk func(items []any, nested, synapse bool)
	walk = func(items []any, nested, synapse bool) {
		for _, item := range items {
			res, ok := item.(map[string]any)
			if !ok {
				continue
			}
			armType, _ := res["type"].(string)
			class := classifyType(armType, nested)
			isSynapse := class.synapse || (nested && synapse)

			if class.container {
				if p.globalParamsCount == 0 {
					p.globalParamsCount = len(jsontree.Child(jsontree.Child(res, "properties"), "globalParameters"))
				}
			}
			if class.kind != nil {
				out = append(out, buildComponent(res, armType, class.kind.typ, isSynapse))
			}
			if children, ok := res["resources"].([]any); ok {
				walk(children, true, isSynapse)
			}
		}
	}
	walk(resources, false, false)

	p.components = out
	for i, c := range out {
		key := indexKey{typ: c.Type, name: c.Name}
		if _, exists := p.index[key]; !exists {
			p.index[key] = i
		}
	}
	return out, nil
}

func (p *Parser) reset() {
	p.components = nil
	p.index = make(map[indexKey]int)
	p.globalParamsCount = 0
}

func buildComponent(res map[string]any, armType string, t ComponentType, synapse bool) Component {
	rawName, _ := res["name"].(string)
	name := ResolveName(rawName)

	props := jsontree.CopyObject(jsontree.Child(res, "properties"))
	meta := map[string]any{
		"armType": armType,
		"armName": rawName,
	}
	if synapse {
		meta["synapseWorkspace"] = true
	}
	if deps, ok := res["dependsOn"].([]any); ok {
		meta["dependsOn"] = jsontree.DeepCopy(deps)
	}

	var trigger *TriggerMetadata
	if t == TypeTrigger {
		trigger = extractTrigger(props)
	}
	folder := extractFolder(props)

	compat := validate(t, props, trigger)
	if name == "" {
		compat.degrade(StatusUnsupported)
		compat.warnings = append(compat.warnings, "resource name could not be resolved")
	}

	props[MetadataKey] = meta
	return Component{
		Name:                name,
		Type:                t,
		Definition:          props,
		Folder:              folder,
		TriggerMetadata:     trigger,
		FabricTarget:        fabricTargetFor(t, name),
		CompatibilityStatus: compat.status,
		IsSelected:          compat.status != StatusUnsupported,
		Warnings:            nonNil(compat.warnings),
		Suggestions:         nonNil(compat.suggestions),
	}
}

func extractFolder(props map[string]any) *FolderInfo {
	path := strings.TrimSpace(jsontree.GetString(props, "/folder/name"))
	if path == "" {
		return nil
	}
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return nil
	}
	return &FolderInfo{
		Path:     strings.Join(segments, "/"),
		Depth:    len(segments),
		Segments: segments,
	}
}

func extractTrigger(props map[string]any) *TriggerMetadata {
	tt, _ := props["type"].(string)
	if tt == "" {
		return nil
	}
	meta := &TriggerMetadata{
		TriggerType:  tt,
		RuntimeState: jsontree.String(props, "runtimeState"),
		Pipelines:    []string{},
	}

	if rec := jsontree.Child(jsontree.Child(props, "typeProperties"), "recurrence"); rec != nil {
		meta.Recurrence = &Recurrence{
			Frequency: jsontree.String(rec, "frequency"),
			Interval:  intValue(rec["interval"]),
			StartTime: jsontree.String(rec, "startTime"),
			TimeZone:  jsontree.String(rec, "timeZone"),
		}
	} else if tt == "TumblingWindowTrigger" {
		tp := jsontree.Child(props, "typeProperties")
		if tp != nil {
			meta.Recurrence = &Recurrence{
				Frequency: jsontree.String(tp, "frequency"),
				Interval:  intValue(tp["interval"]),
				StartTime: jsontree.String(tp, "startTime"),
			}
		}
	}

	if list, ok := props["pipelines"].([]any); ok {
		for _, item := range list {
			if name := jsontree.GetString(item, "/pipelineReference/referenceName"); name != "" {
				meta.Pipelines = append(meta.Pipelines, name)
			}
		}
	}
	if name := jsontree.GetString(props, "/pipeline/pipelineReference/referenceName"); name != "" {
		meta.Pipelines = append(meta.Pipelines, name)
	}
	return meta
}

func intValue(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Components returns the components of the last parse.
func (p *Parser) Components() []Component {
	return p.components
}

// DatasetByName returns the dataset with the given name from the last parse.
func (p *Parser) DatasetByName(name string) (Component, bool) {
	return p.lookup(TypeDataset, name)
}

// LinkedServiceByName returns the linked service with the given name from
// the last parse.
func (p *Parser) LinkedServiceByName(name string) (Component, bool) {
	return p.lookup(TypeLinkedService, name)
}

// PipelineByName returns the pipeline with the given name from the last parse.
func (p *Parser) PipelineByName(name string) (Component, bool) {
	return p.lookup(TypePipeline, name)
}

// ComponentsByType returns the components of type t from the last parse, in
// document order. The result is empty, never nil.
func (p *Parser) ComponentsByType(t ComponentType) []Component {
	return FilterByType(p.components, t)
}

func (p *Parser) lookup(t ComponentType, name string) (Component, bool) {
	i, ok := p.index[indexKey{typ: t, name: name}]
	if !ok {
		return Component{}, false
	}
	return p.components[i], true
}

// FilterByType returns the components of type t in order.
func FilterByType(components []Component, t ComponentType) []Component {
	out := []Component{}
	for _, c := range components {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}
