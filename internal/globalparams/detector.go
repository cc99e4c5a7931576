// Package globalparams finds Data Factory global parameters, either declared
// on the factory resource of an ARM template or referenced from pipeline
// expressions, and maps them to Fabric variable library types.
package globalparams

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/fabric-tools/adf2fabric/internal/arm"
	"github.com/fabric-tools/adf2fabric/internal/expr"
	"github.com/fabric-tools/adf2fabric/internal/jsontree"
	"github.com/fabric-tools/adf2fabric/internal/normalize"
)

const (
	// DefaultFactoryName is used when the factory name cannot be resolved.
	DefaultFactoryName = "DataFactory"
	// DefaultLibrarySuffix is appended to the factory name to name the
	// variable library.
	DefaultLibrarySuffix = "GlobalParameters"

	NoteFromExpressions = "Detected from pipeline expressions"
	NoteFromTemplate    = "Declared on the factory resource"
)

// Reference is one global parameter.
type Reference struct {
	Name                  string   `json:"name"`
	ADFDataType           string   `json:"adf_data_type,omitempty"`
	FabricDataType        string   `json:"fabric_data_type"`
	DefaultValue          any      `json:"default_value"`
	ReferencedByPipelines []string `json:"referenced_by_pipelines"`
	IsSecure              bool     `json:"is_secure"`
	Note                  string   `json:"note,omitempty"`
}

// typeTable maps lowercased ADF global parameter types to Fabric variable
// types. Both detection paths go through MapADFTypeToFabric.
var typeTable = map[string]string{
	"string":       "String",
	"int":          "Integer",
	"float":        "Number",
	"bool":         "Boolean",
	"array":        "String",
	"object":       "String",
	"securestring": "String",
}

// MapADFTypeToFabric returns the Fabric variable type for an ADF global
// parameter type. Unknown types map to String.
func MapADFTypeToFabric(adfType string) string {
	if t, ok := typeTable[normalize.Lower(adfType)]; ok {
		return t
	}
	return "String"
}

// DetectGlobalParameters scans the pipeline components for global parameter
// references. Results are ordered by first detection; each reference lists
// the pipelines it appears in.
func DetectGlobalParameters(components []arm.Component) []Reference {
	out := []Reference{}
	index := map[string]int{}
	for _, c := range components {
		if c.Type != arm.TypePipeline {
			continue
		}
		jsontree.WalkStrings(c.Properties(), func(s string) {
			for _, name := range expr.Names(s) {
				i, ok := index[name]
				if !ok {
					i = len(out)
					index[name] = i
					out = append(out, newReferenceStub(name))
				}
				out[i].ReferencedByPipelines = appendUnique(out[i].ReferencedByPipelines, c.Name)
			}
		})
	}
	return out
}

// DetectFromARMTemplate reads the globalParameters declared on the factory
// resource of tpl, sorted by name. It returns an empty slice when the template
// has no factory or no declarations.
func DetectFromARMTemplate(tpl map[string]any) []Reference {
	factory := findFactory(tpl)
	declared := jsontree.Child(jsontree.Child(factory, "properties"), "globalParameters")
	out := make([]Reference, 0, len(declared))
	for _, name := range jsontree.SortedKeys(declared) {
		decl, _ := declared[name].(map[string]any)
		adfType := jsontree.String(decl, "type")
		out = append(out, Reference{
			Name:                  name,
			ADFDataType:           adfType,
			FabricDataType:        MapADFTypeToFabric(adfType),
			DefaultValue:          declaredValue(adfType, decl["value"]),
			ReferencedByPipelines: []string{},
			IsSecure:              strings.EqualFold(adfType, "SecureString"),
			Note:                  NoteFromTemplate,
		})
	}
	return out
}

// DetectWithFallback merges template declarations with expression usage.
//
// A template record is authoritative for type, default value and secure flag;
// nothing is taken field by field from the expression scan except the
// pipelines that reference it. Template records come first in name order,
// followed by expression-only stubs in detection order.
func DetectWithFallback(components []arm.Component, tpl map[string]any) []Reference {
	scanned := DetectGlobalParameters(components)
	declared := DetectFromARMTemplate(tpl)

	out := make([]Reference, 0, len(declared)+len(scanned))
	index := make(map[string]int, len(declared))
	for _, ref := range declared {
		index[ref.Name] = len(out)
		out = append(out, ref)
	}
	for _, ref := range scanned {
		if i, ok := index[ref.Name]; ok {
			for _, p := range ref.ReferencedByPipelines {
				out[i].ReferencedByPipelines = appendUnique(out[i].ReferencedByPipelines, p)
			}
			continue
		}
		index[ref.Name] = len(out)
		out = append(out, ref)
	}
	return out
}

func newReferenceStub(name string) Reference {
	return Reference{
		Name:                  name,
		ADFDataType:           "String",
		FabricDataType:        "String",
		DefaultValue:          "",
		ReferencedByPipelines: []string{},
		IsSecure:              false,
		Note:                  NoteFromExpressions,
	}
}

var parameterRef = regexp.MustCompile(`^\[\s*parameters\(\s*'([^']+)'\s*\)\s*\]$`)

// ExtractFactoryName returns the factory resource's name. A literal name is
// used as-is; [parameters('x')] is resolved against the template's parameter
// defaultValue. Anything else yields DefaultFactoryName.
func ExtractFactoryName(tpl map[string]any) string {
	factory := findFactory(tpl)
	raw := strings.TrimSpace(jsontree.String(factory, "name"))
	if raw == "" {
		return DefaultFactoryName
	}
	if m := parameterRef.FindStringSubmatch(raw); m != nil {
		param := jsontree.Child(jsontree.Child(tpl, "parameters"), m[1])
		if v, ok := param["defaultValue"].(string); ok && strings.TrimSpace(v) != "" && !normalize.IsExpression(v) {
			return strings.TrimSpace(v)
		}
		return DefaultFactoryName
	}
	if normalize.IsExpression(raw) {
		return DefaultFactoryName
	}
	return raw
}

// VariableLibraryName is "<factory>_<suffix>". An empty suffix means
// DefaultLibrarySuffix.
func VariableLibraryName(tpl map[string]any, suffix string) string {
	if strings.TrimSpace(suffix) == "" {
		suffix = DefaultLibrarySuffix
	}
	return ExtractFactoryName(tpl) + "_" + suffix
}

// PipelinesUsing returns the sorted set of pipelines referencing any of refs.
func PipelinesUsing(refs []Reference) []string {
	set := map[string]struct{}{}
	for _, r := range refs {
		for _, p := range r.ReferencedByPipelines {
			set[p] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func findFactory(tpl map[string]any) map[string]any {
	resources, _ := tpl["resources"].([]any)
	for _, item := range resources {
		res, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if normalize.EqualFoldTrimmed(jsontree.String(res, "type"), "Microsoft.DataFactory/factories") {
			return res
		}
	}
	return nil
}

// declaredValue keeps the declared JSON value, turning integral floats of an
// Int parameter into int64.
func declaredValue(adfType string, v any) any {
	if f, ok := v.(float64); ok && strings.EqualFold(adfType, "Int") && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f)
	}
	return jsontree.DeepCopy(v)
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}
