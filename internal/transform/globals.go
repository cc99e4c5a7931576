package transform

import (
	"encoding/base64"
	"fmt"

	"github.com/fabric-tools/adf2fabric/internal/arm"
	"github.com/fabric-tools/adf2fabric/internal/expr"
	"github.com/fabric-tools/adf2fabric/internal/globalparams"
	"github.com/fabric-tools/adf2fabric/internal/jsontree"
)

// LibraryVariable is a variable declared on a pipeline's libraryVariables
// block.
type LibraryVariable struct {
	Name string
	Type string
}

// InjectLibraryVariables returns a copy of def whose properties.libraryVariables
// gains one "<library>_VariableLibrary_<name>" entry per variable. Existing
// entries are kept; entries with the same key are replaced.
func InjectLibraryVariables(def map[string]any, library string, vars []LibraryVariable) (map[string]any, error) {
	out := jsontree.CopyObject(def)
	props, err := ensureProperties(out)
	if err != nil {
		return nil, err
	}
	if len(vars) == 0 {
		return out, nil
	}
	lv, _ := props["libraryVariables"].(map[string]any)
	if lv == nil {
		lv = map[string]any{}
		props["libraryVariables"] = lv
	}
	for _, v := range vars {
		typ := v.Type
		if typ == "" {
			typ = "String"
		}
		lv[expr.LibraryVariableName(library, v.Name)] = map[string]any{"type": typ}
	}
	return out, nil
}

// TransformGlobalParameterExpressions returns a copy of def where every
// reference to one of names, bare or wrapped, points at the matching library
// variable instead. It fails with a PostconditionError if any reference to
// those names is left.
func TransformGlobalParameterExpressions(def map[string]any, names []string, library string) (map[string]any, error) {
	out := jsontree.CopyObject(def)
	if len(names) == 0 {
		return out, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	jsontree.MapStrings(out, func(s string) string {
		return expr.Rewrite(s, func(m expr.Match) (string, bool) {
			if !wanted[m.Name] {
				return "", false
			}
			return expr.LibraryVariableRef(library, m.Name), true
		})
	})

	left := map[string]bool{}
	var leftNames []string
	jsontree.WalkStrings(out, func(s string) {
		for _, n := range expr.Names(s) {
			if wanted[n] && !left[n] {
				left[n] = true
				leftNames = append(leftNames, n)
			}
		}
	})
	if len(leftNames) > 0 {
		return nil, &PostconditionError{Names: leftNames}
	}
	return out, nil
}

// TransformPipelineWithGlobalParameters declares a library variable for every
// parameter and rewrites every expression reference to it.
func TransformPipelineWithGlobalParameters(def map[string]any, params []globalparams.Reference, library string) (map[string]any, error) {
	vars := make([]LibraryVariable, 0, len(params))
	names := make([]string, 0, len(params))
	for _, p := range params {
		vars = append(vars, LibraryVariable{Name: p.Name, Type: p.FabricDataType})
		names = append(names, p.Name)
	}
	out, err := InjectLibraryVariables(def, library, vars)
	if err != nil {
		return nil, err
	}
	return TransformGlobalParameterExpressions(out, names, library)
}

// GenerateFabricPipelinePayload serializes def without its top-level
// resourceMetadata and dependsOn keys and base64-encodes the result.
func GenerateFabricPipelinePayload(def map[string]any) (string, error) {
	content := make(map[string]any, len(def))
	for k, v := range def {
		if k == arm.MetadataKey || k == "dependsOn" {
			continue
		}
		content[k] = v
	}
	b, err := jsontree.MarshalCompact(content)
	if err != nil {
		return "", fmt.Errorf("encode pipeline payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
