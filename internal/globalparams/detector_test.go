package globalparams

import (
	"testing"

	"github.com/fabric-tools/adf2fabric/internal/arm"
	"github.com/google/go-cmp/cmp"
)

func pipeline(name string, activities ...any) arm.Component {
	return arm.Component{
		Name: name,
		Type: arm.TypePipeline,
		Definition: map[string]any{
			"activities": activities,
			arm.MetadataKey: map[string]any{
				"armName": "pipeline().globalParameters.notAReference",
			},
		},
	}
}

func webActivity(url string) map[string]any {
	return map[string]any{
		"name": "Call",
		"type": "WebActivity",
		"typeProperties": map[string]any{
			"url": map[string]any{"value": url, "type": "Expression"},
		},
	}
}

func TestDetectGlobalParametersForms(t *testing.T) {
	t.Parallel()

	for _, input := range []string{
		"@pipeline().globalParameters.apiUrl",
		"@{pipeline().globalParameters.apiUrl}",
		"@concat('x', pipeline().globalParameters.apiUrl)",
	} {
		input := input
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			refs := DetectGlobalParameters([]arm.Component{pipeline("P1", webActivity(input))})
			if len(refs) != 1 {
				t.Fatalf("DetectGlobalParameters() len = %d, want 1 (%+v)", len(refs), refs)
			}
			if refs[0].Name != "apiUrl" {
				t.Fatalf("Name = %q, want %q", refs[0].Name, "apiUrl")
			}
		})
	}
}

func TestDetectGlobalParametersTracksPipelines(t *testing.T) {
	t.Parallel()

	components := []arm.Component{
		pipeline("P1",
			webActivity("@pipeline().globalParameters.apiUrl"),
			webActivity("@{pipeline().globalParameters.apiUrl}/@{pipeline().globalParameters.env}"),
		),
		{Name: "DS", Type: arm.TypeDataset, Definition: map[string]any{"x": "@pipeline().globalParameters.ignored"}},
		pipeline("P2", webActivity("@concat(pipeline().globalParameters.env, '-', pipeline().globalParameters.apiUrl)")),
	}
	got := DetectGlobalParameters(components)
	want := []Reference{
		{Name: "apiUrl", ADFDataType: "String", FabricDataType: "String", DefaultValue: "", ReferencedByPipelines: []string{"P1", "P2"}, Note: NoteFromExpressions},
		{Name: "env", ADFDataType: "String", FabricDataType: "String", DefaultValue: "", ReferencedByPipelines: []string{"P1", "P2"}, Note: NoteFromExpressions},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("DetectGlobalParameters() mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectFromARMTemplate(t *testing.T) {
	t.Parallel()

	tpl := map[string]any{
		"resources": []any{
			map[string]any{
				"name": "[parameters('factoryName')]",
				"type": "Microsoft.DataFactory/factories",
				"properties": map[string]any{
					"globalParameters": map[string]any{
						"retries": map[string]any{"type": "Int", "value": float64(3)},
						"apiUrl":  map[string]any{"type": "String", "value": "https://api.example.com"},
						"secret":  map[string]any{"type": "SecureString", "value": "s3cr3t"},
						"flags":   map[string]any{"type": "Array", "value": []any{"a", "b"}},
						"enabled": map[string]any{"type": "bool", "value": true},
						"ratio":   map[string]any{"type": "Float", "value": 0.5},
						"weird":   map[string]any{"type": "Duration", "value": "PT1H"},
					},
				},
			},
		},
	}
	got := DetectFromARMTemplate(tpl)
	want := []Reference{
		{Name: "apiUrl", ADFDataType: "String", FabricDataType: "String", DefaultValue: "https://api.example.com", ReferencedByPipelines: []string{}, Note: NoteFromTemplate},
		{Name: "enabled", ADFDataType: "bool", FabricDataType: "Boolean", DefaultValue: true, ReferencedByPipelines: []string{}, Note: NoteFromTemplate},
		{Name: "flags", ADFDataType: "Array", FabricDataType: "String", DefaultValue: []any{"a", "b"}, ReferencedByPipelines: []string{}, Note: NoteFromTemplate},
		{Name: "ratio", ADFDataType: "Float", FabricDataType: "Number", DefaultValue: 0.5, ReferencedByPipelines: []string{}, Note: NoteFromTemplate},
		{Name: "retries", ADFDataType: "Int", FabricDataType: "Integer", DefaultValue: int64(3), ReferencedByPipelines: []string{}, Note: NoteFromTemplate},
		{Name: "secret", ADFDataType: "SecureString", FabricDataType: "String", DefaultValue: "s3cr3t", ReferencedByPipelines: []string{}, IsSecure: true, Note: NoteFromTemplate},
		{Name: "weird", ADFDataType: "Duration", FabricDataType: "String", DefaultValue: "PT1H", ReferencedByPipelines: []string{}, Note: NoteFromTemplate},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("DetectFromARMTemplate() mismatch (-want +got):\n%s", diff)
	}

	if got := DetectFromARMTemplate(map[string]any{"resources": []any{}}); got == nil || len(got) != 0 {
		t.Fatalf("DetectFromARMTemplate(no factory) = %#v, want empty slice", got)
	}
}

func TestDetectWithFallbackMergePrecedence(t *testing.T) {
	t.Parallel()

	components := []arm.Component{
		pipeline("UsesApi", webActivity("@pipeline().globalParameters.apiUrl")),
		pipeline("UsesOther", webActivity("@pipeline().globalParameters.onlyInExpressions")),
	}
	tpl := map[string]any{
		"resources": []any{
			map[string]any{
				"name": "contoso",
				"type": "Microsoft.DataFactory/factories",
				"properties": map[string]any{
					"globalParameters": map[string]any{
						"apiUrl":   map[string]any{"type": "SecureString", "value": "https://api.example.com"},
						"unusedOn": map[string]any{"type": "Bool", "value": false},
					},
				},
			},
		},
	}

	got := DetectWithFallback(components, tpl)
	want := []Reference{
		{Name: "apiUrl", ADFDataType: "SecureString", FabricDataType: "String", DefaultValue: "https://api.example.com", ReferencedByPipelines: []string{"UsesApi"}, IsSecure: true, Note: NoteFromTemplate},
		{Name: "unusedOn", ADFDataType: "Bool", FabricDataType: "Boolean", DefaultValue: false, ReferencedByPipelines: []string{}, Note: NoteFromTemplate},
		{Name: "onlyInExpressions", ADFDataType: "String", FabricDataType: "String", DefaultValue: "", ReferencedByPipelines: []string{"UsesOther"}, Note: NoteFromExpressions},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("DetectWithFallback() mismatch (-want +got):\n%s", diff)
	}
	if got := PipelinesUsing(got); !cmp.Equal(got, []string{"UsesApi", "UsesOther"}) {
		t.Fatalf("PipelinesUsing() = %v", got)
	}
}

func TestMapADFTypeToFabric(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"String":       "String",
		"int":          "Integer",
		"FLOAT":        "Number",
		"Bool":         "Boolean",
		"Array":        "String",
		"Object":       "String",
		"SecureString": "String",
		"":             "String",
		"Guid":         "String",
	}
	for in, want := range cases {
		if got := MapADFTypeToFabric(in); got != want {
			t.Fatalf("MapADFTypeToFabric(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractFactoryName(t *testing.T) {
	t.Parallel()

	factory := func(name string) map[string]any {
		return map[string]any{"type": "Microsoft.DataFactory/factories", "name": name}
	}
	cases := []struct {
		name string
		tpl  map[string]any
		want string
	}{
		{name: "literal", tpl: map[string]any{"resources": []any{factory("contoso-adf")}}, want: "contoso-adf"},
		{
			name: "parameter default",
			tpl: map[string]any{
				"parameters": map[string]any{"factoryName": map[string]any{"type": "string", "defaultValue": "from-param"}},
				"resources":  []any{factory("[parameters('factoryName')]")},
			},
			want: "from-param",
		},
		{name: "parameter without default", tpl: map[string]any{"resources": []any{factory("[parameters('factoryName')]")}}, want: DefaultFactoryName},
		{name: "other expression", tpl: map[string]any{"resources": []any{factory("[variables('name')]")}}, want: DefaultFactoryName},
		{name: "no factory", tpl: map[string]any{"resources": []any{}}, want: DefaultFactoryName},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ExtractFactoryName(tc.tpl); got != tc.want {
				t.Fatalf("ExtractFactoryName() = %q, want %q", got, tc.want)
			}
		})
	}

	tpl := map[string]any{"resources": []any{factory("contoso-adf")}}
	if got := VariableLibraryName(tpl, ""); got != "contoso-adf_GlobalParameters" {
		t.Fatalf("VariableLibraryName() = %q", got)
	}
	if got := VariableLibraryName(tpl, "Vars"); got != "contoso-adf_Vars" {
		t.Fatalf("VariableLibraryName(Vars) = %q", got)
	}
}
