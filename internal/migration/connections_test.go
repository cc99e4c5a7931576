package migration

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

func TestLoadConnectionMap(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		doc  string
		want map[string]string
	}{
		{
			name: "flat yaml",
			doc:  "SqlLs: 11111111-1111-1111-1111-111111111111\nBlobLs: conn-blob\n",
			want: map[string]string{"SqlLs": "11111111-1111-1111-1111-111111111111", "BlobLs": "conn-blob"},
		},
		{
			name: "nested json",
			doc:  `{"connections": {"SqlLs": "conn-sql"}}`,
			want: map[string]string{"SqlLs": "conn-sql"},
		},
		{
			name: "empty document",
			doc:  "",
			want: map[string]string{},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			fs := afero.NewMemMapFs()
			if err := afero.WriteFile(fs, "/connections.yaml", []byte(tc.doc), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			got, err := LoadConnectionMap(fs, "/connections.yaml")
			if err != nil {
				t.Fatalf("LoadConnectionMap() error = %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("LoadConnectionMap() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadConnectionMapErrors(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	if _, err := LoadConnectionMap(fs, "/missing.yaml"); err == nil {
		t.Fatal("LoadConnectionMap(missing) error = nil, want error")
	}
	if got, err := LoadConnectionMap(fs, "  "); err != nil || len(got) != 0 {
		t.Fatalf("LoadConnectionMap(\"\") = %v, %v; want empty map", got, err)
	}

	for name, doc := range map[string]string{
		"non-string id":       "SqlLs: 42\n",
		"connections not map": "connections: [a, b]\n",
		"empty id":            "SqlLs: \"\"\n",
	} {
		if _, err := ParseConnectionMap([]byte(doc)); !errors.Is(err, ErrInvalidConnectionMap) {
			t.Fatalf("%s: ParseConnectionMap() error = %v, want ErrInvalidConnectionMap", name, err)
		}
	}
}

func TestWriterAndFileName(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	w := NewWriter(fs, "/out", false)
	path, err := w.WriteJSON("pipelines/"+FileName("Load: Sales/Daily", ".json"), map[string]any{"a": "<b>"})
	if err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if path != "/out/pipelines/Load_Sales_Daily.json" {
		t.Fatalf("WriteJSON() path = %q", path)
	}
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(b) != "{\n  \"a\": \"<b>\"\n}\n" {
		t.Fatalf("file content = %q", b)
	}
	if diff := cmp.Diff([]string{path}, w.Written()); diff != "" {
		t.Fatalf("Written() mismatch (-want +got):\n%s", diff)
	}
	if got := FileName("..", ".json"); got != "_.json" {
		t.Fatalf("FileName(..) = %q", got)
	}
}
