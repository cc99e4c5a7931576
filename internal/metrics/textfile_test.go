package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestWriteTextfileFrom(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipelines_transformed_total",
		Help:      "Pipeline transformations by outcome.",
	}, []string{"status"})
	reg.MustRegister(counter)
	counter.WithLabelValues("success").Add(3)

	path := filepath.Join(t.TempDir(), "adf2fabric.prom")
	if err := WriteTextfileFrom(reg, path); err != nil {
		t.Fatalf("WriteTextfileFrom() error = %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := `adf2fabric_pipelines_transformed_total{status="success"} 3`
	if !strings.Contains(string(b), want) {
		t.Fatalf("textfile = %q, want it to contain %q", b, want)
	}
}

func TestWriteTextfileEmptyPathIsNoop(t *testing.T) {
	t.Parallel()

	if err := WriteTextfile("  "); err != nil {
		t.Fatalf("WriteTextfile(\"\") error = %v", err)
	}
}
