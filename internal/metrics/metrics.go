package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "adf2fabric"
)

var (
	transformDurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

	// Parser Metrics
	ComponentsParsedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "components_parsed_total",
		Help:      "Components extracted from ARM templates.",
	}, []string{"type", "status"})

	// Transformer Metrics
	PipelinesTransformedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipelines_transformed_total",
		Help:      "Pipeline transformations by outcome.",
	}, []string{"status"})

	PipelineTransformDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_transform_duration_seconds",
		Help:      "Time taken to transform and encode one pipeline.",
		Buckets:   transformDurationBuckets,
	})

	// Connector Metrics
	ConnectorMappingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connector_mappings_total",
		Help:      "Linked services mapped to Fabric connection types, by confidence.",
	}, []string{"confidence"})

	// Global Parameter Metrics
	GlobalParametersDetectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "global_parameters_detected_total",
		Help:      "Global parameters found, by detection source.",
	}, []string{"source"})
)
