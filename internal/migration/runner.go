// Package migration runs the end-to-end conversion of an ARM template into
// Fabric artifacts.
package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fabric-tools/adf2fabric/internal/arm"
	"github.com/fabric-tools/adf2fabric/internal/connectors"
	"github.com/fabric-tools/adf2fabric/internal/fabric"
	"github.com/fabric-tools/adf2fabric/internal/globalparams"
	"github.com/fabric-tools/adf2fabric/internal/logging"
	"github.com/fabric-tools/adf2fabric/internal/metrics"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusPlanned   = "planned"

	pipelinesDir        = "pipelines"
	variableLibraryFile = "variable-library.json"
	connectionsFile     = "connections.json"
	summaryFile         = "summary.json"
)

// Options control a migration run.
type Options struct {
	LibrarySuffix       string
	Workers             int
	OutputDir           string
	Connections         map[string]string
	DatabricksToTrident bool
	DryRun              bool
}

// Runner reads templates from Fs and writes artifacts back to it.
type Runner struct {
	Fs       afero.Fs
	Logger   *slog.Logger
	Now      func() time.Time
	NewRunID func() string
}

func NewRunner(fs afero.Fs, logger *slog.Logger) *Runner {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		Fs:       fs,
		Logger:   logger,
		Now:      time.Now,
		NewRunID: uuid.NewString,
	}
}

// Analysis is the result of Analyze.
type Analysis struct {
	Template         string                   `json:"template"`
	FactoryName      string                   `json:"factory_name"`
	Components       []arm.Component          `json:"components"`
	Summary          arm.Summary              `json:"summary"`
	Connectors       []NamedMapping           `json:"connectors"`
	GlobalParameters []globalparams.Reference `json:"global_parameters"`
}

// NamedMapping is a connector mapping for one linked service.
type NamedMapping struct {
	LinkedService string `json:"linked_service"`
	connectors.ConnectorMapping
}

type loaded struct {
	size       int64
	template   map[string]any
	parser     *arm.Parser
	components []arm.Component
}

func (r *Runner) load(ctx context.Context, templatePath string) (*loaded, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := afero.ReadFile(r.Fs, templatePath)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	tpl, err := arm.DecodeTemplate(b)
	if err != nil {
		return nil, err
	}
	p := arm.NewParser()
	p.Now = r.Now
	components, err := p.ParseTemplate(tpl)
	if err != nil {
		return nil, err
	}
	for _, c := range components {
		metrics.ComponentsParsedTotal.WithLabelValues(string(c.Type), string(c.CompatibilityStatus)).Inc()
	}
	return &loaded{
		size:       int64(len(b)),
		template:   tpl,
		parser:     p,
		components: components,
	}, nil
}

// Analyze parses a template and reports components, connector mappings and
// global parameters without writing anything.
func (r *Runner) Analyze(ctx context.Context, templatePath string) (*Analysis, error) {
	l, err := r.load(ctx, templatePath)
	if err != nil {
		return nil, err
	}
	refs := globalparams.DetectWithFallback(l.components, l.template)
	recordGlobalParameters(refs)
	return &Analysis{
		Template:         filepath.Base(templatePath),
		FactoryName:      globalparams.ExtractFactoryName(l.template),
		Components:       l.components,
		Summary:          arm.Summarize(l.components),
		Connectors:       mapLinkedServices(l.components),
		GlobalParameters: refs,
	}, nil
}

// Profile parses a template and returns its profile.
func (r *Runner) Profile(ctx context.Context, templatePath string) (arm.Profile, error) {
	l, err := r.load(ctx, templatePath)
	if err != nil {
		return arm.Profile{}, err
	}
	return l.parser.GenerateProfile(l.components, filepath.Base(templatePath), l.size), nil
}

func mapLinkedServices(components []arm.Component) []NamedMapping {
	services := arm.FilterByType(components, arm.TypeLinkedService)
	defs := make([]map[string]any, 0, len(services))
	for _, c := range services {
		defs = append(defs, c.Properties())
	}
	mappings := connectors.MapConnectors(defs)
	out := make([]NamedMapping, 0, len(mappings))
	for i, m := range mappings {
		metrics.ConnectorMappingsTotal.WithLabelValues(string(m.MappingConfidence)).Inc()
		out = append(out, NamedMapping{LinkedService: services[i].Name, ConnectorMapping: m})
	}
	return out
}

func recordGlobalParameters(refs []globalparams.Reference) {
	for _, ref := range refs {
		source := "template"
		if ref.Note == globalparams.NoteFromExpressions {
			source = "expression"
		}
		metrics.GlobalParametersDetectedTotal.WithLabelValues(source).Inc()
	}
}

// PartialFailureError is returned by Migrate when some pipelines failed. The
// summary is still complete and written.
type PartialFailureError struct {
	Failed int
	Total  int
	Err    error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%d of %d pipelines failed: %v", e.Failed, e.Total, e.Err)
}

func (e *PartialFailureError) Unwrap() error { return e.Err }

// IsPartialFailure reports whether err is a PartialFailureError.
func IsPartialFailure(err error) bool {
	var pf *PartialFailureError
	return errors.As(err, &pf)
}

func (r *Runner) logger(runID, templatePath string) *slog.Logger {
	return logging.ForRun(r.Logger, runID, filepath.Base(templatePath))
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}

func (r *Runner) runID() string {
	if r.NewRunID == nil {
		return uuid.NewString()
	}
	return r.NewRunID()
}

func connectionEntries(components []arm.Component, mappings []NamedMapping) []fabric.LinkedService {
	services := arm.FilterByType(components, arm.TypeLinkedService)
	out := make([]fabric.LinkedService, 0, len(services))
	for i, c := range services {
		out = append(out, fabric.LinkedService{
			Name:       c.Name,
			Definition: c.Properties(),
			Mapping:    mappings[i].ConnectorMapping,
		})
	}
	return out
}
