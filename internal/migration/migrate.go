package migration

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fabric-tools/adf2fabric/internal/arm"
	"github.com/fabric-tools/adf2fabric/internal/fabric"
	"github.com/fabric-tools/adf2fabric/internal/globalparams"
	"github.com/fabric-tools/adf2fabric/internal/logging"
	"github.com/fabric-tools/adf2fabric/internal/metrics"
	"github.com/fabric-tools/adf2fabric/internal/transform"
	"golang.org/x/sync/errgroup"
)

// PipelineResult is the outcome for one pipeline.
type PipelineResult struct {
	Name             string   `json:"name"`
	Status           string   `json:"status"`
	Artifact         string   `json:"artifact,omitempty"`
	Error            string   `json:"error,omitempty"`
	Warnings         []string `json:"warnings"`
	GlobalParameters []string `json:"global_parameters"`
	InvokedPipelines []string `json:"invoked_pipelines"`
}

// Schedule is the Fabric schedule planned for a trigger.
type Schedule struct {
	Trigger     string          `json:"trigger"`
	TriggerType string          `json:"trigger_type"`
	Enabled     bool            `json:"enabled"`
	Recurrence  *arm.Recurrence `json:"recurrence,omitempty"`
	Pipelines   []string        `json:"pipelines"`
	Status      string          `json:"compatibility_status"`
	Warnings    []string        `json:"warnings"`
}

// Summary is written to summary.json at the end of a run.
type Summary struct {
	RunID            string            `json:"run_id"`
	Template         string            `json:"template"`
	FactoryName      string            `json:"factory_name"`
	VariableLibrary  string            `json:"variable_library"`
	DryRun           bool              `json:"dry_run"`
	StartedAt        time.Time         `json:"started_at"`
	FinishedAt       time.Time         `json:"finished_at"`
	Components       arm.Summary       `json:"components"`
	GlobalParameters int               `json:"global_parameters"`
	Connections      ConnectionSummary `json:"connections"`
	Pipelines        []PipelineResult  `json:"pipelines"`
	Succeeded        int               `json:"succeeded"`
	Failed           int               `json:"failed"`
	Skipped          []string          `json:"skipped"`
	Schedules        []Schedule        `json:"schedules"`
	Artifacts        []string          `json:"artifacts"`
}

type ConnectionSummary struct {
	Total      int      `json:"total"`
	Resolved   int      `json:"resolved"`
	Unresolved []string `json:"unresolved"`
}

// Migrate converts every selected pipeline of the template and writes the
// artifacts under opts.OutputDir. Template errors abort the run. Pipeline
// errors are recorded and the run continues; if any occurred the returned
// error is a PartialFailureError and the summary is still returned.
func (r *Runner) Migrate(ctx context.Context, templatePath string, opts Options) (*Summary, error) {
	runID := r.runID()
	log := r.logger(runID, templatePath)
	started := r.now()

	l, err := r.load(ctx, templatePath)
	if err != nil {
		return nil, err
	}

	refs := globalparams.DetectWithFallback(l.components, l.template)
	recordGlobalParameters(refs)
	libraryName := globalparams.VariableLibraryName(l.template, opts.LibrarySuffix)

	mappings := mapLinkedServices(l.components)
	plan := fabric.NewConnectionPlan(connectionEntries(l.components, mappings), opts.Connections)

	w := NewWriter(r.Fs, opts.OutputDir, opts.DryRun)
	summary := &Summary{
		RunID:            runID,
		Template:         filepath.Base(templatePath),
		FactoryName:      globalparams.ExtractFactoryName(l.template),
		VariableLibrary:  libraryName,
		DryRun:           opts.DryRun,
		StartedAt:        started,
		Components:       arm.Summarize(l.components),
		GlobalParameters: len(refs),
		Connections: ConnectionSummary{
			Total:      len(plan.Connections),
			Resolved:   plan.Resolved,
			Unresolved: plan.Unresolved,
		},
		Skipped:   []string{},
		Schedules: planSchedules(l.components),
	}
	log.Info("migration started",
		"components", len(l.components),
		"global_parameters", len(refs),
		"dry_run", opts.DryRun,
	)

	var pipelines []arm.Component
	for _, c := range arm.FilterByType(l.components, arm.TypePipeline) {
		if !c.IsSelected {
			summary.Skipped = append(summary.Skipped, c.Name)
			continue
		}
		pipelines = append(pipelines, c)
	}

	names := make([]string, len(pipelines))
	for i, c := range pipelines {
		names[i] = c.Name
	}
	files := UniqueFileNames(names, ".json")

	results := make([]PipelineResult, len(pipelines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))
	for i, c := range pipelines {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.migratePipeline(c, files[i], refs, libraryName, opts, w)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var errs []error
	for _, res := range results {
		switch res.Status {
		case StatusFailed:
			summary.Failed++
			errs = append(errs, fmt.Errorf("pipeline %q: %s", res.Name, res.Error))
			logging.ForPipeline(log, res.Name).Error("pipeline migration failed", "err", res.Error)
		default:
			summary.Succeeded++
			logging.ForPipeline(log, res.Name).Debug("pipeline migrated", "artifact", res.Artifact, "warnings", len(res.Warnings))
		}
	}
	summary.Pipelines = results

	if len(refs) > 0 {
		if _, err := w.WriteJSON(variableLibraryFile, fabric.NewVariableLibraryItem(libraryName, refs)); err != nil {
			return nil, err
		}
	}
	if _, err := w.WriteJSON(connectionsFile, plan); err != nil {
		return nil, err
	}

	summary.FinishedAt = r.now()
	summary.Artifacts = append(w.Written(), filepath.Join(opts.OutputDir, summaryFile))
	if _, err := w.WriteJSON(summaryFile, summary); err != nil {
		return nil, err
	}

	log.Info("migration finished",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", len(summary.Skipped),
		"duration", summary.FinishedAt.Sub(started).String(),
	)
	if len(errs) > 0 {
		return summary, &PartialFailureError{Failed: summary.Failed, Total: len(results), Err: errors.Join(errs...)}
	}
	return summary, nil
}

func (r *Runner) migratePipeline(c arm.Component, file string, refs []globalparams.Reference, library string, opts Options, w *Writer) PipelineResult {
	start := time.Now()
	res := PipelineResult{
		Name:             c.Name,
		Warnings:         append([]string{}, c.Warnings...),
		GlobalParameters: []string{},
		InvokedPipelines: []string{},
	}
	if file != FileName(c.Name, ".json") {
		res.Warnings = append(res.Warnings, fmt.Sprintf("file name %s is taken by another pipeline; written as %s", FileName(c.Name, ".json"), file))
	}

	item, used, invoked, warnings, err := buildPipelineItem(c, refs, library, opts)
	metrics.PipelineTransformDuration.Observe(time.Since(start).Seconds())
	res.Warnings = append(res.Warnings, warnings...)
	if err != nil {
		metrics.PipelinesTransformedTotal.WithLabelValues(StatusFailed).Inc()
		res.Status = StatusFailed
		res.Error = err.Error()
		return res
	}
	res.GlobalParameters = used
	res.InvokedPipelines = invoked

	artifact, err := w.WriteJSON(filepath.Join(pipelinesDir, file), item)
	if err != nil {
		metrics.PipelinesTransformedTotal.WithLabelValues(StatusFailed).Inc()
		res.Status = StatusFailed
		res.Error = err.Error()
		return res
	}
	res.Artifact = artifact
	res.Status = StatusSucceeded
	if w.DryRun() {
		res.Status = StatusPlanned
	}
	metrics.PipelinesTransformedTotal.WithLabelValues(StatusSucceeded).Inc()
	return res
}

// buildPipelineItem runs the transformer for one pipeline with its own
// Transformer instance.
func buildPipelineItem(c arm.Component, refs []globalparams.Reference, library string, opts Options) (fabric.PipelineItemRequest, []string, []string, []string, error) {
	tr := transform.New()
	tr.SetDatabricksToTrident(opts.DatabricksToTrident)
	tr.SetConnectionMappings(opts.Connections)

	def, err := tr.TransformPipelineDefinition(pipelineResource(c), c.Name)
	if err != nil {
		return fabric.PipelineItemRequest{}, nil, nil, tr.Warnings(), err
	}

	used := refsFor(c.Name, refs)
	if len(used) > 0 {
		def, err = transform.TransformPipelineWithGlobalParameters(def, used, library)
		if err != nil {
			return fabric.PipelineItemRequest{}, nil, nil, tr.Warnings(), err
		}
	}

	payload, err := transform.GenerateFabricPipelinePayload(def)
	if err != nil {
		return fabric.PipelineItemRequest{}, nil, nil, tr.Warnings(), err
	}

	names := make([]string, 0, len(used))
	for _, ref := range used {
		names = append(names, ref.Name)
	}
	return fabric.NewPipelineItemRequest(c.Name, payload), names, invokedPipelines(def), tr.Warnings(), nil
}

// pipelineResource rebuilds the resource-shaped definition the transformer
// works on from a parsed component.
func pipelineResource(c arm.Component) map[string]any {
	def := map[string]any{
		"name":       c.Name,
		"properties": c.Properties(),
	}
	if meta, ok := c.Definition[arm.MetadataKey].(map[string]any); ok {
		def[arm.MetadataKey] = meta
		if deps, ok := meta["dependsOn"]; ok {
			def["dependsOn"] = deps
		}
	}
	return def
}

func refsFor(pipeline string, refs []globalparams.Reference) []globalparams.Reference {
	var out []globalparams.Reference
	for _, ref := range refs {
		if slices.Contains(ref.ReferencedByPipelines, pipeline) {
			out = append(out, ref)
		}
	}
	return out
}

func invokedPipelines(def map[string]any) []string {
	props, _ := def["properties"].(map[string]any)
	out := []string{}
	for _, act := range arm.Activities(props) {
		if target, ok := act[transform.OriginalTargetKey].(string); ok && !slices.Contains(out, target) {
			out = append(out, target)
		}
	}
	return out
}

func planSchedules(components []arm.Component) []Schedule {
	out := []Schedule{}
	for _, c := range arm.FilterByType(components, arm.TypeTrigger) {
		s := Schedule{
			Trigger:   c.Name,
			Status:    string(c.CompatibilityStatus),
			Pipelines: []string{},
			Warnings:  append([]string{}, c.Warnings...),
		}
		if meta := c.TriggerMetadata; meta != nil {
			s.TriggerType = meta.TriggerType
			s.Enabled = meta.RuntimeState == "Started"
			s.Recurrence = meta.Recurrence
			s.Pipelines = meta.Pipelines
		}
		out = append(out, s)
	}
	return out
}
