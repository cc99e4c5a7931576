package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fabric-tools/adf2fabric/internal/arm"
	"github.com/fabric-tools/adf2fabric/internal/jsontree"
	"github.com/fabric-tools/adf2fabric/internal/migration"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"
)

const (
	formatAuto  = "auto"
	formatTable = "table"
	formatJSON  = "json"
)

// resolveFormat turns the --format flag into table or json. Auto picks a table
// only when w is a terminal.
func resolveFormat(raw string, w io.Writer) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", formatAuto:
		if isTerminal(w) {
			return formatTable, nil
		}
		return formatJSON, nil
	case formatTable:
		return formatTable, nil
	case formatJSON:
		return formatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want auto, table or json)", raw)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeJSON(w io.Writer, v any) error {
	b, err := jsontree.MarshalIndent(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func newTable(w io.Writer, headers ...any) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Options(tablewriter.WithConfig(tablewriter.Config{
		Header: tw.CellConfig{
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
	}))
	if !isTerminal(w) {
		table.Options(tablewriter.WithSymbols(&tw.SymbolASCII{}))
	}
	table.Header(headers...)
	return table
}

func renderAnalysis(w io.Writer, a *migration.Analysis) error {
	fmt.Fprintf(w, "Template %s (factory %q): %d components, %d supported, %d partially supported, %d unsupported\n\n",
		a.Template, a.FactoryName, a.Summary.Total, a.Summary.Supported, a.Summary.PartiallySupported, a.Summary.Unsupported)

	components := newTable(w, "Name", "Type", "Status", "Fabric item", "Warnings")
	for _, c := range a.Components {
		target := "-"
		if c.FabricTarget != nil {
			target = c.FabricTarget.ItemType
		}
		if err := components.Append(c.Name, string(c.Type), string(c.CompatibilityStatus), target, strconv.Itoa(len(c.Warnings))); err != nil {
			return err
		}
	}
	if err := components.Render(); err != nil {
		return err
	}

	if len(a.Connectors) > 0 {
		fmt.Fprintln(w)
		connectors := newTable(w, "Linked service", "ADF type", "Fabric type", "Confidence")
		for _, m := range a.Connectors {
			if err := connectors.Append(m.LinkedService, m.ADFType, m.FabricType, string(m.MappingConfidence)); err != nil {
				return err
			}
		}
		if err := connectors.Render(); err != nil {
			return err
		}
	}

	if len(a.GlobalParameters) > 0 {
		fmt.Fprintln(w)
		params := newTable(w, "Global parameter", "ADF type", "Fabric type", "Pipelines")
		for _, ref := range a.GlobalParameters {
			if err := params.Append(ref.Name, ref.ADFDataType, ref.FabricDataType, strings.Join(ref.ReferencedByPipelines, ", ")); err != nil {
				return err
			}
		}
		if err := params.Render(); err != nil {
			return err
		}
	}
	return nil
}

func renderProfile(w io.Writer, p arm.Profile) error {
	m := p.Metrics
	fmt.Fprintf(w, "%s (%d bytes)\n\n", p.FileName, p.FileSizeBytes)

	metrics := newTable(w, "Metric", "Value")
	rows := [][2]string{
		{"Pipelines", strconv.Itoa(m.TotalPipelines)},
		{"Activities", strconv.Itoa(m.TotalActivities)},
		{"Avg activities per pipeline", strconv.FormatFloat(m.AvgActivitiesPerPipeline, 'f', 2, 64)},
		{"Max pipeline depth", strconv.Itoa(m.MaxPipelineDepth)},
		{"Datasets", strconv.Itoa(m.TotalDatasets)},
		{"Linked services", strconv.Itoa(m.TotalLinkedServices)},
		{"Triggers", strconv.Itoa(m.TotalTriggers)},
		{"Global parameters", strconv.Itoa(m.TotalGlobalParameters)},
		{"Integration runtimes", strconv.Itoa(m.TotalIntegrationRuntimes)},
		{"External domains", strings.Join(m.ExternalDomains, ", ")},
	}
	for _, row := range rows {
		if err := metrics.Append(row[0], row[1]); err != nil {
			return err
		}
	}
	if err := metrics.Render(); err != nil {
		return err
	}

	if len(p.Insights) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	insights := newTable(w, "Severity", "Insight", "Details")
	for _, in := range p.Insights {
		if err := insights.Append(string(in.Severity), in.Title, in.Description); err != nil {
			return err
		}
	}
	return insights.Render()
}

func renderMigrationSummary(w io.Writer, s *migration.Summary) error {
	verb := "Migrated"
	if s.DryRun {
		verb = "Planned"
	}
	fmt.Fprintf(w, "%s %d pipelines from %s (%d failed, %d skipped)\n\n", verb, s.Succeeded, s.Template, s.Failed, len(s.Skipped))

	table := newTable(w, "Pipeline", "Status", "Global parameters", "Details")
	for _, p := range s.Pipelines {
		details := p.Artifact
		if p.Error != "" {
			details = p.Error
		}
		if err := table.Append(p.Name, p.Status, strings.Join(p.GlobalParameters, ", "), details); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(s.Connections.Unresolved) > 0 {
		fmt.Fprintf(w, "\nUnresolved connections: %s\n", strings.Join(s.Connections.Unresolved, ", "))
	}
	return nil
}
