package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fabric-tools/adf2fabric/internal/migration"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var analyzeFormat string

var analyzeCmd = &cobra.Command{
	Use:         "analyze <arm-template.json>",
	Short:       "Parse a template and report components, connector mappings and global parameters.",
	Args:        cobra.ExactArgs(1),
	Annotations: structuredLogging(),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return commandError(runAnalyze(ctx, afero.NewOsFs(), args[0], analyzeFormat, cmd))
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", formatAuto, "Output format: auto, table or json")
}

func runAnalyze(ctx context.Context, fs afero.Fs, templatePath, format string, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	format, err := resolveFormat(format, out)
	if err != nil {
		return err
	}

	analysis, err := migration.NewRunner(fs, slog.Default()).Analyze(ctx, templatePath)
	if err != nil {
		return err
	}
	if format == formatTable {
		return renderAnalysis(out, analysis)
	}
	return writeJSON(out, analysis)
}
