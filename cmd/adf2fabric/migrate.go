package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fabric-tools/adf2fabric/internal/config"
	"github.com/fabric-tools/adf2fabric/internal/metrics"
	"github.com/fabric-tools/adf2fabric/internal/migration"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type migrateFlags struct {
	outputDir           string
	connectionsFile     string
	librarySuffix       string
	workers             int
	databricksToTrident bool
	metricsTextfile     string
	dryRun              bool
	format              string
}

var migrateOpts migrateFlags

var migrateCmd = &cobra.Command{
	Use:         "migrate <arm-template.json>",
	Short:       "Convert pipelines, global parameters and connections into Fabric item definitions.",
	Args:        cobra.ExactArgs(1),
	Annotations: structuredLogging(),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cfg = migrateOpts.apply(cfg, cmd.Flags().Changed)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return commandError(runMigrate(ctx, afero.NewOsFs(), args[0], cfg, migrateOpts.dryRun, migrateOpts.format, cmd.OutOrStdout()))
	},
}

func init() {
	f := migrateCmd.Flags()
	f.StringVarP(&migrateOpts.outputDir, "output-dir", "o", "", "Directory for generated artifacts (env "+config.EnvOutputDir+")")
	f.StringVar(&migrateOpts.connectionsFile, "connections", "", "YAML or JSON file mapping linked service names to Fabric connection ids (env "+config.EnvConnectionsFile+")")
	f.StringVar(&migrateOpts.librarySuffix, "library-suffix", "", "Variable library name suffix (env "+config.EnvLibrarySuffix+")")
	f.IntVar(&migrateOpts.workers, "workers", 0, "Pipelines converted concurrently (env "+config.EnvWorkers+")")
	f.BoolVar(&migrateOpts.databricksToTrident, "databricks-to-trident", false, "Rewrite DatabricksNotebook activities as Fabric notebooks (env "+config.EnvDatabricksToTrident+")")
	f.StringVar(&migrateOpts.metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file when the run ends (env "+config.EnvMetricsTextfile+")")
	f.BoolVar(&migrateOpts.dryRun, "dry-run", false, "Convert everything but write no files")
	f.StringVar(&migrateOpts.format, "format", formatAuto, "Summary format: auto, table or json")
}

// apply overlays explicitly set flags on the environment configuration.
func (f migrateFlags) apply(cfg config.Config, changed func(name string) bool) config.Config {
	if changed("output-dir") {
		cfg.OutputDir = f.outputDir
	}
	if changed("connections") {
		cfg.ConnectionsFile = f.connectionsFile
	}
	if changed("library-suffix") {
		cfg.LibrarySuffix = f.librarySuffix
	}
	if changed("workers") && f.workers > 0 {
		cfg.Workers = f.workers
	}
	if changed("databricks-to-trident") {
		cfg.DatabricksToTrident = f.databricksToTrident
	}
	if changed("metrics-textfile") {
		cfg.MetricsTextfile = f.metricsTextfile
	}
	return cfg
}

func runMigrate(ctx context.Context, fs afero.Fs, templatePath string, cfg config.Config, dryRun bool, format string, out io.Writer) error {
	if cfg.OutputDir == "" {
		return errors.New("output directory is required")
	}
	format, err := resolveFormat(format, out)
	if err != nil {
		return err
	}

	connections, err := migration.LoadConnectionMap(fs, cfg.ConnectionsFile)
	if err != nil {
		return err
	}

	runner := migration.NewRunner(fs, slog.Default())
	summary, runErr := runner.Migrate(ctx, templatePath, migration.Options{
		LibrarySuffix:       cfg.LibrarySuffix,
		Workers:             cfg.Workers,
		OutputDir:           cfg.OutputDir,
		Connections:         connections,
		DatabricksToTrident: cfg.DatabricksToTrident,
		DryRun:              dryRun,
	})

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			slog.Warn("metrics textfile not written", "path", cfg.MetricsTextfile, "error", err)
		}
	}

	if summary != nil {
		var renderErr error
		if format == formatTable {
			renderErr = renderMigrationSummary(out, summary)
		} else {
			renderErr = writeJSON(out, summary)
		}
		if renderErr != nil && runErr == nil {
			return renderErr
		}
	}
	return runErr
}
