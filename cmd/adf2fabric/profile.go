package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fabric-tools/adf2fabric/internal/migration"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	profileFormat string
	profileOutput string
)

var profileCmd = &cobra.Command{
	Use:         "profile <arm-template.json>",
	Short:       "Compute template metrics and migration insights.",
	Args:        cobra.ExactArgs(1),
	Annotations: structuredLogging(),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return commandError(runProfile(ctx, afero.NewOsFs(), args[0], profileFormat, profileOutput, cmd))
	},
}

func init() {
	profileCmd.Flags().StringVar(&profileFormat, "format", formatAuto, "Output format: auto, table or json")
	profileCmd.Flags().StringVarP(&profileOutput, "output", "o", "", "Also write the profile as JSON to this file")
}

func runProfile(ctx context.Context, fs afero.Fs, templatePath, format, output string, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	format, err := resolveFormat(format, out)
	if err != nil {
		return err
	}

	profile, err := migration.NewRunner(fs, slog.Default()).Profile(ctx, templatePath)
	if err != nil {
		return err
	}

	if output != "" {
		w := migration.NewWriter(fs, "", false)
		path, err := w.WriteJSON(output, profile)
		if err != nil {
			return fmt.Errorf("write profile: %w", err)
		}
		slog.Info("profile written", "path", path)
	}

	if format == formatTable {
		return renderProfile(out, profile)
	}
	return writeJSON(out, profile)
}
