// Package logging configures the slog logger shared by adf2fabric commands.
//
// Records are JSON by default and always carry app=adf2fabric and the cobra
// command path. The migration runner narrows loggers further with ForRun and
// ForPipeline so every line of a run can be joined on run_id.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	// EnvAppFormat and EnvAppLevel take precedence over EnvFormat and
	// EnvLevel, so adf2fabric can log differently from other tools sharing
	// the environment.
	EnvAppFormat = "ADF2FABRIC_LOG_FORMAT"
	EnvAppLevel  = "ADF2FABRIC_LOG_LEVEL"
	// EnvFormat selects json or text records.
	EnvFormat = "LOG_FORMAT"
	// EnvLevel is the minimum level: debug, info, warn or error.
	EnvLevel = "LOG_LEVEL"

	defaultFormat = "json"
	defaultLevel  = "info"

	appName = "adf2fabric"
)

// Config is the validated logging configuration derived from environment variables.
type Config struct {
	Format string
	Level  slog.Level
}

// BootstrapOptions controls logger initialization behavior.
type BootstrapOptions struct {
	Command string
	Writer  io.Writer
}

// DefaultConfig returns the default structured logging configuration.
func DefaultConfig() Config {
	return Config{
		Format: defaultFormat,
		Level:  slog.LevelInfo,
	}
}

// LoadConfigFromEnv reads the log format and level, preferring the
// ADF2FABRIC_ variables. Invalid values are errors naming the variable read.
func LoadConfigFromEnv() (Config, error) {
	formatKey, rawFormat := lookupEnv(EnvAppFormat, EnvFormat)
	format, err := parseFormat(formatKey, rawFormat)
	if err != nil {
		return Config{}, err
	}
	levelKey, rawLevel := lookupEnv(EnvAppLevel, EnvLevel)
	level, err := parseLevel(levelKey, rawLevel)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Format: format,
		Level:  level,
	}, nil
}

// NewLogger builds a logger for one command. A blank command falls back to the
// app name so fatal-path records are still attributable.
func NewLogger(cfg Config, writer io.Writer, command string) *slog.Logger {
	if writer == nil {
		writer = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "text":
		handler = slog.NewTextHandler(writer, opts)
	default:
		handler = slog.NewJSONHandler(writer, opts)
	}

	command = strings.TrimSpace(command)
	if command == "" {
		command = appName
	}
	return slog.New(handler).With("app", appName, "command", command)
}

// ForRun returns logger annotated with a migration run id and template file.
func ForRun(logger *slog.Logger, runID, template string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("run_id", runID, "template", template)
}

// ForPipeline narrows a run logger to one pipeline.
func ForPipeline(logger *slog.Logger, pipeline string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("pipeline", pipeline)
}

// Discard returns a logger that drops every record. Library callers that do
// not care about progress output pass it to the migration runner.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// BootstrapFromEnv loads logging config from env, installs the default logger, and returns it.
func BootstrapFromEnv(opts BootstrapOptions) (*slog.Logger, error) {
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg, opts.Writer, opts.Command)
	slog.SetDefault(logger)
	return logger, nil
}

// lookupEnv returns the first of keys set to a non-blank value, or the last
// key with an empty value.
func lookupEnv(keys ...string) (string, string) {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return key, v
		}
	}
	return keys[len(keys)-1], ""
}

func parseFormat(key, raw string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(raw))
	if format == "" {
		return defaultFormat, nil
	}
	switch format {
	case "json", "text":
		return format, nil
	default:
		return "", fmt.Errorf("%s must be one of: json, text", key)
	}
}

func parseLevel(key, raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", defaultLevel:
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%s must be one of: debug, info, warn, error", key)
	}
}
