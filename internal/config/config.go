package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvLibrarySuffix       = "ADF2FABRIC_LIBRARY_SUFFIX"
	EnvWorkers             = "ADF2FABRIC_WORKERS"
	EnvOutputDir           = "ADF2FABRIC_OUTPUT_DIR"
	EnvConnectionsFile     = "ADF2FABRIC_CONNECTIONS_FILE"
	EnvDatabricksToTrident = "ADF2FABRIC_DATABRICKS_TO_TRIDENT"
	EnvMetricsTextfile     = "ADF2FABRIC_METRICS_TEXTFILE"

	defaultLibrarySuffix = "GlobalParameters"
	defaultWorkers       = 4
	defaultOutputDir     = "fabric-output"
)

type Config struct {
	LibrarySuffix       string
	Workers             int
	OutputDir           string
	ConnectionsFile     string
	DatabricksToTrident bool
	MetricsTextfile     string
}

type LoadOptions struct {
	// RequireOutputDir rejects an explicitly blank output directory.
	RequireOutputDir bool
}

func Load() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireOutputDir: true})
}

func LoadWithOptions(opts LoadOptions) (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, err
		}
	}

	cfg := Config{
		LibrarySuffix:       strings.TrimSpace(getenvDefault(EnvLibrarySuffix, defaultLibrarySuffix)),
		Workers:             getenvIntDefault(EnvWorkers, defaultWorkers),
		OutputDir:           strings.TrimSpace(getenvDefault(EnvOutputDir, defaultOutputDir)),
		ConnectionsFile:     strings.TrimSpace(os.Getenv(EnvConnectionsFile)),
		DatabricksToTrident: getenvBoolDefault(EnvDatabricksToTrident, false),
		MetricsTextfile:     strings.TrimSpace(os.Getenv(EnvMetricsTextfile)),
	}

	if strings.ContainsAny(cfg.LibrarySuffix, "/\\ ") {
		return cfg, errors.New(EnvLibrarySuffix + " must not contain spaces or path separators")
	}
	if opts.RequireOutputDir && cfg.OutputDir == "" {
		return cfg, errors.New(EnvOutputDir + " is required")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func getenvIntDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func getenvBoolDefault(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch v {
	case "1":
		return true
	case "0":
		return false
	default:
		return def
	}
}
