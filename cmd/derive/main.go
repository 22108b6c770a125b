// Command derive runs the full derivation pipeline: it loads the raw oTree
// session exports, the iMotions telemetry, the survey and chat exports, and
// writes every derived dataset to the datastore's derived directory.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"marketruns/internal/config"
	"marketruns/internal/infrastructure"
	"marketruns/internal/operations"
	"marketruns/internal/validation"
)

func main() {
	configFile := flag.String("config", "", "path to config file (defaults to config.yaml)")
	flag.Parse()

	if *configFile != "" {
		os.Setenv("MARKETRUNS_CONFIG_FILE", *configFile)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	paths := config.NewPaths(cfg.Paths)
	if err := paths.EnsureOutputDirs(); err != nil {
		logger.Error("Failed to create output directories", "error", err)
		os.Exit(1)
	}

	if err := validation.NewDatastoreValidator(paths, logger).ValidateLayout(cfg); err != nil {
		logger.Error("Datastore validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := operations.NewDerivePipeline(cfg, paths, logger)
	if err != nil {
		logger.Error("Failed to assemble pipeline", "error", err)
		os.Exit(1)
	}

	state, err := operations.NewRunner(registry, logger).Run(ctx)
	if err != nil {
		runID := ""
		if state != nil {
			runID = state.ID
		}
		logger.Error("Derivation pipeline failed",
			"run_id", runID,
			"error", err)
		os.Exit(1)
	}

	for _, count := range state.Artifacts.ExportedDatasets {
		logger.Info("dataset exported",
			slog.String("dataset", count.Name),
			slog.Int("rows", count.Rows))
	}
	logger.Info("derivation pipeline finished",
		slog.String("run_id", state.ID),
		slog.Duration("duration", state.Duration()),
		slog.Int("dataset_count", len(state.Artifacts.ExportedDatasets)))
}
