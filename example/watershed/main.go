package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/siherrmann/fishpass"
	"github.com/siherrmann/fishpass/helper"
	"github.com/siherrmann/fishpass/model"
)

// Runs every watershed of a run file, or only the one given by -watershed,
// against the store configured by the FISHPASS_DB_* environment.
func main() {
	flagSet := flag.NewFlagSet("watershed", flag.ExitOnError)
	runsFlag := flagSet.String("runs", "runs.hcl", "Path to the HCL run file.")
	watershedFlag := flagSet.String("watershed", "", "Only run the watershed with this id.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	_ = flagSet.Parse(os.Args[1:])

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevelFlag)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q\n", *logLevelFlag)
		os.Exit(2)
	}
	logger := helper.NewLogger(os.Stdout, level)

	runs, err := helper.LoadRunConfigs(*runsFlag)
	if err != nil {
		logger.Error("Failed to load run file", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *watershedFlag != "" {
		run, err := helper.FindRunConfig(runs, *watershedFlag)
		if err != nil {
			logger.Error("Unknown watershed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		runs = []*model.RunConfig{run}
	}

	dbConfig, err := helper.NewDatabaseConfiguration()
	if err != nil {
		logger.Error("Failed to read database configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	f, err := fishpass.NewFishPassWithLogger(dbConfig, logger)
	if err != nil {
		logger.Error("Failed to create fishpass", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer f.Close()

	ctx := context.Background()
	failed := 0
	for _, run := range runs {
		summary, err := f.ComputeUpstreamValues(ctx, run)
		if err != nil {
			logger.Error("Run failed", slog.String("watershed", run.WatershedID), slog.String("error", err.Error()))
			failed++
			continue
		}
		fmt.Printf("%s (%s): %d segments, %d barriers updated in %s\n",
			run.WatershedID, run.Name, summary.Build.Segments, summary.Written.Barriers, summary.Duration)
	}

	if failed > 0 {
		f.Close()
		os.Exit(1)
	}
}
