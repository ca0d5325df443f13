// Command courtbot is the entry point for the tennis odds aggregator. It
// loads configuration, applies command-line overrides, wires dependencies,
// sets up signal handling, and starts the application in the configured
// mode.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/courtedge/courtbot/internal/app"
	"github.com/courtedge/courtbot/internal/config"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	mode := flag.String("mode", "", "operating mode override: scan, export, serve, full")
	source := flag.String("source", "", "restrict the pass to one source (demo, oddsapi, oddsportal)")
	format := flag.String("format", "", "export format override: csv, excel, both")
	output := flag.String("output", "", "exact export filename (overrides the timestamped default)")
	outputDir := flag.String("output-dir", "", "export directory override")
	appendCSV := flag.Bool("append", false, "append to the existing CSV export, deduplicating repeated quotes")
	summary := flag.Bool("summary", false, "print a report summary to stdout after a one-shot pass")
	noCalc := flag.Bool("no-calculations", false, "omit derived metric columns from exports")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	// Bootstrap logger; replaced once the configured level is known.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// Command-line flags override environment and file settings.
	if *mode != "" {
		cfg.Mode = *mode
	}
	if *format != "" {
		cfg.Export.Format = *format
	}
	if *outputDir != "" {
		cfg.Export.Dir = *outputDir
	}
	if *appendCSV {
		cfg.Export.Append = true
	}
	if *noCalc {
		cfg.Scan.Calculations = false
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}

	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("courtbot starting",
		slog.String("mode", cfg.Mode),
		slog.String("config", *configPath),
	)

	application := app.New(cfg, app.Options{
		Source:     *source,
		OutputFile: *output,
		Summary:    *summary,
	}, logger)
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		// context.Canceled is expected on clean shutdown.
		if err == context.Canceled {
			logger.Info("application shut down gracefully")
		} else {
			logger.Error("application exited with error",
				slog.String("error", err.Error()),
			)
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
	}

	logger.Info("courtbot stopped")
}
