package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"

	"github.com/pelagic-sim/abyss/config"
	"github.com/pelagic-sim/abyss/sim"
	"github.com/pelagic-sim/abyss/telemetry"
	"github.com/pelagic-sim/abyss/ui"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config, which may be time-based)")
	maxTicks := flag.Uint64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	headless := flag.Bool("headless", false, "Run without the terminal viewer, as fast as possible")
	outputDir := flag.String("output-dir", "", "Output directory for CSV stats and config snapshot")
	profileMode := flag.String("profile", "", "Enable profiling: cpu or mem")
	flag.Parse()

	switch *profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	}

	// Structured JSON logs; the viewer owns the terminal, so logs go to
	// stderr where they stay readable after the screen is restored.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *seed != 0 {
		cfg.Seed = *seed
	}

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		logger.Error("failed to set up output", "err", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		logger.Error("failed to snapshot config", "err", err)
	}

	sandbox, err := sim.New(cfg, logger)
	if err != nil {
		logger.Error("failed to build sandbox", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *headless {
		if err := sandbox.Run(ctx, *maxTicks, false, out); err != nil && ctx.Err() == nil {
			logger.Error("run failed", "err", err)
			os.Exit(1)
		}
		return
	}

	viewer, err := ui.New(sandbox)
	if err != nil {
		logger.Error("failed to open viewer", "err", err)
		os.Exit(1)
	}

	runDone := make(chan error, 1)
	go func() {
		runDone <- sandbox.Run(ctx, *maxTicks, true, out)
	}()

	if err := viewer.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("viewer failed", "err", err)
	}
	stop()
	if err := <-runDone; err != nil && err != context.Canceled {
		logger.Error("run failed", "err", err)
		os.Exit(1)
	}
}
