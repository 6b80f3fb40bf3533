package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot (a run subdirectory is created)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	workers := flag.Int("workers", 0, "Sense/steer goroutines (0 = GOMAXPROCS)")

	flag.Parse()

	runID := uuid.NewString()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("run", runID)
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	runDir := ""
	if *outputDir != "" {
		runDir = filepath.Join(*outputDir, runID)
	}

	g := game.NewGameWithOptions(game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      runDir,
		Workers:        *workers,
	})
	defer g.Unload()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting simulation",
		"seed", rngSeed,
		"fish", g.FishCount(),
		"plankton", g.PlanktonCount(),
		"max_ticks", *maxTicks,
		"ticks_per_window", config.Cfg().Derived.TicksPerWindow,
		"output_dir", runDir,
	)

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("interrupted", "tick", g.Tick())
			return
		default:
		}

		g.UpdateHeadless()

		if g.FishCount() == 0 {
			slog.Info("population extinct", "tick", g.Tick())
			return
		}
		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			slog.Info("max ticks reached",
				"tick", g.Tick(),
				"fish", g.FishCount(),
				"elapsed", time.Since(start).Round(time.Millisecond).String(),
			)
			return
		}
	}
}
