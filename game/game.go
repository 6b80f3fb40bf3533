// Package game owns the population and runs the simulation tick.
package game

import (
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/systems"
	"github.com/pthm-cable/shoal/telemetry"
)

// Options configures a new game instance.
type Options struct {
	Seed           int64
	Config         *config.Config // nil = config.Cfg()
	LogStats       bool           // output stats via slog
	StatsWindowSec float64        // stats window in seconds, 0 = use config
	OutputDir      string         // directory for CSV output, empty = disabled
	Workers        int            // sense/steer goroutines, 0 = GOMAXPROCS
	StatsCallback  func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand
	seed  int64

	// Fish
	fishMapper *ecs.Map6[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Body,
		components.Energy,
		components.Organism,
	]
	fishFilter *ecs.Filter6[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Body,
		components.Energy,
		components.Organism,
	]

	// Plankton
	planktonMapper *ecs.Map2[components.Position, components.Food]
	planktonFilter *ecs.Filter2[components.Position, components.Food]
	foodMap        *ecs.Map1[components.Food]
	energyMap      *ecs.Map1[components.Energy]

	// Environment
	tank          *systems.Tank
	steering      *systems.Steering
	planktonField *systems.PlanktonField
	fishGrid      *systems.SpatialGrid
	planktonGrid  *systems.SpatialGrid

	// Per-tick snapshot, indexed by population order
	agents      []systems.Agent
	fishEnts    []ecs.Entity
	planktonEnt []ecs.Entity
	births      []systems.Offspring
	dead        []deadFish
	eaten       []ecs.Entity

	parallel *parallelState

	// Telemetry
	collector        *telemetry.Collector
	lifetimeTracker  *telemetry.LifetimeTracker
	bookmarkDetector *telemetry.BookmarkDetector
	perfCollector    *telemetry.PerfCollector
	outputManager    *telemetry.OutputManager
	hallOfFame       *telemetry.HallOfFame
	statsCallback    func(telemetry.WindowStats)
	logStats         bool
	sample           telemetry.PopulationSample

	// State
	tick        int32
	nextID      uint32
	numFish     int
	numPlankton int
}

// NewGameWithOptions creates a new game instance and spawns the founders
// and the initial plankton bloom.
func NewGameWithOptions(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(opts.Seed))
	tank := systems.NewTank(&cfg.World)

	g := &Game{
		cfg:   cfg,
		world: world,
		rng:   rng,
		seed:  opts.Seed,
		fishMapper: ecs.NewMap6[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Body,
			components.Energy,
			components.Organism,
		](world),
		fishFilter: ecs.NewFilter6[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Body,
			components.Energy,
			components.Organism,
		](world),
		planktonMapper: ecs.NewMap2[components.Position, components.Food](world),
		planktonFilter: ecs.NewFilter2[components.Position, components.Food](world),
		foodMap:        ecs.NewMap1[components.Food](world),
		energyMap:      ecs.NewMap1[components.Energy](world),

		tank:          tank,
		steering:      systems.NewSteering(&cfg.Steering),
		planktonField: systems.NewPlanktonField(opts.Seed, &cfg.Plankton, tank),
		fishGrid:      systems.NewSpatialGrid(cfg.World.Width, cfg.World.Height, cfg.World.Depth, cfg.Physics.GridCellSize),
		planktonGrid:  systems.NewSpatialGrid(cfg.World.Width, cfg.World.Height, cfg.World.Depth, cfg.Physics.GridCellSize),

		parallel: newParallelState(opts.Workers),

		collector:        telemetry.NewCollector(statsWindow, cfg.Physics.DT, cfg.Lifecycle.GeneDiffLimit),
		lifetimeTracker:  telemetry.NewLifetimeTracker(),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize, cfg.Bookmarks),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		hallOfFame:       telemetry.NewHallOfFame(cfg.HallOfFame, rand.New(rand.NewSource(opts.Seed+1))),
		statsCallback:    opts.StatsCallback,
		logStats:         opts.LogStats,

		nextID: 1, // 0 means "no parent"
	}

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			slog.Error("failed to create output manager", "error", err)
		} else {
			g.outputManager = om
			if err := om.WriteConfig(cfg); err != nil {
				slog.Error("failed to write config", "error", err)
			}
		}
	}

	g.spawnInitialPopulation()
	g.spawnInitialPlankton()

	return g
}

// UpdateHeadless runs a single simulation tick.
func (g *Game) UpdateHeadless() {
	g.simulationStep()
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// FishCount returns the number of living fish.
func (g *Game) FishCount() int {
	return g.numFish
}

// PlanktonCount returns the number of plankton particles.
func (g *Game) PlanktonCount() int {
	return g.numPlankton
}

// HallOfFame returns the store of successful genes.
func (g *Game) HallOfFame() *telemetry.HallOfFame {
	return g.hallOfFame
}

// Unload stops workers, writes final output and closes files.
func (g *Game) Unload() {
	g.stopParallelWorkers()

	if g.outputManager != nil {
		if err := g.outputManager.WriteHallOfFame(g.hallOfFame); err != nil {
			slog.Error("failed to write hall of fame", "error", err)
		}
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
		g.outputManager = nil
	}
}
