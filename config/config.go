// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Body       BodyConfig       `yaml:"body"`
	Perception PerceptionConfig `yaml:"perception"`
	Steering   SteeringConfig   `yaml:"steering"`
	Energy     EnergyConfig     `yaml:"energy"`
	Lifecycle  LifecycleConfig  `yaml:"lifecycle"`
	Population PopulationConfig `yaml:"population"`
	Plankton   PlanktonConfig   `yaml:"plankton"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Bookmarks  BookmarksConfig  `yaml:"bookmarks"`
	HallOfFame HallOfFameConfig `yaml:"hall_of_fame"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig describes the tank: an axis-aligned box from the origin to
// (Width, Height, Depth) plus static spherical rocks.
type WorldConfig struct {
	Width     float64          `yaml:"width"`
	Height    float64          `yaml:"height"`
	Depth     float64          `yaml:"depth"`
	Obstacles []ObstacleConfig `yaml:"obstacles"`
}

// ObstacleConfig is a static sphere inside the tank.
type ObstacleConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Z      float64 `yaml:"z"`
	Radius float64 `yaml:"radius"`
}

// PhysicsConfig holds simulation physics parameters.
type PhysicsConfig struct {
	DT           float64 `yaml:"dt"`
	GridCellSize float64 `yaml:"grid_cell_size"`
	WallBounce   float64 `yaml:"wall_bounce"` // fraction of normal velocity kept on wall contact
}

// BodyConfig maps mass to physical size.
type BodyConfig struct {
	RadiusCoeff    float64 `yaml:"radius_coeff"` // boundRadius = radius_coeff * cbrt(mass)
	MinRadius      float64 `yaml:"min_radius"`
	PlanktonRadius float64 `yaml:"plankton_radius"`
}

// PerceptionConfig holds sensing parameters.
type PerceptionConfig struct {
	ViewingRange   float64 `yaml:"viewing_range"`
	CaptureEpsilon float64 `yaml:"capture_epsilon"` // plankton capture radius = boundRadius + this
}

// SteeringConfig holds flocking and avoidance weights.
type SteeringConfig struct {
	AlignWeight         float64 `yaml:"align_weight"`
	CohesionWeight      float64 `yaml:"cohesion_weight"`
	SeparationWeight    float64 `yaml:"separation_weight"`
	MateFollowWeight    float64 `yaml:"mate_follow_weight"`
	PreyChaseWeight     float64 `yaml:"prey_chase_weight"`
	PredatorAvoidWeight float64 `yaml:"predator_avoid_weight"`
	ForageWeight        float64 `yaml:"forage_weight"` // steer toward the nearest plankton
	ObstacleAvoidWeight float64 `yaml:"obstacle_avoid_weight"`
	MaxSteerForce       float64 `yaml:"max_steer_force"`
	ProbeDirections     int     `yaml:"probe_directions"`
	LookaheadTime       float64 `yaml:"lookahead_time"`    // collision probe length = speed * this + boundRadius
	ProbeRadiusMult     float64 `yaml:"probe_radius_mult"` // avoidance ray length adds boundRadius * this
}

// EnergyConfig holds metabolic parameters. Depletion coefficients are per tick.
type EnergyConfig struct {
	BasalMetabolismCoeff float64 `yaml:"basal_metabolism_coeff"`
	DragCoeff            float64 `yaml:"drag_coeff"`
	MaxSpeedCoeff        float64 `yaml:"max_speed_coeff"`
	IdleSpeedCoeff       float64 `yaml:"idle_speed_coeff"`
	PredationEfficiency  float64 `yaml:"predation_efficiency"`
	GrowthRate           float64 `yaml:"growth_rate"`       // muscle gained per tick while below target
	GrowthEfficiency     float64 `yaml:"growth_efficiency"` // fat spent = growth / this
	GrowthMargin         float64 `yaml:"growth_margin"`     // grow until muscle reaches target * (1 + this)
	GrowthReserve        float64 `yaml:"growth_reserve"`    // fat kept back from growth, as a fraction of adult fat
}

// LifecycleConfig holds reproduction, predation and death parameters.
type LifecycleConfig struct {
	MutationRate       float64 `yaml:"mutation_rate"`
	GeneDiffLimit      float64 `yaml:"gene_diff_limit"`
	MaxAge             float64 `yaml:"max_age"` // seconds
	ChildAdultRatio    float64 `yaml:"child_adult_ratio"`
	PredationMassRatio float64 `yaml:"predation_mass_ratio"`
	BirthEfficiency    float64 `yaml:"birth_efficiency"`
	FishPredation      bool    `yaml:"fish_predation"`
	CaptureFactor      float64 `yaml:"capture_factor"` // fish capture distance = (rA+rB) * this
}

// PopulationConfig holds founder spawning parameters.
type PopulationConfig struct {
	Initial          int         `yaml:"initial"`
	SpawnRadius      float64     `yaml:"spawn_radius"`
	InitialFat       float64     `yaml:"initial_fat"`
	InitialMuscle    float64     `yaml:"initial_muscle"`
	RandomGenes      bool        `yaml:"random_genes"`
	FounderGene      FounderGene `yaml:"founder_gene"`
	RespawnThreshold int         `yaml:"respawn_threshold"`
	RespawnCount     int         `yaml:"respawn_count"`
}

// FounderGene is the gene given to founders when RandomGenes is false.
type FounderGene struct {
	AdultMass        float64 `yaml:"adult_mass"`
	IdealMuscleRatio float64 `yaml:"ideal_muscle_ratio"`
}

// PlanktonConfig holds food spawning parameters.
type PlanktonConfig struct {
	Mass          float64 `yaml:"mass"`
	Initial       int     `yaml:"initial"`
	SpawnRate     float64 `yaml:"spawn_rate"` // expected spawns per tick
	MaxCount      int     `yaml:"max_count"`
	SpawnDepth    float64 `yaml:"spawn_depth"` // spawn band measured down from the surface
	NoiseScale    float64 `yaml:"noise_scale"`
	NoiseSpeed    float64 `yaml:"noise_speed"`
	BloomContrast float64 `yaml:"bloom_contrast"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	BookmarkHistorySize int     `yaml:"bookmark_history_size"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	PopulationCrash PopulationCrashConfig `yaml:"population_crash"`
	Speciation      SpeciationConfig      `yaml:"speciation"`
	Boom            BoomConfig            `yaml:"boom"`
}

// PopulationCrashConfig holds crash detection parameters.
type PopulationCrashConfig struct {
	DropPercent float64 `yaml:"drop_percent"`
	MinDrop     int     `yaml:"min_drop"`
}

// SpeciationConfig holds species-count jump detection parameters.
type SpeciationConfig struct {
	MinNewSpecies int `yaml:"min_new_species"`
}

// BoomConfig holds birth-rate breakthrough detection parameters.
type BoomConfig struct {
	Multiplier float64 `yaml:"multiplier"`
	MinBirths  int     `yaml:"min_births"`
}

// HallOfFameConfig holds parameters for the store of successful genes
// that respawns draw from.
type HallOfFameConfig struct {
	Size    int                     `yaml:"size"`
	Entry   HallOfFameEntryConfig   `yaml:"entry"`
	Fitness HallOfFameFitnessConfig `yaml:"fitness"`
}

// HallOfFameEntryConfig holds the criteria for entering the hall.
type HallOfFameEntryConfig struct {
	MinChildren    int     `yaml:"min_children"`
	MinSurvivalSec float64 `yaml:"min_survival_sec"`
}

// HallOfFameFitnessConfig holds the fitness weights used to rank entries.
type HallOfFameFitnessConfig struct {
	ChildrenWeight float64 `yaml:"children_weight"`
	SurvivalWeight float64 `yaml:"survival_weight"`
	PreyWeight     float64 `yaml:"prey_weight"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TicksPerWindow int32 // Telemetry.StatsWindow / Physics.DT
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.computeDerived()

	return cfg, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.World.Obstacles = append([]ObstacleConfig(nil), c.World.Obstacles...)
	return &out
}

// Validate reports tunables that would make the simulation meaningless.
func (c *Config) Validate() error {
	var errs []error
	if c.World.Width <= 0 || c.World.Height <= 0 || c.World.Depth <= 0 {
		errs = append(errs, fmt.Errorf("world: tank dimensions must be positive, got %vx%vx%v",
			c.World.Width, c.World.Height, c.World.Depth))
	}
	if c.Physics.DT <= 0 {
		errs = append(errs, fmt.Errorf("physics.dt must be positive, got %v", c.Physics.DT))
	}
	if c.Physics.GridCellSize <= 0 {
		errs = append(errs, fmt.Errorf("physics.grid_cell_size must be positive, got %v", c.Physics.GridCellSize))
	}
	if c.Body.RadiusCoeff <= 0 || c.Body.MinRadius <= 0 {
		errs = append(errs, errors.New("body: radius_coeff and min_radius must be positive"))
	}
	if c.Lifecycle.BirthEfficiency <= 0 {
		errs = append(errs, fmt.Errorf("lifecycle.birth_efficiency must be positive, got %v", c.Lifecycle.BirthEfficiency))
	}
	if c.Lifecycle.MaxAge <= 0 {
		errs = append(errs, fmt.Errorf("lifecycle.max_age must be positive, got %v", c.Lifecycle.MaxAge))
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"lifecycle.gene_diff_limit", c.Lifecycle.GeneDiffLimit},
		{"lifecycle.predation_mass_ratio", c.Lifecycle.PredationMassRatio},
		{"lifecycle.capture_factor", c.Lifecycle.CaptureFactor},
		{"energy.predation_efficiency", c.Energy.PredationEfficiency},
		{"energy.growth_reserve", c.Energy.GrowthReserve},
		{"steering.forage_weight", c.Steering.ForageWeight},
	} {
		if f.v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %v", f.name, f.v))
		}
	}
	if c.Lifecycle.MutationRate < 0 || c.Lifecycle.MutationRate > 1 {
		errs = append(errs, fmt.Errorf("lifecycle.mutation_rate must be in [0,1], got %v", c.Lifecycle.MutationRate))
	}
	if c.Energy.GrowthRate > 0 && c.Energy.GrowthEfficiency <= 0 {
		errs = append(errs, errors.New("energy.growth_efficiency must be positive when growth_rate is set"))
	}
	if c.Steering.MaxSteerForce < 0 {
		errs = append(errs, fmt.Errorf("steering.max_steer_force must not be negative, got %v", c.Steering.MaxSteerForce))
	}
	if c.Perception.ViewingRange < 0 {
		errs = append(errs, fmt.Errorf("perception.viewing_range must not be negative, got %v", c.Perception.ViewingRange))
	}
	for i, o := range c.World.Obstacles {
		if o.Radius <= 0 {
			errs = append(errs, fmt.Errorf("world.obstacles[%d]: radius must be positive", i))
		}
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	ticks := int32(c.Telemetry.StatsWindow / c.Physics.DT)
	if ticks < 1 {
		ticks = 1
	}
	c.Derived.TicksPerWindow = ticks

	if c.Steering.ProbeDirections <= 0 {
		c.Steering.ProbeDirections = 300
	}
	if c.Population.FounderGene.AdultMass == 0 {
		c.Population.FounderGene.AdultMass = 0.4
	}
	if c.Population.FounderGene.IdealMuscleRatio == 0 {
		c.Population.FounderGene.IdealMuscleRatio = 0.5
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
