package telemetry

import (
	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/genetics"
)

// PopulationSample is the state of the living population at a window
// boundary. Slices are indexed per fish and may be reused by the caller
// after Flush returns.
type PopulationSample struct {
	FishCount     int
	PlanktonCount int

	Fat         []float64
	Mass        []float64
	Age         []float64
	Genes       []genetics.Gene
	Generations []int

	ReadyToBreed int
}

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64
	geneDiffLimit       float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	births          int
	reproductions   int
	respawns        int
	deathsStarved   int
	deathsAged      int
	deathsEaten     int
	planktonEaten   int
	fishEaten       int
	planktonFat     float64
	predationFat    float64
	reproductionFat float64

	// scratch for gene distributions
	adultMass   []float64
	muscleRatio []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
// geneDiffLimit: species threshold used for the cluster estimate
func NewCollector(windowDurationSec, dt, geneDiffLimit float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		geneDiffLimit:       geneDiffLimit,
	}
}

// Record counts a single event into the current window.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventBirth:
		c.births++
	case EventReproduction:
		c.reproductions++
		c.reproductionFat += ev.Amount
	case EventRespawn:
		c.respawns++
	case EventPlanktonEaten:
		c.planktonEaten++
		c.planktonFat += ev.Amount
	case EventFishEaten:
		c.fishEaten++
		c.predationFat += ev.Amount
	case EventDeath:
		switch ev.Cause {
		case components.CauseStarved:
			c.deathsStarved++
		case components.CauseAged:
			c.deathsAged++
		case components.CauseEaten:
			c.deathsEaten++
		}
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, sample PopulationSample) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		FishCount:     sample.FishCount,
		PlanktonCount: sample.PlanktonCount,

		Births:        c.births,
		Reproductions: c.reproductions,
		Respawns:      c.respawns,
		DeathsStarved: c.deathsStarved,
		DeathsAged:    c.deathsAged,
		DeathsEaten:   c.deathsEaten,
		PlanktonEaten: c.planktonEaten,
		FishEaten:     c.fishEaten,
		ReadyToBreed:  sample.ReadyToBreed,

		PlanktonFat:     c.planktonFat,
		PredationFat:    c.predationFat,
		ReproductionFat: c.reproductionFat,
	}

	fat := ComputeDistribution(sample.Fat)
	stats.FatMean = fat.Mean
	stats.FatP10 = fat.P10
	stats.FatP50 = fat.P50
	stats.FatP90 = fat.P90
	stats.MassMean = ComputeDistribution(sample.Mass).Mean
	stats.AgeMean = ComputeDistribution(sample.Age).Mean

	c.adultMass = c.adultMass[:0]
	c.muscleRatio = c.muscleRatio[:0]
	for _, g := range sample.Genes {
		c.adultMass = append(c.adultMass, g.AdultMass)
		c.muscleRatio = append(c.muscleRatio, g.IdealMuscleRatio)
	}
	am := ComputeDistribution(c.adultMass)
	stats.AdultMassMean = am.Mean
	stats.AdultMassStd = am.Std
	stats.AdultMassP10 = am.P10
	stats.AdultMassP50 = am.P50
	stats.AdultMassP90 = am.P90
	mr := ComputeDistribution(c.muscleRatio)
	stats.MuscleRatioMean = mr.Mean
	stats.MuscleRatioStd = mr.Std
	stats.MuscleRatioP10 = mr.P10
	stats.MuscleRatioP50 = mr.P50
	stats.MuscleRatioP90 = mr.P90

	stats.SpeciesClusters = CountSpeciesClusters(sample.Genes, c.geneDiffLimit)

	for _, g := range sample.Generations {
		if g > stats.MaxGeneration {
			stats.MaxGeneration = g
		}
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.births = 0
	c.reproductions = 0
	c.respawns = 0
	c.deathsStarved = 0
	c.deathsAged = 0
	c.deathsEaten = 0
	c.planktonEaten = 0
	c.fishEaten = 0
	c.planktonFat = 0
	c.predationFat = 0
	c.reproductionFat = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
