package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/game"
	"github.com/pthm-cable/shoal/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	// Best run tracking
	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	lastQuality    float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 10.0, // 10 seconds per window
		bestFitness: math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame from the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// A population below minViablePop for extinctionGraceSec counts as extinct.
const (
	minViablePop       = 4
	extinctionGraceSec = 20.0
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int32                   // ticks before functional extinction (or maxTicks if survived)
	windowStats   []telemetry.WindowStats // collected via StatsCallback each window
	hallOfFame    *telemetry.HallOfFame
}

type seedResult struct {
	fitness    float64
	quality    float64
	hallOfFame *telemetry.HallOfFame
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			quality := computeQuality(result.windowStats)
			results[idx] = seedResult{
				fitness:    computeFitness(result.survivalTicks, quality),
				quality:    quality,
				hallOfFame: result.hallOfFame,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	bestSeedFitness := math.Inf(1)
	var bestSeedHallOfFame *telemetry.HallOfFame

	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		if r.fitness < bestSeedFitness {
			bestSeedFitness = r.fitness
			bestSeedHallOfFame = r.hallOfFame
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestHallOfFame = bestSeedHallOfFame
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless run until functional extinction
// or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	// Respawn would mask extinction.
	cfg.Population.RespawnThreshold = 0

	result := &runResult{}

	g := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		StatsWindowSec: fe.statsWindow,
		Config:         cfg,
		Workers:        1, // seeds already run concurrently
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	defer g.Unload()

	dt := cfg.Physics.DT
	graceTicks := int32(extinctionGraceSec / dt)
	warmupTicks := int32(5.0 / dt)
	var belowTicks int32

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()

		tick := g.Tick()
		fish := g.FishCount()
		if fish == 0 {
			result.survivalTicks = tick
			result.hallOfFame = g.HallOfFame()
			return result
		}
		if tick < warmupTicks {
			continue
		}

		if fish < minViablePop {
			belowTicks++
		} else {
			belowTicks = 0
		}
		if belowTicks >= graceTicks {
			result.survivalTicks = tick
			result.hallOfFame = g.HallOfFame()
			return result
		}
	}

	result.survivalTicks = fe.maxTicks
	result.hallOfFame = g.HallOfFame()
	return result
}

// computeFitness is -(survivalTicks × (1 + 0.2 × quality)). Survival
// dominates; quality separates configs with similar survival.
func computeFitness(survivalTicks int32, quality float64) float64 {
	return -(float64(survivalTicks) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightDiversity = 0.35
	qualityWeightStability = 0.25
	qualityWeightEnergy    = 0.20
	qualityWeightTurnover  = 0.20

	qualityWarmupWindows = 3 // skip first N windows
	qualityMinPop        = 4 // exclude windows below this population
	targetSpecies        = 4.0
)

// computeQuality scores a run in [0, 1] from its window stats: several
// coexisting species, a steady population, healthy fat reserves and
// ongoing reproduction.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	var diversitySum, energySum, turnoverSum float64
	var count int
	counts := make([]float64, 0, len(windows))

	for _, w := range windows[qualityWarmupWindows:] {
		if w.FishCount < qualityMinPop {
			continue
		}
		counts = append(counts, float64(w.FishCount))

		diversitySum += 1 - math.Exp(-float64(w.SpeciesClusters)/targetSpecies)

		energySum += math.Exp(-math.Pow((w.FatP50-0.5)/0.3, 2))

		birthsPerFish := float64(w.Births) / float64(w.FishCount)
		turnoverSum += 1 - math.Exp(-birthsPerFish/0.2)

		count++
	}

	if count == 0 {
		return 0
	}

	stabilityScore := 0.0
	if len(counts) >= 2 {
		mean, std := stat.PopMeanStdDev(counts, nil)
		if mean > 0 {
			cv := std / mean
			stabilityScore = math.Exp(-cv * cv)
		}
	}

	n := float64(count)
	quality := qualityWeightDiversity*diversitySum/n +
		qualityWeightStability*stabilityScore +
		qualityWeightEnergy*energySum/n +
		qualityWeightTurnover*turnoverSum/n

	return min(max(quality, 0), 1)
}
