package telemetry

import (
	"encoding/json"
	"math/rand"
	"sort"

	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/genetics"
)

// HallEntry represents a successful fish's gene and fitness.
type HallEntry struct {
	Gene       genetics.Gene `json:"gene"`
	Fitness    float64       `json:"fitness"`
	EntityID   uint32        `json:"entity_id"`
	Generation int           `json:"generation"`
	Children   int           `json:"children"`
	FishEaten  int           `json:"fish_eaten"`
	Plankton   int           `json:"plankton_eaten"`
	Survival   float64       `json:"survival_sec"`
}

// HallOfFame stores proven genes for reseeding when the population crashes.
type HallOfFame struct {
	cfg     config.HallOfFameConfig
	hall    []HallEntry
	maxSize int
	rng     *rand.Rand
}

// NewHallOfFame creates a new hall of fame.
func NewHallOfFame(cfg config.HallOfFameConfig, rng *rand.Rand) *HallOfFame {
	return &HallOfFame{
		cfg:     cfg,
		hall:    make([]HallEntry, 0, cfg.Size),
		maxSize: cfg.Size,
		rng:     rng,
	}
}

// Consider evaluates a dead fish for hall of fame entry.
// Returns true if the fish was added to the hall.
func (hof *HallOfFame) Consider(entityID uint32, stats *LifetimeStats) bool {
	if stats == nil || hof.maxSize <= 0 || !hof.meetsEntryCriteria(stats) {
		return false
	}

	entry := HallEntry{
		Gene:       stats.Gene,
		Fitness:    hof.calculateFitness(stats),
		EntityID:   entityID,
		Generation: stats.Generation,
		Children:   stats.Children,
		FishEaten:  stats.FishEaten,
		Plankton:   stats.PlanktonEaten,
		Survival:   stats.SurvivalTimeSec,
	}

	var added bool
	hof.hall, added = hof.insertEntry(hof.hall, entry)
	return added
}

// meetsEntryCriteria checks if a fish qualifies for the hall.
func (hof *HallOfFame) meetsEntryCriteria(stats *LifetimeStats) bool {
	// Primary criterion: reproduced
	if hof.cfg.Entry.MinChildren > 0 && stats.Children >= hof.cfg.Entry.MinChildren {
		return true
	}
	return stats.SurvivalTimeSec >= hof.cfg.Entry.MinSurvivalSec
}

// calculateFitness computes the weighted fitness score.
func (hof *HallOfFame) calculateFitness(stats *LifetimeStats) float64 {
	w := hof.cfg.Fitness
	return float64(stats.Children)*w.ChildrenWeight +
		stats.SurvivalTimeSec*w.SurvivalWeight +
		float64(stats.FishEaten)*w.PreyWeight
}

// insertEntry adds an entry to the hall, maintaining sorted order by fitness.
// If the hall is full, the lowest-fitness entry is removed.
func (hof *HallOfFame) insertEntry(hall []HallEntry, entry HallEntry) ([]HallEntry, bool) {
	// Find insertion point (sorted descending by fitness)
	idx := sort.Search(len(hall), func(i int) bool {
		return hall[i].Fitness < entry.Fitness
	})

	// If hall is full and entry would be last (lowest), skip it
	if len(hall) >= hof.maxSize && idx >= hof.maxSize {
		return hall, false
	}

	hall = append(hall, HallEntry{})
	copy(hall[idx+1:], hall[idx:])
	hall[idx] = entry

	if len(hall) > hof.maxSize {
		hall = hall[:hof.maxSize]
	}

	return hall, true
}

// Sample selects a gene from the hall using tournament selection.
// ok is false if the hall is empty.
func (hof *HallOfFame) Sample() (gene genetics.Gene, ok bool) {
	if len(hof.hall) == 0 {
		return genetics.Gene{}, false
	}

	// Tournament selection with k=3
	const tournamentSize = 3
	best := -1
	for i := 0; i < tournamentSize; i++ {
		idx := hof.rng.Intn(len(hof.hall))
		if best < 0 || hof.hall[idx].Fitness > hof.hall[best].Fitness {
			best = idx
		}
	}

	return hof.hall[best].Gene.Copy(), true
}

// Size returns the number of entries.
func (hof *HallOfFame) Size() int {
	return len(hof.hall)
}

// TopFitness returns the highest fitness in the hall, or 0 if it is empty.
func (hof *HallOfFame) TopFitness() float64 {
	if len(hof.hall) == 0 {
		return 0
	}
	return hof.hall[0].Fitness
}

// MarshalJSON serializes the entries, best first.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(hof.hall, "", "  ")
}
