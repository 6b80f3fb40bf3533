package telemetry

import "github.com/pthm-cable/shoal/genetics"

// LifetimeStats tracks per-fish statistics over its lifetime.
type LifetimeStats struct {
	BirthTick       int32
	SurvivalTimeSec float64

	// Lineage
	Gene       genetics.Gene
	Generation int
	ParentID   uint32

	// Reproduction
	Children int

	// Feeding
	PlanktonEaten int
	FishEaten     int
	TotalForaged  float64 // cumulative fat gained from eating

	PeakMass float64
}

// LifetimeTracker manages per-fish lifetime statistics.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new fish.
func (lt *LifetimeTracker) Register(entityID uint32, birthTick int32, gene genetics.Gene, generation int, parentID uint32) {
	lt.stats[entityID] = &LifetimeStats{
		BirthTick:  birthTick,
		Gene:       gene,
		Generation: generation,
		ParentID:   parentID,
	}
}

// Get returns the lifetime stats for a fish, or nil if not found.
func (lt *LifetimeTracker) Get(entityID uint32) *LifetimeStats {
	return lt.stats[entityID]
}

// Remove removes a fish's stats and returns them.
func (lt *LifetimeTracker) Remove(entityID uint32) *LifetimeStats {
	stats := lt.stats[entityID]
	delete(lt.stats, entityID)
	return stats
}

// Record folds an event into the stats of the fish it concerns.
// Both parents of a reproduction are credited with the child.
func (lt *LifetimeTracker) Record(ev Event) {
	switch ev.Type {
	case EventReproduction:
		lt.RecordChild(ev.EntityID)
		lt.RecordChild(ev.TargetID)
	case EventPlanktonEaten:
		if s := lt.stats[ev.EntityID]; s != nil {
			s.PlanktonEaten++
			s.TotalForaged += ev.Amount
		}
	case EventFishEaten:
		if s := lt.stats[ev.EntityID]; s != nil {
			s.FishEaten++
			s.TotalForaged += ev.Amount
		}
	}
}

// RecordChild increments children count.
func (lt *LifetimeTracker) RecordChild(parentID uint32) {
	if s := lt.stats[parentID]; s != nil {
		s.Children++
	}
}

// UpdateMass tracks peak mass.
func (lt *LifetimeTracker) UpdateMass(entityID uint32, mass float64) {
	if s := lt.stats[entityID]; s != nil {
		if mass > s.PeakMass {
			s.PeakMass = mass
		}
	}
}

// UpdateSurvivalTime updates the survival time based on current tick.
func (lt *LifetimeTracker) UpdateSurvivalTime(entityID uint32, currentTick int32, dt float64) {
	if s := lt.stats[entityID]; s != nil {
		s.SurvivalTimeSec = float64(currentTick-s.BirthTick) * dt
	}
}

// Count returns the number of tracked fish.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
