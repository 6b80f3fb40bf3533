package components

import "github.com/pthm-cable/shoal/genetics"

// DeathCause records why a fish left the population.
type DeathCause uint8

const (
	CauseNone DeathCause = iota
	CauseStarved
	CauseAged
	CauseEaten
)

func (c DeathCause) String() string {
	switch c {
	case CauseStarved:
		return "starved"
	case CauseAged:
		return "aged"
	case CauseEaten:
		return "eaten"
	default:
		return "none"
	}
}

// Energy tracks a fish's metabolic state.
// Fat may go negative for the remainder of the tick in which the fish starves.
type Energy struct {
	Fat       float64
	Muscle    float64
	Mass      float64 // fat + muscle
	Age       float64 // seconds alive
	MaxSpeed  float64
	IdleSpeed float64
	Alive     bool
	Cause     DeathCause
}

// Organism bundles identity, genome, and lineage.
type Organism struct {
	ID         uint32
	Gene       genetics.Gene
	Generation int
	ParentID   uint32 // 0 for founders
}
