package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/genetics"
)

// IsReproductive reports whether a fish has reached its adult muscle target
// and banked enough surplus fat to fund an offspring.
func IsReproductive(fat, muscle float64, gene genetics.Gene, childAdultRatio float64) bool {
	requiredFat := childAdultRatio * gene.AdultMass
	return muscle > gene.AdultMass*gene.IdealMuscleRatio &&
		fat > gene.AdultMass*(1-gene.IdealMuscleRatio)+requiredFat
}

// IsPrey reports whether a fish of predatorMass can eat one of preyMass.
// The relation is asymmetric and never mutual.
func IsPrey(predatorMass, preyMass, predationMassRatio float64) bool {
	return predatorMass*predationMassRatio > preyMass
}

// Offspring describes a fish to be spawned at the end of the tick.
type Offspring struct {
	Gene       genetics.Gene
	Fat        float64
	Muscle     float64
	Pos        r3.Vec
	Heading    r3.Vec
	ParentA    uint32
	ParentB    uint32
	Generation int
}

// Reproduce builds an offspring of parents A and B and debits parent A.
// The child gene is A's gene recombined with B's; its starting composition
// comes from A's gene. A pays (fat+muscle)/birthEfficiency.
func Reproduce(
	parentA *components.Energy,
	orgA, orgB *components.Organism,
	pos, heading r3.Vec,
	lc *config.LifecycleConfig,
	rng genetics.RNG,
) Offspring {
	gene := orgA.Gene.Copy()
	gene.Mutate(orgB.Gene, lc.MutationRate, rng)

	a := orgA.Gene
	child := Offspring{
		Gene:       gene,
		Fat:        lc.ChildAdultRatio * a.AdultMass * (1 - a.IdealMuscleRatio),
		Muscle:     lc.ChildAdultRatio * a.AdultMass * a.IdealMuscleRatio,
		Pos:        pos,
		Heading:    heading,
		ParentA:    orgA.ID,
		ParentB:    orgB.ID,
		Generation: max(orgA.Generation, orgB.Generation) + 1,
	}

	parentA.Fat -= (child.Fat + child.Muscle) / lc.BirthEfficiency
	return child
}

// CheckDeath marks a fish dead if it has starved (fat < 0) or outlived
// maxAge (strictly greater). Returns the cause, or CauseNone if alive.
func CheckDeath(e *components.Energy, maxAge float64) components.DeathCause {
	if !e.Alive {
		return e.Cause
	}
	switch {
	case e.Fat < 0:
		e.Cause = components.CauseStarved
	case e.Age > maxAge:
		e.Cause = components.CauseAged
	default:
		return components.CauseNone
	}
	e.Alive = false
	return e.Cause
}

// ConsumePlankton credits a fish with a plankton particle.
// Returns the fat gained.
func ConsumePlankton(e *components.Energy, food *components.Food, ec *config.EnergyConfig) float64 {
	if !e.Alive || food.Eaten {
		return 0
	}
	gain := ec.PredationEfficiency * food.Mass
	e.Fat += gain
	food.Eaten = true
	return gain
}

// ConsumeFish lets a predator eat a prey fish whole. The prey dies with
// CauseEaten. Returns the fat gained.
func ConsumeFish(predator, prey *components.Energy, ec *config.EnergyConfig) float64 {
	if !predator.Alive || !prey.Alive {
		return 0
	}
	gain := ec.PredationEfficiency * prey.Mass
	predator.Fat += gain
	prey.Alive = false
	prey.Cause = components.CauseEaten
	return gain
}
