package systems

import (
	"math"

	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/genetics"
)

// MetabolicCost returns the fat burned in one tick: a basal term proportional
// to muscle plus a drag term proportional to speed² and boundRadius².
func MetabolicCost(muscle, radius, speed float64, ec *config.EnergyConfig) float64 {
	basal := ec.BasalMetabolismCoeff * muscle
	drag := ec.DragCoeff * speed * speed * radius * radius
	return basal + drag
}

// SpeedLimits returns the maximum and cruising speed for a body.
// Low-muscle, large-bodied fish are slow.
func SpeedLimits(muscle, radius float64, ec *config.EnergyConfig) (maxSpeed, idleSpeed float64) {
	r2 := radius * radius
	if r2 <= 0 {
		return 0, 0
	}
	maxSpeed = ec.MaxSpeedCoeff * math.Sqrt(math.Max(muscle, 0)) / r2
	idleSpeed = ec.IdleSpeedCoeff * muscle / r2
	return maxSpeed, idleSpeed
}

// BoundRadius maps mass to body size. It is monotonic in mass.
func BoundRadius(mass float64, bc *config.BodyConfig) float64 {
	return math.Max(bc.MinRadius, bc.RadiusCoeff*math.Cbrt(mass))
}

// GrowthReserve is the fat a fish keeps back from growth: a fraction of
// the fat it carries as an adult.
func GrowthReserve(gene genetics.Gene, ec *config.EnergyConfig) float64 {
	return gene.AdultMass * (1 - gene.IdealMuscleRatio) * ec.GrowthReserve
}

// Grow converts fat into muscle while the fish is below its adult muscle
// target. Only fat above GrowthReserve is spent, so growth never leaves a
// fish with less than the reserve. Returns the muscle gained.
func Grow(e *components.Energy, gene genetics.Gene, ec *config.EnergyConfig) float64 {
	if ec.GrowthRate <= 0 || ec.GrowthEfficiency <= 0 {
		return 0
	}
	target := gene.AdultMass * gene.IdealMuscleRatio * (1 + ec.GrowthMargin)
	if e.Muscle >= target {
		return 0
	}
	gain := math.Min(ec.GrowthRate, target-e.Muscle)
	cost := gain / ec.GrowthEfficiency
	if e.Fat-cost < GrowthReserve(gene, ec) {
		return 0
	}
	e.Fat -= cost
	e.Muscle += gain
	return gain
}

// RefreshBody recomputes the derived state of a fish after its fat or
// muscle changed: mass, bound radius and speed limits.
func RefreshBody(e *components.Energy, body *components.Body, cfg *config.Config) {
	e.Mass = e.Fat + e.Muscle
	body.Radius = BoundRadius(e.Mass, &cfg.Body)
	e.MaxSpeed, e.IdleSpeed = SpeedLimits(e.Muscle, body.Radius, &cfg.Energy)
}

// UpdateEnergy ages a fish by dt seconds, applies one tick of metabolism
// and growth, and refreshes its body. Fat may end negative; the death
// check runs separately. Returns the metabolic cost charged.
func UpdateEnergy(
	e *components.Energy,
	body *components.Body,
	gene genetics.Gene,
	speed float64,
	dt float64,
	cfg *config.Config,
) float64 {
	if !e.Alive {
		return 0
	}

	e.Age += dt

	cost := MetabolicCost(e.Muscle, body.Radius, speed, &cfg.Energy)
	e.Fat -= cost

	Grow(e, gene, &cfg.Energy)
	RefreshBody(e, body, cfg)

	return cost
}
