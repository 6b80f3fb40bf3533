// Package genetics holds the heritable traits of a fish and the rules for
// recombining and comparing them.
package genetics

import (
	"image/color"
	"math"
)

// Trait ranges. Every Gene produced by this package stays inside them.
const (
	MinAdultMass        = 0.1
	MaxAdultMass        = 2.0
	MinIdealMuscleRatio = 0.1
	MaxIdealMuscleRatio = 0.9

	// MutationStep is the half-width of the uniform point mutation.
	MutationStep = 0.1
)

// RNG is the randomness a Gene needs.
type RNG interface {
	Float64() float64
}

// Gene is the heritable trait vector of a fish. It is a value type: copying
// a Gene never aliases another fish's traits.
type Gene struct {
	AdultMass        float64    `json:"adult_mass"`
	IdealMuscleRatio float64    `json:"ideal_muscle_ratio"`
	Color            color.RGBA `json:"-"`
}

// New returns a gene with both traits drawn uniformly from their ranges.
func New(rng RNG) Gene {
	g := Gene{
		AdultMass:        MinAdultMass + rng.Float64()*(MaxAdultMass-MinAdultMass),
		IdealMuscleRatio: MinIdealMuscleRatio + rng.Float64()*(MaxIdealMuscleRatio-MinIdealMuscleRatio),
	}
	g.setColor()
	return g
}

// FromTraits builds a gene from explicit trait values, clamped to range.
func FromTraits(adultMass, idealMuscleRatio float64) Gene {
	g := Gene{
		AdultMass:        clamp(adultMass, MinAdultMass, MaxAdultMass),
		IdealMuscleRatio: clamp(idealMuscleRatio, MinIdealMuscleRatio, MaxIdealMuscleRatio),
	}
	g.setColor()
	return g
}

// Copy returns an independent copy with its color recomputed.
func (g Gene) Copy() Gene {
	out := Gene{AdultMass: g.AdultMass, IdealMuscleRatio: g.IdealMuscleRatio}
	out.setColor()
	return out
}

// Mutate recombines g with other in place: each trait becomes the midpoint
// of the two parents, then with probability rate is nudged by
// U(-MutationStep, MutationStep) and clamped to its range.
func (g *Gene) Mutate(other Gene, rate float64, rng RNG) {
	g.AdultMass = (g.AdultMass + other.AdultMass) / 2
	if rng.Float64() < rate {
		g.AdultMass = clamp(g.AdultMass+uniform(rng, MutationStep), MinAdultMass, MaxAdultMass)
	}

	g.IdealMuscleRatio = (g.IdealMuscleRatio + other.IdealMuscleRatio) / 2
	if rng.Float64() < rate {
		g.IdealMuscleRatio = clamp(g.IdealMuscleRatio+uniform(rng, MutationStep), MinIdealMuscleRatio, MaxIdealMuscleRatio)
	}

	g.setColor()
}

// IsSameSpecies reports whether both traits differ by strictly less than limit.
// The relation is not transitive and there is no species registry.
func (g Gene) IsSameSpecies(other Gene, limit float64) bool {
	return math.Abs(g.AdultMass-other.AdultMass) < limit &&
		math.Abs(g.IdealMuscleRatio-other.IdealMuscleRatio) < limit
}

// Hue returns the display hue in [0, 1).
func (g Gene) Hue() float64 {
	h := math.Mod(g.AdultMass+g.IdealMuscleRatio, 1.0)
	if h < 0 {
		h += 1
	}
	return h
}

func (g *Gene) setColor() {
	g.Color = HSVToRGB(g.Hue(), 1, 1)
}

// HSVToRGB converts hue, saturation and value in [0, 1] to an opaque color.
func HSVToRGB(h, s, v float64) color.RGBA {
	h = math.Mod(h, 1.0) * 6
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, gr, b float64
	switch int(i) {
	case 0:
		r, gr, b = v, t, p
	case 1:
		r, gr, b = q, v, p
	case 2:
		r, gr, b = p, v, t
	case 3:
		r, gr, b = p, q, v
	case 4:
		r, gr, b = t, p, v
	default:
		r, gr, b = v, p, q
	}

	return color.RGBA{
		R: uint8(math.Round(r * 255)),
		G: uint8(math.Round(gr * 255)),
		B: uint8(math.Round(b * 255)),
		A: 255,
	}
}

func uniform(rng RNG, halfWidth float64) float64 {
	return (rng.Float64()*2 - 1) * halfWidth
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
