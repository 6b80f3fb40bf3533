package systems

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/config"
)

// maxSpawnAttempts bounds rejection sampling per spawned particle.
const maxSpawnAttempts = 8

// PlanktonField decides where plankton appears. A slowly drifting simplex
// noise field sets the local bloom density; candidate positions are
// rejected in proportion to it.
type PlanktonField struct {
	noise opensimplex.Noise
	cfg   *config.PlanktonConfig
	tank  *Tank
	time  float64
}

// NewPlanktonField creates a field over tank seeded for reproducibility.
func NewPlanktonField(seed int64, pc *config.PlanktonConfig, tank *Tank) *PlanktonField {
	return &PlanktonField{
		noise: opensimplex.NewNormalized(seed),
		cfg:   pc,
		tank:  tank,
	}
}

// Advance moves the bloom pattern forward by dt seconds.
func (f *PlanktonField) Advance(dt float64) {
	f.time += dt * f.cfg.NoiseSpeed
}

// Density returns the bloom density at p in [0, 1].
func (f *PlanktonField) Density(p r3.Vec) float64 {
	s := f.cfg.NoiseScale
	n := f.noise.Eval4(p.X*s, p.Y*s, p.Z*s, f.time)
	if f.cfg.BloomContrast > 0 {
		n = math.Pow(n, f.cfg.BloomContrast)
	}
	return clampFloat(n, 0, 1)
}

// SpawnCount returns how many particles to spawn this tick: the integer
// part of the spawn rate plus one more with probability equal to the
// fractional part.
func (f *PlanktonField) SpawnCount(rng *rand.Rand) int {
	whole, frac := math.Modf(f.cfg.SpawnRate)
	n := int(whole)
	if rng.Float64() < frac {
		n++
	}
	return n
}

// Sample draws a spawn position inside the surface band, favoring dense
// bloom regions. It reports false when every attempt was rejected.
func (f *PlanktonField) Sample(rng *rand.Rand, radius float64) (r3.Vec, bool) {
	size := f.tank.Size
	bandLo := math.Max(0, size.Y-f.cfg.SpawnDepth)

	for range maxSpawnAttempts {
		p := r3.Vec{
			X: rng.Float64() * size.X,
			Y: bandLo + rng.Float64()*(size.Y-bandLo),
			Z: rng.Float64() * size.Z,
		}
		if !f.tank.Contains(p, radius) {
			continue
		}
		if rng.Float64() < f.Density(p) {
			return p, true
		}
	}
	return r3.Vec{}, false
}
