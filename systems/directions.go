package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var forward = r3.Vec{Z: 1}

// ProbeDirections returns n near-uniformly distributed unit directions on a
// golden-angle spiral around +Z, ordered by increasing angle from +Z.
func ProbeDirections(n int) []r3.Vec {
	goldenRatio := (1 + math.Sqrt(5)) / 2
	angleIncrement := 2 * math.Pi * goldenRatio

	dirs := make([]r3.Vec, n)
	for i := range dirs {
		t := float64(i) / float64(n)
		inclination := math.Acos(1 - 2*t)
		azimuth := angleIncrement * float64(i)

		dirs[i] = r3.Vec{
			X: math.Sin(inclination) * math.Cos(azimuth),
			Y: math.Sin(inclination) * math.Sin(azimuth),
			Z: math.Cos(inclination),
		}
	}
	return dirs
}

// alignFromForward rotates d by the rotation that carries +Z onto the unit
// vector to.
func alignFromForward(d, to r3.Vec) r3.Vec {
	cos := clampFloat(r3.Dot(forward, to), -1, 1)
	if cos > 1-epsilon {
		return d
	}
	if cos < -1+epsilon {
		return r3.Rotate(d, math.Pi, r3.Vec{X: 1})
	}
	axis := r3.Cross(forward, to)
	return r3.Rotate(d, math.Acos(cos), axis)
}
