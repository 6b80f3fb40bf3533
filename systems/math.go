package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// epsilon below which a vector is treated as having no direction.
const epsilon = 1e-9

// clampFloat clamps a value between min and max.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// normalize returns the unit vector of v, or the zero vector when v has no
// length. r3.Unit yields NaN for the zero vector.
func normalize(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n < epsilon {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// clampMagnitude scales v down so its length does not exceed maxLen.
func clampMagnitude(v r3.Vec, maxLen float64) r3.Vec {
	n2 := r3.Norm2(v)
	if n2 <= maxLen*maxLen || n2 == 0 {
		return v
	}
	return r3.Scale(maxLen/math.Sqrt(n2), v)
}

// distanceSq returns the squared distance between two points.
func distanceSq(a, b r3.Vec) float64 {
	return r3.Norm2(r3.Sub(a, b))
}

// inverseSquare returns -offset/|offset|², the repulsion used for separation
// and predator avoidance. Coincident points contribute nothing.
func inverseSquare(offset r3.Vec, distSq float64) r3.Vec {
	if distSq < epsilon {
		return r3.Vec{}
	}
	return r3.Scale(-1/distSq, offset)
}
