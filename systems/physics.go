package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/components"
)

// IntegrateMotion applies accel to a fish over dt seconds: the velocity is
// clamped to maxSpeed, the position advanced, and the body pushed back out
// of the tank geometry. The heading follows the new velocity and keeps its
// previous value when the fish comes to rest.
func IntegrateMotion(
	pos *components.Position,
	vel *components.Velocity,
	rot *components.Rotation,
	accel r3.Vec,
	maxSpeed, radius, dt, wallBounce float64,
	tank *Tank,
) {
	v := r3.Add(vel.Vec, r3.Scale(dt, accel))
	v = clampMagnitude(v, maxSpeed)

	p := r3.Add(pos.Vec, r3.Scale(dt, v))
	if tank != nil {
		tank.Resolve(&p, &v, radius, wallBounce)
	}

	pos.Vec = p
	vel.Vec = v

	if h := normalize(v); h != (r3.Vec{}) {
		rot.Heading = h
	}
}
