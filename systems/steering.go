package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/config"
)

// SteerTowards returns the bounded correction that turns vel toward dir at
// the given speed: clampMagnitude(unit(dir)*speed - vel, maxForce).
// A zero dir steers toward rest.
func SteerTowards(dir, vel r3.Vec, speed, maxForce float64) r3.Vec {
	return clampMagnitude(r3.Sub(r3.Scale(speed, normalize(dir)), vel), maxForce)
}

// Steering blends perception cues into one acceleration. It owns the
// precomputed obstacle probe directions and is safe for concurrent use.
type Steering struct {
	cfg  *config.SteeringConfig
	dirs []r3.Vec
}

// NewSteering precomputes the probe directions for cfg.
func NewSteering(cfg *config.SteeringConfig) *Steering {
	n := cfg.ProbeDirections
	if n <= 0 {
		n = 300
	}
	return &Steering{cfg: cfg, dirs: ProbeDirections(n)}
}

// Compute returns the acceleration for agent a given its perception.
// Flocking terms always apply; the pursuit terms apply only with a
// non-zero weight and a target. Obstacle avoidance is added on top when
// the forward probe is blocked.
func (s *Steering) Compute(a *Agent, p *Perception, space Space) r3.Vec {
	c := s.cfg
	st := func(dir r3.Vec) r3.Vec {
		return SteerTowards(dir, a.Vel, a.IdleSpeed, c.MaxSteerForce)
	}

	accel := r3.Scale(c.AlignWeight, st(p.AvgFlockHeading))
	accel = r3.Add(accel, r3.Scale(c.CohesionWeight, st(p.CentroidOffset)))
	accel = r3.Add(accel, r3.Scale(c.SeparationWeight, st(p.SeparationHeading)))

	if c.MateFollowWeight != 0 && p.Mate >= 0 {
		accel = r3.Add(accel, r3.Scale(c.MateFollowWeight, st(p.MateOffset)))
	}
	if c.PreyChaseWeight != 0 && p.Prey >= 0 {
		accel = r3.Add(accel, r3.Scale(c.PreyChaseWeight, st(p.PreyOffset)))
	}
	if c.PredatorAvoidWeight != 0 && p.PredatorAvoid != (r3.Vec{}) {
		accel = r3.Add(accel, r3.Scale(c.PredatorAvoidWeight, st(p.PredatorAvoid)))
	}
	if c.ForageWeight != 0 && p.Food >= 0 {
		accel = r3.Add(accel, r3.Scale(c.ForageWeight, st(p.FoodOffset)))
	}

	if space != nil && s.HeadingForCollision(a, space) {
		accel = r3.Add(accel, r3.Scale(c.ObstacleAvoidWeight, st(s.AvoidanceDirection(a, space))))
	}

	return accel
}

// HeadingForCollision sweeps the body forward along its velocity.
func (s *Steering) HeadingForCollision(a *Agent, space Space) bool {
	speed := r3.Norm(a.Vel)
	if speed < epsilon {
		return false
	}
	length := speed*s.cfg.LookaheadTime + a.Radius
	return !space.ProbeDirectionClear(a.Pos, a.Vel, length, a.Radius)
}

// AvoidanceDirection returns the first probe direction, nearest to straight
// ahead, along which the body can move freely. If every probe is blocked
// it returns the reversed velocity.
func (s *Steering) AvoidanceDirection(a *Agent, space Space) r3.Vec {
	ahead := normalize(a.Vel)
	if ahead == (r3.Vec{}) {
		ahead = normalize(a.Heading)
	}
	if ahead == (r3.Vec{}) {
		ahead = forward
	}

	length := r3.Norm(a.Vel)*s.cfg.LookaheadTime + a.Radius*s.cfg.ProbeRadiusMult
	for _, d := range s.dirs {
		dir := alignFromForward(d, ahead)
		if space.ProbeDirectionClear(a.Pos, dir, length, a.Radius) {
			return dir
		}
	}
	return r3.Scale(-1, a.Vel)
}
