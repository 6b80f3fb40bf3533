package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/config"
)

// Space is static geometry that fish steer around.
type Space interface {
	// ProbeDirectionClear reports whether a sphere of radius thickness swept
	// from origin along dir for length hits nothing.
	ProbeDirectionClear(origin, dir r3.Vec, length, thickness float64) bool
}

// Rock is a static spherical obstacle.
type Rock struct {
	Center r3.Vec
	Radius float64
}

// Tank is an axis-aligned box from the origin to Size containing rocks.
type Tank struct {
	Size  r3.Vec
	Rocks []Rock
}

// NewTank builds the tank described by the world config.
func NewTank(wc *config.WorldConfig) *Tank {
	t := &Tank{Size: r3.Vec{X: wc.Width, Y: wc.Height, Z: wc.Depth}}
	for _, o := range wc.Obstacles {
		t.Rocks = append(t.Rocks, Rock{Center: r3.Vec{X: o.X, Y: o.Y, Z: o.Z}, Radius: o.Radius})
	}
	return t
}

// Center returns the middle of the tank.
func (t *Tank) Center() r3.Vec {
	return r3.Scale(0.5, t.Size)
}

// Contains reports whether a sphere of the given radius at p lies inside
// the walls and outside every rock.
func (t *Tank) Contains(p r3.Vec, radius float64) bool {
	if p.X < radius || p.Y < radius || p.Z < radius ||
		p.X > t.Size.X-radius || p.Y > t.Size.Y-radius || p.Z > t.Size.Z-radius {
		return false
	}
	for _, rock := range t.Rocks {
		reach := rock.Radius + radius
		if distanceSq(p, rock.Center) < reach*reach {
			return false
		}
	}
	return true
}

// ProbeDirectionClear implements Space. The box is convex, so the sweep
// clears the walls exactly when its end point does; a sweep heading back
// in from a wall the sphere already touches is clear. Rocks the sphere
// already overlaps at origin are ignored.
func (t *Tank) ProbeDirectionClear(origin, dir r3.Vec, length, thickness float64) bool {
	dir = normalize(dir)
	end := r3.Add(origin, r3.Scale(length, dir))

	if hitsWall(end.X, dir.X, thickness, t.Size.X-thickness) ||
		hitsWall(end.Y, dir.Y, thickness, t.Size.Y-thickness) ||
		hitsWall(end.Z, dir.Z, thickness, t.Size.Z-thickness) {
		return false
	}

	for _, rock := range t.Rocks {
		reach := rock.Radius + thickness
		if distanceSq(origin, rock.Center) < reach*reach {
			continue
		}
		if segmentDistSq(origin, end, rock.Center) < reach*reach {
			return false
		}
	}
	return true
}

func hitsWall(end, dir, lo, hi float64) bool {
	return (end < lo && dir < 0) || (end > hi && dir > 0)
}

// Resolve pushes a sphere out of the walls and rocks and removes the
// velocity component driving it inward. bounce is the fraction of that
// component kept, reflected.
func (t *Tank) Resolve(pos, vel *r3.Vec, radius, bounce float64) {
	resolveAxis(&pos.X, &vel.X, radius, t.Size.X-radius, bounce)
	resolveAxis(&pos.Y, &vel.Y, radius, t.Size.Y-radius, bounce)
	resolveAxis(&pos.Z, &vel.Z, radius, t.Size.Z-radius, bounce)

	for _, rock := range t.Rocks {
		offset := r3.Sub(*pos, rock.Center)
		reach := rock.Radius + radius
		d2 := r3.Norm2(offset)
		if d2 >= reach*reach {
			continue
		}
		normal := normalize(offset)
		if normal == (r3.Vec{}) {
			normal = r3.Vec{Y: 1}
		}
		*pos = r3.Add(rock.Center, r3.Scale(reach, normal))
		if vn := r3.Dot(*vel, normal); vn < 0 {
			*vel = r3.Sub(*vel, r3.Scale((1+bounce)*vn, normal))
		}
	}
}

func resolveAxis(p, v *float64, lo, hi, bounce float64) {
	if lo > hi {
		mid := (lo + hi) / 2
		lo, hi = mid, mid
	}
	if *p < lo {
		*p = lo
		if *v < 0 {
			*v = -*v * bounce
		}
	} else if *p > hi {
		*p = hi
		if *v > 0 {
			*v = -*v * bounce
		}
	}
}

// segmentDistSq returns the squared distance from p to the segment ab.
func segmentDistSq(a, b, p r3.Vec) float64 {
	ab := r3.Sub(b, a)
	l2 := r3.Norm2(ab)
	if l2 == 0 {
		return distanceSq(a, p)
	}
	t := math.Max(0, math.Min(1, r3.Dot(r3.Sub(p, a), ab)/l2))
	return distanceSq(r3.Add(a, r3.Scale(t, ab)), p)
}
