package systems

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/config"
)

func testTank() *Tank {
	return NewTank(&config.WorldConfig{
		Width: 10, Height: 10, Depth: 10,
		Obstacles: []config.ObstacleConfig{{X: 5, Y: 5, Z: 5, Radius: 1}},
	})
}

func TestProbeDirectionClear(t *testing.T) {
	tank := testTank()

	tests := []struct {
		name      string
		origin    r3.Vec
		dir       r3.Vec
		length    float64
		thickness float64
		want      bool
	}{
		{"into rock", r3.Vec{X: 2, Y: 5, Z: 5}, r3.Vec{X: 1}, 2, 0.1, false},
		{"short of rock", r3.Vec{X: 2, Y: 5, Z: 5}, r3.Vec{X: 1}, 1.5, 0.1, true},
		{"grazing rock", r3.Vec{X: 2, Y: 6.05, Z: 5}, r3.Vec{X: 1}, 6, 0.1, false},
		{"passing rock", r3.Vec{X: 2, Y: 6.2, Z: 5}, r3.Vec{X: 1}, 6, 0.1, true},
		{"into wall", r3.Vec{X: 9, Y: 2, Z: 2}, r3.Vec{X: 1}, 1, 0.1, false},
		{"away from wall", r3.Vec{X: 9, Y: 2, Z: 2}, r3.Vec{X: -1}, 1, 0.1, true},
		{"leaving wall contact", r3.Vec{X: 9.95, Y: 2, Z: 2}, r3.Vec{X: -1}, 1, 0.1, true},
		{"into floor", r3.Vec{X: 2, Y: 0.5, Z: 2}, r3.Vec{Y: -1}, 1, 0.1, false},
		{"unnormalized direction", r3.Vec{X: 2, Y: 5, Z: 5}, r3.Vec{X: 10}, 1.5, 0.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tank.ProbeDirectionClear(tt.origin, tt.dir, tt.length, tt.thickness); got != tt.want {
				t.Errorf("ProbeDirectionClear = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTankContains(t *testing.T) {
	tank := testTank()

	tests := []struct {
		p    r3.Vec
		r    float64
		want bool
	}{
		{r3.Vec{X: 2, Y: 2, Z: 2}, 0.1, true},
		{r3.Vec{X: 0.05, Y: 2, Z: 2}, 0.1, false},
		{r3.Vec{X: 5, Y: 5, Z: 6.05}, 0.1, false},
		{r3.Vec{X: 5, Y: 5, Z: 6.2}, 0.1, true},
		{r3.Vec{X: 11, Y: 2, Z: 2}, 0.1, false},
	}
	for _, tt := range tests {
		if got := tank.Contains(tt.p, tt.r); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", tt.p, tt.r, got, tt.want)
		}
	}
}

func TestTankResolve(t *testing.T) {
	tank := testTank()

	t.Run("wall stop", func(t *testing.T) {
		pos, vel := r3.Vec{X: -1, Y: 2, Z: 2}, r3.Vec{X: -2, Y: 1}
		tank.Resolve(&pos, &vel, 0.5, 0)
		if pos.X != 0.5 || vel.X != 0 || vel.Y != 1 {
			t.Errorf("pos %v vel %v", pos, vel)
		}
	})

	t.Run("wall bounce", func(t *testing.T) {
		pos, vel := r3.Vec{X: 2, Y: 10.2, Z: 2}, r3.Vec{Y: 2}
		tank.Resolve(&pos, &vel, 0.5, 0.5)
		if pos.Y != 9.5 || vel.Y != -1 {
			t.Errorf("pos %v vel %v", pos, vel)
		}
	})

	t.Run("rock push out", func(t *testing.T) {
		pos, vel := r3.Vec{X: 5.5, Y: 5, Z: 5}, r3.Vec{X: -1, Y: 1}
		tank.Resolve(&pos, &vel, 0.2, 0)
		if !vecNear(pos, r3.Vec{X: 6.2, Y: 5, Z: 5}, 1e-12) {
			t.Errorf("pos = %v, want on rock surface", pos)
		}
		if !vecNear(vel, r3.Vec{Y: 1}, 1e-12) {
			t.Errorf("vel = %v, want inward component removed", vel)
		}
	})
}

func TestIntegrateMotion(t *testing.T) {
	tank := testTank()

	pos := components.Position{Vec: r3.Vec{X: 2, Y: 2, Z: 2}}
	vel := components.Velocity{Vec: r3.Vec{X: 1}}
	rot := components.Rotation{Heading: r3.Vec{X: 1}}

	IntegrateMotion(&pos, &vel, &rot, r3.Vec{Y: 60}, 1.5, 0.1, 0.1, 0, tank)

	if n := r3.Norm(vel.Vec); n > 1.5+1e-12 {
		t.Errorf("speed %v exceeds limit", n)
	}
	if !vecNear(pos.Vec, r3.Add(r3.Vec{X: 2, Y: 2, Z: 2}, r3.Scale(0.1, vel.Vec)), 1e-12) {
		t.Errorf("position %v not advanced by velocity", pos.Vec)
	}
	if !vecNear(rot.Heading, normalize(vel.Vec), 1e-12) {
		t.Errorf("heading %v does not follow velocity %v", rot.Heading, vel.Vec)
	}

	// Braking to rest keeps the last heading.
	last := rot.Heading
	IntegrateMotion(&pos, &vel, &rot, r3.Scale(-10, vel.Vec), 1.5, 0.1, 0.1, 0, tank)
	if vel.Vec != (r3.Vec{}) && r3.Norm(vel.Vec) > 1e-9 {
		t.Fatalf("expected rest, got %v", vel.Vec)
	}
	if rot.Heading != last {
		t.Errorf("heading changed at rest: %v", rot.Heading)
	}
}
