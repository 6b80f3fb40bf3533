package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/config"
)

// planeSpace blocks every sweep that reaches x >= limit.
type planeSpace struct{ limit float64 }

func (s planeSpace) ProbeDirectionClear(origin, dir r3.Vec, length, thickness float64) bool {
	end := r3.Add(origin, r3.Scale(length, normalize(dir)))
	return end.X+thickness < s.limit
}

// solidSpace blocks everything.
type solidSpace struct{}

func (solidSpace) ProbeDirectionClear(r3.Vec, r3.Vec, float64, float64) bool { return false }

func testSteering() *config.SteeringConfig {
	return &config.SteeringConfig{
		AlignWeight:         1,
		CohesionWeight:      1,
		SeparationWeight:    1,
		ObstacleAvoidWeight: 2,
		MaxSteerForce:       3,
		ProbeDirections:     300,
		LookaheadTime:       2,
		ProbeRadiusMult:     6,
	}
}

func TestSteerTowards(t *testing.T) {
	tests := []struct {
		name     string
		dir, vel r3.Vec
		speed    float64
		maxForce float64
		want     r3.Vec
	}{
		{"from rest", r3.Vec{X: 5}, r3.Vec{}, 2, 10, r3.Vec{X: 2}},
		{"clamped", r3.Vec{X: 5}, r3.Vec{}, 2, 1, r3.Vec{X: 1}},
		{"zero direction brakes", r3.Vec{}, r3.Vec{X: 3}, 2, 10, r3.Vec{X: -3}},
		{"turn", r3.Vec{Y: 1}, r3.Vec{X: 1}, 1, 10, r3.Vec{X: -1, Y: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SteerTowards(tt.dir, tt.vel, tt.speed, tt.maxForce)
			if !vecNear(got, tt.want, 1e-12) {
				t.Errorf("SteerTowards = %v, want %v", got, tt.want)
			}
			if r3.Norm(got) > tt.maxForce+1e-12 {
				t.Errorf("|%v| exceeds max force %v", got, tt.maxForce)
			}
		})
	}
}

func TestCompute_FlockingOnly(t *testing.T) {
	s := NewSteering(testSteering())
	a := &Agent{Pos: r3.Vec{X: 5, Y: 5, Z: 5}, Vel: r3.Vec{X: 1}, IdleSpeed: 1, Radius: 0.1}

	var p Perception
	p.Reset()
	p.AvgFlockHeading = r3.Vec{Y: 2}

	got := s.Compute(a, &p, nil)

	// align: (0,1,0)-(1,0,0); cohesion and separation: zero target brakes.
	want := r3.Vec{X: -3, Y: 1}
	if !vecNear(got, want, 1e-12) {
		t.Errorf("Compute = %v, want %v", got, want)
	}
}

func TestCompute_PursuitTermsNeedWeight(t *testing.T) {
	cfg := testSteering()
	s := NewSteering(cfg)
	a := &Agent{Vel: r3.Vec{X: 1}, IdleSpeed: 1}

	var p Perception
	p.Reset()
	p.Prey = 0
	p.PreyOffset = r3.Vec{Z: 1}

	base := s.Compute(a, &p, nil)

	cfg.PreyChaseWeight = 1
	chase := s.Compute(a, &p, nil)

	if !vecNear(r3.Sub(chase, base), r3.Vec{X: -1, Z: 1}, 1e-12) {
		t.Errorf("prey term = %v, want (-1,0,1)", r3.Sub(chase, base))
	}
}

func TestCompute_ForageTerm(t *testing.T) {
	cfg := testSteering()
	s := NewSteering(cfg)
	a := &Agent{Vel: r3.Vec{X: 1}, IdleSpeed: 1}

	var p Perception
	p.Reset()
	p.FoodOffset = r3.Vec{Y: 3}

	cfg.ForageWeight = 2
	noFood := s.Compute(a, &p, nil)

	p.Food = 4
	withFood := s.Compute(a, &p, nil)

	if !vecNear(r3.Sub(withFood, noFood), r3.Vec{X: -2, Y: 2}, 1e-12) {
		t.Errorf("forage term = %v, want (-2,2,0)", r3.Sub(withFood, noFood))
	}

	cfg.ForageWeight = 0
	if off := s.Compute(a, &p, nil); !vecNear(off, noFood, 1e-12) {
		t.Errorf("zero forage weight changed steering: %v vs %v", off, noFood)
	}
}

func TestCompute_ObstacleAvoidanceAdded(t *testing.T) {
	s := NewSteering(testSteering())
	a := &Agent{Vel: r3.Vec{X: 1}, IdleSpeed: 1, Radius: 0.1}

	var p Perception
	p.Reset()

	open := s.Compute(a, &p, planeSpace{limit: 100})
	blocked := s.Compute(a, &p, planeSpace{limit: 1})

	if vecNear(open, blocked, 1e-12) {
		t.Fatal("blocked path should add an avoidance term")
	}
	dir := s.AvoidanceDirection(a, planeSpace{limit: 1})
	want := r3.Scale(2, SteerTowards(dir, a.Vel, 1, 3))
	if !vecNear(r3.Sub(blocked, open), want, 1e-12) {
		t.Errorf("avoidance term = %v, want %v", r3.Sub(blocked, open), want)
	}
}

func TestHeadingForCollision(t *testing.T) {
	s := NewSteering(testSteering())
	a := &Agent{Vel: r3.Vec{X: 1}, Radius: 0.1}

	// probe length = 1*2 + 0.1 = 2.1
	if !s.HeadingForCollision(a, planeSpace{limit: 2}) {
		t.Error("expected collision with wall at x=2")
	}
	if s.HeadingForCollision(a, planeSpace{limit: 3}) {
		t.Error("wall at x=3 is beyond the probe")
	}
	if s.HeadingForCollision(&Agent{Radius: 0.1}, solidSpace{}) {
		t.Error("a fish at rest is not heading anywhere")
	}
}

func TestAvoidanceDirection(t *testing.T) {
	s := NewSteering(testSteering())
	a := &Agent{Vel: r3.Vec{X: 1}, Radius: 0.1}
	space := planeSpace{limit: 1}

	dir := s.AvoidanceDirection(a, space)
	length := 1*2 + 0.1*6.0

	if !space.ProbeDirectionClear(a.Pos, dir, length, a.Radius) {
		t.Fatalf("returned direction %v is blocked", dir)
	}
	if math.Abs(r3.Norm(dir)-1) > 1e-9 {
		t.Errorf("direction not unit: %v", dir)
	}
	// Sideways directions are clear, so the fish should not turn back.
	if dir.X <= 0 {
		t.Errorf("expected the clear direction nearest ahead, got %v", dir)
	}
}

func TestAvoidanceDirection_AllBlocked(t *testing.T) {
	s := NewSteering(testSteering())
	a := &Agent{Vel: r3.Vec{X: 1, Y: 2}, Radius: 0.1}

	if got := s.AvoidanceDirection(a, solidSpace{}); got != (r3.Vec{X: -1, Y: -2}) {
		t.Errorf("fallback = %v, want reversed velocity", got)
	}
}

func TestProbeDirections(t *testing.T) {
	dirs := ProbeDirections(300)
	if len(dirs) != 300 {
		t.Fatalf("len = %d", len(dirs))
	}
	if !vecNear(dirs[0], forward, 1e-12) {
		t.Errorf("first direction = %v, want straight ahead", dirs[0])
	}
	for i, d := range dirs {
		if math.Abs(r3.Norm(d)-1) > 1e-9 {
			t.Fatalf("dirs[%d] not unit: %v", i, d)
		}
		if i > 0 && d.Z > dirs[i-1].Z+1e-12 {
			t.Fatalf("dirs not ordered by angle from forward at %d", i)
		}
	}
}

func TestAlignFromForward(t *testing.T) {
	targets := []r3.Vec{
		{Z: 1},
		{Z: -1},
		{X: 1},
		normalize(r3.Vec{X: 1, Y: -2, Z: 0.5}),
	}
	for _, to := range targets {
		got := alignFromForward(forward, to)
		if !vecNear(got, to, 1e-9) {
			t.Errorf("alignFromForward(+Z, %v) = %v", to, got)
		}
	}

	// Rotation preserves angles between directions.
	to := normalize(r3.Vec{X: 1, Y: 1})
	d := normalize(r3.Vec{X: 0.3, Z: 1})
	if math.Abs(r3.Dot(alignFromForward(d, to), to)-r3.Dot(d, forward)) > 1e-9 {
		t.Error("rotation did not preserve the angle from forward")
	}
}
