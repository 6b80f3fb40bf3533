package genetics

import (
	"math"
	"math/rand"
	"testing"
)

// fixedRNG replays a scripted sequence of values.
type fixedRNG struct {
	vals []float64
	i    int
}

func (r *fixedRNG) Float64() float64 {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

func TestNewWithinRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		g := New(rng)
		if g.AdultMass < MinAdultMass || g.AdultMass > MaxAdultMass {
			t.Fatalf("AdultMass out of range: %v", g.AdultMass)
		}
		if g.IdealMuscleRatio < MinIdealMuscleRatio || g.IdealMuscleRatio > MaxIdealMuscleRatio {
			t.Fatalf("IdealMuscleRatio out of range: %v", g.IdealMuscleRatio)
		}
		if g.Color != HSVToRGB(g.Hue(), 1, 1) {
			t.Fatalf("color not derived from traits")
		}
	}
}

func TestIsSameSpecies(t *testing.T) {
	base := FromTraits(1.0, 0.5)
	tests := []struct {
		name  string
		other Gene
		limit float64
		want  bool
	}{
		{"identical", FromTraits(1.0, 0.5), 0.1, true},
		{"within both", FromTraits(1.05, 0.45), 0.1, true},
		{"mass exceeds", FromTraits(1.2, 0.5), 0.1, false},
		{"ratio exceeds", FromTraits(1.0, 0.65), 0.1, false},
		{"both exceed", FromTraits(0.5, 0.8), 0.1, false},
		{"mass exactly at limit", FromTraits(1.25, 0.5), 0.25, false},
		{"ratio exactly at limit", FromTraits(1.0, 0.75), 0.25, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.IsSameSpecies(tt.other, tt.limit); got != tt.want {
				t.Errorf("IsSameSpecies(%+v, %v) = %v, want %v", tt.other, tt.limit, got, tt.want)
			}
			if got := tt.other.IsSameSpecies(base, tt.limit); got != tt.want {
				t.Errorf("IsSameSpecies not symmetric for %+v", tt.other)
			}
		})
	}
}

func TestIsSameSpeciesNotTransitive(t *testing.T) {
	a := FromTraits(1.00, 0.5)
	b := FromTraits(1.08, 0.5)
	c := FromTraits(1.16, 0.5)

	if !a.IsSameSpecies(b, 0.1) || !b.IsSameSpecies(c, 0.1) {
		t.Fatal("neighbouring genes should be same species")
	}
	if a.IsSameSpecies(c, 0.1) {
		t.Error("species relation must stay pairwise; a and c are too far apart")
	}
}

func TestMutateWithoutMutationAverages(t *testing.T) {
	g := FromTraits(0.4, 0.2)
	other := FromTraits(1.2, 0.6)

	g.Mutate(other, 0, rand.New(rand.NewSource(7)))

	if math.Abs(g.AdultMass-0.8) > 1e-12 {
		t.Errorf("AdultMass = %v, want 0.8", g.AdultMass)
	}
	if math.Abs(g.IdealMuscleRatio-0.4) > 1e-12 {
		t.Errorf("IdealMuscleRatio = %v, want 0.4", g.IdealMuscleRatio)
	}
	if g.Color != HSVToRGB(math.Mod(1.2, 1), 1, 1) {
		t.Errorf("color not recomputed after mutation")
	}
}

func TestMutatePointMutation(t *testing.T) {
	g := FromTraits(1.0, 0.5)
	other := FromTraits(1.0, 0.5)

	// roll < rate, then step value 1.0 -> +0.1 for mass; roll >= rate for ratio
	rng := &fixedRNG{vals: []float64{0.0, 1.0, 0.99}}
	g.Mutate(other, 0.5, rng)

	if math.Abs(g.AdultMass-1.1) > 1e-12 {
		t.Errorf("AdultMass = %v, want 1.1", g.AdultMass)
	}
	if g.IdealMuscleRatio != 0.5 {
		t.Errorf("IdealMuscleRatio = %v, want 0.5 (no mutation)", g.IdealMuscleRatio)
	}
}

func TestMutateClampsExtremes(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	extremes := []Gene{
		FromTraits(MinAdultMass, MinIdealMuscleRatio),
		FromTraits(MaxAdultMass, MaxIdealMuscleRatio),
		FromTraits(MinAdultMass, MaxIdealMuscleRatio),
		FromTraits(MaxAdultMass, MinIdealMuscleRatio),
	}

	for _, rate := range []float64{0, 0.25, 0.5, 1} {
		for i := 0; i < 2000; i++ {
			g := extremes[i%len(extremes)]
			other := extremes[(i/len(extremes))%len(extremes)]
			g.Mutate(other, rate, rng)

			if g.AdultMass < MinAdultMass || g.AdultMass > MaxAdultMass {
				t.Fatalf("rate %v: AdultMass out of range: %v", rate, g.AdultMass)
			}
			if g.IdealMuscleRatio < MinIdealMuscleRatio || g.IdealMuscleRatio > MaxIdealMuscleRatio {
				t.Fatalf("rate %v: IdealMuscleRatio out of range: %v", rate, g.IdealMuscleRatio)
			}
		}
	}
}

func TestCopyDoesNotAlias(t *testing.T) {
	parent := FromTraits(0.6, 0.3)
	child := parent.Copy()
	child.Mutate(FromTraits(1.6, 0.9), 0, rand.New(rand.NewSource(1)))

	if parent.AdultMass != 0.6 || parent.IdealMuscleRatio != 0.3 {
		t.Errorf("parent changed after child mutation: %+v", parent)
	}
}

func TestHSVToRGBPrimaries(t *testing.T) {
	tests := []struct {
		hue     float64
		r, g, b uint8
	}{
		{0, 255, 0, 0},
		{1.0 / 3.0, 0, 255, 0},
		{2.0 / 3.0, 0, 0, 255},
	}
	for _, tt := range tests {
		c := HSVToRGB(tt.hue, 1, 1)
		if c.R != tt.r || c.G != tt.g || c.B != tt.b || c.A != 255 {
			t.Errorf("HSVToRGB(%v) = %+v, want (%d,%d,%d)", tt.hue, c, tt.r, tt.g, tt.b)
		}
	}
}
