package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/genetics"
)

func TestIsPrey(t *testing.T) {
	tests := []struct {
		name           string
		predator, prey float64
		ratio          float64
		want           bool
	}{
		{"much smaller", 10, 4, 0.5, true},
		{"too big", 10, 6, 0.5, false},
		{"exactly at ratio", 10, 5, 0.5, false},
		{"equal mass", 1, 1, 0.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPrey(tt.predator, tt.prey, tt.ratio); got != tt.want {
				t.Errorf("IsPrey(%v, %v) = %v, want %v", tt.predator, tt.prey, got, tt.want)
			}
		})
	}

	if IsPrey(10, 4, 0.5) && IsPrey(4, 10, 0.5) {
		t.Error("predation must not be mutual")
	}
}

func TestIsReproductive(t *testing.T) {
	gene := genetics.FromTraits(1, 0.5) // muscle > 0.5, fat > 0.5 + 0.2

	tests := []struct {
		name        string
		fat, muscle float64
		want        bool
	}{
		{"ready", 0.75, 0.55, true},
		{"muscle at threshold", 0.75, 0.5, false},
		{"fat at threshold", 0.7, 0.55, false},
		{"lean", 0.6, 0.55, false},
		{"juvenile", 0.04, 0.04, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsReproductive(tt.fat, tt.muscle, gene, 0.2); got != tt.want {
				t.Errorf("IsReproductive(fat=%v, muscle=%v) = %v, want %v", tt.fat, tt.muscle, got, tt.want)
			}
		})
	}
}

func TestOffspringNotReproductive(t *testing.T) {
	lc := &config.LifecycleConfig{ChildAdultRatio: 0.2, BirthEfficiency: 0.5}
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 500; i++ {
		orgA := components.Organism{ID: 1, Gene: genetics.New(rng)}
		orgB := components.Organism{ID: 2, Gene: genetics.New(rng)}
		parent := components.Energy{Fat: 10, Muscle: 1, Alive: true}

		child := Reproduce(&parent, &orgA, &orgB, r3.Vec{}, r3.Vec{Z: 1}, lc, rng)
		if IsReproductive(child.Fat, child.Muscle, child.Gene, lc.ChildAdultRatio) {
			t.Fatalf("newborn is reproductive: parents %+v %+v child %+v", orgA.Gene, orgB.Gene, child)
		}
	}
}

func TestReproduce(t *testing.T) {
	lc := &config.LifecycleConfig{ChildAdultRatio: 0.2, BirthEfficiency: 1, MutationRate: 0}

	orgA := components.Organism{ID: 7, Gene: genetics.FromTraits(0.8, 0.4), Generation: 2}
	orgB := components.Organism{ID: 9, Gene: genetics.FromTraits(1.0, 0.6), Generation: 5}
	parent := components.Energy{Fat: 1, Muscle: 0.5, Alive: true}
	pos := r3.Vec{X: 1, Y: 2, Z: 3}

	child := Reproduce(&parent, &orgA, &orgB, pos, r3.Vec{X: 1}, lc, rand.New(rand.NewSource(1)))

	if math.Abs(child.Gene.AdultMass-0.9) > 1e-12 || math.Abs(child.Gene.IdealMuscleRatio-0.5) > 1e-12 {
		t.Errorf("child gene = %+v, want midpoint (0.9, 0.5)", child.Gene)
	}
	if math.Abs(child.Fat-0.2*0.8*0.6) > 1e-12 {
		t.Errorf("child fat = %v, want %v", child.Fat, 0.2*0.8*0.6)
	}
	if math.Abs(child.Muscle-0.2*0.8*0.4) > 1e-12 {
		t.Errorf("child muscle = %v, want %v", child.Muscle, 0.2*0.8*0.4)
	}
	if child.Pos != pos {
		t.Errorf("child spawned at %v, want parent position %v", child.Pos, pos)
	}
	if child.ParentA != 7 || child.ParentB != 9 || child.Generation != 6 {
		t.Errorf("lineage = %d/%d gen %d", child.ParentA, child.ParentB, child.Generation)
	}

	// With birth efficiency 1 the parent pays exactly what the child receives.
	debit := 1 - parent.Fat
	if math.Abs(debit-(child.Fat+child.Muscle)) > 1e-12 {
		t.Errorf("parent debit %v != child endowment %v", debit, child.Fat+child.Muscle)
	}
	if parent.Muscle != 0.5 {
		t.Errorf("parent muscle changed: %v", parent.Muscle)
	}
	if orgA.Gene.AdultMass != 0.8 {
		t.Errorf("parent gene aliased by child: %+v", orgA.Gene)
	}
}

func TestReproduce_BirthEfficiencyLoss(t *testing.T) {
	lc := &config.LifecycleConfig{ChildAdultRatio: 0.2, BirthEfficiency: 0.5}
	orgA := components.Organism{Gene: genetics.FromTraits(1, 0.5)}
	orgB := components.Organism{Gene: genetics.FromTraits(1, 0.5)}
	parent := components.Energy{Fat: 1, Muscle: 0.5, Alive: true}

	child := Reproduce(&parent, &orgA, &orgB, r3.Vec{}, r3.Vec{}, lc, rand.New(rand.NewSource(1)))

	debit := 1 - parent.Fat
	if math.Abs(debit-2*(child.Fat+child.Muscle)) > 1e-12 {
		t.Errorf("debit = %v, want %v", debit, 2*(child.Fat+child.Muscle))
	}
}

func TestCheckDeath(t *testing.T) {
	const maxAge = 60.0

	tests := []struct {
		name      string
		fat, age  float64
		wantAlive bool
		wantCause components.DeathCause
	}{
		{"healthy", 0.5, 10, true, components.CauseNone},
		{"zero fat survives", 0, 10, true, components.CauseNone},
		{"starved", -0.001, 10, false, components.CauseStarved},
		{"age exactly max", 0.5, maxAge, true, components.CauseNone},
		{"just past max age", 0.5, maxAge + 1e-9, false, components.CauseAged},
		{"starvation reported first", -1, maxAge + 1, false, components.CauseStarved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := components.Energy{Fat: tt.fat, Age: tt.age, Alive: true}
			cause := CheckDeath(&e, maxAge)
			if e.Alive != tt.wantAlive {
				t.Errorf("alive = %v, want %v", e.Alive, tt.wantAlive)
			}
			if cause != tt.wantCause {
				t.Errorf("cause = %v, want %v", cause, tt.wantCause)
			}
		})
	}
}

func TestConsumePlankton(t *testing.T) {
	ec := &config.EnergyConfig{PredationEfficiency: 1}
	e := components.Energy{Fat: 0.3, Alive: true}
	food := components.Food{Mass: 0.05}

	gain := ConsumePlankton(&e, &food, ec)

	if math.Abs(e.Fat-0.35) > 1e-12 || math.Abs(gain-0.05) > 1e-12 {
		t.Errorf("fat = %v gain = %v, want 0.35 and 0.05", e.Fat, gain)
	}
	if !food.Eaten {
		t.Error("plankton not marked eaten")
	}

	// A particle is only eaten once.
	if again := ConsumePlankton(&e, &food, ec); again != 0 || math.Abs(e.Fat-0.35) > 1e-12 {
		t.Errorf("eaten plankton consumed twice: gain %v fat %v", again, e.Fat)
	}
}

func TestConsumeFish(t *testing.T) {
	ec := &config.EnergyConfig{PredationEfficiency: 1}
	pred := components.Energy{Fat: 1, Muscle: 1, Mass: 2, Alive: true}
	prey := components.Energy{Fat: 0.2, Muscle: 0.1, Mass: 0.3, Alive: true}

	gain := ConsumeFish(&pred, &prey, ec)

	if math.Abs(gain-prey.Mass) > 1e-12 || math.Abs(pred.Fat-1.3) > 1e-12 {
		t.Errorf("gain = %v fat = %v, want all prey mass credited", gain, pred.Fat)
	}
	if prey.Alive || prey.Cause != components.CauseEaten {
		t.Errorf("prey state = %+v, want dead by predation", prey)
	}
	if again := ConsumeFish(&pred, &prey, ec); again != 0 {
		t.Errorf("dead prey eaten twice: %v", again)
	}
}
