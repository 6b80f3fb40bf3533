package game

import (
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/genetics"
	"github.com/pthm-cable/shoal/systems"
	"github.com/pthm-cable/shoal/telemetry"
)

// spawnInitialPopulation creates the founders around the tank centre.
func (g *Game) spawnInitialPopulation() {
	pc := &g.cfg.Population
	for i := 0; i < pc.Initial; i++ {
		g.spawnFish(g.founderGene(), g.spawnPoint(), g.randomDirection(),
			pc.InitialFat, pc.InitialMuscle, 0, 0)
	}
}

// founderGene returns the configured founder gene, or a random one.
func (g *Game) founderGene() genetics.Gene {
	pc := &g.cfg.Population
	if pc.RandomGenes {
		return genetics.New(g.rng)
	}
	return genetics.FromTraits(pc.FounderGene.AdultMass, pc.FounderGene.IdealMuscleRatio)
}

// spawnPoint draws a point uniformly inside the spawn sphere around the
// tank centre, falling back to the centre if it lands in a rock.
func (g *Game) spawnPoint() r3.Vec {
	radius := g.cfg.Population.SpawnRadius
	center := g.tank.Center()
	for range 8 {
		d := g.randomDirection()
		r := radius * math.Cbrt(g.rng.Float64())
		p := r3.Add(center, r3.Scale(r, d))
		if g.tank.Contains(p, g.cfg.Body.MinRadius) {
			return p
		}
	}
	return center
}

// randomDirection returns a uniformly distributed unit vector.
func (g *Game) randomDirection() r3.Vec {
	z := 2*g.rng.Float64() - 1
	phi := 2 * math.Pi * g.rng.Float64()
	s := math.Sqrt(1 - z*z)
	return r3.Vec{X: s * math.Cos(phi), Y: s * math.Sin(phi), Z: z}
}

// spawnFish creates a fish entity. Its velocity starts at idle speed along
// heading.
func (g *Game) spawnFish(gene genetics.Gene, pos, heading r3.Vec, fat, muscle float64, generation int, parentID uint32) ecs.Entity {
	id := g.nextID
	g.nextID++

	energy := components.Energy{Fat: fat, Muscle: muscle, Alive: true}
	body := components.Body{}
	systems.RefreshBody(&energy, &body, g.cfg)

	p := components.Position{Vec: pos}
	v := components.Velocity{Vec: r3.Scale(energy.IdleSpeed, heading)}
	rot := components.Rotation{Heading: heading}
	org := components.Organism{ID: id, Gene: gene, Generation: generation, ParentID: parentID}

	entity := g.fishMapper.NewEntity(&p, &v, &rot, &body, &energy, &org)
	g.numFish++

	g.lifetimeTracker.Register(id, g.tick, gene, generation, parentID)

	return entity
}

// spawnInitialPlankton seeds the starting bloom.
func (g *Game) spawnInitialPlankton() {
	pc := &g.cfg.Plankton
	target := min(pc.Initial, pc.MaxCount)
	for attempts := 0; g.numPlankton < target && attempts < target*10; attempts++ {
		if p, ok := g.planktonField.Sample(g.rng, g.cfg.Body.PlanktonRadius); ok {
			g.spawnPlankton(p)
		}
	}
}

func (g *Game) spawnPlankton(pos r3.Vec) ecs.Entity {
	p := components.Position{Vec: pos}
	food := components.Food{Mass: g.cfg.Plankton.Mass}
	g.numPlankton++
	return g.planktonMapper.NewEntity(&p, &food)
}

type deadFish struct {
	entity ecs.Entity
	id     uint32
}

// cleanupDead removes dead fish and eaten plankton.
func (g *Game) cleanupDead() {
	// First pass: collect (the world is locked while a query is open)
	g.dead = g.dead[:0]
	query := g.fishFilter.Query()
	for query.Next() {
		_, _, _, _, energy, org := query.Get()
		if !energy.Alive {
			g.dead = append(g.dead, deadFish{entity: query.Entity(), id: org.ID})
		}
	}

	g.eaten = g.eaten[:0]
	pq := g.planktonFilter.Query()
	for pq.Next() {
		_, food := pq.Get()
		if food.Eaten {
			g.eaten = append(g.eaten, pq.Entity())
		}
	}

	// Second pass: remove
	for _, d := range g.dead {
		g.retire(d.id)
		g.world.RemoveEntity(d.entity)
		g.numFish--
	}
	for _, e := range g.eaten {
		g.world.RemoveEntity(e)
		g.numPlankton--
	}
}

// retire closes a fish's lifetime record and offers it to the hall of fame.
func (g *Game) retire(id uint32) {
	g.lifetimeTracker.UpdateSurvivalTime(id, g.tick, g.cfg.Physics.DT)
	stats := g.lifetimeTracker.Remove(id)
	g.hallOfFame.Consider(id, stats)
}

// spawnBirths creates the offspring queued during the apply phase.
func (g *Game) spawnBirths() {
	for _, b := range g.births {
		heading := b.Heading
		if heading == (r3.Vec{}) {
			heading = g.randomDirection()
		}
		g.spawnFish(b.Gene, b.Pos, heading, b.Fat, b.Muscle, b.Generation, b.ParentA)
		g.recordEvent(telemetry.NewBirthEvent(g.tick, g.nextID-1, b.ParentA))
	}
	g.births = g.births[:0]
}

// respawnIfNeeded tops the population up when it falls below the respawn
// threshold, preferring proven genes from the hall of fame.
func (g *Game) respawnIfNeeded() {
	pc := &g.cfg.Population
	if pc.RespawnThreshold <= 0 || g.numFish >= pc.RespawnThreshold {
		return
	}

	before := g.numFish
	fromHall := 0
	for i := 0; i < pc.RespawnCount; i++ {
		gene, ok := g.hallOfFame.Sample()
		if ok {
			gene.Mutate(gene, g.cfg.Lifecycle.MutationRate, g.rng)
			fromHall++
		} else {
			gene = g.founderGene()
		}
		g.spawnFish(gene, g.spawnPoint(), g.randomDirection(), pc.InitialFat, pc.InitialMuscle, 0, 0)
		g.recordEvent(telemetry.NewRespawnEvent(g.tick, g.nextID-1))
	}

	slog.Info("respawn",
		"tick", g.tick,
		"population_before", before,
		"respawned", pc.RespawnCount,
		"from_hall", fromHall,
		"hall_size", g.hallOfFame.Size(),
	)
}
