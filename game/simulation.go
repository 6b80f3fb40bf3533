package game

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/systems"
	"github.com/pthm-cable/shoal/telemetry"
)

// simulationStep runs a single tick of the simulation.
//
// Every fish is metabolized first. The survivors are then frozen into a
// snapshot that sensing and steering read from, so the order fish are
// visited in cannot change what any of them perceives. All writes happen
// afterwards in population order, and entities are created or removed only
// once no query is open.
func (g *Game) simulationStep() {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseMetabolism)
	g.updateEnergy()

	g.perfCollector.StartPhase(telemetry.PhaseSpatialGrid)
	g.buildSnapshot()

	g.perfCollector.StartPhase(telemetry.PhaseSense)
	g.senseAndSteer()

	g.perfCollector.StartPhase(telemetry.PhaseApply)
	g.applyIntents()

	g.perfCollector.StartPhase(telemetry.PhaseCleanup)
	g.cleanupDead()
	g.spawnBirths()
	g.respawnIfNeeded()

	g.perfCollector.StartPhase(telemetry.PhasePlankton)
	g.updatePlankton()

	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// updateEnergy ages every fish, charges metabolism and checks for death.
func (g *Game) updateEnergy() {
	cfg := g.cfg
	query := g.fishFilter.Query()
	for query.Next() {
		_, vel, _, body, energy, org := query.Get()
		if !energy.Alive {
			continue
		}

		systems.UpdateEnergy(energy, body, org.Gene, r3.Norm(vel.Vec), cfg.Physics.DT, cfg)
		if cause := systems.CheckDeath(energy, cfg.Lifecycle.MaxAge); !energy.Alive {
			g.recordEvent(telemetry.NewDeathEvent(g.tick, org.ID, cause))
		}
	}
}

// buildSnapshot captures every live fish and uneaten plankton particle and
// rebuilds both spatial indices over snapshot positions.
func (g *Game) buildSnapshot() {
	cfg := g.cfg

	g.agents = g.agents[:0]
	g.fishEnts = g.fishEnts[:0]
	g.fishGrid.Clear()

	query := g.fishFilter.Query()
	for query.Next() {
		pos, vel, rot, body, energy, org := query.Get()
		if !energy.Alive {
			continue
		}

		idx := int32(len(g.agents))
		g.agents = append(g.agents, systems.Agent{
			ID:           org.ID,
			Pos:          pos.Vec,
			Vel:          vel.Vec,
			Heading:      rot.Heading,
			Radius:       body.Radius,
			Mass:         energy.Mass,
			IdleSpeed:    energy.IdleSpeed,
			Gene:         org.Gene,
			Reproductive: systems.IsReproductive(energy.Fat, energy.Muscle, org.Gene, cfg.Lifecycle.ChildAdultRatio),
		})
		g.fishEnts = append(g.fishEnts, query.Entity())
		g.fishGrid.Insert(idx, pos.Vec)
	}

	g.planktonEnt = g.planktonEnt[:0]
	g.planktonGrid.Clear()

	pq := g.planktonFilter.Query()
	for pq.Next() {
		pos, food := pq.Get()
		if food.Eaten {
			continue
		}
		g.planktonGrid.Insert(int32(len(g.planktonEnt)), pos.Vec)
		g.planktonEnt = append(g.planktonEnt, pq.Entity())
	}
}

// applyIntents moves every fish and resolves feeding and reproduction,
// visiting fish in population order. A fish eaten earlier in the pass
// does nothing.
func (g *Game) applyIntents() {
	cfg := g.cfg
	dt := cfg.Physics.DT

	for i, e := range g.fishEnts {
		pos, vel, rot, body, energy, org := g.fishMapper.Get(e)
		if !energy.Alive {
			continue
		}
		p := &g.parallel.perceptions[i]

		systems.IntegrateMotion(pos, vel, rot, g.parallel.accels[i],
			energy.MaxSpeed, body.Radius, dt, cfg.Physics.WallBounce, g.tank)

		// Plankton: first fish to claim a particle gets it
		for _, pi := range p.Plankton {
			food := g.foodMap.Get(g.planktonEnt[pi])
			if gain := systems.ConsumePlankton(energy, food, &cfg.Energy); gain > 0 {
				g.recordEvent(telemetry.NewPlanktonEatenEvent(g.tick, org.ID, gain))
			}
		}

		if cfg.Lifecycle.FishPredation && p.Prey >= 0 {
			g.tryEat(int32(i), energy, org.ID, p)
		}

		// Each unordered pair is visited once, by its earlier member.
		for _, j := range p.Mates {
			if int(j) <= i {
				continue
			}
			g.tryReproduce(i, int(j))
		}

		systems.RefreshBody(energy, body, cfg)
		if cause := systems.CheckDeath(energy, cfg.Lifecycle.MaxAge); !energy.Alive {
			g.recordEvent(telemetry.NewDeathEvent(g.tick, org.ID, cause))
		}
	}
}

// tryEat lets fish i eat its nearest prey if it is within capture reach.
func (g *Game) tryEat(i int32, energy *components.Energy, predatorID uint32, p *systems.Perception) {
	self := &g.agents[i]
	prey := &g.agents[p.Prey]

	reach := (self.Radius + prey.Radius) * g.cfg.Lifecycle.CaptureFactor
	if p.PreyDistSq > reach*reach {
		return
	}

	preyEnergy := g.energyMap.Get(g.fishEnts[p.Prey])
	gain := systems.ConsumeFish(energy, preyEnergy, &g.cfg.Energy)
	if gain <= 0 {
		return
	}
	g.recordEvent(telemetry.NewFishEatenEvent(g.tick, predatorID, prey.ID, gain))
	g.recordEvent(telemetry.NewDeathEvent(g.tick, prey.ID, preyEnergy.Cause))
}

// tryReproduce spawns one offspring of fish a (the parent that pays) and b
// if both are still alive and a can still afford it.
func (g *Game) tryReproduce(a, b int) {
	cfg := g.cfg

	pos, _, rot, _, energyA, orgA := g.fishMapper.Get(g.fishEnts[a])
	_, _, _, _, energyB, orgB := g.fishMapper.Get(g.fishEnts[b])
	if !energyA.Alive || !energyB.Alive {
		return
	}
	if !systems.IsReproductive(energyA.Fat, energyA.Muscle, orgA.Gene, cfg.Lifecycle.ChildAdultRatio) {
		return
	}

	before := energyA.Fat
	child := systems.Reproduce(energyA, orgA, orgB, pos.Vec, rot.Heading, &cfg.Lifecycle, g.rng)
	g.births = append(g.births, child)
	g.recordEvent(telemetry.NewReproductionEvent(g.tick, orgA.ID, orgB.ID, before-energyA.Fat))
}

// updatePlankton drifts the bloom field and spawns new particles.
func (g *Game) updatePlankton() {
	g.planktonField.Advance(g.cfg.Physics.DT)

	n := g.planktonField.SpawnCount(g.rng)
	for range n {
		if g.numPlankton >= g.cfg.Plankton.MaxCount {
			return
		}
		if p, ok := g.planktonField.Sample(g.rng, g.cfg.Body.PlanktonRadius); ok {
			g.spawnPlankton(p)
		}
	}
}

func (g *Game) recordEvent(ev telemetry.Event) {
	g.collector.Record(ev)
	g.lifetimeTracker.Record(ev)
}
