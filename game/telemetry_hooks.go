package game

import (
	"log/slog"

	"github.com/pthm-cable/shoal/systems"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	g.samplePopulation()

	stats := g.collector.Flush(g.tick, g.sample)
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}

// samplePopulation collects the per-fish values the collector summarizes
// and updates lifetime peaks along the way.
func (g *Game) samplePopulation() {
	s := &g.sample
	s.Fat = s.Fat[:0]
	s.Mass = s.Mass[:0]
	s.Age = s.Age[:0]
	s.Genes = s.Genes[:0]
	s.Generations = s.Generations[:0]
	s.ReadyToBreed = 0

	childAdultRatio := g.cfg.Lifecycle.ChildAdultRatio

	query := g.fishFilter.Query()
	for query.Next() {
		_, _, _, _, energy, org := query.Get()
		if !energy.Alive {
			continue
		}

		s.Fat = append(s.Fat, energy.Fat)
		s.Mass = append(s.Mass, energy.Mass)
		s.Age = append(s.Age, energy.Age)
		s.Genes = append(s.Genes, org.Gene)
		s.Generations = append(s.Generations, org.Generation)
		if systems.IsReproductive(energy.Fat, energy.Muscle, org.Gene, childAdultRatio) {
			s.ReadyToBreed++
		}

		g.lifetimeTracker.UpdateMass(org.ID, energy.Mass)
	}

	s.FishCount = g.numFish
	s.PlanktonCount = g.numPlankton
}
