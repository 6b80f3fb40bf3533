package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase identifies one stage of the simulation tick.
type Phase uint8

// Tick phases, in execution order.
const (
	PhaseMetabolism Phase = iota
	PhaseSpatialGrid
	PhaseSense
	PhaseApply
	PhaseCleanup
	PhasePlankton
	PhaseTelemetry

	numPhases
)

var phaseNames = [numPhases]string{
	"metabolism", "spatial_grid", "sense", "apply", "cleanup", "plankton", "telemetry",
}

func (p Phase) String() string {
	if p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// tickTiming is the wall time of one tick split by phase.
type tickTiming struct {
	total  time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector keeps the timings of the last N ticks in a ring.
type PerfCollector struct {
	ring []tickTiming
	next int
	full bool

	cur        tickTiming
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool
}

// NewPerfCollector keeps the last window ticks (60 if window < 1).
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]tickTiming, window)}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.cur = tickTiming{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase, p.phaseStart, p.inPhase = phase, now, true
}

// EndTick closes the last phase and stores the tick.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next++
	if p.next == len(p.ring) {
		p.next, p.full = 0, true
	}
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase && p.phase < numPhases {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.inPhase = false
}

func (p *PerfCollector) recorded() []tickTiming {
	if p.full {
		return p.ring
	}
	return p.ring[:p.next]
}

// PhaseStats is the average cost of one phase and its share of the tick.
type PhaseStats struct {
	Avg   time.Duration
	Share float64 // percent of average tick time
}

// PerfStats summarizes the ticks currently held by a PerfCollector.
type PerfStats struct {
	Ticks          int
	AvgTick        time.Duration
	MedianTick     time.Duration
	P95Tick        time.Duration
	MaxTick        time.Duration
	TicksPerSecond float64
	Phases         [numPhases]PhaseStats
}

// Stats computes tick time quantiles and per-phase averages.
func (p *PerfCollector) Stats() PerfStats {
	ticks := p.recorded()
	var s PerfStats
	s.Ticks = len(ticks)
	if s.Ticks == 0 {
		return s
	}

	totals := make([]float64, len(ticks))
	var phaseSum [numPhases]time.Duration
	for i, tt := range ticks {
		totals[i] = float64(tt.total)
		for ph, d := range tt.phases {
			phaseSum[ph] += d
		}
	}
	slices.Sort(totals)

	s.AvgTick = time.Duration(stat.Mean(totals, nil))
	s.MedianTick = time.Duration(stat.Quantile(0.5, stat.Empirical, totals, nil))
	s.P95Tick = time.Duration(stat.Quantile(0.95, stat.Empirical, totals, nil))
	s.MaxTick = time.Duration(totals[len(totals)-1])
	if s.AvgTick > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTick)
	}

	n := time.Duration(s.Ticks)
	for ph := range s.Phases {
		avg := phaseSum[ph] / n
		s.Phases[ph].Avg = avg
		if s.AvgTick > 0 {
			s.Phases[ph].Share = float64(avg) / float64(s.AvgTick) * 100
		}
	}
	return s
}

// LogStats logs the summary at info level.
func (s PerfStats) LogStats() {
	slog.Info("perf", "perf", s)
}

// LogValue implements slog.LogValuer. Phases under 0.1% are omitted.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("p50_tick_us", s.MedianTick.Microseconds()),
		slog.Int64("p95_tick_us", s.P95Tick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	for ph, ps := range s.Phases {
		if ps.Share >= 0.1 {
			attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", float64(int(ps.Share*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd      int32   `csv:"window_end"`
	AvgTickUS      int64   `csv:"avg_tick_us"`
	P50TickUS      int64   `csv:"p50_tick_us"`
	P95TickUS      int64   `csv:"p95_tick_us"`
	MaxTickUS      int64   `csv:"max_tick_us"`
	TicksPerSec    float64 `csv:"ticks_per_sec"`
	MetabolismPct  float64 `csv:"metabolism_pct"`
	SpatialGridPct float64 `csv:"spatial_grid_pct"`
	SensePct       float64 `csv:"sense_pct"`
	ApplyPct       float64 `csv:"apply_pct"`
	CleanupPct     float64 `csv:"cleanup_pct"`
	PlanktonPct    float64 `csv:"plankton_pct"`
	TelemetryPct   float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the summary for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:      windowEnd,
		AvgTickUS:      s.AvgTick.Microseconds(),
		P50TickUS:      s.MedianTick.Microseconds(),
		P95TickUS:      s.P95Tick.Microseconds(),
		MaxTickUS:      s.MaxTick.Microseconds(),
		TicksPerSec:    s.TicksPerSecond,
		MetabolismPct:  s.Phases[PhaseMetabolism].Share,
		SpatialGridPct: s.Phases[PhaseSpatialGrid].Share,
		SensePct:       s.Phases[PhaseSense].Share,
		ApplyPct:       s.Phases[PhaseApply].Share,
		CleanupPct:     s.Phases[PhaseCleanup].Share,
		PlanktonPct:    s.Phases[PhasePlankton].Share,
		TelemetryPct:   s.Phases[PhaseTelemetry].Share,
	}
}
