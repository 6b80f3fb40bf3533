package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/genetics"
)

// Agent is a read-only view of one fish, captured once per tick before
// sensing. Sensing and steering read only Agents, never live components.
type Agent struct {
	ID           uint32
	Pos          r3.Vec
	Vel          r3.Vec
	Heading      r3.Vec
	Radius       float64
	Mass         float64
	IdleSpeed    float64
	Gene         genetics.Gene
	Reproductive bool
}

// Perception holds the steering cues one fish gathered from its neighborhood.
type Perception struct {
	AvgFlockHeading   r3.Vec
	CentroidOffset    r3.Vec
	SeparationHeading r3.Vec
	MateOffset        r3.Vec
	PreyOffset        r3.Vec
	PredatorAvoid     r3.Vec
	FoodOffset        r3.Vec

	NumSame int

	Mate       int32 // nearest reproductive flockmate, -1 if none
	Prey       int32 // nearest fish this one can eat, -1 if none
	PreyDistSq float64
	Food       int32 // nearest visible plankton, -1 if none

	// Mates lists flockmates close enough to reproduce with this tick.
	Mates []int32

	// Plankton lists plankton within capture reach.
	Plankton []int32
}

// Reset clears the perception for reuse, keeping slice capacity.
func (p *Perception) Reset() {
	mates, plankton := p.Mates[:0], p.Plankton[:0]
	*p = Perception{Mate: -1, Prey: -1, Food: -1, Mates: mates, Plankton: plankton}
}

// Sense classifies the neighbors of agents[self] within the viewing range
// and fills out. Flock aggregates are averaged over same-species neighbors
// and stay zero when there are none. buf is scratch space and is returned
// for reuse.
func Sense(
	self int32,
	agents []Agent,
	fish *SpatialGrid,
	buf []Neighbor,
	pc *config.PerceptionConfig,
	lc *config.LifecycleConfig,
	out *Perception,
) []Neighbor {
	out.Reset()
	me := &agents[self]

	buf = fish.QueryRadiusInto(buf[:0], me.Pos, pc.ViewingRange, self)

	minMateDistSq := pc.ViewingRange * pc.ViewingRange
	minPreyDistSq := minMateDistSq

	for _, n := range buf {
		other := &agents[n.Index]

		if me.Gene.IsSameSpecies(other.Gene, lc.GeneDiffLimit) {
			out.NumSame++
			out.AvgFlockHeading = r3.Add(out.AvgFlockHeading, other.Vel)
			out.CentroidOffset = r3.Add(out.CentroidOffset, n.Offset)
			out.SeparationHeading = r3.Add(out.SeparationHeading, inverseSquare(n.Offset, n.DistSq))

			if me.Reproductive && other.Reproductive {
				if n.DistSq < minMateDistSq {
					minMateDistSq = n.DistSq
					out.MateOffset = n.Offset
					out.Mate = n.Index
				}
				reach := (me.Radius + other.Radius) * 2
				if n.DistSq < reach*reach {
					out.Mates = append(out.Mates, n.Index)
				}
			}
			continue
		}

		if IsPrey(me.Mass, other.Mass, lc.PredationMassRatio) && n.DistSq < minPreyDistSq {
			minPreyDistSq = n.DistSq
			out.PreyOffset = n.Offset
			out.Prey = n.Index
			out.PreyDistSq = n.DistSq
		}
		if IsPrey(other.Mass, me.Mass, lc.PredationMassRatio) {
			out.PredatorAvoid = r3.Add(out.PredatorAvoid, inverseSquare(n.Offset, n.DistSq))
		}
	}

	if out.NumSame > 0 {
		inv := 1 / float64(out.NumSame)
		out.AvgFlockHeading = r3.Scale(inv, out.AvgFlockHeading)
		out.CentroidOffset = r3.Scale(inv, out.CentroidOffset)
		out.SeparationHeading = r3.Scale(inv, out.SeparationHeading)
	}

	return buf
}

// SensePlankton looks at the plankton within the viewing range of
// agents[self]. The nearest becomes the food cue, and every particle within
// boundRadius + captureEpsilon is appended to out.Plankton. Consumption
// happens later, in population order, so a particle goes to the first fish
// that claims it.
func SensePlankton(
	self int32,
	agents []Agent,
	plankton *SpatialGrid,
	buf []Neighbor,
	pc *config.PerceptionConfig,
	out *Perception,
) []Neighbor {
	me := &agents[self]
	reach := me.Radius + pc.CaptureEpsilon
	buf = plankton.QueryRadiusInto(buf[:0], me.Pos, math.Max(pc.ViewingRange, reach), -1)

	nearest := math.Inf(1)
	for _, n := range buf {
		if n.DistSq < nearest {
			nearest = n.DistSq
			out.Food = n.Index
			out.FoodOffset = n.Offset
		}
		if n.DistSq <= reach*reach {
			out.Plankton = append(out.Plankton, n.Index)
		}
	}
	return buf
}
