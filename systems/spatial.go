// Package systems implements the per-fish models of the simulation: energy,
// perception, steering, lifecycle, and the tank they live in.
package systems

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Neighbor holds a nearby item with precomputed spatial data.
type Neighbor struct {
	Index  int32  // snapshot index of the item
	Offset r3.Vec // item position minus query origin
	DistSq float64
}

type gridItem struct {
	index int32
	pos   r3.Vec
}

// SpatialGrid provides neighbor lookups using a uniform 3D cell grid over
// the tank. It stores snapshot indices with their positions, so queries
// never touch the ECS world and are safe to run concurrently once built.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	layers   int
	cells    [][]gridItem
}

// NewSpatialGrid creates a spatial grid covering a box of the given size.
func NewSpatialGrid(width, height, depth, cellSize float64) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1
	layers := int(depth/cellSize) + 1

	cells := make([][]gridItem, cols*rows*layers)
	for i := range cells {
		cells[i] = make([]gridItem, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		layers:   layers,
		cells:    cells,
	}
}

// Clear removes all items from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an item to the grid at the given position.
func (g *SpatialGrid) Insert(index int32, pos r3.Vec) {
	c, r, l := g.coords(pos)
	idx := g.flat(c, r, l)
	g.cells[idx] = append(g.cells[idx], gridItem{index: index, pos: pos})
}

// QueryRadiusInto finds items within radius of center and appends them to
// dst. exclude is skipped; pass -1 to keep everything. Each item is reported
// at most once. Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, center r3.Vec, radius float64, exclude int32) []Neighbor {
	c0, r0, l0 := g.coords(r3.Sub(center, r3.Vec{X: radius, Y: radius, Z: radius}))
	c1, r1, l1 := g.coords(r3.Add(center, r3.Vec{X: radius, Y: radius, Z: radius}))
	radiusSq := radius * radius

	for l := l0; l <= l1; l++ {
		for r := r0; r <= r1; r++ {
			for c := c0; c <= c1; c++ {
				for _, it := range g.cells[g.flat(c, r, l)] {
					if it.index == exclude {
						continue
					}
					offset := r3.Sub(it.pos, center)
					distSq := r3.Norm2(offset)
					if distSq <= radiusSq {
						dst = append(dst, Neighbor{Index: it.index, Offset: offset, DistSq: distSq})
					}
				}
			}
		}
	}

	return dst
}

// coords returns the clamped cell coordinates for a position.
func (g *SpatialGrid) coords(p r3.Vec) (col, row, layer int) {
	col = clampInt(int(p.X/g.cellSize), 0, g.cols-1)
	row = clampInt(int(p.Y/g.cellSize), 0, g.rows-1)
	layer = clampInt(int(p.Z/g.cellSize), 0, g.layers-1)
	return col, row, layer
}

func (g *SpatialGrid) flat(col, row, layer int) int {
	return (layer*g.rows+row)*g.cols + col
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
