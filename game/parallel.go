package game

import (
	"runtime"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/systems"
)

// parallelThreshold is the minimum fish count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// workerScratch holds per-worker reusable buffers.
type workerScratch struct {
	Neighbors []systems.Neighbor
}

// workChunk represents a range of snapshot indices for a worker to process.
type workChunk struct {
	start, end int
}

// parallelState holds the worker pool and the per-fish results of the
// sense and steer phase, indexed by snapshot position.
type parallelState struct {
	perceptions []systems.Perception
	accels      []r3.Vec
	scratches   []workerScratch
	numWorkers  int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState(workers int) *parallelState {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	scratches := make([]workerScratch, workers)
	for i := range scratches {
		scratches[i].Neighbors = make([]systems.Neighbor, 0, 64)
	}
	return &parallelState{
		numWorkers: workers,
		scratches:  scratches,
	}
}

// resize makes room for n results, keeping the slice capacity inside each
// reused Perception.
func (p *parallelState) resize(n int) {
	if cap(p.perceptions) < n {
		grown := make([]systems.Perception, n)
		copy(grown, p.perceptions[:cap(p.perceptions)])
		p.perceptions = grown
	}
	p.perceptions = p.perceptions[:n]

	if cap(p.accels) < n {
		p.accels = make([]r3.Vec, n)
	}
	p.accels = p.accels[:n]
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(g *Game) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(g, i)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(g *Game, workerID int) {
	defer p.wg.Done()
	scratch := &p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			g.computeChunk(chunk.start, chunk.end, scratch)
			p.doneChan <- struct{}{}
		}
	}
}

// senseAndSteer fills a perception and an acceleration for every fish in
// the snapshot. Workers only read the snapshot and write their own slots.
func (g *Game) senseAndSteer() {
	n := len(g.agents)
	g.parallel.resize(n)
	if n == 0 {
		return
	}

	if n < parallelThreshold || g.parallel.numWorkers == 1 {
		g.computeChunk(0, n, &g.parallel.scratches[0])
		return
	}
	g.computeParallel(n)
}

// computeParallel dispatches work to the worker pool.
func (g *Game) computeParallel(n int) {
	if !g.parallel.running {
		g.parallel.startWorkers(g)
	}

	numWorkers := g.parallel.numWorkers
	chunkSize := (n + numWorkers - 1) / numWorkers

	chunksDispatched := 0
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		g.parallel.workChan <- workChunk{start: start, end: end}
		chunksDispatched++
	}

	for i := 0; i < chunksDispatched; i++ {
		<-g.parallel.doneChan
	}
}

// computeChunk senses and steers snapshot indices [i0, i1).
func (g *Game) computeChunk(i0, i1 int, scratch *workerScratch) {
	cfg := g.cfg
	for i := i0; i < i1; i++ {
		self := int32(i)
		p := &g.parallel.perceptions[i]

		scratch.Neighbors = systems.Sense(self, g.agents, g.fishGrid, scratch.Neighbors,
			&cfg.Perception, &cfg.Lifecycle, p)
		scratch.Neighbors = systems.SensePlankton(self, g.agents, g.planktonGrid, scratch.Neighbors,
			&cfg.Perception, p)

		g.parallel.accels[i] = g.steering.Compute(&g.agents[i], p, g.tank)
	}
}

// stopParallelWorkers should be called when shutting down the game.
func (g *Game) stopParallelWorkers() {
	if g.parallel != nil {
		g.parallel.stopWorkers()
	}
}
