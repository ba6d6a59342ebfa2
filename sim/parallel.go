package sim

import (
	"runtime"
	"sync"

	"github.com/pelagic-sim/abyss/entity"
	"github.com/pelagic-sim/abyss/world"
)

// parallelThreshold is the minimum entity count to fan the late update out
// to the worker pool. Below this, single-threaded is faster than the
// goroutine overhead.
const parallelThreshold = 64

// lateJob is one entity's end-of-tick self update. Jobs are collected in
// registry order and their outcomes applied in the same order, so the
// concurrent compute step cannot reorder anything observable.
type lateJob struct {
	id   world.ID
	pos  world.Position
	proc entity.LateProcessor
}

// workChunk is a range of jobs for one worker.
type workChunk struct {
	start, end int
}

// lateState owns the persistent worker pool for the late-processing phase.
type lateState struct {
	jobs     []lateJob
	outcomes []entity.LateOutcome

	numWorkers int
	workChan   chan workChunk
	doneChan   chan struct{}
	stopChan   chan struct{}
	wg         sync.WaitGroup
	running    bool
}

func newLateState() *lateState {
	return &lateState{
		numWorkers: runtime.GOMAXPROCS(0),
		jobs:       make([]lateJob, 0, 512),
		outcomes:   make([]entity.LateOutcome, 0, 512),
	}
}

// startWorkers launches the persistent worker goroutines.
func (p *lateState) startWorkers() {
	if p.running {
		return
	}
	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *lateState) stopWorkers() {
	if !p.running {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *lateState) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			p.computeChunk(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// computeChunk runs the self updates for a range of jobs. Each update
// touches only its own entity, which is the whole reason this phase can
// run concurrently.
func (p *lateState) computeChunk(start, end int) {
	for i := start; i < end; i++ {
		p.outcomes[i] = p.jobs[i].proc.LateProcess()
	}
}

// compute runs all collected jobs, in parallel when the population is
// large enough to pay for it.
func (p *lateState) compute() {
	n := len(p.jobs)
	if cap(p.outcomes) < n {
		p.outcomes = make([]entity.LateOutcome, n)
	}
	p.outcomes = p.outcomes[:n]

	if n < parallelThreshold {
		p.computeChunk(0, n)
		return
	}

	if !p.running {
		p.startWorkers()
	}
	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end}
		dispatched++
	}
	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}
