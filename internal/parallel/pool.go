package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a pool of persistent goroutines for data-parallel stencil
// passes.
//
// Work is cut into static, contiguous index ranges with the same rule as
// Partition, one range per worker, so each worker writes a disjoint part of
// the destination and no locking is needed. ParallelFor returns only after
// every range has finished, which is the join barrier between operations.
//
// Thread safety: ParallelFor may be called concurrently. Close must not race
// with ParallelFor.
type WorkerPool struct {
	workers int

	// queues[i] feeds worker i. Range i of a ParallelFor always lands on
	// queue i, so a given row band is revisited by the same goroutine.
	queues []chan func()

	stop    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewWorkerPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan func(), workers),
		stop:    make(chan struct{}),
	}
	for i := range p.queues {
		p.queues[i] = make(chan func(), 1)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for _, q := range p.queues {
		go p.serve(q)
	}
	return p
}

func (p *WorkerPool) serve(q chan func()) {
	defer p.wg.Done()
	for {
		select {
		case fn := <-q:
			fn()
		case <-p.stop:
			// Finish anything accepted before the stop signal.
			for {
				select {
				case fn := <-q:
					fn()
				default:
					return
				}
			}
		}
	}
}

// ParallelFor splits [0, n) into at most Workers() contiguous ranges and
// runs fn(start, end) for each range on its own worker. It blocks until
// all ranges complete. Empty ranges are skipped.
//
// If the pool is closed, or only one range results, fn runs on the calling
// goroutine.
func (p *WorkerPool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	parts := min(p.workers, n)
	if parts == 1 || !p.running.Load() {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	wg.Add(parts)
	for i := range parts {
		b := Partition(n, parts, i)
		task := func() {
			defer wg.Done()
			fn(b.Start, b.End())
		}
		select {
		case p.queues[i] <- task:
		case <-p.stop:
			task()
		}
	}
	wg.Wait()
}

// Close stops the workers after queued ranges drain. It is idempotent.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.stop)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}
