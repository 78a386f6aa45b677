package engine

import (
	"github.com/gogpu/stencil/internal/parallel"
)

// Shared runs each operation as static row ranges on a persistent worker
// pool over the single image buffer.
//
// Stencil passes write disjoint rows of the scratch buffer and need no
// locking. The histogram is tallied into a private table per range and the
// tables are merged under a mutex, the only synchronized section.
type Shared struct {
	local
	pool *parallel.WorkerPool
}

// NewShared creates a shared-memory strategy with the given number of
// workers. If workers is 0 or negative, GOMAXPROCS is used.
func NewShared(workers int) *Shared {
	pool := parallel.NewWorkerPool(workers)
	return &Shared{
		local: local{forEach: pool.ParallelFor},
		pool:  pool,
	}
}

// Kind implements Strategy.
func (s *Shared) Kind() Kind { return KindShared }

// Workers returns the size of the worker pool.
func (s *Shared) Workers() int { return s.pool.Workers() }

// Close stops the worker pool.
func (s *Shared) Close() error {
	s.pool.Close()
	s.img = nil
	return nil
}
