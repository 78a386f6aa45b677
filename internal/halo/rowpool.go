package halo

import "sync"

// Row is a pooled copy of one image row in transit between units.
type Row struct {
	Data []byte
}

// RowPool provides reuse of Row buffers via sync.Pool.
//
// Rows are grouped by length: one sync.Pool per distinct row size, created
// on first use. A halo exchange moves two rows per unit per operation, so
// the same few sizes recur for the life of an image.
//
// Thread safety: RowPool is safe for concurrent use.
type RowPool struct {
	// pools holds one *sync.Pool per row length.
	pools sync.Map
}

// NewRowPool creates a new row pool.
func NewRowPool() *RowPool {
	return &RowPool{}
}

// Get retrieves a row of exactly n bytes from the pool or creates one.
// The contents are unspecified. Returns nil if n is not positive.
func (p *RowPool) Get(n int) *Row {
	if n <= 0 {
		return nil
	}
	return p.getOrCreatePool(n).Get().(*Row)
}

// Put returns a row to the pool for reuse.
// If row is nil, this is a no-op.
func (p *RowPool) Put(row *Row) {
	if row == nil || len(row.Data) == 0 {
		return
	}
	if pool, ok := p.pools.Load(len(row.Data)); ok {
		pool.(*sync.Pool).Put(row)
	}
	// If pool doesn't exist, let GC reclaim the row
}

// Copy returns a pooled row holding a copy of src.
func (p *RowPool) Copy(src []byte) *Row {
	row := p.Get(len(src))
	if row != nil {
		copy(row.Data, src)
	}
	return row
}

// getOrCreatePool gets or creates the sync.Pool for rows of length n.
func (p *RowPool) getOrCreatePool(n int) *sync.Pool {
	if pool, ok := p.pools.Load(n); ok {
		return pool.(*sync.Pool)
	}

	newPool := &sync.Pool{
		New: func() any {
			return &Row{Data: make([]byte, n)}
		},
	}

	// Another goroutine may have stored first; use theirs.
	actual, _ := p.pools.LoadOrStore(n, newPool)
	return actual.(*sync.Pool)
}
