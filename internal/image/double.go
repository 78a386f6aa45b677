package image

// DoubleBuffer holds the "current" pixels and a "scratch" buffer of the same
// length. Stencil operators read Front, write Back, then call Swap so the
// freshly computed pixels become current and the stale ones become scratch.
// No buffer is reallocated in steady state.
//
// Thread safety: DoubleBuffer is not safe for concurrent use. Workers may
// write disjoint ranges of Back concurrently, but Swap must happen after
// all of them have finished.
type DoubleBuffer struct {
	front []byte
	back  []byte
	pool  *Pool
}

// NewDoubleBuffer wraps front as the current buffer. The scratch buffer is
// allocated lazily from pool on first use; a nil pool uses the default pool.
func NewDoubleBuffer(front []byte, pool *Pool) *DoubleBuffer {
	if pool == nil {
		pool = defaultPool
	}
	return &DoubleBuffer{front: front, pool: pool}
}

// Len returns the length of each buffer in bytes.
func (d *DoubleBuffer) Len() int {
	return len(d.front)
}

// Front returns the current buffer.
func (d *DoubleBuffer) Front() []byte {
	return d.front
}

// Back returns the scratch buffer, allocating it if needed.
// Its contents are unspecified until written.
func (d *DoubleBuffer) Back() []byte {
	if d.back == nil {
		d.back = d.pool.Get(len(d.front))
	}
	return d.back
}

// Prepare copies the current buffer into the scratch buffer and returns it.
// Pixels an operator does not write therefore survive the following Swap.
func (d *DoubleBuffer) Prepare() []byte {
	back := d.Back()
	copy(back, d.front)
	return back
}

// Swap exchanges the current and scratch buffers.
func (d *DoubleBuffer) Swap() {
	d.front, d.back = d.Back(), d.front
}

// Release returns both buffers to the pool. The DoubleBuffer must not be
// used afterwards.
func (d *DoubleBuffer) Release() {
	d.pool.Put(d.front)
	d.pool.Put(d.back)
	d.front, d.back = nil, nil
}
