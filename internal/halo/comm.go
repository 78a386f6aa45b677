package halo

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/stencil/internal/reduce"
)

// NoRank is passed to Sendrecv in place of a peer to skip that half of the
// exchange.
const NoRank = -1

// root is the rank that coordinates collectives.
const root = 0

var (
	// ErrAborted is returned when communication is abandoned because the
	// group's context was cancelled, usually after another unit failed.
	ErrAborted = errors.New("halo: communication aborted")

	// ErrMismatch is returned when a received message does not carry the
	// expected tag or payload type. It indicates units running different
	// operation sequences.
	ErrMismatch = errors.New("halo: message mismatch")

	// ErrRank is returned for a peer rank outside the group.
	ErrRank = errors.New("halo: invalid rank")
)

// Message tags. Each collective uses its own tag so that units that fall
// out of step are detected rather than silently mixing payloads.
const (
	tagRowUp = iota + 1
	tagRowDown
	tagReduce
	tagBarrier
	tagBcast
	tagScatter
	tagGather
)

type message struct {
	tag     int
	payload any
}

// Comm connects a fixed group of units. There is one unbuffered channel per
// ordered pair of ranks, so every send rendezvouses with its receive.
//
// Thread safety: each Endpoint must be used by a single goroutine. Distinct
// endpoints of the same Comm are used concurrently.
type Comm struct {
	size  int
	links [][]chan message // links[from][to]
	rows  *RowPool
}

// NewComm creates a communicator for size units.
// If size is 0 or negative, 1 is used.
func NewComm(size int) *Comm {
	if size <= 0 {
		size = 1
	}
	links := make([][]chan message, size)
	for from := range links {
		links[from] = make([]chan message, size)
		for to := range links[from] {
			if from != to {
				links[from][to] = make(chan message)
			}
		}
	}
	return &Comm{size: size, links: links, rows: NewRowPool()}
}

// Size returns the number of units in the group.
func (c *Comm) Size() int {
	return c.size
}

// Endpoint returns the view of the communicator for one rank.
func (c *Comm) Endpoint(rank int) *Endpoint {
	if rank < 0 || rank >= c.size {
		panic(fmt.Sprintf("halo: endpoint rank %d out of range [0,%d)", rank, c.size))
	}
	return &Endpoint{comm: c, rank: rank}
}

// Endpoint is one unit's handle on a Comm.
type Endpoint struct {
	comm *Comm
	rank int
}

// Rank returns the unit's rank.
func (e *Endpoint) Rank() int { return e.rank }

// Size returns the number of units in the group.
func (e *Endpoint) Size() int { return e.comm.size }

func (e *Endpoint) checkPeer(peer int) error {
	if peer < 0 || peer >= e.comm.size || peer == e.rank {
		return fmt.Errorf("%w: %d (self %d, size %d)", ErrRank, peer, e.rank, e.comm.size)
	}
	return nil
}

func aborted(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrAborted, context.Cause(ctx))
}

// Send delivers payload to rank to, blocking until it is received.
func (e *Endpoint) Send(ctx context.Context, to, tag int, payload any) error {
	if err := e.checkPeer(to); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return aborted(ctx)
	}
	select {
	case e.comm.links[e.rank][to] <- message{tag: tag, payload: payload}:
		return nil
	case <-ctx.Done():
		return aborted(ctx)
	}
}

// Recv blocks until a message from rank from arrives and returns its
// payload. A message with a different tag is an ErrMismatch.
func (e *Endpoint) Recv(ctx context.Context, from, tag int) (any, error) {
	if err := e.checkPeer(from); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, aborted(ctx)
	}
	select {
	case m := <-e.comm.links[from][e.rank]:
		if m.tag != tag {
			return nil, fmt.Errorf("%w: rank %d got tag %d from %d, want %d", ErrMismatch, e.rank, m.tag, from, tag)
		}
		return m.payload, nil
	case <-ctx.Done():
		return nil, aborted(ctx)
	}
}

// Sendrecv sends payload to rank to while receiving from rank from, and
// returns once both have completed. Either peer may be NoRank, in which case
// that half is skipped and, for the receive, a nil payload is returned.
//
// Both halves are offered at once, so a chain of units each sending to one
// neighbor and receiving from the other cannot deadlock.
func (e *Endpoint) Sendrecv(ctx context.Context, to int, payload any, from, tag int) (any, error) {
	var sendc chan<- message
	var recvc <-chan message
	if to != NoRank {
		if err := e.checkPeer(to); err != nil {
			return nil, err
		}
		sendc = e.comm.links[e.rank][to]
	}
	if from != NoRank {
		if err := e.checkPeer(from); err != nil {
			return nil, err
		}
		recvc = e.comm.links[from][e.rank]
	}

	if ctx.Err() != nil {
		return nil, aborted(ctx)
	}

	var got any
	out := message{tag: tag, payload: payload}
	for sendc != nil || recvc != nil {
		select {
		case sendc <- out:
			sendc = nil
		case m := <-recvc:
			if m.tag != tag {
				return nil, fmt.Errorf("%w: rank %d got tag %d from %d, want %d", ErrMismatch, e.rank, m.tag, from, tag)
			}
			got = m.payload
			recvc = nil
		case <-ctx.Done():
			return nil, aborted(ctx)
		}
	}
	return got, nil
}

// Barrier returns once every unit in the group has entered it.
func (e *Endpoint) Barrier(ctx context.Context) error {
	if e.rank != root {
		if err := e.Send(ctx, root, tagBarrier, nil); err != nil {
			return err
		}
		_, err := e.Recv(ctx, root, tagBarrier)
		return err
	}
	for r := 1; r < e.comm.size; r++ {
		if _, err := e.Recv(ctx, r, tagBarrier); err != nil {
			return err
		}
	}
	for r := 1; r < e.comm.size; r++ {
		if err := e.Send(ctx, r, tagBarrier, nil); err != nil {
			return err
		}
	}
	return nil
}

// Allreduce replaces h with the bin-wise sum of every unit's h. All units
// return the same table. Every unit blocks until all have contributed.
func (e *Endpoint) Allreduce(ctx context.Context, h *reduce.Histogram) error {
	if e.rank != root {
		local := *h
		if err := e.Send(ctx, root, tagReduce, &local); err != nil {
			return err
		}
		v, err := e.Recv(ctx, root, tagReduce)
		if err != nil {
			return err
		}
		sum, ok := v.(*reduce.Histogram)
		if !ok {
			return fmt.Errorf("%w: allreduce payload %T", ErrMismatch, v)
		}
		*h = *sum
		return nil
	}

	for r := 1; r < e.comm.size; r++ {
		v, err := e.Recv(ctx, r, tagReduce)
		if err != nil {
			return err
		}
		part, ok := v.(*reduce.Histogram)
		if !ok {
			return fmt.Errorf("%w: allreduce payload %T", ErrMismatch, v)
		}
		h.Merge(part)
	}
	for r := 1; r < e.comm.size; r++ {
		sum := *h
		if err := e.Send(ctx, r, tagReduce, &sum); err != nil {
			return err
		}
	}
	return nil
}

// Bcast distributes v from the root to every unit and returns it. The value
// is shared, so it must be immutable.
func (e *Endpoint) Bcast(ctx context.Context, v any) (any, error) {
	if e.rank != root {
		return e.Recv(ctx, root, tagBcast)
	}
	for r := 1; r < e.comm.size; r++ {
		if err := e.Send(ctx, r, tagBcast, v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Scatter hands parts[r] to unit r and returns this unit's part. Only the
// root's parts argument is read; it must have Size entries. Each part is
// copied in transit.
func (e *Endpoint) Scatter(ctx context.Context, parts [][]byte) ([]byte, error) {
	if e.rank != root {
		v, err := e.Recv(ctx, root, tagScatter)
		if err != nil {
			return nil, err
		}
		part, ok := v.([]byte)
		if !ok {
			return nil, fmt.Errorf("%w: scatter payload %T", ErrMismatch, v)
		}
		return part, nil
	}
	if len(parts) != e.comm.size {
		return nil, fmt.Errorf("%w: scatter of %d parts to %d units", ErrMismatch, len(parts), e.comm.size)
	}
	for r := 1; r < e.comm.size; r++ {
		if err := e.Send(ctx, r, tagScatter, clone(parts[r])); err != nil {
			return nil, err
		}
	}
	return clone(parts[root]), nil
}

// Gather collects every unit's part at the root in rank order. The root
// receives all parts; other units receive nil. Each part is copied in
// transit.
func (e *Endpoint) Gather(ctx context.Context, part []byte) ([][]byte, error) {
	if e.rank != root {
		return nil, e.Send(ctx, root, tagGather, clone(part))
	}
	parts := make([][]byte, e.comm.size)
	parts[root] = clone(part)
	for r := 1; r < e.comm.size; r++ {
		v, err := e.Recv(ctx, r, tagGather)
		if err != nil {
			return nil, err
		}
		p, ok := v.([]byte)
		if !ok {
			return nil, fmt.Errorf("%w: gather payload %T", ErrMismatch, v)
		}
		parts[r] = p
	}
	return parts, nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
