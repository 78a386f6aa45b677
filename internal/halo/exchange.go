package halo

import (
	"context"
	"fmt"
)

// Exchange refreshes both halo rows of b from its neighbors. Every unit of
// the group must call it together. Units that own no rows return at once;
// no neighbor ever expects data from them.
//
// The exchange runs in two shifts. First every unit sends its first owned
// row up while receiving its bottom halo from below; then every unit sends
// its last owned row down while receiving its top halo from above. At the
// global top and bottom edge the halo is a copy of the unit's own edge row.
func Exchange(ctx context.Context, ep *Endpoint, b *Block) error {
	if b.Empty() {
		return nil
	}
	up, down := NoRank, NoRank
	if b.HasUp() {
		up = ep.Rank() - 1
	}
	if b.HasDown() {
		down = ep.Rank() + 1
	}
	n := b.Rows()

	if err := shiftRow(ctx, ep, up, b.Row(1), down, b.Row(n+1), tagRowUp); err != nil {
		return fmt.Errorf("halo: %v: upward shift: %w", b.Part, err)
	}
	if err := shiftRow(ctx, ep, down, b.Row(n), up, b.Row(0), tagRowDown); err != nil {
		return fmt.Errorf("halo: %v: downward shift: %w", b.Part, err)
	}

	if up == NoRank {
		copy(b.Row(0), b.Row(1))
	}
	if down == NoRank {
		copy(b.Row(n+1), b.Row(n))
	}
	return nil
}

// shiftRow sends a copy of send to rank to and copies the row received from
// rank from into recv.
func shiftRow(ctx context.Context, ep *Endpoint, to int, send []byte, from int, recv []byte, tag int) error {
	pool := ep.comm.rows

	var out any
	if to != NoRank {
		out = pool.Copy(send)
	}
	v, err := ep.Sendrecv(ctx, to, out, from, tag)
	if err != nil {
		return err
	}
	if from == NoRank {
		return nil
	}

	row, ok := v.(*Row)
	if !ok || len(row.Data) != len(recv) {
		return fmt.Errorf("%w: halo row from %d", ErrMismatch, from)
	}
	copy(recv, row.Data)
	pool.Put(row)
	return nil
}
