// Package parallel provides the work decomposition used by the stencil
// engine: block-row partitioning of an image across execution units, and a
// persistent worker pool that runs static, contiguous index ranges.
//
// Both the shared-memory and the distributed execution models cut work the
// same way: unit r of P owns H/P rows, plus one extra row if r < H mod P.
//
// Thread safety: Partition and Blocks are pure. WorkerPool is safe for
// concurrent use.
package parallel

import "fmt"

// Block is the contiguous run of global rows owned by one execution unit.
type Block struct {
	// Rank is the 0-based index of the owning unit.
	Rank int

	// Start is the first global row owned by the unit.
	Start int

	// Rows is the number of rows owned. It may be zero when there are more
	// units than rows; such a unit takes part in every operation as a no-op.
	Rows int
}

// End returns the global row one past the last owned row.
func (b Block) End() int {
	return b.Start + b.Rows
}

// Empty reports whether the unit owns no rows.
func (b Block) Empty() bool {
	return b.Rows == 0
}

// Contains reports whether global row y is owned by the unit.
func (b Block) Contains(y int) bool {
	return y >= b.Start && y < b.End()
}

// String implements fmt.Stringer.
func (b Block) String() string {
	return fmt.Sprintf("rank %d rows [%d,%d)", b.Rank, b.Start, b.End())
}

// Partition returns the rows owned by unit rank when total rows are split
// across units. Every unit owns either floor(total/units) or
// ceil(total/units) rows; the total%units lower ranks get the larger size.
// Consecutive ranks own consecutive rows and the sizes sum to total.
//
// The caller guarantees units >= 1 and 0 <= rank < units.
func Partition(total, units, rank int) Block {
	base := total / units
	rem := total % units

	rows := base
	if rank < rem {
		rows++
	}
	return Block{
		Rank:  rank,
		Start: rank*base + min(rank, rem),
		Rows:  rows,
	}
}

// Blocks returns the partition of total rows for every rank in order.
func Blocks(total, units int) []Block {
	blocks := make([]Block, units)
	for r := range units {
		blocks[r] = Partition(total, units, r)
	}
	return blocks
}
