// Package halo implements distributed block-row execution: the per-unit
// halo block, a message-passing communicator between units, and the halo
// exchange that keeps boundary rows consistent.
//
// A unit owning rows [start, start+n) of an image stores them as rows
// 1..n of a local buffer with n+2 rows. Row 0 (top halo) and row n+1
// (bottom halo) hold copies of the neighbors' adjacent owned rows, or, at
// the global top and bottom edge, a duplicate of the unit's own first or
// last owned row. A 3x3 stencil applied to any owned row therefore sees the
// same neighborhood it would see in the whole image.
//
// Units never share buffers. Every payload that crosses a Comm is a copy,
// and the receiver copies it again into its own storage, so a unit's block
// is only ever touched by the goroutine that owns it.
//
// Communication is synchronous: a send completes only when the matching
// receive does. Every blocking call takes a context, and cancelling it
// aborts all pending communication, which is how one failed unit brings
// the whole group down.
package halo
