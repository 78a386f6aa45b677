// Package reduce implements the global intensity reductions of the engine:
// the 256-bin histogram and the CDF-based equalization remap.
//
// Histograms are tallied per execution unit over the pixels it owns and
// combined by element-wise addition, which is commutative and associative,
// so the combined table is independent of how the pixels were split. The
// equalization table is derived only from a fully combined histogram.
package reduce
