// Package coords converts positions, vectors and headings from the source log
// frame into the canonical frame used by every scenario record.
//
// The source frame is right-handed with headings measured counter-clockwise;
// the canonical frame mirrors it across the x-axis:
//
//   - [VectorToCanonical]: (x, y) -> (x, -y), an involution
//   - [PointToCanonical]: drops height, then flips
//   - [HeadingToCanonical]: -theta wrapped into (-pi, pi]
//
// All functions are pure. NaN inputs propagate unchanged.
package coords
