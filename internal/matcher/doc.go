// Package matcher locates a small image (a puzzle piece) inside a larger one
// (the completed puzzle) by brute-force template matching.
//
// # Algorithm
//
// FindBestMatch runs three steps:
//
//  1. Downscale both images by the same scale factor s in (0,1] using the
//     same resampling filter. Output sizes are floor(width*s) x floor(height*s).
//  2. Slide the scaled piece over every offset of the scaled puzzle, rows
//     first (y outer, x inner). At each offset the per-pixel difference is
//     |dR|+|dG|+|dB| (0..765) and the per-pixel similarity is (765-diff)/765.
//     The offset score is the mean similarity over all piece pixels.
//  3. Divide the winning offset by s to map it back to puzzle coordinates.
//
// Alpha is ignored. The score is a normalized per-pixel average, so it does
// not depend on the scale factor beyond resampling noise.
//
// # Tie Breaking
//
// The highest score wins. When several offsets share it, the first one met
// in row-major order (lowest y, then lowest x) wins. This holds for the
// parallel search as well: the offset grid is split into contiguous row bands
// and the band results are reduced in band order.
//
// # Cost
//
// The search is O(W*H*w*h) for a W x H puzzle and a w x h piece. Doubling
// the resolution of both images multiplies the cost by 16, which is why the
// scale factor exists. Use SearchCost to check the cost before searching.
//
// # Errors
//
//   - ErrInvalidScale: s <= 0, s > 1, or a scaled dimension collapses to zero
//   - ErrSizeMismatch: the scaled piece is wider or taller than the scaled puzzle
//
// Decoding failures come from the imaging package and never reach this one.
package matcher
