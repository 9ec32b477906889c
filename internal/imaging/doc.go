// Package imaging loads images and produces the artifacts that surround a
// piece match: crops of the matched region, a circled overlay of the
// puzzle, a full-resolution verification of the match and a color summary.
//
// The matching itself lives in package matcher; this package only decodes
// inputs for it and post-processes its results.
//
// # Coordinate System
//
// All pixel coordinates are 0-based and relative to the image's top-left
// pixel, even when the decoded image's bounds do not start at (0,0):
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (X1,Y1) is inclusive and (X2,Y2) is exclusive
//
// # Decoding
//
// Decode and ImageCache accept PNG, JPEG, GIF, WebP and BMP. Anything else
// fails with ErrDecode. ImageCache also enforces a file size limit
// (ErrFileTooLarge).
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The other functions never modify
// their inputs; annotations are drawn on a copy.
package imaging
