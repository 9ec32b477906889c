package matcher

import "errors"

var (
	// ErrInvalidScale is returned when the scale factor is outside (0,1]
	// or shrinks an image to nothing.
	ErrInvalidScale = errors.New("invalid scale factor")

	// ErrSizeMismatch is returned when the scaled piece does not fit inside
	// the scaled puzzle.
	ErrSizeMismatch = errors.New("piece does not fit inside puzzle")
)
