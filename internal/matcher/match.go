package matcher

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
)

// Size is a width and height in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// MatchResult is the outcome of one FindBestMatch call.
//
// X and Y are the top-left offset of the piece in the original puzzle's
// pixel space: the winning scaled offset divided by the scale factor. They
// are not rounded. Score is the mean per-pixel similarity in [0,1] at the
// winning offset; 1 means identical colors.
type MatchResult struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score float64 `json:"score"`

	// ScaledX and ScaledY are the winning offset in the scaled puzzle.
	ScaledX int `json:"scaled_x"`
	ScaledY int `json:"scaled_y"`

	ScaleFactor  float64 `json:"scale_factor"`
	ScaledPuzzle Size    `json:"scaled_puzzle"`
	ScaledPiece  Size    `json:"scaled_piece"`
}

// Options control how a Matcher resamples and searches.
type Options struct {
	// Filter resamples both images. The zero value selects DefaultFilter.
	Filter imaging.ResampleFilter

	// Workers is the number of goroutines used by the search. Zero or less
	// uses one per CPU.
	Workers int
}

// Matcher runs FindBestMatch with fixed options. It holds no per-call state
// and is safe for concurrent use.
type Matcher struct {
	filter  imaging.ResampleFilter
	workers int
}

// New creates a Matcher.
func New(opts Options) *Matcher {
	m := &Matcher{filter: opts.Filter, workers: opts.Workers}
	if m.filter.Kernel == nil {
		m.filter, _ = ParseFilter(DefaultFilter)
	}
	return m
}

// FindBestMatch finds the piece inside the puzzle using default options.
func FindBestMatch(puzzle, piece image.Image, scale float64) (*MatchResult, error) {
	return New(Options{}).FindBestMatch(puzzle, piece, scale)
}

// FindBestMatch downscales puzzle and piece by scale, searches every offset
// and maps the best one back to puzzle coordinates. The inputs are never
// modified, and the same inputs always give the same result.
func (m *Matcher) FindBestMatch(puzzle, piece image.Image, scale float64) (*MatchResult, error) {
	if puzzle == nil || piece == nil {
		return nil, errors.New("puzzle and piece images are required")
	}

	est, err := Estimate(puzzle.Bounds(), piece.Bounds(), scale)
	if err != nil {
		return nil, err
	}

	var (
		scaled [2]*image.NRGBA
		errs   [2]error
		wg     sync.WaitGroup
	)
	for i, img := range [2]image.Image{puzzle, piece} {
		wg.Add(1)
		go func(i int, img image.Image) {
			defer wg.Done()
			scaled[i], errs[i] = Downscale(img, scale, m.filter)
		}(i, img)
	}
	wg.Wait()
	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}

	best, err := Search(scaled[0], scaled[1], m.workers)
	if err != nil {
		return nil, err
	}

	x, y := Rescale(best.X, best.Y, scale)
	return &MatchResult{
		X:            x,
		Y:            y,
		Score:        best.Score,
		ScaledX:      best.X,
		ScaledY:      best.Y,
		ScaleFactor:  scale,
		ScaledPuzzle: est.ScaledPuzzle,
		ScaledPiece:  est.ScaledPiece,
	}, nil
}

// Rescale maps an offset in scaled space back to original pixel space.
func Rescale(x, y int, scale float64) (float64, float64) {
	return float64(x) / scale, float64(y) / scale
}

// CostEstimate describes the work FindBestMatch would do for a pair of
// image sizes.
type CostEstimate struct {
	ScaledPuzzle Size `json:"scaled_puzzle"`
	ScaledPiece  Size `json:"scaled_piece"`

	// Offsets is the number of candidate positions.
	Offsets uint64 `json:"offsets"`

	// Comparisons is the number of pixel comparisons, see SearchCost.
	Comparisons uint64 `json:"comparisons"`
}

// Estimate computes the scaled sizes and search cost without touching any
// pixels. It fails with the same errors FindBestMatch would.
func Estimate(puzzle, piece image.Rectangle, scale float64) (*CostEstimate, error) {
	pw, ph, err := ScaledSize(puzzle.Dx(), puzzle.Dy(), scale)
	if err != nil {
		return nil, err
	}
	sw, sh, err := ScaledSize(piece.Dx(), piece.Dy(), scale)
	if err != nil {
		return nil, err
	}
	if sw > pw || sh > ph {
		return nil, fmt.Errorf("%w: scaled piece %dx%d, scaled puzzle %dx%d",
			ErrSizeMismatch, sw, sh, pw, ph)
	}
	return &CostEstimate{
		ScaledPuzzle: Size{Width: pw, Height: ph},
		ScaledPiece:  Size{Width: sw, Height: sh},
		Offsets:      uint64(pw-sw+1) * uint64(ph-sh+1),
		Comparisons:  SearchCost(pw, ph, sw, sh),
	}, nil
}
