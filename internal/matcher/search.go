package matcher

import (
	"fmt"
	"image"
	"math"
	"runtime"
	"sync"
)

// maxPixelDiff is the largest |dR|+|dG|+|dB| between two 8-bit pixels.
const maxPixelDiff = 3 * 255

// Candidate is the best offset found by Search, in the coordinate space of
// the images that were searched.
type Candidate struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Score float64 `json:"score"`

	// diff is the summed per-pixel difference at (X, Y).
	diff uint64
}

// SearchCost returns the number of pixel comparisons an exhaustive search of
// a w x h piece over a W x H puzzle performs: (W-w+1)*(H-h+1)*w*h. It is zero
// when the piece does not fit.
func SearchCost(W, H, w, h int) uint64 {
	if w < 1 || h < 1 || w > W || h > H {
		return 0
	}
	return uint64(W-w+1) * uint64(H-h+1) * uint64(w) * uint64(h)
}

// Search slides small over every offset of large and returns the offset with
// the highest mean similarity. Ties go to the lowest (y, x) in row-major
// order.
//
// workers <= 0 uses one worker per CPU. Each worker scans a contiguous band
// of rows, and the bands are reduced in order, so the result does not depend
// on the number of workers or on scheduling.
func Search(large, small *image.NRGBA, workers int) (Candidate, error) {
	W, H := large.Rect.Dx(), large.Rect.Dy()
	w, h := small.Rect.Dx(), small.Rect.Dy()
	if w < 1 || h < 1 {
		return Candidate{}, fmt.Errorf("%w: piece is empty", ErrSizeMismatch)
	}
	if w > W || h > H {
		return Candidate{}, fmt.Errorf("%w: piece %dx%d, puzzle %dx%d", ErrSizeMismatch, w, h, W, H)
	}

	rows := H - h + 1
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > rows {
		workers = rows
	}

	var best Candidate
	if workers == 1 {
		best = scanRows(large, small, 0, rows)
	} else {
		bands := make([]Candidate, workers)
		per := (rows + workers - 1) / workers
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			y0 := i * per
			y1 := min(y0+per, rows)
			if y0 >= y1 {
				bands[i] = Candidate{diff: math.MaxUint64}
				continue
			}
			wg.Add(1)
			go func(i, y0, y1 int) {
				defer wg.Done()
				bands[i] = scanRows(large, small, y0, y1)
			}(i, y0, y1)
		}
		wg.Wait()

		best = bands[0]
		for _, c := range bands[1:] {
			if c.diff < best.diff {
				best = c
			}
		}
	}

	total := uint64(maxPixelDiff) * uint64(w) * uint64(h)
	best.Score = float64(total-best.diff) / float64(total)
	return best, nil
}

// scanRows scans offsets with y in [y0, y1) and every valid x, keeping the
// first offset with the smallest summed difference.
func scanRows(large, small *image.NRGBA, y0, y1 int) Candidate {
	maxX := large.Rect.Dx() - small.Rect.Dx()
	best := Candidate{X: -1, Y: -1, diff: math.MaxUint64}
	for y := y0; y < y1; y++ {
		for x := 0; x <= maxX; x++ {
			if d, ok := offsetDiff(large, small, x, y, best.diff); ok {
				best = Candidate{X: x, Y: y, diff: d}
			}
		}
	}
	return best
}

// offsetDiff sums |dR|+|dG|+|dB| over every piece pixel with the piece placed
// at (x, y). It gives up and reports false as soon as the running sum reaches
// limit, since such an offset can no longer win.
func offsetDiff(large, small *image.NRGBA, x, y int, limit uint64) (uint64, bool) {
	w, h := small.Rect.Dx(), small.Rect.Dy()
	n := w * 4
	var total uint64
	for sy := 0; sy < h; sy++ {
		lo := large.PixOffset(large.Rect.Min.X+x, large.Rect.Min.Y+y+sy)
		so := small.PixOffset(small.Rect.Min.X, small.Rect.Min.Y+sy)
		lp := large.Pix[lo : lo+n : lo+n]
		sp := small.Pix[so : so+n : so+n]
		var row uint64
		for i := 0; i < n; i += 4 {
			row += uint64(absDiff(lp[i], sp[i]) + absDiff(lp[i+1], sp[i+1]) + absDiff(lp[i+2], sp[i+2]))
		}
		total += row
		if total >= limit {
			return total, false
		}
	}
	return total, true
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
