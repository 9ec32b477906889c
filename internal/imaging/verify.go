package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// VerifyResult compares a piece with the puzzle region it was matched to,
// at full resolution.
type VerifyResult struct {
	Region Region `json:"region"`

	// Similarity uses the matcher's formula, mean of (765-|dR|-|dG|-|dB|)/765,
	// but without downscaling.
	Similarity float64 `json:"similarity"`

	// MeanDeltaE is the mean CIE76 distance in L*a*b* space. Below ~2.3 is
	// generally imperceptible.
	MeanDeltaE float64 `json:"mean_delta_e"`

	// PHashDistance is the Hamming distance (0-64) between the perceptual
	// hashes of the piece and the region.
	PHashDistance int `json:"phash_distance"`

	// PixelsDifferent counts pixels whose mean channel difference exceeds 10.
	PixelsDifferent int `json:"pixels_different"`
	TotalPixels     int `json:"total_pixels"`
}

// VerifyMatch checks a match by comparing piece with the piece-sized region
// of puzzle whose top-left corner is (x, y).
//
// The region must lie entirely inside the puzzle. Alpha is ignored.
func VerifyMatch(puzzle, piece image.Image, x, y int) (*VerifyResult, error) {
	pb := piece.Bounds()
	r := Region{X1: x, Y1: y, X2: x + pb.Dx(), Y2: y + pb.Dy()}
	rect, err := r.rect(puzzle)
	if err != nil {
		return nil, err
	}

	totalPixels := pb.Dx() * pb.Dy()
	pixelsDifferent := 0
	var diffSum int
	var deltaE float64

	for dy := 0; dy < pb.Dy(); dy++ {
		for dx := 0; dx < pb.Dx(); dx++ {
			r1, g1, b1 := rgb8(puzzle.At(rect.Min.X+dx, rect.Min.Y+dy))
			r2, g2, b2 := rgb8(piece.At(pb.Min.X+dx, pb.Min.Y+dy))

			diff := absDiff(r1, r2) + absDiff(g1, g2) + absDiff(b1, b2)
			diffSum += diff
			if float64(diff)/3.0 > 10 {
				pixelsDifferent++
			}

			deltaE += labColor(r1, g1, b1).DistanceLab(labColor(r2, g2, b2))
		}
	}

	// Hash both sides from the same pixel layout so identical content
	// hashes identically.
	region := imaging.Crop(puzzle, rect)
	regionHash, err := goimagehash.PerceptionHash(region)
	if err != nil {
		return nil, fmt.Errorf("failed to hash region: %w", err)
	}
	pieceHash, err := goimagehash.PerceptionHash(imaging.Clone(piece))
	if err != nil {
		return nil, fmt.Errorf("failed to hash piece: %w", err)
	}
	distance, err := regionHash.Distance(pieceHash)
	if err != nil {
		return nil, fmt.Errorf("failed to compare hashes: %w", err)
	}

	maxDiff := 765 * totalPixels
	return &VerifyResult{
		Region:          r,
		Similarity:      math.Round(float64(maxDiff-diffSum)/float64(maxDiff)*1000) / 1000,
		MeanDeltaE:      math.Round(deltaE/float64(totalPixels)*100) / 100,
		PHashDistance:   distance,
		PixelsDifferent: pixelsDifferent,
		TotalPixels:     totalPixels,
	}, nil
}

// rgb8 returns the 8-bit color channels of c without alpha premultiplication.
func rgb8(c color.Color) (uint8, uint8, uint8) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return n.R, n.G, n.B
}

func labColor(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
