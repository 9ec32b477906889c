package matcher

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func TestSearch_WorkerCountsAgree(t *testing.T) {
	puzzle := imaging.Clone(createNoiseImage(40, 30, 40))
	piece := imaging.Clone(createNoiseImage(7, 5, 41))

	want, err := Search(puzzle, piece, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	for _, workers := range []int{0, 2, 3, 7, 26, 64} {
		got, err := Search(puzzle, piece, workers)
		if err != nil {
			t.Fatalf("workers=%d: Search failed: %v", workers, err)
		}
		if got != want {
			t.Errorf("workers=%d: got %+v, want %+v", workers, got, want)
		}
	}
}

func TestSearch_SizeMismatch(t *testing.T) {
	puzzle := imaging.Clone(createSolidImage(5, 5, color.White))

	tests := []struct {
		name  string
		piece *image.NRGBA
	}{
		{"wider", imaging.Clone(createSolidImage(6, 1, color.White))},
		{"taller", imaging.Clone(createSolidImage(1, 6, color.White))},
		{"empty", &image.NRGBA{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Search(puzzle, tt.piece, 1); !errors.Is(err, ErrSizeMismatch) {
				t.Errorf("got err %v, want ErrSizeMismatch", err)
			}
		})
	}
}

func TestSearch_Score(t *testing.T) {
	// Piece is one gray pixel against a puzzle that differs by 51 per channel
	// everywhere except a single exact pixel.
	puzzle := imaging.Clone(createSolidImage(3, 3, color.RGBA{100, 100, 100, 255}))
	piece := imaging.Clone(createSolidImage(2, 1, color.RGBA{151, 151, 151, 255}))
	puzzle.Set(2, 1, color.NRGBA{151, 151, 151, 255})

	got, err := Search(puzzle, piece, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if got.X != 1 || got.Y != 1 {
		t.Errorf("offset: got (%d,%d), want (1,1)", got.X, got.Y)
	}
	// One exact pixel (1.0) and one off by 153 (0.8).
	want := (1.0 + 0.8) / 2
	if d := got.Score - want; d > 1e-12 || d < -1e-12 {
		t.Errorf("score: got %v, want %v", got.Score, want)
	}
}

func TestSearchCost(t *testing.T) {
	tests := []struct {
		name       string
		W, H, w, h int
		want       uint64
	}{
		{"single offset", 4, 4, 4, 4, 16},
		{"one pixel piece", 4, 4, 1, 1, 16},
		{"typical", 100, 50, 20, 10, 81 * 41 * 200},
		{"does not fit", 4, 4, 5, 1, 0},
		{"empty piece", 4, 4, 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SearchCost(tt.W, tt.H, tt.w, tt.h); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSearchCost_DoublingResolution(t *testing.T) {
	// With the piece much smaller than the puzzle, doubling both images
	// approaches a 16x increase.
	base := SearchCost(1000, 1000, 10, 10)
	doubled := SearchCost(2000, 2000, 20, 20)
	ratio := float64(doubled) / float64(base)
	if ratio < 15.5 || ratio > 16.5 {
		t.Errorf("cost ratio: got %.2f, want ~16", ratio)
	}
}

func TestOffsetDiff_GivesUpAtLimit(t *testing.T) {
	puzzle := imaging.Clone(createSolidImage(4, 4, color.Black))
	piece := imaging.Clone(createSolidImage(2, 2, color.White))

	total, ok := offsetDiff(puzzle, piece, 0, 0, 1<<62)
	if !ok || total != 4*maxPixelDiff {
		t.Errorf("unbounded: got (%d,%v), want (%d,true)", total, ok, 4*maxPixelDiff)
	}

	if _, ok := offsetDiff(puzzle, piece, 0, 0, 2*maxPixelDiff); ok {
		t.Error("expected offsetDiff to give up once the limit is reached")
	}
}

func TestAbsDiff(t *testing.T) {
	tests := []struct {
		a, b uint8
		want int
	}{
		{0, 0, 0},
		{255, 0, 255},
		{0, 255, 255},
		{100, 50, 50},
	}
	for _, tt := range tests {
		if got := absDiff(tt.a, tt.b); got != tt.want {
			t.Errorf("absDiff(%d,%d): got %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
