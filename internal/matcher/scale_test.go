package matcher

import (
	"errors"
	"image/color"
	"testing"
)

func TestScaledSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		scale        float64
		wantW, wantH int
	}{
		{"unchanged", 10, 7, 1.0, 10, 7},
		{"half even", 10, 8, 0.5, 5, 4},
		{"half odd floors", 11, 9, 0.5, 5, 4},
		{"third", 10, 10, 1.0 / 3, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := ScaledSize(tt.w, tt.h, tt.scale)
			if err != nil {
				t.Fatalf("ScaledSize failed: %v", err)
			}
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestScaledSize_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		scale float64
	}{
		{"zero scale", 10, 10, 0},
		{"negative scale", 10, 10, -1},
		{"above one", 10, 10, 1.01},
		{"collapses width", 1, 10, 0.5},
		{"collapses height", 10, 3, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := ScaledSize(tt.w, tt.h, tt.scale); !errors.Is(err, ErrInvalidScale) {
				t.Errorf("got err %v, want ErrInvalidScale", err)
			}
		})
	}
}

func TestDownscale(t *testing.T) {
	src := createSolidImage(9, 6, color.RGBA{10, 20, 30, 255})

	for _, name := range FilterNames() {
		t.Run(name, func(t *testing.T) {
			filter, err := ParseFilter(name)
			if err != nil {
				t.Fatalf("ParseFilter failed: %v", err)
			}
			out, err := Downscale(src, 0.5, filter)
			if err != nil {
				t.Fatalf("Downscale failed: %v", err)
			}
			if out.Bounds().Dx() != 4 || out.Bounds().Dy() != 3 {
				t.Errorf("size: got %dx%d, want 4x3", out.Bounds().Dx(), out.Bounds().Dy())
			}
			// A solid image stays solid under every filter.
			c := out.NRGBAAt(2, 1)
			if c.R != 10 || c.G != 20 || c.B != 30 {
				t.Errorf("color: got %v, want {10 20 30}", c)
			}
		})
	}
}

func TestDownscale_ExactCopyAtOne(t *testing.T) {
	src := createNoiseImage(7, 5, 50)
	filter, _ := ParseFilter("lanczos")

	out, err := Downscale(src, 1.0, filter)
	if err != nil {
		t.Fatalf("Downscale failed: %v", err)
	}
	if string(out.Pix) != string(src.Pix) {
		t.Error("scale 1.0 should copy pixels unchanged")
	}
	if &out.Pix[0] == &src.Pix[0] {
		t.Error("Downscale must not return the source buffer")
	}
}

func TestDownscale_InvalidScale(t *testing.T) {
	src := createSolidImage(4, 4, color.White)
	filter, _ := ParseFilter(DefaultFilter)
	if _, err := Downscale(src, 0, filter); !errors.Is(err, ErrInvalidScale) {
		t.Errorf("got err %v, want ErrInvalidScale", err)
	}
}

func TestParseFilter(t *testing.T) {
	for _, name := range []string{"box", "BOX", " nearest ", "Lanczos", "linear", "catmullrom"} {
		if _, err := ParseFilter(name); err != nil {
			t.Errorf("ParseFilter(%q) failed: %v", name, err)
		}
	}
	if _, err := ParseFilter("bicubic-ish"); err == nil {
		t.Error("expected error for unknown filter")
	}
}
