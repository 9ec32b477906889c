package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// decodeResult decodes a base64 PNG produced by this package.
func decodeResult(t *testing.T, b64 string) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	return img
}

func TestMatchRegion(t *testing.T) {
	r := MatchRegion(10.4, 19.6, 8, 5)
	want := Region{X1: 10, Y1: 20, X2: 18, Y2: 25}
	if r != want {
		t.Errorf("got %+v, want %+v", r, want)
	}
	if r.Width() != 8 || r.Height() != 5 {
		t.Errorf("size: got %dx%d, want 8x5", r.Width(), r.Height())
	}
	if c := r.Center(); c != (Point{X: 14, Y: 22}) {
		t.Errorf("center: got %+v, want (14,22)", c)
	}
}

func TestRegion_Within(t *testing.T) {
	tests := []struct {
		name string
		in   Region
		want Region
	}{
		{"inside", Region{2, 3, 5, 6}, Region{2, 3, 5, 6}},
		{"past right edge", Region{8, 0, 11, 3}, Region{7, 0, 10, 3}},
		{"past bottom edge", Region{0, 9, 2, 12}, Region{0, 7, 2, 10}},
		{"negative", Region{-2, -1, 1, 2}, Region{0, 0, 3, 3}},
		{"larger than image", Region{1, 1, 13, 4}, Region{0, 1, 12, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Within(10, 10); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCrop(t *testing.T) {
	img := createPatternImage(100, 100)

	result, err := Crop(img, Region{0, 0, 50, 50}, 1.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if result.Width != 50 || result.Height != 50 {
		t.Errorf("dimensions: got %dx%d, want 50x50", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	out := decodeResult(t, result.ImageBase64)
	r, g, b, _ := out.At(25, 25).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("top-left quadrant should be red, got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestCrop_WithScale(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name         string
		region       Region
		scale        float64
		wantW, wantH int
	}{
		{"scale up", Region{0, 0, 50, 50}, 2.0, 100, 100},
		{"scale down", Region{0, 0, 100, 100}, 0.5, 50, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Crop(img, tt.region, tt.scale)
			if err != nil {
				t.Fatalf("Crop failed: %v", err)
			}
			if result.Width != tt.wantW || result.Height != tt.wantH {
				t.Errorf("dimensions: got %dx%d, want %dx%d", result.Width, result.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestCrop_InvalidRegion(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name   string
		region Region
	}{
		{"x1 negative", Region{-1, 0, 50, 50}},
		{"y1 negative", Region{0, -1, 50, 50}},
		{"x2 too large", Region{0, 0, 101, 50}},
		{"y2 too large", Region{0, 0, 50, 101}},
		{"zero width", Region{50, 0, 50, 50}},
		{"inverted", Region{0, 60, 50, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Crop(img, tt.region, 1.0); err == nil {
				t.Error("Crop should fail")
			}
		})
	}
}

func TestCrop_OffsetBounds(t *testing.T) {
	// Regions are relative to the image's top-left pixel even when its
	// bounds start elsewhere.
	parent := createPatternImage(100, 100)
	sub := parent.SubImage(image.Rect(50, 0, 100, 50)) // the green quadrant

	result, err := Crop(sub, Region{0, 0, 10, 10}, 1.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	out := decodeResult(t, result.ImageBase64)
	r, g, _, _ := out.At(5, 5).RGBA()
	if r>>8 != 0 || g>>8 != 255 {
		t.Errorf("expected green, got r=%d g=%d", r>>8, g>>8)
	}
}
