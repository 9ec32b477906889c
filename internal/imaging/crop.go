package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
)

// Point represents a 2D point
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Region defines a rectangular area of an image.
//
// X1,Y1 is the inclusive top-left corner and X2,Y2 the exclusive
// bottom-right corner, relative to the image's top-left pixel.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// MatchRegion returns the region covered by a width x height piece placed
// at offset (x, y). Fractional offsets are rounded to the nearest pixel.
func MatchRegion(x, y float64, width, height int) Region {
	x1 := int(math.Round(x))
	y1 := int(math.Round(y))
	return Region{X1: x1, Y1: y1, X2: x1 + width, Y2: y1 + height}
}

// Within shifts the region so it lies inside a width x height image,
// keeping its size. A region larger than the image is pinned to (0,0).
func (r Region) Within(width, height int) Region {
	dx := 0
	if r.X2 > width {
		dx = width - r.X2
	}
	if r.X1+dx < 0 {
		dx = -r.X1
	}
	dy := 0
	if r.Y2 > height {
		dy = height - r.Y2
	}
	if r.Y1+dy < 0 {
		dy = -r.Y1
	}
	return Region{X1: r.X1 + dx, Y1: r.Y1 + dy, X2: r.X2 + dx, Y2: r.Y2 + dy}
}

// Width of the region in pixels.
func (r Region) Width() int { return r.X2 - r.X1 }

// Height of the region in pixels.
func (r Region) Height() int { return r.Y2 - r.Y1 }

// Center returns the center pixel of the region.
func (r Region) Center() Point {
	return Point{X: (r.X1 + r.X2) / 2, Y: (r.Y1 + r.Y2) / 2}
}

// rect converts the region to absolute coordinates within img, checking that
// it is non-empty and inside the image.
func (r Region) rect(img image.Image) (image.Rectangle, error) {
	bounds := img.Bounds()
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return image.Rectangle{}, fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
	}
	if r.X1 < 0 || r.Y1 < 0 || r.X2 > bounds.Dx() || r.Y2 > bounds.Dy() {
		return image.Rectangle{}, fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds %dx%d",
			r.X1, r.Y1, r.X2, r.Y2, bounds.Dx(), bounds.Dy())
	}
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2).Add(bounds.Min), nil
}

// CropResult contains the cropped image data
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Crop extracts a region from an image, optionally resized by scale, and
// returns it as a base64 PNG.
func Crop(img image.Image, r Region, scale float64) (*CropResult, error) {
	rect, err := r.rect(img)
	if err != nil {
		return nil, err
	}

	cropped := imaging.Crop(img, rect)

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		if newWidth < 1 || newHeight < 1 {
			return nil, fmt.Errorf("scale %g shrinks the region to nothing", scale)
		}
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	encoded, err := encodePNG(cropped)
	if err != nil {
		return nil, err
	}

	return &CropResult{
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// encodePNG encodes img as PNG and returns it base64 encoded.
func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
