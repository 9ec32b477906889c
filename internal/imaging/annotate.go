package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/clone"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultMarkerColor is used when no or an unparseable marker color is given.
const DefaultMarkerColor = "#FF0000"

// AnnotateResult contains the puzzle image with the match circled
type AnnotateResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Center      Point  `json:"center"`
	Radius      int    `json:"radius"`
}

// AnnotateMatch draws a circle around the matched region, plus a thin
// outline of the region itself, on a copy of img.
//
// The circle is centered on the region and its radius is half the region's
// diagonal plus the stroke width, so the whole piece sits inside it. Parts
// of the circle that fall outside the image are clipped. markerHex accepts
// "#RGB" or "#RRGGBB"; anything else falls back to DefaultMarkerColor.
func AnnotateMatch(img image.Image, r Region, markerHex string, thickness int) (*AnnotateResult, error) {
	if _, err := r.rect(img); err != nil {
		return nil, err
	}
	if thickness < 1 {
		thickness = 3
	}

	marker, err := colorful.Hex(markerHex)
	if err != nil {
		marker, _ = colorful.Hex(DefaultMarkerColor)
	}
	cr, cg, cb := marker.RGB255()
	stroke := color.RGBA{cr, cg, cb, 255}

	out := clone.AsRGBA(img)
	origin := out.Bounds().Min

	center := r.Center()
	half := math.Hypot(float64(r.Width()), float64(r.Height())) / 2
	radius := int(math.Ceil(half)) + thickness

	drawRing(out, center.add(origin), float64(radius), float64(thickness), stroke)
	drawOutline(out, image.Rect(r.X1, r.Y1, r.X2, r.Y2).Add(origin), stroke)

	encoded, err := encodePNG(out)
	if err != nil {
		return nil, err
	}

	return &AnnotateResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
		Center:      center,
		Radius:      radius,
	}, nil
}

// drawRing paints every pixel whose center lies within width/2 of the
// circle of the given radius.
func drawRing(img *image.RGBA, c Point, radius, width float64, col color.RGBA) {
	bounds := img.Bounds()
	reach := int(math.Ceil(radius + width))
	for y := c.Y - reach; y <= c.Y+reach; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := c.X - reach; x <= c.X+reach; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			d := math.Hypot(float64(x-c.X), float64(y-c.Y))
			if math.Abs(d-radius) <= width/2 {
				img.SetRGBA(x, y, col)
			}
		}
	}
}

func (p Point) add(q image.Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func drawOutline(img *image.RGBA, r image.Rectangle, col color.RGBA) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, col)
		img.SetRGBA(x, r.Max.Y-1, col)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, col)
		img.SetRGBA(r.Max.X-1, y, col)
	}
}
