package imaging

import (
	"image"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorFrequency represents a color and its occurrence frequency in an image.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // Hex color "#rrggbb" (quantized)
	Percentage float64  `json:"percentage"` // Percentage of pixels with this color (0-100)
	HSL        HSLColor `json:"hsl"`
}

// DominantColors returns up to count of the most common colors in img,
// most frequent first.
//
// To group similar colors each 8-bit channel is quantized to a multiple of
// 16, so #F0F0F0 and #FAFAFA count as the same color. Ties are ordered by
// hex string to keep the output stable. Alpha is ignored.
func DominantColors(img image.Image, count int) []ColorFrequency {
	bounds := img.Bounds()
	counts := make(map[[3]uint8]int)
	total := 0

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b := rgb8(img.At(x, y))
			counts[[3]uint8{r / 16 * 16, g / 16 * 16, b / 16 * 16}]++
			total++
		}
	}

	type entry struct {
		c   colorful.Color
		n   int
		hex string
	}
	entries := make([]entry, 0, len(counts))
	for rgb, n := range counts {
		c := colorful.Color{R: float64(rgb[0]) / 255, G: float64(rgb[1]) / 255, B: float64(rgb[2]) / 255}
		entries = append(entries, entry{c: c, n: n, hex: c.Hex()})
	}

	// Order on exact pixel counts; percentages are rounded and can tie.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].n != entries[j].n {
			return entries[i].n > entries[j].n
		}
		return entries[i].hex < entries[j].hex
	})

	if count > 0 && len(entries) > count {
		entries = entries[:count]
	}

	colors := make([]ColorFrequency, 0, len(entries))
	for _, e := range entries {
		h, s, l := e.c.Hsl()
		colors = append(colors, ColorFrequency{
			Hex:        e.hex,
			Percentage: math.Round(float64(e.n)/float64(total)*1000) / 10,
			HSL:        HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
		})
	}
	return colors
}
