package matcher

import (
	"fmt"
	"image"
	"math"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
)

// DefaultFilter is the resampling filter used when none is configured.
// Box averages each source block, which keeps block-aligned content exact
// at scale factors like 0.5.
const DefaultFilter = "box"

var filters = map[string]imaging.ResampleFilter{
	"nearest":    imaging.NearestNeighbor,
	"box":        imaging.Box,
	"linear":     imaging.Linear,
	"catmullrom": imaging.CatmullRom,
	"lanczos":    imaging.Lanczos,
}

// ParseFilter maps a filter name (nearest, box, linear, catmullrom, lanczos)
// to its resampling filter. Names are case-insensitive.
func ParseFilter(name string) (imaging.ResampleFilter, error) {
	f, ok := filters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return imaging.ResampleFilter{}, fmt.Errorf("unknown resample filter %q (want one of %s)",
			name, strings.Join(FilterNames(), ", "))
	}
	return f, nil
}

// FilterNames returns the accepted filter names in sorted order.
func FilterNames() []string {
	names := make([]string, 0, len(filters))
	for n := range filters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ValidateScale reports ErrInvalidScale unless 0 < s <= 1.
func ValidateScale(s float64) error {
	if math.IsNaN(s) || s <= 0 || s > 1 {
		return fmt.Errorf("%w: %g is outside (0,1]", ErrInvalidScale, s)
	}
	return nil
}

// ScaledSize returns floor(w*s) x floor(h*s).
func ScaledSize(w, h int, s float64) (int, int, error) {
	if err := ValidateScale(s); err != nil {
		return 0, 0, err
	}
	sw := int(math.Floor(float64(w) * s))
	sh := int(math.Floor(float64(h) * s))
	if sw < 1 || sh < 1 {
		return 0, 0, fmt.Errorf("%w: %dx%d image shrinks to %dx%d at scale %g",
			ErrInvalidScale, w, h, sw, sh, s)
	}
	return sw, sh, nil
}

// Downscale returns a new image of ScaledSize dimensions resampled with
// filter. The source image is not modified. At s == 1 the result is an
// exact copy.
func Downscale(img image.Image, s float64, filter imaging.ResampleFilter) (*image.NRGBA, error) {
	b := img.Bounds()
	w, h, err := ScaledSize(b.Dx(), b.Dy(), s)
	if err != nil {
		return nil, err
	}
	return imaging.Resize(img, w, h, filter), nil
}
