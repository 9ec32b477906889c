package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

var (
	// ErrDecode is returned when bytes cannot be decoded as a raster image.
	ErrDecode = errors.New("not a decodable image")

	// ErrFileTooLarge is returned when an image file exceeds the cache's
	// size limit.
	ErrFileTooLarge = errors.New("image file too large")
)

// Decode decodes an in-memory PNG, JPEG, GIF, WebP or BMP image and reports
// its format name. Failures wrap ErrDecode.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b := img.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return nil, "", fmt.Errorf("%w: image has no pixels", ErrDecode)
	}
	return img, format, nil
}

type cachedImage struct {
	img    image.Image
	format string
	size   int64
}

// ImageCache provides thread-safe caching of decoded images keyed by file
// path.
//
// Once an image is loaded, subsequent Load calls for the same path return
// the cached copy without disk I/O. Cached images stay in memory until
// Evict or Clear removes them; the find tool evicts its inputs after each
// call, so only images loaded through the inspection tools persist.
//
//	cache := imaging.NewImageCache(20 << 20)
//	img, err := cache.Load("/path/to/puzzle.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cache.Evict("/path/to/puzzle.png")
type ImageCache struct {
	mu       sync.RWMutex
	images   map[string]*cachedImage
	maxBytes int64
}

// NewImageCache creates an empty cache. Files larger than maxBytes are
// rejected with ErrFileTooLarge; maxBytes <= 0 disables the limit.
func NewImageCache(maxBytes int64) *ImageCache {
	return &ImageCache{
		images:   make(map[string]*cachedImage),
		maxBytes: maxBytes,
	}
}

// Load retrieves an image from the cache or reads and decodes it from disk.
//
// The image is cached under the exact path string provided; different
// spellings of the same file get separate entries.
//
// # Errors
//
//   - the file does not exist or cannot be read
//   - ErrFileTooLarge if the file exceeds the cache limit
//   - ErrDecode if the file is not a PNG, JPEG, GIF, WebP or BMP image
func (c *ImageCache) Load(path string) (image.Image, error) {
	e, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return e.img, nil
}

func (c *ImageCache) load(path string) (*cachedImage, error) {
	c.mu.RLock()
	if e, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return e, nil
	}
	c.mu.RUnlock()

	data, err := c.readFile(path)
	if err != nil {
		return nil, err
	}

	img, format, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	e := &cachedImage{img: img, format: format, size: int64(len(data))}
	c.mu.Lock()
	c.images[path] = e
	c.mu.Unlock()

	return e, nil
}

func (c *ImageCache) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if c.maxBytes > 0 {
		r = io.LimitReader(f, c.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if c.maxBytes > 0 && int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, path, c.maxBytes)
	}
	return data, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*cachedImage)
	c.mu.Unlock()
}

// Evict removes one image from the cache. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder that recognised the file: "png", "jpeg", "gif",
	// "webp" or "bmp". It comes from the file contents, not its extension.
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the decoded image carries an alpha channel.
	// Matching ignores alpha either way.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through the cache and describes it.
//
// Color depth and alpha come from the decoded Go image type:
//   - *image.RGBA64, *image.NRGBA64 -> 16-bit with alpha
//   - *image.Gray16 -> 16-bit
//   - *image.RGBA, *image.NRGBA -> 8-bit with alpha
//   - everything else -> 8-bit
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	e, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch e.img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	bounds := e.img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        e.format,
		ColorDepth:    colorDepth,
		HasAlpha:      hasAlpha,
		FileSizeBytes: e.size,
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image, loading it into the
// cache if needed.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
