package classifier

import (
	"fmt"
	"image"
	"os"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/color-finder/pkg/colorspec"
)

// SampleSize is the edge length of the square grid every image is
// resampled to before classification. The fixed square bounds the cost
// of a classification at SampleSize*SampleSize membership tests; it
// also means non-square images are distorted, which is accepted.
const SampleSize = 100

// Classifier measures what share of an image's pixels fall inside a
// named color's RGB bounding box.
type Classifier struct {
	registry *colorspec.Registry
	size     int
}

// New creates a Classifier backed by the built-in color registry.
func New() *Classifier {
	return NewWithRegistry(colorspec.Default())
}

// NewWithRegistry creates a Classifier backed by a custom registry.
func NewWithRegistry(registry *colorspec.Registry) *Classifier {
	return &Classifier{registry: registry, size: SampleSize}
}

// Classify loads the image at path and returns the percentage of its
// resampled pixels that lie inside the named color's bounding box.
// The percentage is 0 together with a non-nil error when the color is
// unknown or the file cannot be decoded.
func (c *Classifier) Classify(path, color string) (float64, error) {
	spec, ok := c.registry.Lookup(color)
	if !ok {
		return 0, fmt.Errorf("%w: %q", colorspec.ErrUnknownColor, color)
	}

	img, err := c.loadImage(path)
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", path, err)
	}

	return c.percentage(img, spec), nil
}

// ClassifyImage classifies an already decoded image.
func (c *Classifier) ClassifyImage(img image.Image, color string) (float64, error) {
	spec, ok := c.registry.Lookup(color)
	if !ok {
		return 0, fmt.Errorf("%w: %q", colorspec.ErrUnknownColor, color)
	}
	return c.percentage(img, spec), nil
}

// percentage resamples the image to the fixed square grid and counts
// how many samples the spec contains. The resample discards alpha: the
// NRGBA output stores straight (non-premultiplied) channel values, so
// R/G/B are compared as decoded.
func (c *Classifier) percentage(img image.Image, spec colorspec.Spec) float64 {
	sample := imaging.Resize(img, c.size, c.size, imaging.NearestNeighbor)

	count := 0
	for i := 0; i < len(sample.Pix); i += 4 {
		if spec.Contains(sample.Pix[i], sample.Pix[i+1], sample.Pix[i+2]) {
			count++
		}
	}
	total := c.size * c.size
	return float64(count) / float64(total) * 100
}

// loadImage opens an image file, trying the registered decoders first
// and falling back to an explicit WebP decode.
func (c *Classifier) loadImage(path string) (image.Image, error) {
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if img, err := webp.Decode(f); err == nil {
		return img, nil
	}
	if _, err := f.Seek(0, 0); err == nil {
		if img, _, err := image.Decode(f); err == nil {
			return img, nil
		}
	}
	return nil, fmt.Errorf("image: unknown format for %s", path)
}
