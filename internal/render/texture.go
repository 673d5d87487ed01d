package render

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	"github.com/meridianmaritime/globe/internal/globe"
)

// Image samples a decoded equirectangular image.
type Image struct {
	img    image.Image
	bounds image.Rectangle
}

// NewImage wraps img as a texture.
func NewImage(img image.Image) *Image {
	return &Image{img: img, bounds: img.Bounds()}
}

// Sample returns the nearest texel for u, v in [0, 1]. u wraps, v clamps.
func (t *Image) Sample(u, v float64) color.RGBA {
	w, h := t.bounds.Dx(), t.bounds.Dy()
	if w == 0 || h == 0 {
		return color.RGBA{}
	}
	x := int(u*float64(w)) % w
	if x < 0 {
		x += w
	}
	y := min(max(int(v*float64(h)), 0), h-1)
	return color.RGBAModel.Convert(t.img.At(t.bounds.Min.X+x, t.bounds.Min.Y+y)).(color.RGBA)
}

// DecodeTexture reads a PNG or JPEG file.
func DecodeTexture(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding texture %s: %w", path, err)
	}
	return NewImage(img), nil
}

// TextureLoader returns a loader that degrades to the default material when
// a texture cannot be read. Failures are logged at debug level only.
func TextureLoader(logger *slog.Logger) globe.TextureLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return func(path string) globe.Texture {
		img, err := DecodeTexture(path)
		if err != nil {
			logger.Debug("Texture unavailable, using default material", "path", path, "error", err)
			return nil
		}
		logger.Debug("Texture loaded", "path", path, "width", img.bounds.Dx(), "height", img.bounds.Dy())
		return img
	}
}
