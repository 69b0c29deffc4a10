package media

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Dimensions holds the pixel size of an image.
type Dimensions struct {
	Width  int
	Height int
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// LongEdge returns the larger of width and height.
func (d Dimensions) LongEdge() int {
	return max(d.Width, d.Height)
}

// Probe reads only the image header to get its size. JPEG, PNG, TIFF and
// WebP are supported; HEIC/HEIF return image.ErrFormat.
func Probe(path string) (Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Dimensions{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}
