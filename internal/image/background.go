// Package image loads the background images annotations are drawn over.
package image

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"shape-annotator/pkg/geometry"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Extensions lists the file extensions the decoders above accept.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// Background is a decoded background image.
type Background struct {
	Path   string      // Original file path, empty when decoded from a reader
	Format string      // Decoder name, e.g. "png" or "tiff"
	Image  image.Image // Decoded image data
}

// Load decodes the image at path.
func Load(path string) (*Background, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	bg, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	bg.Path = path
	return bg, nil
}

// Decode reads an image in any supported format.
func Decode(r io.Reader) (*Background, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &Background{Format: format, Image: img}, nil
}

// DecodeBytes decodes an in-memory image.
func DecodeBytes(data []byte) (*Background, error) {
	return Decode(bytes.NewReader(data))
}

// Supported reports whether path has a known image extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Width returns the image width in pixels.
func (b *Background) Width() int {
	if b == nil || b.Image == nil {
		return 0
	}
	return b.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (b *Background) Height() int {
	if b == nil || b.Image == nil {
		return 0
	}
	return b.Image.Bounds().Dy()
}

// Size returns the image dimensions.
func (b *Background) Size() geometry.Size {
	return geometry.NewSize(float64(b.Width()), float64(b.Height()))
}

// PixelAt returns the color at canvas-local pixel coordinates.
func (b *Background) PixelAt(x, y int) color.Color {
	if b == nil || b.Image == nil {
		return color.Black
	}
	bounds := b.Image.Bounds()
	p := image.Pt(bounds.Min.X+x, bounds.Min.Y+y)
	if !p.In(bounds) {
		return color.Black
	}
	return b.Image.At(p.X, p.Y)
}

// RGBA returns the image as *image.RGBA with its origin at (0, 0).
func (b *Background) RGBA() *image.RGBA {
	if b == nil || b.Image == nil {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	src := b.Image.Bounds()
	if rgba, ok := b.Image.(*image.RGBA); ok && src.Min == (image.Point{}) {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
	draw.Draw(dst, dst.Bounds(), b.Image, src.Min, draw.Src)
	return dst
}
