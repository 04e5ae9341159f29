// Package imaging provides image loading, pixel-format conversion, scaling
// and matte compositing for the render pipeline.
package imaging

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/tiff"
)

// Source wraps a decoded photograph in the normalized pixel format the
// warp kernel and sub-renderers operate on.
type Source struct {
	Path  string
	Image *image.NRGBA
}

// Load decodes an image file (JPEG, PNG or TIFF) into a Source.
func Load(path string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return &Source{Path: path, Image: ToNRGBA(img)}, nil
}

// Width returns the image width in pixels.
func (s *Source) Width() int {
	if s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (s *Source) Height() int {
	if s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dy()
}

// ToNRGBA converts any image to NRGBA with bounds anchored at the origin.
// If the input already is an origin-anchored NRGBA it is returned as-is.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}

	bounds := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.Set(x-bounds.Min.X, y-bounds.Min.Y, img.At(x, y))
		}
	}
	return out
}

// Clone returns a deep copy of an NRGBA image.
func Clone(img *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	copy(out.Pix, img.Pix)
	return out
}

// ToAlphaMask converts an image into an alpha mask using the luminance of
// each pixel: white means fully selected, black means unselected. Images
// that already carry meaningful alpha (e.g. PNG mattes) use their alpha
// channel directly.
func ToAlphaMask(img image.Image) *image.Alpha {
	bounds := img.Bounds()
	mask := image.NewAlpha(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			var v uint32
			if a < 0xffff {
				v = a
			} else {
				// ITU-R BT.601 luma weights.
				v = (299*r + 587*g + 114*b) / 1000
			}
			i := mask.PixOffset(x-bounds.Min.X, y-bounds.Min.Y)
			mask.Pix[i] = uint8(v >> 8)
		}
	}
	return mask
}
