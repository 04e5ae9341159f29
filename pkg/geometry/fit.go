package geometry

import "math"

// Fit describes the aspect-fit placement of an image inside a container:
// the largest centered rectangle that preserves the image's aspect ratio.
// It is the single source of truth for mapping points and radii between a
// container space (the interactive view) and the fitted image's own pixel
// space. Both the preview and the export path build their mappings from the
// same Fit so their placements agree exactly.
type Fit struct {
	// Rect is the placement rectangle in container coordinates.
	Rect Rect `json:"rect"`
	// Image is the extent of the fitted image in its own pixel space.
	Image Size `json:"image"`
}

// AspectFit computes the aspect-fit placement of an image inside a container.
// The scale factor is min(containerWidth/imageWidth, containerHeight/imageHeight)
// and the scaled image is centered in the container.
func AspectFit(image, container Size) Fit {
	if image.Width <= 0 || image.Height <= 0 {
		return Fit{Image: image}
	}

	scale := math.Min(container.Width/image.Width, container.Height/image.Height)
	w := image.Width * scale
	h := image.Height * scale

	return Fit{
		Rect: Rect{
			X:      (container.Width - w) / 2,
			Y:      (container.Height - h) / 2,
			Width:  w,
			Height: h,
		},
		Image: image,
	}
}

// Scale returns the uniform container-per-image-pixel scale factor.
// Aspect fit preserves the ratio, so the horizontal and vertical scales are
// equal up to floating-point epsilon; the horizontal one is used throughout.
// Radius mapping deliberately uses this same uniform scale on both the
// preview and the export path so the two never disagree.
func (f Fit) Scale() float64 {
	if f.Image.Width <= 0 {
		return 0
	}
	return f.Rect.Width / f.Image.Width
}

// ViewToImage maps a point from container coordinates into the fitted
// image's pixel space: subtract the placement origin, divide by the scale.
func (f Fit) ViewToImage(p Point2D) Point2D {
	scale := f.Scale()
	if scale == 0 {
		return Point2D{}
	}
	return Point2D{
		X: (p.X - f.Rect.X) / scale,
		Y: (p.Y - f.Rect.Y) / scale,
	}
}

// ImageToView maps a point from the fitted image's pixel space back into
// container coordinates. It is the exact inverse of ViewToImage.
func (f Fit) ImageToView(p Point2D) Point2D {
	scale := f.Scale()
	return Point2D{
		X: p.X*scale + f.Rect.X,
		Y: p.Y*scale + f.Rect.Y,
	}
}

// RadiusToImage maps a radius from container units into image pixels.
func (f Fit) RadiusToImage(r float64) float64 {
	scale := f.Scale()
	if scale == 0 {
		return 0
	}
	return r / scale
}

// RadiusToView maps a radius from image pixels into container units.
func (f Fit) RadiusToView(r float64) float64 {
	return r * f.Scale()
}
