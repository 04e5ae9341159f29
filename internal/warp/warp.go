// Package warp implements the spatial remapping kernel. Every warp is a
// pure function over the input image: each output pixel's color equals the
// source sampled at a displaced coordinate. The kernel is resolution
// independent — invoked on a downscaled preview or the full-resolution
// source with proportionally scaled parameters, it produces the same warp
// up to interpolation tolerance, which is what makes the preview match the
// export.
package warp

import (
	"fmt"
	"image"
	"math"

	"photo-retouch/pkg/geometry"
)

// Family selects the displacement function.
type Family int

const (
	// FamilyRadial is pinch/bulge. The sign of Strength selects: positive
	// bulges outward, negative pinches toward the center.
	FamilyRadial Family = iota
	// FamilyBump pushes pixels a fixed distance along the radial
	// direction, strongest at the center.
	FamilyBump
	// FamilyTwirl rotates pixels around the center by an angle that decays
	// toward the radius boundary. Strength is the angle in radians.
	FamilyTwirl
	// FamilyMagnifier magnifies the region inside the radius.
	FamilyMagnifier
)

func (f Family) String() string {
	switch f {
	case FamilyRadial:
		return "radial"
	case FamilyBump:
		return "bump"
	case FamilyTwirl:
		return "twirl"
	case FamilyMagnifier:
		return "magnifier"
	default:
		return "unknown"
	}
}

// Params describes one warp in the image's own pixel space. Callers map
// view-space input through geometry.Fit before building Params.
type Params struct {
	Center   geometry.Point2D
	Radius   float64
	Strength float64
	Family   Family
}

// Scaled returns the params mapped to an image scaled by the given factor,
// so a warp authored against the full-resolution source can be replayed on
// a preview (factor < 1) or vice versa.
func (p Params) Scaled(factor float64) Params {
	return Params{
		Center:   p.Center.Scale(factor),
		Radius:   p.Radius * factor,
		Strength: p.Strength, // dimensionless (an angle for twirl)
		Family:   p.Family,
	}
}

// Apply warps the source image and returns a new image of the same extent.
// Pixels outside the radius are untouched; inside, the displacement fades
// with a quadratic falloff so the effect vanishes smoothly at the boundary.
// Sampling is bilinear with edge clamp.
func Apply(src *image.NRGBA, p Params) (*image.NRGBA, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, fmt.Errorf("warp %s: empty source image", p.Family)
	}
	if p.Radius <= 0 {
		// Zero radius warps nothing; return an unchanged copy.
		out := image.NewNRGBA(src.Bounds())
		copy(out.Pix, src.Pix)
		return out, nil
	}

	return remap(src, func(x, y float64) (float64, float64) {
		return displace(p, x, y)
	}), nil
}

// Smear drags pixels within radius of the stroke point "to" along the
// from→to direction — one displacement sample of a liquify stroke. Pixels
// whose freeze-mask alpha is at least half opaque are left in place.
func Smear(src *image.NRGBA, from, to geometry.Point2D, radius, strength float64, freeze *image.Alpha) (*image.NRGBA, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, fmt.Errorf("warp smear: empty source image")
	}
	if radius <= 0 {
		out := image.NewNRGBA(src.Bounds())
		copy(out.Pix, src.Pix)
		return out, nil
	}

	delta := to.Sub(from)
	return remap(src, func(x, y float64) (float64, float64) {
		if freeze != nil && frozenAt(freeze, x, y) {
			return x, y
		}
		dx := x - to.X
		dy := y - to.Y
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist >= radius {
			return x, y
		}
		t := dist / radius
		falloff := (1 - t) * (1 - t)
		amount := strength * falloff
		return x - delta.X*amount, y - delta.Y*amount
	}), nil
}

// displace computes the source sample coordinate for one output pixel.
func displace(p Params, x, y float64) (float64, float64) {
	dx := x - p.Center.X
	dy := y - p.Center.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist >= p.Radius {
		return x, y
	}

	t := dist / p.Radius
	falloff := (1 - t) * (1 - t)

	switch p.Family {
	case FamilyRadial:
		var amount float64
		if p.Strength >= 0 {
			amount = p.Strength * falloff
		} else {
			amount = -math.Abs(p.Strength) * (1 - t*t)
		}
		return x - dx*amount, y - dy*amount

	case FamilyBump:
		if dist == 0 {
			return x, y
		}
		push := p.Strength * p.Radius * falloff
		return x - dx/dist*push, y - dy/dist*push

	case FamilyTwirl:
		angle := p.Strength * falloff
		cos := math.Cos(angle)
		sin := math.Sin(angle)
		return p.Center.X + dx*cos - dy*sin, p.Center.Y + dx*sin + dy*cos

	case FamilyMagnifier:
		scale := 1 + p.Strength*falloff
		if scale <= 0 {
			return x, y
		}
		return p.Center.X + dx/scale, p.Center.Y + dy/scale

	default:
		return x, y
	}
}

func frozenAt(mask *image.Alpha, x, y float64) bool {
	b := mask.Bounds()
	ix := int(math.Round(x))
	iy := int(math.Round(y))
	if ix < b.Min.X || ix >= b.Max.X || iy < b.Min.Y || iy >= b.Max.Y {
		return false
	}
	return mask.AlphaAt(ix, iy).A >= 128
}
