package render

import (
	"fmt"
	"image"
	"math"

	"photo-retouch/internal/oplog"
	"photo-retouch/pkg/geometry"
)

// renderTransform applies rotation about the image center, mirroring and
// an optional crop, in that order. Rotation keeps the canvas extent and
// leaves uncovered corners transparent; the crop rectangle is stored in
// source pixels and scaled onto the canvas.
func renderTransform(canvas *image.NRGBA, op oplog.Transform, scale float64) (*image.NRGBA, error) {
	out := canvas

	if op.RotateDegrees != 0 {
		b := out.Bounds()
		center := geometry.NewPoint2D(float64(b.Dx())/2, float64(b.Dy())/2)
		forward := geometry.RotationAbout(op.RotateDegrees*math.Pi/180, center)
		inverse, ok := forward.Inverse()
		if !ok {
			return nil, fmt.Errorf("rotation by %v degrees is not invertible", op.RotateDegrees)
		}
		out = resampleAffine(out, inverse)
	}

	if op.FlipHorizontal {
		out = flip(out, true)
	}
	if op.FlipVertical {
		out = flip(out, false)
	}

	if op.Crop != nil {
		cropped, err := crop(out, *op.Crop, scale)
		if err != nil {
			return nil, err
		}
		out = cropped
	}
	return out, nil
}

// resampleAffine builds the output by sampling the source at the inverse
// transform of each output pixel, bilinear, transparent outside.
func resampleAffine(src *image.NRGBA, inverse geometry.AffineTransform) *image.NRGBA {
	b := src.Bounds()
	out := image.NewNRGBA(b)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			p := inverse.Apply(geometry.NewPoint2D(float64(x), float64(y)))
			r, g, bb, a, ok := sampleBilinearBounded(src, p.X, p.Y)
			if !ok {
				continue
			}
			i := out.PixOffset(b.Min.X+x, b.Min.Y+y)
			out.Pix[i] = r
			out.Pix[i+1] = g
			out.Pix[i+2] = bb
			out.Pix[i+3] = a
		}
	}
	return out
}

func sampleBilinearBounded(src *image.NRGBA, x, y float64) (r, g, b, a uint8, ok bool) {
	bounds := src.Bounds()
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())
	if x < -0.5 || y < -0.5 || x > w-0.5 || y > h-0.5 {
		return 0, 0, 0, 0, false
	}

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	px := func(ix, iy int) (float64, float64, float64, float64) {
		if ix < 0 {
			ix = 0
		}
		if iy < 0 {
			iy = 0
		}
		if ix > bounds.Dx()-1 {
			ix = bounds.Dx() - 1
		}
		if iy > bounds.Dy()-1 {
			iy = bounds.Dy() - 1
		}
		i := src.PixOffset(bounds.Min.X+ix, bounds.Min.Y+iy)
		return float64(src.Pix[i]), float64(src.Pix[i+1]), float64(src.Pix[i+2]), float64(src.Pix[i+3])
	}

	r00, g00, b00, a00 := px(x0, y0)
	r10, g10, b10, a10 := px(x0+1, y0)
	r01, g01, b01, a01 := px(x0, y0+1)
	r11, g11, b11, a11 := px(x0+1, y0+1)

	lerp := func(v00, v10, v01, v11 float64) uint8 {
		top := v00 + (v10-v00)*fx
		bot := v01 + (v11-v01)*fx
		v := top + (bot-top)*fy
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		return uint8(math.Round(v))
	}
	return lerp(r00, r10, r01, r11), lerp(g00, g10, g01, g11),
		lerp(b00, b10, b01, b11), lerp(a00, a10, a01, a11), true
}

func flip(src *image.NRGBA, horizontal bool) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(b)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := x, y
			if horizontal {
				sx = w - 1 - x
			} else {
				sy = h - 1 - y
			}
			si := src.PixOffset(b.Min.X+sx, b.Min.Y+sy)
			di := out.PixOffset(b.Min.X+x, b.Min.Y+y)
			copy(out.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return out
}

// crop cuts the source-space rectangle, scaled to the canvas and clipped
// to its bounds. A crop entirely outside the canvas is a hard error; the
// stored geometry no longer describes this image.
func crop(src *image.NRGBA, rect geometry.RectInt, scale float64) (*image.NRGBA, error) {
	x0 := int(math.Round(float64(rect.X) * scale))
	y0 := int(math.Round(float64(rect.Y) * scale))
	x1 := int(math.Round(float64(rect.X+rect.Width) * scale))
	y1 := int(math.Round(float64(rect.Y+rect.Height) * scale))

	region := image.Rect(x0, y0, x1, y1).Intersect(src.Bounds())
	if region.Empty() {
		return nil, fmt.Errorf("crop %v at scale %v falls outside the image", rect, scale)
	}

	out := image.NewNRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	for y := 0; y < region.Dy(); y++ {
		si := src.PixOffset(region.Min.X, region.Min.Y+y)
		di := out.PixOffset(0, y)
		copy(out.Pix[di:di+region.Dx()*4], src.Pix[si:si+region.Dx()*4])
	}
	return out, nil
}
