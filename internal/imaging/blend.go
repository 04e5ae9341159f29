package imaging

import (
	"image"
)

// CompositeWithMatte layers the foreground over the background weighted by
// a matte: where the matte is opaque the foreground shows, where it is
// transparent the background shows, with a linear blend in between. All
// three images must share the same extent; background and matte are
// resampled by the caller beforehand.
func CompositeWithMatte(fg, bg *image.NRGBA, matte *image.Alpha) *image.NRGBA {
	bounds := fg.Bounds()
	out := image.NewNRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			fi := fg.PixOffset(x, y)
			bi := bg.PixOffset(x, y)
			oi := out.PixOffset(x, y)

			alpha := float64(matte.Pix[matte.PixOffset(x, y)]) / 255.0
			for ch := 0; ch < 4; ch++ {
				f := float64(fg.Pix[fi+ch])
				b := float64(bg.Pix[bi+ch])
				out.Pix[oi+ch] = uint8(f*alpha + b*(1-alpha) + 0.5)
			}
		}
	}
	return out
}
