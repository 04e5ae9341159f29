package imaging

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Scale resamples the source to the exact target size using bilinear
// interpolation. Used for export-quality scaling of assets.
func Scale(src *image.NRGBA, width, height int) *image.NRGBA {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(out, out.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return out
}

// ScaleFast resamples with the cheaper approximate bilinear kernel. Used
// for the interactive preview where latency matters more than the last bit
// of fidelity.
func ScaleFast(src *image.NRGBA, width, height int) *image.NRGBA {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return out
}

// FitWithin returns the dimensions of src scaled down to fit inside
// maxWidth x maxHeight while preserving aspect ratio. Images already small
// enough are returned at their own size.
func FitWithin(src *image.NRGBA, maxWidth, maxHeight int) (int, int) {
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	if w <= maxWidth && h <= maxHeight {
		return w, h
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	outW := int(float64(w) * scale)
	outH := int(float64(h) * scale)
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}
	return outW, outH
}
