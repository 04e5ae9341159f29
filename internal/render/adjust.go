package render

import (
	"image"

	"photo-retouch/internal/oplog"
	"photo-retouch/pkg/colorutil"
)

// renderColor applies the global photometric adjustment: additive
// brightness and pivot contrast per channel, then a saturation scale in
// HSV. Alpha passes through.
func renderColor(canvas *image.NRGBA, op oplog.Color) *image.NRGBA {
	out := image.NewNRGBA(canvas.Bounds())
	for i := 0; i < len(canvas.Pix); i += 4 {
		r := colorutil.AdjustChannel(float64(canvas.Pix[i]), op.Brightness, op.Contrast)
		g := colorutil.AdjustChannel(float64(canvas.Pix[i+1]), op.Brightness, op.Contrast)
		b := colorutil.AdjustChannel(float64(canvas.Pix[i+2]), op.Brightness, op.Contrast)
		if op.Saturation != 1 {
			r, g, b = colorutil.AdjustSaturation(r, g, b, op.Saturation)
		}
		out.Pix[i] = uint8(colorutil.Clamp(r, 0, 255))
		out.Pix[i+1] = uint8(colorutil.Clamp(g, 0, 255))
		out.Pix[i+2] = uint8(colorutil.Clamp(b, 0, 255))
		out.Pix[i+3] = canvas.Pix[i+3]
	}
	return out
}
