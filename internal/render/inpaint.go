package render

import (
	"context"
	"fmt"
	"image"
	"math"

	"photo-retouch/internal/oplog"
)

// renderInpaint fills the masked region by ray casting: each masked
// pixel takes the inverse-distance weighted average of the nearest
// unmasked pixel found along eight directions. Cheap, deterministic, and
// good enough for blemish-sized regions; large holes come out smooth.
func (p *Pipeline) renderInpaint(ctx context.Context, canvas *image.NRGBA, op oplog.Inpaint) (*image.NRGBA, error) {
	mask, err := p.resolveAlpha(ctx, op.MaskRef, canvas.Bounds())
	if err != nil {
		return nil, fmt.Errorf("inpaint mask %q: %w", op.MaskRef, err)
	}
	return fillMasked(canvas, mask), nil
}

var rayDirections = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

func fillMasked(src *image.NRGBA, mask *image.Alpha) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(b)
	copy(out.Pix, src.Pix)

	masked := func(x, y int) bool {
		return mask.AlphaAt(mask.Bounds().Min.X+x, mask.Bounds().Min.Y+y).A >= 128
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !masked(x, y) {
				continue
			}

			var rSum, gSum, bSum, wSum float64
			for _, dir := range rayDirections {
				cx, cy := x, y
				dist := 0
				for {
					cx += dir[0]
					cy += dir[1]
					dist++
					if cx < 0 || cy < 0 || cx >= w || cy >= h {
						break
					}
					if masked(cx, cy) {
						continue
					}
					// Diagonal steps cover sqrt(2) per step.
					d := float64(dist)
					if dir[0] != 0 && dir[1] != 0 {
						d *= math.Sqrt2
					}
					weight := 1 / d
					i := src.PixOffset(b.Min.X+cx, b.Min.Y+cy)
					rSum += float64(src.Pix[i]) * weight
					gSum += float64(src.Pix[i+1]) * weight
					bSum += float64(src.Pix[i+2]) * weight
					wSum += weight
					break
				}
			}
			if wSum == 0 {
				continue
			}

			i := out.PixOffset(b.Min.X+x, b.Min.Y+y)
			out.Pix[i] = uint8(math.Round(rSum / wSum))
			out.Pix[i+1] = uint8(math.Round(gSum / wSum))
			out.Pix[i+2] = uint8(math.Round(bSum / wSum))
		}
	}
	return out
}
