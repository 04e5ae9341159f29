package warp

import (
	"image"
	"math"
	"runtime"
	"sync"
)

// remap produces a new image where each output pixel samples the source at
// the coordinate returned by coord. Work is split across packs of rows.
func remap(src *image.NRGBA, coord func(x, y float64) (float64, float64)) *image.NRGBA {
	bounds := src.Bounds()
	out := image.NewNRGBA(bounds)

	workers := runtime.GOMAXPROCS(0)
	if workers > bounds.Dy() {
		workers = bounds.Dy()
	}
	if workers < 1 {
		workers = 1
	}

	rowsPerWorker := (bounds.Dy() + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		yMin := bounds.Min.Y + w*rowsPerWorker
		yMax := yMin + rowsPerWorker
		if yMax > bounds.Max.Y {
			yMax = bounds.Max.Y
		}
		if yMin >= yMax {
			break
		}

		wg.Add(1)
		go func(yMin, yMax int) {
			defer wg.Done()
			for y := yMin; y < yMax; y++ {
				for x := bounds.Min.X; x < bounds.Max.X; x++ {
					sx, sy := coord(float64(x), float64(y))
					r, g, b, a := sampleBilinear(src, sx, sy)
					i := out.PixOffset(x, y)
					out.Pix[i+0] = r
					out.Pix[i+1] = g
					out.Pix[i+2] = b
					out.Pix[i+3] = a
				}
			}
		}(yMin, yMax)
	}
	wg.Wait()

	return out
}

// sampleBilinear samples the source at a fractional coordinate using
// bilinear interpolation. Out-of-bounds samples clamp to the edge pixel so
// warps never introduce seams at the image border.
func sampleBilinear(src *image.NRGBA, x, y float64) (uint8, uint8, uint8, uint8) {
	bounds := src.Bounds()

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	c00 := pixelClamped(src, x0, y0, bounds)
	c10 := pixelClamped(src, x0+1, y0, bounds)
	c01 := pixelClamped(src, x0, y0+1, bounds)
	c11 := pixelClamped(src, x0+1, y0+1, bounds)

	var out [4]uint8
	for ch := 0; ch < 4; ch++ {
		top := float64(c00[ch])*(1-fx) + float64(c10[ch])*fx
		bottom := float64(c01[ch])*(1-fx) + float64(c11[ch])*fx
		out[ch] = uint8(math.Round(top*(1-fy) + bottom*fy))
	}
	return out[0], out[1], out[2], out[3]
}

func pixelClamped(src *image.NRGBA, x, y int, bounds image.Rectangle) [4]uint8 {
	if x < bounds.Min.X {
		x = bounds.Min.X
	}
	if x > bounds.Max.X-1 {
		x = bounds.Max.X - 1
	}
	if y < bounds.Min.Y {
		y = bounds.Min.Y
	}
	if y > bounds.Max.Y-1 {
		y = bounds.Max.Y - 1
	}
	i := src.PixOffset(x, y)
	return [4]uint8{src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3]}
}
