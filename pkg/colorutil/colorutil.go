// Package colorutil provides shared color math for the photo retouch engine.
package colorutil

import (
	"math"
)

// RGBToHSV converts RGB (0-255) to HSV (H 0-360, S 0-1, V 0-1).
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	r /= 255.0
	g /= 255.0
	b /= 255.0

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	diff := maxC - minC

	v = maxC

	if maxC == 0 {
		s = 0
	} else {
		s = diff / maxC
	}

	if diff == 0 {
		h = 0
	} else if maxC == r {
		h = 60 * math.Mod((g-b)/diff, 6)
	} else if maxC == g {
		h = 60 * ((b-r)/diff + 2)
	} else {
		h = 60 * ((r-g)/diff + 4)
	}

	if h < 0 {
		h += 360
	}

	return h, s, v
}

// HSVToRGB converts HSV (H 0-360, S 0-1, V 0-1) to RGB (0-255).
func HSVToRGB(h, s, v float64) (r, g, b float64) {
	c := v * s
	hp := math.Mod(h, 360) / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))

	var rf, gf, bf float64
	switch {
	case hp < 1:
		rf, gf, bf = c, x, 0
	case hp < 2:
		rf, gf, bf = x, c, 0
	case hp < 3:
		rf, gf, bf = 0, c, x
	case hp < 4:
		rf, gf, bf = 0, x, c
	case hp < 5:
		rf, gf, bf = x, 0, c
	default:
		rf, gf, bf = c, 0, x
	}

	m := v - c
	return (rf + m) * 255, (gf + m) * 255, (bf + m) * 255
}

// AdjustChannel applies brightness and contrast to a single channel value
// in the 0-255 range. Brightness is an additive offset in -255..255;
// contrast is a multiplier pivoted on mid-gray, 1.0 meaning no change.
func AdjustChannel(value, brightness, contrast float64) float64 {
	adjusted := (value-127.5)*contrast + 127.5 + brightness
	return Clamp(adjusted, 0, 255)
}

// AdjustSaturation scales the saturation of an RGB pixel (0-255 per
// channel). A factor of 1.0 leaves the pixel unchanged, 0 yields grayscale.
func AdjustSaturation(r, g, b, factor float64) (float64, float64, float64) {
	h, s, v := RGBToHSV(r, g, b)
	s = Clamp(s*factor, 0, 1)
	return HSVToRGB(h, s, v)
}

// Clamp limits a value to the range [min, max].
func Clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
