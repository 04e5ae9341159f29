// Command warptest applies one warp to an image at full and preview
// resolution and reports how closely the scaled-down full render matches
// the preview render. Useful for eyeballing interpolation drift in the
// warp kernel.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"math"
	"os"

	"photo-retouch/internal/imaging"
	"photo-retouch/internal/warp"
	"photo-retouch/pkg/geometry"
)

func main() {
	imagePath := flag.String("image", "", "Path to input image (TIFF, PNG, or JPEG)")
	family := flag.String("family", "magnifier", "Warp family: radial, bump, twirl, or magnifier")
	centerX := flag.Float64("cx", 0, "Warp center X in source pixels (default: image center)")
	centerY := flag.Float64("cy", 0, "Warp center Y in source pixels (default: image center)")
	radius := flag.Float64("radius", 200, "Warp radius in source pixels")
	strength := flag.Float64("strength", 1.0, "Warp strength (angle in radians for twirl)")
	previewDim := flag.Int("preview", 800, "Longer edge of the preview render")
	outPath := flag.String("out", "", "Optional path to write the full-resolution warped image")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: warptest -image <path> [-family magnifier] [-radius 200] [-strength 1.0]")
		os.Exit(1)
	}

	src, err := imaging.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %s: %dx%d pixels\n", *imagePath, src.Width(), src.Height())

	var fam warp.Family
	switch *family {
	case "radial":
		fam = warp.FamilyRadial
	case "bump":
		fam = warp.FamilyBump
	case "twirl":
		fam = warp.FamilyTwirl
	case "magnifier":
		fam = warp.FamilyMagnifier
	default:
		fmt.Fprintf(os.Stderr, "Unknown family %q\n", *family)
		os.Exit(1)
	}

	cx, cy := *centerX, *centerY
	if cx == 0 && cy == 0 {
		cx = float64(src.Width()) / 2
		cy = float64(src.Height()) / 2
	}
	params := warp.Params{
		Center:   geometry.NewPoint2D(cx, cy),
		Radius:   *radius,
		Strength: *strength,
		Family:   fam,
	}
	fmt.Printf("Warp: %s center (%.0f,%.0f) radius %.0f strength %.2f\n",
		fam, cx, cy, *radius, *strength)

	// Full-resolution render.
	full, err := warp.Apply(src.Image, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warp failed: %v\n", err)
		os.Exit(1)
	}

	// Preview render: downscale first, warp with scaled parameters.
	pw, ph := imaging.FitWithin(src.Image, *previewDim, *previewDim)
	scale := float64(pw) / float64(src.Width())
	base := imaging.Scale(src.Image, pw, ph)
	preview, err := warp.Apply(base, params.Scaled(scale))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Preview warp failed: %v\n", err)
		os.Exit(1)
	}

	// Compare the preview against the downscaled full render.
	reference := imaging.Scale(full, pw, ph)
	var sum float64
	var peak float64
	for i := 0; i < len(preview.Pix); i++ {
		d := math.Abs(float64(preview.Pix[i]) - float64(reference.Pix[i]))
		sum += d
		if d > peak {
			peak = d
		}
	}
	mean := sum / float64(len(preview.Pix))
	fmt.Printf("\nPreview agreement at %dx%d:\n", pw, ph)
	fmt.Printf("  mean channel difference: %.3f\n", mean)
	fmt.Printf("  peak channel difference: %.0f\n", peak)

	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := png.Encode(f, full); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *outPath)
	}
}
