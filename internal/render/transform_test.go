package render

import (
	"context"
	"image"
	"image/color"
	"testing"

	"photo-retouch/internal/oplog"
	"photo-retouch/pkg/geometry"
)

func renderSingle(t *testing.T, canvas *image.NRGBA, op oplog.Transform, scale float64) *image.NRGBA {
	t.Helper()
	out, err := renderTransform(canvas, op, scale)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestTransformFlipHorizontal(t *testing.T) {
	src := gradientImage(8, 8)
	op, err := oplog.NewTransform(0, true, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	out := renderSingle(t, src, op, 1)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if out.NRGBAAt(x, y) != src.NRGBAAt(7-x, y) {
				t.Fatalf("pixel (%d,%d) not mirrored", x, y)
			}
		}
	}
}

func TestTransformRotate90MapsPixelGrid(t *testing.T) {
	src := gradientImage(8, 8)
	op, err := oplog.NewTransform(90, false, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	out := renderSingle(t, src, op, 1)

	// Rotation about the center (4,4): output (6,4) samples source (4,2)
	// exactly on the integer grid, so bilinear is lossless there.
	if got, want := out.NRGBAAt(6, 4), src.NRGBAAt(4, 2); got != want {
		t.Fatalf("rotated pixel = %+v, want %+v", got, want)
	}
}

func TestTransformCropScalesWithCanvas(t *testing.T) {
	src := gradientImage(16, 16)
	crop := &geometry.RectInt{X: 4, Y: 4, Width: 8, Height: 8}
	op, err := oplog.NewTransform(0, false, false, crop)
	if err != nil {
		t.Fatal(err)
	}

	out := renderSingle(t, src, op, 1)
	if out.Bounds().Dx() != 8 || out.Bounds().Dy() != 8 {
		t.Fatalf("crop extent %v, want 8x8", out.Bounds())
	}
	if out.NRGBAAt(0, 0) != src.NRGBAAt(4, 4) {
		t.Fatal("crop origin wrong")
	}

	// On a half-size canvas the crop rectangle scales down with it.
	half := gradientImage(8, 8)
	out = renderSingle(t, half, op, 0.5)
	if out.Bounds().Dx() != 4 || out.Bounds().Dy() != 4 {
		t.Fatalf("scaled crop extent %v, want 4x4", out.Bounds())
	}
	if out.NRGBAAt(0, 0) != half.NRGBAAt(2, 2) {
		t.Fatal("scaled crop origin wrong")
	}
}

func TestTransformCropOutsideCanvasFails(t *testing.T) {
	src := gradientImage(8, 8)
	crop := &geometry.RectInt{X: 100, Y: 100, Width: 10, Height: 10}
	op, err := oplog.NewTransform(0, false, false, crop)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := renderTransform(src, op, 1); err == nil {
		t.Fatal("expected error for crop outside the canvas")
	}
}

func TestInpaintFillsMaskedRegion(t *testing.T) {
	canvas := image.NewNRGBA(image.Rect(0, 0, 9, 9))
	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			canvas.SetNRGBA(x, y, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	// A green blemish in the middle.
	canvas.SetNRGBA(4, 4, color.NRGBA{G: 255, A: 255})

	mask := image.NewNRGBA(image.Rect(0, 0, 9, 9))
	mask.SetNRGBA(4, 4, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	assets := mapResolver{
		"source":     canvas,
		"masks/spot": mask,
	}
	sess, _ := testSession(t, 9, 9)
	op, err := oplog.NewInpaint("masks/spot")
	if err != nil {
		t.Fatal(err)
	}
	sess.Log.Append(op)

	res, err := New(assets, nil, 0).RenderExport(context.Background(), sess)
	if err != nil {
		t.Fatal(err)
	}
	got := res.Image.NRGBAAt(4, 4)
	if got.G != 40 || got.R != 200 {
		t.Fatalf("masked pixel not filled from surroundings: %+v", got)
	}
	// Neighbors are untouched.
	if res.Image.NRGBAAt(3, 4) != canvas.NRGBAAt(3, 4) {
		t.Fatal("unmasked pixel changed")
	}
}
