package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"testing"

	"photo-retouch/internal/detect"
	"photo-retouch/internal/imaging"
	"photo-retouch/internal/oplog"
	"photo-retouch/internal/session"
	"photo-retouch/pkg/geometry"
)

// mapResolver serves assets from memory; unknown references report
// ErrMissingAsset like a real storage-backed resolver.
type mapResolver map[string]image.Image

func (m mapResolver) Resolve(_ context.Context, ref string) (image.Image, error) {
	img, ok := m[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingAsset, ref)
	}
	return img, nil
}

func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: uint8((x + y) * 255 / (w + h)),
				A: 255,
			})
		}
	}
	return img
}

func testSession(t *testing.T, w, h int) (*session.Session, mapResolver) {
	t.Helper()
	sess := session.New("source", w, h)
	return sess, mapResolver{"source": gradientImage(w, h)}
}

func mustAppend(t *testing.T, sess *session.Session, op oplog.Operation, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
	sess.Log.Append(op)
}

func TestExportAppliesColorAdjustment(t *testing.T) {
	sess, assets := testSession(t, 8, 8)
	op, err := oplog.NewColor(40, 1, 1)
	mustAppend(t, sess, op, err)

	p := New(assets, nil, 0)
	res, err := p.RenderExport(context.Background(), sess)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", res.Warnings)
	}

	src := assets["source"].(*image.NRGBA)
	got := res.Image.NRGBAAt(4, 4)
	want := src.NRGBAAt(4, 4)
	if int(got.R) != int(want.R)+40 {
		t.Fatalf("brightness not applied: got R=%d want R=%d", got.R, want.R+40)
	}
	if got.A != want.A {
		t.Fatalf("alpha changed: got %d want %d", got.A, want.A)
	}
}

func TestExportWithEmptyLogReturnsSource(t *testing.T) {
	sess, assets := testSession(t, 16, 16)
	p := New(assets, nil, 0)
	res, err := p.RenderExport(context.Background(), sess)
	if err != nil {
		t.Fatal(err)
	}
	src := assets["source"].(*image.NRGBA)
	if !bytes.Equal(res.Image.Pix, src.Pix) {
		t.Fatal("empty log export must equal the source")
	}
}

func TestPreviewIsDownscaledAndCached(t *testing.T) {
	sess, assets := testSession(t, 400, 300)
	p := New(assets, nil, 100)

	res, err := p.RenderPreview(context.Background(), sess, geometry.Size{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Image.Bounds().Dx() != 100 || res.Image.Bounds().Dy() != 75 {
		t.Fatalf("preview extent %v, want 100x75", res.Image.Bounds())
	}

	// Second preview must not re-resolve the source.
	delete(assets, "source")
	if _, err := p.RenderPreview(context.Background(), sess, geometry.Size{}); err != nil {
		t.Fatalf("cached preview base not reused: %v", err)
	}

	p.InvalidatePreview(sess.ID)
	if _, err := p.RenderPreview(context.Background(), sess, geometry.Size{}); err == nil {
		t.Fatal("expected resolve failure after cache invalidation")
	}
}

func TestPreviewHonorsExplicitViewSize(t *testing.T) {
	sess, assets := testSession(t, 400, 300)
	p := New(assets, nil, 1600)

	res, err := p.RenderPreview(context.Background(), sess, geometry.NewSize(200, 200))
	if err != nil {
		t.Fatal(err)
	}
	if res.Image.Bounds().Dx() != 200 || res.Image.Bounds().Dy() != 150 {
		t.Fatalf("preview extent %v, want 200x150", res.Image.Bounds())
	}
}

func TestPreviewAndExportWarpSameRegion(t *testing.T) {
	sess, assets := testSession(t, 200, 200)
	op, err := oplog.NewTwirl(geometry.NewPoint2D(100, 100), 60, 1.2)
	mustAppend(t, sess, op, err)

	p := New(assets, nil, 100)

	preview, err := p.RenderPreview(context.Background(), sess, geometry.Size{})
	if err != nil {
		t.Fatal(err)
	}
	export, err := p.RenderExport(context.Background(), sess)
	if err != nil {
		t.Fatal(err)
	}

	// The warp region scales with the image: touched near the center on
	// both paths, untouched outside the radius on both paths.
	srcFull := assets["source"].(*image.NRGBA)
	if export.Image.NRGBAAt(100, 80) == srcFull.NRGBAAt(100, 80) {
		t.Fatal("export center region not warped")
	}
	if export.Image.NRGBAAt(5, 5) != srcFull.NRGBAAt(5, 5) {
		t.Fatal("export corner outside radius changed")
	}
	if preview.Image.Bounds().Dx() != 100 || preview.Image.Bounds().Dy() != 100 {
		t.Fatalf("preview extent %v, want 100x100", preview.Image.Bounds())
	}
	// In preview space the twirl center is (50,50) with radius 30; the
	// point (50,40) sits at the same relative offset as (100,80) in the
	// export and must be warped too.
	base := imaging.ScaleFast(srcFull, 100, 100)
	if preview.Image.NRGBAAt(50, 40) == base.NRGBAAt(50, 40) {
		t.Fatal("preview center region not warped")
	}
	if preview.Image.NRGBAAt(2, 2) != base.NRGBAAt(2, 2) {
		t.Fatal("preview corner outside radius changed")
	}
}

func TestMissingAssetSkipsOperationWithWarning(t *testing.T) {
	sess, assets := testSession(t, 16, 16)
	op, err := oplog.NewInpaint("masks/gone")
	mustAppend(t, sess, op, err)
	cop, err := oplog.NewColor(10, 1, 1)
	mustAppend(t, sess, cop, err)

	p := New(assets, nil, 0)
	res, err := p.RenderExport(context.Background(), sess)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("want 1 warning, got %+v", res.Warnings)
	}
	w := res.Warnings[0]
	if w.Index != 0 || w.Kind != oplog.KindInpaint {
		t.Fatalf("warning points at wrong operation: %+v", w)
	}

	// The color op after the skipped one still applied.
	src := assets["source"].(*image.NRGBA)
	if res.Image.NRGBAAt(8, 8).R != uint8(int(src.NRGBAAt(8, 8).R)+10) {
		t.Fatal("operation after the skipped one was not applied")
	}
}

func TestSculptWithoutDetectionsSkipsWithWarning(t *testing.T) {
	sess, assets := testSession(t, 16, 16)
	op, err := oplog.NewBodyParam("waist", 5)
	mustAppend(t, sess, op, err)

	p := New(assets, nil, 0)
	res, err := p.RenderExport(context.Background(), sess)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Kind != oplog.KindBodyParam {
		t.Fatalf("want one bodyParam warning, got %+v", res.Warnings)
	}
	src := assets["source"].(*image.NRGBA)
	if !bytes.Equal(res.Image.Pix, src.Pix) {
		t.Fatal("skipped sculpt must leave pixels unchanged")
	}
}

func TestUnsupportedParamKeySkipsWithWarning(t *testing.T) {
	sess, assets := testSession(t, 16, 16)
	sess.Detections = poseDetections()
	op, err := oplog.NewBodyParam("tailLength", 5)
	mustAppend(t, sess, op, err)

	p := New(assets, nil, 0)
	res, err := p.RenderExport(context.Background(), sess)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("want one warning, got %+v", res.Warnings)
	}
}

func TestBodySculptWarpsPoseRegion(t *testing.T) {
	sess, assets := testSession(t, 120, 120)
	sess.Detections = poseDetections()
	op, err := oplog.NewBodyParam("waist", 8)
	mustAppend(t, sess, op, err)

	p := New(assets, nil, 0)
	res, err := p.RenderExport(context.Background(), sess)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", res.Warnings)
	}
	src := assets["source"].(*image.NRGBA)
	if bytes.Equal(res.Image.Pix, src.Pix) {
		t.Fatal("waist sculpt changed no pixels")
	}
	// Far corner is outside the sculpt radius.
	if res.Image.NRGBAAt(2, 2) != src.NRGBAAt(2, 2) {
		t.Fatal("pixels outside the sculpt region changed")
	}
}

func TestBodySculptPinsDetectedFace(t *testing.T) {
	sess, assets := testSession(t, 120, 120)
	det := poseDetections()
	// A face whose landmark hull sits inside the waist warp radius; its
	// pixels must survive the sculpt untouched.
	det.Faces = []detect.Face{{
		Bounds:     geometry.NewRect(50, 32, 20, 18),
		Confidence: 0.9,
		Landmarks: []detect.LandmarkGroup{
			{Name: "leftEye", Points: []geometry.Point2D{{X: 52, Y: 34}, {X: 56, Y: 34}}},
			{Name: "rightEye", Points: []geometry.Point2D{{X: 64, Y: 34}, {X: 68, Y: 34}}},
			{Name: "mouth", Points: []geometry.Point2D{{X: 58, Y: 48}, {X: 62, Y: 48}}},
		},
	}}
	sess.Detections = det
	op, err := oplog.NewBodyParam("waist", 8)
	mustAppend(t, sess, op, err)

	p := New(assets, nil, 0)
	res, err := p.RenderExport(context.Background(), sess)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", res.Warnings)
	}

	src := assets["source"].(*image.NRGBA)
	// Interior of the face hull: pinned.
	if res.Image.NRGBAAt(60, 40) != src.NRGBAAt(60, 40) {
		t.Fatal("body sculpt moved pixels inside the detected face")
	}
	// Below the face, still well inside the warp radius: sculpted.
	if res.Image.NRGBAAt(60, 70) == src.NRGBAAt(60, 70) {
		t.Fatal("body sculpt outside the face region changed no pixels")
	}
}

func TestFaceSculptUsesLandmarkAlignment(t *testing.T) {
	sess, assets := testSession(t, 200, 200)
	sess.Detections = faceDetections()
	op, err := oplog.NewFaceParam("eyeSize", 8, 0)
	mustAppend(t, sess, op, err)

	p := New(assets, nil, 0)
	res, err := p.RenderExport(context.Background(), sess)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", res.Warnings)
	}
	src := assets["source"].(*image.NRGBA)
	if bytes.Equal(res.Image.Pix, src.Pix) {
		t.Fatal("face sculpt changed no pixels")
	}
	if res.Image.NRGBAAt(4, 4) != src.NRGBAAt(4, 4) {
		t.Fatal("pixels far from the face changed")
	}

	// FaceIndex out of range skips with a warning.
	sess2, assets2 := testSession(t, 200, 200)
	sess2.Detections = faceDetections()
	op2, err := oplog.NewFaceParam("eyeSize", 8, 3)
	mustAppend(t, sess2, op2, err)
	res2, err := New(assets2, nil, 0).RenderExport(context.Background(), sess2)
	if err != nil {
		t.Fatal(err)
	}
	if len(res2.Warnings) != 1 {
		t.Fatalf("want one warning for missing face, got %+v", res2.Warnings)
	}
}

func TestBackgroundReplacementThroughMatte(t *testing.T) {
	sess, assets := testSession(t, 20, 20)

	bg := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	for i := 0; i < len(bg.Pix); i += 4 {
		bg.Pix[i] = 255
		bg.Pix[i+3] = 255
	}
	// Matte: left half opaque white keeps the subject, right half black
	// reveals the background.
	matte := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 10; x++ {
			matte.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
		for x := 10; x < 20; x++ {
			matte.SetNRGBA(x, y, color.NRGBA{A: 255})
		}
	}
	assets["bg"] = bg
	assets["matte"] = matte

	op, err := oplog.NewBackground("bg", "matte")
	mustAppend(t, sess, op, err)

	p := New(assets, nil, 0)
	res, err := p.RenderExport(context.Background(), sess)
	if err != nil {
		t.Fatal(err)
	}
	src := assets["source"].(*image.NRGBA)
	if res.Image.NRGBAAt(3, 10) != src.NRGBAAt(3, 10) {
		t.Fatal("subject side must keep source pixels")
	}
	if got := res.Image.NRGBAAt(16, 10); got.R != 255 || got.G != 0 {
		t.Fatalf("background side not replaced: %+v", got)
	}
}

func TestBackgroundWithoutMatteSkips(t *testing.T) {
	sess, assets := testSession(t, 8, 8)
	assets["bg"] = gradientImage(8, 8)
	op, err := oplog.NewBackground("bg", "")
	mustAppend(t, sess, op, err)

	res, err := New(assets, nil, 0).RenderExport(context.Background(), sess)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Kind != oplog.KindBackground {
		t.Fatalf("want one background warning, got %+v", res.Warnings)
	}
}

func TestExportHonorsContextCancellation(t *testing.T) {
	sess, assets := testSession(t, 16, 16)
	op, err := oplog.NewColor(10, 1, 1)
	mustAppend(t, sess, op, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(assets, nil, 0).RenderExport(ctx, sess); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestExportLeavesLogUntouched(t *testing.T) {
	sess, assets := testSession(t, 16, 16)
	op, err := oplog.NewColor(10, 1, 1)
	mustAppend(t, sess, op, err)
	before := sess.Log.Operations()

	if _, err := New(assets, nil, 0).RenderExport(context.Background(), sess); err != nil {
		t.Fatal(err)
	}
	after := sess.Log.Operations()
	if len(before) != len(after) || sess.Log.CanRedo() {
		t.Fatal("export mutated the operation log")
	}
}

// poseDetections centers a torso in a 120x120 image.
func poseDetections() *detect.Detections {
	return &detect.Detections{
		Pose: []detect.Keypoint{
			{Name: "leftShoulder", Point: geometry.NewPoint2D(40, 30), Confidence: 0.9},
			{Name: "rightShoulder", Point: geometry.NewPoint2D(80, 30), Confidence: 0.9},
			{Name: "leftHip", Point: geometry.NewPoint2D(45, 80), Confidence: 0.8},
			{Name: "rightHip", Point: geometry.NewPoint2D(75, 80), Confidence: 0.8},
			{Name: "leftAnkle", Point: geometry.NewPoint2D(48, 115), Confidence: 0.3},
		},
	}
}

// faceDetections centers a face at (100,110) in a 200x200 image.
func faceDetections() *detect.Detections {
	return &detect.Detections{
		Faces: []detect.Face{{
			Bounds:     geometry.NewRect(60, 70, 80, 90),
			Confidence: 0.95,
			Landmarks: []detect.LandmarkGroup{
				{Name: "leftEye", Points: []geometry.Point2D{{X: 78, Y: 98}, {X: 86, Y: 98}}},
				{Name: "rightEye", Points: []geometry.Point2D{{X: 114, Y: 98}, {X: 122, Y: 98}}},
				{Name: "nose", Points: []geometry.Point2D{{X: 100, Y: 116}}},
				{Name: "mouth", Points: []geometry.Point2D{{X: 90, Y: 140}, {X: 110, Y: 140}}},
			},
		}},
	}
}
