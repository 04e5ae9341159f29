package render

import (
	"fmt"
	"image"

	"photo-retouch/internal/detect"
	"photo-retouch/internal/oplog"
	"photo-retouch/internal/warp"
	"photo-retouch/pkg/geometry"
)

// Canonical face template: landmark-group anchors in a unit square with
// the face upright. A detected face's landmark centroids are aligned to
// these anchors to place the sculpt warps, so the same parameter lands
// on the same facial feature regardless of pose or scale.
var faceTemplate = map[string]geometry.Point2D{
	"leftEye":  {X: 0.32, Y: 0.42},
	"rightEye": {X: 0.68, Y: 0.42},
	"nose":     {X: 0.50, Y: 0.56},
	"mouth":    {X: 0.50, Y: 0.74},
}

// faceControl maps one named parameter to the warps that realize it. The
// anchors are template coordinates; gain converts the parameter value
// (nominally -10..10) to a warp strength and relRadius sizes the radius
// relative to the face extent.
type faceControl struct {
	family    warp.Family
	anchors   []geometry.Point2D
	relRadius float64
	gain      float64
}

var faceControls = map[string]faceControl{
	"eyeSize": {
		family:    warp.FamilyMagnifier,
		anchors:   []geometry.Point2D{faceTemplate["leftEye"], faceTemplate["rightEye"]},
		relRadius: 0.14,
		gain:      0.04,
	},
	"noseSize": {
		family:    warp.FamilyMagnifier,
		anchors:   []geometry.Point2D{faceTemplate["nose"]},
		relRadius: 0.12,
		gain:      0.04,
	},
	"faceWidth": {
		family:    warp.FamilyRadial,
		anchors:   []geometry.Point2D{{X: 0.5, Y: 0.55}},
		relRadius: 0.60,
		gain:      0.03,
	},
	"jawWidth": {
		family:    warp.FamilyRadial,
		anchors:   []geometry.Point2D{{X: 0.5, Y: 0.88}},
		relRadius: 0.35,
		gain:      0.03,
	},
	"mouthSize": {
		family:    warp.FamilyMagnifier,
		anchors:   []geometry.Point2D{faceTemplate["mouth"]},
		relRadius: 0.12,
		gain:      0.04,
	},
}

// renderFaceParam sculpts one face. The warps are authored in template
// space and mapped into the image through a least-squares alignment of
// the face's landmark centroids to the template; a face without enough
// landmarks falls back to its detector bounds.
func renderFaceParam(canvas *image.NRGBA, op oplog.FaceParam, det *detect.Detections, scale float64) (*image.NRGBA, error) {
	control, ok := faceControls[op.Key]
	if !ok {
		return nil, fmt.Errorf("%w: face key %q", ErrUnsupportedParam, op.Key)
	}
	roi, ok := det.FaceROI(op.FaceIndex)
	if !ok {
		return nil, fmt.Errorf("%w: face %d not detected", ErrNoDetections, op.FaceIndex)
	}

	toImage := faceAlignment(det, op.FaceIndex, roi)
	faceExtent := roi.Width
	if roi.Height > faceExtent {
		faceExtent = roi.Height
	}

	for _, anchor := range control.anchors {
		params := warp.Params{
			Center:   toImage.Apply(anchor),
			Radius:   control.relRadius * faceExtent,
			Strength: op.Value * control.gain,
			Family:   control.family,
		}.Scaled(scale)
		next, err := warp.Apply(canvas, params)
		if err != nil {
			return nil, err
		}
		canvas = next
	}
	return canvas, nil
}

// faceAlignment estimates the template-to-image transform from landmark
// centroids. With fewer than three usable groups the alignment is
// underdetermined and the face bounds stand in for it.
func faceAlignment(det *detect.Detections, faceIndex int, roi geometry.Rect) geometry.AffineTransform {
	var src, dst []geometry.Point2D
	for name, anchor := range faceTemplate {
		centroid, ok := det.LandmarkGroupCentroid(faceIndex, name)
		if !ok {
			continue
		}
		src = append(src, anchor)
		dst = append(dst, centroid)
	}
	if len(src) >= 3 {
		if t, err := detect.EstimateAlignment(src, dst); err == nil {
			return t
		}
	}
	// Fallback: stretch the unit template over the face bounds.
	return geometry.AffineTransform{
		A: roi.Width, D: roi.Height,
		TX: roi.X, TY: roi.Y,
	}
}
