package render

import (
	"fmt"
	"image"
	"math"

	"photo-retouch/internal/detect"
	"photo-retouch/internal/oplog"
	"photo-retouch/internal/warp"
	"photo-retouch/pkg/geometry"
)

// minPoseConfidence gates which pose keypoints anchor a body sculpt.
const minPoseConfidence = 0.5

// bodyControl maps a named body parameter to pose-keypoint anchors. Each
// anchor group becomes one warp centered on the centroid of its
// keypoints; the radius is sized from the distance between the group's
// outermost keypoints.
type bodyControl struct {
	family       warp.Family
	anchorGroups [][]string
	relRadius    float64
	gain         float64
}

var bodyControls = map[string]bodyControl{
	// Positive value slims, so the strength sign flips to a pinch.
	"waist": {
		family:       warp.FamilyRadial,
		anchorGroups: [][]string{{"leftHip", "rightHip", "leftShoulder", "rightShoulder"}},
		relRadius:    0.75,
		gain:         -0.02,
	},
	"hips": {
		family:       warp.FamilyRadial,
		anchorGroups: [][]string{{"leftHip", "rightHip"}},
		relRadius:    0.70,
		gain:         0.02,
	},
	"shoulders": {
		family:       warp.FamilyRadial,
		anchorGroups: [][]string{{"leftShoulder"}, {"rightShoulder"}},
		relRadius:    0.45,
		gain:         0.02,
	},
	"legLength": {
		family:       warp.FamilyBump,
		anchorGroups: [][]string{{"leftAnkle", "rightAnkle"}},
		relRadius:    0.60,
		gain:         0.01,
	},
}

// renderBodyParam sculpts the body region anchored by pose keypoints. A
// missing keypoint skips the whole operation; sculpting a guessed
// location would be worse than doing nothing. Detected faces are pinned:
// their pixels come out exactly as they went in, so a wide waist or
// shoulder warp cannot drag facial features.
func renderBodyParam(canvas *image.NRGBA, op oplog.BodyParam, det *detect.Detections, scale float64) (*image.NRGBA, error) {
	control, ok := bodyControls[op.Key]
	if !ok {
		return nil, fmt.Errorf("%w: body key %q", ErrUnsupportedParam, op.Key)
	}
	original := canvas

	for _, group := range control.anchorGroups {
		center, extent, ok := anchorRegion(det, group)
		if !ok {
			return nil, fmt.Errorf("%w: pose keypoints %v below confidence %v",
				ErrNoDetections, group, minPoseConfidence)
		}
		params := warp.Params{
			Center:   center,
			Radius:   control.relRadius * extent,
			Strength: op.Value * control.gain,
			Family:   control.family,
		}.Scaled(scale)
		next, err := warp.Apply(canvas, params)
		if err != nil {
			return nil, err
		}
		canvas = next
	}
	return pinFaces(original, canvas, det, scale), nil
}

// pinFaces copies detected-face pixels from before into after. A face
// needs at least a triangle of landmark points to form a hull; faces
// without one are left to the warp falloff.
func pinFaces(before, after *image.NRGBA, det *detect.Detections, scale float64) *image.NRGBA {
	if before == after {
		return after
	}
	bounds := after.Bounds()
	for i := range det.Faces {
		hull := det.FaceHull(i)
		if len(hull) < 3 {
			continue
		}
		scaled := make([]geometry.Point2D, len(hull))
		for j, p := range hull {
			scaled[j] = p.Scale(scale)
		}

		box := geometry.BoundingBox(scaled)
		minX := clampInt(int(math.Floor(box.X)), bounds.Min.X, bounds.Max.X)
		maxX := clampInt(int(math.Ceil(box.X+box.Width))+1, bounds.Min.X, bounds.Max.X)
		minY := clampInt(int(math.Floor(box.Y)), bounds.Min.Y, bounds.Max.Y)
		maxY := clampInt(int(math.Ceil(box.Y+box.Height))+1, bounds.Min.Y, bounds.Max.Y)

		for y := minY; y < maxY; y++ {
			for x := minX; x < maxX; x++ {
				if !geometry.PointInPolygon(geometry.NewPoint2D(float64(x), float64(y)), scaled) {
					continue
				}
				si := before.PixOffset(x, y)
				di := after.PixOffset(x, y)
				copy(after.Pix[di:di+4], before.Pix[si:si+4])
			}
		}
	}
	return after
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// anchorRegion returns the centroid of the named keypoints and an extent
// for radius sizing. Single-keypoint groups fall back to the whole-pose
// bounding box for their extent.
func anchorRegion(det *detect.Detections, names []string) (geometry.Point2D, float64, bool) {
	var points []geometry.Point2D
	for _, name := range names {
		kp, ok := det.KeypointNamed(name, minPoseConfidence)
		if !ok {
			return geometry.Point2D{}, 0, false
		}
		points = append(points, kp.Point)
	}

	center := geometry.Centroid(points)
	box := geometry.BoundingBox(points)
	extent := box.Width
	if box.Height > extent {
		extent = box.Height
	}
	if extent == 0 {
		roi, ok := det.PoseROI(minPoseConfidence)
		if !ok {
			return geometry.Point2D{}, 0, false
		}
		extent = roi.Width
		if roi.Height > extent {
			extent = roi.Height
		}
		extent *= 0.25
	}
	return center, extent, true
}
