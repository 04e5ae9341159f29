// Package detect defines the data produced by the external detection
// collaborator (face landmarks, pose keypoints, person matte) and helpers
// for deriving regions of interest from it. The core consumes the
// detections cache read-only and never recomputes it.
package detect

import (
	"context"
	"image"

	"photo-retouch/pkg/geometry"
)

// LandmarkGroup is a named group of facial landmark points in source-image
// pixel space, e.g. "leftEye" or "mouth".
type LandmarkGroup struct {
	Name   string             `json:"name"`
	Points []geometry.Point2D `json:"points"`
}

// Face is one detected face.
type Face struct {
	Bounds     geometry.Rect   `json:"bounds"`
	Landmarks  []LandmarkGroup `json:"landmarks,omitempty"`
	Confidence float64         `json:"confidence"`
}

// Keypoint is one body-pose keypoint.
type Keypoint struct {
	Name       string           `json:"name"`
	Point      geometry.Point2D `json:"point"`
	Confidence float64          `json:"confidence"`
}

// Detections is the opaque cache handed over by the detection
// collaborator. It is stored on the session and persisted verbatim.
type Detections struct {
	Faces      []Face             `json:"faces,omitempty"`
	Pose       []Keypoint         `json:"pose,omitempty"`
	MatteRef   string             `json:"matte,omitempty"`
	Confidence map[string]float64 `json:"confidence,omitempty"`
}

// Detector is the interface the external detection collaborator
// implements. Implementations run face/pose/segmentation models; the core
// only ever calls Detect and caches the result.
type Detector interface {
	Detect(ctx context.Context, img image.Image) (*Detections, error)
}

// FaceROI returns the region of interest for the face at the given index:
// the bounding box of all its landmark points, or the detector-reported
// face bounds when no landmarks are present.
func (d *Detections) FaceROI(index int) (geometry.Rect, bool) {
	if d == nil || index < 0 || index >= len(d.Faces) {
		return geometry.Rect{}, false
	}

	face := d.Faces[index]
	var points []geometry.Point2D
	for _, group := range face.Landmarks {
		points = append(points, group.Points...)
	}
	if len(points) == 0 {
		return face.Bounds, true
	}
	return geometry.BoundingBox(points), true
}

// LandmarkGroupCentroid returns the centroid of the named landmark group
// on the face at the given index.
func (d *Detections) LandmarkGroupCentroid(index int, name string) (geometry.Point2D, bool) {
	if d == nil || index < 0 || index >= len(d.Faces) {
		return geometry.Point2D{}, false
	}
	for _, group := range d.Faces[index].Landmarks {
		if group.Name == name && len(group.Points) > 0 {
			return geometry.Centroid(group.Points), true
		}
	}
	return geometry.Point2D{}, false
}

// FaceHull returns the convex hull of all landmark points of a face. The
// renderer pins this region in place while body sculpts run around it.
func (d *Detections) FaceHull(index int) []geometry.Point2D {
	if d == nil || index < 0 || index >= len(d.Faces) {
		return nil
	}
	var points []geometry.Point2D
	for _, group := range d.Faces[index].Landmarks {
		points = append(points, group.Points...)
	}
	return geometry.ConvexHull(points)
}

// PoseROI returns the bounding box of all pose keypoints whose confidence
// is at least minConfidence.
func (d *Detections) PoseROI(minConfidence float64) (geometry.Rect, bool) {
	if d == nil {
		return geometry.Rect{}, false
	}
	var points []geometry.Point2D
	for _, kp := range d.Pose {
		if kp.Confidence >= minConfidence {
			points = append(points, kp.Point)
		}
	}
	if len(points) == 0 {
		return geometry.Rect{}, false
	}
	return geometry.BoundingBox(points), true
}

// KeypointNamed returns the pose keypoint with the given name whose
// confidence is at least minConfidence.
func (d *Detections) KeypointNamed(name string, minConfidence float64) (Keypoint, bool) {
	if d == nil {
		return Keypoint{}, false
	}
	for _, kp := range d.Pose {
		if kp.Name == name && kp.Confidence >= minConfidence {
			return kp, true
		}
	}
	return Keypoint{}, false
}
