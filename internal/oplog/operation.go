// Package oplog implements the edit-operation log: an ordered, serializable
// sequence of immutable edit operations with grouped undo/redo, selective
// reset by kind, and lossless coalescing.
//
// Operation parameters that describe geometry (warp centers, radii, stroke
// points) are always stored in full-resolution source-image pixel space.
// View-space input is converted exactly once, at authoring time, through
// geometry.Fit; renderers scale source-space parameters down to whatever
// target resolution they draw at. Storing one canonical space keeps replay
// independent of the view the edit was made in.
package oplog

import (
	"errors"
	"fmt"
	"math"

	"photo-retouch/pkg/geometry"
)

// ErrInvalidGeometry is returned by operation constructors when a center,
// radius or strength value is outside sane bounds. Such operations never
// enter the log.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Kind identifies an operation variant. The string values are the wire
// names used in serialized sessions.
type Kind string

const (
	KindLiquifyStroke Kind = "liquifyStroke"
	KindMagnifier     Kind = "magnifier"
	KindTwirl         Kind = "twirl"
	KindBodyParam     Kind = "bodyParam"
	KindFaceParam     Kind = "faceParam"
	KindInpaint       Kind = "inpaint"
	KindBackground    Kind = "background"
	KindTransform     Kind = "transform"
	KindColor         Kind = "color"
)

// Operation is a single immutable edit. Operations are value objects: once
// appended to a log they are never mutated, edits are expressed as new
// operations.
type Operation interface {
	Kind() Kind

	// validate reports whether the operation's fields are within sane
	// bounds. It runs at construction and again when decoding persisted
	// sessions, so malformed data is rejected before it can enter a log.
	validate() error
}

// maxStrength bounds warp strength magnitudes; values beyond this produce
// foldover artifacts rather than anything a user would want.
const maxStrength = 8.0

// Magnifier is a radial magnification warp.
type Magnifier struct {
	Center   geometry.Point2D `json:"center"`
	Radius   float64          `json:"radius"`
	Strength float64          `json:"strength"`
}

// NewMagnifier creates a magnifier operation with source-space parameters.
func NewMagnifier(center geometry.Point2D, radius, strength float64) (Magnifier, error) {
	op := Magnifier{Center: center, Radius: radius, Strength: strength}
	if err := op.validate(); err != nil {
		return Magnifier{}, err
	}
	return op, nil
}

// Kind implements Operation.
func (Magnifier) Kind() Kind { return KindMagnifier }

func (m Magnifier) validate() error {
	return validateWarp(m.Center, m.Radius, m.Strength)
}

// Twirl is a rotational warp. Angle is in radians and decays quadratically
// toward the radius boundary.
type Twirl struct {
	Center geometry.Point2D `json:"center"`
	Radius float64          `json:"radius"`
	Angle  float64          `json:"angle"`
}

// NewTwirl creates a twirl operation with source-space parameters.
func NewTwirl(center geometry.Point2D, radius, angle float64) (Twirl, error) {
	op := Twirl{Center: center, Radius: radius, Angle: angle}
	if err := op.validate(); err != nil {
		return Twirl{}, err
	}
	return op, nil
}

// Kind implements Operation.
func (Twirl) Kind() Kind { return KindTwirl }

func (t Twirl) validate() error {
	if err := validateWarp(t.Center, t.Radius, 0); err != nil {
		return err
	}
	if math.IsNaN(t.Angle) || math.Abs(t.Angle) > 8*math.Pi {
		return fmt.Errorf("twirl angle %v out of range: %w", t.Angle, ErrInvalidGeometry)
	}
	return nil
}

// StrokePoint is one displacement sample of a liquify stroke: pixels within
// Radius of To are dragged along the From→To direction.
type StrokePoint struct {
	From     geometry.Point2D `json:"from"`
	To       geometry.Point2D `json:"to"`
	Radius   float64          `json:"radius"`
	Strength float64          `json:"strength"`
}

// LiquifyStroke is a freehand warp stroke made of many displacement
// samples. The whole stroke undoes as a single step; coalescing merges all
// strokes in a log into one operation with the samples concatenated.
type LiquifyStroke struct {
	Points        []StrokePoint `json:"points"`
	FreezeMaskRef string        `json:"freeze_mask,omitempty"`
}

// NewLiquifyStroke creates a liquify stroke from displacement samples.
func NewLiquifyStroke(points []StrokePoint, freezeMaskRef string) (LiquifyStroke, error) {
	op := LiquifyStroke{Points: points, FreezeMaskRef: freezeMaskRef}
	if err := op.validate(); err != nil {
		return LiquifyStroke{}, err
	}
	return op, nil
}

// Kind implements Operation.
func (LiquifyStroke) Kind() Kind { return KindLiquifyStroke }

func (l LiquifyStroke) validate() error {
	if len(l.Points) == 0 {
		return fmt.Errorf("liquify stroke has no points: %w", ErrInvalidGeometry)
	}
	for i, pt := range l.Points {
		if err := validateWarp(pt.To, pt.Radius, pt.Strength); err != nil {
			return fmt.Errorf("stroke point %d: %w", i, err)
		}
		if math.IsNaN(pt.From.X) || math.IsNaN(pt.From.Y) {
			return fmt.Errorf("stroke point %d has NaN origin: %w", i, ErrInvalidGeometry)
		}
	}
	return nil
}

// BodyParam is one slider-driven body-shape control, e.g. waist or
// shoulders. At most one live instance per key is kept via ReplaceOfKind;
// coalescing keeps the latest value per key.
type BodyParam struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// NewBodyParam creates a body parameter operation.
func NewBodyParam(key string, value float64) (BodyParam, error) {
	op := BodyParam{Key: key, Value: value}
	if err := op.validate(); err != nil {
		return BodyParam{}, err
	}
	return op, nil
}

// Kind implements Operation.
func (BodyParam) Kind() Kind { return KindBodyParam }

func (b BodyParam) validate() error {
	if b.Key == "" {
		return fmt.Errorf("body param key empty: %w", ErrInvalidGeometry)
	}
	if math.IsNaN(b.Value) || math.IsInf(b.Value, 0) {
		return fmt.Errorf("body param %q value not finite: %w", b.Key, ErrInvalidGeometry)
	}
	return nil
}

// FaceParam is one slider-driven face control, keyed by control name and
// face index within the detections cache.
type FaceParam struct {
	Key       string  `json:"key"`
	Value     float64 `json:"value"`
	FaceIndex int     `json:"face_index"`
}

// NewFaceParam creates a face parameter operation.
func NewFaceParam(key string, value float64, faceIndex int) (FaceParam, error) {
	op := FaceParam{Key: key, Value: value, FaceIndex: faceIndex}
	if err := op.validate(); err != nil {
		return FaceParam{}, err
	}
	return op, nil
}

// Kind implements Operation.
func (FaceParam) Kind() Kind { return KindFaceParam }

func (f FaceParam) validate() error {
	if f.Key == "" {
		return fmt.Errorf("face param key empty: %w", ErrInvalidGeometry)
	}
	if f.FaceIndex < 0 {
		return fmt.Errorf("face index %d negative: %w", f.FaceIndex, ErrInvalidGeometry)
	}
	if math.IsNaN(f.Value) || math.IsInf(f.Value, 0) {
		return fmt.Errorf("face param %q value not finite: %w", f.Key, ErrInvalidGeometry)
	}
	return nil
}

// Inpaint removes a region described by an external mask asset.
type Inpaint struct {
	MaskRef string `json:"mask"`
}

// NewInpaint creates an inpaint operation referencing a mask asset.
func NewInpaint(maskRef string) (Inpaint, error) {
	op := Inpaint{MaskRef: maskRef}
	if err := op.validate(); err != nil {
		return Inpaint{}, err
	}
	return op, nil
}

// Kind implements Operation.
func (Inpaint) Kind() Kind { return KindInpaint }

func (i Inpaint) validate() error {
	if i.MaskRef == "" {
		return fmt.Errorf("inpaint mask reference empty: %w", ErrInvalidGeometry)
	}
	return nil
}

// Background replaces the scene background behind the person matte.
type Background struct {
	ImageRef string `json:"image"`
	MatteRef string `json:"matte,omitempty"`
}

// NewBackground creates a background replacement operation.
func NewBackground(imageRef, matteRef string) (Background, error) {
	op := Background{ImageRef: imageRef, MatteRef: matteRef}
	if err := op.validate(); err != nil {
		return Background{}, err
	}
	return op, nil
}

// Kind implements Operation.
func (Background) Kind() Kind { return KindBackground }

func (b Background) validate() error {
	if b.ImageRef == "" {
		return fmt.Errorf("background image reference empty: %w", ErrInvalidGeometry)
	}
	return nil
}

// Transform is a whole-image geometric edit: rotation about the image
// center, mirroring, and an optional crop in source pixels.
type Transform struct {
	RotateDegrees  float64           `json:"rotate_degrees,omitempty"`
	FlipHorizontal bool              `json:"flip_horizontal,omitempty"`
	FlipVertical   bool              `json:"flip_vertical,omitempty"`
	Crop           *geometry.RectInt `json:"crop,omitempty"`
}

// NewTransform creates a whole-image transform operation.
func NewTransform(rotateDegrees float64, flipH, flipV bool, crop *geometry.RectInt) (Transform, error) {
	op := Transform{RotateDegrees: rotateDegrees, FlipHorizontal: flipH, FlipVertical: flipV, Crop: crop}
	if err := op.validate(); err != nil {
		return Transform{}, err
	}
	return op, nil
}

// Kind implements Operation.
func (Transform) Kind() Kind { return KindTransform }

func (t Transform) validate() error {
	if math.IsNaN(t.RotateDegrees) || math.Abs(t.RotateDegrees) > 360 {
		return fmt.Errorf("rotation %v out of range: %w", t.RotateDegrees, ErrInvalidGeometry)
	}
	if t.Crop != nil && (t.Crop.Width <= 0 || t.Crop.Height <= 0) {
		return fmt.Errorf("crop %dx%d not positive: %w", t.Crop.Width, t.Crop.Height, ErrInvalidGeometry)
	}
	return nil
}

// Color is a global photometric adjustment. Brightness is additive in
// -255..255; contrast and saturation are multipliers with 1.0 meaning no
// change. Later color operations supersede earlier ones entirely.
type Color struct {
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Saturation float64 `json:"saturation"`
}

// NewColor creates a color adjustment operation.
func NewColor(brightness, contrast, saturation float64) (Color, error) {
	op := Color{Brightness: brightness, Contrast: contrast, Saturation: saturation}
	if err := op.validate(); err != nil {
		return Color{}, err
	}
	return op, nil
}

// Kind implements Operation.
func (Color) Kind() Kind { return KindColor }

func (c Color) validate() error {
	if math.IsNaN(c.Brightness) || c.Brightness < -255 || c.Brightness > 255 {
		return fmt.Errorf("brightness %v out of range: %w", c.Brightness, ErrInvalidGeometry)
	}
	if math.IsNaN(c.Contrast) || c.Contrast < 0 || c.Contrast > 4 {
		return fmt.Errorf("contrast %v out of range: %w", c.Contrast, ErrInvalidGeometry)
	}
	if math.IsNaN(c.Saturation) || c.Saturation < 0 || c.Saturation > 4 {
		return fmt.Errorf("saturation %v out of range: %w", c.Saturation, ErrInvalidGeometry)
	}
	return nil
}

func validateWarp(center geometry.Point2D, radius, strength float64) error {
	if math.IsNaN(center.X) || math.IsNaN(center.Y) ||
		math.IsInf(center.X, 0) || math.IsInf(center.Y, 0) {
		return fmt.Errorf("center (%v,%v) not finite: %w", center.X, center.Y, ErrInvalidGeometry)
	}
	if math.IsNaN(radius) || radius < 0 {
		return fmt.Errorf("radius %v negative or NaN: %w", radius, ErrInvalidGeometry)
	}
	if math.IsNaN(strength) || math.Abs(strength) > maxStrength {
		return fmt.Errorf("strength %v out of range: %w", strength, ErrInvalidGeometry)
	}
	return nil
}
