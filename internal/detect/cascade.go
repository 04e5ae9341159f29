package detect

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"photo-retouch/pkg/geometry"
)

// CascadeDetector is a Detector backed by an OpenCV Haar cascade. It only
// produces face bounds (no landmarks or matte); it exists so the editor is
// usable without a full ML detection service attached.
type CascadeDetector struct {
	classifier gocv.CascadeClassifier
}

// NewCascadeDetector loads a Haar cascade definition, e.g.
// haarcascade_frontalface_default.xml from an OpenCV distribution.
func NewCascadeDetector(cascadePath string) (*CascadeDetector, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cascadePath) {
		classifier.Close()
		return nil, fmt.Errorf("failed to load cascade from %s", cascadePath)
	}
	return &CascadeDetector{classifier: classifier}, nil
}

// Detect implements Detector.
func (d *CascadeDetector) Detect(ctx context.Context, img image.Image) (*Detections, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer m.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(m, &gray, gocv.ColorRGBAToGray)

	rects := d.classifier.DetectMultiScale(gray)

	det := &Detections{
		Confidence: map[string]float64{"face": 1.0},
	}
	for _, r := range rects {
		det.Faces = append(det.Faces, Face{
			Bounds: geometry.NewRect(
				float64(r.Min.X), float64(r.Min.Y),
				float64(r.Dx()), float64(r.Dy()),
			),
			Confidence: 1.0,
		})
	}
	return det, nil
}

// Close releases the underlying classifier.
func (d *CascadeDetector) Close() error {
	return d.classifier.Close()
}
