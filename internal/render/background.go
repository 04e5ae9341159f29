package render

import (
	"context"
	"fmt"
	"image"

	"photo-retouch/internal/imaging"
	"photo-retouch/internal/oplog"
	"photo-retouch/internal/session"
)

// renderBackground composites the current canvas over a replacement
// background through a person matte. The matte comes from the operation
// itself, falling back to the matte the detection collaborator segmented
// for the session; without either the operation cannot separate subject
// from background and is skipped.
func (p *Pipeline) renderBackground(ctx context.Context, canvas *image.NRGBA, op oplog.Background, sess *session.Session) (*image.NRGBA, error) {
	bg, err := p.resolveNRGBA(ctx, op.ImageRef)
	if err != nil {
		return nil, fmt.Errorf("background image %q: %w", op.ImageRef, err)
	}
	bounds := canvas.Bounds()
	if bg.Bounds().Dx() != bounds.Dx() || bg.Bounds().Dy() != bounds.Dy() {
		bg = imaging.Scale(bg, bounds.Dx(), bounds.Dy())
	}

	matteRef := op.MatteRef
	if matteRef == "" && sess.Detections != nil {
		matteRef = sess.Detections.MatteRef
	}
	if matteRef == "" {
		return nil, fmt.Errorf("%w: no matte for background replacement", ErrNoDetections)
	}
	matte, err := p.resolveAlpha(ctx, matteRef, bounds)
	if err != nil {
		return nil, fmt.Errorf("matte %q: %w", matteRef, err)
	}

	return imaging.CompositeWithMatte(canvas, bg, matte), nil
}
