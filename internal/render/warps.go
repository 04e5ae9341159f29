package render

import (
	"context"
	"fmt"
	"image"
	"math"

	"photo-retouch/internal/oplog"
	"photo-retouch/internal/warp"
)

func renderMagnifier(canvas *image.NRGBA, op oplog.Magnifier, scale float64) (*image.NRGBA, error) {
	params := warp.Params{
		Center:   op.Center,
		Radius:   op.Radius,
		Strength: op.Strength,
		Family:   warp.FamilyMagnifier,
	}.Scaled(scale)
	return warp.Apply(canvas, params)
}

func renderTwirl(canvas *image.NRGBA, op oplog.Twirl, scale float64) (*image.NRGBA, error) {
	params := warp.Params{
		Center:   op.Center,
		Radius:   op.Radius,
		Strength: op.Angle,
		Family:   warp.FamilyTwirl,
	}.Scaled(scale)
	return warp.Apply(canvas, params)
}

// renderLiquify replays a stroke point by point. A freeze mask, when
// referenced, pins half-opaque-or-more pixels in place; if the mask
// cannot be resolved the whole stroke is skipped rather than applied
// without the protection the user painted.
func (p *Pipeline) renderLiquify(ctx context.Context, canvas *image.NRGBA, op oplog.LiquifyStroke, scale float64) (*image.NRGBA, error) {
	var freeze *image.Alpha
	if op.FreezeMaskRef != "" {
		mask, err := p.resolveAlpha(ctx, op.FreezeMaskRef, canvas.Bounds())
		if err != nil {
			return nil, fmt.Errorf("freeze mask %q: %w", op.FreezeMaskRef, err)
		}
		freeze = mask
	}

	for i, pt := range op.Points {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		from := pt.From.Scale(scale)
		to := pt.To.Scale(scale)
		radius := pt.Radius * scale
		// A stationary sample drags nothing; skip it instead of
		// resampling the whole canvas.
		if math.Hypot(to.X-from.X, to.Y-from.Y) == 0 {
			continue
		}
		next, err := warp.Smear(canvas, from, to, radius, pt.Strength, freeze)
		if err != nil {
			return nil, fmt.Errorf("stroke point %d: %w", i, err)
		}
		canvas = next
	}
	return canvas, nil
}
