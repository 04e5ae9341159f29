// Package render replays a session's operation log onto pixels. The same
// sequence drives two paths: RenderPreview works on a cached downscale of
// the source for interactive latency, RenderExport replays at full
// resolution. Both paths apply operations in identical order with
// geometry scaled by a single uniform factor, so the export reproduces
// what the preview showed.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/sirupsen/logrus"

	"photo-retouch/internal/imaging"
	"photo-retouch/internal/oplog"
	"photo-retouch/internal/session"
	"photo-retouch/pkg/geometry"
)

// AssetResolver loads external pixel data by reference: the session
// source, inpaint masks, freeze masks, replacement backgrounds and
// mattes. Storage owns the references; the pipeline only dereferences
// them.
type AssetResolver interface {
	Resolve(ctx context.Context, ref string) (image.Image, error)
}

// ErrMissingAsset reports a reference the resolver could not satisfy. An
// operation that hits it is skipped with a warning; the render continues.
var ErrMissingAsset = errors.New("asset not found")

// ErrNoDetections reports a sculpt operation on a session without the
// detection data it needs. The operation is skipped with a warning.
var ErrNoDetections = errors.New("no detection data for operation")

// ErrUnsupportedParam reports a sculpt parameter key this build has no
// control mapping for, e.g. a session written by a newer version. The
// operation is skipped with a warning so the rest of the log still
// renders.
var ErrUnsupportedParam = errors.New("unsupported sculpt parameter")

// DefaultPreviewMaxDim bounds the longer preview edge when no explicit
// view size is configured.
const DefaultPreviewMaxDim = 1600

// Warning records an operation the pipeline skipped.
type Warning struct {
	Index  int        `json:"index"`
	Kind   oplog.Kind `json:"kind"`
	Reason string     `json:"reason"`
}

// Result is a completed render.
type Result struct {
	Image    *image.NRGBA
	Warnings []Warning
}

type cachedPreview struct {
	sourceRef  string
	maxW, maxH int
	base       *image.NRGBA
}

// Pipeline renders sessions. Safe for concurrent use; the preview cache
// is shared across calls.
type Pipeline struct {
	assets        AssetResolver
	log           logrus.FieldLogger
	previewMaxDim int

	mu       sync.Mutex
	previews map[string]cachedPreview
}

// New creates a pipeline. A zero previewMaxDim selects
// DefaultPreviewMaxDim.
func New(assets AssetResolver, log logrus.FieldLogger, previewMaxDim int) *Pipeline {
	if previewMaxDim <= 0 {
		previewMaxDim = DefaultPreviewMaxDim
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	return &Pipeline{
		assets:        assets,
		log:           log,
		previewMaxDim: previewMaxDim,
		previews:      make(map[string]cachedPreview),
	}
}

// RenderPreview replays the session's operations on a downscaled base
// image aspect-fit into the given view size; a zero view falls back to
// the configured preview bound. The downscale is computed once per
// session and view and cached; subsequent previews reuse it.
func (p *Pipeline) RenderPreview(ctx context.Context, sess *session.Session, view geometry.Size) (*Result, error) {
	maxW, maxH := int(view.Width), int(view.Height)
	if maxW <= 0 || maxH <= 0 {
		maxW, maxH = p.previewMaxDim, p.previewMaxDim
	}
	base, err := p.previewBase(ctx, sess, maxW, maxH)
	if err != nil {
		return nil, err
	}
	scale := float64(base.Bounds().Dx()) / float64(sess.Width)
	return p.render(ctx, sess, imaging.Clone(base), scale)
}

// RenderExport replays the session's operations at full source
// resolution. The session and its log are only read, never mutated, so
// an export can run while editing continues.
func (p *Pipeline) RenderExport(ctx context.Context, sess *session.Session) (*Result, error) {
	src, err := p.resolveNRGBA(ctx, sess.SourceRef)
	if err != nil {
		return nil, fmt.Errorf("resolving source %q: %w", sess.SourceRef, err)
	}
	return p.render(ctx, sess, src, 1)
}

// InvalidatePreview drops the cached preview base for a session, e.g.
// after its source changed.
func (p *Pipeline) InvalidatePreview(sessionID string) {
	p.mu.Lock()
	delete(p.previews, sessionID)
	p.mu.Unlock()
}

func (p *Pipeline) previewBase(ctx context.Context, sess *session.Session, maxW, maxH int) (*image.NRGBA, error) {
	p.mu.Lock()
	cached, ok := p.previews[sess.ID]
	p.mu.Unlock()
	if ok && cached.sourceRef == sess.SourceRef && cached.maxW == maxW && cached.maxH == maxH {
		return cached.base, nil
	}

	src, err := p.resolveNRGBA(ctx, sess.SourceRef)
	if err != nil {
		return nil, fmt.Errorf("resolving source %q: %w", sess.SourceRef, err)
	}
	w, h := imaging.FitWithin(src, maxW, maxH)
	base := imaging.ScaleFast(src, w, h)

	p.mu.Lock()
	p.previews[sess.ID] = cachedPreview{
		sourceRef: sess.SourceRef,
		maxW:      maxW,
		maxH:      maxH,
		base:      base,
	}
	p.mu.Unlock()
	return base, nil
}

// render applies the committed operations in log order. Geometry stored
// on the operations is in source pixels; scale maps it onto the canvas.
func (p *Pipeline) render(ctx context.Context, sess *session.Session, canvas *image.NRGBA, scale float64) (*Result, error) {
	ops := sess.Log.Operations()
	warnings := []Warning{}
	superseded := supersededMask(ops)

	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if superseded[i] {
			continue
		}

		next, err := p.renderOp(ctx, sess, canvas, op, scale)
		if err != nil {
			if errors.Is(err, ErrMissingAsset) || errors.Is(err, ErrNoDetections) || errors.Is(err, ErrUnsupportedParam) {
				p.log.WithFields(logrus.Fields{
					"session": sess.ID,
					"index":   i,
					"kind":    op.Kind(),
				}).Warnf("skipping operation: %v", err)
				warnings = append(warnings, Warning{Index: i, Kind: op.Kind(), Reason: err.Error()})
				continue
			}
			return nil, fmt.Errorf("operation %d (%s): %w", i, op.Kind(), err)
		}
		canvas = next
	}
	return &Result{Image: canvas, Warnings: warnings}, nil
}

func (p *Pipeline) renderOp(ctx context.Context, sess *session.Session, canvas *image.NRGBA, op oplog.Operation, scale float64) (*image.NRGBA, error) {
	switch o := op.(type) {
	case oplog.Magnifier:
		return renderMagnifier(canvas, o, scale)
	case oplog.Twirl:
		return renderTwirl(canvas, o, scale)
	case oplog.LiquifyStroke:
		return p.renderLiquify(ctx, canvas, o, scale)
	case oplog.BodyParam:
		return renderBodyParam(canvas, o, sess.Detections, scale)
	case oplog.FaceParam:
		return renderFaceParam(canvas, o, sess.Detections, scale)
	case oplog.Inpaint:
		return p.renderInpaint(ctx, canvas, o)
	case oplog.Background:
		return p.renderBackground(ctx, canvas, o, sess)
	case oplog.Transform:
		return renderTransform(canvas, o, scale)
	case oplog.Color:
		return renderColor(canvas, o), nil
	default:
		return nil, fmt.Errorf("no renderer for operation kind %q", op.Kind())
	}
}

// supersededMask marks parameter and color operations that a later
// operation with the same key overrides. Sliders are absolute values,
// not deltas: only the newest setting per key renders, which also keeps
// a coalesced log pixel-identical to the log it replaced.
func supersededMask(ops []oplog.Operation) []bool {
	type faceKey struct {
		key   string
		index int
	}
	mask := make([]bool, len(ops))
	bodySeen := make(map[string]bool)
	faceSeen := make(map[faceKey]bool)
	colorSeen := false

	for i := len(ops) - 1; i >= 0; i-- {
		switch o := ops[i].(type) {
		case oplog.BodyParam:
			if bodySeen[o.Key] {
				mask[i] = true
			}
			bodySeen[o.Key] = true
		case oplog.FaceParam:
			k := faceKey{o.Key, o.FaceIndex}
			if faceSeen[k] {
				mask[i] = true
			}
			faceSeen[k] = true
		case oplog.Color:
			if colorSeen {
				mask[i] = true
			}
			colorSeen = true
		}
	}
	return mask
}

// resolveNRGBA resolves a reference and normalizes the pixels.
func (p *Pipeline) resolveNRGBA(ctx context.Context, ref string) (*image.NRGBA, error) {
	img, err := p.assets.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	return imaging.ToNRGBA(img), nil
}

// resolveAlpha resolves a reference and converts it to an alpha mask
// scaled to the canvas extent.
func (p *Pipeline) resolveAlpha(ctx context.Context, ref string, bounds image.Rectangle) (*image.Alpha, error) {
	img, err := p.resolveNRGBA(ctx, ref)
	if err != nil {
		return nil, err
	}
	if img.Bounds().Dx() != bounds.Dx() || img.Bounds().Dy() != bounds.Dy() {
		img = imaging.Scale(img, bounds.Dx(), bounds.Dy())
	}
	return imaging.ToAlphaMask(img), nil
}
