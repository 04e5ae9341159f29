package render

import (
	"context"
	"sync"

	"photo-retouch/internal/session"
	"photo-retouch/pkg/geometry"
)

// PreviewRequest asks the scheduler for one preview render. Deliver is
// called from the scheduler's worker goroutine, and only if the request
// is still the newest when its render finishes.
type PreviewRequest struct {
	Session *session.Session
	View    geometry.Size
	Deliver func(*Result, error)
}

// PreviewScheduler serializes preview renders with latest-wins
// semantics. Edits arrive faster than renders complete; a request
// submitted while another is in flight cancels it and replaces anything
// still queued, and a render that is stale by the time it finishes is
// discarded instead of delivered. The user never sees a preview older
// than the newest edit.
type PreviewScheduler struct {
	pipeline *Pipeline

	mu       sync.Mutex
	seq      uint64
	pending  *scheduled
	inFlight *scheduled
	busy     bool
	closed   bool
	idle     sync.WaitGroup
}

type scheduled struct {
	seq    uint64
	ctx    context.Context
	cancel context.CancelFunc
	req    PreviewRequest
}

// NewPreviewScheduler creates a scheduler rendering through the given
// pipeline.
func NewPreviewScheduler(pipeline *Pipeline) *PreviewScheduler {
	return &PreviewScheduler{pipeline: pipeline}
}

// Submit queues a preview request, replacing any not-yet-started one and
// cancelling the render currently in flight. Returns false if the
// scheduler is closed.
func (s *PreviewScheduler) Submit(ctx context.Context, req PreviewRequest) bool {
	renderCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return false
	}
	s.seq++
	if s.pending != nil {
		s.pending.cancel()
	}
	if s.inFlight != nil {
		s.inFlight.cancel()
	}
	s.pending = &scheduled{seq: s.seq, ctx: renderCtx, cancel: cancel, req: req}
	start := !s.busy
	if start {
		s.busy = true
		s.idle.Add(1)
	}
	s.mu.Unlock()

	if start {
		go s.run()
	}
	return true
}

// Close stops accepting requests, cancels any in-flight render and waits
// for the worker to drain.
func (s *PreviewScheduler) Close() {
	s.mu.Lock()
	s.closed = true
	if s.pending != nil {
		s.pending.cancel()
		s.pending = nil
	}
	if s.inFlight != nil {
		s.inFlight.cancel()
	}
	s.mu.Unlock()
	s.idle.Wait()
}

func (s *PreviewScheduler) run() {
	defer s.idle.Done()
	for {
		s.mu.Lock()
		next := s.pending
		s.pending = nil
		s.inFlight = next
		if next == nil {
			s.busy = false
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		res, err := s.pipeline.RenderPreview(next.ctx, next.req.Session, next.req.View)
		next.cancel()

		s.mu.Lock()
		s.inFlight = nil
		stale := s.seq != next.seq || s.closed
		s.mu.Unlock()
		if !stale && next.req.Deliver != nil {
			next.req.Deliver(res, err)
		}
	}
}
