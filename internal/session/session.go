// Package session composes an operation log with image metadata into an
// edit session: the unit the storage and rendering collaborators work
// with. A session is created once per imported photo and mutated only
// through its operation log; storage decides when it is archived or
// destroyed.
package session

import (
	"time"

	"github.com/google/uuid"

	"photo-retouch/internal/detect"
	"photo-retouch/internal/oplog"
	"photo-retouch/pkg/geometry"
)

// Session is one editable photo: source metadata, the detections cache
// handed over by the detection collaborator, and the edit history.
type Session struct {
	ID         string
	SourceRef  string
	Width      int
	Height     int
	Detections *detect.Detections
	Log        *oplog.Log
	PreviewRef string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// New creates a session for an imported photo.
func New(sourceRef string, width, height int) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:         uuid.NewString(),
		SourceRef:  sourceRef,
		Width:      width,
		Height:     height,
		Log:        oplog.New(),
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// SourceSize returns the full-resolution source extent.
func (s *Session) SourceSize() geometry.Size {
	return geometry.NewSize(float64(s.Width), float64(s.Height))
}

// Fit returns the aspect-fit placement of the source inside an
// interactive view of the given size. Edits authored against that view
// are converted to source space through this fit before entering the log.
func (s *Session) Fit(view geometry.Size) geometry.Fit {
	return geometry.AspectFit(s.SourceSize(), view)
}

// Touch updates the modification timestamp.
func (s *Session) Touch() {
	s.ModifiedAt = time.Now().UTC()
}
