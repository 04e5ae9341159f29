// Package store persists sessions. Two backends share one interface: an
// in-memory store for tests and ephemeral use, and a SQLite store for
// durable session libraries. Both serialize through the session codec,
// so a record that fails to decode is reported absent rather than
// breaking the caller; editing history is precious but never worth a
// crash loop.
package store

import (
	"context"
	"errors"
	"time"

	"photo-retouch/internal/session"
)

// ErrNotFound reports a session id with no loadable record, including
// records whose payload is corrupt.
var ErrNotFound = errors.New("session not found")

// Summary is the listing row for one stored session.
type Summary struct {
	ID         string    `json:"id"`
	SourceRef  string    `json:"source"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Operations int       `json:"operations"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Store is the session persistence interface.
type Store interface {
	Save(ctx context.Context, sess *session.Session) error
	Load(ctx context.Context, id string) (*session.Session, error)
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

func summarize(sess *session.Session) Summary {
	return Summary{
		ID:         sess.ID,
		SourceRef:  sess.SourceRef,
		Width:      sess.Width,
		Height:     sess.Height,
		Operations: sess.Log.Len(),
		ModifiedAt: sess.ModifiedAt,
	}
}
