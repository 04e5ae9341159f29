package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"photo-retouch/internal/detect"
	"photo-retouch/internal/oplog"
)

// ErrCorruptSession reports session data that cannot be decoded. Storage
// layers treat it as recoverable: the record is reported absent rather
// than poisoning the whole store.
var ErrCorruptSession = errors.New("corrupt session data")

const formatVersion = 1

type persisted struct {
	Version    int                `json:"version"`
	ID         string             `json:"id"`
	Source     string             `json:"source"`
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Detections *detect.Detections `json:"detections,omitempty"`
	Operations json.RawMessage    `json:"operations"`
	Preview    string             `json:"preview,omitempty"`
	Created    time.Time          `json:"created_at"`
	Modified   time.Time          `json:"modified_at"`
}

// Encode serializes the session. Only the committed operation sequence is
// written; undo and redo history is session-local state and starts empty
// after a reload.
func (s *Session) Encode() ([]byte, error) {
	ops, err := oplog.EncodeOperations(s.Log.Operations())
	if err != nil {
		return nil, fmt.Errorf("encoding operations: %w", err)
	}
	data, err := json.Marshal(persisted{
		Version:    formatVersion,
		ID:         s.ID,
		Source:     s.SourceRef,
		Width:      s.Width,
		Height:     s.Height,
		Detections: s.Detections,
		Operations: ops,
		Preview:    s.PreviewRef,
		Created:    s.CreatedAt,
		Modified:   s.ModifiedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding session %s: %w", s.ID, err)
	}
	return data, nil
}

// Decode restores a session from its serialized form. Any structural
// defect, including an operation that fails re-validation, yields
// ErrCorruptSession.
func Decode(data []byte) (*Session, error) {
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	if p.Version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptSession, p.Version)
	}
	if p.ID == "" || p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("%w: missing id or image extent", ErrCorruptSession)
	}
	ops, err := oplog.DecodeOperations(p.Operations)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	s := &Session{
		ID:         p.ID,
		SourceRef:  p.Source,
		Width:      p.Width,
		Height:     p.Height,
		Detections: p.Detections,
		Log:        oplog.New(),
		PreviewRef: p.Preview,
		CreatedAt:  p.Created,
		ModifiedAt: p.Modified,
	}
	s.Log.Restore(ops)
	return s, nil
}
