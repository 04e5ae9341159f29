package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"photo-retouch/internal/session"
)

// SQLiteStore persists sessions in a single SQLite database file.
type SQLiteStore struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// NewSQLiteStore opens or creates the database at path. An empty path
// selects an in-memory database.
func NewSQLiteStore(path string, log logrus.FieldLogger) (*SQLiteStore, error) {
	if path == "" {
		path = ":memory:"
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}

	s := &SQLiteStore{db: db, log: log}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			op_count INTEGER NOT NULL,
			modified_at DATETIME NOT NULL,
			data BLOB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating sessions table: %w", err)
	}
	_, err = s.db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_sessions_modified ON sessions(modified_at)")
	if err != nil {
		return fmt.Errorf("creating index: %w", err)
	}
	return nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, sess *session.Session) error {
	data, err := sess.Encode()
	if err != nil {
		return fmt.Errorf("saving session %s: %w", sess.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions (id, source, width, height, op_count, modified_at, data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sess.ID, sess.SourceRef, sess.Width, sess.Height, sess.Log.Len(), sess.ModifiedAt, data)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", sess.ID, err)
	}
	return nil
}

// Load implements Store. A corrupt payload reports ErrNotFound; the raw
// record stays in place for offline recovery.
func (s *SQLiteStore) Load(ctx context.Context, id string) (*session.Session, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM sessions WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}

	sess, err := session.Decode(data)
	if err != nil {
		s.log.WithField("session", id).Warnf("stored session is corrupt: %v", err)
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, id, err)
	}
	return sess, nil
}

// List implements Store, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, width, height, op_count, modified_at
		FROM sessions ORDER BY modified_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.ID, &sm.SourceRef, &sm.Width, &sm.Height,
			&sm.Operations, &sm.ModifiedAt); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		out = append(out, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return out, nil
}

// Delete implements Store. Deleting an absent id is a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
