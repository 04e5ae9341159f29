package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"photo-retouch/internal/session"
)

// MemoryStore keeps encoded sessions in memory. It round-trips through
// the same codec as the durable backend, so it exercises identical
// serialization behavior.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[string][]byte
	listings map[string]Summary
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:  make(map[string][]byte),
		listings: make(map[string]Summary),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, sess *session.Session) error {
	data, err := sess.Encode()
	if err != nil {
		return fmt.Errorf("saving session %s: %w", sess.ID, err)
	}
	m.mu.Lock()
	m.records[sess.ID] = data
	m.listings[sess.ID] = summarize(sess)
	m.mu.Unlock()
	return nil
}

// Load implements Store. A corrupt record reports ErrNotFound.
func (m *MemoryStore) Load(_ context.Context, id string) (*session.Session, error) {
	m.mu.RLock()
	data, ok := m.records[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	sess, err := session.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, id, err)
	}
	return sess, nil
}

// List implements Store, newest first.
func (m *MemoryStore) List(_ context.Context) ([]Summary, error) {
	m.mu.RLock()
	out := make([]Summary, 0, len(m.listings))
	for _, s := range m.listings {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].ModifiedAt.After(out[j].ModifiedAt)
	})
	return out, nil
}

// Delete implements Store. Deleting an absent id is a no-op.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.records, id)
	delete(m.listings, id)
	m.mu.Unlock()
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }
