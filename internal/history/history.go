package history

import (
	"context"
	"sync"
	"time"
)

// DefaultLimit bounds the history to the 10 most recent runs.
const DefaultLimit = 10

// Entry summarizes one completed extraction run.
type Entry struct {
	Filename    string    `json:"filename"`
	FieldCount  int       `json:"fieldCount"`
	FormTitle   string    `json:"formTitle,omitempty"`
	Provider    string    `json:"provider"`
	ExtractedAt time.Time `json:"extractedAt"`
}

// Store keeps a bounded, most-recent-first list of extraction summaries.
type Store interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context) ([]Entry, error)
}

// MemStore is the in-process history store.
type MemStore struct {
	mu      sync.Mutex
	limit   int
	entries []Entry // most recent first
}

func NewMemStore(limit int) *MemStore {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &MemStore{limit: limit}
}

func (s *MemStore) Append(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]Entry{e}, s.entries...)
	if len(s.entries) > s.limit {
		s.entries = s.entries[:s.limit]
	}
	return nil
}

func (s *MemStore) List(_ context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...), nil
}
