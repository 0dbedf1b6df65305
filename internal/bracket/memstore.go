package bracket

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/duelist/stockduel/internal/contracts"
)

// MemStore is an in-memory BracketStore. It backs tests and local
// runs without Postgres; round-tripping through JSON keeps stored
// brackets isolated from caller mutation the same way the database
// store does.
type MemStore struct {
	mu       sync.RWMutex
	brackets map[string]json.RawMessage
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{brackets: make(map[string]json.RawMessage)}
}

var _ contracts.BracketStore = (*MemStore)(nil)

// Save upserts a bracket
func (s *MemStore) Save(_ context.Context, b *contracts.Bracket) error {
	doc, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal bracket: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.brackets[b.ID] = doc
	return nil
}

// Load fetches one bracket by id
func (s *MemStore) Load(_ context.Context, id string) (*contracts.Bracket, error) {
	s.mu.RLock()
	doc, ok := s.brackets[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("bracket %s: %w", id, contracts.ErrNotFound)
	}
	return decodeBracket(doc)
}

// ListByUser returns a user's brackets, newest first
func (s *MemStore) ListByUser(_ context.Context, userID string) ([]*contracts.Bracket, error) {
	all, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	var out []*contracts.Bracket
	for _, b := range all {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// ListActive returns every bracket that still needs refreshing
func (s *MemStore) ListActive(_ context.Context) ([]*contracts.Bracket, error) {
	all, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	var out []*contracts.Bracket
	for _, b := range all {
		if b.Status != contracts.StatusCompleted {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	return out, nil
}

func (s *MemStore) snapshot() ([]*contracts.Bracket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*contracts.Bracket, 0, len(s.brackets))
	for _, doc := range s.brackets {
		b, err := decodeBracket(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
