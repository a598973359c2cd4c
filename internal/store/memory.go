package store

import (
	"context"
	"sort"
	"sync"

	"github.com/venuepulse/sentiment-engine/internal/models"
)

// MemoryStore is the in-process MentionStore used when no database path
// is configured, and by tests.
type MemoryStore struct {
	mu       sync.RWMutex
	mentions map[string]models.Mention // keyed by SourceID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mentions: make(map[string]models.Mention)}
}

func (s *MemoryStore) Upsert(_ context.Context, mention models.Mention) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mentions[mention.SourceID] = mention
	return nil
}

func (s *MemoryStore) Query(_ context.Context, filter Filter) ([]models.Mention, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Mention, 0, len(s.mentions))
	for _, m := range s.mentions {
		if filter.matches(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].SourceID < out[j].SourceID
	})
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.mentions), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
