package issue

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"lpa/pkg/platform/sentinel"
)

// InMemoryStore keeps issue records in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*Record)}
}

func (s *InMemoryStore) Insert(_ context.Context, record *Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *record
	stored.ID = uuid.NewString()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.records[stored.ID] = &stored
	record.ID = stored.ID
	record.CreatedAt = stored.CreatedAt
	return stored.ID, nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("issue %s: %w", id, sentinel.ErrNotFound)
	}
	copied := *record
	return &copied, nil
}

func (s *InMemoryStore) Update(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.ID]; !ok {
		return fmt.Errorf("issue %s: %w", record.ID, sentinel.ErrNotFound)
	}
	stored := *record
	s.records[record.ID] = &stored
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, q Query) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*Record
	for _, record := range s.records {
		if q.Matches(record) {
			copied := *record
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched, nil
}
