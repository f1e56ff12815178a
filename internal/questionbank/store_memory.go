package questionbank

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"lpa/pkg/platform/sentinel"
)

// InMemoryStore keeps the question bank in process memory. Used in tests and
// when no database is configured.
type InMemoryStore struct {
	mu            sync.RWMutex
	subcategories map[string]Subcategory
	questions     map[string][]Question // subcategoryID -> questions
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		subcategories: make(map[string]Subcategory),
		questions:     make(map[string][]Question),
	}
}

// AddSubcategory registers a subcategory; mostly a seeding helper.
func (s *InMemoryStore) AddSubcategory(sub Subcategory) Subcategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.Order == 0 {
		sub.Order = len(s.subcategories) + 1
	}
	s.subcategories[sub.ID] = sub
	return sub
}

func (s *InMemoryStore) ListSubcategories(_ context.Context) ([]Subcategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subs := make([]Subcategory, 0, len(s.subcategories))
	for _, sub := range s.subcategories {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Order < subs[j].Order })
	return subs, nil
}

func (s *InMemoryStore) GetSubcategory(_ context.Context, id string) (Subcategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subcategories[id]
	if !ok {
		return Subcategory{}, fmt.Errorf("subcategory %s: %w", id, sentinel.ErrNotFound)
	}
	return sub, nil
}

func (s *InMemoryStore) ListQuestions(_ context.Context, subcategoryID string) ([]Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.subcategories[subcategoryID]; !ok {
		return nil, fmt.Errorf("subcategory %s: %w", subcategoryID, sentinel.ErrNotFound)
	}
	questions := append([]Question{}, s.questions[subcategoryID]...)
	sort.Slice(questions, func(i, j int) bool { return questions[i].Order < questions[j].Order })
	return questions, nil
}

func (s *InMemoryStore) AddQuestion(_ context.Context, subcategoryID string, q Question) (Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subcategories[subcategoryID]; !ok {
		return Question{}, fmt.Errorf("subcategory %s: %w", subcategoryID, sentinel.ErrNotFound)
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.Order == 0 {
		q.Order = len(s.questions[subcategoryID]) + 1
	}
	s.questions[subcategoryID] = append(s.questions[subcategoryID], q)
	return q, nil
}

func (s *InMemoryStore) SwapOrder(_ context.Context, subcategoryID, questionIDA, questionIDB string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	questions := s.questions[subcategoryID]
	idxA, idxB := -1, -1
	for i, q := range questions {
		switch q.ID {
		case questionIDA:
			idxA = i
		case questionIDB:
			idxB = i
		}
	}
	if idxA < 0 || idxB < 0 {
		return fmt.Errorf("question pair (%s, %s): %w", questionIDA, questionIDB, sentinel.ErrNotFound)
	}
	questions[idxA].Order, questions[idxB].Order = questions[idxB].Order, questions[idxA].Order
	return nil
}
