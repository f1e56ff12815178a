package draft

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"lpa/internal/audit"
)

// InMemoryStore keeps drafts as raw JSON blobs, mirroring how a browser-local
// store would hold them: decoding happens on load, so corrupt payloads surface
// there and are absorbed.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttl     time.Duration

	// now is swappable for TTL tests.
	now func() time.Time
}

func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &InMemoryStore{
		entries: make(map[string][]byte),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *InMemoryStore) Save(_ context.Context, key Key, answers map[string]audit.Answer) error {
	payload, err := json.Marshal(Draft{Answers: answers, SavedAt: s.clock()()})
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key.String()] = payload
	return nil
}

func (s *InMemoryStore) Load(_ context.Context, key Key) (map[string]audit.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, ok := s.entries[key.String()]
	if !ok {
		return map[string]audit.Answer{}, nil
	}

	var stored Draft
	if err := json.Unmarshal(payload, &stored); err != nil {
		// Corrupt content is indistinguishable from "not found" to callers.
		delete(s.entries, key.String())
		return map[string]audit.Answer{}, nil
	}
	if s.clock()().Sub(stored.SavedAt) > s.ttl {
		delete(s.entries, key.String())
		return map[string]audit.Answer{}, nil
	}
	if stored.Answers == nil {
		stored.Answers = map[string]audit.Answer{}
	}
	return stored.Answers, nil
}

func (s *InMemoryStore) Clear(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key.String())
	return nil
}

// Corrupt overwrites a stored draft with an undecodable payload. Test hook.
func (s *InMemoryStore) Corrupt(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key.String()] = []byte("{not json")
}

// SetClock pins the store's notion of now. Test hook.
func (s *InMemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *InMemoryStore) clock() func() time.Time {
	if s.now == nil {
		return time.Now
	}
	return s.now
}
