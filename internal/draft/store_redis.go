package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lpa/internal/audit"
)

// RedisStore is the production draft store: the TTL rides on the key itself
// via SET-with-expiry, so expired drafts vanish without a sweeper.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, key Key, answers map[string]audit.Answer) error {
	payload, err := json.Marshal(Draft{Answers: answers, SavedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if err := s.client.Set(ctx, key.String(), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, key Key) (map[string]audit.Answer, error) {
	payload, err := s.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return map[string]audit.Answer{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	var stored Draft
	if err := json.Unmarshal(payload, &stored); err != nil {
		// Corrupt content is evicted and reported as absent, never as an error.
		_ = s.client.Del(ctx, key.String()).Err()
		return map[string]audit.Answer{}, nil
	}
	if stored.Answers == nil {
		stored.Answers = map[string]audit.Answer{}
	}
	return stored.Answers, nil
}

func (s *RedisStore) Clear(ctx context.Context, key Key) error {
	if err := s.client.Del(ctx, key.String()).Err(); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}
