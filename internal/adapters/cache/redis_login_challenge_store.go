package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tillworks/pos/internal/ports"
)

// RedisLoginChallengeStore persists pending two-factor logins with TTL.
type RedisLoginChallengeStore struct {
	client *redis.Client
}

// NewRedisLoginChallengeStore creates the challenge store adapter.
func NewRedisLoginChallengeStore(client *redis.Client) *RedisLoginChallengeStore {
	return &RedisLoginChallengeStore{client: client}
}

func (s *RedisLoginChallengeStore) Put(ctx context.Context, token string, challenge ports.LoginChallenge, ttl time.Duration) error {
	raw, err := json.Marshal(challenge)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, "pos:challenge:"+token, raw, ttl).Err()
}

func (s *RedisLoginChallengeStore) Get(ctx context.Context, token string) (*ports.LoginChallenge, error) {
	raw, err := s.client.Get(ctx, "pos:challenge:"+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var out ports.LoginChallenge
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RedisLoginChallengeStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, "pos:challenge:"+token).Err()
}
