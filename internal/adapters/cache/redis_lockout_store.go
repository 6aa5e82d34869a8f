package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tillworks/pos/internal/ports"
)

// RedisLockoutStore tracks failed-login counters per login key. Counters
// expire after counterTTL of inactivity; once a key locks, its expiry is
// re-armed to the lock window so counter and lock lift together.
type RedisLockoutStore struct {
	client     *redis.Client
	counterTTL time.Duration
}

func NewRedisLockoutStore(client *redis.Client, counterTTL time.Duration) *RedisLockoutStore {
	return &RedisLockoutStore{client: client, counterTTL: counterTTL}
}

func lockoutKey(key string) string { return "pos:lockout:" + key }

func (s *RedisLockoutStore) Get(ctx context.Context, key string) (ports.LockoutState, error) {
	fields, err := s.client.HGetAll(ctx, lockoutKey(key)).Result()
	if err != nil {
		return ports.LockoutState{}, err
	}

	var state ports.LockoutState
	if n, convErr := strconv.Atoi(fields["failures"]); convErr == nil {
		state.FailedCount = n
	}
	if unix, convErr := strconv.ParseInt(fields["lock_until"], 10, 64); convErr == nil && unix > 0 {
		t := time.Unix(unix, 0).UTC()
		state.LockedUntil = &t
	}
	return state, nil
}

func (s *RedisLockoutStore) RecordFailure(ctx context.Context, key string, now time.Time, threshold int, lockoutWindow time.Duration) (ports.LockoutState, error) {
	redisKey := lockoutKey(key)

	failures, err := s.client.HIncrBy(ctx, redisKey, "failures", 1).Result()
	if err != nil {
		return ports.LockoutState{}, err
	}
	state := ports.LockoutState{FailedCount: int(failures)}

	if int(failures) < threshold {
		_ = s.client.Expire(ctx, redisKey, s.counterTTL).Err()
		return state, nil
	}

	lockedUntil := now.Add(lockoutWindow).UTC()
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, redisKey, "lock_until", lockedUntil.Unix())
		p.ExpireAt(ctx, redisKey, lockedUntil)
		return nil
	})
	if err != nil {
		return ports.LockoutState{}, err
	}
	state.LockedUntil = &lockedUntil
	return state, nil
}

func (s *RedisLockoutStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, lockoutKey(key)).Err()
}
