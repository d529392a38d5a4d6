package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisKVStore struct {
	client *redis.Client
}

func NewRedisKVStore(client *redis.Client) KVStore {
	return &redisKVStore{client: client}
}

func (s *redisKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return val, err
}

func (s *redisKVStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisKVStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *redisKVStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	return n > 0, err
}

// incrScript bumps the counter and arms the TTL in one server-side step so
// concurrent increments on the same key cannot interleave.
var incrScript = redis.NewScript(`
local count = redis.call("INCRBY", KEYS[1], ARGV[1])
local ttl = tonumber(ARGV[2])
if ttl > 0 and redis.call("PTTL", KEYS[1]) < 0 then
  redis.call("PEXPIRE", KEYS[1], ttl)
end
return {count, redis.call("PTTL", KEYS[1])}
`)

func (s *redisKVStore) IncrBy(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, time.Time, error) {
	res, err := incrScript.Run(ctx, s.client, []string{key}, delta, ttl.Milliseconds()).Slice()
	if err != nil {
		return 0, time.Time{}, err
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected incr script reply: %v", res)
	}
	count, ok := res[0].(int64)
	if !ok {
		return 0, time.Time{}, fmt.Errorf("unexpected incr script count: %v", res[0])
	}
	var expiresAt time.Time
	if pttl, ok := res[1].(int64); ok && pttl > 0 {
		expiresAt = time.Now().Add(time.Duration(pttl) * time.Millisecond)
	}
	return count, expiresAt, nil
}
