package otp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// deleteIfCode removes KEYS[1] only when its stored record carries ARGV[1].
var deleteIfCode = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if not v then
  return 0
end
local rec = cjson.decode(v)
if rec["code"] ~= ARGV[1] then
  return 0
end
return redis.call("DEL", KEYS[1])
`)

// RedisStore keeps records as JSON strings with a native Redis TTL, so
// every instance behind a load balancer sees the same pending codes.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Set(ctx context.Context, key string, rec Record, ttl time.Duration) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, b, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (Record, error) {
	val, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}

	var rec Record
	if err := json.Unmarshal(val, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) DeleteIfCode(ctx context.Context, key, code string) (bool, error) {
	n, err := deleteIfCode.Run(ctx, s.rdb, []string{key}, code).Int64()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
