package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript increments the counter and sets the window TTL only when the
// key is created, keeping increment and expiry atomic across replicas.
var incrScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// RedisStore implements Store on top of a shared Redis instance.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed counter store. Keys are namespaced
// with prefix to avoid collisions with other users of the same database.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) IncrementAndGet(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	res, err := incrScript.Run(ctx, s.client, []string{s.prefix + ":" + key}, window.Milliseconds()).Slice()
	if err != nil {
		return 0, 0, err
	}

	current, _ := res[0].(int64)
	ttlMillis, _ := res[1].(int64)
	return current, time.Duration(ttlMillis) * time.Millisecond, nil
}
