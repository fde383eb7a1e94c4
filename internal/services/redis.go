package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// WindowCounter counts hits against a key inside a fixed window.
type WindowCounter interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisAdapter wraps *redis.Client to satisfy WindowCounter.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

// INCR and set the expiry on the first hit in one round trip, so a crash
// between the two commands cannot leave a counter without a TTL.
var incrWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`)

func (r *RedisAdapter) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	seconds := int64(window.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	count, err := incrWindowScript.Run(ctx, r.client, []string{key}, seconds).Int64()
	if err != nil {
		return 0, fmt.Errorf("incrementing %s: %w", key, err)
	}
	return count, nil
}
