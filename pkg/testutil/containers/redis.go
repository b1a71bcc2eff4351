//go:build integration

package containers

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// RedisContainer wraps a testcontainers Redis instance used by the session store suites.
type RedisContainer struct {
	Container testcontainers.Container
	Addr      string
	Client    *redis.Client
}

// NewRedisContainer starts a new Redis container.
func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7.4-alpine")
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	fail := func(format string, args ...any) {
		_ = container.Terminate(ctx)
		t.Fatalf(format, args...)
	}

	url, err := container.ConnectionString(ctx)
	if err != nil {
		fail("redis connection string: %v", err)
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		fail("parse redis url %q: %v", url, err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		fail("ping redis: %v", err)
	}

	// Owned by the Manager for the whole run; no t.Cleanup.
	return &RedisContainer{Container: container, Addr: url, Client: client}
}

// TTL reports the remaining lifetime of key, failing the test if it has none.
func (r *RedisContainer) TTL(t *testing.T, key string) time.Duration {
	t.Helper()
	ttl, err := r.Client.TTL(context.Background(), key).Result()
	if err != nil {
		t.Fatalf("ttl %s: %v", key, err)
	}
	if ttl < 0 {
		t.Fatalf("key %s has no expiry (%v)", key, ttl)
	}
	return ttl
}

// FlushAll removes all keys so each test starts without leftover sessions.
func (r *RedisContainer) FlushAll(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}
