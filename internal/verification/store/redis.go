package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bioclock/internal/verification/models"
	id "bioclock/pkg/domain"
	"bioclock/pkg/platform/sentinel"
)

const (
	sessionKeyPrefix = "bioclock:session:"

	// DefaultRetention keeps sessions readable well after they expire.
	DefaultRetention = 24 * time.Hour
)

// Redis stores sessions as JSON values with a retention TTL. Retention is
// longer than the session TTL so an expired session still reads as expired.
type Redis struct {
	client    *redis.Client
	retention time.Duration
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithRetention sets how long Redis keeps a session key.
func WithRetention(d time.Duration) RedisOption {
	return func(r *Redis) {
		if d > 0 {
			r.retention = d
		}
	}
}

// RetentionFor returns the key retention for sessions that live for ttl: at
// least DefaultRetention, and never less than twice the ttl so a lapsed session
// is still found and reported as expired rather than missing.
func RetentionFor(ttl time.Duration) time.Duration {
	return max(DefaultRetention, 2*ttl)
}

// NewRedis constructs a Redis-backed session store.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{client: client, retention: DefaultRetention}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func sessionKey(sessionID id.SessionID) string {
	return sessionKeyPrefix + sessionID.String()
}

// Create uses SET NX so an existing session is never overwritten.
func (r *Redis) Create(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ok, err := r.client.SetNX(ctx, sessionKey(session.ID), payload, r.retention).Result()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if !ok {
		return sentinel.ErrConflict
	}
	return nil
}

func (r *Redis) FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	payload, err := r.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// Save overwrites the session and refreshes its retention.
func (r *Redis) Save(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(session.ID), payload, r.retention).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
