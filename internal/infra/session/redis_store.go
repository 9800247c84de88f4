// Package session stores admin sessions and the shared admin credential outside Postgres.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xavierca1/nesthome-leads/internal/entity"
)

const namespace = "admin_session"

// RedisStore lets Redis expire sessions on their own.
type RedisStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Save(ctx context.Context, session *entity.Session) error {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.client.Set(ctx, namespace+":"+session.Token, raw, ttl).Err()
}

// Find returns nil and no error for an unknown token.
func (s *RedisStore) Find(ctx context.Context, token string) (*entity.Session, error) {
	raw, err := s.client.Get(ctx, namespace+":"+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session entity.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, namespace+":"+token).Err()
}
