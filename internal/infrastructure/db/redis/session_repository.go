package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/core/ports"
	"github.com/speaky/gateway/internal/infrastructure/db"
)

// SessionRepository keeps one key per client holding its encoded session.
// Every save refreshes the key's TTL.
type SessionRepository struct {
	client *redis.Client
	codec  db.SessionCodec
	ttl    time.Duration
}

func NewSessionRepository(client *redis.Client, codec db.SessionCodec, ttl time.Duration) *SessionRepository {
	return &SessionRepository{client: client, codec: codec, ttl: ttl}
}

func (r *SessionRepository) Save(ctx context.Context, clientID string, user domain.User) error {
	blob, err := r.codec.Encode(clientID, user)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, ports.SessionKey(clientID), blob, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Load(ctx context.Context, clientID string) (domain.User, error) {
	blob, err := r.client.Get(ctx, ports.SessionKey(clientID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.User{}, domain.ErrSessionNotFound
		}
		return domain.User{}, fmt.Errorf("redis load session: %w", err)
	}
	return r.codec.Decode(clientID, blob)
}

func (r *SessionRepository) Delete(ctx context.Context, clientID string) error {
	if err := r.client.Del(ctx, ports.SessionKey(clientID)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}
