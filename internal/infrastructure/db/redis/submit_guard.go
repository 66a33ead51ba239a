package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// guardTTL bounds how long a crashed holder can keep a key locked.
const guardTTL = 30 * time.Second

// SubmitGuard marks in-flight submissions with short-lived keys.
// Key format: submit:<action>:<client_id>
type SubmitGuard struct {
	client *redis.Client
}

func NewSubmitGuard(client *redis.Client) *SubmitGuard {
	return &SubmitGuard{client: client}
}

// Acquire reports false when key is already held.
func (g *SubmitGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(key), "1", guardTTL).Result()
	if err != nil {
		return false, fmt.Errorf("submit guard acquire: %w", err)
	}
	return ok, nil
}

func (g *SubmitGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.key(key)).Err(); err != nil {
		return fmt.Errorf("submit guard release: %w", err)
	}
	return nil
}

func (g *SubmitGuard) key(key string) string {
	return "submit:" + key
}
