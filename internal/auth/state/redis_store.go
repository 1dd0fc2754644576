package state

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed login attempt store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "oauth_state:",
	}
}

func (r *RedisStore) key(state string) string {
	return r.prefix + state
}

func (r *RedisStore) Save(ctx context.Context, state, codeVerifier string) error {
	if state == "" || codeVerifier == "" {
		return fmt.Errorf("state: missing state or verifier")
	}
	return r.client.Set(ctx, r.key(state), codeVerifier, TTL).Err()
}

func (r *RedisStore) Consume(ctx context.Context, state string) (string, error) {
	if state == "" {
		return "", ErrNotFound
	}

	verifier, err := r.client.GetDel(ctx, r.key(state)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return verifier, nil
}
