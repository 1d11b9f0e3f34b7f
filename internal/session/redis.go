package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "ouvidoria:session:"

// RedisStore guarda sessões como JSON com TTL no Redis.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore conecta no Redis a partir de uma URL redis://.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// NewRedisStoreWithClient usa um cliente já configurado.
func NewRedisStoreWithClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, id string, ident Identity, ttl time.Duration) error {
	data, err := json.Marshal(ident)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisPrefix+id, data, ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, id string) (Identity, error) {
	data, err := s.client.Get(ctx, redisPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Identity{}, ErrNotFound
		}
		return Identity{}, err
	}
	var ident Identity
	if err := json.Unmarshal(data, &ident); err != nil {
		return Identity{}, fmt.Errorf("sessão corrompida: %w", err)
	}
	ident.SessionID = id
	return ident, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, redisPrefix+id).Err()
}

// Ping verifica a conexão para o readiness.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close encerra a conexão.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
