package session

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore guarda sessões em memória; usado sem REDIS_URL e nos testes.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: cache.New(time.Hour, 10*time.Minute)}
}

func (s *MemoryStore) Save(_ context.Context, id string, ident Identity, ttl time.Duration) error {
	s.cache.Set(id, ident, ttl)
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (Identity, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return Identity{}, ErrNotFound
	}
	ident := v.(Identity)
	ident.SessionID = id
	return ident, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}
