package resource

import (
	"slices"
	"sync"
)

// Store mantém a lista ordenada de registros de um recurso.
// Cada escrita incrementa a versão, usada para invalidar visões filtradas.
type Store[T any, K comparable] struct {
	mu      sync.RWMutex
	key     func(T) K
	items   []T
	version uint64
}

// NewStore cria um store vazio indexado pela função key.
func NewStore[T any, K comparable](key func(T) K) *Store[T, K] {
	return &Store[T, K]{key: key, items: []T{}}
}

// Replace troca todo o conteúdo.
func (s *Store[T, K]) Replace(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(items)
	if s.items == nil {
		s.items = []T{}
	}
	s.version++
}

// Append adiciona um registro ao final.
func (s *Store[T, K]) Append(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
	s.version++
}

// Patch substitui o registro da chave mantendo sua posição.
func (s *Store[T, K]) Patch(key K, fn func(T) T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(key)
	if idx < 0 {
		return false
	}
	s.items[idx] = fn(s.items[idx])
	s.version++
	return true
}

// Remove apaga exatamente o registro da chave.
func (s *Store[T, K]) Remove(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(key)
	if idx < 0 {
		return false
	}
	s.items = slices.Delete(s.items, idx, idx+1)
	s.version++
	return true
}

// Find busca o registro da chave.
func (s *Store[T, K]) Find(key K) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexLocked(key)
	if idx < 0 {
		var zero T
		return zero, false
	}
	return s.items[idx], true
}

// Items devolve uma cópia da lista.
func (s *Store[T, K]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Len devolve a quantidade de registros.
func (s *Store[T, K]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Version devolve a versão atual.
func (s *Store[T, K]) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store[T, K]) indexLocked(key K) int {
	for i, item := range s.items {
		if s.key(item) == key {
			return i
		}
	}
	return -1
}
