package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Remote é a coleção remota que sincroniza um Store.
type Remote[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, payload any) (json.RawMessage, error)
	Update(ctx context.Context, key string, payload any) (json.RawMessage, error)
	Delete(ctx context.Context, key string) error
}

// Draft é o resultado de um formulário validado: o corpo enviado e o registro aplicado localmente.
type Draft[T any] struct {
	Payload any
	Local   T
}

// Schema parametriza o gerenciador para uma entidade.
type Schema[T any, K comparable] struct {
	Name     string
	Messages Messages
	Fields   []Field
	// KeyField é o nome da chave no JSON do backend.
	KeyField string
	Key      func(T) K
	// FormatKey e ParseKey convertem a chave para o caminho da URL.
	FormatKey func(K) string
	ParseKey  func(string) (K, error)
	Search    func(T) []string
	Less      func(a, b T) bool
	Normalize func(T) T
	// Draft pré-popula o formulário de edição.
	Draft func(T) *Form
	// Build valida o formulário e monta o payload. prev é nil no cadastro.
	Build func(form *Form, prev *T) (Draft[T], error)
}

// IntKey preenche FormatKey e ParseKey para chaves inteiras.
func IntKey[T any](s Schema[T, int]) Schema[T, int] {
	s.FormatKey = strconv.Itoa
	s.ParseKey = func(raw string) (int, error) {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return 0, fmt.Errorf("%w: %q", ErrUnknownRecord, raw)
		}
		return id, nil
	}
	return s
}

// StringKey preenche FormatKey e ParseKey para chaves textuais.
func StringKey[T any](s Schema[T, string]) Schema[T, string] {
	s.FormatKey = func(k string) string { return k }
	s.ParseKey = func(raw string) (string, error) {
		if raw == "" {
			return "", fmt.Errorf("%w: chave vazia", ErrUnknownRecord)
		}
		return raw, nil
	}
	return s
}

func (s Schema[T, K]) normalize(item T) T {
	if s.Normalize == nil {
		return item
	}
	return s.Normalize(item)
}

func (s Schema[T, K]) normalizeAll(items []T) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = s.normalize(item)
	}
	return out
}

func (s Schema[T, K]) formatKey(k K) string {
	if s.FormatKey != nil {
		return s.FormatKey(k)
	}
	return fmt.Sprint(k)
}
