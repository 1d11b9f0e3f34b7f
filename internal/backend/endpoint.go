package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// Endpoint expõe as operações REST de uma coleção com esquema fixo T.
type Endpoint[T any] struct {
	client *Client
	path   string
}

// NewEndpoint cria o endpoint para a coleção em path (ex.: "/cargos").
func NewEndpoint[T any](client *Client, path string) *Endpoint[T] {
	return &Endpoint[T]{client: client, path: "/" + strings.Trim(path, "/")}
}

// Path devolve o caminho base da coleção.
func (e *Endpoint[T]) Path() string {
	return e.path
}

// List busca a listagem completa.
func (e *Endpoint[T]) List(ctx context.Context) ([]T, error) {
	return e.ListAt(ctx)
}

// ListAt busca uma listagem em um sub-caminho, como /ocorrencias/cpf/{cpf}.
func (e *Endpoint[T]) ListAt(ctx context.Context, segments ...string) ([]T, error) {
	path := e.join(segments...)
	body, err := e.client.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := decodeJSON(body, &items); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Get busca um registro pela chave.
func (e *Endpoint[T]) Get(ctx context.Context, segments ...string) (T, error) {
	var item T
	path := e.join(segments...)
	body, err := e.client.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return item, err
	}
	if err := decodeJSON(body, &item); err != nil {
		return item, &DecodeError{Path: path, Err: err}
	}
	return item, nil
}

// Create envia POST e devolve o corpo bruto, que pode vir vazio.
func (e *Endpoint[T]) Create(ctx context.Context, payload any) (json.RawMessage, error) {
	body, err := e.client.Do(ctx, http.MethodPost, e.path, payload)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// Update envia PUT para a chave e devolve o corpo bruto.
func (e *Endpoint[T]) Update(ctx context.Context, key string, payload any) (json.RawMessage, error) {
	body, err := e.client.Do(ctx, http.MethodPut, e.join(key), payload)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// Delete remove o registro da chave.
func (e *Endpoint[T]) Delete(ctx context.Context, key string) error {
	_, err := e.client.Do(ctx, http.MethodDelete, e.join(key), nil)
	return err
}

func (e *Endpoint[T]) join(segments ...string) string {
	if len(segments) == 0 {
		return e.path
	}
	escaped := make([]string, 0, len(segments)+1)
	escaped = append(escaped, e.path)
	for _, seg := range segments {
		escaped = append(escaped, url.PathEscape(seg))
	}
	return strings.Join(escaped, "/")
}

func decodeJSON(body []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	return dec.Decode(out)
}

// Scoped restringe a listagem a um sub-caminho mantendo as demais operações da coleção.
type Scoped[T any] struct {
	*Endpoint[T]
	segments []string
}

// Scoped devolve uma visão do endpoint cuja listagem usa os segmentos informados.
func (e *Endpoint[T]) Scoped(segments ...string) *Scoped[T] {
	return &Scoped[T]{Endpoint: e, segments: segments}
}

// List busca a listagem restrita.
func (s *Scoped[T]) List(ctx context.Context) ([]T, error) {
	return s.ListAt(ctx, s.segments...)
}

// Single trata um recurso de registro único (ex.: /moradores/cpf/{cpf}) como listagem de um item.
type Single[T any] struct {
	*Endpoint[T]
	segments []string
}

// Single devolve a visão de registro único nos segmentos informados.
func (e *Endpoint[T]) Single(segments ...string) *Single[T] {
	return &Single[T]{Endpoint: e, segments: segments}
}

// List busca o registro e o devolve como lista de um elemento.
func (s *Single[T]) List(ctx context.Context) ([]T, error) {
	item, err := s.Get(ctx, s.segments...)
	if err != nil {
		return nil, err
	}
	return []T{item}, nil
}
