package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indica sessão inexistente ou expirada no store.
var ErrNotFound = errors.New("sessão não encontrada")

// Identity é quem está logado no portal.
type Identity struct {
	SessionID     string    `json:"-"`
	Email         string    `json:"email"`
	CPF           string    `json:"cpf"`
	Nome          string    `json:"nome"`
	Tipo          string    `json:"tipo"`
	IsFuncionario bool      `json:"is_funcionario"`
	OrgaoPub      *int      `json:"orgao_pub,omitempty"`
	Cargo         *int      `json:"cargo,omitempty"`
	CSRF          string    `json:"csrf"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store guarda as identidades por id de sessão.
type Store interface {
	Save(ctx context.Context, id string, ident Identity, ttl time.Duration) error
	Load(ctx context.Context, id string) (Identity, error)
	Delete(ctx context.Context, id string) error
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity anexa a identidade ao contexto da requisição.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// FromContext devolve a identidade logada, se houver.
func FromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(identityKey).(Identity)
	return ident, ok
}
