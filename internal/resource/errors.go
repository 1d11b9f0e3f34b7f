package resource

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrBusy indica que já existe uma gravação em andamento.
	ErrBusy = errors.New("operação em andamento")
	// ErrIncompleteResponse indica criação sem chave na resposta e sem recarga possível.
	ErrIncompleteResponse = errors.New("resposta de criação incompleta")
	// ErrUnknownField indica campo fora do formulário declarado.
	ErrUnknownField = errors.New("campo desconhecido")
	// ErrUnknownRecord indica chave ausente do store.
	ErrUnknownRecord = errors.New("registro não encontrado na lista")
	// ErrNoTarget indica confirmação de exclusão sem registro selecionado.
	ErrNoTarget = errors.New("nenhum registro selecionado")
	// ErrReadOnly indica recurso sem formulário de cadastro.
	ErrReadOnly = errors.New("recurso somente leitura")
)

// ValidationError é uma falha de validação local; nenhuma chamada remota é feita.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UserMessage devolve a mensagem exibida ao usuário.
func (e *ValidationError) UserMessage() string {
	return e.Message
}

// Invalid cria um ValidationError.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

type userMessager interface {
	UserMessage() string
}

// Message traduz um erro para o texto exibido.
// Cancelamentos são silenciosos; erros com mensagem própria a usam; o resto cai no fallback.
func Message(err error, fallback string) string {
	if err == nil || IsCancelled(err) {
		return ""
	}
	var um userMessager
	if errors.As(err, &um) {
		if msg := strings.TrimSpace(um.UserMessage()); msg != "" {
			return msg
		}
	}
	return fallback
}

// IsCancelled informa se o erro decorre do cancelamento do contexto.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
