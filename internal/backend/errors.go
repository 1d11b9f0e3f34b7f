package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound casa com respostas 404 do backend via errors.Is.
var ErrNotFound = errors.New("registro não encontrado")

// APIError representa uma resposta de erro do backend.
type APIError struct {
	Status  int
	Method  string
	Path    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend: %s %s retornou status %d", e.Method, e.Path, e.Status)
}

// UserMessage devolve o texto enviado pelo backend, quando houver.
func (e *APIError) UserMessage() string {
	return e.Message
}

// Is permite errors.Is(err, ErrNotFound) para respostas 404.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// DecodeError indica resposta com formato inesperado.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("backend: resposta inesperada de %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// parseAPIError extrai `message` ou `detail` do corpo de erro.
func parseAPIError(method, path string, status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Method: method, Path: path}

	var payload struct {
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		apiErr.Message = msg
		return apiErr
	}
	apiErr.Message = detailMessage(payload.Detail)
	return apiErr
}

func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}

	// validação do FastAPI: lista de {loc, msg, type}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if msg := strings.TrimSpace(item.Msg); msg != "" {
				parts = append(parts, msg)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}
