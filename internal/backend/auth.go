package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ErrInvalidCredentials indica email ou senha recusados pelo backend.
var ErrInvalidCredentials = errors.New("credenciais inválidas")

// LoginResult é a resposta de POST /auth/login.
type LoginResult struct {
	Tipo          string `json:"tipo"`
	IsFuncionario bool   `json:"isFuncionario"`
	CPF           string `json:"cpf"`
	Nome          string `json:"nome"`
	Email         string `json:"email"`
	OrgaoPub      *int   `json:"orgao_pub,omitempty"`
	Cargo         *int   `json:"cargo,omitempty"`
}

// Login autentica email e senha junto ao backend.
func (c *Client) Login(ctx context.Context, email, senha string) (LoginResult, error) {
	var result LoginResult
	payload := map[string]string{
		"email": strings.TrimSpace(email),
		"senha": senha,
	}

	body, err := c.Do(ctx, http.MethodPost, "/auth/login", payload)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return result, ErrInvalidCredentials
		}
		return result, err
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return result, &DecodeError{Path: "/auth/login", Err: err}
	}
	if strings.TrimSpace(result.CPF) == "" {
		return result, &DecodeError{Path: "/auth/login", Err: errors.New("cpf ausente")}
	}
	return result, nil
}
