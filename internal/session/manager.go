package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/ouvidoria/internal/auth"
	"github.com/gestaozabele/ouvidoria/internal/backend"
	"github.com/gestaozabele/ouvidoria/internal/resource"
	"github.com/gestaozabele/ouvidoria/internal/util"
)

// CookieName é o cookie que carrega o token de sessão.
const CookieName = "ouvidoria_session"

const (
	msgInvalidCredentials = "Email ou senha inválidos."
	msgLoginFailed        = "Não foi possível entrar. Tente novamente."
)

// Authenticator confere credenciais no backend.
type Authenticator interface {
	Login(ctx context.Context, email, senha string) (backend.LoginResult, error)
}

// Manager cria, resolve e encerra sessões.
type Manager struct {
	store  Store
	tokens *auth.TokenManager
	authn  Authenticator
	secure bool
	now    func() time.Time
}

// NewManager monta o gerenciador de sessões.
func NewManager(store Store, tokens *auth.TokenManager, authn Authenticator, secureCookies bool) *Manager {
	return &Manager{store: store, tokens: tokens, authn: authn, secure: secureCookies, now: time.Now}
}

// Login valida as credenciais no backend e cria a sessão. Devolve o token assinado.
func (m *Manager) Login(ctx context.Context, email, senha string) (string, Identity, error) {
	email = strings.TrimSpace(email)
	if err := util.ValidateEmail(email); err != nil {
		return "", Identity{}, resource.Invalid("email", "Informe um email válido.")
	}
	if senha == "" {
		return "", Identity{}, resource.Invalid("senha", "Informe a senha.")
	}

	res, err := m.authn.Login(ctx, email, senha)
	if err != nil {
		if errors.Is(err, backend.ErrInvalidCredentials) {
			return "", Identity{}, resource.Invalid("senha", msgInvalidCredentials)
		}
		return "", Identity{}, err
	}

	csrf, err := auth.GenerateCSRFToken()
	if err != nil {
		return "", Identity{}, err
	}
	ident := Identity{
		SessionID:     util.NewID(),
		Email:         strings.TrimSpace(res.Email),
		CPF:           util.OnlyDigits(res.CPF),
		Nome:          strings.TrimSpace(res.Nome),
		Tipo:          res.Tipo,
		IsFuncionario: res.IsFuncionario,
		OrgaoPub:      res.OrgaoPub,
		Cargo:         res.Cargo,
		CSRF:          csrf,
		CreatedAt:     m.now().UTC(),
	}
	if ident.Email == "" {
		ident.Email = email
	}

	if err := m.store.Save(ctx, ident.SessionID, ident, m.tokens.TTL()); err != nil {
		return "", Identity{}, fmt.Errorf("salvar sessão: %w", err)
	}
	token, err := m.tokens.Sign(ident.SessionID, ident.IsFuncionario)
	if err != nil {
		return "", Identity{}, err
	}

	log.Info().Str("session", ident.SessionID).Bool("funcionario", ident.IsFuncionario).Msg("login realizado")
	return token, ident, nil
}

// LoginMessage traduz a falha de login para o usuário.
func LoginMessage(err error) string {
	return resource.Message(err, msgLoginFailed)
}

// Resolve devolve a identidade do token.
func (m *Manager) Resolve(ctx context.Context, token string) (Identity, error) {
	claims, err := m.tokens.Parse(token)
	if err != nil {
		return Identity{}, err
	}
	return m.store.Load(ctx, claims.Subject)
}

// Current lê o cookie da requisição e resolve a identidade.
func (m *Manager) Current(r *http.Request) (Identity, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Identity{}, ErrNotFound
	}
	return m.Resolve(r.Context(), cookie.Value)
}

// Logout apaga a sessão do token. Token inválido não é erro.
func (m *Manager) Logout(ctx context.Context, token string) error {
	claims, err := m.tokens.Parse(token)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, claims.Subject)
}

// SetCookie grava o token no navegador.
func (m *Manager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  m.now().Add(m.tokens.TTL()),
		MaxAge:   int(m.tokens.TTL().Seconds()),
	})
}

// ClearCookie remove o cookie de sessão.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
