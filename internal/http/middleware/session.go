package middleware

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/ouvidoria/internal/auth"
	"github.com/gestaozabele/ouvidoria/internal/session"
)

// CSRFField é o campo oculto dos formulários autenticados.
const CSRFField = "csrf"

// Session resolve o cookie de sessão e injeta a identidade no contexto.
// Cookie inválido ou expirado é removido e a requisição segue como anônima.
func Session(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, err := sessions.Current(r)
			switch {
			case err == nil:
				r = r.WithContext(session.WithIdentity(r.Context(), ident))
				zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
					return c.Str("session", ident.SessionID)
				})
			case errors.Is(err, session.ErrNotFound) && !hasCookie(r):
			case errors.Is(err, session.ErrNotFound), errors.Is(err, auth.ErrInvalidToken):
				sessions.ClearCookie(w)
			default:
				log.Warn().Err(err).Msg("falha ao carregar sessão")
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasCookie(r *http.Request) bool {
	_, err := r.Cookie(session.CookieName)
	return err == nil
}

// RequireLogin redireciona visitantes para o login.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := session.FromContext(r.Context()); !ok {
			redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireFuncionario libera apenas funcionários; moradores voltam ao próprio menu.
func RequireFuncionario(next http.Handler) http.Handler {
	return requireRole(true, next)
}

// RequireMorador libera apenas moradores.
func RequireMorador(next http.Handler) http.Handler {
	return requireRole(false, next)
}

func requireRole(funcionario bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, ok := session.FromContext(r.Context())
		if !ok {
			redirectToLogin(w, r)
			return
		}
		if ident.IsFuncionario != funcionario {
			http.Redirect(w, r, HomeFor(ident), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HomeFor devolve o menu inicial da identidade.
func HomeFor(ident session.Identity) string {
	if ident.IsFuncionario {
		return "/menu_funcionario"
	}
	return "/menu_morador"
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := "/login"
	if r.Method == http.MethodGet {
		target += "?next=" + url.QueryEscape(r.URL.RequestURI())
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// CSRF exige o token da sessão nos envios de formulários autenticados.
func CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		ident, ok := session.FromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		token := r.Header.Get("X-CSRF-Token")
		if token == "" {
			token = r.FormValue(CSRFField)
		}
		if !auth.EqualTokens(ident.CSRF, token) {
			log.Warn().Str("session", ident.SessionID).Str("path", r.URL.Path).Msg("token csrf inválido")
			http.Error(w, "Sessão expirada. Recarregue a página e tente novamente.", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
