package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaozabele/ouvidoria/internal/auth"
	"github.com/gestaozabele/ouvidoria/internal/backend"
	"github.com/gestaozabele/ouvidoria/internal/metrics"
	"github.com/gestaozabele/ouvidoria/internal/session"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

type stubAuth struct {
	result backend.LoginResult
}

func (s stubAuth) Login(context.Context, string, string) (backend.LoginResult, error) {
	return s.result, nil
}

func withIdentity(r *http.Request, ident session.Identity) *http.Request {
	return r.WithContext(session.WithIdentity(r.Context(), ident))
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://portal.gov.br", "*.prefeitura.gov.br"})(ok)

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://portal.gov.br", true},
		{"https://santos.prefeitura.gov.br", true},
		{"https://prefeitura.gov.br", false},
		{"https://outro.com", false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", tc.origin)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if tc.allowed {
				assert.Equal(t, tc.origin, rec.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://portal.gov.br")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimitByIP(t *testing.T) {
	h := IPRateLimit(NewRateLimiter(0.001, 2))(ok)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionRateLimitSkipsAnonymous(t *testing.T) {
	h := SessionRateLimit(NewRateLimiter(0.001, 1))(ok)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	ident := session.Identity{SessionID: "s1"}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), ident))
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), ident))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRequireRole(t *testing.T) {
	morador := session.Identity{SessionID: "m", CPF: "1"}
	funcionario := session.Identity{SessionID: "f", IsFuncionario: true}

	rec := httptest.NewRecorder()
	RequireFuncionario(ok).ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/menu_funcionario", nil), morador))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/menu_morador", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	RequireFuncionario(ok).ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/menu_funcionario", nil), funcionario))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	RequireMorador(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/menu_morador?x=1", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next="+url.QueryEscape("/menu_morador?x=1"), rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	RequireLogin(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ocorrencias/cadastrar", nil))
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestCSRF(t *testing.T) {
	ident := session.Identity{SessionID: "s1", CSRF: "token-certo"}
	h := CSRF(ok)

	tests := []struct {
		name   string
		req    *http.Request
		status int
	}{
		{"get livre", withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), ident), http.StatusOK},
		{"anônimo livre", httptest.NewRequest(http.MethodPost, "/login", nil), http.StatusOK},
		{"sem token", withIdentity(httptest.NewRequest(http.MethodPost, "/x", nil), ident), http.StatusForbidden},
		{"campo do formulário", withIdentity(formRequest(url.Values{CSRFField: {"token-certo"}}), ident), http.StatusOK},
		{"token errado", withIdentity(formRequest(url.Values{CSRFField: {"outro"}}), ident), http.StatusForbidden},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, tc.req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}

	req := withIdentity(httptest.NewRequest(http.MethodPost, "/x", nil), ident)
	req.Header.Set("X-CSRF-Token", "token-certo")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func formRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestSessionMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	sessions := session.NewManager(session.NewMemoryStore(), tokens,
		stubAuth{result: backend.LoginResult{CPF: "12345678901", Nome: "Ana", Email: "ana@exemplo.com"}}, false)
	token, _, err := sessions.Login(context.Background(), "ana@exemplo.com", "segredo")
	require.NoError(t, err)

	var seen session.Identity
	h := Session(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = session.FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "Ana", seen.Nome)

	seen = session.Identity{}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "lixo"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, seen.SessionID)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), session.CookieName+"=;")
}

func TestRecoverRendersPage(t *testing.T) {
	var code string
	page := func(w http.ResponseWriter, r *http.Request, c string) {
		code = c
		w.WriteHeader(http.StatusInternalServerError)
	}
	h := Recover(page)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, code)
}

func TestLoggingRecordsRoutePattern(t *testing.T) {
	collector := metrics.New()
	r := chi.NewRouter()
	r.Use(Logging(collector))
	r.Get("/ocorrencias/{id}/avaliar", ok)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ocorrencias/7/avaliar", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	families, err := collector.Registry().Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "route" && l.GetValue() == "/ocorrencias/{id}/avaliar" {
					found = true
				}
			}
		}
	}
	assert.True(t, found)
}

func TestLoggingIncludesSession(t *testing.T) {
	tokens := auth.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	sessions := session.NewManager(session.NewMemoryStore(), tokens,
		stubAuth{result: backend.LoginResult{CPF: "12345678901", Nome: "Ana", Email: "ana@exemplo.com"}}, false)
	token, ident, err := sessions.Login(context.Background(), "ana@exemplo.com", "segredo")
	require.NoError(t, err)

	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	r := chi.NewRouter()
	r.Use(Logging(metrics.New()))
	r.Use(Session(sessions))
	r.Get("/menu_morador", ok)

	req := httptest.NewRequest(http.MethodGet, "/menu_morador", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	r.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "http_request", entry["message"])
	assert.Equal(t, ident.SessionID, entry["session"])
}
