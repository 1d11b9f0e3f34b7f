package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaozabele/ouvidoria/internal/auth"
	"github.com/gestaozabele/ouvidoria/internal/backend"
	"github.com/gestaozabele/ouvidoria/internal/config"
	"github.com/gestaozabele/ouvidoria/internal/export"
	httpmiddleware "github.com/gestaozabele/ouvidoria/internal/http/middleware"
	"github.com/gestaozabele/ouvidoria/internal/metrics"
	"github.com/gestaozabele/ouvidoria/internal/session"
)

const (
	moradorEmail     = "ana@exemplo.com"
	funcionarioEmail = "joao@prefeitura.gov.br"
	moradorCPF       = "12345678901"
)

type backendCall struct {
	Method string
	Path   string
	Body   map[string]any
}

// fakeBackend simula o backend REST da ouvidoria.
type fakeBackend struct {
	mu              sync.Mutex
	calls           []backendCall
	cargos          []map[string]any
	ocorrencias     []map[string]any
	avaliacao       map[string]any
	failOcorrencias bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		cargos: []map[string]any{{"cod_cargo": 1, "nome": "Analista", "descricao": "Atende o público"}},
		ocorrencias: []map[string]any{
			{
				"cod_oco": 7, "cod_tipo": 1, "cpf_morador": moradorCPF, "estado": "SP", "cidade": "Santos",
				"bairro": "Centro", "endereco": "Rua A, 10", "data": "2026-03-01", "tipo_status": "FINALIZADA",
				"cod_servico": 3,
			},
			{
				"cod_oco": 8, "cod_tipo": 1, "cpf_morador": moradorCPF, "estado": "SP", "cidade": "Santos",
				"bairro": "Centro", "endereco": "Rua B, 20", "data": "2026-03-02", "tipo_status": "EM ANALISE",
			},
		},
	}
}

func (f *fakeBackend) record(r *http.Request) map[string]any {
	call := backendCall{Method: r.Method, Path: r.URL.Path}
	if r.Body != nil {
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &call.Body)
		}
	}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	return call.Body
}

func (f *fakeBackend) callsTo(method, prefix string) []backendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []backendCall
	for _, c := range f.calls {
		if c.Method == method && strings.HasPrefix(c.Path, prefix) {
			out = append(out, c)
		}
	}
	return out
}

type bodyKey struct{}

func requestBody(r *http.Request) map[string]any {
	body, _ := r.Context().Value(bodyKey{}).(map[string]any)
	return body
}

func writeTestJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeBackend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := f.record(r)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), bodyKey{}, body)))
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		switch requestBody(r)["email"] {
		case moradorEmail:
			writeTestJSON(w, http.StatusOK, map[string]any{"tipo": "morador", "isFuncionario": false, "cpf": moradorCPF, "nome": "Ana", "email": moradorEmail})
		case funcionarioEmail:
			writeTestJSON(w, http.StatusOK, map[string]any{"tipo": "funcionario", "isFuncionario": true, "cpf": "98765432100", "nome": "João", "email": funcionarioEmail})
		default:
			writeTestJSON(w, http.StatusUnauthorized, map[string]string{"detail": "credenciais inválidas"})
		}
	})

	r.Get("/cargos", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeTestJSON(w, http.StatusOK, f.cargos)
	})
	r.Post("/cargos", func(w http.ResponseWriter, r *http.Request) {
		body := requestBody(r)
		f.mu.Lock()
		defer f.mu.Unlock()
		created := map[string]any{"cod_cargo": len(f.cargos) + 1, "nome": body["nome"], "descricao": body["descricao"]}
		f.cargos = append(f.cargos, created)
		writeTestJSON(w, http.StatusCreated, created)
	})

	r.Get("/tipos-ocorrencias", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, []map[string]any{{"cod_tipo": 1, "nome": "Iluminação"}})
	})
	listOcorrencias := func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failOcorrencias {
			writeTestJSON(w, http.StatusInternalServerError, map[string]string{})
			return
		}
		writeTestJSON(w, http.StatusOK, f.ocorrencias)
	}
	r.Get("/ocorrencias", listOcorrencias)
	r.Get("/ocorrencias/cpf/{cpf}", listOcorrencias)

	r.Get("/servicos", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, []map[string]any{{"cod_servico": 3, "cod_orgao": 1, "cod_ocorrencia": 7, "nome": "Troca de lâmpada"}})
	})
	r.Get("/moradores", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, []map[string]any{{"cpf": moradorCPF, "nome": "Ana"}})
	})
	r.Post("/moradores", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	r.Get("/avaliacoes", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, []map[string]any{{
			"cod_aval": 1, "cod_ocorrencia": 7, "cod_servico": 3, "cpf_morador": moradorCPF, "nota_serv": 9, "nota_tempo": 7,
		}})
	})
	r.Get("/avaliacoes/ocorrencia/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.avaliacao == nil {
			writeTestJSON(w, http.StatusNotFound, map[string]string{"detail": "Avaliação não encontrada"})
			return
		}
		writeTestJSON(w, http.StatusOK, f.avaliacao)
	})
	r.Post("/avaliacoes", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusCreated, map[string]any{"cod_aval": 42})
	})
	r.Put("/avaliacoes/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(chi.URLParam(r, "id"))
		writeTestJSON(w, http.StatusOK, map[string]any{"cod_aval": id})
	})
	return r
}

type testPortal struct {
	t        *testing.T
	srv      *httptest.Server
	backend  *fakeBackend
	sessions *session.Manager
	client   *http.Client
	csrf     string
}

func newTestPortal(t *testing.T) *testPortal {
	t.Helper()
	fb := newFakeBackend()
	bsrv := httptest.NewServer(fb.routes())
	t.Cleanup(bsrv.Close)

	client, err := backend.New(backend.Config{BaseURL: bsrv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	tokens := auth.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	sessions := session.NewManager(session.NewMemoryStore(), tokens, client, false)

	cfg := &config.Config{
		APIBaseURL:      bsrv.URL,
		WorkspaceTTL:    time.Minute,
		RateLimitPublic: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
		RateLimitAuth:   config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	}
	handler, err := NewRouter(Deps{
		Config:   cfg,
		Backend:  client,
		Sessions: sessions,
		Metrics:  metrics.New(),
		Checks:   map[string]Check{"backend": client.Ping},
	})
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testPortal{
		t:        t,
		srv:      srv,
		backend:  fb,
		sessions: sessions,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (p *testPortal) get(path string) (*http.Response, string) {
	p.t.Helper()
	resp, err := p.client.Get(p.srv.URL + path)
	require.NoError(p.t, err)
	return resp, readBody(p.t, resp)
}

func (p *testPortal) post(path string, form url.Values) (*http.Response, string) {
	p.t.Helper()
	resp, err := p.client.PostForm(p.srv.URL+path, form)
	require.NoError(p.t, err)
	return resp, readBody(p.t, resp)
}

// postCSRF envia o formulário com o token da sessão logada.
func (p *testPortal) postCSRF(path string, form url.Values) (*http.Response, string) {
	p.t.Helper()
	form.Set("csrf", p.csrf)
	return p.post(path, form)
}

func (p *testPortal) login(email string) session.Identity {
	p.t.Helper()
	resp, _ := p.post("/login", url.Values{"email": {email}, "senha": {"segredo"}})
	require.Equal(p.t, http.StatusSeeOther, resp.StatusCode)

	u, err := url.Parse(p.srv.URL)
	require.NoError(p.t, err)
	for _, c := range p.client.Jar.Cookies(u) {
		if c.Name != session.CookieName {
			continue
		}
		ident, err := p.sessions.Resolve(context.Background(), c.Value)
		require.NoError(p.t, err)
		p.csrf = ident.CSRF
		return ident
	}
	p.t.Fatal("cookie de sessão ausente")
	return session.Identity{}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

func TestLoginRedirectsByRole(t *testing.T) {
	p := newTestPortal(t)
	resp, _ := p.post("/login", url.Values{"email": {moradorEmail}, "senha": {"segredo"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/menu_morador", resp.Header.Get("Location"))

	p = newTestPortal(t)
	resp, _ = p.post("/login", url.Values{"email": {funcionarioEmail}, "senha": {"segredo"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/menu_funcionario", resp.Header.Get("Location"))
}

func TestLoginInvalidCredentials(t *testing.T) {
	p := newTestPortal(t)
	resp, body := p.post("/login", url.Values{"email": {"outro@exemplo.com"}, "senha": {"errada"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Email ou senha inválidos.")
	assert.Contains(t, body, `value="outro@exemplo.com"`)
}

func TestLoginHonoursNext(t *testing.T) {
	p := newTestPortal(t)
	resp, _ := p.post("/login", url.Values{"email": {moradorEmail}, "senha": {"x"}, "next": {"/ocorrencias/listar"}})
	assert.Equal(t, "/ocorrencias/listar", resp.Header.Get("Location"))

	p = newTestPortal(t)
	resp, _ = p.post("/login", url.Values{"email": {moradorEmail}, "senha": {"x"}, "next": {"//evil.example"}})
	assert.Equal(t, "/menu_morador", resp.Header.Get("Location"))
}

func TestCadastroWithoutKeySkipsListing(t *testing.T) {
	p := newTestPortal(t)
	values := url.Values{
		"cpf": {"987.654.321-00"}, "nome": {"Joana"}, "email": {"joana@exemplo.com"}, "endereco": {"Rua A, 10"},
		"data_nasc": {"1985-02-03"}, "senha": {"segredo"}, "estado": {"PE"}, "cidade": {"Recife"}, "bairro": {"Boa Vista"},
	}
	resp, _ := p.post("/cadastro", values)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?cadastro=ok", resp.Header.Get("Location"))
	require.Len(t, p.backend.callsTo(http.MethodPost, "/moradores"), 1)
	assert.Empty(t, p.backend.callsTo(http.MethodGet, "/moradores"))

	p = newTestPortal(t)
	values.Set("senha", "abc")
	resp, body := p.post("/cadastro", values)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "A senha deve ter pelo menos 6 caracteres.")
	assert.Empty(t, p.backend.callsTo(http.MethodPost, "/moradores"))
}

func TestPrivatePagesRequireLogin(t *testing.T) {
	p := newTestPortal(t)
	resp, _ := p.get("/menu_morador")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Fmenu_morador", resp.Header.Get("Location"))
}

func TestRoleGuards(t *testing.T) {
	p := newTestPortal(t)
	p.login(funcionarioEmail)

	resp, _ := p.get("/menu_morador")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/menu_funcionario", resp.Header.Get("Location"))

	resp, body := p.get("/menu_funcionario")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Olá, João")
}

func TestCargoCreateSendsNullDescricao(t *testing.T) {
	p := newTestPortal(t)
	p.login(funcionarioEmail)

	resp, _ := p.postCSRF("/menu_funcionario/cargos/create", url.Values{"nome": {"Fiscal"}, "descricao": {"   "}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/menu_funcionario/cargos", resp.Header.Get("Location"))

	posts := p.backend.callsTo(http.MethodPost, "/cargos")
	require.Len(t, posts, 1)
	descricao, present := posts[0].Body["descricao"]
	assert.True(t, present)
	assert.Nil(t, descricao)

	resp, body := p.get("/menu_funcionario/cargos")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Fiscal")
	assert.Contains(t, body, "—")
	assert.Contains(t, body, "Cargo cadastrado com sucesso.")
}

func TestCargoCreateValidationStaysLocal(t *testing.T) {
	p := newTestPortal(t)
	p.login(funcionarioEmail)

	resp, body := p.postCSRF("/menu_funcionario/cargos/create", url.Values{"nome": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Informe o nome do cargo.")
	assert.Empty(t, p.backend.callsTo(http.MethodPost, "/cargos"))
}

func TestCSRFRejected(t *testing.T) {
	p := newTestPortal(t)
	p.login(funcionarioEmail)

	resp, _ := p.post("/menu_funcionario/cargos/create", url.Values{"nome": {"Fiscal"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, p.backend.callsTo(http.MethodPost, "/cargos"))
}

func TestExportSpreadsheet(t *testing.T) {
	p := newTestPortal(t)
	p.login(funcionarioEmail)

	resp, body := p.get("/menu_funcionario/cargos/export.xlsx")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, export.ContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "cargos.xlsx")
	assert.True(t, strings.HasPrefix(body, "PK"))
}

func TestAvaliacoesJoinedListing(t *testing.T) {
	p := newTestPortal(t)
	p.login(funcionarioEmail)

	resp, body := p.get("/menu_funcionario/avaliacoes")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Troca de lâmpada")
	assert.Contains(t, body, "Ana")
}

func TestAvaliacoesBatchFailure(t *testing.T) {
	p := newTestPortal(t)
	p.backend.failOcorrencias = true
	p.login(funcionarioEmail)

	resp, body := p.get("/menu_funcionario/avaliacoes")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, msgAvaliacoes)
	assert.Contains(t, body, "Nenhuma avaliação registrada.")
	assert.NotContains(t, body, "Troca de lâmpada")
}

func TestMoradorSeesOwnOcorrencias(t *testing.T) {
	p := newTestPortal(t)
	p.login(moradorEmail)

	resp, body := p.get("/ocorrencias/listar")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Rua A, 10")
	assert.Contains(t, body, "/ocorrencias/7/avaliar")
	assert.NotContains(t, body, "/ocorrencias/8/avaliar")
	assert.Len(t, p.backend.callsTo(http.MethodGet, "/ocorrencias/cpf/"+moradorCPF), 1)
}

func TestEvaluationCreatesAfterNotFound(t *testing.T) {
	p := newTestPortal(t)
	p.login(moradorEmail)

	resp, body := p.get("/ocorrencias/7/avaliar")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Avaliar ocorrência #7")

	resp, _ = p.postCSRF("/ocorrencias/7/avaliar", url.Values{"nota_serv": {"9"}, "nota_tempo": {"8"}, "opiniao": {"Rápido"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/ocorrencias/listar", resp.Header.Get("Location"))

	posts := p.backend.callsTo(http.MethodPost, "/avaliacoes")
	require.Len(t, posts, 1)
	assert.Empty(t, p.backend.callsTo(http.MethodPut, "/avaliacoes"))
	assert.EqualValues(t, 3, posts[0].Body["cod_servico"])
	assert.EqualValues(t, 7, posts[0].Body["cod_ocorrencia"])
	assert.Equal(t, moradorCPF, posts[0].Body["cpf_morador"])
	assert.EqualValues(t, 9, posts[0].Body["nota_serv"])

	_, body = p.get("/ocorrencias/listar")
	assert.Contains(t, body, "Avaliação registrada com sucesso.")
	assert.NotContains(t, body, "Avaliar ocorrência #7")
}

func TestEvaluationEditsExisting(t *testing.T) {
	p := newTestPortal(t)
	p.backend.avaliacao = map[string]any{
		"cod_aval": 5, "cod_ocorrencia": 7, "cod_servico": 3, "cpf_morador": moradorCPF, "nota_serv": 6, "nota_tempo": 4,
	}
	p.login(moradorEmail)

	_, body := p.get("/ocorrencias/7/avaliar")
	assert.Contains(t, body, "Editar avaliação da ocorrência #7")
	assert.Contains(t, body, `value="6"`)

	resp, _ := p.postCSRF("/ocorrencias/7/avaliar", url.Values{"nota_serv": {"10"}, "nota_tempo": {"0"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Len(t, p.backend.callsTo(http.MethodPut, "/avaliacoes/5"), 1)
	assert.Empty(t, p.backend.callsTo(http.MethodPost, "/avaliacoes"))
}

func TestEvaluationRejectsNotaOutOfRange(t *testing.T) {
	p := newTestPortal(t)
	p.login(moradorEmail)

	_, _ = p.get("/ocorrencias/7/avaliar")
	resp, body := p.postCSRF("/ocorrencias/7/avaliar", url.Values{"nota_serv": {"11"}, "nota_tempo": {"5"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Informe uma nota do serviço entre 0 e 10.")
	assert.Empty(t, p.backend.callsTo(http.MethodPost, "/avaliacoes"))
}

func TestEvaluationRequiresFinalizada(t *testing.T) {
	p := newTestPortal(t)
	p.login(moradorEmail)

	resp, body := p.get("/ocorrencias/8/avaliar")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "Somente ocorrências finalizadas podem ser avaliadas.")
	assert.Empty(t, p.backend.callsTo(http.MethodGet, "/avaliacoes/ocorrencia"))
}

func TestFuncionarioOcorrenciasAreReadOnly(t *testing.T) {
	p := newTestPortal(t)
	p.login(funcionarioEmail)

	resp, body := p.get("/ocorrencias/listar")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "/avaliar")
	assert.NotContains(t, body, "?edit=")

	resp, _ = p.postCSRF("/ocorrencias/cadastrar", url.Values{"cod_tipo": {"1"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLogoutDropsSession(t *testing.T) {
	p := newTestPortal(t)
	p.login(moradorEmail)

	resp, _ := p.postCSRF("/logout", url.Values{})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = p.get("/menu_morador")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/login")
}

func TestNotFoundPage(t *testing.T) {
	p := newTestPortal(t)
	resp, body := p.get("/nao-existe")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Página não encontrada")
}

func TestHealthAndReady(t *testing.T) {
	p := newTestPortal(t)
	resp, body := p.get("/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"ok"`)

	resp, body = p.get("/ready")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"ready":true`)
}

func TestPanicPage(t *testing.T) {
	renderer, err := NewRenderer(false)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(httpmiddleware.Recover(renderer.PanicPage))
	r.Get("/quebra", func(http.ResponseWriter, *http.Request) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/quebra", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "abc123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Algo inesperado aconteceu")
	assert.Contains(t, body, "Tentar novamente")
	assert.Contains(t, body, "Código do erro")
	assert.Contains(t, body, "abc123")
}
