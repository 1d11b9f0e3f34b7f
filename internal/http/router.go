package http

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gestaozabele/ouvidoria/internal/backend"
	"github.com/gestaozabele/ouvidoria/internal/config"
	httpmiddleware "github.com/gestaozabele/ouvidoria/internal/http/middleware"
	"github.com/gestaozabele/ouvidoria/internal/metrics"
	"github.com/gestaozabele/ouvidoria/internal/ouvidoria"
	"github.com/gestaozabele/ouvidoria/internal/session"
)

// Check é uma dependência verificada pelo /ready.
type Check func(ctx context.Context) error

// Deps reúne o que o portal precisa para montar as rotas.
type Deps struct {
	Config   *config.Config
	Backend  *backend.Client
	Sessions *session.Manager
	Metrics  *metrics.Collector
	Checks   map[string]Check
	// DebugTemplates recarrega os templates a cada requisição.
	DebugTemplates bool
}

// Handler concentra as páginas do portal.
type Handler struct {
	cfg           *config.Config
	api           *ouvidoria.API
	sessions      *session.Manager
	metrics       *metrics.Collector
	render        *Renderer
	workspaces    *workspaces
	checks        map[string]Check
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter

	ocorrencias  *crudPage[ouvidoria.Ocorrencia, int]
	funcionarios *crudPage[ouvidoria.Funcionario, string]
}

// NewRouter devolve o roteador do portal.
func NewRouter(deps Deps) (http.Handler, error) {
	if deps.Config == nil || deps.Backend == nil || deps.Sessions == nil {
		return nil, errors.New("router: config, backend e sessões são obrigatórios")
	}
	renderer, err := NewRenderer(deps.DebugTemplates)
	if err != nil {
		return nil, err
	}

	cfg := deps.Config
	api := ouvidoria.NewAPI(deps.Backend)
	h := &Handler{
		cfg:           cfg,
		api:           api,
		sessions:      deps.Sessions,
		metrics:       deps.Metrics,
		render:        renderer,
		workspaces:    newWorkspaces(api, cfg.WorkspaceTTL, deps.Metrics),
		checks:        deps.Checks,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging(deps.Metrics))
	r.Use(httpmiddleware.Recover(renderer.PanicPage))
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))
	r.Use(httpmiddleware.Session(deps.Sessions))
	r.Use(httpmiddleware.CSRF)

	r.NotFound(renderer.NotFound)

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/", h.Index)
		public.Get("/login", h.LoginPage)
		public.With(httpmiddleware.IPRateLimit(h.authLimiter)).Post("/login", h.Login)
		public.Post("/logout", h.Logout)
		public.Get("/cadastro", h.CadastroPage)
		public.With(httpmiddleware.IPRateLimit(h.authLimiter)).Post("/cadastro", h.Cadastro)
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.RequireLogin)
		private.Use(httpmiddleware.SessionRateLimit(h.publicLimiter))

		private.Group(func(morador chi.Router) {
			morador.Use(httpmiddleware.RequireMorador)
			morador.Get("/menu_morador", h.MenuMorador)
			morador.Get("/menu_morador/informacoes", h.Informacoes)
			morador.Post("/menu_morador/informacoes", h.SalvarInformacoes)
			morador.Get("/ocorrencias/{id}/avaliar", h.AvaliarForm)
			morador.Post("/ocorrencias/{id}/avaliar", h.Avaliar)
		})

		private.Group(func(fun chi.Router) {
			fun.Use(httpmiddleware.RequireFuncionario)
			fun.Get("/menu_funcionario", h.MenuFuncionario)
			h.mountFuncionario(fun)
			fun.Get("/funcionarios/{cpf}/foto", h.FotoFuncionario)
		})

		h.ocorrencias = h.ocorrenciasPage()
		h.ocorrencias.mount(private)
	})

	return r, nil
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthView{Status: "ok", Workspaces: h.workspaces.Len()})
}

// Ready verifica backend e store de sessões.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	failures := map[string]string{}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	if len(failures) > 0 {
		writeProblem(w, http.StatusServiceUnavailable, "UNAVAILABLE", "dependências indisponíveis", failures)
		return
	}

	writeJSON(w, http.StatusOK, readyView{Ready: true, Checks: names})
}
