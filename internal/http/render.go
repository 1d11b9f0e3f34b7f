package http

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/flosch/pongo2/v6"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	httpmiddleware "github.com/gestaozabele/ouvidoria/internal/http/middleware"
	"github.com/gestaozabele/ouvidoria/internal/session"
)

//go:embed templates
var templatesFS embed.FS

// Renderer desenha as páginas a partir dos templates embutidos.
type Renderer struct {
	set *pongo2.TemplateSet
}

// NewRenderer carrega os templates. debug desliga o cache de templates.
func NewRenderer(debug bool) (*Renderer, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	loader, err := pongo2.NewHttpFileSystemLoader(http.FS(sub), "")
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	set := pongo2.NewSet("portal", loader)
	set.Debug = debug
	set.Globals = pongo2.Context{"placeholder": "—"}
	return &Renderer{set: set}, nil
}

// Render executa o template com os dados da página e a identidade da requisição.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, data pongo2.Context) {
	tpl, err := rd.set.FromCache(name)
	if err != nil {
		log.Error().Err(err).Str("template", name).Msg("template inválido")
		http.Error(w, "erro interno", http.StatusInternalServerError)
		return
	}

	ctx := pongo2.Context{"path": r.URL.Path}
	if ident, ok := session.FromContext(r.Context()); ok {
		ctx["user"] = ident
		ctx["csrf"] = ident.CSRF
		ctx["home"] = httpmiddleware.HomeFor(ident)
	}
	ctx = ctx.Update(data)

	body, err := tpl.ExecuteBytes(ctx)
	if err != nil {
		log.Error().Err(err).Str("template", name).Msg("falha ao desenhar página")
		http.Error(w, "erro interno", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// PanicPage é a tela de último recurso exibida quando algo quebra.
func (rd *Renderer) PanicPage(w http.ResponseWriter, r *http.Request, code string) {
	rd.Render(w, r, http.StatusInternalServerError, "error.html", pongo2.Context{
		"code":  code,
		"retry": r.URL.RequestURI(),
	})
}

// NotFound desenha a página 404.
func (rd *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rd.Render(w, r, http.StatusNotFound, "not_found.html", pongo2.Context{
		"request_id": middleware.GetReqID(r.Context()),
	})
}
