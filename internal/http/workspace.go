package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/gestaozabele/ouvidoria/internal/metrics"
	"github.com/gestaozabele/ouvidoria/internal/ouvidoria"
	"github.com/gestaozabele/ouvidoria/internal/resource"
	"github.com/gestaozabele/ouvidoria/internal/session"
)

// workspace é o estado de tela de uma sessão: listas carregadas, modais e mensagens.
// Requisições da mesma sessão são atendidas uma por vez.
type workspace struct {
	mu    sync.Mutex
	ident session.Identity

	cargos       *resource.Manager[ouvidoria.Cargo, int]
	orgaos       *resource.Manager[ouvidoria.OrgaoPublico, int]
	funcionarios *resource.Manager[ouvidoria.Funcionario, string]
	moradores    *resource.Manager[ouvidoria.Morador, string]
	perfil       *resource.Manager[ouvidoria.Morador, string]
	tipos        *resource.Manager[ouvidoria.TipoOcorrencia, int]
	ocorrencias  *resource.Manager[ouvidoria.Ocorrencia, int]
	servicos     *resource.Manager[ouvidoria.Servico, int]
	avaliacoes   *resource.Manager[ouvidoria.Avaliacao, int]
	evaluation   *ouvidoria.Evaluation
}

func newWorkspace(api *ouvidoria.API, ident session.Identity) *workspace {
	ws := &workspace{ident: ident}
	names := ouvidoria.Names{Orgao: ws.orgaoNome, Cargo: ws.cargoNome, Tipo: ws.tipoNome}

	ws.cargos = resource.NewManager(ouvidoria.CargoSchema(), api.Cargos)
	ws.orgaos = resource.NewManager(ouvidoria.OrgaoSchema(), api.Orgaos)
	ws.funcionarios = resource.NewManager(ouvidoria.FuncionarioSchema(names), api.Funcionarios)
	ws.moradores = resource.NewManager(ouvidoria.MoradorSchema(), api.Moradores)
	ws.perfil = resource.NewManager(ouvidoria.MoradorSchema(), api.Moradores.Single("cpf", ident.CPF))
	ws.tipos = resource.NewManager(ouvidoria.TipoSchema(), api.Tipos)
	ws.servicos = resource.NewManager(ouvidoria.ServicoSchema(names), api.Servicos)
	ws.avaliacoes = resource.NewManager(ouvidoria.AvaliacaoSchema(), api.Avaliacoes)
	if ident.IsFuncionario {
		ws.ocorrencias = resource.NewManager(ouvidoria.OcorrenciaSchema("", names), api.Ocorrencias)
	} else {
		ws.ocorrencias = resource.NewManager(ouvidoria.OcorrenciaSchema(ident.CPF, names), api.Ocorrencias.Scoped("cpf", ident.CPF))
	}
	ws.evaluation = ouvidoria.NewEvaluation(api.Avaliacoes, ident.CPF)
	return ws
}

func (ws *workspace) orgaoNome(cod int) (string, bool) {
	o, ok := ws.orgaos.Find(cod)
	return o.Nome, ok
}

func (ws *workspace) cargoNome(cod int) (string, bool) {
	c, ok := ws.cargos.Find(cod)
	return c.Nome, ok
}

func (ws *workspace) tipoNome(cod int) (string, bool) {
	t, ok := ws.tipos.Find(cod)
	return t.Nome, ok
}

// workspaces guarda os workspaces por sessão com expiração por inatividade.
type workspaces struct {
	api     *ouvidoria.API
	cache   *cache.Cache
	metrics *metrics.Collector
	mu      sync.Mutex
}

func newWorkspaces(api *ouvidoria.API, ttl time.Duration, collector *metrics.Collector) *workspaces {
	ws := &workspaces{api: api, cache: cache.New(ttl, ttl/2), metrics: collector}
	ws.cache.OnEvicted(func(string, interface{}) {
		collector.SetWorkspaces(ws.cache.ItemCount())
	})
	return ws
}

// For devolve o workspace da sessão, criando na primeira visita.
func (w *workspaces) For(ident session.Identity) *workspace {
	w.mu.Lock()
	defer w.mu.Unlock()
	if v, ok := w.cache.Get(ident.SessionID); ok {
		w.cache.Set(ident.SessionID, v, cache.DefaultExpiration)
		return v.(*workspace)
	}
	ws := newWorkspace(w.api, ident)
	w.cache.Set(ident.SessionID, ws, cache.DefaultExpiration)
	w.metrics.SetWorkspaces(w.cache.ItemCount())
	return ws
}

// Drop descarta o workspace no logout.
func (w *workspaces) Drop(sessionID string) {
	w.cache.Delete(sessionID)
}

// Len informa quantos workspaces estão ativos.
func (w *workspaces) Len() int {
	return w.cache.ItemCount()
}

// lockWorkspace trava e devolve o workspace da sessão da requisição.
func (h *Handler) lockWorkspace(r *http.Request) (*workspace, func(), bool) {
	ident, ok := session.FromContext(r.Context())
	if !ok {
		return nil, nil, false
	}
	ws := h.workspaces.For(ident)
	ws.mu.Lock()
	return ws, ws.mu.Unlock, true
}
