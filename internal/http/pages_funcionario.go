package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/flosch/pongo2/v6"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/ouvidoria/internal/export"
	"github.com/gestaozabele/ouvidoria/internal/ouvidoria"
	"github.com/gestaozabele/ouvidoria/internal/resource"
)

const (
	menuFuncionario = "/menu_funcionario"
	msgAvaliacoes   = "Não foi possível carregar as avaliações."
)

// MenuFuncionario é o painel inicial do funcionário.
func (h *Handler) MenuFuncionario(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "menu_funcionario.html", nil)
}

func (h *Handler) mountFuncionario(r chi.Router) {
	cargos := &crudPage[ouvidoria.Cargo, int]{
		h:        h,
		title:    "Cargos",
		singular: "cargo",
		empty:    "Nenhum cargo cadastrado.",
		columns:  ouvidoria.CargoColumns,
		manager:  func(ws *workspace) *resource.Manager[ouvidoria.Cargo, int] { return ws.cargos },
	}
	withPaths(&cargos.listPath, &cargos.createPath, &cargos.itemBase, &cargos.back, "cargos")
	cargos.mount(r)

	orgaos := &crudPage[ouvidoria.OrgaoPublico, int]{
		h:        h,
		title:    "Órgãos públicos",
		singular: "órgão público",
		empty:    "Nenhum órgão público cadastrado.",
		columns:  ouvidoria.OrgaoColumns,
		manager:  func(ws *workspace) *resource.Manager[ouvidoria.OrgaoPublico, int] { return ws.orgaos },
	}
	withPaths(&orgaos.listPath, &orgaos.createPath, &orgaos.itemBase, &orgaos.back, "orgaos_publicos")
	orgaos.mount(r)

	funcionarios := &crudPage[ouvidoria.Funcionario, string]{
		h:        h,
		title:    "Funcionários",
		singular: "funcionário",
		empty:    "Nenhum funcionário cadastrado.",
		columns:  ouvidoria.FuncionarioColumns,
		manager:  func(ws *workspace) *resource.Manager[ouvidoria.Funcionario, string] { return ws.funcionarios },
		lookups: func(ws *workspace) []resource.Loader {
			return []resource.Loader{ws.orgaos, ws.cargos}
		},
		options: func(ws *workspace) options {
			return options{"orgaos": orgaoOptions(ws), "cargos": cargoOptions(ws)}
		},
		actions: func(_ *workspace, f ouvidoria.Funcionario) []actionView {
			if f.Foto == nil {
				return nil
			}
			return []actionView{{Label: "Foto", Href: "/funcionarios/" + url.PathEscape(f.CPF) + "/foto"}}
		},
	}
	withPaths(&funcionarios.listPath, &funcionarios.createPath, &funcionarios.itemBase, &funcionarios.back, "funcionarios")
	funcionarios.mount(r)
	h.funcionarios = funcionarios

	servicos := &crudPage[ouvidoria.Servico, int]{
		h:        h,
		title:    "Serviços",
		singular: "serviço",
		empty:    "Nenhum serviço cadastrado.",
		columns:  ouvidoria.ServicoColumns,
		manager:  func(ws *workspace) *resource.Manager[ouvidoria.Servico, int] { return ws.servicos },
		lookups: func(ws *workspace) []resource.Loader {
			return []resource.Loader{ws.orgaos, ws.ocorrencias}
		},
		options: func(ws *workspace) options {
			return options{"orgaos": orgaoOptions(ws), "ocorrencias": ocorrenciaOptions(ws)}
		},
	}
	withPaths(&servicos.listPath, &servicos.createPath, &servicos.itemBase, &servicos.back, "servicos")
	servicos.mount(r)

	r.Get(menuFuncionario+"/avaliacoes", h.Avaliacoes)
	r.Get(menuFuncionario+"/avaliacoes/export.xlsx", h.ExportAvaliacoes)
}

func withPaths(list, create, item, back *string, segment string) {
	*list = menuFuncionario + "/" + segment
	*create = *list + "/create"
	*item = *list
	*back = menuFuncionario
}

// loadAvaliacoes faz a carga conjunta das quatro listagens; qualquer falha invalida o lote.
func (h *Handler) loadAvaliacoes(r *http.Request, ws *workspace) ([]ouvidoria.AvaliacaoDisplay, error) {
	err := resource.LoadAll(r.Context(), ws.avaliacoes, ws.servicos, ws.ocorrencias, ws.moradores)
	if err != nil {
		return nil, err
	}
	rows := ouvidoria.BuildAvaliacaoDisplay(ws.avaliacoes.Items(), ws.servicos.Items(), ws.ocorrencias.Items(), ws.moradores.Items())
	return resource.Filter(rows, r.URL.Query().Get("q"), func(a ouvidoria.AvaliacaoDisplay) []string {
		return []string{a.ServicoNome, a.MoradorNome, a.OrgaoNome, ouvidoria.Text(a.Opiniao)}
	}), nil
}

// Avaliacoes lista as avaliações unidas a serviço, ocorrência e morador.
func (h *Handler) Avaliacoes(w http.ResponseWriter, r *http.Request) {
	ws, unlock, ok := h.lockWorkspace(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	defer unlock()

	query := r.URL.Query().Get("q")
	view := pageView{
		Title:     "Avaliações",
		Back:      menuFuncionario,
		Base:      menuFuncionario + "/avaliacoes",
		Query:     query,
		EmptyText: "Nenhuma avaliação registrada.",
		Export:    menuFuncionario + "/avaliacoes/export.xlsx" + queryString(query),
	}

	rows, err := h.loadAvaliacoes(r, ws)
	if resource.IsCancelled(err) {
		return
	}
	status := http.StatusOK
	if err != nil {
		log.Warn().Err(err).Msg("falha na carga de avaliações")
		view.Error = resource.Message(err, msgAvaliacoes)
		status = http.StatusBadGateway
		rows = nil
	}
	view.Columns, view.Rows = buildRows(rows, ouvidoria.AvaliacaoColumns, func(a ouvidoria.AvaliacaoDisplay) string {
		return strconv.Itoa(a.CodAval)
	}, nil)

	h.render.Render(w, r, status, "page.html", pongo2.Context{"page": view})
}

// ExportAvaliacoes gera a planilha da listagem de avaliações.
func (h *Handler) ExportAvaliacoes(w http.ResponseWriter, r *http.Request) {
	ws, unlock, ok := h.lockWorkspace(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	defer unlock()

	rows, err := h.loadAvaliacoes(r, ws)
	if err != nil {
		if !resource.IsCancelled(err) {
			http.Error(w, resource.Message(err, msgAvaliacoes), http.StatusBadGateway)
		}
		return
	}
	writeSpreadsheet(w, "avaliacoes", export.Table("Avaliações", ouvidoria.AvaliacaoColumns, rows))
}

// FotoFuncionario devolve a foto decodificada com o tipo detectado.
func (h *Handler) FotoFuncionario(w http.ResponseWriter, r *http.Request) {
	ws, unlock, ok := h.lockWorkspace(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	defer unlock()

	if err := h.funcionarios.ensureLoaded(r.Context(), ws); err != nil {
		if !resource.IsCancelled(err) {
			http.Error(w, resource.Message(err, "Não foi possível carregar a foto."), http.StatusBadGateway)
		}
		return
	}
	f, found := ws.funcionarios.Find(chi.URLParam(r, "cpf"))
	if !found || f.Foto == nil {
		h.render.NotFound(w, r)
		return
	}
	photo, err := ouvidoria.DecodePhoto(*f.Foto)
	if err != nil {
		if !errors.Is(err, ouvidoria.ErrNoPhoto) {
			log.Warn().Err(err).Str("cpf", f.CPF).Msg("foto inválida no cadastro")
		}
		h.render.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", photo.MIME)
	w.Header().Set("Content-Length", strconv.Itoa(len(photo.Data)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "foto"+photo.Extension))
	_, _ = w.Write(photo.Data)
}

func orgaoOptions(ws *workspace) []optionView {
	items := ws.orgaos.View("")
	out := make([]optionView, 0, len(items))
	for _, o := range items {
		label := o.Nome
		if !o.Ativo() {
			label += " (encerrado)"
		}
		out = append(out, optionView{Value: strconv.Itoa(o.CodOrgao), Label: label})
	}
	return out
}

func cargoOptions(ws *workspace) []optionView {
	items := ws.cargos.View("")
	out := make([]optionView, 0, len(items))
	for _, c := range items {
		out = append(out, optionView{Value: strconv.Itoa(c.CodCargo), Label: c.Nome})
	}
	return out
}

func ocorrenciaOptions(ws *workspace) []optionView {
	items := ws.ocorrencias.View("")
	out := make([]optionView, 0, len(items))
	for _, o := range items {
		label := fmt.Sprintf("#%d - %s, %s", o.CodOco, o.Endereco, o.Bairro)
		out = append(out, optionView{Value: strconv.Itoa(o.CodOco), Label: label})
	}
	return out
}

func tipoOptions(ws *workspace) []optionView {
	items := ws.tipos.View("")
	out := make([]optionView, 0, len(items))
	for _, t := range items {
		out = append(out, optionView{Value: strconv.Itoa(t.CodTipo), Label: t.Nome})
	}
	return out
}
