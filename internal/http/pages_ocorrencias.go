package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	httpmiddleware "github.com/gestaozabele/ouvidoria/internal/http/middleware"
	"github.com/gestaozabele/ouvidoria/internal/ouvidoria"
	"github.com/gestaozabele/ouvidoria/internal/resource"
	"github.com/gestaozabele/ouvidoria/internal/session"
)

const ocorrenciasList = "/ocorrencias/listar"

func (h *Handler) ocorrenciasPage() *crudPage[ouvidoria.Ocorrencia, int] {
	return &crudPage[ouvidoria.Ocorrencia, int]{
		h:          h,
		title:      "Ocorrências",
		singular:   "ocorrência",
		back:       "/",
		listPath:   ocorrenciasList,
		createPath: "/ocorrencias/cadastrar",
		itemBase:   "/ocorrencias",
		empty:      "Nenhuma ocorrência registrada.",
		columns:    ouvidoria.OcorrenciaColumns,
		manager:    func(ws *workspace) *resource.Manager[ouvidoria.Ocorrencia, int] { return ws.ocorrencias },
		lookups: func(ws *workspace) []resource.Loader {
			return []resource.Loader{ws.tipos}
		},
		options: func(ws *workspace) options {
			return options{"tipos": tipoOptions(ws)}
		},
		writable: func(ident session.Identity) bool { return !ident.IsFuncionario },
		actions: func(ws *workspace, o ouvidoria.Ocorrencia) []actionView {
			if !ouvidoria.CanEvaluate(o, ws.ident.IsFuncionario) {
				return nil
			}
			return []actionView{{Label: "Avaliar", Href: evaluationPath(o.CodOco)}}
		},
		extra: evaluationOverlay,
		reset: func(ws *workspace) { ws.evaluation.Close() },
	}
}

func evaluationPath(codOco int) string {
	return "/ocorrencias/" + strconv.Itoa(codOco) + "/avaliar"
}

// evaluationOverlay mostra o diálogo de avaliação e suas mensagens sobre a listagem.
func evaluationOverlay(ws *workspace, view *pageView) {
	view.Back = httpmiddleware.HomeFor(ws.ident)

	ev := ws.evaluation
	st := ev.State()
	if st.Success != "" {
		view.Success = st.Success
	}
	if ev.Modal().IsOpen() {
		view.Modal = evaluationModal(ev, st.Error)
	} else if st.Error != "" {
		view.Error = st.Error
	}
	ev.ClearMessages()
}

func evaluationModal(ev *ouvidoria.Evaluation, errMsg string) *modalView {
	o := ev.Ocorrencia()
	title, submit := "Avaliar ocorrência #"+strconv.Itoa(o.CodOco), "Enviar avaliação"
	if ev.Mode() == ouvidoria.ModeEdit {
		title, submit = "Editar avaliação da ocorrência #"+strconv.Itoa(o.CodOco), "Salvar alterações"
	}
	fields, _ := buildFields(ev.Modal().Draft(), nil, false)
	for i := range fields {
		switch fields[i].Name {
		case "cod_servico", "cpf_morador":
			fields[i].Kind = "hidden"
		}
	}
	return &modalView{
		Title:  title,
		Action: evaluationPath(o.CodOco),
		Submit: submit,
		Cancel: "Cancelar",
		Error:  errMsg,
		Fields: fields,
	}
}

// evaluationTarget carrega as ocorrências e devolve a do parâmetro, se puder ser avaliada.
func (h *Handler) evaluationTarget(w http.ResponseWriter, r *http.Request, ws *workspace) (ouvidoria.Ocorrencia, bool) {
	codOco, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || codOco <= 0 {
		h.render.NotFound(w, r)
		return ouvidoria.Ocorrencia{}, false
	}
	if err := h.ocorrencias.ensureLoaded(r.Context(), ws); err != nil {
		if !resource.IsCancelled(err) {
			h.ocorrencias.render(w, r, ws, "", http.StatusBadGateway)
		}
		return ouvidoria.Ocorrencia{}, false
	}
	o, found := ws.ocorrencias.Find(codOco)
	if !found {
		h.render.NotFound(w, r)
		return ouvidoria.Ocorrencia{}, false
	}
	if !ouvidoria.CanEvaluate(o, ws.ident.IsFuncionario) {
		ws.ocorrencias.SetError("Somente ocorrências finalizadas podem ser avaliadas.")
		h.ocorrencias.render(w, r, ws, "", http.StatusConflict)
		return ouvidoria.Ocorrencia{}, false
	}
	return o, true
}

// servicoFor resolve o serviço da ocorrência, consultando a listagem de serviços quando preciso.
func (h *Handler) servicoFor(r *http.Request, ws *workspace, o ouvidoria.Ocorrencia) int {
	if id := ouvidoria.ResolveServico(o, nil); id > 0 {
		return id
	}
	if !ws.servicos.State().Loaded {
		if err := ws.servicos.Load(r.Context()); err != nil {
			ws.servicos.ClearMessages()
			return 0
		}
	}
	return ouvidoria.ResolveServico(o, ws.servicos.Items())
}

// AvaliarForm abre o diálogo de avaliação: edição quando já existe avaliação, cadastro caso contrário.
func (h *Handler) AvaliarForm(w http.ResponseWriter, r *http.Request) {
	ws, unlock, ok := h.lockWorkspace(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	defer unlock()

	o, ok := h.evaluationTarget(w, r, ws)
	if !ok {
		return
	}
	closeModals(ws.ocorrencias)
	servicoID := h.servicoFor(r, ws, o)
	if err := ws.evaluation.Open(r.Context(), o, servicoID); resource.IsCancelled(err) {
		return
	}
	h.ocorrencias.render(w, r, ws, "", http.StatusOK)
}

// Avaliar envia a avaliação. Sucesso volta para a listagem.
func (h *Handler) Avaliar(w http.ResponseWriter, r *http.Request) {
	ws, unlock, ok := h.lockWorkspace(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	defer unlock()

	o, ok := h.evaluationTarget(w, r, ws)
	if !ok {
		return
	}
	closeModals(ws.ocorrencias)
	ev := ws.evaluation
	if target, open := ev.Modal().Target(); !open || target != o.CodOco || !ev.Modal().IsOpen() {
		if err := ev.Open(r.Context(), o, h.servicoFor(r, ws, o)); err != nil {
			if !resource.IsCancelled(err) {
				h.ocorrencias.render(w, r, ws, "", statusFor(err))
			}
			return
		}
	}

	form := resource.NewForm(ouvidoria.EvaluationFields)
	if err := bindForm(r, form); err != nil {
		ws.ocorrencias.SetError(resource.Message(err, "Não foi possível ler o formulário."))
		h.ocorrencias.render(w, r, ws, "", http.StatusBadRequest)
		return
	}
	if _, err := ev.Submit(r.Context(), form); err != nil {
		if !resource.IsCancelled(err) {
			h.ocorrencias.render(w, r, ws, "", statusFor(err))
		}
		return
	}
	http.Redirect(w, r, ocorrenciasList, http.StatusSeeOther)
}
