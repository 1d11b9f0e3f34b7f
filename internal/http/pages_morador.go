package http

import (
	"net/http"

	"github.com/flosch/pongo2/v6"

	"github.com/gestaozabele/ouvidoria/internal/resource"
)

// MenuMorador é o menu inicial do morador.
func (h *Handler) MenuMorador(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "menu_morador.html", nil)
}

// Informacoes exibe o perfil do morador logado para edição.
func (h *Handler) Informacoes(w http.ResponseWriter, r *http.Request) {
	ws, unlock, ok := h.lockWorkspace(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	defer unlock()

	if err := ws.perfil.Load(r.Context()); resource.IsCancelled(err) {
		return
	}
	if err := ws.perfil.OpenEdit(ws.ident.CPF); err != nil {
		ws.perfil.EditModal().Close()
	}
	h.renderPerfil(w, r, ws, http.StatusOK)
}

// SalvarInformacoes envia a atualização do perfil.
func (h *Handler) SalvarInformacoes(w http.ResponseWriter, r *http.Request) {
	ws, unlock, ok := h.lockWorkspace(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	defer unlock()

	m := ws.perfil
	if !m.State().Loaded {
		if err := m.Load(r.Context()); err != nil {
			if !resource.IsCancelled(err) {
				h.renderPerfil(w, r, ws, statusFor(err))
			}
			return
		}
	}

	form := m.NewForm()
	if err := bindForm(r, form); err != nil {
		m.EditModal().OpenFor(ws.ident.CPF, form)
		m.SetError(resource.Message(err, m.Schema().Messages.UpdateFailed))
		h.renderPerfil(w, r, ws, http.StatusBadRequest)
		return
	}

	err := m.Update(r.Context(), ws.ident.CPF, form)
	switch {
	case err == nil:
		http.Redirect(w, r, "/menu_morador/informacoes", http.StatusSeeOther)
	case resource.IsCancelled(err):
	default:
		h.renderPerfil(w, r, ws, statusFor(err))
	}
}

func (h *Handler) renderPerfil(w http.ResponseWriter, r *http.Request, ws *workspace, status int) {
	m := ws.perfil
	st := m.State()
	data := pongo2.Context{"error": st.Error, "success": st.Success}
	if m.EditModal().IsOpen() {
		fields, _ := buildFields(m.EditModal().Draft(), nil, true)
		data["fields"] = fields
	}
	h.render.Render(w, r, status, "informacoes.html", data)
	m.ClearMessages()
}
