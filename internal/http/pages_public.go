package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/rs/zerolog/log"

	httpmiddleware "github.com/gestaozabele/ouvidoria/internal/http/middleware"
	"github.com/gestaozabele/ouvidoria/internal/ouvidoria"
	"github.com/gestaozabele/ouvidoria/internal/resource"
	"github.com/gestaozabele/ouvidoria/internal/session"
)

const msgCadastroOK = "Cadastro realizado com sucesso. Faça login para continuar."

// Index é a página inicial; quem já está logado vai direto ao menu.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if ident, ok := session.FromContext(r.Context()); ok {
		http.Redirect(w, r, httpmiddleware.HomeFor(ident), http.StatusSeeOther)
		return
	}
	h.render.Render(w, r, http.StatusOK, "index.html", nil)
}

// LoginPage exibe o formulário de login.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if ident, ok := session.FromContext(r.Context()); ok {
		http.Redirect(w, r, httpmiddleware.HomeFor(ident), http.StatusSeeOther)
		return
	}
	data := pongo2.Context{"next": safeNext(r.URL.Query().Get("next"))}
	if r.URL.Query().Get("cadastro") == "ok" {
		data["success"] = msgCadastroOK
	}
	h.render.Render(w, r, http.StatusOK, "login.html", data)
}

// Login confere as credenciais e grava o cookie de sessão.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render.Render(w, r, http.StatusBadRequest, "login.html", pongo2.Context{"error": "Formulário inválido."})
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	next := safeNext(r.PostForm.Get("next"))

	token, ident, err := h.sessions.Login(r.Context(), email, r.PostForm.Get("senha"))
	if err != nil {
		if resource.IsCancelled(err) {
			return
		}
		var verr *resource.ValidationError
		if !errors.As(err, &verr) {
			log.Warn().Err(err).Msg("falha no login")
		}
		h.render.Render(w, r, statusFor(err), "login.html", pongo2.Context{
			"error": session.LoginMessage(err),
			"email": email,
			"next":  next,
		})
		return
	}

	h.sessions.SetCookie(w, token)
	if next == "" {
		next = httpmiddleware.HomeFor(ident)
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout encerra a sessão e descarta o workspace.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if ident, ok := session.FromContext(r.Context()); ok {
		h.workspaces.Drop(ident.SessionID)
	}
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		if err := h.sessions.Logout(r.Context(), cookie.Value); err != nil {
			log.Warn().Err(err).Msg("falha ao remover sessão")
		}
	}
	h.sessions.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// CadastroPage exibe o formulário de cadastro de morador.
func (h *Handler) CadastroPage(w http.ResponseWriter, r *http.Request) {
	form := resource.NewForm(ouvidoria.MoradorSchema().Fields)
	h.renderCadastro(w, r, http.StatusOK, form, "")
}

// Cadastro registra um novo morador no backend. Não há listagem a atualizar: o resultado vira redirecionamento.
func (h *Handler) Cadastro(w http.ResponseWriter, r *http.Request) {
	schema := ouvidoria.MoradorSchema()
	form := resource.NewForm(schema.Fields)
	if err := bindForm(r, form); err != nil {
		h.renderCadastro(w, r, http.StatusBadRequest, form, resource.Message(err, schema.Messages.CreateFailed))
		return
	}

	draft, err := schema.Build(form, nil)
	if err == nil {
		_, err = h.api.Moradores.Create(r.Context(), draft.Payload)
	}
	switch {
	case err == nil:
		http.Redirect(w, r, "/login?cadastro=ok", http.StatusSeeOther)
	case resource.IsCancelled(err):
	default:
		var verr *resource.ValidationError
		if !errors.As(err, &verr) {
			log.Warn().Err(err).Msg("falha no cadastro de morador")
		}
		h.renderCadastro(w, r, statusFor(err), form, resource.Message(err, schema.Messages.CreateFailed))
	}
}

func (h *Handler) renderCadastro(w http.ResponseWriter, r *http.Request, status int, form *resource.Form, msg string) {
	fields, _ := buildFields(form, nil, false)
	h.render.Render(w, r, status, "cadastro.html", pongo2.Context{
		"fields": fields,
		"error":  msg,
	})
}

// safeNext aceita apenas caminhos locais como destino após o login.
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
