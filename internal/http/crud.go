package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/ouvidoria/internal/backend"
	"github.com/gestaozabele/ouvidoria/internal/export"
	"github.com/gestaozabele/ouvidoria/internal/ouvidoria"
	"github.com/gestaozabele/ouvidoria/internal/resource"
	"github.com/gestaozabele/ouvidoria/internal/session"
)

const msgDeleteConfirm = "Tem certeza de que deseja excluir este registro? Esta ação não pode ser desfeita."

// crudPage liga um resource.Manager às rotas de listagem, cadastro, edição, exclusão e exportação.
type crudPage[T any, K comparable] struct {
	h          *Handler
	title      string
	singular   string
	back       string
	listPath   string
	createPath string
	itemBase   string
	empty      string
	columns    []export.Column[T]
	manager    func(*workspace) *resource.Manager[T, K]
	// lookups são listagens auxiliares carregadas junto, antes da principal.
	lookups  func(*workspace) []resource.Loader
	options  func(*workspace) options
	writable func(session.Identity) bool
	actions  func(*workspace, T) []actionView
	// extra permite que a página sobreponha o modal ou mensagens antes de desenhar.
	extra func(*workspace, *pageView)
	// reset fecha diálogos próprios da página ao abrir a listagem.
	reset func(*workspace)
}

func (p *crudPage[T, K]) mount(r chi.Router) {
	r.Get(p.listPath, p.list)
	r.Get(p.listPath+"/export.xlsx", p.export)
	r.Get(p.createPath, p.openCreate)
	r.Post(p.createPath, p.create)
	r.Post(p.itemBase+"/{id}/edit", p.update)
	r.Post(p.itemBase+"/{id}/delete", p.remove)
}

func (p *crudPage[T, K]) canWrite(ident session.Identity) bool {
	return p.writable == nil || p.writable(ident)
}

func (p *crudPage[T, K]) list(w http.ResponseWriter, r *http.Request) {
	ws, unlock, ok := p.h.lockWorkspace(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	defer unlock()

	m := p.manager(ws)
	if err := p.load(r.Context(), ws); resource.IsCancelled(err) {
		return
	}

	q := r.URL.Query()
	closeModals(m)
	if p.reset != nil {
		p.reset(ws)
	}
	switch {
	case q.Get("modal") == "create" && p.canWrite(ws.ident):
		m.OpenCreate()
	case q.Get("edit") != "" && p.canWrite(ws.ident):
		if key, err := m.ParseKey(q.Get("edit")); err != nil || m.OpenEdit(key) != nil {
			m.SetError("Registro não encontrado.")
		}
	case q.Get("delete") != "" && p.canWrite(ws.ident):
		if key, err := m.ParseKey(q.Get("delete")); err != nil || m.RequestDelete(key) != nil {
			m.SetError("Registro não encontrado.")
		}
	}
	p.render(w, r, ws, q.Get("q"), http.StatusOK)
}

func (p *crudPage[T, K]) openCreate(w http.ResponseWriter, r *http.Request) {
	target := p.listPath + "?modal=create"
	if q := r.URL.Query().Get("q"); q != "" {
		target += "&q=" + url.QueryEscape(q)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (p *crudPage[T, K]) load(ctx context.Context, ws *workspace) error {
	m := p.manager(ws)
	if p.lookups == nil {
		return m.Load(ctx)
	}
	loaders := append(p.lookups(ws), m)
	err := resource.LoadAll(ctx, loaders...)
	if err != nil && !resource.IsCancelled(err) {
		log.Warn().Err(err).Str("resource", m.Name()).Msg("falha na carga conjunta")
		m.SetError(resource.Message(err, m.Schema().Messages.LoadFailed))
	}
	return err
}

func (p *crudPage[T, K]) ensureLoaded(ctx context.Context, ws *workspace) error {
	if p.manager(ws).State().Loaded {
		return nil
	}
	return p.load(ctx, ws)
}

func (p *crudPage[T, K]) create(w http.ResponseWriter, r *http.Request) {
	ws, unlock, ok := p.h.lockWorkspace(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	defer unlock()

	if !p.canWrite(ws.ident) {
		http.Error(w, "Operação não permitida.", http.StatusForbidden)
		return
	}
	m := p.manager(ws)
	if err := p.ensureLoaded(r.Context(), ws); resource.IsCancelled(err) {
		return
	}

	form := m.NewForm()
	if err := bindForm(r, form); err != nil {
		m.CreateModal().Open(form)
		m.SetError(resource.Message(err, "Não foi possível ler o formulário."))
		p.render(w, r, ws, r.URL.Query().Get("q"), http.StatusBadRequest)
		return
	}
	p.finish(w, r, ws, m.Create(r.Context(), form))
}

func (p *crudPage[T, K]) update(w http.ResponseWriter, r *http.Request) {
	ws, unlock, ok := p.h.lockWorkspace(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	defer unlock()

	if !p.canWrite(ws.ident) {
		http.Error(w, "Operação não permitida.", http.StatusForbidden)
		return
	}
	m := p.manager(ws)
	key, err := m.ParseKey(chi.URLParam(r, "id"))
	if err != nil {
		p.h.render.NotFound(w, r)
		return
	}
	if err := p.ensureLoaded(r.Context(), ws); resource.IsCancelled(err) {
		return
	}
	if _, found := m.Find(key); !found {
		p.h.render.NotFound(w, r)
		return
	}

	form := m.NewForm()
	if err := bindForm(r, form); err != nil {
		m.EditModal().OpenFor(key, form)
		m.SetError(resource.Message(err, "Não foi possível ler o formulário."))
		p.render(w, r, ws, r.URL.Query().Get("q"), http.StatusBadRequest)
		return
	}
	p.finish(w, r, ws, m.Update(r.Context(), key, form))
}

func (p *crudPage[T, K]) remove(w http.ResponseWriter, r *http.Request) {
	ws, unlock, ok := p.h.lockWorkspace(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	defer unlock()

	if !p.canWrite(ws.ident) {
		http.Error(w, "Operação não permitida.", http.StatusForbidden)
		return
	}
	m := p.manager(ws)
	key, err := m.ParseKey(chi.URLParam(r, "id"))
	if err != nil {
		p.h.render.NotFound(w, r)
		return
	}
	if err := p.ensureLoaded(r.Context(), ws); resource.IsCancelled(err) {
		return
	}
	if err := m.RequestDelete(key); err != nil {
		p.h.render.NotFound(w, r)
		return
	}
	p.finish(w, r, ws, m.ConfirmDelete(r.Context()))
}

// finish aplica o padrão POST-redirect-GET no sucesso e redesenha a página com o erro na falha.
func (p *crudPage[T, K]) finish(w http.ResponseWriter, r *http.Request, ws *workspace, err error) {
	query := r.URL.Query().Get("q")
	if err == nil {
		http.Redirect(w, r, p.listPath+queryString(query), http.StatusSeeOther)
		return
	}
	if resource.IsCancelled(err) {
		return
	}
	p.render(w, r, ws, query, statusFor(err))
}

func (p *crudPage[T, K]) export(w http.ResponseWriter, r *http.Request) {
	ws, unlock, ok := p.h.lockWorkspace(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	defer unlock()

	m := p.manager(ws)
	if err := p.load(r.Context(), ws); err != nil {
		if !resource.IsCancelled(err) {
			http.Error(w, resource.Message(err, m.Schema().Messages.LoadFailed), http.StatusBadGateway)
		}
		return
	}
	m.ClearMessages()

	items := m.View(r.URL.Query().Get("q"))
	writeSpreadsheet(w, m.Name(), export.Table(p.title, p.columns, items))
}

func writeSpreadsheet(w http.ResponseWriter, name string, sheets ...export.Sheet) {
	var buf bytes.Buffer
	if err := export.Write(&buf, sheets...); err != nil {
		log.Error().Err(err).Str("resource", name).Msg("falha ao gerar planilha")
		http.Error(w, "Não foi possível gerar a planilha.", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, &buf)
}

func (p *crudPage[T, K]) render(w http.ResponseWriter, r *http.Request, ws *workspace, query string, status int) {
	m := p.manager(ws)
	st := m.State()
	writable := p.canWrite(ws.ident)

	var actions func(T) []actionView
	if p.actions != nil {
		actions = func(item T) []actionView { return p.actions(ws, item) }
	}
	headers, rows := buildRows(m.View(query), p.columns, func(item T) string {
		return m.FormatKey(m.KeyOf(item))
	}, actions)

	view := pageView{
		Title:     p.title,
		Back:      p.back,
		Base:      p.listPath,
		Create:    p.createPath,
		Query:     strings.TrimSpace(query),
		Columns:   headers,
		Rows:      rows,
		EmptyText: p.empty,
		CanCreate: writable && m.Schema().Build != nil,
		CanEdit:   writable && m.Schema().Build != nil,
		CanDelete: writable,
		Export:    p.listPath + "/export.xlsx" + queryString(query),
		Error:     st.Error,
		Success:   st.Success,
		Modal:     p.modal(ws, query),
	}
	if view.Modal != nil && st.Error != "" {
		view.Modal.Error, view.Error = st.Error, ""
	}
	if p.extra != nil {
		p.extra(ws, &view)
	}

	p.h.render.Render(w, r, status, "page.html", pongo2.Context{"page": view})
	m.ClearMessages()
}

func (p *crudPage[T, K]) modal(ws *workspace, query string) *modalView {
	m := p.manager(ws)
	var opts options
	if p.options != nil {
		opts = p.options(ws)
	}
	qs := queryString(query)

	if m.CreateModal().IsOpen() {
		return formModal("Cadastrar "+p.singular, p.createPath+qs, "Salvar", m.CreateModal().Draft(), opts, false)
	}
	if m.EditModal().IsOpen() {
		if key, ok := m.EditModal().Target(); ok {
			action := p.itemBase + "/" + url.PathEscape(m.FormatKey(key)) + "/edit" + qs
			return formModal("Editar "+p.singular, action, "Salvar alterações", m.EditModal().Draft(), opts, true)
		}
	}
	if m.DeleteModal().IsOpen() {
		if key, ok := m.DeleteModal().Target(); ok {
			action := p.itemBase + "/" + url.PathEscape(m.FormatKey(key)) + "/delete" + qs
			return confirmModal("Excluir "+p.singular, action, msgDeleteConfirm)
		}
	}
	return nil
}

func closeModals[T any, K comparable](m *resource.Manager[T, K]) {
	m.CreateModal().Close()
	m.EditModal().Close()
	m.CancelDelete()
}

func queryString(query string) string {
	if query = strings.TrimSpace(query); query == "" {
		return ""
	}
	return "?q=" + url.QueryEscape(query)
}

// statusFor escolhe o status HTTP da página redesenhada após uma falha.
func statusFor(err error) int {
	var verr *resource.ValidationError
	var apiErr *backend.APIError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, resource.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, resource.ErrUnknownRecord), errors.Is(err, resource.ErrNoTarget):
		return http.StatusNotFound
	case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError:
		return apiErr.Status
	default:
		return http.StatusBadGateway
	}
}

// bindForm lê o corpo urlencoded ou multipart. Arquivos viram base64 nos campos declarados.
func bindForm(r *http.Request, form *resource.Form) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(ouvidoria.MaxPhotoBytes + 1<<20); err != nil {
			return resource.Invalid("", "Não foi possível ler o formulário enviado.")
		}
	} else if err := r.ParseForm(); err != nil {
		return resource.Invalid("", "Não foi possível ler o formulário enviado.")
	}
	form.Bind(r.PostForm)

	if r.MultipartForm == nil {
		return nil
	}
	for name, files := range r.MultipartForm.File {
		if !form.Has(name) || len(files) == 0 || files[0].Size == 0 {
			continue
		}
		if files[0].Size > ouvidoria.MaxPhotoBytes {
			return resource.Invalid(name, "A imagem deve ter no máximo 2 MB.")
		}
		f, err := files[0].Open()
		if err != nil {
			return resource.Invalid(name, "Não foi possível ler o arquivo enviado.")
		}
		data, err := io.ReadAll(io.LimitReader(f, ouvidoria.MaxPhotoBytes+1))
		_ = f.Close()
		if err != nil {
			return resource.Invalid(name, "Não foi possível ler o arquivo enviado.")
		}
		encoded, err := ouvidoria.EncodePhoto(data)
		if err != nil {
			return resource.Invalid(name, "Envie uma imagem válida para a foto.")
		}
		_ = form.Set(name, encoded)
	}
	return nil
}
