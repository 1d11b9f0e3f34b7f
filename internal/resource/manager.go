package resource

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// State é o retrato do estado de feedback do gerenciador.
type State struct {
	Loading bool
	Saving  bool
	Loaded  bool
	Error   string
	Success string
}

// Manager combina Store, sincronização remota, visão filtrada e fluxos de mutação de um recurso.
type Manager[T any, K comparable] struct {
	schema Schema[T, K]
	remote Remote[T]
	store  *Store[T, K]
	logger zerolog.Logger

	createModal *Modal[K]
	editModal   *Modal[K]
	deleteModal *Modal[K]

	mu    sync.Mutex
	state State

	viewMu      sync.Mutex
	viewVersion uint64
	viewQuery   string
	viewItems   []T
	viewReady   bool
}

// NewManager cria o gerenciador para o schema e a coleção remota.
func NewManager[T any, K comparable](schema Schema[T, K], remote Remote[T]) *Manager[T, K] {
	return &Manager[T, K]{
		schema:      schema,
		remote:      remote,
		store:       NewStore(schema.Key),
		logger:      log.With().Str("component", "resource").Str("resource", schema.Name).Logger(),
		createModal: NewModal[K](schema.Fields),
		editModal:   NewModal[K](schema.Fields),
		deleteModal: NewModal[K](nil),
	}
}

// Name devolve o nome do recurso.
func (m *Manager[T, K]) Name() string {
	return m.schema.Name
}

// Schema devolve o schema configurado.
func (m *Manager[T, K]) Schema() Schema[T, K] {
	return m.schema
}

// Store devolve o store subjacente.
func (m *Manager[T, K]) Store() *Store[T, K] {
	return m.store
}

// Items devolve uma cópia da lista completa.
func (m *Manager[T, K]) Items() []T {
	return m.store.Items()
}

// Find busca um registro pela chave.
func (m *Manager[T, K]) Find(key K) (T, bool) {
	return m.store.Find(key)
}

// KeyOf devolve a chave de um registro.
func (m *Manager[T, K]) KeyOf(item T) K {
	return m.schema.Key(item)
}

// FormatKey converte a chave para texto de URL.
func (m *Manager[T, K]) FormatKey(key K) string {
	return m.schema.formatKey(key)
}

// ParseKey interpreta a chave vinda da URL.
func (m *Manager[T, K]) ParseKey(raw string) (K, error) {
	if m.schema.ParseKey == nil {
		var zero K
		return zero, fmt.Errorf("%w: %q", ErrUnknownRecord, raw)
	}
	return m.schema.ParseKey(strings.TrimSpace(raw))
}

// State devolve o estado atual de carregamento e mensagens.
func (m *Manager[T, K]) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ClearMessages limpa erro e sucesso.
func (m *Manager[T, K]) ClearMessages() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Error, m.state.Success = "", ""
}

// SetError define uma mensagem de erro externa ao gerenciador (ex.: falha de carga conjunta).
func (m *Manager[T, K]) SetError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Error = msg
}

// CreateModal, EditModal e DeleteModal expõem os diálogos do recurso.
func (m *Manager[T, K]) CreateModal() *Modal[K] { return m.createModal }
func (m *Manager[T, K]) EditModal() *Modal[K]   { return m.editModal }
func (m *Manager[T, K]) DeleteModal() *Modal[K] { return m.deleteModal }

// Load busca a listagem e substitui o store. Cancelamento não altera nada.
func (m *Manager[T, K]) Load(ctx context.Context) error {
	m.mu.Lock()
	m.state.Loading = true
	m.mu.Unlock()

	items, err := m.remote.List(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Loading = false
	if err != nil {
		if IsCancelled(err) {
			return err
		}
		m.logger.Warn().Err(err).Msg("falha ao carregar listagem")
		m.state.Error = Message(err, m.schema.Messages.LoadFailed)
		return err
	}
	m.store.Replace(m.schema.normalizeAll(items))
	m.state.Loaded = true
	m.state.Error = ""
	return nil
}

// Prefetch busca a listagem sem aplicar; commit normaliza e substitui o store.
// A normalização fica no commit para enxergar listagens auxiliares aplicadas antes.
func (m *Manager[T, K]) Prefetch(ctx context.Context) (func(), error) {
	items, err := m.remote.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.schema.Name, err)
	}
	return func() {
		m.store.Replace(m.schema.normalizeAll(items))
		m.mu.Lock()
		m.state.Loaded = true
		m.mu.Unlock()
	}, nil
}

// View devolve os registros filtrados pela consulta, memorizados por versão do store e consulta.
func (m *Manager[T, K]) View(query string) []T {
	query = strings.TrimSpace(query)
	version := m.store.Version()

	m.viewMu.Lock()
	defer m.viewMu.Unlock()
	if m.viewReady && m.viewVersion == version && m.viewQuery == query {
		return slices.Clone(m.viewItems)
	}

	items := Filter(m.store.Items(), query, m.schema.Search)
	if m.schema.Less != nil {
		items = Sorted(items, m.schema.Less)
	}
	m.viewItems, m.viewVersion, m.viewQuery, m.viewReady = items, version, query, true
	return slices.Clone(items)
}

// NewForm devolve um formulário vazio do recurso.
func (m *Manager[T, K]) NewForm() *Form {
	return NewForm(m.schema.Fields)
}

// OpenCreate abre o modal de cadastro com rascunho vazio.
func (m *Manager[T, K]) OpenCreate() {
	m.createModal.Open(nil)
}

// Create valida o formulário e cadastra o registro.
// Formulário inválido não chega ao backend. Resposta sem chave provoca recarga da listagem.
func (m *Manager[T, K]) Create(ctx context.Context, form *Form) error {
	if m.schema.Build == nil {
		return ErrReadOnly
	}
	if !m.begin() {
		return ErrBusy
	}
	defer m.end()

	if form == nil {
		form = m.NewForm()
	}
	m.createModal.Open(form)
	msgs := m.schema.Messages

	draft, err := m.schema.Build(form, nil)
	if err != nil {
		m.fail(err, msgs.CreateFailed)
		return err
	}

	raw, err := m.remote.Create(ctx, draft.Payload)
	if err != nil {
		m.fail(err, msgs.CreateFailed)
		return err
	}

	if item, ok := decodeCreated[T, K](raw, m.schema.Key); ok {
		m.store.Append(m.schema.normalize(item))
	} else {
		items, err := m.remote.List(ctx)
		if err != nil {
			if IsCancelled(err) {
				return err
			}
			m.logger.Warn().Err(err).Msg("cadastro sem chave e recarga falhou")
			m.setError(msgs.Incomplete)
			m.createModal.Close()
			return fmt.Errorf("%w: %v", ErrIncompleteResponse, err)
		}
		m.store.Replace(m.schema.normalizeAll(items))
	}

	m.setSuccess(msgs.Created)
	m.createModal.Close()
	return nil
}

// OpenEdit abre o modal de edição pré-populado com o registro.
func (m *Manager[T, K]) OpenEdit(key K) error {
	item, ok := m.store.Find(key)
	if !ok {
		return ErrUnknownRecord
	}
	var form *Form
	if m.schema.Draft != nil {
		form = m.schema.Draft(item)
	}
	m.editModal.OpenFor(key, form)
	return nil
}

// Update valida o formulário e atualiza o registro da chave.
// O resultado parte do rascunho aplicado e recebe os campos não nulos devolvidos pelo servidor;
// chave e posição são preservadas.
func (m *Manager[T, K]) Update(ctx context.Context, key K, form *Form) error {
	if m.schema.Build == nil {
		return ErrReadOnly
	}
	prev, ok := m.store.Find(key)
	if !ok {
		return ErrUnknownRecord
	}
	if !m.begin() {
		return ErrBusy
	}
	defer m.end()

	if form == nil {
		form = m.NewForm()
	}
	m.editModal.OpenFor(key, form)
	msgs := m.schema.Messages

	draft, err := m.schema.Build(form, &prev)
	if err != nil {
		m.fail(err, msgs.UpdateFailed)
		return err
	}

	raw, err := m.remote.Update(ctx, m.schema.formatKey(key), draft.Payload)
	if err != nil {
		m.fail(err, msgs.UpdateFailed)
		return err
	}

	merged, err := mergeResponse(draft.Local, raw, m.schema.KeyField)
	if err != nil {
		m.logger.Warn().Err(err).Msg("falha ao mesclar resposta de atualização")
	}
	merged = m.schema.normalize(merged)
	m.store.Patch(key, func(T) T { return merged })

	m.setSuccess(msgs.Updated)
	m.editModal.Close()
	return nil
}

// RequestDelete abre o modal de confirmação para o registro.
func (m *Manager[T, K]) RequestDelete(key K) error {
	if _, ok := m.store.Find(key); !ok {
		return ErrUnknownRecord
	}
	m.deleteModal.OpenFor(key, nil)
	return nil
}

// CancelDelete fecha o modal de confirmação.
func (m *Manager[T, K]) CancelDelete() {
	m.deleteModal.Close()
}

// ConfirmDelete exclui o registro selecionado. Em caso de falha o store e o modal ficam como estavam.
func (m *Manager[T, K]) ConfirmDelete(ctx context.Context) error {
	key, ok := m.deleteModal.Target()
	if !ok || !m.deleteModal.IsOpen() {
		return ErrNoTarget
	}
	if !m.begin() {
		return ErrBusy
	}
	defer m.end()

	msgs := m.schema.Messages
	if err := m.remote.Delete(ctx, m.schema.formatKey(key)); err != nil {
		m.fail(err, msgs.DeleteFailed)
		return err
	}

	m.store.Remove(key)
	m.setSuccess(msgs.Deleted)
	m.deleteModal.Close()
	return nil
}

func (m *Manager[T, K]) begin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Saving {
		return false
	}
	m.state.Saving = true
	m.state.Error, m.state.Success = "", ""
	return true
}

func (m *Manager[T, K]) end() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Saving = false
}

func (m *Manager[T, K]) fail(err error, fallback string) {
	if IsCancelled(err) {
		return
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		m.logger.Warn().Err(err).Msg("falha na gravação")
	}
	m.setError(Message(err, fallback))
}

func (m *Manager[T, K]) setError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Error = msg
}

func (m *Manager[T, K]) setSuccess(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Success = msg
}
