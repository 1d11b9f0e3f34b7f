package resource

import "sync"

// Modal guarda o estado de um diálogo: aberto ou fechado, o rascunho e o registro alvo.
type Modal[K comparable] struct {
	mu        sync.Mutex
	fields    []Field
	open      bool
	target    K
	hasTarget bool
	form      *Form
}

// NewModal cria um modal fechado com rascunho vazio.
func NewModal[K comparable](fields []Field) *Modal[K] {
	return &Modal[K]{fields: fields, form: NewForm(fields)}
}

// Open abre o modal com o rascunho informado; nil abre com rascunho vazio.
func (m *Modal[K]) Open(form *Form) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
	var zero K
	m.target, m.hasTarget = zero, false
	m.form = m.formOrBlank(form)
}

// OpenFor abre o modal apontando para o registro da chave.
func (m *Modal[K]) OpenFor(key K, form *Form) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
	m.target, m.hasTarget = key, true
	m.form = m.formOrBlank(form)
}

// Close fecha o modal e descarta o rascunho.
func (m *Modal[K]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	var zero K
	m.target, m.hasTarget = zero, false
	m.form = NewForm(m.fields)
}

// IsOpen informa se o modal está aberto.
func (m *Modal[K]) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Target devolve a chave do registro alvo.
func (m *Modal[K]) Target() (K, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target, m.hasTarget
}

// Change altera um campo do rascunho.
func (m *Modal[K]) Change(field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.form.Set(field, value)
}

// Draft devolve uma cópia do rascunho.
func (m *Modal[K]) Draft() *Form {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.form.Clone()
}

func (m *Modal[K]) formOrBlank(form *Form) *Form {
	if form == nil {
		return NewForm(m.fields)
	}
	return form.Clone()
}
