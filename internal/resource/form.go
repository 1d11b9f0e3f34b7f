package resource

import (
	"fmt"
	"maps"
	"strings"
)

// FieldKind descreve como o campo é apresentado no formulário.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindNumber   FieldKind = "number"
	KindDate     FieldKind = "date"
	KindEmail    FieldKind = "email"
	KindPassword FieldKind = "password"
	KindSelect   FieldKind = "select"
	KindFile     FieldKind = "file"
)

// Field é um campo editável do formulário de um recurso.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
	// Options aponta para a lista auxiliar que alimenta um select (ex.: "cargos").
	Options string
	// Locked impede alteração do campo na edição (chaves naturais como CPF).
	Locked bool
}

// Form é o rascunho textual de um formulário, restrito aos campos declarados.
type Form struct {
	fields []Field
	values map[string]string
}

// NewForm cria um formulário vazio para os campos informados.
func NewForm(fields []Field) *Form {
	return &Form{fields: fields, values: make(map[string]string, len(fields))}
}

// Fields devolve a definição dos campos.
func (f *Form) Fields() []Field {
	return f.fields
}

// Has informa se o campo foi declarado.
func (f *Form) Has(name string) bool {
	for _, field := range f.fields {
		if field.Name == name {
			return true
		}
	}
	return false
}

// Get devolve o valor atual do campo.
func (f *Form) Get(name string) string {
	return f.values[name]
}

// Trimmed devolve o valor sem espaços nas pontas.
func (f *Form) Trimmed(name string) string {
	return strings.TrimSpace(f.values[name])
}

// Set altera um campo declarado.
func (f *Form) Set(name, value string) error {
	if !f.Has(name) {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	f.values[name] = value
	return nil
}

// Bind copia valores de um formulário HTTP, ignorando campos não declarados.
func (f *Form) Bind(values map[string][]string) {
	for _, field := range f.fields {
		if vals, ok := values[field.Name]; ok && len(vals) > 0 {
			f.values[field.Name] = vals[0]
		}
	}
}

// Values devolve uma cópia dos valores.
func (f *Form) Values() map[string]string {
	return maps.Clone(f.values)
}

// Clone devolve uma cópia independente.
func (f *Form) Clone() *Form {
	return &Form{fields: f.fields, values: maps.Clone(f.values)}
}

// Reset limpa todos os valores.
func (f *Form) Reset() {
	f.values = make(map[string]string, len(f.fields))
}
