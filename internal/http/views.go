package http

import (
	"github.com/gestaozabele/ouvidoria/internal/export"
	"github.com/gestaozabele/ouvidoria/internal/resource"
)

// pageView é o que os templates de listagem recebem.
type pageView struct {
	Title     string
	Back      string
	Base      string
	Create    string
	Query     string
	Columns   []string
	Rows      []rowView
	EmptyText string
	CanCreate bool
	CanEdit   bool
	CanDelete bool
	Export    string
	Error     string
	Success   string
	Modal     *modalView
}

type rowView struct {
	Key     string
	Cells   []string
	Actions []actionView
}

type actionView struct {
	Label string
	Href  string
}

// modalView é um diálogo aberto: formulário ou confirmação.
type modalView struct {
	Title   string
	Action  string
	Submit  string
	Cancel  string
	Confirm bool
	Message string
	Error   string
	Fields  []fieldView
	Upload  bool
}

type fieldView struct {
	Name     string
	Label    string
	Kind     string
	Value    string
	Required bool
	Disabled bool
	Options  []optionView
}

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

// options agrupa as opções dos campos select pelo nome da fonte.
type options map[string][]optionView

func buildRows[T any](items []T, columns []export.Column[T], key func(T) string, actions func(T) []actionView) ([]string, []rowView) {
	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Header
	}
	rows := make([]rowView, 0, len(items))
	for _, item := range items {
		row := rowView{Key: key(item), Cells: make([]string, len(columns))}
		for i, col := range columns {
			row.Cells[i] = col.Value(item)
		}
		if actions != nil {
			row.Actions = actions(item)
		}
		rows = append(rows, row)
	}
	return headers, rows
}

// buildFields converte o formulário em campos. Campos travados ficam desabilitados na edição.
func buildFields(form *resource.Form, opts options, editing bool) ([]fieldView, bool) {
	fields := form.Fields()
	out := make([]fieldView, 0, len(fields))
	upload := false
	for _, f := range fields {
		fv := fieldView{
			Name:     f.Name,
			Label:    f.Label,
			Kind:     string(f.Kind),
			Value:    form.Get(f.Name),
			Required: f.Required,
			Disabled: editing && f.Locked,
		}
		switch f.Kind {
		case resource.KindPassword, resource.KindFile:
			fv.Value = ""
		}
		if f.Kind == resource.KindFile {
			upload = true
			fv.Required = false
		}
		if f.Kind == resource.KindSelect {
			for _, opt := range opts[f.Options] {
				opt.Selected = opt.Value == fv.Value
				fv.Options = append(fv.Options, opt)
			}
		}
		out = append(out, fv)
	}
	return out, upload
}

func formModal(title, action, submit string, form *resource.Form, opts options, editing bool) *modalView {
	fields, upload := buildFields(form, opts, editing)
	return &modalView{Title: title, Action: action, Submit: submit, Cancel: "Cancelar", Fields: fields, Upload: upload}
}

func confirmModal(title, action, message string) *modalView {
	return &modalView{Title: title, Action: action, Submit: "Excluir", Cancel: "Cancelar", Confirm: true, Message: message}
}
