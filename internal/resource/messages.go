package resource

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Messages reúne os textos de feedback de um recurso.
type Messages struct {
	LoadFailed   string
	Created      string
	CreateFailed string
	Incomplete   string
	Updated      string
	UpdateFailed string
	Deleted      string
	DeleteFailed string
}

// Noun descreve o substantivo usado nas mensagens.
type Noun struct {
	Singular string
	Plural   string
	Feminine bool
}

// MessagesFor monta as mensagens padrão com a concordância do substantivo.
func MessagesFor(n Noun) Messages {
	art, suffix := "o", "o"
	if n.Feminine {
		art, suffix = "a", "a"
	}
	title := capitalize(n.Singular)

	return Messages{
		LoadFailed:   "Não foi possível carregar " + art + "s " + n.Plural + ".",
		Created:      title + " cadastrad" + suffix + " com sucesso.",
		CreateFailed: "Não foi possível cadastrar " + art + " " + n.Singular + ".",
		Incomplete:   title + " cadastrad" + suffix + ", mas não foi possível atualizar a lista.",
		Updated:      title + " atualizad" + suffix + " com sucesso.",
		UpdateFailed: "Não foi possível atualizar " + art + " " + n.Singular + ".",
		Deleted:      title + " removid" + suffix + " com sucesso.",
		DeleteFailed: "Não foi possível remover " + art + " " + n.Singular + ".",
	}
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
