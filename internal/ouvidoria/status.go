package ouvidoria

import (
	"strings"

	"github.com/gestaozabele/ouvidoria/internal/util"
)

// Status é o rótulo de andamento de uma ocorrência, preservado como veio do backend.
type Status string

const (
	StatusNaoIniciada Status = "NAO INICIADA"
	StatusEmAnalise   Status = "EM ANALISE"
	StatusEmAndamento Status = "EM ANDAMENTO"
	StatusFinalizada  Status = "FINALIZADA"
)

// KnownStatuses lista o vocabulário conhecido, na ordem do fluxo.
var KnownStatuses = []Status{StatusNaoIniciada, StatusEmAnalise, StatusEmAndamento, StatusFinalizada}

func foldStatus(s Status) string {
	return strings.Join(strings.Fields(util.Fold(string(s))), " ")
}

// Is compara ignorando caixa, acentos e espaços repetidos.
func (s Status) Is(other Status) bool {
	return foldStatus(s) == foldStatus(other)
}

// Canonical devolve o rótulo conhecido equivalente; rótulos desconhecidos voltam como vieram.
func (s Status) Canonical() Status {
	for _, known := range KnownStatuses {
		if s.Is(known) {
			return known
		}
	}
	return s
}

// Known informa se o rótulo pertence ao vocabulário.
func (s Status) Known() bool {
	canonical := s.Canonical()
	for _, known := range KnownStatuses {
		if canonical == known {
			return true
		}
	}
	return false
}

// Finalizada informa se a ocorrência foi concluída.
func (s Status) Finalizada() bool {
	return s.Is(StatusFinalizada)
}

// Label devolve o texto de exibição.
func (s Status) Label() string {
	switch s.Canonical() {
	case StatusNaoIniciada:
		return "Não iniciada"
	case StatusEmAnalise:
		return "Em análise"
	case StatusEmAndamento:
		return "Em andamento"
	case StatusFinalizada:
		return "Finalizada"
	}
	if strings.TrimSpace(string(s)) == "" {
		return "—"
	}
	return string(s)
}
