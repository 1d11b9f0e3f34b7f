package ouvidoria

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Placeholder é exibido no lugar de campos opcionais ausentes.
const Placeholder = "—"

const (
	fallbackServico = "Serviço não identificado"
	fallbackMorador = "Morador não identificado"
)

// AvaliacaoDisplay é a linha da tabela de avaliações já unida a serviço, ocorrência e morador.
type AvaliacaoDisplay struct {
	CodAval     int
	CodServico  int
	CPFMorador  string
	ServicoNome string
	MoradorNome string
	OrgaoNome   string
	NotaServ    int
	NotaTempo   int
	Opiniao     *string
	Servico     *Servico
	Ocorrencia  *Ocorrencia
}

// BuildAvaliacaoDisplay une as avaliações às listagens de apoio, preservando a ordem recebida.
func BuildAvaliacaoDisplay(avaliacoes []Avaliacao, servicos []Servico, ocorrencias []Ocorrencia, moradores []Morador) []AvaliacaoDisplay {
	servicoByID := make(map[int]Servico, len(servicos))
	for _, s := range servicos {
		servicoByID[s.CodServico] = s
	}
	ocorrenciaByID := make(map[int]Ocorrencia, len(ocorrencias))
	for _, o := range ocorrencias {
		ocorrenciaByID[o.CodOco] = o
	}
	moradorByCPF := make(map[string]Morador, len(moradores))
	for _, m := range moradores {
		moradorByCPF[m.CPF] = m
	}

	out := make([]AvaliacaoDisplay, 0, len(avaliacoes))
	for _, a := range avaliacoes {
		row := AvaliacaoDisplay{
			CodAval:    a.CodAval,
			CodServico: a.CodServico,
			CPFMorador: a.CPFMorador,
			NotaServ:   a.NotaServ,
			NotaTempo:  a.NotaTempo,
			Opiniao:    blankToNil(a.Opiniao),
		}

		servicoNome := deref(a.ServicoNome)
		orgaoNome := deref(a.OrgaoNome)
		if s, ok := servicoByID[a.CodServico]; ok {
			row.Servico = &s
			if strings.TrimSpace(servicoNome) == "" {
				servicoNome = s.Nome
			}
			if strings.TrimSpace(orgaoNome) == "" {
				orgaoNome = deref(s.OrgaoNome)
			}
			if o, ok := ocorrenciaByID[s.CodOcorrencia]; ok {
				row.Ocorrencia = &o
			}
		}
		if row.Ocorrencia == nil {
			if o, ok := ocorrenciaByID[a.CodOcorrencia]; ok {
				row.Ocorrencia = &o
			}
		}

		moradorNome := deref(a.MoradorNome)
		if strings.TrimSpace(moradorNome) == "" {
			if m, ok := moradorByCPF[a.CPFMorador]; ok {
				moradorNome = m.Nome
			}
		}

		row.ServicoNome = orDefault(servicoNome, fallbackServico)
		row.MoradorNome = orDefault(moradorNome, fallbackMorador)
		row.OrgaoNome = orDefault(orgaoNome, Placeholder)
		out = append(out, row)
	}
	return out
}

func orDefault(value, def string) string {
	if value = strings.TrimSpace(value); value == "" {
		return def
	}
	return value
}

// Text devolve o texto opcional ou o marcador de ausência.
func Text(value *string) string {
	if value == nil {
		return Placeholder
	}
	return orDefault(*value, Placeholder)
}

// Nota formata a média de um serviço com uma casa decimal.
func Nota(value decimal.NullDecimal) string {
	if !value.Valid {
		return Placeholder
	}
	return value.Decimal.StringFixed(1)
}
