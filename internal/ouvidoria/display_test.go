package ouvidoria

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaozabele/ouvidoria/internal/export"
)

func TestBuildAvaliacaoDisplay(t *testing.T) {
	orgao := "Secretaria de Obras"
	avaliacoes := []Avaliacao{
		{CodAval: 1, CodServico: 10, CPFMorador: "111", NotaServ: 9, NotaTempo: 8},
		{CodAval: 2, CodServico: 99, CPFMorador: "999", NotaServ: 3, NotaTempo: 4},
	}
	servicos := []Servico{{CodServico: 10, CodOcorrencia: 5, Nome: "Tapa-buraco", OrgaoNome: &orgao}}
	ocorrencias := []Ocorrencia{{CodOco: 5, Endereco: "Rua A"}}
	moradores := []Morador{{CPF: "111", Nome: "Maria"}}

	rows := BuildAvaliacaoDisplay(avaliacoes, servicos, ocorrencias, moradores)
	require.Len(t, rows, 2)

	assert.Equal(t, "Tapa-buraco", rows[0].ServicoNome)
	assert.Equal(t, "Maria", rows[0].MoradorNome)
	assert.Equal(t, orgao, rows[0].OrgaoNome)
	require.NotNil(t, rows[0].Ocorrencia)
	assert.Equal(t, "Rua A", rows[0].Ocorrencia.Endereco)

	assert.Equal(t, "Serviço não identificado", rows[1].ServicoNome)
	assert.Equal(t, "Morador não identificado", rows[1].MoradorNome)
	assert.Equal(t, Placeholder, rows[1].OrgaoNome)
	assert.Nil(t, rows[1].Servico)
}

func TestBuildAvaliacaoDisplayPrefersEmbeddedNames(t *testing.T) {
	nome := "Poda de árvore"
	morador := "João"
	rows := BuildAvaliacaoDisplay([]Avaliacao{{CodAval: 1, CodServico: 10, ServicoNome: &nome, MoradorNome: &morador}},
		[]Servico{{CodServico: 10, Nome: "Outro"}}, nil, nil)
	assert.Equal(t, "Poda de árvore", rows[0].ServicoNome)
	assert.Equal(t, "João", rows[0].MoradorNome)
}

func TestTextAndNota(t *testing.T) {
	empty := "  "
	value := "Descrição"
	assert.Equal(t, "—", Text(nil))
	assert.Equal(t, "—", Text(&empty))
	assert.Equal(t, "Descrição", Text(&value))

	assert.Equal(t, "—", Nota(decimal.NullDecimal{}))
	assert.Equal(t, "7.5", Nota(decimal.NewNullDecimal(decimal.RequireFromString("7.50"))))
}

func TestStatusTaxonomy(t *testing.T) {
	assert.True(t, Status("Em Análise").Is(StatusEmAnalise))
	assert.True(t, Status("finalizada").Finalizada())
	assert.Equal(t, StatusEmAndamento, Status(" em  andamento ").Canonical())
	assert.Equal(t, "Não iniciada", StatusNaoIniciada.Label())
	assert.True(t, Status("EM ANÁLISE").Known())

	unknown := Status("Arquivada")
	assert.False(t, unknown.Known())
	assert.False(t, unknown.Finalizada())
	assert.Equal(t, "Arquivada", unknown.Label())
	assert.Equal(t, "—", Status("").Label())
}

func TestServicoDecodesDecimalAverage(t *testing.T) {
	var s Servico
	require.NoError(t, s.NotaMedia.UnmarshalJSON([]byte("8.25")))
	assert.Equal(t, "8.3", Nota(s.NotaMedia))
}

func TestExportColumns(t *testing.T) {
	sheet := export.Table("Cargos", CargoColumns, []Cargo{{CodCargo: 3, Nome: "Fiscal"}})
	assert.Equal(t, []string{"Código", "Nome", "Descrição"}, sheet.Headers)
	assert.Equal(t, [][]string{{"3", "Fiscal", "—"}}, sheet.Rows)

	fim := "2024-01-01"
	orgaos := export.Table("Órgãos", OrgaoColumns, []OrgaoPublico{{CodOrgao: 1, Nome: "Obras", DataFim: &fim}})
	assert.Equal(t, "Encerrado", orgaos.Rows[0][5])
}
