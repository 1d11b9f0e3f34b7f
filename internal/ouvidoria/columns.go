package ouvidoria

import (
	"strconv"

	"github.com/gestaozabele/ouvidoria/internal/export"
)

// Colunas das planilhas exportadas por recurso.
var (
	CargoColumns = []export.Column[Cargo]{
		{Header: "Código", Value: func(c Cargo) string { return strconv.Itoa(c.CodCargo) }},
		{Header: "Nome", Value: func(c Cargo) string { return c.Nome }},
		{Header: "Descrição", Value: func(c Cargo) string { return Text(c.Descricao) }},
	}

	OrgaoColumns = []export.Column[OrgaoPublico]{
		{Header: "Código", Value: func(o OrgaoPublico) string { return strconv.Itoa(o.CodOrgao) }},
		{Header: "Nome", Value: func(o OrgaoPublico) string { return o.Nome }},
		{Header: "Estado", Value: func(o OrgaoPublico) string { return o.Estado }},
		{Header: "Início", Value: func(o OrgaoPublico) string { return o.DataIni }},
		{Header: "Fim", Value: func(o OrgaoPublico) string { return Text(o.DataFim) }},
		{Header: "Situação", Value: func(o OrgaoPublico) string { return situacao(o.Ativo()) }},
	}

	FuncionarioColumns = []export.Column[Funcionario]{
		{Header: "CPF", Value: func(f Funcionario) string { return f.CPF }},
		{Header: "Nome", Value: func(f Funcionario) string { return f.Nome }},
		{Header: "Órgão", Value: func(f Funcionario) string { return Text(f.OrgaoNome) }},
		{Header: "Cargo", Value: func(f Funcionario) string { return Text(f.CargoNome) }},
		{Header: "Email", Value: func(f Funcionario) string { return Text(f.Email) }},
		{Header: "Início do contrato", Value: func(f Funcionario) string { return f.InicioContrato }},
		{Header: "Fim do contrato", Value: func(f Funcionario) string { return Text(f.FimContrato) }},
	}

	OcorrenciaColumns = []export.Column[Ocorrencia]{
		{Header: "Código", Value: func(o Ocorrencia) string { return strconv.Itoa(o.CodOco) }},
		{Header: "Tipo", Value: func(o Ocorrencia) string { return Text(o.TipoNome) }},
		{Header: "Data", Value: func(o Ocorrencia) string { return o.Data }},
		{Header: "Status", Value: func(o Ocorrencia) string { return o.TipoStatus.Label() }},
		{Header: "Cidade", Value: func(o Ocorrencia) string { return o.Cidade }},
		{Header: "Bairro", Value: func(o Ocorrencia) string { return o.Bairro }},
		{Header: "Endereço", Value: func(o Ocorrencia) string { return o.Endereco }},
		{Header: "Descrição", Value: func(o Ocorrencia) string { return Text(o.Descr) }},
	}

	ServicoColumns = []export.Column[Servico]{
		{Header: "Código", Value: func(s Servico) string { return strconv.Itoa(s.CodServico) }},
		{Header: "Nome", Value: func(s Servico) string { return s.Nome }},
		{Header: "Órgão", Value: func(s Servico) string { return Text(s.OrgaoNome) }},
		{Header: "Ocorrência", Value: func(s Servico) string { return strconv.Itoa(s.CodOcorrencia) }},
		{Header: "Início", Value: func(s Servico) string { return Text(s.InicioServico) }},
		{Header: "Fim", Value: func(s Servico) string { return Text(s.FimServico) }},
		{Header: "Nota média", Value: func(s Servico) string { return Nota(s.NotaMedia) }},
	}

	AvaliacaoColumns = []export.Column[AvaliacaoDisplay]{
		{Header: "Código", Value: func(a AvaliacaoDisplay) string { return strconv.Itoa(a.CodAval) }},
		{Header: "Serviço", Value: func(a AvaliacaoDisplay) string { return a.ServicoNome }},
		{Header: "Órgão", Value: func(a AvaliacaoDisplay) string { return a.OrgaoNome }},
		{Header: "Morador", Value: func(a AvaliacaoDisplay) string { return a.MoradorNome }},
		{Header: "Nota do serviço", Value: func(a AvaliacaoDisplay) string { return strconv.Itoa(a.NotaServ) }},
		{Header: "Nota do tempo", Value: func(a AvaliacaoDisplay) string { return strconv.Itoa(a.NotaTempo) }},
		{Header: "Opinião", Value: func(a AvaliacaoDisplay) string { return Text(a.Opiniao) }},
	}
)

func situacao(ativo bool) string {
	if ativo {
		return "Ativo"
	}
	return "Encerrado"
}
