package ouvidoria

import "github.com/shopspring/decimal"

// Cargo é um cargo ocupado por funcionários.
type Cargo struct {
	CodCargo  int     `json:"cod_cargo"`
	Nome      string  `json:"nome"`
	Descricao *string `json:"descricao"`
}

// OrgaoPublico é um órgão responsável por serviços. Ativo enquanto data_fim for nula.
type OrgaoPublico struct {
	CodOrgao int     `json:"cod_orgao"`
	Nome     string  `json:"nome"`
	Estado   string  `json:"estado"`
	Descr    *string `json:"descr"`
	DataIni  string  `json:"data_ini"`
	DataFim  *string `json:"data_fim"`
}

// Ativo informa se o órgão não foi encerrado.
func (o OrgaoPublico) Ativo() bool {
	return o.DataFim == nil || *o.DataFim == ""
}

// Funcionario é um servidor vinculado a órgão e cargo.
type Funcionario struct {
	CPF            string  `json:"cpf"`
	Nome           string  `json:"nome"`
	OrgaoPub       int     `json:"orgao_pub"`
	OrgaoNome      *string `json:"orgao_nome"`
	Cargo          int     `json:"cargo"`
	CargoNome      *string `json:"cargo_nome"`
	DataNasc       string  `json:"data_nasc"`
	InicioContrato string  `json:"inicio_contrato"`
	FimContrato    *string `json:"fim_contrato"`
	Email          *string `json:"email"`
	Foto           *string `json:"foto,omitempty"`
}

// Morador é o cidadão que registra ocorrências.
type Morador struct {
	CPF      string  `json:"cpf"`
	Nome     string  `json:"nome"`
	Email    *string `json:"email"`
	Endereco string  `json:"endereco"`
	DataNasc string  `json:"data_nasc"`
	Telefone *string `json:"telefone"`
	DDD      *string `json:"ddd"`
	CodLocal *int    `json:"cod_local"`
	Estado   string  `json:"estado"`
	Cidade   string  `json:"cidade"`
	Bairro   string  `json:"bairro"`
}

// TipoOcorrencia classifica ocorrências.
type TipoOcorrencia struct {
	CodTipo int     `json:"cod_tipo"`
	Nome    string  `json:"nome"`
	Descr   *string `json:"descr"`
}

// Ocorrencia é uma manifestação registrada por um morador.
type Ocorrencia struct {
	CodOco      int     `json:"cod_oco"`
	CodTipo     int     `json:"cod_tipo"`
	TipoNome    *string `json:"tipo_nome"`
	CodLocal    *int    `json:"cod_local"`
	Estado      string  `json:"estado"`
	Cidade      string  `json:"cidade"`
	Bairro      string  `json:"bairro"`
	Endereco    string  `json:"endereco"`
	CPFMorador  string  `json:"cpf_morador"`
	MoradorNome *string `json:"morador_nome"`
	Data        string  `json:"data"`
	TipoStatus  Status  `json:"tipo_status"`
	Descr       *string `json:"descr"`
	CodServico  *int    `json:"cod_servico,omitempty"`
}

// Servico é o atendimento de uma ocorrência por um órgão.
type Servico struct {
	CodServico       int                 `json:"cod_servico"`
	CodOrgao         int                 `json:"cod_orgao"`
	OrgaoNome        *string             `json:"orgao_nome"`
	CodOcorrencia    int                 `json:"cod_ocorrencia"`
	OcorrenciaStatus *string             `json:"ocorrencia_status"`
	Nome             string              `json:"nome"`
	Descr            *string             `json:"descr"`
	InicioServico    *string             `json:"inicio_servico"`
	FimServico       *string             `json:"fim_servico"`
	NotaMedia        decimal.NullDecimal `json:"nota_media_servico"`
}

// Avaliacao é a nota dada por um morador a um serviço concluído.
type Avaliacao struct {
	CodAval          int     `json:"cod_aval"`
	CodOcorrencia    int     `json:"cod_ocorrencia"`
	CodServico       int     `json:"cod_servico"`
	CPFMorador       string  `json:"cpf_morador"`
	NotaServ         int     `json:"nota_serv"`
	NotaTempo        int     `json:"nota_tempo"`
	Opiniao          *string `json:"opiniao"`
	ServicoNome      *string `json:"servico_nome"`
	MoradorNome      *string `json:"morador_nome"`
	OrgaoNome        *string `json:"orgao_nome"`
	OcorrenciaStatus *string `json:"ocorrencia_status"`
}
