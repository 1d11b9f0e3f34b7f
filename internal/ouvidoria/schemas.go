package ouvidoria

import (
	"strconv"
	"strings"

	"github.com/gestaozabele/ouvidoria/internal/resource"
)

// Names resolve nomes de registros auxiliares para preencher campos de junção ausentes.
type Names struct {
	Orgao func(cod int) (string, bool)
	Cargo func(cod int) (string, bool)
	Tipo  func(cod int) (string, bool)
}

func (n Names) fill(current *string, lookup func(int) (string, bool), cod int) *string {
	if current != nil && strings.TrimSpace(*current) != "" {
		return current
	}
	if lookup == nil {
		return current
	}
	if name, ok := lookup(cod); ok {
		return &name
	}
	return current
}

var cargoFields = []resource.Field{
	{Name: "nome", Label: "Nome", Kind: resource.KindText, Required: true},
	{Name: "descricao", Label: "Descrição", Kind: resource.KindTextarea},
}

type cargoPayload struct {
	Nome      string  `json:"nome" label:"Nome" validate:"required,max=100"`
	Descricao *string `json:"descricao"`
}

// CargoSchema descreve o recurso /cargos.
func CargoSchema() resource.Schema[Cargo, int] {
	return resource.IntKey(resource.Schema[Cargo, int]{
		Name:     "cargos",
		Messages: resource.MessagesFor(resource.Noun{Singular: "cargo", Plural: "cargos"}),
		Fields:   cargoFields,
		KeyField: "cod_cargo",
		Key:      func(c Cargo) int { return c.CodCargo },
		Search:   func(c Cargo) []string { return []string{c.Nome, deref(c.Descricao)} },
		Normalize: func(c Cargo) Cargo {
			c.Nome = strings.TrimSpace(c.Nome)
			c.Descricao = blankToNil(c.Descricao)
			return c
		},
		Draft: func(c Cargo) *resource.Form {
			form := resource.NewForm(cargoFields)
			setIf(form, "nome", c.Nome)
			setIf(form, "descricao", deref(c.Descricao))
			return form
		},
		Build: func(form *resource.Form, prev *Cargo) (resource.Draft[Cargo], error) {
			nome, err := requireText(form, "nome", "Informe o nome do cargo.")
			if err != nil {
				return resource.Draft[Cargo]{}, err
			}
			payload := cargoPayload{Nome: nome, Descricao: optionalText(form, "descricao")}
			if err := checkPayload(payload); err != nil {
				return resource.Draft[Cargo]{}, err
			}
			local := Cargo{Nome: payload.Nome, Descricao: payload.Descricao}
			if prev != nil {
				local.CodCargo = prev.CodCargo
			}
			return resource.Draft[Cargo]{Payload: payload, Local: local}, nil
		},
	})
}

var orgaoFields = []resource.Field{
	{Name: "nome", Label: "Nome", Kind: resource.KindText, Required: true},
	{Name: "estado", Label: "Estado", Kind: resource.KindText, Required: true},
	{Name: "descr", Label: "Descrição", Kind: resource.KindTextarea},
	{Name: "data_ini", Label: "Data de início", Kind: resource.KindDate, Required: true},
	{Name: "data_fim", Label: "Data de encerramento", Kind: resource.KindDate},
}

type orgaoPayload struct {
	Nome    string  `json:"nome" label:"Nome" validate:"required"`
	Estado  string  `json:"estado" label:"Estado" validate:"required,max=18"`
	Descr   *string `json:"descr"`
	DataIni string  `json:"data_ini" label:"Data de início" validate:"required,datetime=2006-01-02"`
	DataFim *string `json:"data_fim" label:"Data de encerramento" validate:"omitempty,datetime=2006-01-02"`
}

// OrgaoSchema descreve o recurso /orgaos-publicos.
func OrgaoSchema() resource.Schema[OrgaoPublico, int] {
	return resource.IntKey(resource.Schema[OrgaoPublico, int]{
		Name:     "orgaos-publicos",
		Messages: resource.MessagesFor(resource.Noun{Singular: "órgão público", Plural: "órgãos públicos"}),
		Fields:   orgaoFields,
		KeyField: "cod_orgao",
		Key:      func(o OrgaoPublico) int { return o.CodOrgao },
		Search:   func(o OrgaoPublico) []string { return []string{o.Nome, o.Estado, deref(o.Descr)} },
		Normalize: func(o OrgaoPublico) OrgaoPublico {
			o.DataIni = DateOnly(o.DataIni)
			if o.DataFim = blankToNil(o.DataFim); o.DataFim != nil {
				fim := DateOnly(*o.DataFim)
				o.DataFim = &fim
			}
			o.Descr = blankToNil(o.Descr)
			return o
		},
		Draft: func(o OrgaoPublico) *resource.Form {
			form := resource.NewForm(orgaoFields)
			setIf(form, "nome", o.Nome)
			setIf(form, "estado", o.Estado)
			setIf(form, "descr", deref(o.Descr))
			setIf(form, "data_ini", DateOnly(o.DataIni))
			setIf(form, "data_fim", DateOnly(deref(o.DataFim)))
			return form
		},
		Build: func(form *resource.Form, prev *OrgaoPublico) (resource.Draft[OrgaoPublico], error) {
			var zero resource.Draft[OrgaoPublico]
			nome, err := requireText(form, "nome", "Informe o nome do órgão público.")
			if err != nil {
				return zero, err
			}
			estado, err := requireText(form, "estado", "Informe o estado do órgão público.")
			if err != nil {
				return zero, err
			}
			if len([]rune(estado)) > 18 {
				return zero, resource.Invalid("estado", "O estado deve ter no máximo 18 caracteres.")
			}
			dataIni, err := requireDate(form, "data_ini", "Informe a data de início.")
			if err != nil {
				return zero, err
			}
			dataFim, err := optionalDate(form, "data_fim")
			if err != nil {
				return zero, err
			}
			if dataFim != nil && *dataFim < dataIni {
				return zero, resource.Invalid("data_fim", "A data de encerramento deve ser posterior à data de início.")
			}

			payload := orgaoPayload{Nome: nome, Estado: estado, Descr: optionalText(form, "descr"), DataIni: dataIni, DataFim: dataFim}
			if err := checkPayload(payload); err != nil {
				return zero, err
			}
			local := OrgaoPublico{Nome: nome, Estado: estado, Descr: payload.Descr, DataIni: dataIni, DataFim: dataFim}
			if prev != nil {
				local.CodOrgao = prev.CodOrgao
			}
			return resource.Draft[OrgaoPublico]{Payload: payload, Local: local}, nil
		},
	})
}

var funcionarioFields = []resource.Field{
	{Name: "cpf", Label: "CPF", Kind: resource.KindText, Required: true, Locked: true},
	{Name: "nome", Label: "Nome", Kind: resource.KindText, Required: true},
	{Name: "email", Label: "Email", Kind: resource.KindEmail},
	{Name: "orgao_pub", Label: "Órgão público", Kind: resource.KindSelect, Required: true, Options: "orgaos"},
	{Name: "cargo", Label: "Cargo", Kind: resource.KindSelect, Required: true, Options: "cargos"},
	{Name: "data_nasc", Label: "Data de nascimento", Kind: resource.KindDate, Required: true},
	{Name: "inicio_contrato", Label: "Início do contrato", Kind: resource.KindDate, Required: true},
	{Name: "fim_contrato", Label: "Fim do contrato", Kind: resource.KindDate},
	{Name: "foto", Label: "Foto", Kind: resource.KindFile},
}

type funcionarioPayload struct {
	CPF            string  `json:"cpf,omitempty" label:"CPF" validate:"omitempty,len=11,numeric"`
	Nome           string  `json:"nome" label:"Nome" validate:"required"`
	OrgaoPub       int     `json:"orgao_pub" label:"órgão público" validate:"gt=0"`
	Cargo          int     `json:"cargo" label:"cargo" validate:"gt=0"`
	DataNasc       string  `json:"data_nasc" label:"Data de nascimento" validate:"required,datetime=2006-01-02"`
	InicioContrato string  `json:"inicio_contrato" label:"Início do contrato" validate:"required,datetime=2006-01-02"`
	FimContrato    *string `json:"fim_contrato"`
	Email          *string `json:"email,omitempty" label:"Email" validate:"omitempty,email"`
	Foto           *string `json:"foto,omitempty"`
}

// FuncionarioSchema descreve o recurso /funcionarios.
func FuncionarioSchema(names Names) resource.Schema[Funcionario, string] {
	return resource.StringKey(resource.Schema[Funcionario, string]{
		Name:     "funcionarios",
		Messages: resource.MessagesFor(resource.Noun{Singular: "funcionário", Plural: "funcionários"}),
		Fields:   funcionarioFields,
		KeyField: "cpf",
		Key:      func(f Funcionario) string { return f.CPF },
		Search: func(f Funcionario) []string {
			return []string{f.Nome, f.CPF, deref(f.Email), deref(f.OrgaoNome), deref(f.CargoNome)}
		},
		Normalize: func(f Funcionario) Funcionario {
			f.DataNasc = DateOnly(f.DataNasc)
			f.InicioContrato = DateOnly(f.InicioContrato)
			if f.FimContrato = blankToNil(f.FimContrato); f.FimContrato != nil {
				fim := DateOnly(*f.FimContrato)
				f.FimContrato = &fim
			}
			f.Email = blankToNil(f.Email)
			f.Foto = blankToNil(f.Foto)
			f.OrgaoNome = names.fill(f.OrgaoNome, names.Orgao, f.OrgaoPub)
			f.CargoNome = names.fill(f.CargoNome, names.Cargo, f.Cargo)
			return f
		},
		Draft: func(f Funcionario) *resource.Form {
			form := resource.NewForm(funcionarioFields)
			setIf(form, "cpf", f.CPF)
			setIf(form, "nome", f.Nome)
			setIf(form, "email", deref(f.Email))
			setIf(form, "orgao_pub", strconv.Itoa(f.OrgaoPub))
			setIf(form, "cargo", strconv.Itoa(f.Cargo))
			setIf(form, "data_nasc", DateOnly(f.DataNasc))
			setIf(form, "inicio_contrato", DateOnly(f.InicioContrato))
			setIf(form, "fim_contrato", DateOnly(deref(f.FimContrato)))
			return form
		},
		Build: func(form *resource.Form, prev *Funcionario) (resource.Draft[Funcionario], error) {
			var zero resource.Draft[Funcionario]
			var cpf string
			if prev == nil {
				var err error
				if cpf, err = requireCPF(form, "cpf"); err != nil {
					return zero, err
				}
			} else {
				cpf = prev.CPF
			}
			nome, err := requireText(form, "nome", "Informe o nome do funcionário.")
			if err != nil {
				return zero, err
			}
			email, err := optionalEmail(form, "email")
			if err != nil {
				return zero, err
			}
			orgao, err := positiveInt(form, "orgao_pub", "Selecione um órgão público válido.")
			if err != nil {
				return zero, err
			}
			cargo, err := positiveInt(form, "cargo", "Selecione um cargo válido.")
			if err != nil {
				return zero, err
			}
			dataNasc, err := requireDate(form, "data_nasc", "Informe a data de nascimento.")
			if err != nil {
				return zero, err
			}
			inicio, err := requireDate(form, "inicio_contrato", "Informe a data de início do contrato.")
			if err != nil {
				return zero, err
			}
			fim, err := optionalDate(form, "fim_contrato")
			if err != nil {
				return zero, err
			}
			if fim != nil && *fim < inicio {
				return zero, resource.Invalid("fim_contrato", "O fim do contrato deve ser posterior ao início.")
			}
			foto := optionalText(form, "foto")
			if foto != nil {
				if _, err := DecodePhoto(*foto); err != nil {
					return zero, resource.Invalid("foto", "Envie uma imagem válida para a foto.")
				}
			}

			payload := funcionarioPayload{
				Nome:           nome,
				OrgaoPub:       orgao,
				Cargo:          cargo,
				DataNasc:       dataNasc,
				InicioContrato: inicio,
				FimContrato:    fim,
				Email:          email,
				Foto:           foto,
			}
			if prev == nil {
				payload.CPF = cpf
			}
			if err := checkPayload(payload); err != nil {
				return zero, err
			}

			local := Funcionario{
				CPF:            cpf,
				Nome:           nome,
				OrgaoPub:       orgao,
				Cargo:          cargo,
				DataNasc:       dataNasc,
				InicioContrato: inicio,
				FimContrato:    fim,
				Email:          email,
				Foto:           foto,
			}
			if prev != nil && foto == nil {
				local.Foto = prev.Foto
			}
			return resource.Draft[Funcionario]{Payload: payload, Local: local}, nil
		},
	})
}

var moradorFields = []resource.Field{
	{Name: "cpf", Label: "CPF", Kind: resource.KindText, Required: true, Locked: true},
	{Name: "nome", Label: "Nome completo", Kind: resource.KindText, Required: true},
	{Name: "email", Label: "Email", Kind: resource.KindEmail, Required: true},
	{Name: "endereco", Label: "Endereço", Kind: resource.KindText, Required: true},
	{Name: "data_nasc", Label: "Data de nascimento", Kind: resource.KindDate, Required: true},
	{Name: "ddd", Label: "DDD", Kind: resource.KindText},
	{Name: "telefone", Label: "Telefone", Kind: resource.KindText},
	{Name: "estado", Label: "Estado", Kind: resource.KindText, Required: true},
	{Name: "cidade", Label: "Cidade", Kind: resource.KindText, Required: true},
	{Name: "bairro", Label: "Bairro", Kind: resource.KindText, Required: true},
	{Name: "senha", Label: "Senha", Kind: resource.KindPassword},
}

// Localidade agrupa estado, cidade e bairro no payload do backend.
type Localidade struct {
	Estado string `json:"estado" label:"Estado" validate:"required"`
	Cidade string `json:"cidade" label:"Cidade" validate:"required"`
	Bairro string `json:"bairro" label:"Bairro" validate:"required"`
}

type moradorCreatePayload struct {
	CPF        string     `json:"cpf" label:"CPF" validate:"len=11,numeric"`
	Nome       string     `json:"nome" label:"Nome" validate:"required"`
	Endereco   string     `json:"endereco" label:"Endereço" validate:"required"`
	DataNasc   string     `json:"data_nasc" label:"Data de nascimento" validate:"required,datetime=2006-01-02"`
	Senha      string     `json:"senha" label:"Senha" validate:"required"`
	Email      string     `json:"email" label:"Email" validate:"required,email"`
	Telefone   *string    `json:"telefone"`
	DDD        *string    `json:"ddd"`
	Localidade Localidade `json:"localidade"`
}

type moradorUpdatePayload struct {
	Nome       string      `json:"nome" label:"Nome" validate:"required"`
	Endereco   string      `json:"endereco"`
	DataNasc   *string     `json:"data_nasc"`
	Email      string      `json:"email" label:"Email" validate:"required,email"`
	Telefone   *string     `json:"telefone"`
	DDD        *string     `json:"ddd"`
	Localidade *Localidade `json:"localidade,omitempty"`
	Senha      *string     `json:"senha,omitempty"`
}

// MoradorSchema descreve o recurso /moradores: cadastro público e atualização do perfil.
func MoradorSchema() resource.Schema[Morador, string] {
	return resource.StringKey(resource.Schema[Morador, string]{
		Name:     "moradores",
		Messages: moradorMessages(),
		Fields:   moradorFields,
		KeyField: "cpf",
		Key:      func(m Morador) string { return m.CPF },
		Search:   func(m Morador) []string { return []string{m.Nome, m.CPF, deref(m.Email), m.Bairro, m.Cidade} },
		Normalize: func(m Morador) Morador {
			m.Nome = strings.TrimSpace(m.Nome)
			m.Endereco = strings.TrimSpace(m.Endereco)
			m.DataNasc = DateOnly(m.DataNasc)
			m.Estado = strings.TrimSpace(m.Estado)
			m.Cidade = strings.TrimSpace(m.Cidade)
			m.Bairro = strings.TrimSpace(m.Bairro)
			m.Email = blankToNil(m.Email)
			m.Telefone = blankToNil(m.Telefone)
			m.DDD = blankToNil(m.DDD)
			return m
		},
		Draft: func(m Morador) *resource.Form {
			form := resource.NewForm(moradorFields)
			setIf(form, "cpf", m.CPF)
			setIf(form, "nome", m.Nome)
			setIf(form, "email", deref(m.Email))
			setIf(form, "endereco", m.Endereco)
			setIf(form, "data_nasc", DateOnly(m.DataNasc))
			setIf(form, "ddd", deref(m.DDD))
			setIf(form, "telefone", deref(m.Telefone))
			setIf(form, "estado", m.Estado)
			setIf(form, "cidade", m.Cidade)
			setIf(form, "bairro", m.Bairro)
			return form
		},
		Build: buildMorador,
	})
}

func moradorMessages() resource.Messages {
	msgs := resource.MessagesFor(resource.Noun{Singular: "morador", Plural: "moradores"})
	msgs.Created = "Cadastro realizado com sucesso."
	msgs.CreateFailed = "Não foi possível concluir o cadastro."
	msgs.Updated = "Dados atualizados com sucesso."
	msgs.UpdateFailed = "Não foi possível atualizar as informações."
	msgs.LoadFailed = "Não foi possível carregar as informações."
	return msgs
}

func digitsOrNil(form *resource.Form, field string) *string {
	value := optionalText(form, field)
	if value == nil {
		return nil
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, *value)
	if digits == "" {
		return nil
	}
	return &digits
}

func buildMorador(form *resource.Form, prev *Morador) (resource.Draft[Morador], error) {
	var zero resource.Draft[Morador]
	nome, err := requireText(form, "nome", "Informe o nome completo.")
	if err != nil {
		return zero, err
	}
	email, err := requireText(form, "email", "Informe um email válido.")
	if err != nil {
		return zero, err
	}
	if _, err := optionalEmail(form, "email"); err != nil {
		return zero, err
	}
	estado, cidade, bairro := form.Trimmed("estado"), form.Trimmed("cidade"), form.Trimmed("bairro")
	hasLocalidade := estado != "" || cidade != "" || bairro != ""
	telefone, ddd := digitsOrNil(form, "telefone"), digitsOrNil(form, "ddd")

	if prev == nil {
		endereco, err := requireText(form, "endereco", "Informe o endereço completo.")
		if err != nil {
			return zero, err
		}
		cpf, err := requireCPF(form, "cpf")
		if err != nil {
			return zero, err
		}
		dataNasc, err := requireDate(form, "data_nasc", "Informe a data de nascimento.")
		if err != nil {
			return zero, err
		}
		senha, err := requirePassword(form, "senha")
		if err != nil {
			return zero, err
		}
		if estado == "" || cidade == "" || bairro == "" {
			return zero, resource.Invalid("estado", "Informe estado, cidade e bairro para definir sua localidade.")
		}

		payload := moradorCreatePayload{
			CPF: cpf, Nome: nome, Endereco: endereco, DataNasc: dataNasc, Senha: senha, Email: email,
			Telefone: telefone, DDD: ddd,
			Localidade: Localidade{Estado: estado, Cidade: cidade, Bairro: bairro},
		}
		if err := checkPayload(payload); err != nil {
			return zero, err
		}
		local := Morador{
			CPF: cpf, Nome: nome, Email: &email, Endereco: endereco, DataNasc: dataNasc,
			Telefone: telefone, DDD: ddd, Estado: estado, Cidade: cidade, Bairro: bairro,
		}
		return resource.Draft[Morador]{Payload: payload, Local: local}, nil
	}

	if hasLocalidade && (estado == "" || cidade == "" || bairro == "") {
		return zero, resource.Invalid("estado", "Informe estado, cidade e bairro para atualizar a localidade.")
	}
	dataNasc, err := optionalDate(form, "data_nasc")
	if err != nil {
		return zero, err
	}
	senha := optionalText(form, "senha")
	if senha != nil {
		if _, err := requirePassword(form, "senha"); err != nil {
			return zero, err
		}
	}
	payload := moradorUpdatePayload{
		Nome:     nome,
		Endereco: form.Trimmed("endereco"),
		DataNasc: dataNasc,
		Email:    email,
		Telefone: telefone,
		DDD:      ddd,
		Senha:    senha,
	}
	local := *prev
	local.Nome, local.Email, local.Endereco = nome, &email, payload.Endereco
	local.Telefone, local.DDD = telefone, ddd
	if dataNasc != nil {
		local.DataNasc = *dataNasc
	}
	if hasLocalidade {
		payload.Localidade = &Localidade{Estado: estado, Cidade: cidade, Bairro: bairro}
		local.Estado, local.Cidade, local.Bairro = estado, cidade, bairro
	}
	if err := checkPayload(payload); err != nil {
		return zero, err
	}
	return resource.Draft[Morador]{Payload: payload, Local: local}, nil
}

// TipoSchema descreve a listagem somente leitura /tipos-ocorrencias.
func TipoSchema() resource.Schema[TipoOcorrencia, int] {
	return resource.IntKey(resource.Schema[TipoOcorrencia, int]{
		Name:     "tipos-ocorrencias",
		Messages: resource.MessagesFor(resource.Noun{Singular: "tipo de ocorrência", Plural: "tipos de ocorrência"}),
		KeyField: "cod_tipo",
		Key:      func(t TipoOcorrencia) int { return t.CodTipo },
		Search:   func(t TipoOcorrencia) []string { return []string{t.Nome} },
		Less:     func(a, b TipoOcorrencia) bool { return a.Nome < b.Nome },
	})
}

var ocorrenciaFields = []resource.Field{
	{Name: "cod_tipo", Label: "Tipo de ocorrência", Kind: resource.KindSelect, Required: true, Options: "tipos"},
	{Name: "estado", Label: "Estado", Kind: resource.KindText, Required: true},
	{Name: "cidade", Label: "Cidade", Kind: resource.KindText, Required: true},
	{Name: "bairro", Label: "Bairro", Kind: resource.KindText, Required: true},
	{Name: "endereco", Label: "Endereço", Kind: resource.KindText, Required: true},
	{Name: "data", Label: "Data", Kind: resource.KindDate, Required: true},
	{Name: "descr", Label: "Descrição", Kind: resource.KindTextarea},
}

type ocorrenciaCreatePayload struct {
	CodTipo    int        `json:"cod_tipo" label:"tipo de ocorrência" validate:"gt=0"`
	CPFMorador string     `json:"cpf_morador" label:"CPF do morador" validate:"required"`
	Endereco   string     `json:"endereco" label:"Endereço" validate:"required"`
	Data       string     `json:"data" label:"Data" validate:"required,datetime=2006-01-02"`
	Descr      *string    `json:"descr"`
	Localidade Localidade `json:"localidade"`
}

type ocorrenciaUpdatePayload struct {
	CodTipo    int        `json:"cod_tipo" label:"tipo de ocorrência" validate:"gt=0"`
	Endereco   string     `json:"endereco" label:"Endereço" validate:"required"`
	Data       string     `json:"data" label:"Data" validate:"required,datetime=2006-01-02"`
	Descr      *string    `json:"descr"`
	Localidade Localidade `json:"localidade"`
}

// OcorrenciaSchema descreve o recurso /ocorrencias. cpf é o morador autor dos novos registros.
func OcorrenciaSchema(cpf string, names Names) resource.Schema[Ocorrencia, int] {
	return resource.IntKey(resource.Schema[Ocorrencia, int]{
		Name:     "ocorrencias",
		Messages: resource.MessagesFor(resource.Noun{Singular: "ocorrência", Plural: "ocorrências", Feminine: true}),
		Fields:   ocorrenciaFields,
		KeyField: "cod_oco",
		Key:      func(o Ocorrencia) int { return o.CodOco },
		Search: func(o Ocorrencia) []string {
			return []string{deref(o.TipoNome), o.Endereco, o.Bairro, o.Cidade, deref(o.Descr), string(o.TipoStatus), deref(o.MoradorNome)}
		},
		Normalize: func(o Ocorrencia) Ocorrencia {
			o.Estado = strings.TrimSpace(o.Estado)
			o.Cidade = strings.TrimSpace(o.Cidade)
			o.Bairro = strings.TrimSpace(o.Bairro)
			o.Data = DateOnly(o.Data)
			o.Descr = blankToNil(o.Descr)
			o.TipoNome = names.fill(o.TipoNome, names.Tipo, o.CodTipo)
			return o
		},
		Draft: func(o Ocorrencia) *resource.Form {
			form := resource.NewForm(ocorrenciaFields)
			setIf(form, "cod_tipo", strconv.Itoa(o.CodTipo))
			setIf(form, "estado", o.Estado)
			setIf(form, "cidade", o.Cidade)
			setIf(form, "bairro", o.Bairro)
			setIf(form, "endereco", o.Endereco)
			setIf(form, "data", DateOnly(o.Data))
			setIf(form, "descr", deref(o.Descr))
			return form
		},
		Build: func(form *resource.Form, prev *Ocorrencia) (resource.Draft[Ocorrencia], error) {
			var zero resource.Draft[Ocorrencia]
			codTipo, err := positiveInt(form, "cod_tipo", "Selecione o tipo de ocorrência.")
			if err != nil {
				return zero, err
			}
			estado, cidade, bairro := form.Trimmed("estado"), form.Trimmed("cidade"), form.Trimmed("bairro")
			if estado == "" || cidade == "" || bairro == "" {
				return zero, resource.Invalid("estado", "Informe estado, cidade e bairro da ocorrência.")
			}
			endereco, err := requireText(form, "endereco", "Informe o endereço da ocorrência.")
			if err != nil {
				return zero, err
			}
			data, err := requireDate(form, "data", "Informe a data da ocorrência.")
			if err != nil {
				return zero, err
			}
			descr := optionalText(form, "descr")
			loc := Localidade{Estado: estado, Cidade: cidade, Bairro: bairro}

			if prev == nil {
				author := strings.TrimSpace(cpf)
				if author == "" {
					return zero, resource.Invalid("", "Faça login para registrar uma ocorrência.")
				}
				payload := ocorrenciaCreatePayload{CodTipo: codTipo, CPFMorador: author, Endereco: endereco, Data: data, Descr: descr, Localidade: loc}
				if err := checkPayload(payload); err != nil {
					return zero, err
				}
				local := Ocorrencia{
					CodTipo: codTipo, Estado: estado, Cidade: cidade, Bairro: bairro, Endereco: endereco,
					CPFMorador: author, Data: data, TipoStatus: StatusNaoIniciada, Descr: descr,
				}
				return resource.Draft[Ocorrencia]{Payload: payload, Local: local}, nil
			}

			payload := ocorrenciaUpdatePayload{CodTipo: codTipo, Endereco: endereco, Data: data, Descr: descr, Localidade: loc}
			if err := checkPayload(payload); err != nil {
				return zero, err
			}
			local := *prev
			if local.CodTipo != codTipo {
				local.TipoNome = nil
			}
			local.CodTipo, local.Estado, local.Cidade, local.Bairro = codTipo, estado, cidade, bairro
			local.Endereco, local.Data, local.Descr = endereco, data, descr
			return resource.Draft[Ocorrencia]{Payload: payload, Local: local}, nil
		},
	})
}

var servicoFields = []resource.Field{
	{Name: "nome", Label: "Nome", Kind: resource.KindText, Required: true},
	{Name: "cod_orgao", Label: "Órgão público", Kind: resource.KindSelect, Required: true, Options: "orgaos"},
	{Name: "cod_ocorrencia", Label: "Ocorrência", Kind: resource.KindSelect, Required: true, Options: "ocorrencias", Locked: true},
	{Name: "descr", Label: "Descrição", Kind: resource.KindTextarea},
	{Name: "inicio_servico", Label: "Início", Kind: resource.KindDate},
	{Name: "fim_servico", Label: "Fim", Kind: resource.KindDate},
}

type servicoCreatePayload struct {
	Nome          string  `json:"nome" label:"Nome" validate:"required"`
	CodOrgao      int     `json:"cod_orgao" label:"órgão público" validate:"gt=0"`
	CodOcorrencia int     `json:"cod_ocorrencia" label:"ocorrência" validate:"gt=0"`
	Descr         *string `json:"descr"`
	InicioServico *string `json:"inicio_servico"`
	FimServico    *string `json:"fim_servico"`
}

type servicoUpdatePayload struct {
	Nome          string  `json:"nome" label:"Nome" validate:"required"`
	CodOrgao      int     `json:"cod_orgao" label:"órgão público" validate:"gt=0"`
	Descr         *string `json:"descr"`
	InicioServico *string `json:"inicio_servico"`
	FimServico    *string `json:"fim_servico"`
}

// ServicoSchema descreve o recurso /servicos, exibido em ordem de código.
func ServicoSchema(names Names) resource.Schema[Servico, int] {
	return resource.IntKey(resource.Schema[Servico, int]{
		Name:     "servicos",
		Messages: resource.MessagesFor(resource.Noun{Singular: "serviço", Plural: "serviços"}),
		Fields:   servicoFields,
		KeyField: "cod_servico",
		Key:      func(s Servico) int { return s.CodServico },
		Search:   func(s Servico) []string { return []string{s.Nome, deref(s.Descr), deref(s.OrgaoNome)} },
		Less:     func(a, b Servico) bool { return a.CodServico < b.CodServico },
		Normalize: func(s Servico) Servico {
			s.Descr = blankToNil(s.Descr)
			if s.InicioServico = blankToNil(s.InicioServico); s.InicioServico != nil {
				v := DateOnly(*s.InicioServico)
				s.InicioServico = &v
			}
			if s.FimServico = blankToNil(s.FimServico); s.FimServico != nil {
				v := DateOnly(*s.FimServico)
				s.FimServico = &v
			}
			s.OrgaoNome = names.fill(s.OrgaoNome, names.Orgao, s.CodOrgao)
			return s
		},
		Draft: func(s Servico) *resource.Form {
			form := resource.NewForm(servicoFields)
			setIf(form, "nome", s.Nome)
			setIf(form, "cod_orgao", strconv.Itoa(s.CodOrgao))
			setIf(form, "cod_ocorrencia", strconv.Itoa(s.CodOcorrencia))
			setIf(form, "descr", deref(s.Descr))
			setIf(form, "inicio_servico", DateOnly(deref(s.InicioServico)))
			setIf(form, "fim_servico", DateOnly(deref(s.FimServico)))
			return form
		},
		Build: func(form *resource.Form, prev *Servico) (resource.Draft[Servico], error) {
			var zero resource.Draft[Servico]
			nome, err := requireText(form, "nome", "Informe o nome do serviço.")
			if err != nil {
				return zero, err
			}
			codOrgao, err := positiveInt(form, "cod_orgao", "Selecione um órgão público válido.")
			if err != nil {
				return zero, err
			}
			inicio, err := optionalDate(form, "inicio_servico")
			if err != nil {
				return zero, err
			}
			fim, err := optionalDate(form, "fim_servico")
			if err != nil {
				return zero, err
			}
			if inicio != nil && fim != nil && *fim < *inicio {
				return zero, resource.Invalid("fim_servico", "O fim do serviço deve ser posterior ao início.")
			}
			descr := optionalText(form, "descr")

			if prev == nil {
				codOco, err := positiveInt(form, "cod_ocorrencia", "Selecione a ocorrência vinculada.")
				if err != nil {
					return zero, err
				}
				payload := servicoCreatePayload{Nome: nome, CodOrgao: codOrgao, CodOcorrencia: codOco, Descr: descr, InicioServico: inicio, FimServico: fim}
				if err := checkPayload(payload); err != nil {
					return zero, err
				}
				local := Servico{Nome: nome, CodOrgao: codOrgao, CodOcorrencia: codOco, Descr: descr, InicioServico: inicio, FimServico: fim}
				return resource.Draft[Servico]{Payload: payload, Local: local}, nil
			}

			payload := servicoUpdatePayload{Nome: nome, CodOrgao: codOrgao, Descr: descr, InicioServico: inicio, FimServico: fim}
			if err := checkPayload(payload); err != nil {
				return zero, err
			}
			local := *prev
			if local.CodOrgao != codOrgao {
				local.OrgaoNome = nil
			}
			local.Nome, local.CodOrgao, local.Descr = nome, codOrgao, descr
			local.InicioServico, local.FimServico = inicio, fim
			return resource.Draft[Servico]{Payload: payload, Local: local}, nil
		},
	})
}

// AvaliacaoSchema descreve a listagem /avaliacoes exibida aos funcionários.
func AvaliacaoSchema() resource.Schema[Avaliacao, int] {
	return resource.IntKey(resource.Schema[Avaliacao, int]{
		Name:     "avaliacoes",
		Messages: resource.MessagesFor(resource.Noun{Singular: "avaliação", Plural: "avaliações", Feminine: true}),
		KeyField: "cod_aval",
		Key:      func(a Avaliacao) int { return a.CodAval },
		Search: func(a Avaliacao) []string {
			return []string{deref(a.ServicoNome), deref(a.MoradorNome), deref(a.Opiniao), deref(a.OrgaoNome)}
		},
		Normalize: func(a Avaliacao) Avaliacao {
			a.Opiniao = blankToNil(a.Opiniao)
			return a
		},
	})
}
