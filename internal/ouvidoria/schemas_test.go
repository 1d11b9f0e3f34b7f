package ouvidoria

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaozabele/ouvidoria/internal/resource"
)

func form(fields []resource.Field, values map[string]string) *resource.Form {
	f := resource.NewForm(fields)
	for k, v := range values {
		if err := f.Set(k, v); err != nil {
			panic(err)
		}
	}
	return f
}

func TestCargoEmptyDescricaoBecomesNull(t *testing.T) {
	schema := CargoSchema()
	draft, err := schema.Build(form(cargoFields, map[string]string{"nome": " Analista ", "descricao": "   "}), nil)
	require.NoError(t, err)

	body, err := json.Marshal(draft.Payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nome": "Analista", "descricao": null}`, string(body))
	assert.Nil(t, draft.Local.Descricao)
	assert.Equal(t, Placeholder, Text(draft.Local.Descricao))
}

func TestCargoRequiresNome(t *testing.T) {
	_, err := CargoSchema().Build(form(cargoFields, map[string]string{"descricao": "x"}), nil)
	var verr *resource.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Informe o nome do cargo.", verr.Message)
}

func TestCargoNormalizeBlankDescricao(t *testing.T) {
	blank := ""
	c := CargoSchema().Normalize(Cargo{CodCargo: 1, Nome: "A", Descricao: &blank})
	assert.Nil(t, c.Descricao)
}

func TestOrgaoValidation(t *testing.T) {
	schema := OrgaoSchema()
	base := map[string]string{"nome": "Secretaria de Obras", "estado": "PE", "data_ini": "2024-01-10"}

	draft, err := schema.Build(form(orgaoFields, base), nil)
	require.NoError(t, err)
	assert.True(t, draft.Local.Ativo())

	bad := map[string]string{"nome": "X", "estado": "PE", "data_ini": "2024-01-10", "data_fim": "2023-12-31"}
	_, err = schema.Build(form(orgaoFields, bad), nil)
	assert.EqualError(t, err, "A data de encerramento deve ser posterior à data de início.")

	long := map[string]string{"nome": "X", "estado": "Estado com nome muito longo", "data_ini": "2024-01-10"}
	_, err = schema.Build(form(orgaoFields, long), nil)
	assert.Error(t, err)

	invalid := map[string]string{"nome": "X", "estado": "PE", "data_ini": "10/01/2024"}
	_, err = schema.Build(form(orgaoFields, invalid), nil)
	assert.EqualError(t, err, "Data inválida. Use o formato AAAA-MM-DD.")
}

func TestFuncionarioBuild(t *testing.T) {
	names := Names{
		Orgao: func(cod int) (string, bool) { return "Secretaria de Saúde", cod == 2 },
		Cargo: func(cod int) (string, bool) { return "Enfermeiro", cod == 3 },
	}
	schema := FuncionarioSchema(names)
	values := map[string]string{
		"cpf": "123.456.789-01", "nome": "Ana", "orgao_pub": "2", "cargo": "3",
		"data_nasc": "1990-05-01", "inicio_contrato": "2020-01-01",
	}

	draft, err := schema.Build(form(funcionarioFields, values), nil)
	require.NoError(t, err)
	body, _ := json.Marshal(draft.Payload)
	assert.JSONEq(t, `{"cpf":"12345678901","nome":"Ana","orgao_pub":2,"cargo":3,"data_nasc":"1990-05-01","inicio_contrato":"2020-01-01","fim_contrato":null}`, string(body))

	normalized := schema.Normalize(draft.Local)
	require.NotNil(t, normalized.OrgaoNome)
	assert.Equal(t, "Secretaria de Saúde", *normalized.OrgaoNome)
	assert.Equal(t, "Enfermeiro", *normalized.CargoNome)

	values["orgao_pub"] = "0"
	_, err = schema.Build(form(funcionarioFields, values), nil)
	assert.EqualError(t, err, "Selecione um órgão público válido.")

	values["orgao_pub"] = "2"
	values["cpf"] = "123"
	_, err = schema.Build(form(funcionarioFields, values), nil)
	assert.EqualError(t, err, "Informe um CPF válido com 11 dígitos.")
}

func TestFuncionarioUpdateKeepsCPF(t *testing.T) {
	schema := FuncionarioSchema(Names{})
	prev := Funcionario{CPF: "12345678901", Nome: "Ana", OrgaoPub: 2, Cargo: 3, DataNasc: "1990-05-01", InicioContrato: "2020-01-01"}
	f := schema.Draft(prev)
	require.NoError(t, f.Set("nome", "Ana Maria"))
	require.NoError(t, f.Set("cpf", "99999999999"))

	draft, err := schema.Build(f, &prev)
	require.NoError(t, err)
	assert.Equal(t, "12345678901", draft.Local.CPF)
	body, _ := json.Marshal(draft.Payload)
	assert.NotContains(t, string(body), "cpf")
}

func TestMoradorCreateAndUpdate(t *testing.T) {
	schema := MoradorSchema()
	values := map[string]string{
		"cpf": "12345678901", "nome": "Joana", "email": "joana@exemplo.com", "endereco": "Rua A, 10",
		"data_nasc": "1985-02-03", "senha": "segredo", "estado": "PE", "cidade": "Recife", "bairro": "Boa Vista",
		"telefone": "(81) 9999-0000", "ddd": "81",
	}
	draft, err := schema.Build(form(moradorFields, values), nil)
	require.NoError(t, err)
	payload := draft.Payload.(moradorCreatePayload)
	assert.Equal(t, Localidade{Estado: "PE", Cidade: "Recife", Bairro: "Boa Vista"}, payload.Localidade)
	assert.Equal(t, "8199990000", *payload.Telefone)

	delete(values, "bairro")
	_, err = schema.Build(form(moradorFields, values), nil)
	assert.EqualError(t, err, "Informe estado, cidade e bairro para definir sua localidade.")

	prev := draft.Local
	update := map[string]string{"nome": "Joana S.", "email": "joana@exemplo.com", "estado": "PE"}
	_, err = schema.Build(form(moradorFields, update), &prev)
	assert.EqualError(t, err, "Informe estado, cidade e bairro para atualizar a localidade.")

	delete(update, "estado")
	draft, err = schema.Build(form(moradorFields, update), &prev)
	require.NoError(t, err)
	up := draft.Payload.(moradorUpdatePayload)
	assert.Nil(t, up.Localidade)
	assert.Nil(t, up.Senha)
	assert.Equal(t, "Recife", draft.Local.Cidade)
}

func TestMoradorPasswordLength(t *testing.T) {
	schema := MoradorSchema()
	values := map[string]string{
		"cpf": "12345678901", "nome": "Joana", "email": "joana@exemplo.com", "endereco": "Rua A, 10",
		"data_nasc": "1985-02-03", "senha": "abc", "estado": "PE", "cidade": "Recife", "bairro": "Boa Vista",
	}
	_, err := schema.Build(form(moradorFields, values), nil)
	var verr *resource.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "senha", verr.Field)
	assert.EqualError(t, err, "A senha deve ter pelo menos 6 caracteres.")

	prev := Morador{CPF: "12345678901", Nome: "Joana"}
	update := map[string]string{"nome": "Joana", "email": "joana@exemplo.com", "senha": "12345"}
	_, err = schema.Build(form(moradorFields, update), &prev)
	assert.EqualError(t, err, "A senha deve ter pelo menos 6 caracteres.")
}

func TestOcorrenciaCreateRequiresAuthor(t *testing.T) {
	values := map[string]string{"cod_tipo": "1", "estado": "PE", "cidade": "Recife", "bairro": "Centro", "endereco": "Rua B", "data": "2024-03-01"}

	_, err := OcorrenciaSchema("", Names{}).Build(form(ocorrenciaFields, values), nil)
	assert.EqualError(t, err, "Faça login para registrar uma ocorrência.")

	draft, err := OcorrenciaSchema("12345678901", Names{}).Build(form(ocorrenciaFields, values), nil)
	require.NoError(t, err)
	body, _ := json.Marshal(draft.Payload)
	assert.JSONEq(t, `{"cod_tipo":1,"cpf_morador":"12345678901","endereco":"Rua B","data":"2024-03-01","descr":null,"localidade":{"estado":"PE","cidade":"Recife","bairro":"Centro"}}`, string(body))
	assert.Equal(t, StatusNaoIniciada, draft.Local.TipoStatus)
}

func TestServicoViewSortedByCode(t *testing.T) {
	remote := &staticRemote[Servico]{items: []Servico{{CodServico: 3, Nome: "C"}, {CodServico: 1, Nome: "A"}, {CodServico: 2, Nome: "B"}}}
	m := resource.NewManager(ServicoSchema(Names{}), remote)
	require.NoError(t, m.Load(context.Background()))

	view := m.View("")
	assert.Equal(t, []int{1, 2, 3}, []int{view[0].CodServico, view[1].CodServico, view[2].CodServico})
	assert.Equal(t, 3, m.Items()[0].CodServico)
}

func TestServicoUpdateOmitsOcorrencia(t *testing.T) {
	prev := Servico{CodServico: 5, CodOrgao: 1, CodOcorrencia: 9, Nome: "Poda"}
	f := ServicoSchema(Names{}).Draft(prev)
	require.NoError(t, f.Set("cod_orgao", "2"))
	draft, err := ServicoSchema(Names{}).Build(f, &prev)
	require.NoError(t, err)
	body, _ := json.Marshal(draft.Payload)
	assert.NotContains(t, string(body), "cod_ocorrencia")
	assert.Equal(t, 9, draft.Local.CodOcorrencia)
	assert.Equal(t, 2, draft.Local.CodOrgao)
}

type staticRemote[T any] struct {
	items []T
}

func (s *staticRemote[T]) List(ctx context.Context) ([]T, error) { return s.items, nil }
func (s *staticRemote[T]) Create(ctx context.Context, payload any) (json.RawMessage, error) {
	return nil, nil
}
func (s *staticRemote[T]) Update(ctx context.Context, key string, payload any) (json.RawMessage, error) {
	return nil, nil
}
func (s *staticRemote[T]) Delete(ctx context.Context, key string) error { return nil }
