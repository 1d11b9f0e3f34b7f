package ouvidoria

import "github.com/gestaozabele/ouvidoria/internal/backend"

// API reúne as coleções do backend usadas pelo portal.
type API struct {
	Cargos       *backend.Endpoint[Cargo]
	Orgaos       *backend.Endpoint[OrgaoPublico]
	Funcionarios *backend.Endpoint[Funcionario]
	Moradores    *backend.Endpoint[Morador]
	Tipos        *backend.Endpoint[TipoOcorrencia]
	Ocorrencias  *backend.Endpoint[Ocorrencia]
	Servicos     *backend.Endpoint[Servico]
	Avaliacoes   *backend.Endpoint[Avaliacao]
}

// NewAPI monta os endpoints sobre o cliente.
func NewAPI(client *backend.Client) *API {
	return &API{
		Cargos:       backend.NewEndpoint[Cargo](client, "/cargos"),
		Orgaos:       backend.NewEndpoint[OrgaoPublico](client, "/orgaos-publicos"),
		Funcionarios: backend.NewEndpoint[Funcionario](client, "/funcionarios"),
		Moradores:    backend.NewEndpoint[Morador](client, "/moradores"),
		Tipos:        backend.NewEndpoint[TipoOcorrencia](client, "/tipos-ocorrencias"),
		Ocorrencias:  backend.NewEndpoint[Ocorrencia](client, "/ocorrencias"),
		Servicos:     backend.NewEndpoint[Servico](client, "/servicos"),
		Avaliacoes:   backend.NewEndpoint[Avaliacao](client, "/avaliacoes"),
	}
}
