package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/gestaozabele/ouvidoria/internal/export"
	"github.com/gestaozabele/ouvidoria/internal/ouvidoria"
	"github.com/gestaozabele/ouvidoria/internal/resource"
)

// catalog mantém um gerenciador por recurso, como o portal faz por sessão de funcionário.
type catalog struct {
	cargos       *resource.Manager[ouvidoria.Cargo, int]
	orgaos       *resource.Manager[ouvidoria.OrgaoPublico, int]
	funcionarios *resource.Manager[ouvidoria.Funcionario, string]
	moradores    *resource.Manager[ouvidoria.Morador, string]
	tipos        *resource.Manager[ouvidoria.TipoOcorrencia, int]
	ocorrencias  *resource.Manager[ouvidoria.Ocorrencia, int]
	servicos     *resource.Manager[ouvidoria.Servico, int]
	avaliacoes   *resource.Manager[ouvidoria.Avaliacao, int]
}

type source func(ctx context.Context, query string) (export.Sheet, error)

func newCatalog(api *ouvidoria.API) *catalog {
	c := &catalog{}
	names := ouvidoria.Names{
		Orgao: func(cod int) (string, bool) { o, ok := c.orgaos.Find(cod); return o.Nome, ok },
		Cargo: func(cod int) (string, bool) { v, ok := c.cargos.Find(cod); return v.Nome, ok },
		Tipo:  func(cod int) (string, bool) { t, ok := c.tipos.Find(cod); return t.Nome, ok },
	}
	c.cargos = resource.NewManager(ouvidoria.CargoSchema(), api.Cargos)
	c.orgaos = resource.NewManager(ouvidoria.OrgaoSchema(), api.Orgaos)
	c.funcionarios = resource.NewManager(ouvidoria.FuncionarioSchema(names), api.Funcionarios)
	c.moradores = resource.NewManager(ouvidoria.MoradorSchema(), api.Moradores)
	c.tipos = resource.NewManager(ouvidoria.TipoSchema(), api.Tipos)
	c.ocorrencias = resource.NewManager(ouvidoria.OcorrenciaSchema("", names), api.Ocorrencias)
	c.servicos = resource.NewManager(ouvidoria.ServicoSchema(names), api.Servicos)
	c.avaliacoes = resource.NewManager(ouvidoria.AvaliacaoSchema(), api.Avaliacoes)
	return c
}

func (c *catalog) sources() map[string]source {
	return map[string]source{
		"cargos": func(ctx context.Context, q string) (export.Sheet, error) {
			return sheetOf(ctx, c.cargos, "Cargos", ouvidoria.CargoColumns, q)
		},
		"orgaos": func(ctx context.Context, q string) (export.Sheet, error) {
			return sheetOf(ctx, c.orgaos, "Órgãos públicos", ouvidoria.OrgaoColumns, q)
		},
		"funcionarios": func(ctx context.Context, q string) (export.Sheet, error) {
			return sheetOf(ctx, c.funcionarios, "Funcionários", ouvidoria.FuncionarioColumns, q, c.orgaos, c.cargos)
		},
		"ocorrencias": func(ctx context.Context, q string) (export.Sheet, error) {
			return sheetOf(ctx, c.ocorrencias, "Ocorrências", ouvidoria.OcorrenciaColumns, q, c.tipos)
		},
		"servicos": func(ctx context.Context, q string) (export.Sheet, error) {
			return sheetOf(ctx, c.servicos, "Serviços", ouvidoria.ServicoColumns, q, c.orgaos)
		},
		"avaliacoes": c.avaliacoesSheet,
	}
}

// names devolve os recursos disponíveis em ordem alfabética.
func (c *catalog) names() []string {
	srcs := c.sources()
	out := make([]string, 0, len(srcs))
	for name := range srcs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (c *catalog) sheet(ctx context.Context, name, query string) (export.Sheet, error) {
	src, ok := c.sources()[name]
	if !ok {
		return export.Sheet{}, fmt.Errorf("recurso desconhecido %q (disponíveis: %v)", name, c.names())
	}
	return src(ctx, query)
}

func (c *catalog) avaliacoesSheet(ctx context.Context, query string) (export.Sheet, error) {
	if err := resource.LoadAll(ctx, c.avaliacoes, c.servicos, c.ocorrencias, c.moradores); err != nil {
		return export.Sheet{}, err
	}
	rows := ouvidoria.BuildAvaliacaoDisplay(c.avaliacoes.Items(), c.servicos.Items(), c.ocorrencias.Items(), c.moradores.Items())
	rows = resource.Filter(rows, query, func(a ouvidoria.AvaliacaoDisplay) []string {
		return []string{a.ServicoNome, a.MoradorNome, a.OrgaoNome, ouvidoria.Text(a.Opiniao)}
	})
	return export.Table("Avaliações", ouvidoria.AvaliacaoColumns, rows), nil
}

// sheetOf carrega as listagens auxiliares e a principal juntas e aplica o filtro.
func sheetOf[T any, K comparable](ctx context.Context, m *resource.Manager[T, K], title string, columns []export.Column[T], query string, lookups ...resource.Loader) (export.Sheet, error) {
	if err := resource.LoadAll(ctx, append(lookups, m)...); err != nil {
		return export.Sheet{}, err
	}
	return export.Table(title, columns, m.View(query)), nil
}
