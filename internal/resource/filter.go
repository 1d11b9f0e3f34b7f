package resource

import (
	"slices"
	"strings"

	"github.com/gestaozabele/ouvidoria/internal/util"
)

// Filter devolve a subsequência cujos campos pesquisáveis contêm a consulta.
// Consulta vazia devolve todos os itens; a ordem original é mantida.
func Filter[T any](items []T, query string, fields func(T) []string) []T {
	query = strings.TrimSpace(query)
	if query == "" || fields == nil {
		return slices.Clone(items)
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, value := range fields(item) {
			if util.ContainsFolded(value, query) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// Sorted devolve uma cópia ordenada de forma estável, sem alterar items.
func Sorted[T any](items []T, less func(a, b T) bool) []T {
	out := slices.Clone(items)
	if less == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b T) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		default:
			return 0
		}
	})
	return out
}
