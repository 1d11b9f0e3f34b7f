package resource

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Loader é uma listagem que pode ser buscada sem ser aplicada.
type Loader interface {
	Prefetch(ctx context.Context) (commit func(), err error)
}

// LoadAll busca todas as listagens em paralelo e só aplica se todas tiverem sucesso.
// Os commits seguem a ordem dos loaders.
func LoadAll(ctx context.Context, loaders ...Loader) error {
	commits := make([]func(), len(loaders))

	g, gctx := errgroup.WithContext(ctx)
	for i, loader := range loaders {
		i, loader := i, loader
		g.Go(func() error {
			commit, err := loader.Prefetch(gctx)
			if err != nil {
				return err
			}
			commits[i] = commit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, commit := range commits {
		commit()
	}
	return nil
}
