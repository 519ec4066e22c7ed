package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/brew-cli/internal/catalog"
	"github.com/sells-group/brew-cli/internal/config"
	"github.com/sells-group/brew-cli/internal/fetcher"
)

// writableCatalog is a catalog that can take imported records.
type writableCatalog interface {
	catalog.Catalog
	Migrate(ctx context.Context) error
	Import(ctx context.Context, d *catalog.Data) (int, error)
}

// openCatalog returns the catalog selected by c.Driver. The memory driver
// serves c.Path when set and the built-in ingredient set otherwise.
func openCatalog(ctx context.Context, c config.CatalogConfig) (catalog.Catalog, error) {
	if c.Driver == "memory" {
		if c.Path == "" {
			return catalog.Default(), nil
		}
		d, err := catalog.ReadSource(ctx, fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}), c.Path, "")
		if err != nil {
			return nil, err
		}
		m, err := catalog.NewMemory(d)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return openWritableCatalog(ctx, c)
}

func openWritableCatalog(ctx context.Context, c config.CatalogConfig) (writableCatalog, error) {
	var (
		wc  writableCatalog
		err error
	)
	switch c.Driver {
	case "sqlite":
		wc, err = catalog.NewSQLite(c.Path)
	case "postgres":
		wc, err = catalog.NewPostgres(ctx, c.DatabaseURL, &catalog.PoolConfig{
			MaxConns: c.MaxConns,
			MinConns: c.MinConns,
		})
	default:
		return nil, eris.Errorf("catalog driver %q does not support imports, use sqlite or postgres", c.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := wc.Migrate(ctx); err != nil {
		wc.Close() //nolint:errcheck
		return nil, err
	}
	return wc, nil
}
