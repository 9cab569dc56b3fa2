package source

import (
	"context"
	"strings"
	"time"

	"github.com/abgdnv/salescost/internal/platform/bootstrap"
	"github.com/abgdnv/salescost/internal/sales"
	"golang.org/x/sync/errgroup"
)

// CatalogSource provides the product catalog.
type CatalogSource interface {
	LoadCatalog(ctx context.Context) ([]sales.ProductCatalogEntry, error)
}

// SalesSource provides the sales records.
type SalesSource interface {
	LoadSales(ctx context.Context) ([]sales.SaleLineItem, error)
}

// Inputs holds both loaded inputs of a computation.
type Inputs struct {
	Catalog []sales.ProductCatalogEntry
	Sales   []sales.SaleLineItem
}

// LoadInputs reads the catalog and the sales records in parallel.
// The first failure cancels the other load and is returned as is.
func LoadInputs(ctx context.Context, catalogSrc CatalogSource, salesSrc SalesSource) (*Inputs, error) {
	var in Inputs
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		catalog, err := catalogSrc.LoadCatalog(gCtx)
		if err != nil {
			return err
		}
		in.Catalog = catalog
		return nil
	})
	g.Go(func() error {
		items, err := salesSrc.LoadSales(gCtx)
		if err != nil {
			return err
		}
		in.Sales = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &in, nil
}

// IsPostgresURL reports whether the catalog location names a PostgreSQL database.
func IsPostgresURL(location string) bool {
	return strings.HasPrefix(location, "postgres://") ||
		strings.HasPrefix(location, "postgresql://")
}

// maskURL hides credentials of a database URL in error messages.
func maskURL(url string) string {
	parts := strings.Split(url, "@")
	if len(parts) == 2 {
		return "****@" + parts[1]
	}
	return "****"
}

// OpenCatalog resolves a catalog location: PostgreSQL URLs open a connection pool,
// anything else is read as a JSON file. The returned close function releases the pool.
func OpenCatalog(ctx context.Context, location string, connectTimeout time.Duration) (CatalogSource, func(), error) {
	if !IsPostgresURL(location) {
		return NewJSONFile(location), func() {}, nil
	}
	pool, err := bootstrap.NewDbPool(ctx, location, connectTimeout)
	if err != nil {
		return nil, nil, &SourceUnavailableError{Source: maskURL(location), Err: err}
	}
	return NewPgCatalogStore(pool), pool.Close, nil
}
