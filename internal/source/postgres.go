package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/abgdnv/salescost/internal/sales"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productsSource = "products table"

// PgCatalogStore loads the catalog from the products table of a PostgreSQL database.
type PgCatalogStore struct {
	db *pgxpool.Pool
}

// NewPgCatalogStore creates a catalog source using a PostgreSQL connection pool.
func NewPgCatalogStore(dbp *pgxpool.Pool) *PgCatalogStore {
	return &PgCatalogStore{db: dbp}
}

// LoadCatalog returns all products ordered by id, so repeated titles resolve the same way
// on every run.
func (p *PgCatalogStore) LoadCatalog(ctx context.Context) ([]sales.ProductCatalogEntry, error) {
	rows, err := p.db.Query(ctx, `SELECT title, price FROM products ORDER BY id`)
	if err != nil {
		return nil, &SourceUnavailableError{Source: productsSource, Err: err}
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (sales.ProductCatalogEntry, error) {
		var e sales.ProductCatalogEntry
		err := row.Scan(&e.Title, &e.Price)
		return e, err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return nil, &SourceUnavailableError{Source: productsSource, Err: err}
		}
		return nil, &SourceFormatError{Source: productsSource, Err: fmt.Errorf("failed to scan product: %w", err)}
	}
	return entries, nil
}
