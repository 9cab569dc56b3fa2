package source

import (
	"context"
	"encoding/json"
	"os"

	"github.com/abgdnv/salescost/internal/sales"
)

// JSONFile is a catalog or sales source backed by a JSON array file.
type JSONFile struct {
	Path string
}

// NewJSONFile creates a source reading the JSON file at path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

// LoadCatalog reads catalog records and converts them into catalog entries.
func (f *JSONFile) LoadCatalog(ctx context.Context) ([]sales.ProductCatalogEntry, error) {
	var records []sales.CatalogRecord
	if err := f.decode(ctx, &records); err != nil {
		return nil, err
	}
	return sales.CatalogFromRecords(records)
}

// LoadSales reads sales records and converts them into sale line items.
func (f *JSONFile) LoadSales(ctx context.Context) ([]sales.SaleLineItem, error) {
	var records []sales.SaleRecord
	if err := f.decode(ctx, &records); err != nil {
		return nil, err
	}
	return sales.SalesFromRecords(records)
}

func (f *JSONFile) decode(ctx context.Context, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return &SourceUnavailableError{Source: f.Path, Err: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &SourceFormatError{Source: f.Path, Err: err}
	}
	return nil
}
