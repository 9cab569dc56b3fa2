package sales

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CatalogRecord is a catalog entry as it arrives from a source. Pointer fields tell an
// absent key apart from a zero value.
type CatalogRecord struct {
	Title *string  `json:"title" validate:"required"`
	Price *float64 `json:"price" validate:"required"`
}

// SaleRecord is a sale line item as it arrives from a source.
// encoding/json matches keys case-insensitively, so "Product" and "Quantity" are accepted.
type SaleRecord struct {
	Product  *string  `json:"product" validate:"required"`
	Quantity *float64 `json:"quantity" validate:"required"`
}

// validate is safe for concurrent use and only caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// CatalogFromRecords converts source records into catalog entries.
// It fails with *MissingFieldError on the first record lacking title or price.
func CatalogFromRecords(records []CatalogRecord) ([]ProductCatalogEntry, error) {
	entries := make([]ProductCatalogEntry, 0, len(records))
	for i, rec := range records {
		if err := checkRecord(KindCatalog, i, rec); err != nil {
			return nil, err
		}
		entries = append(entries, ProductCatalogEntry{Title: *rec.Title, Price: *rec.Price})
	}
	return entries, nil
}

// SalesFromRecords converts source records into sale line items.
// It fails with *MissingFieldError on the first record lacking product or quantity.
func SalesFromRecords(records []SaleRecord) ([]SaleLineItem, error) {
	items := make([]SaleLineItem, 0, len(records))
	for i, rec := range records {
		if err := checkRecord(KindSale, i, rec); err != nil {
			return nil, err
		}
		items = append(items, SaleLineItem{Product: *rec.Product, Quantity: *rec.Quantity})
	}
	return items, nil
}

func checkRecord(kind string, index int, rec any) error {
	err := validate.Struct(rec)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return &MissingFieldError{Kind: kind, Index: index, Field: validationErrors[0].Field()}
	}
	return err
}
