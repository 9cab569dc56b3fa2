// Package sales joins sale line items against catalog prices and aggregates the total cost.
package sales

// ProductCatalogEntry is a single product of the price catalog.
type ProductCatalogEntry struct {
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

// SaleLineItem records a product sold and the quantity sold.
type SaleLineItem struct {
	Product  string  `json:"product"`
	Quantity float64 `json:"quantity"`
}

// PriceIndex maps a product title to its unit price.
// It is built per computation and never shared between calls.
type PriceIndex map[string]float64

// Price returns the unit price of the given title and whether it is present.
func (idx PriceIndex) Price(title string) (float64, bool) {
	p, ok := idx[title]
	return p, ok
}
