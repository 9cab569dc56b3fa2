package sales

import (
	"math"

	"github.com/shopspring/decimal"
)

// totalPlaces is the number of decimal places of a computed total.
const totalPlaces = 2

// ComputeTotal sums quantity*price over the line items whose product is in the index.
// Unmatched products contribute zero. Summation follows input order and the result is
// rounded once, half away from zero, to two decimal places.
func ComputeTotal(index PriceIndex, sales []SaleLineItem) float64 {
	total := 0.0
	for _, item := range sales {
		price, ok := index.Price(item.Product)
		if !ok {
			continue
		}
		total += item.Quantity * price
	}
	return roundTotal(total)
}

// roundTotal rounds the shortest decimal representation of v, so a sum printed as 9.005
// becomes 9.01 instead of depending on its binary expansion.
func roundTotal(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(totalPlaces).InexactFloat64()
}
