package sales

import (
	"context"
	"log/slog"
)

// Summary is the outcome of one aggregation.
type Summary struct {
	Total       float64 `json:"total"`
	LineItems   int     `json:"line_items"`
	Matched     int     `json:"matched"`
	Unmatched   int     `json:"unmatched"`
	CatalogSize int     `json:"catalog_size"`
	Duplicates  int     `json:"duplicates"`
}

// Config holds the behaviour switches of the Service.
type Config struct {
	WarnDuplicates bool
}

// Service computes sales totals and reports diagnostics about the inputs.
type Service struct {
	logger *slog.Logger
	cfg    Config
}

// NewService creates a Service logging through the given logger.
func NewService(logger *slog.Logger, cfg Config) *Service {
	return &Service{
		logger: logger.With("component", "sales"),
		cfg:    cfg,
	}
}

// Compute builds the price index from the catalog and aggregates the sales against it.
// The context is only checked before the computation starts; the computation itself
// does not block.
func (s *Service) Compute(ctx context.Context, catalog []ProductCatalogEntry, sales []SaleLineItem) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	duplicates := 0
	index := BuildPriceIndex(catalog, WithDuplicateHook(func(title string, previous, next float64) {
		duplicates++
		if s.cfg.WarnDuplicates {
			s.logger.WarnContext(ctx, "Duplicate catalog title, keeping the later price",
				"title", title, "previous_price", previous, "price", next)
		}
	}))

	matched := 0
	for _, item := range sales {
		if _, ok := index.Price(item.Product); ok {
			matched++
		}
	}

	summary := &Summary{
		Total:       ComputeTotal(index, sales),
		LineItems:   len(sales),
		Matched:     matched,
		Unmatched:   len(sales) - matched,
		CatalogSize: len(index),
		Duplicates:  duplicates,
	}
	s.logger.DebugContext(ctx, "Sales total computed",
		"total", summary.Total,
		"line_items", summary.LineItems,
		"unmatched", summary.Unmatched,
		"duplicates", summary.Duplicates,
	)
	return summary, nil
}
