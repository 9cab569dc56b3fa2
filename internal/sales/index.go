package sales

// DuplicateHook is called when a catalog title is seen more than once.
// previous is the price being replaced, next the price that wins.
type DuplicateHook func(title string, previous, next float64)

// IndexOption customizes BuildPriceIndex.
type IndexOption func(*indexOptions)

type indexOptions struct {
	onDuplicate DuplicateHook
}

// WithDuplicateHook registers a hook for repeated titles. The hook is diagnostic only,
// the later entry still replaces the earlier one.
func WithDuplicateHook(hook DuplicateHook) IndexOption {
	return func(o *indexOptions) {
		o.onDuplicate = hook
	}
}

// BuildPriceIndex maps every catalog title to its price.
// If a title repeats, the entry encountered last wins.
func BuildPriceIndex(catalog []ProductCatalogEntry, opts ...IndexOption) PriceIndex {
	var o indexOptions
	for _, opt := range opts {
		opt(&o)
	}

	index := make(PriceIndex, len(catalog))
	for _, entry := range catalog {
		if previous, seen := index[entry.Title]; seen && o.onDuplicate != nil {
			o.onDuplicate(entry.Title, previous, entry.Price)
		}
		index[entry.Title] = entry.Price
	}
	return index
}
