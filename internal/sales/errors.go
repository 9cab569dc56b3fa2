package sales

import (
	"errors"
	"fmt"
)

// ErrMissingField is returned when a catalog entry or sale line item lacks a required field.
var ErrMissingField = errors.New("missing required field")

// Record kinds reported by MissingFieldError.
const (
	KindCatalog = "catalog"
	KindSale    = "sale"
)

// MissingFieldError identifies the record and the key that is missing.
type MissingFieldError struct {
	Kind  string // KindCatalog or KindSale
	Index int    // position of the record in its input sequence
	Field string // wire name of the missing key
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s record %d: %s %q", e.Kind, e.Index, ErrMissingField, e.Field)
}

// Unwrap allows errors.Is(err, ErrMissingField).
func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}
