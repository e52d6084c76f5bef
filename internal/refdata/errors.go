package refdata

import (
	"errors"
	"fmt"
)

// Domain errors for reference data
var (
	// Lookup errors
	ErrConfigLookup = errors.New("configuration lookup failed")

	// Loading errors
	ErrNoLocations   = errors.New("no locations found in reference workbook")
	ErrEmptyWorkbook = errors.New("reference workbook has no sheets")
)

// LookupError names the table and key that could not be resolved.
type LookupError struct {
	// Table is the lookup table, e.g. "location" or "zone accounts".
	Table string

	// Key is the location name or zone that was looked up.
	Key string

	// Field is the missing entry, e.g. "warehouse code".
	Field string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("configuration error: no %s for %s %q", e.Field, e.Table, e.Key)
}

// Unwrap lets errors.Is match ErrConfigLookup.
func (e *LookupError) Unwrap() error {
	return ErrConfigLookup
}
