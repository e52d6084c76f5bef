package validation

import (
	"errors"
	"fmt"
)

// Listing validation errors
var (
	ErrSymbolMismatch = errors.New("invoice symbol mismatch")
	ErrAddressTooLong = errors.New("customer address too long")
)

// SymbolMismatchError is returned when the listing was exported for a
// different location than the one selected.
type SymbolMismatchError struct {
	Observed string
	Expected string
}

func (e *SymbolMismatchError) Error() string {
	return fmt.Sprintf("listing does not match location: symbol on file %q, expected to contain %q", e.Observed, e.Expected)
}

func (e *SymbolMismatchError) Unwrap() error {
	return ErrSymbolMismatch
}

// AddressViolation is one line whose address exceeds the limit.
type AddressViolation struct {
	RowNumber int
	Length    int
}

// AddressTooLongError lists every line with an oversized address.
type AddressTooLongError struct {
	Limit      int
	Violations []AddressViolation
}

func (e *AddressTooLongError) Error() string {
	return fmt.Sprintf("found %d address(es) longer than %d characters, fix them in the listing:\n%s",
		len(e.Violations), e.Limit, FormatViolations(e.Violations))
}

func (e *AddressTooLongError) Unwrap() error {
	return ErrAddressTooLong
}
