// =============================================================================
// BKHD to UpSSE Converter - Listing Validator
// =============================================================================
//
// This module checks a BKHD listing before any row is transformed:
//   1. Symbol check  : the listing's declared invoice symbol must belong to
//                      the selected location.
//   2. Address check : every qualifying line's customer address must fit the
//                      ledger's address field.
//
// ERROR HANDLING:
//   - The symbol check stops at the first failure (there is only one cell).
//   - Address errors are collected, not thrown immediately, so the user can
//     fix every offending row in one pass.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/bkhd-upsse-converter/internal/config"
	"github.com/ginjaninja78/bkhd-upsse-converter/internal/refdata"
	"github.com/ginjaninja78/bkhd-upsse-converter/internal/types"
)

// symbolSuffixLength is how much of the configured prefix must appear in the
// declared symbol.
const symbolSuffixLength = 6

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks listings against reference data and policy.
type Validator struct {
	bundle *refdata.Bundle
	policy config.Policy
}

// NewValidator creates a new Validator.
func NewValidator(bundle *refdata.Bundle, policy config.Policy) *Validator {
	return &Validator{
		bundle: bundle,
		policy: policy,
	}
}

// Validate runs both checks for the selected location.
//
// RETURNS:
//   - *refdata.LookupError if the location is not fully configured.
//   - *SymbolMismatchError if the listing belongs to another location.
//   - *AddressTooLongError listing every offending row.
func (v *Validator) Validate(listing *types.Listing, location string) error {
	loc, err := v.bundle.Location(location)
	if err != nil {
		return err
	}

	if err := CheckSymbol(listing.DeclaredSymbol, loc.SymbolPrefix); err != nil {
		return err
	}

	return CheckAddresses(listing.Lines, v.policy.MaxAddressLength)
}

// =============================================================================
// CHECKS
// =============================================================================

// CheckSymbol verifies that declared contains the last six characters of
// the configured invoice-symbol prefix.
func CheckSymbol(declared, configuredPrefix string) error {
	expected := types.Tail(configuredPrefix, symbolSuffixLength)
	observed := types.CleanString(declared)

	if !strings.Contains(observed, expected) {
		return &SymbolMismatchError{Observed: observed, Expected: expected}
	}
	return nil
}

// CheckAddresses reports every qualifying line whose address is longer than
// limit characters.
func CheckAddresses(lines []types.RawLine, limit int) error {
	var violations []AddressViolation

	for _, line := range lines {
		if !line.Qualifies() {
			continue
		}
		length := utf8.RuneCountInString(line.Address)
		if length > limit {
			violations = append(violations, AddressViolation{
				RowNumber: line.RowNumber,
				Length:    length,
			})
		}
	}

	if len(violations) > 0 {
		return &AddressTooLongError{Limit: limit, Violations: violations}
	}
	return nil
}

// FormatViolations renders address violations one per line, for reports.
func FormatViolations(violations []AddressViolation) string {
	lines := make([]string, 0, len(violations))
	for _, v := range violations {
		lines = append(lines, fmt.Sprintf(" - row %d (cell E%d): address is %d characters", v.RowNumber, v.RowNumber, v.Length))
	}
	return strings.Join(lines, "\n")
}

// ValidateListing is a one-shot form of Validator.Validate.
func ValidateListing(listing *types.Listing, location string, bundle *refdata.Bundle, policy config.Policy) error {
	return NewValidator(bundle, policy).Validate(listing, location)
}
