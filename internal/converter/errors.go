package converter

import "errors"

// Date resolution errors
var (
	ErrNoValidRows          = errors.New("no valid rows found in listing")
	ErrMultiDateListing     = errors.New("listing contains more than one transaction date")
	ErrInvalidConfirmedDate = errors.New("confirmed date must be in YYYY-MM-DD format")
)

// Request errors
var (
	ErrInvalidPricingMode = errors.New("invalid pricing mode")
	ErrBoundaryRequired   = errors.New("boundary invoice number is required for two-period pricing")
)

// Period split errors
var (
	ErrBoundaryNotFound        = errors.New("boundary invoice not found in listing")
	ErrEmptyOldPeriod          = errors.New("no valid lines before the boundary invoice")
	ErrNoValidDataEitherPeriod = errors.New("no valid data in either pricing period")
)
