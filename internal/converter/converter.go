// =============================================================================
// BKHD to UpSSE Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It turns one BKHD listing
// into UpSSE accounting rows for a selected location.
//
// CONVERSION PIPELINE:
//   1. Check the request (pricing mode, boundary invoice)
//   2. Resolve the transaction date (may stop and ask the user)
//   3. Validate the listing against the location's configuration
//   4. Resolve the location and its zone accounts
//   5. Run the per-batch pipeline once (single period) or twice (two periods):
//        a. transform each qualifying line or defer it to the aggregator
//        b. synthesize a tax row for every petroleum row
//        c. flush the aggregator into summary rows and their tax rows
//        d. assemble: normal rows first, then tax rows
//
// The converter holds no mutable state and writes nothing; callers decide
// what to do with the rows.
//
// =============================================================================

package converter

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ginjaninja78/bkhd-upsse-converter/internal/config"
	"github.com/ginjaninja78/bkhd-upsse-converter/internal/refdata"
	"github.com/ginjaninja78/bkhd-upsse-converter/internal/types"
	"github.com/ginjaninja78/bkhd-upsse-converter/internal/validation"
)

// =============================================================================
// REQUEST AND RESULT
// =============================================================================

// PricingMode selects single-period or two-period output.
type PricingMode int

const (
	// SinglePeriod produces one UpSSE batch.
	SinglePeriod PricingMode = 1

	// TwoPeriods splits the listing at a boundary invoice into an old-price
	// and a new-price batch.
	TwoPeriods PricingMode = 2
)

// ParsePricingMode parses "1" or "2".
func ParsePricingMode(s string) (PricingMode, error) {
	switch strings.TrimSpace(s) {
	case "1":
		return SinglePeriod, nil
	case "2":
		return TwoPeriods, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPricingMode, s)
	}
}

func (m PricingMode) String() string {
	switch m {
	case SinglePeriod:
		return "single"
	case TwoPeriods:
		return "two-period"
	default:
		return fmt.Sprintf("PricingMode(%d)", int(m))
	}
}

// Request describes one conversion.
type Request struct {
	// Listing is the parsed BKHD workbook.
	Listing *types.Listing

	// Location is the selected station name.
	Location string

	// Mode is SinglePeriod or TwoPeriods.
	Mode PricingMode

	// BoundaryInvoice is the first invoice of the new price period.
	// Required for TwoPeriods, ignored otherwise.
	BoundaryInvoice string

	// ConfirmedDate is a YYYY-MM-DD date picked by the user after an
	// ambiguous first attempt. Empty means detect.
	ConfirmedDate string
}

// Result is the outcome of a conversion. Exactly one of these holds:
//   - Date.Ambiguous(): the user must pick one of Date.Options and retry.
//   - Mode == SinglePeriod: Rows is the batch.
//   - Mode == TwoPeriods: OldRows and NewRows are the batches; one of them
//     may be empty, not both.
type Result struct {
	Mode PricingMode
	Date DateResolution

	Rows    []types.AccountingRow
	OldRows []types.AccountingRow
	NewRows []types.AccountingRow
}

// NeedsDateChoice reports whether the conversion stopped for a date choice.
func (r *Result) NeedsDateChoice() bool {
	return r.Date.Ambiguous()
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter transforms BKHD listings with a fixed reference bundle and policy.
type Converter struct {
	bundle    *refdata.Bundle
	policy    config.Policy
	validator *validation.Validator
	logger    *zap.Logger
}

// New creates a new Converter instance.
//
// PARAMETERS:
//   - bundle: the reference data; never modified.
//   - policy: the conversion policy.
//   - logger: structured logger; nil disables logging.
func New(bundle *refdata.Bundle, policy config.Policy, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		bundle:    bundle,
		policy:    policy,
		validator: validation.NewValidator(bundle, policy),
		logger:    logger,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Transform runs the conversion pipeline for one request.
//
// RETURNS:
//   - A Result awaiting a date choice, or holding the accounting rows.
//   - An error when the request is invalid, the listing fails validation,
//     configuration is missing or no rows can be produced. No rows are
//     returned together with an error.
func (c *Converter) Transform(req Request) (*Result, error) {
	// =========================================================================
	// STEP 1: CHECK REQUEST
	// =========================================================================

	switch req.Mode {
	case SinglePeriod:
	case TwoPeriods:
		if strings.TrimSpace(req.BoundaryInvoice) == "" {
			return nil, ErrBoundaryRequired
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidPricingMode, int(req.Mode))
	}

	if req.Listing == nil {
		return nil, ErrNoValidRows
	}

	// =========================================================================
	// STEP 2: RESOLVE DATE
	// =========================================================================
	// The date is resolved once over the whole listing, before any split.

	resolution, err := ResolveDate(req.Listing.Lines, req.ConfirmedDate)
	if err != nil {
		return nil, err
	}

	result := &Result{Mode: req.Mode, Date: resolution}
	if resolution.Ambiguous() {
		c.logger.Info("Transaction date is ambiguous",
			zap.String("literal", resolution.Options[0].Label),
			zap.String("swapped", resolution.Options[1].Label))
		return result, nil
	}

	// =========================================================================
	// STEP 3: VALIDATE LISTING
	// =========================================================================

	if err := c.validator.Validate(req.Listing, req.Location); err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 4: RESOLVE LOCATION AND ACCOUNTS
	// =========================================================================

	ctx, err := c.newRowContext(req.Location, resolution)
	if err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 5: RUN BATCHES
	// =========================================================================

	if req.Mode == SinglePeriod {
		rows, err := c.runBatch(ctx, req.Listing.Lines, periodOld)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, ErrNoValidRows
		}
		result.Rows = rows
		c.logger.Info("Converted listing",
			zap.String("location", req.Location),
			zap.String("date", resolution.Date.Format(DateValueLayout)),
			zap.Int("rows", len(rows)))
		return result, nil
	}

	before, after, err := SplitAtInvoice(req.Listing.Lines, req.BoundaryInvoice)
	if err != nil {
		return nil, err
	}

	if result.OldRows, err = c.runBatch(ctx, before, periodOld); err != nil {
		return nil, err
	}
	if result.NewRows, err = c.runBatch(ctx, after, periodNew); err != nil {
		return nil, err
	}
	if len(result.OldRows) == 0 && len(result.NewRows) == 0 {
		return nil, ErrNoValidDataEitherPeriod
	}

	c.logger.Info("Converted listing in two periods",
		zap.String("location", req.Location),
		zap.String("date", resolution.Date.Format(DateValueLayout)),
		zap.String("boundary", strings.TrimSpace(req.BoundaryInvoice)),
		zap.Int("old_rows", len(result.OldRows)),
		zap.Int("new_rows", len(result.NewRows)))

	return result, nil
}

// newRowContext resolves everything the rows of a conversion share.
func (c *Converter) newRowContext(location string, resolution DateResolution) (*rowContext, error) {
	loc, err := c.bundle.Location(location)
	if err != nil {
		return nil, err
	}

	accounts, err := c.bundle.NormalAccounts(loc.Zone)
	if err != nil {
		return nil, err
	}

	return &rowContext{
		bundle:   c.bundle,
		policy:   c.policy,
		location: loc,
		accounts: accounts,
		date:     resolution.Date,
	}, nil
}

// runBatch runs the per-line pipeline over one batch of lines.
func (c *Converter) runBatch(ctx *rowContext, lines []types.RawLine, period int) ([]types.AccountingRow, error) {
	var normal, tax []types.AccountingRow
	agg := newAggregator()

	for _, line := range lines {
		if !line.Qualifies() {
			continue
		}

		if ctx.isAnonymousPetroleum(line) {
			agg.add(line)
			continue
		}

		row, fee := ctx.transformLine(line)
		normal = append(normal, row)

		if c.policy.IsPetroleum(row.ProductName) {
			taxRow, err := c.environmentalTax(ctx, row, fee)
			if err != nil {
				return nil, err
			}
			tax = append(tax, taxRow)
		}
	}

	summaries := 0
	if !agg.empty() {
		for _, s := range agg.flush(ctx, period) {
			normal = append(normal, s.row)

			taxRow, err := c.environmentalTax(ctx, s.row, s.fee)
			if err != nil {
				return nil, err
			}
			tax = append(tax, taxRow)
			summaries++
		}
	}

	c.logger.Debug("Converted batch",
		zap.String("location", ctx.location.Name),
		zap.Int("period", period),
		zap.Int("normal_rows", len(normal)),
		zap.Int("tax_rows", len(tax)),
		zap.Int("summaries", summaries))

	return Assemble(normal, tax), nil
}

// environmentalTax builds the tax row for source with the zone's tax
// accounts. The accounts are looked up only when a tax row is needed.
func (c *Converter) environmentalTax(ctx *rowContext, source types.AccountingRow, fee decimal.Decimal) (types.AccountingRow, error) {
	accounts, err := c.bundle.TaxAccounts(ctx.location.Zone)
	if err != nil {
		return types.AccountingRow{}, err
	}
	return SynthesizeEnvironmentalTax(source, fee, accounts), nil
}

// Assemble orders a batch: every normal row in emission order, then every
// tax row in emission order. Nil when both are empty.
func Assemble(normal, tax []types.AccountingRow) []types.AccountingRow {
	if len(normal)+len(tax) == 0 {
		return nil
	}
	rows := make([]types.AccountingRow, 0, len(normal)+len(tax))
	rows = append(rows, normal...)
	return append(rows, tax...)
}
