package converter

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ginjaninja78/bkhd-upsse-converter/internal/config"
	"github.com/ginjaninja78/bkhd-upsse-converter/internal/refdata"
	"github.com/ginjaninja78/bkhd-upsse-converter/internal/types"
	"github.com/ginjaninja78/bkhd-upsse-converter/internal/validation"
)

// dayListing is a listing of one day at the test station:
//
//	row 11  Công ty A   E5         100 l   -> invoice row + tax row
//	row 12  anonymous   E5          50 l   -> summary
//	row 13  Công ty A   lubricant    2     -> invoice row
//	row 14  anonymous   E5          70 l   -> summary
//	row 15  blank                           -> skipped
func dayListing() *types.Listing {
	return &types.Listing{
		DeclaredSymbol: "1C24TAA",
		Lines: []types.RawLine{
			sale(11, "Công ty A", e5, "100", "20000"),
			sale(12, anonymous, e5, "50", "20000"),
			sale(13, "Công ty A", lube, "2", "150000"),
			sale(14, anonymous, e5, "70", "20000"),
			{RowNumber: 15},
		},
	}
}

func newTestConverter(bundle *refdata.Bundle) *Converter {
	return New(bundle, config.DefaultPolicy(), nil)
}

func invoices(rows []types.AccountingRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.InvoiceNumber+"/"+r.ProductCode)
	}
	return out
}

func TestParsePricingMode(t *testing.T) {
	mode, err := ParsePricingMode("1")
	require.NoError(t, err)
	assert.Equal(t, SinglePeriod, mode)
	assert.Equal(t, "single", mode.String())

	mode, err = ParsePricingMode(" 2 ")
	require.NoError(t, err)
	assert.Equal(t, TwoPeriods, mode)
	assert.Equal(t, "two-period", mode.String())

	_, err = ParsePricingMode("3")
	assert.ErrorIs(t, err, ErrInvalidPricingMode)
}

func TestTransform_SinglePeriod(t *testing.T) {
	conv := newTestConverter(testBundle())

	result, err := conv.Transform(Request{
		Listing:  dayListing(),
		Location: station,
		Mode:     SinglePeriod,
	})
	require.NoError(t, err)
	require.False(t, result.NeedsDateChoice())
	assert.Equal(t, jul15, result.Date.Date)
	assert.Nil(t, result.OldRows)
	assert.Nil(t, result.NewRows)

	// Normal rows in emission order, summaries last, then tax rows.
	assert.Equal(t, []string{
		"AA000011/E5",
		"AA000013/NHOT",
		"AABK.15.07.1/E5",
		"AA000011/TMT",
		"AABK.15.07.1/TMT",
	}, invoices(result.Rows))

	kinds := make([]types.RowKind, 0, len(result.Rows))
	for _, r := range result.Rows {
		kinds = append(kinds, r.Kind)
	}
	assert.Equal(t, []types.RowKind{
		types.KindNormal, types.KindNormal, types.KindNormal,
		types.KindEnvironmentalTax, types.KindEnvironmentalTax,
	}, kinds)

	summary := result.Rows[2]
	assertDecimal(t, "120", summary.Quantity)
	assertDecimal(t, "2340000", summary.LineAmount)
	assertDecimal(t, "234000", summary.TaxAmount)

	summaryTax := result.Rows[4]
	assertDecimal(t, "60000", summaryTax.LineAmount)
	assertDecimal(t, "6000", summaryTax.TaxAmount)
	assert.Equal(t, summary.CustomerName, summaryTax.CustomerName)
}

func TestTransform_TwoPeriods(t *testing.T) {
	conv := newTestConverter(testBundle())

	result, err := conv.Transform(Request{
		Listing:         dayListing(),
		Location:        station,
		Mode:            TwoPeriods,
		BoundaryInvoice: "0000013",
	})
	require.NoError(t, err)
	assert.Nil(t, result.Rows)

	assert.Equal(t, []string{
		"AA000011/E5",
		"AABK.15.07.1/E5",
		"AA000011/TMT",
		"AABK.15.07.1/TMT",
	}, invoices(result.OldRows))

	assert.Equal(t, []string{
		"AA000013/NHOT",
		"AABK.15.07.5/E5",
		"AABK.15.07.5/TMT",
	}, invoices(result.NewRows))

	assertDecimal(t, "50", result.OldRows[1].Quantity)
	assertDecimal(t, "70", result.NewRows[1].Quantity)
}

func TestTransform_TwoPeriodsEmptyNewPeriod(t *testing.T) {
	listing := dayListing()
	listing.Lines[4].InvoiceNumber = "0000015"

	result, err := newTestConverter(testBundle()).Transform(Request{
		Listing:         listing,
		Location:        station,
		Mode:            TwoPeriods,
		BoundaryInvoice: "0000015",
	})
	require.NoError(t, err)
	assert.Len(t, result.OldRows, 5)
	assert.Empty(t, result.NewRows)
}

func TestTransform_RequestErrors(t *testing.T) {
	conv := newTestConverter(testBundle())

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"missing boundary", Request{Listing: dayListing(), Location: station, Mode: TwoPeriods, BoundaryInvoice: "  "}, ErrBoundaryRequired},
		{"unknown mode", Request{Listing: dayListing(), Location: station, Mode: 3}, ErrInvalidPricingMode},
		{"zero mode", Request{Listing: dayListing(), Location: station}, ErrInvalidPricingMode},
		{"boundary not found", Request{Listing: dayListing(), Location: station, Mode: TwoPeriods, BoundaryInvoice: "9999999"}, ErrBoundaryNotFound},
		{"boundary on first line", Request{Listing: dayListing(), Location: station, Mode: TwoPeriods, BoundaryInvoice: "0000011"}, ErrEmptyOldPeriod},
		{"nil listing", Request{Location: station, Mode: SinglePeriod}, ErrNoValidRows},
		{"bad confirmed date", Request{Listing: dayListing(), Location: station, Mode: SinglePeriod, ConfirmedDate: "15/07/2024"}, ErrInvalidConfirmedDate},
		{"unknown location", Request{Listing: dayListing(), Location: "Trạm 9", Mode: SinglePeriod}, refdata.ErrConfigLookup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := conv.Transform(tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, result)
		})
	}
}

func TestTransform_AmbiguousDate(t *testing.T) {
	listing := dayListing()
	for i := range listing.Lines {
		listing.Lines[i].Timestamp = serialJul03
	}
	conv := newTestConverter(testBundle())
	req := Request{Listing: listing, Location: station, Mode: SinglePeriod}

	result, err := conv.Transform(req)
	require.NoError(t, err)
	require.True(t, result.NeedsDateChoice())
	assert.Nil(t, result.Rows)
	require.Len(t, result.Date.Options, 2)
	assert.Equal(t, "2024-03-07", result.Date.Options[1].Value)

	req.ConfirmedDate = result.Date.Options[1].Value
	result, err = conv.Transform(req)
	require.NoError(t, err)
	require.False(t, result.NeedsDateChoice())

	assert.Equal(t, time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC), result.Rows[0].Date)
	assert.Equal(t, "AABK.07.03.1", result.Rows[2].InvoiceNumber)
}

func TestTransform_AmbiguousDateSkipsValidation(t *testing.T) {
	listing := dayListing()
	listing.DeclaredSymbol = "1C24TZZ"
	for i := range listing.Lines {
		listing.Lines[i].Timestamp = serialJul03
	}

	result, err := newTestConverter(testBundle()).Transform(Request{
		Listing:  listing,
		Location: station,
		Mode:     SinglePeriod,
	})
	require.NoError(t, err)
	assert.True(t, result.NeedsDateChoice())
}

func TestTransform_ValidationErrors(t *testing.T) {
	conv := newTestConverter(testBundle())

	listing := dayListing()
	listing.DeclaredSymbol = "1C24THN"
	_, err := conv.Transform(Request{Listing: listing, Location: station, Mode: SinglePeriod})

	var mismatch *validation.SymbolMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "C24TAA", mismatch.Expected)

	listing = dayListing()
	long := make([]rune, 129)
	for i := range long {
		long[i] = 'đ'
	}
	listing.Lines[0].Address = string(long)
	listing.Lines[2].Address = string(long)
	_, err = conv.Transform(Request{Listing: listing, Location: station, Mode: SinglePeriod})

	var tooLong *validation.AddressTooLongError
	require.True(t, errors.As(err, &tooLong))
	assert.Len(t, tooLong.Violations, 2)
}

func TestTransform_MissingTaxAccounts(t *testing.T) {
	bundle := testBundle()
	bundle.TaxDebitAccounts = nil

	_, err := newTestConverter(bundle).Transform(Request{
		Listing:  dayListing(),
		Location: station,
		Mode:     SinglePeriod,
	})
	assert.ErrorIs(t, err, refdata.ErrConfigLookup)

	// Listings without petroleum never ask for tax accounts.
	listing := &types.Listing{
		DeclaredSymbol: "1C24TAA",
		Lines:          []types.RawLine{sale(11, "Công ty A", lube, "2", "150000")},
	}
	result, err := newTestConverter(bundle).Transform(Request{
		Listing:  listing,
		Location: station,
		Mode:     SinglePeriod,
	})
	require.NoError(t, err)
	assert.Len(t, result.Rows, 1)
}

func TestTransform_NoQualifyingLines(t *testing.T) {
	listing := dayListing()
	for i := range listing.Lines {
		listing.Lines[i].Quantity = decimal.Zero
	}

	_, err := newTestConverter(testBundle()).Transform(Request{
		Listing:  listing,
		Location: station,
		Mode:     SinglePeriod,
	})
	assert.ErrorIs(t, err, ErrNoValidRows)

	_, err = newTestConverter(testBundle()).Transform(Request{
		Listing:       listing,
		Location:      station,
		Mode:          SinglePeriod,
		ConfirmedDate: "2024-07-15",
	})
	assert.ErrorIs(t, err, ErrNoValidRows)
}

func TestTransform_Logging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	conv := New(testBundle(), config.DefaultPolicy(), zap.New(core))

	_, err := conv.Transform(Request{Listing: dayListing(), Location: station, Mode: SinglePeriod})
	require.NoError(t, err)

	entries := logs.FilterMessage("Converted listing").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(5), entries[0].ContextMap()["rows"])
}

func TestAssemble(t *testing.T) {
	assert.Nil(t, Assemble(nil, nil))

	normal := []types.AccountingRow{{InvoiceNumber: "A"}, {InvoiceNumber: "B"}}
	tax := []types.AccountingRow{{InvoiceNumber: "A", Kind: types.KindEnvironmentalTax}}
	rows := Assemble(normal, tax)

	require.Len(t, rows, 3)
	assert.Equal(t, "B", rows[1].InvoiceNumber)
	assert.Equal(t, types.KindEnvironmentalTax, rows[2].Kind)
}
