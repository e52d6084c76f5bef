// =============================================================================
// BKHD to UpSSE Converter - Row Transformer
// =============================================================================
//
// This module turns one qualifying BKHD line into one UpSSE accounting row.
//
// TRANSFORMATION OVERVIEW:
//   1. Classify  : anonymous petroleum sales are deferred to the aggregator
//   2. Identify  : customer code, invoice number, symbol, product code
//   3. Price     : for petroleum, the environmental fee is taken out of the
//                  unit price, the line amount and the VAT amount
//   4. Account   : zone ledger accounts and the location's matter code
//
// Money is kept exact until the row is emitted, then rounded half-to-even to
// whole units. Quantities keep three decimals.
//
// =============================================================================

package converter

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/bkhd-upsse-converter/internal/config"
	"github.com/ginjaninja78/bkhd-upsse-converter/internal/refdata"
	"github.com/ginjaninja78/bkhd-upsse-converter/internal/types"
)

const (
	// descriptionPrefix starts the description of every invoice row.
	descriptionPrefix = "Xuất bán hàng theo hóa đơn số "

	// maxShortCodeLength is the first length a short customer code may not
	// reach to be used as the customer code.
	maxShortCodeLength = 12

	invoiceDigits = 6
	seriesDigits  = 2
)

var hundred = decimal.NewFromInt(100)

// =============================================================================
// BATCH CONTEXT
// =============================================================================

// rowContext carries what every row of one conversion shares: the resolved
// location and zone accounts, the transaction date and the policy.
type rowContext struct {
	bundle   *refdata.Bundle
	policy   config.Policy
	location refdata.Location
	accounts refdata.AccountSet
	date     time.Time
}

// isAnonymousPetroleum reports whether the line belongs in a summary invoice.
func (c *rowContext) isAnonymousPetroleum(line types.RawLine) bool {
	return types.CleanString(line.CustomerName) == c.policy.AnonymousCustomer &&
		c.policy.IsPetroleum(types.CleanString(line.ProductName))
}

// fee returns the environmental fee per unit, zero for other products.
func (c *rowContext) fee(product string) decimal.Decimal {
	if !c.policy.IsPetroleum(product) {
		return decimal.Zero
	}
	return c.bundle.EnvironmentalFee(product)
}

// =============================================================================
// LINE TRANSFORMATION
// =============================================================================

// transformLine builds the accounting row for a non-anonymous line. It also
// returns the environmental fee applied, which is zero for non-petroleum
// products.
func (c *rowContext) transformLine(line types.RawLine) (types.AccountingRow, decimal.Decimal) {
	customerName := types.CleanString(line.CustomerName)
	product := types.CleanString(line.ProductName)
	taxID := types.CleanString(line.TaxID)

	invoice := c.invoiceNumber(line)
	fee := c.fee(product)
	taxCode := FormatTaxCode(line.VATRate)
	rate := taxRate(taxCode)

	// The VAT on the fee is reported on the tax row.
	taxAmount := line.TaxAmount.Sub(roundMoney(fee.Mul(line.Quantity).Mul(rate)))

	lineAmount := line.LineAmount
	if c.policy.IsPetroleum(product) {
		lineAmount = line.AmountDue.Sub(line.TaxAmount).Sub(roundMoney(fee.Mul(line.Quantity)))
	}

	row := types.AccountingRow{
		Kind:              types.KindNormal,
		CustomerCode:      c.customerCode(line, taxID),
		CustomerName:      customerName,
		Date:              c.date,
		InvoiceNumber:     invoice,
		Symbol:            types.CleanString(line.SymbolForm) + types.CleanString(line.SymbolSeries),
		Description:       descriptionPrefix + invoice,
		ProductCode:       c.bundle.ProductCode(product),
		ProductName:       product,
		Unit:              types.CleanString(line.Unit),
		WarehouseCode:     c.location.WarehouseCode,
		Quantity:          roundQuantity(line.Quantity),
		UnitPrice:         line.UnitPrice.Sub(fee),
		LineAmount:        roundMoney(lineAmount),
		TaxCode:           taxCode,
		DebitAccount:      c.accounts.Debit,
		RevenueAccount:    c.accounts.Revenue,
		CostAccount:       c.accounts.Cost,
		TaxPayableAccount: c.accounts.TaxPayable,
		MatterCode:        c.location.MatterCode(product, true),
		TaxInvoiceName:    customerName,
		TaxInvoiceAddress: types.CleanString(line.Address),
		TaxInvoiceTaxID:   taxID,
		TaxAmount:         roundMoney(taxAmount),
	}

	return row, fee
}

// customerCode picks, in order: a short code under twelve characters, the
// code registered for the tax ID, the warehouse code.
func (c *rowContext) customerCode(line types.RawLine, taxID string) string {
	short := types.CleanString(line.ShortCustomerCode)
	if short != "" && utf8.RuneCountInString(short) < maxShortCodeLength {
		return short
	}
	if taxID != "" {
		if code, ok := c.bundle.CustomerCode(taxID); ok {
			return code
		}
	}
	return c.location.WarehouseCode
}

// invoiceNumber builds the ledger invoice number: a two-character marker
// followed by the last six characters of the receipt number. The marker is
// fixed for some locations and the end of the symbol series elsewhere.
func (c *rowContext) invoiceNumber(line types.RawLine) string {
	number := types.Tail(strings.TrimSpace(line.InvoiceNumber), invoiceDigits)
	if marker, ok := c.policy.InvoiceMarkers[c.location.Name]; ok {
		return marker + number
	}
	return types.Tail(strings.TrimSpace(line.SymbolSeries), seriesDigits) + number
}

// =============================================================================
// TAX CODE AND ROUNDING
// =============================================================================

// FormatTaxCode normalizes a VAT cell to the ledger's two-digit tax code.
//
// "8", "8%", "8.0" and "0.08" all become "08"; "10" becomes "10". Values
// strictly between 0 and 1 are read as fractions. Blank or unparseable input
// yields "".
func FormatTaxCode(raw string) string {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, "%", ""))
	if cleaned == "" {
		return ""
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return ""
	}

	if value.IsPositive() && value.LessThan(decimal.NewFromInt(1)) {
		value = value.Mul(hundred)
	}

	return fmt.Sprintf("%02d", value.RoundBank(0).IntPart())
}

// taxRate converts a tax code to a rate ("08" -> 0.08). An empty code is
// a zero rate.
func taxRate(code string) decimal.Decimal {
	if code == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(code)
	if err != nil {
		return decimal.Zero
	}
	return value.Div(hundred)
}

// roundMoney rounds half-to-even to whole currency units.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(0)
}

// roundQuantity rounds half-to-even to three decimals.
func roundQuantity(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(3)
}
