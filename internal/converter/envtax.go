package converter

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/bkhd-upsse-converter/internal/refdata"
	"github.com/ginjaninja78/bkhd-upsse-converter/internal/types"
)

const (
	// EnvironmentalTaxCode is the product code of every tax row.
	EnvironmentalTaxCode = "TMT"

	// EnvironmentalTaxName is the product name of every tax row.
	EnvironmentalTaxName = "Thuế bảo vệ môi trường"
)

// SynthesizeEnvironmentalTax derives the environmental-tax companion of a
// petroleum row.
//
// The tax row starts as a copy of source, so identity, date, symbol, tax
// code and matter code carry over. Product, pricing and accounts are then
// replaced and the description and tax-invoice fields are cleared.
//
// PARAMETERS:
//   - source: an emitted invoice row or summary row.
//   - fee: the environmental fee per unit for the source product.
//   - accounts: the zone's tax-row accounts.
func SynthesizeEnvironmentalTax(source types.AccountingRow, fee decimal.Decimal, accounts refdata.AccountSet) types.AccountingRow {
	row := source
	row.Kind = types.KindEnvironmentalTax

	row.ProductCode = EnvironmentalTaxCode
	row.ProductName = EnvironmentalTaxName

	envAmount := fee.Mul(source.Quantity)
	row.UnitPrice = fee
	row.LineAmount = roundMoney(envAmount)
	row.TaxAmount = roundMoney(envAmount.Mul(taxRate(source.TaxCode)))

	row.DebitAccount = accounts.Debit
	row.RevenueAccount = accounts.Revenue
	row.CostAccount = accounts.Cost
	row.TaxPayableAccount = accounts.TaxPayable

	row.Description = ""
	row.TaxInvoiceName = ""
	row.TaxInvoiceAddress = ""
	row.TaxInvoiceTaxID = ""

	return row
}
