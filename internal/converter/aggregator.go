// =============================================================================
// BKHD to UpSSE Converter - Anonymous Sale Aggregator
// =============================================================================
//
// Petroleum sold to buyers who declined an invoice is not booked line by
// line. Those lines are summed per product and booked as one summary
// invoice per product, numbered:
//
//   {prefix}BK.{dd}.{mm}.{suffix}
//
// where prefix is the end of the symbol series of the first anonymous line
// in the batch and suffix comes from the period's suffix set.
//
// =============================================================================

package converter

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/bkhd-upsse-converter/internal/types"
)

const summaryCustomerFormat = "Khách hàng mua %s không lấy hóa đơn"

// accumulator holds the running totals of one product.
type accumulator struct {
	product string

	quantity  decimal.Decimal
	taxAmount decimal.Decimal
	amountDue decimal.Decimal

	// Snapshot of the first line seen for the product.
	symbolForm   string
	symbolSeries string
	unitPrice    decimal.Decimal
	vatRate      string
}

// aggregator collects anonymous petroleum lines of one batch.
type aggregator struct {
	order     []string
	byProduct map[string]*accumulator

	prefixSource string
}

func newAggregator() *aggregator {
	return &aggregator{byProduct: make(map[string]*accumulator)}
}

// add folds a deferred line into its product's totals.
func (a *aggregator) add(line types.RawLine) {
	if a.prefixSource == "" {
		a.prefixSource = strings.TrimSpace(line.SymbolSeries)
	}

	product := types.CleanString(line.ProductName)
	acc, ok := a.byProduct[product]
	if !ok {
		acc = &accumulator{
			product:      product,
			symbolForm:   types.CleanString(line.SymbolForm),
			symbolSeries: types.CleanString(line.SymbolSeries),
			unitPrice:    line.UnitPrice,
			vatRate:      line.VATRate,
		}
		a.byProduct[product] = acc
		a.order = append(a.order, product)
	}

	acc.quantity = acc.quantity.Add(line.Quantity)
	acc.taxAmount = acc.taxAmount.Add(line.TaxAmount)
	acc.amountDue = acc.amountDue.Add(line.AmountDue)
}

// empty reports whether no line was deferred.
func (a *aggregator) empty() bool {
	return len(a.order) == 0
}

// summary is a flushed summary row and the fee its tax row needs.
type summary struct {
	row types.AccountingRow
	fee decimal.Decimal
}

// flush emits one summary row per product, in first-seen order.
func (a *aggregator) flush(ctx *rowContext, period int) []summary {
	prefix := types.Tail(a.prefixSource, seriesDigits)
	datePart := fmt.Sprintf("%02d.%02d", ctx.date.Day(), int(ctx.date.Month()))

	summaries := make([]summary, 0, len(a.order))
	for _, product := range a.order {
		acc := a.byProduct[product]

		invoice := fmt.Sprintf("%sBK.%s.%s", prefix, datePart, ctx.policy.SummarySuffix(period, product))
		fee := ctx.bundle.EnvironmentalFee(product)
		taxCode := FormatTaxCode(acc.vatRate)
		amounts := deriveSummaryAmounts(acc.amountDue, acc.taxAmount, acc.quantity, fee, taxRate(taxCode))
		customerName := fmt.Sprintf(summaryCustomerFormat, product)

		row := types.AccountingRow{
			Kind:              types.KindNormal,
			CustomerCode:      ctx.location.WarehouseCode,
			CustomerName:      customerName,
			Date:              ctx.date,
			InvoiceNumber:     invoice,
			Symbol:            acc.symbolForm + acc.symbolSeries,
			Description:       descriptionPrefix + invoice,
			ProductCode:       ctx.bundle.ProductCode(product),
			ProductName:       product,
			Unit:              ctx.policy.SummaryUnit,
			WarehouseCode:     ctx.location.WarehouseCode,
			Quantity:          roundQuantity(acc.quantity),
			UnitPrice:         acc.unitPrice.Sub(fee),
			LineAmount:        roundMoney(amounts.LineAmount),
			TaxCode:           taxCode,
			DebitAccount:      ctx.accounts.Debit,
			RevenueAccount:    ctx.accounts.Revenue,
			CostAccount:       ctx.accounts.Cost,
			TaxPayableAccount: ctx.accounts.TaxPayable,
			MatterCode:        ctx.location.MatterCode(product, false),
			TaxInvoiceName:    customerName,
			TaxAmount:         roundMoney(amounts.TaxAmount),
		}

		summaries = append(summaries, summary{row: row, fee: fee})
	}

	return summaries
}

// summaryAmounts is the split of an anonymous product total into the fee
// part and the goods part.
type summaryAmounts struct {
	EnvLineAmount decimal.Decimal // TH_TMT
	EnvTaxAmount  decimal.Decimal // TT_TMT
	TaxAmount     decimal.Decimal // TT_goc
	LineAmount    decimal.Decimal // TH_goc
}

// deriveSummaryAmounts splits the totals. The steps must run in this order:
// the fee VAT is computed from the already rounded fee amount, and the
// goods amount is whatever remains of the amount due.
func deriveSummaryAmounts(amountDue, taxAmount, quantity, fee, rate decimal.Decimal) summaryAmounts {
	var s summaryAmounts
	s.EnvLineAmount = roundMoney(fee.Mul(quantity))
	s.EnvTaxAmount = roundMoney(s.EnvLineAmount.Mul(rate))
	s.TaxAmount = taxAmount.Sub(s.EnvTaxAmount)
	s.LineAmount = amountDue.Sub(s.EnvLineAmount).Sub(s.TaxAmount).Sub(s.EnvTaxAmount)
	return s
}
