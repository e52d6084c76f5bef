package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/bkhd-upsse-converter/internal/types"
)

func TestFormatTaxCode(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"8", "08"},
		{"8%", "08"},
		{" 8 % ", "08"},
		{"8.0", "08"},
		{"0.08", "08"},
		{"10", "10"},
		{"0.1", "10"},
		{"8.5", "08"},
		{"1", "01"},
		{"0.5", "50"},
		{"0", "00"},
		{"", ""},
		{"abc", ""},
		{"KCT", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatTaxCode(tt.raw))
		})
	}
}

func TestTransformLine_Petroleum(t *testing.T) {
	ctx := testContext(station)
	line := sale(11, "Công ty  A ", e5, "100", "20000")

	row, fee := ctx.transformLine(line)

	assertDecimal(t, "500", fee)
	assert.Equal(t, types.KindNormal, row.Kind)
	assert.Equal(t, "KH0301", row.CustomerCode)
	assert.Equal(t, "Công ty A", row.CustomerName)
	assert.Equal(t, jul15, row.Date)
	assert.Equal(t, "AA000011", row.InvoiceNumber)
	assert.Equal(t, "1C24TAA", row.Symbol)
	assert.Equal(t, "Xuất bán hàng theo hóa đơn số AA000011", row.Description)
	assert.Equal(t, "E5", row.ProductCode)
	assert.Equal(t, e5, row.ProductName)
	assert.Equal(t, "Lít", row.Unit)
	assert.Equal(t, "K01", row.WarehouseCode)
	assert.Equal(t, "10", row.TaxCode)
	assert.Equal(t, "VV92", row.MatterCode)

	assertDecimal(t, "100", row.Quantity)
	assertDecimal(t, "19500", row.UnitPrice)
	assertDecimal(t, "1950000", row.LineAmount)
	assertDecimal(t, "195000", row.TaxAmount)

	assert.Equal(t, "1311", row.DebitAccount)
	assert.Equal(t, "5111", row.RevenueAccount)
	assert.Equal(t, "632", row.CostAccount)
	assert.Equal(t, "33311", row.TaxPayableAccount)

	assert.Equal(t, "Công ty A", row.TaxInvoiceName)
	assert.Equal(t, "12 Lê Lợi", row.TaxInvoiceAddress)
	assert.Equal(t, "0301234567", row.TaxInvoiceTaxID)
}

func TestTransformLine_NonPetroleum(t *testing.T) {
	ctx := testContext(station)
	line := sale(12, "Công ty A", lube, "2", "150000")

	row, fee := ctx.transformLine(line)

	assert.True(t, fee.IsZero())
	assert.Equal(t, "NHOT", row.ProductCode)
	assert.Equal(t, "VVNH", row.MatterCode, "lubricant code is the fallback")
	assertDecimal(t, "150000", row.UnitPrice)
	assertDecimal(t, "300000", row.LineAmount)
	assertDecimal(t, "30000", row.TaxAmount)
}

func TestTransformLine_UnknownProduct(t *testing.T) {
	ctx := testContext(station)
	row, _ := ctx.transformLine(sale(12, "Công ty A", "Nước rửa kính", "1", "30000"))

	assert.Empty(t, row.ProductCode)
	assert.Equal(t, "VVNH", row.MatterCode)
}

func TestCustomerCode(t *testing.T) {
	tests := []struct {
		name     string
		short    string
		taxID    string
		expected string
	}{
		{"short code wins", " KH01 ", "0301234567", "KH01"},
		{"long short code falls through", "ABCDEFGHIJKL", "0301234567", "KH0301"},
		{"eleven characters still count", "ABCDEFGHIJK", "", "ABCDEFGHIJK"},
		{"registered tax ID", "", "0301234567", "KH0301"},
		{"unknown tax ID", "", "9999999999", "K01"},
		{"nothing known", "", "", "K01"},
	}

	ctx := testContext(station)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := sale(11, "Công ty A", lube, "1", "1000")
			line.ShortCustomerCode = tt.short
			line.TaxID = tt.taxID

			row, _ := ctx.transformLine(line)
			assert.Equal(t, tt.expected, row.CustomerCode)
		})
	}
}

func TestInvoiceNumber(t *testing.T) {
	line := sale(11, "Công ty A", lube, "1", "1000")
	line.InvoiceNumber = " 00012345 "

	assert.Equal(t, "AA012345", testContext(station).invoiceNumber(line))
	assert.Equal(t, "HN012345", testContext(hnStation).invoiceNumber(line))

	line.InvoiceNumber = "42"
	assert.Equal(t, "AA42", testContext(station).invoiceNumber(line))
}

func TestSynthesizeEnvironmentalTax(t *testing.T) {
	ctx := testContext(station)
	source, fee := ctx.transformLine(sale(11, "Công ty A", e5, "100", "20000"))
	accounts, err := ctx.bundle.TaxAccounts("V1")
	assert.NoError(t, err)

	row := SynthesizeEnvironmentalTax(source, fee, accounts)

	assert.Equal(t, types.KindEnvironmentalTax, row.Kind)
	assert.Equal(t, EnvironmentalTaxCode, row.ProductCode)
	assert.Equal(t, EnvironmentalTaxName, row.ProductName)
	assertDecimal(t, "500", row.UnitPrice)
	assertDecimal(t, "50000", row.LineAmount)
	assertDecimal(t, "5000", row.TaxAmount)
	assertDecimal(t, "100", row.Quantity)

	assert.Equal(t, "13111", row.DebitAccount)
	assert.Equal(t, "5113", row.RevenueAccount)
	assert.Equal(t, "6321", row.CostAccount)
	assert.Equal(t, "33381", row.TaxPayableAccount)

	// Identity carries over from the source row.
	assert.Equal(t, source.CustomerCode, row.CustomerCode)
	assert.Equal(t, source.InvoiceNumber, row.InvoiceNumber)
	assert.Equal(t, source.Symbol, row.Symbol)
	assert.Equal(t, source.MatterCode, row.MatterCode)
	assert.Equal(t, source.TaxCode, row.TaxCode)

	assert.Empty(t, row.Description)
	assert.Empty(t, row.TaxInvoiceName)
	assert.Empty(t, row.TaxInvoiceAddress)
	assert.Empty(t, row.TaxInvoiceTaxID)

	// The source is not modified.
	assert.Equal(t, "E5", source.ProductCode)
}
