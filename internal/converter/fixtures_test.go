package converter

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/bkhd-upsse-converter/internal/config"
	"github.com/ginjaninja78/bkhd-upsse-converter/internal/refdata"
	"github.com/ginjaninja78/bkhd-upsse-converter/internal/types"
)

const (
	station   = "Trạm 1"
	hnStation = "Nguyễn Huệ"

	e5    = "Xăng E5 RON 92-II"
	ron95 = "Xăng RON 95-III"
	do05  = "Dầu DO 0,05S-II"
	lube  = "Dầu nhớt Castrol"

	anonymous = "Người mua không lấy hóa đơn"

	// 2024-07-15, unambiguous because the day is above 12.
	serialJul15 = 45488.0
	// 2024-07-03, which also reads as 2024-03-07.
	serialJul03 = 45476.0
)

var jul15 = time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC)

func testBundle() *refdata.Bundle {
	return &refdata.Bundle{
		LocationOrder: []string{station, hnStation},
		Locations: map[string]refdata.Location{
			station: {
				Name:                station,
				WarehouseCode:       "K01",
				SymbolPrefix:        "1C24TAA",
				Zone:                "V1",
				MatterCodes:         map[string]string{e5: "VV92", ron95: "VV95"},
				LubricantMatterCode: "VVNH",
			},
			hnStation: {
				Name:                hnStation,
				WarehouseCode:       "K02",
				SymbolPrefix:        "1C24THN",
				Zone:                "V1",
				MatterCodes:         map[string]string{e5: "HN92"},
				LubricantMatterCode: "HNNH",
			},
		},

		DebitAccounts:      map[string]string{"V1": "1311"},
		RevenueAccounts:    map[string]string{"V1": "5111"},
		TaxPayableAccounts: map[string]string{"V1": "33311"},
		CostAccount:        "632",

		TaxDebitAccounts:      map[string]string{"V1": "13111"},
		TaxRevenueAccounts:    map[string]string{"V1": "5113"},
		TaxTaxPayableAccounts: map[string]string{"V1": "33381"},
		TaxCostAccount:        "6321",

		EnvironmentalFees: map[string]decimal.Decimal{
			e5:    decimal.NewFromInt(500),
			ron95: decimal.NewFromInt(1000),
			do05:  decimal.NewFromInt(500),
		},
		ProductCodes:  map[string]string{e5: "E5", ron95: "X95", do05: "DO05", lube: "NHOT"},
		CustomerCodes: map[string]string{"0301234567": "KH0301"},
	}
}

func testContext(location string) *rowContext {
	bundle := testBundle()
	loc := bundle.Locations[location]
	accounts, _ := bundle.NormalAccounts(loc.Zone)
	return &rowContext{
		bundle:   bundle,
		policy:   config.DefaultPolicy(),
		location: loc,
		accounts: accounts,
		date:     jul15,
	}
}

// sale builds a qualifying invoice line at sheet row `row` with amounts
// consistent with a 10% VAT rate.
func sale(row int, customer, product, qty, price string) types.RawLine {
	q := decimal.RequireFromString(qty)
	p := decimal.RequireFromString(price)
	amount := q.Mul(p).RoundBank(0)
	tax := amount.Div(decimal.NewFromInt(10)).RoundBank(0)

	return types.RawLine{
		RowNumber:     row,
		CustomerName:  customer,
		Address:       "12 Lê Lợi",
		TaxID:         "0301234567",
		ProductName:   product,
		Unit:          "Lít",
		Quantity:      q,
		UnitPrice:     p,
		LineAmount:    amount,
		VATRate:       "10",
		TaxAmount:     tax,
		AmountDue:     amount.Add(tax),
		SymbolForm:    "1",
		SymbolSeries:  "C24TAA",
		InvoiceNumber: fmt.Sprintf("%07d", row),
		Timestamp:     serialJul15,
	}
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, expected, actual.String(), msgAndArgs...)
}
