// =============================================================================
// BKHD to UpSSE Converter - Shared Types
// =============================================================================
//
// This package contains the record types shared by the listing reader, the
// validator, the converter and the workbook writer:
//   - RawLine       : one line of the BKHD sales-invoice listing
//   - Listing       : the declared invoice symbol plus every raw line
//   - AccountingRow : one 37-column UpSSE accounting record
//
// Both the BKHD sheet and the UpSSE sheet are positional. The column
// positions live here and nowhere else; the rest of the code works with
// named fields and only crosses into positional form through ParseLine and
// AccountingRow.Cells.
//
// =============================================================================

package types

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// BKHD COLUMN LAYOUT
// =============================================================================

// Column indices (0-based) of the BKHD listing sheet.
const (
	ColShortCustomerCode = 2  // C
	ColCustomerName      = 3  // D
	ColAddress           = 4  // E
	ColTaxID             = 5  // F
	ColProductName       = 6  // G
	ColQuantity          = 8  // I
	ColUnitPrice         = 9  // J
	ColUnit              = 10 // K
	ColLineAmount        = 13 // N
	ColVATRate           = 14 // O
	ColTaxAmount         = 15 // P
	ColAmountDue         = 16 // Q
	ColSymbolForm        = 17 // R
	ColSymbolSeries      = 18 // S
	ColInvoiceNumber     = 19 // T
	ColTimestamp         = 20 // U
)

// ListingDataStartRow is the first sheet row (1-based) holding invoice lines.
// The declared invoice symbol is read from the series column of this row.
const ListingDataStartRow = 11

// DeclaredSymbolCell is the header cell cross-checked against configuration.
const DeclaredSymbolCell = "S11"

// =============================================================================
// RAW LISTING
// =============================================================================

// RawLine is one invoice line of the BKHD listing.
//
// Text fields keep the cell text as exported; callers clean them where the
// accounting feed needs it. Numeric fields are parsed leniently: thousands
// separators are dropped and anything unparseable counts as zero.
type RawLine struct {
	// RowNumber is the 1-based sheet row, used in error reports.
	RowNumber int

	ShortCustomerCode string
	CustomerName      string
	Address           string
	TaxID             string
	ProductName       string
	Unit              string

	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	LineAmount decimal.Decimal
	TaxAmount  decimal.Decimal
	AmountDue  decimal.Decimal

	// VATRate is the raw VAT cell ("8", "8%", "0.08"). Empty when blank.
	VATRate string

	SymbolForm    string
	SymbolSeries  string
	InvoiceNumber string

	// Timestamp is a float64 day serial (date-typed cell), a time.Time
	// (date written as text) or nil when the cell is unreadable.
	Timestamp interface{}
}

// Qualifies reports whether the line takes part in processing at all.
// Lines with a zero or negative quantity are skipped everywhere.
func (l RawLine) Qualifies() bool {
	return l.Quantity.IsPositive()
}

// Listing is the parsed BKHD workbook.
type Listing struct {
	// DeclaredSymbol is the raw content of DeclaredSymbolCell.
	DeclaredSymbol string

	// Lines holds every row from ListingDataStartRow on, in sheet order.
	Lines []RawLine
}

// ParseLine translates a positional BKHD row into a RawLine.
//
// PARAMETERS:
//   - cells: the raw cell values of the row (missing trailing cells allowed).
//   - rowNumber: the 1-based sheet row.
func ParseLine(cells []string, rowNumber int) RawLine {
	cell := func(index int) string {
		if index < len(cells) {
			return cells[index]
		}
		return ""
	}

	line := RawLine{
		RowNumber:         rowNumber,
		ShortCustomerCode: cell(ColShortCustomerCode),
		CustomerName:      cell(ColCustomerName),
		Address:           cell(ColAddress),
		TaxID:             cell(ColTaxID),
		ProductName:       cell(ColProductName),
		Unit:              cell(ColUnit),
		Quantity:          ParseAmount(cell(ColQuantity)),
		UnitPrice:         ParseAmount(cell(ColUnitPrice)),
		LineAmount:        ParseAmount(cell(ColLineAmount)),
		TaxAmount:         ParseAmount(cell(ColTaxAmount)),
		AmountDue:         ParseAmount(cell(ColAmountDue)),
		VATRate:           strings.TrimSpace(cell(ColVATRate)),
		SymbolForm:        cell(ColSymbolForm),
		SymbolSeries:      cell(ColSymbolSeries),
		InvoiceNumber:     cell(ColInvoiceNumber),
	}

	line.Timestamp = parseTimestamp(cell(ColTimestamp))

	return line
}

// TimestampLayouts are the text forms of the timestamp column, as written
// when a listing is saved as CSV.
var TimestampLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp reads a day serial (date-typed workbook cell) as float64
// and display text as time.Time. Anything else is nil.
func parseTimestamp(raw string) interface{} {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		return serial
	}
	for _, layout := range TimestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return nil
}

// =============================================================================
// ACCOUNTING ROWS
// =============================================================================

// RowKind tells normal accounting rows and environmental-tax rows apart.
type RowKind int

const (
	// KindNormal is an invoice line or an anonymous-sale summary.
	KindNormal RowKind = iota

	// KindEnvironmentalTax is the synthesized TMT companion row.
	KindEnvironmentalTax
)

func (k RowKind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindEnvironmentalTax:
		return "environmental_tax"
	default:
		return "unknown"
	}
}

// AccountingColumns is the fixed width of an UpSSE row.
const AccountingColumns = 37

// AccountingHeaders are the UpSSE column titles, in import order.
var AccountingHeaders = [AccountingColumns]string{
	"Mã khách", "Tên khách hàng", "Ngày", "Số hóa đơn", "Ký hiệu", "Diễn giải",
	"Mã hàng", "Tên mặt hàng", "Đvt", "Mã kho", "Mã vị trí", "Mã lô",
	"Số lượng", "Giá bán", "Tiền hàng", "Mã nt", "Tỷ giá", "Mã thuế",
	"Tk nợ", "Tk doanh thu", "Tk giá vốn", "Tk thuế có", "Cục thuế", "Vụ việc",
	"Bộ phận", "Lsx", "Sản phẩm", "Hợp đồng", "Phí", "Khế ước",
	"Nhân viên bán", "Tên KH(thuế)", "Địa chỉ (thuế)", "Mã số Thuế", "Nhóm Hàng", "Ghi chú",
	"Tiền thuế",
}

// AccountingRow is one UpSSE record. Slots the feed never fills (location,
// lot, currency, exchange rate, tax office, department and the like) are not
// modelled and render as blanks.
type AccountingRow struct {
	Kind RowKind

	CustomerCode  string
	CustomerName  string
	Date          time.Time
	InvoiceNumber string
	Symbol        string
	Description   string
	ProductCode   string
	ProductName   string
	Unit          string
	WarehouseCode string

	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	LineAmount decimal.Decimal

	TaxCode           string
	DebitAccount      string
	RevenueAccount    string
	CostAccount       string
	TaxPayableAccount string
	MatterCode        string

	TaxInvoiceName    string
	TaxInvoiceAddress string
	TaxInvoiceTaxID   string

	TaxAmount decimal.Decimal
}

// Cells renders the row in UpSSE column order.
func (r AccountingRow) Cells() []interface{} {
	cells := make([]interface{}, AccountingColumns)
	for i := range cells {
		cells[i] = ""
	}

	cells[0] = r.CustomerCode
	cells[1] = r.CustomerName
	cells[2] = r.Date
	cells[3] = r.InvoiceNumber
	cells[4] = r.Symbol
	cells[5] = r.Description
	cells[6] = r.ProductCode
	cells[7] = r.ProductName
	cells[8] = r.Unit
	cells[9] = r.WarehouseCode
	cells[12] = r.Quantity.InexactFloat64()
	cells[13] = r.UnitPrice.InexactFloat64()
	cells[14] = r.LineAmount.IntPart()
	cells[17] = r.TaxCode
	cells[18] = r.DebitAccount
	cells[19] = r.RevenueAccount
	cells[20] = r.CostAccount
	cells[21] = r.TaxPayableAccount
	cells[23] = r.MatterCode
	cells[31] = r.TaxInvoiceName
	cells[32] = r.TaxInvoiceAddress
	cells[33] = r.TaxInvoiceTaxID
	cells[36] = r.TaxAmount.IntPart()

	return cells
}

// =============================================================================
// CELL HELPERS
// =============================================================================

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanString trims a cell, drops a leading text-marker apostrophe and
// collapses internal whitespace runs to a single space. Text is brought to
// NFC so decomposed Vietnamese diacritics match the reference tables.
func CleanString(s string) string {
	cleaned := strings.TrimSpace(norm.NFC.String(s))
	cleaned = strings.TrimPrefix(cleaned, "'")
	return whitespaceRun.ReplaceAllString(cleaned, " ")
}

// ParseAmount parses a numeric cell. Commas are treated as thousands
// separators; blanks and garbage yield zero.
func ParseAmount(s string) decimal.Decimal {
	cleaned := strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Tail returns the last n characters (not bytes) of s, or s itself when it
// is shorter.
func Tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
