// =============================================================================
// BKHD to UpSSE Converter - Reference Workbook Loader
// =============================================================================
//
// This module reads the three reference workbooks into a Bundle.
//
// WORKBOOK LAYOUTS (first sheet of each file):
//
//   Data.xlsx
//     Row 2, E..I        : matter-code headers (product names; I = lubricants)
//     Rows 3.., D        : location name
//     Rows 3.., E..I     : matter codes for that location
//     Rows 3.., J / K / L: warehouse code / invoice-symbol prefix / zone
//     A10:B13            : environmental fee per product
//     A29:B31            : debit account per zone
//     A33:B35            : revenue account per zone
//     B36                : cost account
//     A38:B40            : tax payable account per zone
//     A44:B46            : tax-row debit account per zone
//     A48:B50            : tax-row revenue account per zone
//     B51                : tax-row cost account
//     A53:B55            : tax-row tax payable account per zone
//
//   MaHH.xlsx   rows 2.. : A product name, C product code
//   DSKH.xlsx   rows 2.. : C tax ID, D customer code
//
// =============================================================================

package refdata

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ginjaninja78/bkhd-upsse-converter/internal/types"
)

// Sources names the three reference workbooks.
type Sources struct {
	DataFile     string
	ProductFile  string
	CustomerFile string
}

// sheetGrid is a first-sheet snapshot with 1-based cell access.
type sheetGrid [][]string

// cell returns the cleaned value at a 1-based row and 0-based column.
func (g sheetGrid) cell(row, col int) string {
	if row < 1 || row > len(g) {
		return ""
	}
	cells := g[row-1]
	if col >= len(cells) {
		return ""
	}
	return types.CleanString(cells[col])
}

// pairs reads columns A and B of rows from..to into a map, skipping rows
// whose key or value is blank.
func (g sheetGrid) pairs(from, to int) map[string]string {
	result := make(map[string]string)
	for row := from; row <= to; row++ {
		key, value := g.cell(row, 0), g.cell(row, 1)
		if key != "" && value != "" {
			result[key] = value
		}
	}
	return result
}

// readGrid opens a workbook and returns the raw values of its first sheet.
func readGrid(path string) (sheetGrid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyWorkbook)
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", path, err)
	}

	return sheetGrid(rows), nil
}

// Load reads all three reference workbooks.
func Load(src Sources, logger *zap.Logger) (*Bundle, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := readGrid(src.DataFile)
	if err != nil {
		return nil, err
	}

	bundle, err := parseDataSheet(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.DataFile, err)
	}

	products, err := readGrid(src.ProductFile)
	if err != nil {
		return nil, err
	}
	bundle.ProductCodes = parseProductSheet(products)

	customers, err := readGrid(src.CustomerFile)
	if err != nil {
		return nil, err
	}
	bundle.CustomerCodes = parseCustomerSheet(customers)

	logger.Info("Loaded reference data",
		zap.Int("locations", len(bundle.LocationOrder)),
		zap.Int("products", len(bundle.ProductCodes)),
		zap.Int("customers", len(bundle.CustomerCodes)))

	return bundle, nil
}

// parseDataSheet reads locations and account tables from the Data sheet.
func parseDataSheet(g sheetGrid) (*Bundle, error) {
	const (
		nameCol       = 3
		matterFirst   = 4
		matterLast    = 8
		warehouseCol  = 9
		symbolCol     = 10
		zoneCol       = 11
		firstLocation = 3
	)

	bundle := &Bundle{
		Locations: make(map[string]Location),
	}

	headers := make([]string, 0, matterLast-matterFirst+1)
	for col := matterFirst; col <= matterLast; col++ {
		headers = append(headers, g.cell(2, col))
	}

	for row := firstLocation; row <= len(g); row++ {
		name := g.cell(row, nameCol)
		if name == "" {
			continue
		}

		loc, seen := bundle.Locations[name]
		if !seen {
			bundle.LocationOrder = append(bundle.LocationOrder, name)
			loc.Name = name
		}
		if v := g.cell(row, warehouseCol); v != "" {
			loc.WarehouseCode = v
		}
		if v := g.cell(row, symbolCol); v != "" {
			loc.SymbolPrefix = v
		}
		if v := g.cell(row, zoneCol); v != "" {
			loc.Zone = v
		}

		// Later rows for the same location replace its matter codes.
		loc.MatterCodes = make(map[string]string)
		loc.LubricantMatterCode = ""
		for i, header := range headers {
			if header == "" {
				continue
			}
			code := g.cell(row, matterFirst+i)
			if i == len(headers)-1 {
				loc.LubricantMatterCode = code
				continue
			}
			loc.MatterCodes[header] = code
		}

		bundle.Locations[name] = loc
	}

	if len(bundle.LocationOrder) == 0 {
		return nil, ErrNoLocations
	}

	bundle.EnvironmentalFees = make(map[string]decimal.Decimal)
	for product, fee := range g.pairs(10, 13) {
		bundle.EnvironmentalFees[product] = types.ParseAmount(fee)
	}

	bundle.DebitAccounts = g.pairs(29, 31)
	bundle.RevenueAccounts = g.pairs(33, 35)
	bundle.CostAccount = g.cell(36, 1)
	bundle.TaxPayableAccounts = g.pairs(38, 40)

	bundle.TaxDebitAccounts = g.pairs(44, 46)
	bundle.TaxRevenueAccounts = g.pairs(48, 50)
	bundle.TaxCostAccount = g.cell(51, 1)
	bundle.TaxTaxPayableAccounts = g.pairs(53, 55)

	return bundle, nil
}

func parseProductSheet(g sheetGrid) map[string]string {
	codes := make(map[string]string)
	for row := 2; row <= len(g); row++ {
		name, code := g.cell(row, 0), g.cell(row, 2)
		if name != "" && code != "" {
			codes[name] = code
		}
	}
	return codes
}

func parseCustomerSheet(g sheetGrid) map[string]string {
	codes := make(map[string]string)
	for row := 2; row <= len(g); row++ {
		taxID := g.cell(row, 2)
		if taxID != "" {
			codes[taxID] = g.cell(row, 3)
		}
	}
	return codes
}
