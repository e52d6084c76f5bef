// =============================================================================
// BKHD to UpSSE Converter - BKHD Workbook Parser
// =============================================================================
//
// This module reads the BKHD sales-invoice listing exported by the station's
// point-of-sale system.
//
// LISTING STRUCTURE (first sheet):
//
//   | Rows 1-10  | report title, filters and column headers (ignored)       |
//   | Row 11     | first invoice line; S11 also carries the declared symbol |
//   | Rows 12-.. | further invoice lines                                    |
//
// Cells are read raw, so date-typed timestamps arrive as day serials and
// numbers keep their stored precision. Column meaning is fixed; see the
// column constants in the types package.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/bkhd-upsse-converter/internal/types"
)

// ErrEmptyListing is returned when the workbook has no invoice lines.
var ErrEmptyListing = fmt.Errorf("listing has no rows from row %d on", types.ListingDataStartRow)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a BKHD listing from a file.
//
// PARAMETERS:
//   - path: The path to the .xlsx listing.
//
// RETURNS:
//   - The listing with its declared symbol and every line from row 11 on.
//   - An error if the file cannot be opened or has no data rows.
func Parse(path string) (*types.Listing, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open listing: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f)
}

// ParseReader reads a BKHD listing from an uploaded stream.
func ParseReader(r io.Reader) (*types.Listing, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open listing: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f)
}

func parseWorkbook(f *excelize.File) (*types.Listing, error) {
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("listing workbook has no sheets")
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	declared, err := f.GetCellValue(sheet, types.DeclaredSymbolCell, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", types.DeclaredSymbolCell, err)
	}

	return BuildListing(rows, declared)
}

// BuildListing turns raw sheet rows (row 1 at index 0) into a Listing.
// Blank rows inside the data area are kept as non-qualifying lines so row
// numbers stay aligned with the sheet.
func BuildListing(rows [][]string, declaredSymbol string) (*types.Listing, error) {
	first := types.ListingDataStartRow - 1
	if len(rows) <= first {
		return nil, ErrEmptyListing
	}

	listing := &types.Listing{
		DeclaredSymbol: strings.TrimSpace(declaredSymbol),
		Lines:          make([]types.RawLine, 0, len(rows)-first),
	}

	for i := first; i < len(rows); i++ {
		listing.Lines = append(listing.Lines, types.ParseLine(rows[i], i+1))
	}

	return listing, nil
}
