// =============================================================================
// BKHD to UpSSE Converter - UpSSE Workbook Writer
// =============================================================================
//
// This module renders accounting rows as the UpSSE import workbook.
//
// WORKBOOK STRUCTURE (single sheet):
//
//   | Rows 1-4  | blank (the ledger's import skips them)         |
//   | Row 5     | the 37 column titles                           |
//   | Rows 6-.. | one accounting row each, in the order given    |
//
// Column C holds real dates formatted dd/mm/yyyy. Money columns hold whole
// numbers; quantity and unit price keep their decimals.
//
// =============================================================================

package xlsxwriter

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/bkhd-upsse-converter/internal/types"
)

const (
	// HeaderRow is the sheet row of the column titles.
	HeaderRow = 5

	// FirstDataRow is the sheet row of the first accounting row.
	FirstDataRow = 6

	// DateNumberFormat is applied to the date column.
	DateNumberFormat = "dd/mm/yyyy"

	sheetName  = "Sheet1"
	dateColumn = "C"
)

// =============================================================================
// WRITER FUNCTIONS
// =============================================================================

// Build creates the UpSSE workbook in memory. The caller closes it.
func Build(rows []types.AccountingRow) (*excelize.File, error) {
	f := excelize.NewFile()

	headers := make([]interface{}, len(types.AccountingHeaders))
	for i, h := range types.AccountingHeaders {
		headers[i] = h
	}
	if err := f.SetSheetRow(sheetName, cellName(1, HeaderRow), &headers); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range rows {
		cells := row.Cells()
		if err := f.SetSheetRow(sheetName, cellName(1, FirstDataRow+i), &cells); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", FirstDataRow+i, err)
		}
	}

	if len(rows) > 0 {
		if err := applyDateFormat(f, FirstDataRow+len(rows)-1); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

// Write renders rows as an .xlsx stream.
func Write(w io.Writer, rows []types.AccountingRow) error {
	f, err := Build(rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Bytes renders rows as .xlsx file content.
func Bytes(rows []types.AccountingRow) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile saves rows as an .xlsx file at path.
func WriteFile(path string, rows []types.AccountingRow) error {
	f, err := Build(rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// applyDateFormat styles the date column of every data row.
func applyDateFormat(f *excelize.File, lastRow int) error {
	numFmt := DateNumberFormat
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}

	from := fmt.Sprintf("%s%d", dateColumn, FirstDataRow)
	to := fmt.Sprintf("%s%d", dateColumn, lastRow)
	if err := f.SetCellStyle(sheetName, from, to, style); err != nil {
		return fmt.Errorf("failed to apply date style: %w", err)
	}
	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
