// =============================================================================
// BKHD to UpSSE Converter - BKHD CSV Parser
// =============================================================================
//
// Some stations save the BKHD listing as CSV instead of a workbook. The CSV
// keeps the sheet layout one-to-one: line N is sheet row N, so invoice
// lines start at line 11 and the declared symbol is column S of line 11.
// Dates saved as text ("15/07/2024 08:15:00") are read by types.ParseLine.
//
// FEATURES:
//   - Comma, semicolon, tab or pipe delimiters
//   - UTF-8 byte order mark is skipped
//   - Ragged records are accepted (short rows are padded with blanks)
//   - Empty lines count as blank rows, so row numbers follow the file
//
// =============================================================================

package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/ginjaninja78/bkhd-upsse-converter/internal/types"
	"github.com/ginjaninja78/bkhd-upsse-converter/internal/xlsxparser"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Settings controls how the CSV is read.
type Settings struct {
	// Delimiter is one of ",", ";", "\t", "tab", "|".
	// Default: ","
	Delimiter string
}

// DefaultSettings returns comma-separated settings.
func DefaultSettings() Settings {
	return Settings{Delimiter: ","}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a BKHD listing from a CSV file.
func Parse(filePath string, settings Settings) (*types.Listing, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file, settings)
}

// ParseReader reads a BKHD listing from a CSV stream.
//
// PARSING PROCESS:
//  1. Skip a UTF-8 byte order mark if present
//  2. Read every record and place it at the sheet row of its first line
//  3. Take the declared symbol from row 11, column S
//  4. Translate rows from 11 on into raw lines
func ParseReader(r io.Reader, settings Settings) (*types.Listing, error) {
	reader := bufio.NewReader(r)
	if head, err := reader.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = reader.Discard(len(utf8BOM))
	}

	csvReader := csv.NewReader(reader)
	if err := configureReader(csvReader, settings); err != nil {
		return nil, err
	}

	rows, err := readRows(csvReader)
	if err != nil {
		return nil, err
	}

	declared := ""
	if first := types.ListingDataStartRow - 1; first < len(rows) {
		if row := rows[first]; types.ColSymbolSeries < len(row) {
			declared = row[types.ColSymbolSeries]
		}
	}

	return xlsxparser.BuildListing(rows, declared)
}

// readRows returns the records indexed by physical line (line 1 at index 0).
// Empty lines, which the CSV reader skips, are kept as blank rows so row
// numbers match the file.
func readRows(csvReader *csv.Reader) ([][]string, error) {
	var rows [][]string
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		line, _ := csvReader.FieldPos(0)
		for len(rows) < line-1 {
			rows = append(rows, nil)
		}
		rows = append(rows, record)
	}
}

// configureReader applies the delimiter and relaxes field-count checks.
func configureReader(reader *csv.Reader, settings Settings) error {
	switch settings.Delimiter {
	case "", ",":
		reader.Comma = ','
	case ";":
		reader.Comma = ';'
	case "\t", "\\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	default:
		return fmt.Errorf("unsupported CSV delimiter %q", settings.Delimiter)
	}

	// Report exports have title rows with fewer fields than data rows.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return nil
}
