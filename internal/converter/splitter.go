package converter

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/bkhd-upsse-converter/internal/types"
)

// Pricing periods, also the index into the policy's summary suffix sets.
const (
	periodOld = 0
	periodNew = 1
)

// SplitAtInvoice cuts the listing at the first line whose invoice number
// equals boundary. The boundary line opens the new period.
//
// RETURNS:
//   - ErrBoundaryNotFound if no line carries the invoice number.
//   - ErrEmptyOldPeriod if no qualifying line precedes the boundary.
func SplitAtInvoice(lines []types.RawLine, boundary string) (before, after []types.RawLine, err error) {
	boundary = strings.TrimSpace(boundary)

	index := -1
	for i, line := range lines {
		if strings.TrimSpace(line.InvoiceNumber) == boundary {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, nil, fmt.Errorf("%w: %q", ErrBoundaryNotFound, boundary)
	}

	before, after = lines[:index], lines[index:]
	if !anyQualifying(before) {
		return nil, nil, ErrEmptyOldPeriod
	}

	return before, after, nil
}

func anyQualifying(lines []types.RawLine) bool {
	for _, line := range lines {
		if line.Qualifies() {
			return true
		}
	}
	return false
}
