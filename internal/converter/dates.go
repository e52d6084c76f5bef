// =============================================================================
// BKHD to UpSSE Converter - Transaction Date Resolution
// =============================================================================
//
// A BKHD listing covers exactly one business day. The day is read from the
// timestamp column of the qualifying lines, which are either real dates or
// spreadsheet day serials.
//
// The exporting software sometimes swaps day and month. When the day is 12
// or less and swapping produces a different valid date, the listing is
// ambiguous and the user has to pick. The pick comes back as a confirmed
// date on the next request and skips detection entirely.
//
// =============================================================================

package converter

import (
	"fmt"
	"math"
	"time"

	"github.com/ginjaninja78/bkhd-upsse-converter/internal/types"
)

const (
	// DateValueLayout is the machine form of a confirmed date.
	DateValueLayout = "2006-01-02"

	// DateLabelLayout is how dates are shown to the user.
	DateLabelLayout = "02/01/2006"
)

// serialEpoch is day zero of spreadsheet date serials.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// DateState tells whether a date is known or a user choice is pending.
type DateState int

const (
	// Resolved means Date holds the transaction date.
	Resolved DateState = iota

	// AwaitingDateChoice means Options holds the two readings to choose from.
	AwaitingDateChoice
)

// DateOption is one candidate reading of an ambiguous date.
type DateOption struct {
	// Label is the dd/mm/yyyy text shown to the user.
	Label string

	// Value is the YYYY-MM-DD text sent back as the confirmed date.
	Value string
}

// DateResolution is the outcome of ResolveDate.
type DateResolution struct {
	State DateState
	Date  time.Time

	// Options lists the literal reading first and the swapped one second.
	Options []DateOption
}

// Ambiguous reports whether the caller has to ask the user.
func (r DateResolution) Ambiguous() bool {
	return r.State == AwaitingDateChoice
}

// ResolveDate determines the single transaction date of a listing.
//
// PARAMETERS:
//   - lines: every line of the listing; non-qualifying lines are ignored.
//   - confirmed: a YYYY-MM-DD date chosen earlier by the user, or "".
//
// RETURNS:
//   - A resolved date, or an awaiting-choice result with two options.
//   - ErrInvalidConfirmedDate, ErrNoValidRows or ErrMultiDateListing.
func ResolveDate(lines []types.RawLine, confirmed string) (DateResolution, error) {
	if confirmed != "" {
		date, err := time.Parse(DateValueLayout, confirmed)
		if err != nil {
			return DateResolution{}, fmt.Errorf("%w: %q", ErrInvalidConfirmedDate, confirmed)
		}
		return DateResolution{State: Resolved, Date: date}, nil
	}

	dates := distinctDates(lines)
	switch len(dates) {
	case 0:
		return DateResolution{}, ErrNoValidRows
	case 1:
	default:
		return DateResolution{}, fmt.Errorf("%w: found %d different dates", ErrMultiDateListing, len(dates))
	}

	literal := dates[0]
	if literal.Day() > 12 {
		return DateResolution{State: Resolved, Date: literal}, nil
	}

	swapped, ok := swapDayMonth(literal)
	if !ok || swapped.Equal(literal) {
		return DateResolution{State: Resolved, Date: literal}, nil
	}

	return DateResolution{
		State: AwaitingDateChoice,
		Options: []DateOption{
			{Label: literal.Format(DateLabelLayout), Value: literal.Format(DateValueLayout)},
			{Label: swapped.Format(DateLabelLayout), Value: swapped.Format(DateValueLayout)},
		},
	}, nil
}

// distinctDates collects the calendar dates of qualifying lines in first-seen
// order.
func distinctDates(lines []types.RawLine) []time.Time {
	seen := make(map[time.Time]bool)
	var dates []time.Time

	for _, line := range lines {
		if !line.Qualifies() {
			continue
		}
		date, ok := calendarDate(line.Timestamp)
		if !ok || seen[date] {
			continue
		}
		seen[date] = true
		dates = append(dates, date)
	}

	return dates
}

// calendarDate reduces a timestamp cell to midnight UTC of its day.
func calendarDate(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC), true
	case float64:
		return serialToDate(v)
	case int:
		return serialToDate(float64(v))
	case int64:
		return serialToDate(float64(v))
	default:
		return time.Time{}, false
	}
}

// serialToDate converts a day serial, dropping the time-of-day fraction.
func serialToDate(serial float64) (time.Time, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return time.Time{}, false
	}
	return serialEpoch.AddDate(0, 0, int(math.Floor(serial))), true
}

// swapDayMonth exchanges day and month. ok is false when the result is not
// a real calendar date.
func swapDayMonth(date time.Time) (time.Time, bool) {
	month, day := date.Day(), int(date.Month())
	if month < 1 || month > 12 {
		return time.Time{}, false
	}

	swapped := time.Date(date.Year(), time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if swapped.Day() != day || int(swapped.Month()) != month {
		return time.Time{}, false
	}
	return swapped, true
}
