package model

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// fyStartMonth is the first month of the Australian financial year.
const fyStartMonth = time.July

// FinancialYear returns the July-June financial year label for d.
// 2025-11-15 -> "2025-26", 2025-06-30 -> "2024-25"
func FinancialYear(d civil.Date) string {
	start := d.Year
	if d.Month < fyStartMonth {
		start--
	}
	return fmt.Sprintf("%04d-%02d", start, (start+1)%100)
}

// FinancialYearBounds returns the first and last day of the financial year containing d.
func FinancialYearBounds(d civil.Date) (civil.Date, civil.Date) {
	start := d.Year
	if d.Month < fyStartMonth {
		start--
	}
	first := civil.Date{Year: start, Month: fyStartMonth, Day: 1}
	last := civil.Date{Year: start + 1, Month: time.June, Day: 30}
	return first, last
}

// Today returns the current local calendar date.
func Today() civil.Date {
	return civil.DateOf(time.Now())
}

// DatePtr returns a pointer to a copy of d, for the optional date fields.
func DatePtr(d civil.Date) *civil.Date {
	return &d
}

func cloneDate(d *civil.Date) *civil.Date {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func isSet(d *civil.Date) bool {
	return d != nil && !d.IsZero()
}
