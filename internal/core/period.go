package core

import (
	"fmt"
	"time"
)

// AdvancePeriod moves t forward by one unit of the given period. Month and
// year steps follow time.AddDate normalization, so Jan 31 + 1 month lands on
// the 2nd or 3rd of March.
func AdvancePeriod(t time.Time, p RepetitionTypes) time.Time {
	switch p {
	case Daily:
		return t.AddDate(0, 0, 1)
	case Weekly:
		return t.AddDate(0, 0, 7)
	case Monthly:
		return t.AddDate(0, 1, 0)
	case Yearly:
		return t.AddDate(1, 0, 0)
	}
	return t
}

// Midnight truncates t to the start of its calendar day in its own location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ReportWindowStart returns the beginning of the reporting window containing
// now: the most recent Sunday for weekly reports, the first of the month for
// monthly and January 1st for yearly.
func ReportWindowStart(p RepetitionTypes, now time.Time) (time.Time, error) {
	day := Midnight(now)
	switch p {
	case Weekly:
		return day.AddDate(0, 0, -int(day.Weekday())), nil
	case Monthly:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location()), nil
	case Yearly:
		return time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, day.Location()), nil
	}
	return time.Time{}, fmt.Errorf("report period %q: %w", p, ErrInvalidPeriod)
}

// IsDefaultCategoryID reports whether id names one of the eight seeded categories.
func IsDefaultCategoryID(id string) bool {
	for _, c := range DefaultCategories() {
		if c.ID == id {
			return true
		}
	}
	return false
}
