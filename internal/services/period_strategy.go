// Package services provides business logic and orchestration services.
//
// This file holds the per-period scheduling strategies used to advance a
// recurring transaction's next occurrence. Each repetition type maps to a
// PeriodStepper; the registry can be extended with custom periods.
package services

import (
	"fmt"
	"time"

	"smartspend/internal/core"
)

// PeriodStepper advances a schedule by one period.
type PeriodStepper interface {
	Next(t time.Time) time.Time
}

// CalendarStepper advances by a fixed calendar offset using time.AddDate,
// so month ends normalize forward (Jan 31 + 1 month = Mar 2 or 3).
type CalendarStepper struct {
	Years, Months, Days int
}

func (s CalendarStepper) Next(t time.Time) time.Time {
	return t.AddDate(s.Years, s.Months, s.Days)
}

// periodSteppers maps repetition types to their steppers.
var periodSteppers = map[core.RepetitionTypes]PeriodStepper{
	core.Daily:   CalendarStepper{Days: 1},
	core.Weekly:  CalendarStepper{Days: 7},
	core.Monthly: CalendarStepper{Months: 1},
	core.Yearly:  CalendarStepper{Years: 1},
}

// GetPeriodStepper returns the stepper for a repetition type.
func GetPeriodStepper(period core.RepetitionTypes) (PeriodStepper, error) {
	stepper, ok := periodSteppers[period]
	if !ok {
		return nil, fmt.Errorf("unknown repetition type: %s", period)
	}
	return stepper, nil
}

// RegisterPeriodStepper registers a stepper for a new or existing repetition type.
func RegisterPeriodStepper(period core.RepetitionTypes, stepper PeriodStepper) {
	periodSteppers[period] = stepper
}

// IsDue reports whether an occurrence scheduled at next should fire on now's
// calendar day. Both sides are truncated to midnight before comparing.
func IsDue(next, now time.Time) bool {
	return !core.Midnight(next.In(now.Location())).After(core.Midnight(now))
}
