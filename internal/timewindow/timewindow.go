package timewindow

import (
	"fmt"
	"time"

	"fms/internal/structures"
)

// DateLayout is the canonical date key format used everywhere a report date
// or week start is stored or compared. Keys sort lexicographically in
// chronological order, which the pruning code relies on.
const DateLayout = "2006-01-02"

// Calculator converts wall-clock instants into report dates and week starts.
// A report date begins at the configured reset hour (02:00 by default) in the
// community's timezone, not at midnight.
type Calculator struct {
	loc       *time.Location
	resetHour int
}

func NewCalculator(conf *structures.Config) (*Calculator, error) {
	loc, err := time.LoadLocation(conf.Community.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unable to load community timezone %q: %w", conf.Community.Timezone, err)
	}
	return &Calculator{loc: loc, resetHour: conf.Community.ResetHour}, nil
}

// NewCalculatorAt builds a calculator for a fixed timezone name, bypassing
// config. Used by tests and tooling.
func NewCalculatorAt(tz string, resetHour int) (*Calculator, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, err
	}
	return &Calculator{loc: loc, resetHour: resetHour}, nil
}

// LocalTime returns now in the community timezone.
func (c *Calculator) LocalTime(now time.Time) time.Time {
	return now.In(c.loc)
}

// ResetHour returns the local hour at which the report date rolls over.
func (c *Calculator) ResetHour() int {
	return c.resetHour
}

// ReportDate maps an instant to its report date: before the reset hour the
// date is still the previous calendar day.
func (c *Calculator) ReportDate(now time.Time) string {
	t := now.In(c.loc)
	key := t.Format(DateLayout)
	if t.Hour() < c.resetHour {
		return AddDays(key, -1)
	}
	return key
}

// Yesterday is the report date one day before ReportDate(now).
func (c *Calculator) Yesterday(now time.Time) string {
	return AddDays(c.ReportDate(now), -1)
}

// WeekStart returns the Sunday on or before date. The weekday is taken from
// local noon of that date; anchoring at noon keeps the weekday stable no
// matter what timezone the process itself runs in.
func (c *Calculator) WeekStart(date string) string {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	noon := time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, c.loc)
	return AddDays(date, -int(noon.Weekday()))
}

// WeekDates lists the 7 report dates of the week beginning at weekStart.
func WeekDates(weekStart string) []string {
	dates := make([]string, 7)
	for i := range dates {
		dates[i] = AddDays(weekStart, i)
	}
	return dates
}

// AddDays performs pure calendar arithmetic on a date key. Dates are treated
// as UTC midnight internally so DST transitions cannot shift the result.
func AddDays(date string, n int) string {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return d.AddDate(0, 0, n).Format(DateLayout)
}
