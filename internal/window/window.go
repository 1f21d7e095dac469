// Package window computes the reporting date range that drives every
// time-scoped provider query of a run.
package window

import (
	"fmt"
	"time"
)

// DefaultTrailingDays covers the service day and the six days before it.
const DefaultTrailingDays = 7

// Window is the service date of a run and the trailing range ending on it.
// Values are immutable; Next returns a new window.
type Window struct {
	ServiceDate time.Time
	Start       time.Time
	End         time.Time
	days        int
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the Sunday on or before t.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// ServiceDate is the start of the week following now.
func ServiceDate(now time.Time) time.Time {
	return StartOfWeek(now).AddDate(0, 0, 7)
}

// New builds the window that ends with the last instant of serviceDate and
// spans trailingDays calendar days.
func New(serviceDate time.Time, trailingDays int) (Window, error) {
	if trailingDays < 1 {
		return Window{}, fmt.Errorf("trailing days must be >= 1, got %d", trailingDays)
	}
	day := StartOfDay(serviceDate)
	return Window{
		ServiceDate: day,
		Start:       day.AddDate(0, 0, -(trailingDays - 1)),
		End:         day.AddDate(0, 0, 1).Add(-time.Nanosecond),
		days:        trailingDays,
	}, nil
}

// Resolve computes the window for the service date following now.
func Resolve(now time.Time, trailingDays int) (Window, error) {
	return New(ServiceDate(now), trailingDays)
}

// Next returns the same-length window advanced by one week.
func (w Window) Next() Window {
	next, _ := New(w.ServiceDate.AddDate(0, 0, 7), w.days)
	return next
}

// Days reports the window length in calendar days.
func (w Window) Days() int { return w.days }

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

func (w Window) String() string {
	return fmt.Sprintf("%s..%s", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}
