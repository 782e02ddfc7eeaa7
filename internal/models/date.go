package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/annokeeper/internal/common"
)

// DateLayout is the ISO calendar date format used on both stores.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", common.ErrValidation, s)
	}
	return t, nil
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate compares calendar dates only.
func SameDate(a, b time.Time) bool {
	return FormatDate(a) == FormatDate(b)
}

// DateRange is an inclusive range of calendar dates. A zero bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether the calendar date of t lies within r.
func (r DateRange) Contains(t time.Time) bool {
	d := FormatDate(t)
	if !r.From.IsZero() && d < FormatDate(r.From) {
		return false
	}
	if !r.To.IsZero() && d > FormatDate(r.To) {
		return false
	}
	return true
}

// IsZero reports whether both bounds are open.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}
