package shared

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DateOf drops the clock and zone of t, keeping its calendar date as UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, InvalidInput("date %q must use %s", raw, DateLayout)
	}
	return t, nil
}

// DateRange is an inclusive calendar date window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange normalises both bounds and rejects start > end.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: DateOf(start), End: DateOf(end)}
	if r.Start.After(r.End) {
		return DateRange{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, r.Start.Format(DateLayout), r.End.Format(DateLayout))
	}
	return r, nil
}

// Contains reports whether the calendar date of t lies inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Date is a calendar date that travels as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate wraps the calendar date of t.
func NewDate(t time.Time) Date {
	return Date{Time: DateOf(t)}
}

// String formats d with DateLayout.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON encodes d as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON accepts a YYYY-MM-DD string or null.
func (d *Date) UnmarshalJSON(b []byte) error {
	raw := string(b)
	if raw == "null" {
		*d = Date{}
		return nil
	}
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return InvalidInput("date must be a %s string", DateLayout)
	}
	t, err := ParseDate(raw[1 : len(raw)-1])
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
