package user

import (
	"strings"
	"time"
)

// DateLayout is the storage and wire layout of a Date.
const DateLayout = "2006-01-02"

var acceptedDateLayouts = []string{
	DateLayout,
	"2006/01/02",
	"01/02/2006",
	time.RFC3339,
}

// Date is a calendar date without a time component. The zero value is not a
// valid date.
type Date struct {
	t time.Time
}

// NewDate returns the calendar date of t in t's own location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date in loc. A nil loc means UTC.
func Today(now time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return NewDate(now.In(loc))
}

// ParseDate parses value using the layouts accepted in import files.
func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Date{}, ErrInvalidDate
	}
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return NewDate(t), nil
		}
	}
	return Date{}, ErrInvalidDate
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Time() time.Time { return d.t }

func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

func (d Date) After(other Date) bool { return d.t.After(other.t) }

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
