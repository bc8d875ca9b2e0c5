package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without time of day, encoded as "2006-01-02".
type Date struct {
	time.Time
}

// NewDate returns the date for the given calendar day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts a plain date or an RFC 3339 timestamp and keeps the date part.
func ParseDate(value string) (Date, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q", ErrValidation, value)
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// Clone returns a copy of d, or nil.
func (d *Date) Clone() *Date {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: date must be a string", ErrValidation)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON encodes a cleared date as "".
func (e DateEdit) MarshalJSON() ([]byte, error) {
	if e.Date == nil {
		return []byte(`""`), nil
	}
	return e.Date.MarshalJSON()
}

// UnmarshalJSON treats "" as clearing the date.
func (e *DateEdit) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte(`""`)) {
		e.Date = nil
		return nil
	}
	var d Date
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	e.Date = &d
	return nil
}
