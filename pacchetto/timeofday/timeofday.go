// Package timeofday parses "hh:mm:ss" strings into a validated time of day.
package timeofday

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMalformedFormat = errors.New("timestamp must have exactly three colon separated fields")
	ErrInvalidNumber   = errors.New("timestamp field is not an integer")
	ErrOutOfRange      = errors.New("timestamp field out of range")
)

// ParseError reports why Input could not be parsed. Err is one of
// ErrMalformedFormat, ErrInvalidNumber or ErrOutOfRange.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse time of day %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TimeOfDay is a wall clock time without a date.
type TimeOfDay struct {
	hour, minute, second int
}

func (t TimeOfDay) Hour() int   { return t.hour }
func (t TimeOfDay) Minute() int { return t.minute }
func (t TimeOfDay) Second() int { return t.second }

// String renders t as zero padded hh:mm:ss.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.hour, t.minute, t.second)
}

// SinceMidnight returns the offset of t from the start of the day.
func (t TimeOfDay) SinceMidnight() time.Duration {
	return time.Duration(t.hour)*time.Hour +
		time.Duration(t.minute)*time.Minute +
		time.Duration(t.second)*time.Second
}

// On places t on the calendar day of date, in date's location.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.hour, t.minute, t.second, 0, date.Location())
}

// Parse converts "h:m:s" into a TimeOfDay. It never panics; every failure is
// a *ParseError.
func Parse(timestamp string) (TimeOfDay, error) {
	parts := strings.Split(timestamp, ":")
	if len(parts) != 3 {
		return TimeOfDay{}, &ParseError{Input: timestamp, Err: ErrMalformedFormat}
	}

	var fields [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return TimeOfDay{}, &ParseError{Input: timestamp, Err: ErrInvalidNumber}
		}
		fields[i] = n
	}

	hour, minute, second := fields[0], fields[1], fields[2]
	if hour < 0 || hour > 23 || minute < 0 || minute >= 60 || second < 0 || second >= 60 {
		return TimeOfDay{}, &ParseError{Input: timestamp, Err: ErrOutOfRange}
	}

	return TimeOfDay{hour: hour, minute: minute, second: second}, nil
}

// MustParse is like Parse but panics on error. Use it for constants only.
func MustParse(timestamp string) TimeOfDay {
	t, err := Parse(timestamp)
	if err != nil {
		panic(err)
	}
	return t
}

// Kind names the failure wrapped by err, for logs and API responses.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedFormat):
		return "malformed_format"
	case errors.Is(err, ErrInvalidNumber):
		return "invalid_number"
	case errors.Is(err, ErrOutOfRange):
		return "out_of_range"
	default:
		return "unknown"
	}
}
