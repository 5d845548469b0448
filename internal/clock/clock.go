// Package clock normalizes the textual timestamps stored on reservation rows
// and supplies the "now" instant the occupancy calculator compares against.
//
// Reservation timestamps arrive in two interchangeable shapes:
//
//	YYYY-MM-DD HH:MM:SS
//	YYYY-MM-DDTHH:MM:SS[anything]
//
// Only the first 19 characters after replacing the T separator are
// significant.  Fractional seconds and zone suffixes are ignored.  All
// instants produced by this package are wall-clock values in the UTC
// location; no zone conversion ever happens.
package clock

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the canonical 19 character timestamp format.
const Layout = "2006-01-02 15:04:05"

// DateLayout is the calendar date format accepted by range queries.
const DateLayout = "2006-01-02"

const significant = len(Layout)

// ErrParse is wrapped by every normalization failure.
var ErrParse = errors.New("malformed timestamp")

// Normalize converts raw into its canonical instant.
func Normalize(raw string) (time.Time, error) {
	s := strings.ReplaceAll(raw, "T", " ")
	if len(s) < significant {
		return time.Time{}, fmt.Errorf("%w: %q is shorter than %d characters", ErrParse, raw, significant)
	}
	t, err := time.ParseInLocation(Layout, s[:significant], time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrParse, raw, err)
	}
	return t, nil
}

// Canonical returns the canonical text of raw, e.g. "2025-01-01T10:00:00.123+09:00"
// becomes "2025-01-01 10:00:00".
func Canonical(raw string) (string, error) {
	t, err := Normalize(raw)
	if err != nil {
		return "", err
	}
	return Format(t), nil
}

// Format renders t at the canonical width.
func Format(t time.Time) string { return t.Format(Layout) }

// ParseDate validates a YYYY-MM-DD calendar date and returns it unchanged.
func ParseDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if _, err := time.ParseInLocation(DateLayout, raw, time.UTC); err != nil {
		return "", fmt.Errorf("%w: date %q", ErrParse, raw)
	}
	return raw, nil
}

// Clock allows injecting time into the occupancy computation.
type Clock interface {
	Now() time.Time
}

type localClock struct {
	offset time.Duration
}

// NewLocal returns a clock that reads the host instant in UTC and shifts it by
// offset.  The host clock is assumed to be UTC; the result is a wall-clock
// value for the kiosk's locale truncated to whole seconds.
func NewLocal(offset time.Duration) Clock {
	return localClock{offset: offset}
}

func (c localClock) Now() time.Time {
	return time.Now().UTC().Add(c.offset).Truncate(time.Second)
}

type fixedClock struct {
	now time.Time
}

// NewFixed returns a clock that always returns the same instant (useful for tests).
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t}
}

func (f fixedClock) Now() time.Time {
	return f.now
}
