// Package daykey converts instants into canonical local calendar-day keys.
//
// A day key is a zero-padded YYYY-MM-DD string naming one calendar day in the
// location of the instant it was derived from. Every conversion from a time to a
// completion key goes through From, so that the same wall-clock day always yields
// the same key regardless of time of day.
package daykey

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the canonical day key layout.
const Layout = "2006-01-02"

// ErrInvalid is returned for strings that are not canonical day keys.
var ErrInvalid = errors.New("invalid day key")

// From returns the day key of t in t's own location.
func From(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// Today returns the day key of now as seen in loc. A nil loc means time.Local.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return From(now.In(loc))
}

// Parse validates key and returns midnight UTC of that calendar day.
// UTC is used only as a neutral carrier for calendar arithmetic.
func Parse(key string) (time.Time, error) {
	if len(key) != len(Layout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalid, key)
	}
	t, err := time.Parse(Layout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalid, key)
	}
	return t, nil
}

// Valid reports whether key is a canonical day key.
func Valid(key string) bool {
	_, err := Parse(key)
	return err == nil
}

// Previous returns the key of the calendar day before key.
func Previous(key string) (string, error) {
	return Shift(key, -1)
}

// Shift moves key by days calendar days.
func Shift(key string, days int) (string, error) {
	t, err := Parse(key)
	if err != nil {
		return "", err
	}
	return From(t.AddDate(0, 0, days)), nil
}

// LastN returns n keys ending at today, newest first.
func LastN(today string, n int) ([]string, error) {
	start, err := Parse(today)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return []string{}, nil
	}

	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		keys = append(keys, From(start.AddDate(0, 0, -i)))
	}
	return keys, nil
}
