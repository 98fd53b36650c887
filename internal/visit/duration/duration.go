// Package duration parses the free-form expected-duration strings agents type into schedules.
//
// Two shapes are accepted: colon-delimited "HH:MM[:SS]" and "<h>h<m>min" with either part
// optional ("2h", "45min", "1h 45min"). Anything else degrades to zero rather than failing;
// ParseStrict exposes the reason so callers can log it.
package duration

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrEmpty is returned by ParseStrict for blank input.
	ErrEmpty = errors.New("duration is empty")
	// ErrMalformed is returned by ParseStrict for input in neither accepted shape.
	ErrMalformed = errors.New("duration is malformed")
)

var (
	clockPattern    = regexp.MustCompile(`^(\d{1,3}):(\d{1,2})(?::(\d{1,2}))?$`)
	freeFormPattern = regexp.MustCompile(`^(?:(\d{1,3})\s*h)?\s*(?:(\d{1,4})\s*min)?$`)
)

// Duration is a whole-visit estimate in hours and minutes. Seconds are dropped.
type Duration struct {
	Hours   int
	Minutes int
}

// Std converts to a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d.Hours)*time.Hour + time.Duration(d.Minutes)*time.Minute
}

// IsZero reports whether the duration adds nothing to an anchor.
func (d Duration) IsZero() bool {
	return d.Hours == 0 && d.Minutes == 0
}

// Parse converts s into a Duration. Empty or malformed input yields the zero Duration.
func Parse(s string) Duration {
	d, _ := ParseStrict(s)
	return d
}

// ParseStrict is Parse with the degrade reason: ErrEmpty, ErrMalformed, or nil.
// The returned Duration is always usable.
func ParseStrict(s string) (Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Duration{}, ErrEmpty
	}

	if m := clockPattern.FindStringSubmatch(s); m != nil {
		return Duration{Hours: atoi(m[1]), Minutes: atoi(m[2])}, nil
	}

	// The free-form pattern matches the empty string too, but s is non-empty here, so a
	// match always has at least one of the two groups.
	if m := freeFormPattern.FindStringSubmatch(s); m != nil {
		return Duration{Hours: atoi(m[1]), Minutes: atoi(m[2])}, nil
	}

	return Duration{}, ErrMalformed
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
