package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Duration is the hour/minute/second triple the tracker client edits.
// Components are strings because they arrive straight from input fields.
type Duration struct {
	Hours string `json:"hours"`
	Mins  string `json:"mins"`
	Secs  string `json:"secs"`
}

// DefaultTimerSeconds is used when a duration is missing or non-positive
const DefaultTimerSeconds = 10 * 60

// ParseNumber parses a numeric string and reports whether it was valid.
// Empty and whitespace-only strings, NaN, and non-numeric input are invalid.
// Negative numbers, decimals, and infinities parse successfully.
func ParseNumber(value string) (float64, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

// NumberOrZero is the permissive variant used by the duration helpers:
// invalid input becomes zero
func NumberOrZero(value string) float64 {
	n, ok := ParseNumber(value)
	if !ok {
		return 0
	}
	return n
}

// DurationToSeconds converts a duration to its total seconds, as a string.
// Returns "" when every component is zero or empty, which the client treats
// as "no duration chosen". Each component is truncated to an integer.
func DurationToSeconds(d Duration) string {
	hours := NumberOrZero(d.Hours)
	mins := NumberOrZero(d.Mins)
	secs := NumberOrZero(d.Secs)

	if hours == 0 && mins == 0 && secs == 0 {
		return ""
	}

	total := int64(hours)*3600 + int64(mins)*60 + int64(secs)
	return strconv.FormatInt(total, 10)
}

// SecondsToDuration converts total seconds into a zero-padded duration.
// Non-positive input yields the default timer duration.
func SecondsToDuration(seconds int64) Duration {
	if seconds <= 0 {
		seconds = DefaultTimerSeconds
	}

	hours := seconds / 3600
	mins := (seconds % 3600) / 60
	secs := seconds % 60

	return Duration{
		Hours: fmt.Sprintf("%02d", hours),
		Mins:  fmt.Sprintf("%02d", mins),
		Secs:  fmt.Sprintf("%02d", secs),
	}
}

// DurationToTimestamp builds a timestamp for today's calendar date at the
// given hour/minute/second. Out-of-range components are not clamped:
// time.Date normalizes them, so hours=999 rolls into a later day.
func DurationToTimestamp(d Duration, now time.Time) time.Time {
	hours := int(NumberOrZero(d.Hours))
	mins := int(NumberOrZero(d.Mins))
	secs := int(NumberOrZero(d.Secs))

	return time.Date(now.Year(), now.Month(), now.Day(), hours, mins, secs, 0, now.Location())
}
