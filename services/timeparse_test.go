package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	t.Run("Valid Numbers", func(t *testing.T) {
		n, ok := ParseNumber("42")
		assert.True(t, ok)
		assert.Equal(t, 42.0, n)

		n, ok = ParseNumber("  7 ")
		assert.True(t, ok)
		assert.Equal(t, 7.0, n)

		n, ok = ParseNumber("-3")
		assert.True(t, ok)
		assert.Equal(t, -3.0, n)

		n, ok = ParseNumber("1.5")
		assert.True(t, ok)
		assert.Equal(t, 1.5, n)
	})

	t.Run("Invalid Input", func(t *testing.T) {
		_, ok := ParseNumber("")
		assert.False(t, ok)

		_, ok = ParseNumber("   ")
		assert.False(t, ok)

		_, ok = ParseNumber("abc")
		assert.False(t, ok)

		_, ok = ParseNumber("NaN")
		assert.False(t, ok)
	})

	t.Run("NumberOrZero", func(t *testing.T) {
		assert.Equal(t, 0.0, NumberOrZero("garbage"))
		assert.Equal(t, 9.0, NumberOrZero("9"))
	})
}

func TestDurationToSeconds(t *testing.T) {
	t.Run("All Zero Yields Empty", func(t *testing.T) {
		assert.Equal(t, "", DurationToSeconds(Duration{Hours: "0", Mins: "0", Secs: "0"}))
		assert.Equal(t, "", DurationToSeconds(Duration{}))
		assert.Equal(t, "", DurationToSeconds(Duration{Hours: "junk"}))
	})

	t.Run("Totals", func(t *testing.T) {
		assert.Equal(t, "3661", DurationToSeconds(Duration{Hours: "1", Mins: "1", Secs: "1"}))
		assert.Equal(t, "90", DurationToSeconds(Duration{Mins: "1", Secs: "30"}))
		assert.Equal(t, "30", DurationToSeconds(Duration{Mins: "junk", Secs: "30"}))
	})

	t.Run("Components Truncate", func(t *testing.T) {
		assert.Equal(t, "90", DurationToSeconds(Duration{Mins: "1.9", Secs: "30.7"}))
	})
}

func TestSecondsToDuration(t *testing.T) {
	t.Run("Zero Padding", func(t *testing.T) {
		d := SecondsToDuration(3661)
		assert.Equal(t, Duration{Hours: "01", Mins: "01", Secs: "01"}, d)
	})

	t.Run("Non-Positive Defaults", func(t *testing.T) {
		d := SecondsToDuration(0)
		assert.Equal(t, Duration{Hours: "00", Mins: "10", Secs: "00"}, d)

		d = SecondsToDuration(-5)
		assert.Equal(t, Duration{Hours: "00", Mins: "10", Secs: "00"}, d)
	})
}

func TestDurationToTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	t.Run("Today At Given Time", func(t *testing.T) {
		ts := DurationToTimestamp(Duration{Hours: "14", Mins: "05", Secs: "30"}, now)
		assert.Equal(t, time.Date(2026, 3, 14, 14, 5, 30, 0, time.UTC), ts)
	})

	t.Run("Overflow Rolls Over", func(t *testing.T) {
		ts := DurationToTimestamp(Duration{Hours: "25"}, now)
		assert.Equal(t, time.Date(2026, 3, 15, 1, 0, 0, 0, time.UTC), ts)
	})

	t.Run("Invalid Components Become Midnight", func(t *testing.T) {
		ts := DurationToTimestamp(Duration{Hours: "junk"}, now)
		assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), ts)
	})
}
