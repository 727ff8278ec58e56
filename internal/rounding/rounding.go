// Package rounding converts raw elapsed time and user-entered durations into
// billing-unit aligned durations. All functions are pure.
package rounding

import (
	"math"
	"strconv"
	"strings"
	"time"

	"chronotrakr/internal/errors"
)

const (
	// BillingUnit is the quantum, in seconds, every logged duration is rounded up to.
	BillingUnit int64 = 30 * 60

	// ClockFormat is the accepted layout for manually edited durations.
	ClockFormat = "HH:MM:SS"

	minimumBilledMinutes = 29

	// MaxClockSeconds is the largest duration ParseClock accepts. It is a
	// whole number of billing units so rounding it cannot overflow.
	MaxClockSeconds = math.MaxInt64 / BillingUnit * BillingUnit
)

var segmentSeconds = [3]int64{3600, 60, 1}

// RoundElapsed rounds a duration in seconds up to the next billing unit.
// Any positive duration below one unit bills a full unit; zero and negative
// durations clamp to zero and durations past MaxClockSeconds to that limit.
func RoundElapsed(durationSeconds int64) int64 {
	if durationSeconds <= 0 {
		return 0
	}
	if durationSeconds < BillingUnit {
		return BillingUnit
	}
	if durationSeconds > MaxClockSeconds {
		return MaxClockSeconds
	}
	return ceilUnits(durationSeconds) * BillingUnit
}

// RoundEditedDuration parses an "HH:MM:SS" string and rounds it to billing
// units. Up to 29 minutes bills one unit, anything longer rounds up to the
// next 30-minute boundary. The result is in seconds.
func RoundEditedDuration(value string) (int64, error) {
	total, err := ParseClock(value)
	if err != nil {
		return 0, err
	}
	if total <= 0 {
		return 0, nil
	}

	// total minutes = total/60, compared without losing the seconds fraction
	if total <= minimumBilledMinutes*60 {
		return BillingUnit, nil
	}
	return ceilUnits(total) * BillingUnit, nil
}

// ParseClock parses "HH:MM:SS" into total seconds. Each segment must be a
// non-negative base-10 integer; minutes and seconds are not limited to 59.
// Totals above MaxClockSeconds are rejected.
func ParseClock(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	parts := strings.Split(trimmed, ":")
	if len(parts) != 3 {
		return 0, errors.NewParseError(value, ClockFormat, nil).
			WithContext("segments", len(parts))
	}

	var total int64
	for i, part := range parts {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return 0, errors.NewParseError(value, ClockFormat, err)
		}
		if n < 0 || strings.HasPrefix(part, "+") {
			return 0, errors.NewParseError(value, ClockFormat, nil).
				WithContext("segment", part)
		}
		if n > (MaxClockSeconds-total)/segmentSeconds[i] {
			return 0, errors.NewParseError(value, ClockFormat, nil).
				WithContext("segment", part).
				WithContext("max_seconds", MaxClockSeconds)
		}
		total += n * segmentSeconds[i]
	}

	return total, nil
}

// ElapsedSeconds returns end-start rounded to the nearest whole second.
func ElapsedSeconds(start, end time.Time) int64 {
	return int64(end.Sub(start).Round(time.Second) / time.Second)
}

func ceilUnits(seconds int64) int64 {
	units := seconds / BillingUnit
	if seconds%BillingUnit != 0 {
		units++
	}
	return units
}
