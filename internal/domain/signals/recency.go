// Package signals maps raw post fields to normalized sub-scores in [0,1].
//
// Every extractor is total: malformed or missing input degrades to a
// neutral value instead of failing. The current time is always passed in.
package signals

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/okian/outreach/internal/domain/model"
)

// Neutral is returned when a signal cannot be computed.
const Neutral = 0.5

// Unit is the unit of a relative-time token.
type Unit int

// Relative-time units.
const (
	UnitNone Unit = iota
	UnitSecond
	UnitMinute
	UnitHour
	UnitDay
	UnitWeek
	UnitMonth
	UnitYear
)

// "mo" precedes "m" so that "2mo" reads as months.
var relativeRe = regexp.MustCompile(`(\d+)\s*(mo|s|m|h|d|w|y)`)

// ParseUnit splits a relative token such as "2h" or "3 mo" into its value and
// unit. ok is false when no unit matches; value is -1 when the digits do not fit an int.
func ParseUnit(token string) (value int, unit Unit, ok bool) {
	m := relativeRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(token)))
	if m == nil {
		return 0, UnitNone, false
	}
	switch m[2] {
	case "s":
		unit = UnitSecond
	case "m":
		unit = UnitMinute
	case "h":
		unit = UnitHour
	case "d":
		unit = UnitDay
	case "w":
		unit = UnitWeek
	case "mo":
		unit = UnitMonth
	case "y":
		unit = UnitYear
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return -1, unit, true
	}
	return n, unit, true
}

// ParseRelative converts a relative token into the elapsed duration it denotes.
// Months count as 30 days and years as 365 days.
func ParseRelative(token string) (time.Duration, bool) {
	n, unit, ok := ParseUnit(token)
	if !ok || n < 0 {
		return 0, false
	}
	d := time.Duration(n)
	switch unit {
	case UnitSecond:
		return d * time.Second, true
	case UnitMinute:
		return d * time.Minute, true
	case UnitHour:
		return d * time.Hour, true
	case UnitDay:
		return d * 24 * time.Hour, true
	case UnitWeek:
		return d * 7 * 24 * time.Hour, true
	case UnitMonth:
		return d * 30 * 24 * time.Hour, true
	case UnitYear:
		return d * 365 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// Elapsed returns how long ago the post was published, preferring the
// absolute timestamp over the relative token. Future timestamps clamp to zero.
func Elapsed(p model.Post, now time.Time) (time.Duration, bool) {
	if ts, ok := p.PostedTime(now.Location()); ok {
		d := now.Sub(ts)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return ParseRelative(p.PostedRelative)
}

// Recency scores freshness on the absolute elapsed-time table.
func Recency(p model.Post, now time.Time) float64 {
	d, ok := Elapsed(p, now)
	if !ok {
		return Neutral
	}
	return RecencyForElapsed(d)
}

// RecencyForElapsed is the absolute table. Upper bounds are exclusive:
// exactly two hours scores 0.9.
func RecencyForElapsed(d time.Duration) float64 {
	switch {
	case d < 2*time.Hour:
		return 1.0
	case d < 6*time.Hour:
		return 0.9
	case d < 12*time.Hour:
		return 0.8
	case d < 24*time.Hour:
		return 0.7
	case d < 48*time.Hour:
		return 0.5
	case d < 72*time.Hour:
		return 0.3
	default:
		return 0.1
	}
}

// RelativeRecency is the coarse table keyed by the unit of a relative token.
func RelativeRecency(token string) float64 {
	n, unit, ok := ParseUnit(token)
	if !ok {
		return Neutral
	}
	switch unit {
	case UnitSecond, UnitMinute:
		return 1.0
	case UnitHour:
		switch {
		case n < 0:
			return 0.7
		case n <= 6:
			return 0.95
		case n <= 12:
			return 0.85
		case n <= 24:
			return 0.7
		default:
			return 0.5
		}
	case UnitDay:
		switch {
		case n < 0:
			return 0.3
		case n == 1:
			return 0.6
		case n <= 3:
			return 0.4
		case n <= 7:
			return 0.2
		default:
			return 0.1
		}
	case UnitWeek:
		return 0.1
	case UnitMonth, UnitYear:
		return 0.05
	default:
		return Neutral
	}
}
