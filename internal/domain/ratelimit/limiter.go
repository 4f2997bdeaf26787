// Package ratelimit enforces per-hour, per-session and per-day budgets on
// outward actions.
//
// A Limiter is not safe for concurrent use. Reads never mutate; the Record
// methods apply the lazy daily reset and drop expired hourly entries before
// recording.
package ratelimit

import (
	"time"
)

const (
	// Window is the rolling window of the hourly action budget.
	Window = time.Hour
	// Day is the period after which the daily counters reset.
	Day = 24 * time.Hour
)

// Limits holds the four budgets. Each is independently configurable.
type Limits struct {
	ActionsPerHour     int `json:"actions_per_hour"`
	ProfilesPerSession int `json:"profiles_per_session"`
	MessagesPerDay     int `json:"messages_per_day"`
	CommentsPerDay     int `json:"comments_per_day"`
}

// DefaultLimits returns 20 actions/hour, 50 profiles/session, 25
// messages/day and 30 comments/day.
func DefaultLimits() Limits {
	return Limits{
		ActionsPerHour:     20,
		ProfilesPerSession: 50,
		MessagesPerDay:     25,
		CommentsPerDay:     30,
	}
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(l *Limiter) {
		if c != nil {
			l.clock = c
		}
	}
}

// Limiter tracks recorded actions against Limits.
type Limiter struct {
	limits Limits
	clock  Clock

	actions    []time.Time
	profiles   int
	messages   int
	comments   int
	dailyReset time.Time
}

// New creates a Limiter whose daily period starts now.
func New(limits Limits, opts ...Option) *Limiter {
	l := &Limiter{limits: limits, clock: SystemClock{}}
	for _, opt := range opts {
		opt(l)
	}
	l.dailyReset = l.clock.Now()
	return l
}

// Limits returns the configured budgets.
func (l *Limiter) Limits() Limits { return l.limits }

// CanPerformAction reports whether fewer than ActionsPerHour actions happened
// in the last hour.
func (l *Limiter) CanPerformAction() bool {
	return l.hourlyCount(l.clock.Now()) < l.limits.ActionsPerHour
}

// CanScrapeProfile reports whether the session profile budget has room.
func (l *Limiter) CanScrapeProfile() bool {
	return l.profiles < l.limits.ProfilesPerSession
}

// CanSendMessage reports whether today's message budget has room.
func (l *Limiter) CanSendMessage() bool {
	messages, _ := l.daily(l.clock.Now())
	return messages < l.limits.MessagesPerDay
}

// CanPostComment reports whether today's comment budget has room.
func (l *Limiter) CanPostComment() bool {
	_, comments := l.daily(l.clock.Now())
	return comments < l.limits.CommentsPerDay
}

// TimeUntilNextAction is zero while under the hourly budget; otherwise it is
// the time until the oldest live entry leaves the window.
func (l *Limiter) TimeUntilNextAction() time.Duration {
	now := l.clock.Now()
	if l.hourlyCount(now) < l.limits.ActionsPerHour {
		return 0
	}
	oldest, ok := l.oldestLive(now)
	if !ok {
		return 0
	}
	return max(0, oldest.Add(Window).Sub(now))
}

// RecordAction appends one action to the hourly log.
func (l *Limiter) RecordAction() {
	now := l.clock.Now()
	l.maintain(now)
	l.actions = append(l.actions, now)
}

// RecordProfileScrape counts a scraped profile and one action.
func (l *Limiter) RecordProfileScrape() {
	l.profiles++
	l.RecordAction()
}

// RecordMessage counts a sent message and one action.
func (l *Limiter) RecordMessage() {
	l.maintain(l.clock.Now())
	l.messages++
	l.RecordAction()
}

// RecordComment counts a posted comment and one action.
func (l *Limiter) RecordComment() {
	l.maintain(l.clock.Now())
	l.comments++
	l.RecordAction()
}

// ResetSession clears the per-session profile count.
func (l *Limiter) ResetSession() { l.profiles = 0 }

// maintain applies the daily reset and drops expired hourly entries.
func (l *Limiter) maintain(now time.Time) {
	if now.Sub(l.dailyReset) > Day {
		l.messages, l.comments = 0, 0
		l.dailyReset = now
	}
	cutoff := now.Add(-Window)
	live := l.actions[:0]
	for _, t := range l.actions {
		if t.After(cutoff) {
			live = append(live, t)
		}
	}
	l.actions = live
}

func (l *Limiter) hourlyCount(now time.Time) int {
	cutoff := now.Add(-Window)
	n := 0
	for _, t := range l.actions {
		if t.After(cutoff) {
			n++
		}
	}
	return n
}

func (l *Limiter) oldestLive(now time.Time) (time.Time, bool) {
	cutoff := now.Add(-Window)
	var oldest time.Time
	found := false
	for _, t := range l.actions {
		if t.After(cutoff) && (!found || t.Before(oldest)) {
			oldest, found = t, true
		}
	}
	return oldest, found
}

// daily returns the message and comment counters as they read at now.
func (l *Limiter) daily(now time.Time) (messages, comments int) {
	if now.Sub(l.dailyReset) > Day {
		return 0, 0
	}
	return l.messages, l.comments
}
