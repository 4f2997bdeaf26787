package ratelimit

import (
	"slices"
	"time"
)

// Status is a read-only view of the limiter.
type Status struct {
	ActionsThisHour     int  `json:"actions_this_hour"`
	ActionsLimit        int  `json:"actions_limit"`
	ProfilesThisSession int  `json:"profiles_this_session"`
	ProfilesLimit       int  `json:"profiles_limit"`
	MessagesToday       int  `json:"messages_today"`
	MessagesLimit       int  `json:"messages_limit"`
	CommentsToday       int  `json:"comments_today"`
	CommentsLimit       int  `json:"comments_limit"`
	CanAct              bool `json:"can_act"`
	CanScrape           bool `json:"can_scrape"`
	CanMessage          bool `json:"can_message"`
	CanComment          bool `json:"can_comment"`

	RetryAfterSeconds float64 `json:"retry_after_seconds"`
}

// Status reports counts, limits and admission booleans as of now.
func (l *Limiter) Status() Status {
	now := l.clock.Now()
	messages, comments := l.daily(now)
	return Status{
		ActionsThisHour:     l.hourlyCount(now),
		ActionsLimit:        l.limits.ActionsPerHour,
		ProfilesThisSession: l.profiles,
		ProfilesLimit:       l.limits.ProfilesPerSession,
		MessagesToday:       messages,
		MessagesLimit:       l.limits.MessagesPerDay,
		CommentsToday:       comments,
		CommentsLimit:       l.limits.CommentsPerDay,
		CanAct:              l.CanPerformAction(),
		CanScrape:           l.CanScrapeProfile(),
		CanMessage:          l.CanSendMessage(),
		CanComment:          l.CanPostComment(),
		RetryAfterSeconds:   l.TimeUntilNextAction().Seconds(),
	}
}

// State is the persisted form of a Limiter.
type State struct {
	Actions    []time.Time `json:"actions"`
	Profiles   int         `json:"profiles"`
	Messages   int         `json:"messages"`
	Comments   int         `json:"comments"`
	DailyReset time.Time   `json:"daily_reset"`
}

// Snapshot copies the limiter's counters.
func (l *Limiter) Snapshot() State {
	return State{
		Actions:    slices.Clone(l.actions),
		Profiles:   l.profiles,
		Messages:   l.messages,
		Comments:   l.comments,
		DailyReset: l.dailyReset,
	}
}

// Restore replaces the limiter's counters with s. A zero DailyReset starts
// the daily period now.
func (l *Limiter) Restore(s State) {
	l.actions = slices.Clone(s.Actions)
	l.profiles = s.Profiles
	l.messages = s.Messages
	l.comments = s.Comments
	l.dailyReset = s.DailyReset
	if l.dailyReset.IsZero() {
		l.dailyReset = l.clock.Now()
	}
}
