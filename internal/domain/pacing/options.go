package pacing

import (
	"context"
	"time"
)

// Option configures a Pacer.
type Option func(*Pacer)

// WithDelayRange sets the bounds human delays are derived from.
func WithDelayRange(minDelay, maxDelay time.Duration) Option {
	return func(p *Pacer) {
		if minDelay >= 0 && maxDelay >= minDelay {
			p.minDelay, p.maxDelay = minDelay, maxDelay
		}
	}
}

// WithMaxSession sets the session length after which SessionTooLong is true.
func WithMaxSession(d time.Duration) Option {
	return func(p *Pacer) {
		if d > 0 {
			p.maxSession = d
		}
	}
}

// WithBreakPolicy sets the action threshold and random chance for breaks.
func WithBreakPolicy(after int, chance float64) Option {
	return func(p *Pacer) {
		if after > 0 {
			p.breakAfter = after
		}
		if chance >= 0 && chance <= 1 {
			p.breakChance = chance
		}
	}
}

// WithMinSpacing sets the minimum time between consecutive Wait calls.
func WithMinSpacing(d time.Duration) Option {
	return func(p *Pacer) { p.minSpacing = d }
}

// WithSeed makes the delay sequence deterministic. Zero keeps a time-based seed.
func WithSeed(seed int64) Option {
	return func(p *Pacer) {
		if seed != 0 {
			p.seed = seed
		}
	}
}

// WithClock replaces time.Now for session accounting.
func WithClock(now func() time.Time) Option {
	return func(p *Pacer) {
		if now != nil {
			p.now = now
		}
	}
}

// WithSleep replaces the context-aware sleep used by Wait and Pause.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(p *Pacer) {
		if sleep != nil {
			p.sleep = sleep
		}
	}
}
