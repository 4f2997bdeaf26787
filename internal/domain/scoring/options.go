package scoring

import (
	"time"

	"github.com/okian/outreach/internal/domain/signals"
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithMode sets the weighting mode.
func WithMode(m Mode) Option {
	return func(s *Scorer) {
		s.mode = m
	}
}

// WithKeywords sets the topic keywords. They are trimmed and case-folded.
func WithKeywords(keywords []string) Option {
	return func(s *Scorer) {
		s.keywords = signals.NormalizeKeywords(keywords)
	}
}

// WithClock overrides the time source used as "now" for recency.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}
