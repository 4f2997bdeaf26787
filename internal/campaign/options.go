package campaign

import (
	"time"

	"github.com/okian/outreach/internal/domain/dedupe"
	"github.com/okian/outreach/internal/domain/model"
	"github.com/okian/outreach/internal/domain/pacing"
	"github.com/okian/outreach/internal/domain/relevance"
	"github.com/okian/outreach/pkg/logger"
)

// Option configures a Runner.
type Option func(*Runner)

// WithPacer sets the pacer used between actions.
func WithPacer(p *pacing.Pacer) Option {
	return func(r *Runner) {
		if p != nil {
			r.pacer = p
		}
	}
}

// WithJournal sets where outcomes and limiter checkpoints are written.
func WithJournal(j Journal) Option {
	return func(r *Runner) { r.journal = j }
}

// WithDeduper sets the seen-set used to skip targets already acted on.
func WithDeduper(d dedupe.Deduper) Option {
	return func(r *Runner) {
		if d != nil {
			r.seen = d
		}
	}
}

// WithCriteria skips message targets below the criteria's follower and
// connection minimums.
func WithCriteria(c model.Criteria) Option {
	return func(r *Runner) { r.floor = relevance.NewAnalyzer(c) }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithClock sets the time source used for outcome timestamps and deadline checks.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithSession names the limiter checkpoint written after each action.
func WithSession(name string) Option {
	return func(r *Runner) {
		if name != "" {
			r.session = name
		}
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(r *Runner) {
		if id != "" {
			r.runID = id
		}
	}
}
