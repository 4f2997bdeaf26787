package service

import (
	"fmt"
	"time"

	"github.com/okian/outreach/internal/adapters/ingest"
	"github.com/okian/outreach/internal/adapters/repository"
	"github.com/okian/outreach/internal/campaign"
	"github.com/okian/outreach/internal/config"
	"github.com/okian/outreach/internal/domain/model"
	"github.com/okian/outreach/internal/domain/pacing"
	"github.com/okian/outreach/internal/domain/ratelimit"
	"github.com/okian/outreach/internal/domain/scoring"
	"github.com/okian/outreach/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore injects the repository. Start opens SQLite in the data dir otherwise.
func WithStore(st repository.Store) Option {
	return func(s *Service) { s.store = st }
}

// WithDataDir sets where the SQLite database lives.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithSession names the limiter checkpoint.
func WithSession(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.session = name
		}
	}
}

// WithScoring sets the default mode and keywords for post ranking.
func WithScoring(mode scoring.Mode, keywords []string) Option {
	return func(s *Service) {
		s.mode = mode
		s.keywords = keywords
	}
}

// WithTopN sets the default truncation for ranked output.
func WithTopN(n int) Option {
	return func(s *Service) { s.topN = n }
}

// WithMaxCommentResults sets the default size of comment-target lists.
func WithMaxCommentResults(n int) Option {
	return func(s *Service) { s.maxComments = n }
}

// WithCriteria sets the default profile targeting criteria.
func WithCriteria(c model.Criteria) Option {
	return func(s *Service) { s.criteria = c }
}

// WithLimits sets the admission budgets.
func WithLimits(l ratelimit.Limits) Option {
	return func(s *Service) { s.limits = l }
}

// WithPacing appends pacer options.
func WithPacing(opts ...pacing.Option) Option {
	return func(s *Service) { s.pacingOpts = append(s.pacingOpts, opts...) }
}

// WithActor sets who performs campaign actions. Defaults to a dry run.
func WithActor(a campaign.Actor) Option {
	return func(s *Service) {
		if a != nil {
			s.actor = a
		}
	}
}

// WithDedupeSize bounds the set of targets already acted on.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithQueueSize sets how many campaign jobs may wait.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of campaign workers.
func WithWorkerCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workerCount = n
		}
	}
}

// WithClock sets the time source shared by scoring, limiting and pacing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// FromConfig translates a loaded Config into options. Keywords from
// Scoring.KeywordsFile are appended to Scoring.Keywords.
func FromConfig(cfg *config.Config) ([]Option, error) {
	keywords := append([]string(nil), cfg.Scoring.Keywords...)
	if cfg.Scoring.KeywordsFile != "" {
		extra, err := ingest.LoadKeywords(cfg.Scoring.KeywordsFile)
		if err != nil {
			return nil, fmt.Errorf("keywords file: %w", err)
		}
		keywords = append(keywords, extra...)
	}
	return []Option{
		WithDataDir(cfg.DataDir),
		WithSession(cfg.Session),
		WithScoring(scoring.ParseMode(cfg.Scoring.Mode), keywords),
		WithTopN(cfg.Scoring.TopN),
		WithMaxCommentResults(cfg.Scoring.MaxCommentResults),
		WithCriteria(cfg.Criteria.Model()),
		WithLimits(cfg.Limits.RateLimits()),
		WithPacing(cfg.Pacing.Options()...),
		WithDedupeSize(cfg.DedupeSize),
		WithWorkerCount(cfg.Campaign.Workers),
		WithQueueSize(cfg.Campaign.QueueSize),
	}, nil
}
