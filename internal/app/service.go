// Package service wires the scoring, targeting and admission domain into the
// operations served by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/outreach/internal/adapters/mq/queue"
	"github.com/okian/outreach/internal/adapters/mq/worker"
	"github.com/okian/outreach/internal/adapters/repository"
	"github.com/okian/outreach/internal/campaign"
	"github.com/okian/outreach/internal/domain/dedupe"
	"github.com/okian/outreach/internal/domain/model"
	"github.com/okian/outreach/internal/domain/pacing"
	"github.com/okian/outreach/internal/domain/ratelimit"
	"github.com/okian/outreach/internal/domain/report"
	"github.com/okian/outreach/internal/domain/scoring"
	"github.com/okian/outreach/internal/domain/types"
	"github.com/okian/outreach/pkg/logger"
	"github.com/okian/outreach/pkg/metrics"
)

// Errors returned by the service.
var (
	ErrNotStarted = types.ErrNotStarted
	ErrQueueFull  = types.ErrQueueFull
	ErrNoReport   = types.ErrNoReport
)

// Service implements the API dependencies.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	limiter *ratelimit.Guarded
	seen    dedupe.Deduper
	pacer   *pacing.Pacer
	runner  *campaign.Runner
	actor   campaign.Actor
	jobs    *queue.InMemoryQueue
	tracker *worker.Tracker
	pool    *worker.Pool

	// Configuration
	dataDir     string
	session     string
	mode        scoring.Mode
	keywords    []string
	topN        int
	maxComments int
	criteria    model.Criteria
	limits      ratelimit.Limits
	pacingOpts  []pacing.Option
	dedupeSize  int
	queueSize   int
	workerCount int
	now         func() time.Time

	// State
	started      bool
	ownsStore    bool
	lastReport   *report.Report
	lastReportAt time.Time

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataDir:     "data",
		session:     "default",
		mode:        scoring.ModeBalanced,
		topN:        20,
		maxComments: 10,
		criteria:    model.DefaultCriteria(),
		limits:      ratelimit.DefaultLimits(),
		dedupeSize:  100_000,
		queueSize:   16,
		workerCount: 1,
		now:         time.Now,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f() }

// Start opens the store, restores the limiter checkpoint and starts the
// campaign workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting outreach service...")

	if s.store == nil {
		st, err := repository.Open(s.dataDir)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = st
		s.ownsStore = true
	}

	lim := ratelimit.New(s.limits, ratelimit.WithClock(clockFunc(s.now)))
	switch st, err := s.store.LoadLimiterState(ctx, s.session); {
	case err == nil:
		lim.Restore(st)
		s.logger.Info(ctx, "restored limiter checkpoint", logger.String("session", s.session))
	case errors.Is(err, repository.ErrNotFound):
	default:
		return fmt.Errorf("load limiter state: %w", err)
	}
	s.limiter = ratelimit.NewGuarded(lim)

	s.seen = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.pacer = pacing.New(append([]pacing.Option{pacing.WithClock(s.now)}, s.pacingOpts...)...)
	if s.actor == nil {
		s.actor = campaign.NewDryRunActor(s.logger)
	}
	s.runner = campaign.New(s.actor, s.limiter,
		campaign.WithPacer(s.pacer),
		campaign.WithJournal(s.store),
		campaign.WithDeduper(s.seen),
		campaign.WithCriteria(s.criteria),
		campaign.WithLogger(s.logger),
		campaign.WithClock(s.now),
		campaign.WithSession(s.session),
	)

	s.jobs = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.tracker = worker.NewTracker(0)
	s.pool = worker.NewPool(s.workerCount, s.jobs, s.runner, s.tracker,
		worker.WithLogger(s.logger), worker.WithClock(s.now))
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.publishLimiter()
	s.logger.Info(ctx, "outreach service started",
		logger.String("session", s.session),
		logger.String("mode", s.mode.String()),
		logger.Int("workers", s.workerCount),
	)
	return nil
}

// Stop drains campaign workers, checkpoints the limiter and closes the store.
func (s *Service) Stop() {
	s.Shutdown(context.Background())
}

// Shutdown is Stop with a deadline: campaigns still running when ctx ends
// are cancelled.
func (s *Service) Shutdown(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(ctx, "stopping outreach service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker shutdown", logger.Error(err))
	}
	ctx = context.WithoutCancel(ctx)
	s.checkpoint(ctx)
	if s.ownsStore {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "close store", logger.Error(err))
		}
		s.store = nil
		s.ownsStore = false
	}
	s.started = false
	s.logger.Info(ctx, "outreach service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

func (s *Service) checkpoint(ctx context.Context) {
	if err := s.store.SaveLimiterState(ctx, s.session, s.limiter.Snapshot()); err != nil {
		s.logger.Error(ctx, "limiter checkpoint failed", logger.Error(err))
	}
}

func (s *Service) publishLimiter() ratelimit.Status {
	st := s.limiter.Status()
	metrics.UpdateLimiterUsage(st.ActionsThisHour, st.ProfilesThisSession, st.MessagesToday, st.CommentsToday)
	return st
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":      s.started,
		"session":      s.session,
		"mode":         s.mode.String(),
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"dedupeSize":   s.dedupeSize,
		"hasReport":    s.lastReport != nil,
		"keywordCount": len(s.keywords),
	}
	if s.started {
		stats["queueLength"] = s.jobs.Len(context.Background())
		stats["seenTargets"] = s.seen.Size()
		stats["limiter"] = s.publishLimiter()
		stats["pacerActions"] = s.pacer.Actions()
		stats["sessionElapsed"] = s.pacer.SessionElapsed().Round(time.Second).String()
	}
	return stats
}
