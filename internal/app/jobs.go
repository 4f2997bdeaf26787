package service

import (
	"context"
	"fmt"

	"github.com/okian/outreach/internal/adapters/mq/worker"
	"github.com/okian/outreach/internal/campaign"
	"github.com/okian/outreach/pkg/logger"
)

// SubmitJob validates j and queues it for the campaign workers.
func (s *Service) SubmitJob(ctx context.Context, j campaign.Job) (worker.JobStatus, error) { //nolint:gocritic // hugeParam: jobs travel by value
	if err := s.ready(); err != nil {
		return worker.JobStatus{}, err
	}
	if err := j.Validate(); err != nil {
		return worker.JobStatus{}, err
	}

	st := s.tracker.Queued(j, s.now())
	if !s.jobs.Enqueue(ctx, j) {
		s.tracker.Forget(j.ID)
		return worker.JobStatus{}, fmt.Errorf("%w: %d jobs waiting", ErrQueueFull, s.jobs.Len(ctx))
	}
	s.logger.Info(ctx, "campaign job queued",
		logger.String("job_id", j.ID),
		logger.String("kind", j.Kind),
		logger.Int("targets", j.Size()))
	return st, nil
}

// Job returns the status of one job. Statuses stay readable after Stop.
func (s *Service) Job(id string) (worker.JobStatus, bool) {
	tr := s.jobTracker()
	if tr == nil {
		return worker.JobStatus{}, false
	}
	return tr.Get(id)
}

// Jobs lists tracked jobs, newest first.
func (s *Service) Jobs() []worker.JobStatus {
	tr := s.jobTracker()
	if tr == nil {
		return nil
	}
	return tr.List()
}

func (s *Service) jobTracker() *worker.Tracker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracker
}
