package service

import (
	"context"

	"github.com/okian/outreach/internal/adapters/repository"
	"github.com/okian/outreach/internal/domain/ratelimit"
	"github.com/okian/outreach/internal/domain/types"
	"github.com/okian/outreach/pkg/logger"
	"github.com/okian/outreach/pkg/metrics"
)

// LimiterStatus reports current usage against every budget.
func (s *Service) LimiterStatus() (ratelimit.Status, error) {
	if err := s.ready(); err != nil {
		return ratelimit.Status{}, err
	}
	return s.publishLimiter(), nil
}

// CheckAdmission reports whether an action of kind would be admitted without
// recording it.
func (s *Service) CheckAdmission(k ratelimit.Kind) (types.Admission, error) {
	if err := s.ready(); err != nil {
		return types.Admission{}, err
	}
	allowed := s.limiter.Allows(k)
	metrics.RecordAdmission(k.String(), allowed)
	return types.NewAdmission(k.String(), allowed, s.limiter.TimeUntilNextAction()), nil
}

// RecordAction admits and records an action performed outside the service.
// A refused action is not recorded and reports how long to wait, which is
// zero when a daily or session budget is the blocker.
func (s *Service) RecordAction(ctx context.Context, k ratelimit.Kind, target string) (types.Admission, error) {
	if err := s.ready(); err != nil {
		return types.Admission{}, err
	}
	allowed := s.limiter.Admit(k)
	metrics.RecordAdmission(k.String(), allowed)
	if !allowed {
		return types.NewAdmission(k.String(), false, s.limiter.TimeUntilNextAction()), nil
	}
	a := types.NewAdmission(k.String(), true, 0)

	metrics.RecordActionRecorded(a.Kind)
	if _, err := s.store.AppendAction(ctx, repository.Action{
		Kind:      a.Kind,
		Target:    target,
		Status:    "recorded",
		CreatedAt: s.now(),
	}); err != nil {
		s.logger.Error(ctx, "journal append failed", logger.Error(err))
	}
	s.checkpoint(ctx)
	s.publishLimiter()
	return a, nil
}

// ResetSession clears the per-session profile budget and restarts the pacer session.
func (s *Service) ResetSession(ctx context.Context) (ratelimit.Status, error) {
	if err := s.ready(); err != nil {
		return ratelimit.Status{}, err
	}
	s.limiter.ResetSession()
	s.pacer.ResetSession()
	s.checkpoint(ctx)
	s.logger.Info(ctx, "session reset", logger.String("session", s.session))
	return s.publishLimiter(), nil
}

// Actions lists journaled actions, newest first.
func (s *Service) Actions(ctx context.Context, runID string, limit int) ([]repository.Action, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.ListActions(ctx, runID, limit)
}
