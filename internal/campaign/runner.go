package campaign

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/okian/outreach/internal/adapters/repository"
	"github.com/okian/outreach/internal/domain/dedupe"
	"github.com/okian/outreach/internal/domain/pacing"
	"github.com/okian/outreach/internal/domain/ratelimit"
	"github.com/okian/outreach/internal/domain/relevance"
	"github.com/okian/outreach/internal/domain/scoring"
	"github.com/okian/outreach/pkg/logger"
	"github.com/okian/outreach/pkg/metrics"
)

// Errors returned by the runner.
var (
	ErrNoComments = errors.New("no comment texts supplied")
	ErrNoTemplate = errors.New("empty message template")
	ErrNoTarget   = errors.New("target has neither url nor id")
	ErrBelowFloor = errors.New("profile below follower or connection minimums")
)

// Status is the result of one campaign item.
type Status string

const (
	StatusDone      Status = "done"
	StatusFailed    Status = "failed"
	StatusDuplicate Status = "duplicate"
	StatusLimited   Status = "limited"
	StatusSkipped   Status = "skipped"
)

// Outcome records what happened to one target.
type Outcome struct {
	Kind   string    `json:"kind"`
	Target string    `json:"target"`
	Text   string    `json:"text,omitempty"`
	Status Status    `json:"status"`
	Error  string    `json:"error,omitempty"`
	At     time.Time `json:"at"`
}

// Gate is the admission side of the rate limiter. *ratelimit.Guarded
// satisfies it. Admit reserves budget atomically; Release returns a
// reservation whose action did not happen.
type Gate interface {
	Admit(k ratelimit.Kind) bool
	Release(k ratelimit.Kind)
	TimeUntilNextAction() time.Duration
	Snapshot() ratelimit.State
}

// Journal persists outcomes and limiter checkpoints. repository.Store
// satisfies it.
type Journal interface {
	AppendAction(ctx context.Context, a repository.Action) (repository.Action, error)
	SaveLimiterState(ctx context.Context, session string, st ratelimit.State) error
}

// Runner drives an Actor over ranked targets.
type Runner struct {
	actor   Actor
	gate    Gate
	pacer   *pacing.Pacer
	journal Journal
	seen    dedupe.Deduper
	floor   *relevance.Analyzer
	log     logger.Logger
	now     func() time.Time
	session string
	runID   string
}

// New creates a Runner acting through actor and admitted by gate.
func New(actor Actor, gate Gate, opts ...Option) *Runner {
	r := &Runner{
		actor:   actor,
		gate:    gate,
		pacer:   pacing.New(),
		seen:    dedupe.NewInMemoryDeduper(),
		log:     logger.Nop(),
		now:     time.Now,
		session: "default",
		runID:   ulid.Make().String(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.Named("campaign")
	return r
}

// RunID identifies this runner's journal rows.
func (r *Runner) RunID() string { return r.runID }

type item struct {
	key    string
	target string
	text   string
	skip   error
	act    func(ctx context.Context) error
}

// CommentOn comments on up to limit targets in order, cycling through comments.
// limit <= 0 means every target. Each run is one pacer session. The run stops
// early when a budget is exhausted, the session grows too long or ctx ends;
// outcomes so far are returned either way.
func (r *Runner) CommentOn(ctx context.Context, targets []scoring.CommentOpportunity, comments []string, limit int) ([]Outcome, error) {
	return r.commentOn(ctx, r.runID, targets, comments, limit)
}

func (r *Runner) commentOn(ctx context.Context, runID string, targets []scoring.CommentOpportunity, comments []string, limit int) ([]Outcome, error) {
	if len(comments) == 0 {
		return nil, ErrNoComments
	}
	items := make([]item, 0, len(targets))
	for i, t := range targets {
		post := t.Post
		text := comments[i%len(comments)]
		items = append(items, item{
			key:    dedupe.PostKey(post),
			target: post.Key(),
			text:   text,
			act:    func(ctx context.Context) error { return r.actor.Comment(ctx, post, text) },
		})
	}
	return r.run(ctx, runID, ratelimit.KindComment, pacing.MediumBase, items, limit)
}

// MessageProfiles sends the rendered template to up to limit profiles in order.
// Profiles below the criteria minimums (see WithCriteria) are skipped.
func (r *Runner) MessageProfiles(ctx context.Context, targets []relevance.RankedProfile, template string, limit int) ([]Outcome, error) {
	return r.messageProfiles(ctx, r.runID, targets, template, limit)
}

func (r *Runner) messageProfiles(ctx context.Context, runID string, targets []relevance.RankedProfile, template string, limit int) ([]Outcome, error) {
	if template == "" {
		return nil, ErrNoTemplate
	}
	items := make([]item, 0, len(targets))
	for _, t := range targets {
		profile := t.Profile
		text := Render(template, profile)
		it := item{
			key:    dedupe.ProfileKey(profile),
			target: profile.Key(),
			text:   text,
			act:    func(ctx context.Context) error { return r.actor.Message(ctx, profile, text) },
		}
		if r.floor != nil && !r.floor.MeetsMinimums(profile) {
			it.skip = ErrBelowFloor
		}
		items = append(items, it)
	}
	return r.run(ctx, runID, ratelimit.KindMessage, pacing.LongBase, items, limit)
}

func (r *Runner) run(ctx context.Context, runID string, kind ratelimit.Kind, base time.Duration, items []item, limit int) ([]Outcome, error) {
	out := make([]Outcome, 0, len(items))
	done := 0
	r.pacer.ResetSession()
	for _, it := range items {
		if limit > 0 && done >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if r.pacer.SessionTooLong() {
			r.log.Warn(ctx, "session length reached, stopping",
				logger.String("run_id", runID), logger.Duration("elapsed", r.pacer.SessionElapsed()), logger.Int("done", done))
			return out, nil
		}
		if it.skip != nil {
			out = append(out, r.finish(ctx, runID, kind, it, StatusSkipped, it.skip))
			continue
		}
		if it.key == "" {
			out = append(out, r.finish(ctx, runID, kind, it, StatusFailed, ErrNoTarget))
			continue
		}
		if r.seen.SeenAndRecord(ctx, it.key) {
			out = append(out, r.finish(ctx, runID, kind, it, StatusDuplicate, nil))
			continue
		}

		ok, err := r.admit(ctx, kind)
		if err != nil {
			r.seen.Unrecord(ctx, it.key)
			return out, err
		}
		if !ok {
			r.seen.Unrecord(ctx, it.key)
			out = append(out, r.finish(ctx, runID, kind, it, StatusLimited, nil))
			r.log.Warn(ctx, "budget exhausted, stopping", logger.String("kind", kind.String()), logger.Int("done", done))
			return out, nil
		}

		if err := r.pace(ctx, base); err != nil {
			r.gate.Release(kind)
			r.seen.Unrecord(ctx, it.key)
			return out, err
		}

		if err := it.act(ctx); err != nil {
			r.gate.Release(kind)
			r.seen.Unrecord(ctx, it.key)
			out = append(out, r.finish(ctx, runID, kind, it, StatusFailed, err))
			continue
		}

		metrics.RecordActionRecorded(kind.String())
		done++
		out = append(out, r.finish(ctx, runID, kind, it, StatusDone, nil))
		r.checkpoint(ctx)
	}
	return out, nil
}

// admit reserves budget for one action of kind. When only the hourly window
// is full it waits for the oldest entry to expire, provided that fits before
// ctx's deadline. A true result must be followed by the action or a Release.
func (r *Runner) admit(ctx context.Context, kind ratelimit.Kind) (bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		if r.gate.Admit(kind) {
			metrics.RecordAdmission(kind.String(), true)
			return true, nil
		}
		metrics.RecordAdmission(kind.String(), false)

		wait := r.gate.TimeUntilNextAction()
		if wait <= 0 {
			return false, nil
		}
		if deadline, ok := ctx.Deadline(); ok && r.now().Add(wait).After(deadline) {
			return false, nil
		}
		r.log.Info(ctx, "hourly budget full, waiting", logger.Duration("wait", wait))
		if err := r.pacer.Pause(ctx, wait); err != nil {
			return false, err
		}
		// An hour-long idle wait ends the session like a break would.
		r.pacer.ResetSession()
	}
	return false, nil
}

func (r *Runner) pace(ctx context.Context, base time.Duration) error {
	if r.pacer.ShouldTakeBreak() {
		d := r.pacer.BreakDuration()
		metrics.RecordBreak()
		r.log.Info(ctx, "taking a break", logger.Duration("duration", d))
		if err := r.pacer.Pause(ctx, d); err != nil {
			return err
		}
	}
	_, err := r.pacer.Wait(ctx, base)
	return err
}

func (r *Runner) finish(ctx context.Context, runID string, kind ratelimit.Kind, it item, status Status, err error) Outcome {
	o := Outcome{Kind: kind.String(), Target: it.target, Text: it.text, Status: status, At: r.now()}
	if err != nil {
		o.Error = err.Error()
		r.log.Warn(ctx, "campaign item not completed", logger.String("run_id", runID),
			logger.String("target", it.target), logger.String("status", string(status)), logger.Error(err))
	}
	metrics.RecordCampaignOutcome(o.Kind, string(status))

	if r.journal != nil {
		_, jerr := r.journal.AppendAction(ctx, repository.Action{
			RunID:     runID,
			Kind:      o.Kind,
			Target:    o.Target,
			Status:    string(status),
			Detail:    o.Error,
			CreatedAt: o.At,
		})
		if jerr != nil {
			r.log.Error(ctx, "journal append failed", logger.Error(jerr))
		}
	}
	return o
}

func (r *Runner) checkpoint(ctx context.Context) {
	if r.journal == nil {
		return
	}
	if err := r.journal.SaveLimiterState(ctx, r.session, r.gate.Snapshot()); err != nil {
		r.log.Error(ctx, "limiter checkpoint failed", logger.Error(fmt.Errorf("session %s: %w", r.session, err)))
	}
}

// Summarize counts outcomes by status.
func Summarize(outcomes []Outcome) map[Status]int {
	m := make(map[Status]int, 5)
	for _, o := range outcomes {
		m[o.Status]++
	}
	return m
}
