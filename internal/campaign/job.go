package campaign

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/okian/outreach/internal/domain/ratelimit"
	"github.com/okian/outreach/internal/domain/relevance"
	"github.com/okian/outreach/internal/domain/scoring"
)

// ErrUnknownJobKind is returned for jobs that are neither comments nor messages.
var ErrUnknownJobKind = errors.New("unknown job kind")

// Job is a queued campaign: either comments on posts or messages to profiles.
type Job struct {
	ID       string                       `json:"id"`
	Kind     string                       `json:"kind"`
	Targets  []scoring.CommentOpportunity `json:"targets,omitempty"`
	Comments []string                     `json:"comments,omitempty"`
	Profiles []relevance.RankedProfile    `json:"profiles,omitempty"`
	Template string                       `json:"template,omitempty"`
	Limit    int                          `json:"limit"`
}

// NewCommentJob builds a comment job with a fresh ID.
func NewCommentJob(targets []scoring.CommentOpportunity, comments []string, limit int) Job {
	return Job{ID: ulid.Make().String(), Kind: ratelimit.KindComment.String(), Targets: targets, Comments: comments, Limit: limit}
}

// NewMessageJob builds a message job with a fresh ID.
func NewMessageJob(profiles []relevance.RankedProfile, template string, limit int) Job {
	return Job{ID: ulid.Make().String(), Kind: ratelimit.KindMessage.String(), Profiles: profiles, Template: template, Limit: limit}
}

// Validate checks that the job can run.
func (j Job) Validate() error {
	switch j.Kind {
	case ratelimit.KindComment.String():
		if len(j.Comments) == 0 {
			return ErrNoComments
		}
	case ratelimit.KindMessage.String():
		if j.Template == "" {
			return ErrNoTemplate
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownJobKind, j.Kind)
	}
	return nil
}

// Size is the number of targets in the job.
func (j Job) Size() int { return len(j.Targets) + len(j.Profiles) }

// Execute runs j, journaling its outcomes under the job ID.
func (r *Runner) Execute(ctx context.Context, j Job) ([]Outcome, error) {
	if err := j.Validate(); err != nil {
		return nil, err
	}
	runID := j.ID
	if runID == "" {
		runID = r.runID
	}
	if j.Kind == ratelimit.KindComment.String() {
		return r.commentOn(ctx, runID, j.Targets, j.Comments, j.Limit)
	}
	return r.messageProfiles(ctx, runID, j.Profiles, j.Template, j.Limit)
}
