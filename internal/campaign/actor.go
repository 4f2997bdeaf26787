// Package campaign executes engagement actions against ranked targets while
// staying inside the rate limiter's budgets and the pacer's rhythm.
package campaign

import (
	"context"

	"github.com/okian/outreach/internal/domain/model"
	"github.com/okian/outreach/pkg/logger"
)

// Actor performs outward actions. Implementations drive a browser, an API
// client or nothing at all.
type Actor interface {
	Comment(ctx context.Context, post model.Post, text string) error
	Message(ctx context.Context, profile model.Profile, text string) error
}

// DryRunActor logs the actions it would take.
type DryRunActor struct {
	log logger.Logger
}

// NewDryRunActor returns an Actor that only logs. A nil log discards.
func NewDryRunActor(log logger.Logger) *DryRunActor {
	if log == nil {
		log = logger.Nop()
	}
	return &DryRunActor{log: log.Named("dry-run")}
}

// Comment logs the comment.
func (a *DryRunActor) Comment(ctx context.Context, post model.Post, text string) error {
	a.log.Info(ctx, "would comment",
		logger.String("post", post.Key()),
		logger.String("author", post.AuthorName),
		logger.String("text", text))
	return nil
}

// Message logs the message.
func (a *DryRunActor) Message(ctx context.Context, profile model.Profile, text string) error {
	a.log.Info(ctx, "would message",
		logger.String("profile", profile.Key()),
		logger.String("name", profile.Name),
		logger.String("text", text))
	return nil
}

var _ Actor = (*DryRunActor)(nil)
