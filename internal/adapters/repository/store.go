// Package repository persists limiter checkpoints and the action journal.
package repository

import (
	"context"
	"time"

	"github.com/okian/outreach/internal/domain/ratelimit"
)

// Action is one journal row: an outward action attempted by a campaign run
// or recorded through the API.
type Action struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id,omitempty"`
	Kind      string    `json:"kind"`
	Target    string    `json:"target,omitempty"`
	Status    string    `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store provides read/write access to persisted state.
type Store interface {
	// SaveLimiterState replaces the checkpoint for session.
	SaveLimiterState(ctx context.Context, session string, st ratelimit.State) error

	// LoadLimiterState returns the checkpoint for session.
	// Returns ErrNotFound if none was saved.
	LoadLimiterState(ctx context.Context, session string) (ratelimit.State, error)

	// AppendAction journals a. Empty ID and zero CreatedAt are filled in.
	AppendAction(ctx context.Context, a Action) (Action, error)

	// ListActions returns up to limit actions, newest first. An empty runID
	// lists every run.
	ListActions(ctx context.Context, runID string, limit int) ([]Action, error)

	// CountActionsSince counts journaled actions of kind with the given
	// status created at or after since. An empty status counts every status.
	CountActionsSince(ctx context.Context, kind, status string, since time.Time) (int, error)

	Close() error
}
