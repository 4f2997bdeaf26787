// Package types contains request and response shapes shared by the service
// and the HTTP API.
package types

import (
	"math"
	"time"

	"github.com/okian/outreach/internal/domain/model"
	"github.com/okian/outreach/internal/domain/scoring"
)

// RankRequest selects how posts are ranked. Empty fields fall back to the
// service defaults; a nil TopN uses the default and zero yields nothing.
type RankRequest struct {
	Mode     string       `json:"mode,omitempty"`
	Keywords []string     `json:"keywords,omitempty"`
	TopN     *int         `json:"top_n,omitempty"`
	Posts    []model.Post `json:"posts"`
}

// RankedPost is a scored post with its 1-based position.
type RankedPost struct {
	Rank int `json:"rank"`
	scoring.ScoredPost
}

// Ranked numbers scored posts in order.
func Ranked(posts []scoring.ScoredPost) []RankedPost {
	out := make([]RankedPost, len(posts))
	for i, sp := range posts {
		out[i] = RankedPost{Rank: i + 1, ScoredPost: sp}
	}
	return out
}

// Admission answers "may I act now" for one action kind.
type Admission struct {
	Kind              string  `json:"kind"`
	Allowed           bool    `json:"allowed"`
	RetryAfterSeconds float64 `json:"retry_after_seconds"`
}

// NewAdmission builds an Admission; retry is only reported when refused.
func NewAdmission(kind string, allowed bool, retry time.Duration) Admission {
	a := Admission{Kind: kind, Allowed: allowed}
	if !allowed && retry > 0 {
		a.RetryAfterSeconds = math.Ceil(retry.Seconds())
	}
	return a
}

// RetryAfter is RetryAfterSeconds as a duration.
func (a Admission) RetryAfter() time.Duration {
	return time.Duration(a.RetryAfterSeconds * float64(time.Second))
}
