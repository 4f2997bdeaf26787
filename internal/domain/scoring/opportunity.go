// Package scoring ranks posts as comment opportunities.
//
// Two independent routines live here. Scorer combines the four sub-scores per
// Mode for bulk analysis. FindCommentOpportunities targets live commenting with
// the sweet-spot heuristic and its own weights.
package scoring

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/okian/outreach/internal/domain/model"
	"github.com/okian/outreach/internal/domain/signals"
)

// Rationale reasons.
const (
	ReasonFresh          = "fresh post"
	ReasonLowCompetition = "low competition"
	ReasonHighVisibility = "high visibility"
	ReasonExpertise      = "matches your expertise"
	AverageOpportunity   = "Average opportunity"
)

// SubScores holds the four per-dimension values in [0,1].
type SubScores struct {
	Recency     float64 `json:"recency"`
	Opportunity float64 `json:"opportunity"`
	Visibility  float64 `json:"visibility"`
	Topic       float64 `json:"topic"`
}

// Map returns the sub-scores keyed by dimension name.
func (s SubScores) Map() map[string]float64 {
	return map[string]float64{
		"recency":     s.Recency,
		"opportunity": s.Opportunity,
		"visibility":  s.Visibility,
		"topic":       s.Topic,
	}
}

func (s SubScores) rounded() SubScores {
	return SubScores{
		Recency:     Round2(s.Recency),
		Opportunity: Round2(s.Opportunity),
		Visibility:  Round2(s.Visibility),
		Topic:       Round2(s.Topic),
	}
}

// ScoredPost wraps a post with its scores. Attached values are rounded to two
// decimals; combination happens on unrounded values.
type ScoredPost struct {
	Post           model.Post `json:"post"`
	Mode           Mode       `json:"mode"`
	SubScores      SubScores  `json:"sub_scores"`
	Final          float64    `json:"final_score"`
	Rationale      []string   `json:"rationale"`
	Recommendation string     `json:"recommendation"`
}

// Scorer ranks posts as comment opportunities under one mode and keyword list.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	mode     Mode
	keywords []string
	now      func() time.Time
}

// New creates a Scorer. The default is balanced mode with no keywords.
func New(opts ...Option) *Scorer {
	s := &Scorer{mode: ModeBalanced, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode reports the configured mode.
func (s *Scorer) Mode() Mode { return s.mode }

// Score scores one post against the current time.
func (s *Scorer) Score(p model.Post) ScoredPost {
	return s.scoreAt(p, s.now())
}

func (s *Scorer) scoreAt(p model.Post, now time.Time) ScoredPost {
	sub := SubScores{
		Recency:     signals.Recency(p, now),
		Opportunity: signals.EngagementOpportunity(p),
		Visibility:  signals.Visibility(p),
		Topic:       signals.Topic(p, s.keywords),
	}
	reasons := Rationale(sub)
	return ScoredPost{
		Post:           p,
		Mode:           s.mode,
		SubScores:      sub.rounded(),
		Final:          Round2(clamp01(Combine(s.mode, sub))),
		Rationale:      reasons,
		Recommendation: Recommendation(reasons),
	}
}

// Rank scores every post and sorts descending by the published (rounded)
// final score, so posts that print the same score keep input order.
func (s *Scorer) Rank(posts []model.Post) []ScoredPost {
	now := s.now()
	out := make([]ScoredPost, len(posts))
	for i, p := range posts {
		out[i] = s.scoreAt(p, now)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Final > out[j].Final })
	return out
}

// TopN returns the first n ranked posts. n <= 0 yields an empty slice.
func TopN[T any](ranked []T, n int) []T {
	if n <= 0 {
		return []T{}
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// Combine applies the per-mode weighting.
func Combine(m Mode, s SubScores) float64 {
	switch m {
	case ModeRecent:
		return 0.5*s.Recency + 0.4*s.Opportunity + 0.1*s.Topic
	case ModeEngagement:
		return 0.5*s.Visibility + 0.2*s.Recency + 0.3*s.Topic
	case ModeTopic:
		return 0.5*s.Topic + 0.3*s.Recency + 0.2*s.Opportunity
	case ModeBalanced:
		return 0.25 * (s.Recency + s.Opportunity + s.Visibility + s.Topic)
	default:
		return 0.25 * (s.Recency + s.Opportunity + s.Visibility + s.Topic)
	}
}

// Rationale lists the reasons a post qualifies, in fixed order.
func Rationale(s SubScores) []string {
	reasons := make([]string, 0, 4)
	if s.Recency >= 0.8 {
		reasons = append(reasons, ReasonFresh)
	}
	if s.Opportunity >= 0.7 {
		reasons = append(reasons, ReasonLowCompetition)
	}
	if s.Visibility >= 0.7 {
		reasons = append(reasons, ReasonHighVisibility)
	}
	if s.Topic >= 0.6 {
		reasons = append(reasons, ReasonExpertise)
	}
	return reasons
}

// Recommendation renders reasons as "Good: a, b" or "Average opportunity".
func Recommendation(reasons []string) string {
	if len(reasons) == 0 {
		return AverageOpportunity
	}
	return "Good: " + strings.Join(reasons, ", ")
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
