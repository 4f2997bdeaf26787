package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/okian/outreach/internal/domain/model"
	"github.com/okian/outreach/internal/domain/signals"
)

// DefaultMaxCommentResults bounds FindCommentOpportunities when callers have no preference.
const DefaultMaxCommentResults = 10

// Comment-targeting reasons.
const (
	ReasonRecentPost      = "Recent post"
	ReasonGoodEngagement  = "Good engagement opportunity"
	ReasonHighVisiblePost = "High visibility post"
	ReasonLowCommentRatio = "Low comment ratio"
)

// CommentOpportunity is a post selected for live commenting.
type CommentOpportunity struct {
	Post    model.Post `json:"post"`
	Score   float64    `json:"score"`
	Reasons []string   `json:"reasons"`
}

// FindCommentOpportunities scores posts with the sweet-spot routine and
// returns at most maxResults, best first. Ties keep input order.
func FindCommentOpportunities(posts []model.Post, maxResults int, now time.Time) []CommentOpportunity {
	if maxResults <= 0 {
		return []CommentOpportunity{}
	}
	out := make([]CommentOpportunity, len(posts))
	for i, p := range posts {
		out[i] = ScoreCommentOpportunity(p, now)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return TopN(out, maxResults)
}

// ScoreCommentOpportunity scores a single post for comment targeting.
func ScoreCommentOpportunity(p model.Post, now time.Time) CommentOpportunity {
	var score float64
	reasons := make([]string, 0, 4)

	recency := commentRecency(p, now)
	score += 0.3 * recency
	if recency > 0.7 {
		reasons = append(reasons, ReasonRecentPost)
	}

	sweet := signals.SweetSpot(p)
	score += 0.35 * sweet
	if sweet > 0.6 {
		reasons = append(reasons, ReasonGoodEngagement)
	}

	if total := p.TotalEngagement(); total > 50 {
		score += 0.2 * math.Min(1, float64(total)/500)
		reasons = append(reasons, ReasonHighVisiblePost)
	}

	if likes := p.Likes.Int(); likes > 10 && float64(p.Comments.Int())/float64(likes) < 0.1 {
		score += 0.15
		reasons = append(reasons, ReasonLowCommentRatio)
	}

	return CommentOpportunity{Post: p, Score: clamp01(score), Reasons: reasons}
}

// commentRecency prefers the coarse relative table and falls back to the
// absolute table when only a timestamp is known.
func commentRecency(p model.Post, now time.Time) float64 {
	if p.PostedRelative != "" {
		return signals.RelativeRecency(p.PostedRelative)
	}
	if _, ok := p.PostedTime(now.Location()); ok {
		return signals.Recency(p, now)
	}
	return signals.Neutral
}
