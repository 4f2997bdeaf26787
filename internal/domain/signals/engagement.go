package signals

import (
	"strings"

	"github.com/okian/outreach/internal/domain/model"
)

// EngagementOpportunity rewards some likes with few comments over popular,
// crowded posts. First match wins.
func EngagementOpportunity(p model.Post) float64 {
	likes, comments := p.Likes.Int(), p.Comments.Int()
	switch {
	case likes >= 5 && comments <= 3:
		return 1.0
	case likes >= 3 && comments <= 5:
		return 0.8
	case likes >= 1 && comments <= 3:
		return 0.7
	case comments == 0:
		return 0.6
	case comments > 20:
		return 0.2
	default:
		return 0.5
	}
}

// Visibility rewards engagement magnitude on likes + comments.
func Visibility(p model.Post) float64 {
	total := p.Likes.Int() + p.Comments.Int()
	switch {
	case total >= 50:
		return 1.0
	case total >= 30:
		return 0.9
	case total >= 20:
		return 0.8
	case total >= 10:
		return 0.7
	case total >= 5:
		return 0.5
	default:
		return 0.3
	}
}

// SweetSpot is the comment-targeting engagement heuristic. It is tuned
// separately from EngagementOpportunity.
func SweetSpot(p model.Post) float64 {
	likes, comments := p.Likes.Int(), p.Comments.Int()
	switch {
	case likes >= 10 && likes <= 100 && comments < 10:
		return 1.0
	case likes >= 5 && likes <= 200 && comments < 20:
		return 0.8
	case likes > 0 && float64(comments) < float64(likes)*0.2:
		return 0.6
	case likes == 0 && comments == 0:
		return 0.3
	case comments > 50:
		return 0.2
	default:
		return 0.4
	}
}

// Topic counts case-insensitive keyword hits in title and content.
// Keywords are expected lower-cased; see NormalizeKeywords.
func Topic(p model.Post, keywords []string) float64 {
	if len(keywords) == 0 {
		return Neutral
	}
	text := strings.ToLower(p.Title + " " + p.Content)
	matches := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			matches++
		}
	}
	switch {
	case matches >= 3:
		return 1.0
	case matches >= 2:
		return 0.8
	case matches >= 1:
		return 0.6
	default:
		return 0.2
	}
}

// NormalizeKeywords trims and lower-cases keywords, dropping blanks and keeping order.
func NormalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
