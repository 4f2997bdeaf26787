// Package export writes ranked output as CSV and XLSX.
package export

import (
	"strconv"
	"strings"

	"github.com/okian/outreach/internal/domain/relevance"
	"github.com/okian/outreach/internal/domain/scoring"
)

// Column headers.
var (
	PostColumns = []string{
		"rank", "title", "author", "url", "likes", "comments", "shares", "total_engagement",
		"posted_at", "posted_relative", "recency_score", "opportunity_score",
		"visibility_score", "topic_score", "final_score", "rationale", "recommendation",
	}
	CommentColumns = []string{
		"rank", "author", "url", "likes", "comments", "posted_relative", "score", "reasons", "content",
	}
	ProfileColumns = []string{
		"rank", "name", "headline", "title", "company", "industry", "location", "profile_url",
		"followers", "connections", "connection_degree", "score", "category", "personalization_points",
	}
)

const contentPreview = 200

func postRow(rank int, sp scoring.ScoredPost) []any {
	p := sp.Post
	return []any{
		rank, p.Title, p.AuthorName, p.URL, p.Likes.Int(), p.Comments.Int(), p.Shares.Int(),
		p.TotalEngagement(), p.PostedAt, p.PostedRelative,
		sp.SubScores.Recency, sp.SubScores.Opportunity, sp.SubScores.Visibility, sp.SubScores.Topic,
		sp.Final, strings.Join(sp.Rationale, "; "), sp.Recommendation,
	}
}

func commentRow(rank int, c scoring.CommentOpportunity) []any {
	p := c.Post
	return []any{
		rank, p.AuthorName, p.URL, p.Likes.Int(), p.Comments.Int(), p.PostedRelative,
		scoring.Round2(c.Score), strings.Join(c.Reasons, "; "), preview(p.Content),
	}
}

func profileRow(rank int, r relevance.RankedProfile) []any {
	p := r.Profile
	return []any{
		rank, p.Name, p.Headline, p.Title, p.Company, p.Industry, p.Location, p.ProfileURL,
		p.Followers.Int(), p.Connections.Int(), p.Degree.String(),
		scoring.Round2(r.Score), string(r.Category), strings.Join(r.Points, "; "),
	}
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > contentPreview {
		return string(r[:contentPreview]) + "..."
	}
	return s
}

func toStrings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch v := v.(type) {
		case string:
			out[i] = v
		case int:
			out[i] = strconv.Itoa(v)
		case float64:
			out[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return out
}
