// Package report derives corpus-level statistics from a post collection.
package report

import (
	"math"
	"sort"

	"github.com/okian/outreach/internal/domain/model"
)

const (
	// TopCount is the number of top performers kept.
	TopCount = 5
	// Uncategorized buckets posts with no category.
	Uncategorized = "Uncategorized"

	ideaPrefix   = "Post similar to: "
	ideaMaxRunes = 100
)

// Benchmarks are average and maximum engagement. Averages carry one decimal.
type Benchmarks struct {
	AvgLikes    float64 `json:"avg_likes"`
	AvgComments float64 `json:"avg_comments"`
	MaxLikes    int     `json:"max_likes"`
	MaxComments int     `json:"max_comments"`
}

// TopPost summarizes one top performer.
type TopPost struct {
	Title           string `json:"title"`
	URL             string `json:"url"`
	Author          string `json:"author,omitempty"`
	Likes           int    `json:"likes"`
	Comments        int    `json:"comments"`
	Shares          int    `json:"shares"`
	TotalEngagement int    `json:"total_engagement"`
}

// Report is the aggregate view of a post collection.
type Report struct {
	TotalPosts   int            `json:"total_posts_analyzed"`
	Benchmarks   Benchmarks     `json:"engagement_benchmarks"`
	TopPosts     []TopPost      `json:"top_performing_posts"`
	Categories   map[string]int `json:"category_distribution"`
	ContentIdeas []string       `json:"content_ideas"`
}

// Analyze computes a Report. Ties among top performers keep input order; an
// empty collection yields a zero report with empty, non-nil collections.
func Analyze(posts []model.Post) Report {
	r := Report{
		TotalPosts:   len(posts),
		TopPosts:     []TopPost{},
		Categories:   map[string]int{},
		ContentIdeas: []string{},
	}
	if len(posts) == 0 {
		return r
	}

	var likes, comments int
	for _, p := range posts {
		likes += p.Likes.Int()
		comments += p.Comments.Int()
		r.Benchmarks.MaxLikes = max(r.Benchmarks.MaxLikes, p.Likes.Int())
		r.Benchmarks.MaxComments = max(r.Benchmarks.MaxComments, p.Comments.Int())

		cat := p.Category
		if cat == "" {
			cat = Uncategorized
		}
		r.Categories[cat]++
	}
	n := float64(len(posts))
	r.Benchmarks.AvgLikes = round1(float64(likes) / n)
	r.Benchmarks.AvgComments = round1(float64(comments) / n)

	idx := make([]int, len(posts))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return posts[idx[a]].TotalEngagement() > posts[idx[b]].TotalEngagement()
	})
	if len(idx) > TopCount {
		idx = idx[:TopCount]
	}
	for _, i := range idx {
		p := posts[i]
		r.TopPosts = append(r.TopPosts, TopPost{
			Title:           p.Title,
			URL:             p.URL,
			Author:          p.AuthorName,
			Likes:           p.Likes.Int(),
			Comments:        p.Comments.Int(),
			Shares:          p.Shares.Int(),
			TotalEngagement: p.TotalEngagement(),
		})
		if p.Title != "" {
			r.ContentIdeas = append(r.ContentIdeas, ideaPrefix+truncate(p.Title, ideaMaxRunes))
		}
	}
	return r
}

// CategoryNames returns the category keys sorted by descending count, then name.
func (r Report) CategoryNames() []string {
	names := make([]string, 0, len(r.Categories))
	for k := range r.Categories {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := r.Categories[names[i]], r.Categories[names[j]]
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})
	return names
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
