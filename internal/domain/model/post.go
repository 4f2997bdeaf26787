// Package model contains the records passed between ingest, scoring and output.
package model

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

// Post is a scraped post. Records are values and are never mutated by scoring.
type Post struct {
	ID               string   `json:"id"`
	URL              string   `json:"url"`
	AuthorName       string   `json:"author_name"`
	AuthorHeadline   string   `json:"author_headline,omitempty"`
	AuthorProfileURL string   `json:"author_profile_url,omitempty"`
	AuthorID         string   `json:"author_id,omitempty"`
	Title            string   `json:"title,omitempty"`
	Content          string   `json:"content"`
	Likes            Count    `json:"likes"`
	Comments         Count    `json:"comments"`
	Shares           Count    `json:"shares"`
	PostedAt         string   `json:"posted_at,omitempty"`
	PostedRelative   string   `json:"posted_relative,omitempty"`
	Hashtags         []string `json:"hashtags,omitempty"`
	MediaURLs        []string `json:"media_urls,omitempty"`
	Category         string   `json:"category,omitempty"`
	Source           Source   `json:"source"`
	ScrapedAt        string   `json:"scraped_at,omitempty"`
}

// TotalEngagement is likes + comments + shares.
func (p Post) TotalEngagement() int {
	return p.Likes.Int() + p.Comments.Int() + p.Shares.Int()
}

// Key identifies the post for deduplication: URL when present, else ID.
func (p Post) Key() string {
	if p.URL != "" {
		return p.URL
	}
	return p.ID
}

// Layouts accepted for PostedAt, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// PostedTime parses PostedAt. Timestamps without a zone are read in loc.
func (p Post) PostedTime(loc *time.Location) (time.Time, bool) {
	return ParseTimestamp(p.PostedAt, loc)
}

// ParseTimestamp parses s with the accepted layouts.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var hashtagRe = regexp.MustCompile(`#(\w+)`)

// ExtractHashtags returns the hashtags in text, without '#', in order of appearance.
func ExtractHashtags(text string) []string {
	matches := hashtagRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}

type postJSON Post

// MarshalJSON adds the derived total_engagement field.
func (p Post) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		postJSON
		TotalEngagement int `json:"total_engagement"`
	}{postJSON(p), p.TotalEngagement()})
}

// UnmarshalJSON decodes a post. Field names used by the community and
// network scrapers (post_url, author, author_url, comments_count, timestamp,
// source_approach) fill the canonical fields when those are empty. Numeric
// ids are kept as their decimal text. total_engagement is ignored; it is
// always derived.
func (p *Post) UnmarshalJSON(b []byte) error {
	var aux struct {
		postJSON
		ID             Text    `json:"id"`
		AuthorID       Text    `json:"author_id"`
		PostURL        string  `json:"post_url"`
		Author         string  `json:"author"`
		AuthorURL      string  `json:"author_url"`
		CommentsCount  *Count  `json:"comments_count"`
		Timestamp      string  `json:"timestamp"`
		SourceApproach *Source `json:"source_approach"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = Post(aux.postJSON)
	p.ID, p.AuthorID = string(aux.ID), string(aux.AuthorID)
	if p.URL == "" {
		p.URL = aux.PostURL
	}
	if p.AuthorName == "" {
		p.AuthorName = aux.Author
	}
	if p.AuthorProfileURL == "" {
		p.AuthorProfileURL = aux.AuthorURL
	}
	if p.Comments == 0 && aux.CommentsCount != nil {
		p.Comments = *aux.CommentsCount
	}
	if p.PostedRelative == "" {
		p.PostedRelative = aux.Timestamp
	}
	if p.Source == SourceUnknown && aux.SourceApproach != nil {
		p.Source = *aux.SourceApproach
	}
	return nil
}
