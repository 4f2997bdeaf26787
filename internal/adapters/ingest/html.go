package ingest

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/okian/outreach/internal/domain/model"
)

const (
	feedContainerSelector = `.feed-shared-update-v2, [data-urn*="urn:li:activity"]`
	actorLinkSelector     = `.update-components-actor__title a, .feed-shared-actor__name a`
	actorHeadlineSelector = `.update-components-actor__description, .feed-shared-actor__description`
	contentSelector       = `.feed-shared-update-v2__description, .update-components-text, .feed-shared-text`
	timeSelector          = `.update-components-actor__sub-description, .feed-shared-actor__sub-description`
	reactionsSelector     = `.social-details-social-counts__reactions-count, .reactions-count`
	commentsSelector      = `.social-details-social-counts__comments, button[aria-label*="comment"]`
	repostsSelector       = `.social-details-social-counts__reposts, button[aria-label*="repost"]`

	linkedInOrigin = "https://www.linkedin.com"
)

var (
	activityRe  = regexp.MustCompile(`activity:(\d+)`)
	countTextRe = regexp.MustCompile(`(?i)(\d[\d,.]*)\s*([kmb])?\b`)
	postLinkSel = []string{`a[href*="/feed/update/"]`, `a[href*="activity"]`}
)

// ExtractFeedHTML extracts posts from a saved feed page. Nested containers
// and repeated activity ids are reported once.
func ExtractFeedHTML(r io.Reader, now time.Time) ([]model.Post, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	posts := []model.Post{}
	seen := map[string]struct{}{}
	doc.Find(feedContainerSelector).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(feedContainerSelector).Length() > 0 {
			return
		}
		p := extractPost(s, now)
		if p.Content == "" {
			return
		}
		if k := p.Key(); k != "" {
			if _, dup := seen[k]; dup {
				return
			}
			seen[k] = struct{}{}
		}
		posts = append(posts, p)
	})
	return posts, nil
}

func extractPost(s *goquery.Selection, now time.Time) model.Post {
	p := model.Post{Source: model.SourceBrowser, ScrapedAt: now.Format(time.RFC3339)}

	urn, _ := s.Attr("data-urn")
	if urn == "" {
		urn, _ = s.Find(`[data-urn*="activity"]`).First().Attr("data-urn")
	}
	if m := activityRe.FindStringSubmatch(urn); m != nil {
		p.ID = m[1]
	}

	if a := s.Find(actorLinkSelector).First(); a.Length() > 0 {
		p.AuthorName = collapse(a.Text())
		href, _ := a.Attr("href")
		p.AuthorProfileURL = absolute(stripQuery(href))
	}
	p.AuthorHeadline = collapse(s.Find(actorHeadlineSelector).First().Text())
	p.Content = strings.TrimSpace(s.Find(contentSelector).First().Text())

	for _, sel := range postLinkSel {
		if href, ok := s.Find(sel).First().Attr("href"); ok && href != "" {
			p.URL = absolute(href)
			break
		}
	}
	if p.URL == "" && p.ID != "" {
		p.URL = linkedInOrigin + "/feed/update/urn:li:activity:" + p.ID + "/"
	}

	p.Likes = countText(s.Find(reactionsSelector).First().Text())
	p.Comments = countText(s.Find(commentsSelector).First().Text())
	p.Shares = countText(s.Find(repostsSelector).First().Text())

	p.PostedRelative = relativeTime(s.Find(timeSelector).First().Text())
	p.Hashtags = model.ExtractHashtags(p.Content)
	return p
}

// countText reads the first number in UI text such as "1.2K reactions".
func countText(text string) model.Count {
	m := countTextRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	return model.Count(model.ParseCount(m[1] + m[2]))
}

// relativeTime keeps the first segment of "3h • Edited • Visible to anyone".
func relativeTime(text string) string {
	text = strings.TrimLeft(strings.TrimSpace(text), "•· ")
	if i := strings.IndexAny(text, "•·"); i >= 0 {
		text = text[:i]
	}
	return collapse(text)
}

func collapse(s string) string { return strings.Join(strings.Fields(s), " ") }

func stripQuery(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		return u[:i]
	}
	return u
}

func absolute(u string) string {
	if strings.HasPrefix(u, "/") {
		return linkedInOrigin + u
	}
	return u
}
