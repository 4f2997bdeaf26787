package ingest

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/okian/outreach/internal/domain/model"
)

// Provider names a third-party export format.
type Provider string

// Supported providers.
const (
	Phantombuster Provider = "phantombuster"
	Apify         Provider = "apify"
	Skool         Provider = "skool"
)

// ParseProvider reads a provider name.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case Phantombuster, Apify, Skool:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
	}
}

// Result is the outcome of normalizing one batch.
type Result struct {
	Provider        Provider        `json:"source"`
	RawCount        int             `json:"raw_count"`
	NormalizedCount int             `json:"normalized_count"`
	Posts           []model.Post    `json:"posts,omitempty"`
	Profiles        []model.Profile `json:"profiles,omitempty"`
	Errors          []string        `json:"errors,omitempty"`
}

// Success reports whether at least one record survived.
func (r Result) Success() bool { return r.NormalizedCount > 0 }

// Normalizer maps loosely typed third-party records onto model records.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a Normalizer. A nil clock uses time.Now.
func NewNormalizer(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Posts normalizes raw post records. Records without content are dropped.
func (n *Normalizer) Posts(raw []map[string]any, p Provider) (Result, error) {
	res := Result{Provider: p, RawCount: len(raw), Posts: []model.Post{}}
	var conv func(map[string]any) (model.Post, error)
	switch p {
	case Phantombuster:
		conv = n.phantombusterPost
	case Apify:
		conv = n.apifyPost
	case Skool:
		conv = n.skoolPost
	default:
		return res, fmt.Errorf("%w: %q", ErrUnknownSource, p)
	}
	for i, item := range raw {
		post, err := conv(item)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("record %d: %v", i, err))
			continue
		}
		if strings.TrimSpace(post.Content) == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("record %d: no content", i))
			continue
		}
		res.Posts = append(res.Posts, post)
	}
	res.NormalizedCount = len(res.Posts)
	return res, nil
}

// Profiles normalizes raw profile records. Records without a name are dropped.
func (n *Normalizer) Profiles(raw []map[string]any, p Provider) (Result, error) {
	res := Result{Provider: p, RawCount: len(raw), Profiles: []model.Profile{}}
	var conv func(map[string]any) model.Profile
	switch p {
	case Phantombuster:
		conv = n.phantombusterProfile
	case Apify:
		conv = n.apifyProfile
	default:
		return res, fmt.Errorf("%w: %q has no profile format", ErrUnknownSource, p)
	}
	for i, item := range raw {
		profile := conv(item)
		if strings.TrimSpace(profile.Name) == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("record %d: no name", i))
			continue
		}
		res.Profiles = append(res.Profiles, profile)
	}
	res.NormalizedCount = len(res.Profiles)
	return res, nil
}

func (n *Normalizer) scrapedAt() string { return n.now().Format(time.RFC3339) }

func (n *Normalizer) phantombusterProfile(d map[string]any) model.Profile {
	return model.Profile{
		ID:          str(d, "profileId", "vmid"),
		Name:        str(d, "name", "fullName"),
		Headline:    str(d, "headline", "title"),
		ProfileURL:  str(d, "profileUrl", "linkedinProfile"),
		Location:    str(d, "location", "city"),
		About:       str(d, "summary", "about"),
		Company:     str(d, "company", "companyName"),
		Title:       str(d, "jobTitle", "currentJob"),
		Industry:    str(d, "industry"),
		Connections: count(d, "connectionCount", "connections"),
		Followers:   count(d, "followerCount", "followers"),
		Degree:      degree(first(d, "degree")),
		Experience:  experience(first(d, "jobs", "experience")),
		Skills:      skills(first(d, "skills")),
		Source:      model.SourceThirdParty,
		ScrapedAt:   n.scrapedAt(),
	}
}

func (n *Normalizer) apifyProfile(d map[string]any) model.Profile {
	return model.Profile{
		ID:          str(d, "id", "publicIdentifier"),
		Name:        str(d, "fullName", "name"),
		Headline:    str(d, "headline"),
		ProfileURL:  str(d, "url", "profileUrl", "linkedinUrl"),
		Location:    str(d, "location", "locationName"),
		About:       str(d, "summary", "about"),
		Company:     str(d, "companyName", "currentCompany"),
		Title:       str(d, "title", "currentTitle"),
		Industry:    str(d, "industryName", "industry"),
		Connections: count(d, "connectionsCount", "connections"),
		Followers:   count(d, "followersCount", "followers"),
		Degree:      model.DegreeOutOfNetwork,
		Experience:  experience(first(d, "experience", "positions")),
		Skills:      skills(first(d, "skills")),
		Source:      model.SourceThirdParty,
		ScrapedAt:   n.scrapedAt(),
	}
}

func (n *Normalizer) phantombusterPost(d map[string]any) (model.Post, error) {
	content := str(d, "postContent", "text", "content")
	return model.Post{
		ID:               str(d, "postId", "activityId"),
		AuthorName:       str(d, "authorName", "name"),
		AuthorProfileURL: str(d, "authorProfile", "profileUrl"),
		AuthorHeadline:   str(d, "authorHeadline"),
		Content:          content,
		URL:              str(d, "postUrl", "url"),
		Likes:            count(d, "likeCount", "likes"),
		Comments:         count(d, "commentCount", "comments"),
		Shares:           count(d, "shareCount", "reposts"),
		PostedRelative:   str(d, "postedAgo", "timestamp"),
		Hashtags:         model.ExtractHashtags(content),
		Source:           model.SourceThirdParty,
		ScrapedAt:        n.scrapedAt(),
	}, nil
}

func (n *Normalizer) apifyPost(d map[string]any) (model.Post, error) {
	author := cast.ToStringMap(first(d, "author"))
	content := str(d, "text", "content")
	p := model.Post{
		ID:               str(d, "urn", "id"),
		AuthorName:       firstNonEmpty(str(author, "name"), str(d, "authorName")),
		AuthorProfileURL: firstNonEmpty(str(author, "url"), str(d, "authorUrl")),
		AuthorHeadline:   str(author, "headline"),
		Content:          content,
		URL:              str(d, "url", "postUrl"),
		Likes:            count(d, "numLikes", "likes"),
		Comments:         count(d, "numComments", "comments"),
		Shares:           count(d, "numShares", "reposts"),
		Hashtags:         cast.ToStringSlice(first(d, "hashtags")),
		Source:           model.SourceThirdParty,
		ScrapedAt:        n.scrapedAt(),
	}
	if len(p.Hashtags) == 0 {
		p.Hashtags = model.ExtractHashtags(content)
	}
	p.PostedAt, p.PostedRelative = when(first(d, "postedAt", "timestamp"))
	return p, nil
}

// skoolPost reuses the community export shape understood by model.Post.
func (n *Normalizer) skoolPost(d map[string]any) (model.Post, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return model.Post{}, err
	}
	var p model.Post
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.Post{}, err
	}
	p.Source = model.SourceCommunity
	if p.ScrapedAt == "" {
		p.ScrapedAt = n.scrapedAt()
	}
	if len(p.Hashtags) == 0 {
		p.Hashtags = model.ExtractHashtags(p.Content)
	}
	return p, nil
}

// first returns the value of the first key present with a non-nil value.
func first(d map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := d[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// str returns the first non-blank string among keys.
func str(d map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := d[k]
		if !ok || v == nil {
			continue
		}
		if s := strings.TrimSpace(cast.ToString(v)); s != "" {
			return s
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// count reads the first present counter. Strings go through model.ParseCount
// so "500+" and "1.2K" are understood.
func count(d map[string]any, keys ...string) model.Count {
	switch v := first(d, keys...).(type) {
	case nil:
		return 0
	case string:
		return model.Count(model.ParseCount(v))
	default:
		n, err := cast.ToIntE(v)
		if err != nil || n < 0 {
			return 0
		}
		return model.Count(n)
	}
}

func degree(v any) model.ConnectionDegree {
	switch v := v.(type) {
	case nil:
		return model.DegreeOutOfNetwork
	case string:
		return model.ParseDegree(v)
	default:
		return model.DegreeFromInt(cast.ToInt(v))
	}
}

func experience(v any) []model.Experience {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]model.Experience, 0, len(items))
	for _, it := range items {
		m := cast.ToStringMap(it)
		if len(m) == 0 {
			continue
		}
		out = append(out, model.Experience{
			Title:    str(m, "title", "jobTitle", "position"),
			Company:  str(m, "company", "companyName"),
			Duration: str(m, "duration", "dateRange"),
		})
	}
	return out
}

func skills(v any) model.Skills {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make(model.Skills, 0, len(items))
	for _, it := range items {
		var s string
		switch it := it.(type) {
		case string:
			s = strings.TrimSpace(it)
		case map[string]any:
			s = str(it, "name", "skill")
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

var epochRe = regexp.MustCompile(`^\d{10,13}$`)

// when splits a provider timestamp into an absolute time or a relative token.
// Epoch seconds and milliseconds are converted to RFC 3339.
func when(v any) (postedAt, relative string) {
	if v == nil {
		return "", ""
	}
	s := strings.TrimSpace(cast.ToString(v))
	if f, ok := v.(float64); ok {
		s = fmt.Sprintf("%.0f", f)
	}
	if epochRe.MatchString(s) {
		n := cast.ToInt64(s)
		t := time.Unix(n, 0)
		if len(s) == 13 {
			t = time.UnixMilli(n)
		}
		return t.UTC().Format(time.RFC3339), ""
	}
	if _, ok := model.ParseTimestamp(s, time.UTC); ok {
		return s, ""
	}
	return "", s
}
