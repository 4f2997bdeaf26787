// Package relevance scores profiles against targeting criteria, labels them
// with a category and extracts personalization points for messaging.
package relevance

import (
	"sort"
	"strings"

	"github.com/okian/outreach/internal/domain/model"
)

// Dimension weights.
const (
	weightIndustry  = 0.25
	weightTitle     = 0.30
	weightCompany   = 0.15
	weightLocation  = 0.10
	weightDegree    = 0.10
	weightFollowers = 0.10

	followerScale = 10000.0
	neutralScore  = 0.5
)

// Analyzer scores profiles against one shared Criteria value.
// It holds no mutable state.
type Analyzer struct {
	criteria model.Criteria
}

// NewAnalyzer creates an Analyzer for the given criteria.
func NewAnalyzer(c model.Criteria) *Analyzer {
	return &Analyzer{criteria: c}
}

// Criteria returns the criteria the analyzer scores against.
func (a *Analyzer) Criteria() model.Criteria { return a.criteria }

// RankedProfile is a profile with its relevance score, category and
// personalization points.
type RankedProfile struct {
	Profile  model.Profile `json:"profile"`
	Score    float64       `json:"score"`
	Category Category      `json:"category"`
	Points   []string      `json:"personalization_points"`
}

// Score is the weighted average over the dimensions that apply to this
// profile and criteria. With no applicable dimension the score is 0.5.
func (a *Analyzer) Score(p model.Profile) float64 {
	c := a.criteria
	var sum, weights float64
	add := func(score, weight float64) {
		sum += score * weight
		weights += weight
	}

	if len(c.Industries) > 0 && p.Industry != "" {
		add(matchAny(p.Industry, c.Industries), weightIndustry)
	}
	if len(c.Titles) > 0 || len(c.TitleKeywords) > 0 {
		add(a.titleScore(p), weightTitle)
	}
	if len(c.Companies) > 0 && p.Company != "" {
		add(matchAny(p.Company, c.Companies), weightCompany)
	}
	if len(c.Locations) > 0 && p.Location != "" {
		add(matchAny(p.Location, c.Locations), weightLocation)
	}
	if len(c.ConnectionDegrees) > 0 {
		add(a.degreeScore(p.Degree), weightDegree)
	}
	if f := p.Followers.Int(); f > 0 && f >= c.MinFollowers {
		add(min(1.0, float64(f)/followerScale), weightFollowers)
	}

	if weights == 0 {
		return neutralScore
	}
	return sum / weights
}

// titleScore is 1.0 for a configured title found in title+headline, else
// 0.3 per keyword hit capped at 1.0.
func (a *Analyzer) titleScore(p model.Profile) float64 {
	if p.Title == "" && p.Headline == "" {
		return 0
	}
	text := strings.ToLower(p.Title + " " + p.Headline)
	for _, t := range a.criteria.Titles {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" && strings.Contains(text, t) {
			return 1.0
		}
	}
	hits := 0
	for _, kw := range a.criteria.TitleKeywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" && strings.Contains(text, kw) {
			hits++
		}
	}
	return min(1.0, float64(hits)*0.3)
}

func (a *Analyzer) degreeScore(d model.ConnectionDegree) float64 {
	if !a.criteria.AllowsDegree(d) {
		return 0
	}
	switch d {
	case model.DegreeFirst:
		return 1.0
	case model.DegreeSecond:
		return 0.7
	case model.DegreeThird:
		return 0.4
	default:
		return 0
	}
}

// MeetsMinimums reports whether the profile clears the follower and connection floors.
func (a *Analyzer) MeetsMinimums(p model.Profile) bool {
	return p.Followers.Int() >= a.criteria.MinFollowers && p.Connections.Int() >= a.criteria.MinConnections
}

// Analyze scores, categorizes and extracts personalization points for one profile.
func (a *Analyzer) Analyze(p model.Profile) RankedProfile {
	score := a.Score(p)
	return RankedProfile{
		Profile:  p,
		Score:    score,
		Category: Categorize(p, score),
		Points:   PersonalizationPoints(p),
	}
}

// Rank analyzes every profile and returns the best topN by score. Ties keep
// input order; topN <= 0 yields an empty slice.
func (a *Analyzer) Rank(profiles []model.Profile, topN int) []RankedProfile {
	if topN <= 0 {
		return []RankedProfile{}
	}
	out := make([]RankedProfile, len(profiles))
	for i, p := range profiles {
		out[i] = a.Analyze(p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if topN < len(out) {
		out = out[:topN]
	}
	return out
}

func matchAny(field string, wanted []string) float64 {
	field = strings.ToLower(field)
	for _, w := range wanted {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" && strings.Contains(field, w) {
			return 1.0
		}
	}
	return 0
}
