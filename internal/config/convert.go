package config

import (
	"github.com/okian/outreach/internal/domain/model"
	"github.com/okian/outreach/internal/domain/pacing"
	"github.com/okian/outreach/internal/domain/ratelimit"
)

// Model converts the configured criteria to the domain type.
func (c Criteria) Model() model.Criteria {
	out := model.Criteria{
		Industries:     c.Industries,
		Titles:         c.Titles,
		TitleKeywords:  c.TitleKeywords,
		Companies:      c.Companies,
		Locations:      c.Locations,
		MinFollowers:   c.MinFollowers,
		MinConnections: c.MinConnections,
	}
	for _, d := range c.ConnectionDegrees {
		out.ConnectionDegrees = append(out.ConnectionDegrees, model.DegreeFromInt(d))
	}
	return out
}

// RateLimits converts the configured budgets.
func (l Limits) RateLimits() ratelimit.Limits {
	return ratelimit.Limits{
		ActionsPerHour:     l.ActionsPerHour,
		ProfilesPerSession: l.ProfilesPerSession,
		MessagesPerDay:     l.MessagesPerDay,
		CommentsPerDay:     l.CommentsPerDay,
	}
}

// Options converts the pacing section to pacer options.
func (p Pacing) Options() []pacing.Option {
	return []pacing.Option{
		pacing.WithDelayRange(p.MinDelay, p.MaxDelay),
		pacing.WithMaxSession(p.MaxSession),
		pacing.WithBreakPolicy(p.BreakAfter, p.BreakChance),
		pacing.WithMinSpacing(p.MinSpacing),
		pacing.WithSeed(p.Seed),
	}
}
