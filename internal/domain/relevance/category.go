package relevance

import (
	"strings"

	"github.com/okian/outreach/internal/domain/model"
)

// Category labels a profile for outreach.
type Category string

// Categories, in evaluation order.
const (
	CategoryInfluencer Category = "influencer"
	CategoryCompetitor Category = "competitor"
	CategoryPartner    Category = "partner"
	CategoryProspect   Category = "prospect"
	CategoryOther      Category = "other"
)

// Categories lists every category.
var Categories = []Category{CategoryInfluencer, CategoryCompetitor, CategoryPartner, CategoryProspect, CategoryOther}

var (
	influencerTerms = []string{"speaker", "author", "thought leader", "influencer", "creator"}
	competitorTerms = []string{"founder", "ceo", "co-founder"}
	partnerTerms    = []string{"partner", "agency", "consultant", "advisor"}
)

// Categorize labels a profile from its headline, title, followers and
// relevance score. The first matching rule wins.
func Categorize(p model.Profile, score float64) Category {
	headline := strings.ToLower(p.Headline)
	title := strings.ToLower(p.Title)
	has := func(terms []string) bool {
		for _, t := range terms {
			if strings.Contains(headline, t) || strings.Contains(title, t) {
				return true
			}
		}
		return false
	}

	switch {
	case has(influencerTerms) && p.Followers.Int() > 10000:
		return CategoryInfluencer
	case has(competitorTerms) && score < 0.5:
		return CategoryCompetitor
	case has(partnerTerms) && score > 0.6:
		return CategoryPartner
	case score > 0.7:
		return CategoryProspect
	default:
		return CategoryOther
	}
}
