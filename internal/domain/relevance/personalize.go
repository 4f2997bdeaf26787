package relevance

import (
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/okian/outreach/internal/domain/model"
)

const maxSkillPoints = 3

// PersonalizationPoints projects a profile into ordered, human-readable facts
// for message templating.
func PersonalizationPoints(p model.Profile) []string {
	points := make([]string, 0, 7)
	if p.Company != "" {
		points = append(points, "You work at "+p.Company)
	}
	if p.Title != "" {
		points = append(points, "Your role as "+p.Title)
	}
	if p.Industry != "" {
		points = append(points, "Your expertise in "+p.Industry)
	}
	if p.Location != "" {
		points = append(points, "Based in "+p.Location)
	}
	if len(p.Experience) > 0 && p.Experience[0].Company != "" {
		points = append(points, "Your experience at "+p.Experience[0].Company)
	}
	if len(p.Skills) > 0 {
		top := p.Skills
		if len(top) > maxSkillPoints {
			top = top[:maxSkillPoints]
		}
		points = append(points, "Your skills in "+strings.Join(top, ", "))
	}
	if f := p.Followers.Int(); f > 5000 {
		points = append(points, "Your growing audience of "+humanize.Comma(int64(f))+" followers")
	}
	return points
}
