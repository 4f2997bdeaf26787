package campaign

import (
	"strings"

	"github.com/okian/outreach/internal/domain/model"
)

// Render fills a message template for p. Supported placeholders are {name},
// {company}, {title} and {headline}; missing values fall back to neutral
// wording so the message still reads.
func Render(template string, p model.Profile) string {
	return strings.NewReplacer(
		"{name}", orDefault(p.FirstName(), "there"),
		"{company}", orDefault(p.Company, "your company"),
		"{title}", orDefault(p.Title, "your role"),
		"{headline}", strings.TrimSpace(p.Headline),
	).Replace(template)
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
