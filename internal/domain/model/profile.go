package model

import (
	"encoding/json"
	"strings"
)

// Experience is one entry of a profile's work history.
type Experience struct {
	Title    string `json:"title,omitempty"`
	Company  string `json:"company,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// Profile is a scraped member profile.
type Profile struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Headline    string           `json:"headline"`
	ProfileURL  string           `json:"profile_url"`
	Location    string           `json:"location,omitempty"`
	About       string           `json:"about,omitempty"`
	Company     string           `json:"company,omitempty"`
	Title       string           `json:"title,omitempty"`
	Industry    string           `json:"industry,omitempty"`
	Followers   Count            `json:"followers"`
	Connections Count            `json:"connections"`
	Degree      ConnectionDegree `json:"connection_degree"`
	Experience  []Experience     `json:"experience,omitempty"`
	Skills      Skills           `json:"skills,omitempty"`
	Source      Source           `json:"source"`
	ScrapedAt   string           `json:"scraped_at,omitempty"`
}

// Key identifies the profile for deduplication.
func (p Profile) Key() string {
	if p.ProfileURL != "" {
		return p.ProfileURL
	}
	return p.ID
}

// FirstName returns the first word of Name, or "" when unnamed.
func (p Profile) FirstName() string {
	if f := strings.Fields(p.Name); len(f) > 0 {
		return f[0]
	}
	return ""
}

type profileJSON Profile

// UnmarshalJSON accepts the source_approach name used by older exports and
// numeric ids.
func (p *Profile) UnmarshalJSON(b []byte) error {
	var aux struct {
		profileJSON
		ID             Text    `json:"id"`
		SourceApproach *Source `json:"source_approach"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = Profile(aux.profileJSON)
	p.ID = string(aux.ID)
	if p.Source == SourceUnknown && aux.SourceApproach != nil {
		p.Source = *aux.SourceApproach
	}
	return nil
}

// Skills is a list of skill names. Decoding accepts plain strings and
// objects carrying a name or skill field.
type Skills []string

// UnmarshalJSON never fails on unexpected element shapes; they are skipped.
func (s *Skills) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		*s = nil
		return nil
	}
	out := make(Skills, 0, len(raw))
	for _, item := range raw {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			if name != "" {
				out = append(out, name)
			}
			continue
		}
		var obj struct {
			Name  string `json:"name"`
			Skill string `json:"skill"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		if obj.Name != "" {
			out = append(out, obj.Name)
		} else if obj.Skill != "" {
			out = append(out, obj.Skill)
		}
	}
	*s = out
	return nil
}
