package model

import "slices"

// Criteria is the targeting configuration a profile is scored against.
// One value is shared read-only across a scoring run.
type Criteria struct {
	Industries        []string           `json:"industries,omitempty"`
	Titles            []string           `json:"titles,omitempty"`
	TitleKeywords     []string           `json:"title_keywords,omitempty"`
	Companies         []string           `json:"companies,omitempty"`
	Locations         []string           `json:"locations,omitempty"`
	MinFollowers      int                `json:"min_followers,omitempty"`
	MinConnections    int                `json:"min_connections,omitempty"`
	ConnectionDegrees []ConnectionDegree `json:"connection_degrees,omitempty"`
}

// DefaultCriteria allows first, second and third degree connections and nothing else.
func DefaultCriteria() Criteria {
	return Criteria{ConnectionDegrees: []ConnectionDegree{DegreeFirst, DegreeSecond, DegreeThird}}
}

// AllowsDegree reports whether d is in the allowed list.
func (c Criteria) AllowsDegree(d ConnectionDegree) bool {
	return slices.Contains(c.ConnectionDegrees, d)
}
