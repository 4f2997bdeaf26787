package model

import (
	"encoding/json"
	"strings"
)

// Source tags which collector produced a record.
type Source int

// Known sources.
const (
	SourceUnknown Source = iota
	SourceOfficialAPI
	SourceBrowser
	SourceThirdParty
	SourceCommunity
)

var sourceNames = map[Source]string{
	SourceUnknown:     "unknown",
	SourceOfficialAPI: "official_api",
	SourceBrowser:     "browser",
	SourceThirdParty:  "third_party",
	SourceCommunity:   "community",
}

func (s Source) String() string {
	if name, ok := sourceNames[s]; ok {
		return name
	}
	return sourceNames[SourceUnknown]
}

// ParseSource maps a collector tag to a Source. The approach1..3 tags used by
// older exports are accepted.
func ParseSource(s string) Source {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "official_api", "api", "approach1":
		return SourceOfficialAPI
	case "browser", "playwright", "approach2":
		return SourceBrowser
	case "third_party", "thirdparty", "approach3", "phantombuster", "apify":
		return SourceThirdParty
	case "community", "skool":
		return SourceCommunity
	default:
		return SourceUnknown
	}
}

// MarshalJSON encodes the source tag as a string.
func (s Source) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON never fails; unknown tags decode to SourceUnknown.
func (s *Source) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		*s = SourceUnknown
		return nil
	}
	*s = ParseSource(raw)
	return nil
}
