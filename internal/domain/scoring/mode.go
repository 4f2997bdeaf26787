package scoring

import (
	"encoding/json"
	"strings"
)

// Mode selects the weighting used to combine sub-scores.
type Mode int

// Scoring modes. ModeBalanced is the default and the fallback for unknown input.
const (
	ModeBalanced Mode = iota
	ModeRecent
	ModeEngagement
	ModeTopic
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeRecent, ModeEngagement, ModeTopic, ModeBalanced}

func (m Mode) String() string {
	switch m {
	case ModeRecent:
		return "recent"
	case ModeEngagement:
		return "engagement"
	case ModeTopic:
		return "topic"
	default:
		return "balanced"
	}
}

// ParseMode maps a mode name to a Mode. Unknown names are balanced.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "recent":
		return ModeRecent
	case "engagement":
		return ModeEngagement
	case "topic":
		return ModeTopic
	default:
		return ModeBalanced
	}
}

// MarshalJSON encodes the mode name.
func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON never fails; unknown names decode to ModeBalanced.
func (m *Mode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*m = ModeBalanced
		return nil
	}
	*m = ParseMode(s)
	return nil
}
