package model

import (
	"bytes"
	"encoding/json"
)

// Text is an identifier that exports carry either as a string or as a bare
// number ("id": 7). Decoding never fails: numbers and booleans keep their
// literal spelling, objects, arrays and null become "".
type Text string

// UnmarshalJSON accepts any JSON value.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*t = ""
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			*t = Text(s)
		}
	case '{', '[', 'n':
	default:
		*t = Text(b)
	}
	return nil
}
