package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ConnectionDegree is the network distance between the acting account and a profile.
type ConnectionDegree int

// Connection degrees. DegreeOutOfNetwork doubles as the unknown value.
const (
	DegreeOutOfNetwork ConnectionDegree = 0
	DegreeFirst        ConnectionDegree = 1
	DegreeSecond       ConnectionDegree = 2
	DegreeThird        ConnectionDegree = 3
)

func (d ConnectionDegree) String() string {
	switch d {
	case DegreeFirst:
		return "1st"
	case DegreeSecond:
		return "2nd"
	case DegreeThird:
		return "3rd"
	default:
		return "out_of_network"
	}
}

// ParseDegree reads "1", "1st", "first", "2nd", "3rd+" and similar. Anything
// else is out of network.
func ParseDegree(s string) ConnectionDegree {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(s, "1") || strings.Contains(s, "first"):
		return DegreeFirst
	case strings.Contains(s, "2") || strings.Contains(s, "second"):
		return DegreeSecond
	case strings.Contains(s, "3") || strings.Contains(s, "third"):
		return DegreeThird
	default:
		return DegreeOutOfNetwork
	}
}

// DegreeFromInt maps 1..3 to a degree; other values are out of network.
func DegreeFromInt(n int) ConnectionDegree {
	if n >= int(DegreeFirst) && n <= int(DegreeThird) {
		return ConnectionDegree(n)
	}
	return DegreeOutOfNetwork
}

// MarshalJSON encodes the degree as its integer value.
func (d ConnectionDegree) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(DegreeFromInt(int(d))))), nil
}

// UnmarshalJSON accepts integers and strings; unknown values decode to DegreeOutOfNetwork.
func (d *ConnectionDegree) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*d = DegreeOutOfNetwork
			return nil
		}
		*d = ParseDegree(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		*d = DegreeOutOfNetwork
		return nil
	}
	*d = DegreeFromInt(int(f))
	return nil
}
