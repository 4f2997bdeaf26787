package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Count is a non-negative engagement or audience counter.
//
// Scraped counters arrive as numbers or display strings ("1,234", "500+",
// "1.2K"). Decoding never fails: anything unreadable becomes zero.
type Count int

// Int returns the counter as an int.
func (c Count) Int() int { return int(c) }

// UnmarshalJSON accepts numbers, numeric strings and null.
func (c *Count) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*c = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*c = 0
			return nil
		}
		*c = Count(ParseCount(s))
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		*c = 0
		return nil
	}
	*c = countFromFloat(f)
	return nil
}

// ParseCount reads a display counter such as "1,234", "500+", "1.2K" or
// "3M". Unparseable or negative input yields 0.
func ParseCount(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(",", "", "+", "", " ", "").Replace(s)
	if s == "" {
		return 0
	}

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "k"):
		mult, s = 1e3, strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		mult, s = 1e6, strings.TrimSuffix(s, "m")
	case strings.HasSuffix(s, "b"):
		mult, s = 1e9, strings.TrimSuffix(s, "b")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(countFromFloat(math.Round(f * mult)))
}

func countFromFloat(f float64) Count {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= math.MaxInt32 {
		return math.MaxInt32
	}
	return Count(f)
}
