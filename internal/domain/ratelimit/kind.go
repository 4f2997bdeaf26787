package ratelimit

import "strings"

// Kind names a budgeted action.
type Kind int

// Action kinds.
const (
	KindAction Kind = iota
	KindProfile
	KindMessage
	KindComment
)

// Kinds lists every kind.
var Kinds = []Kind{KindAction, KindProfile, KindMessage, KindComment}

func (k Kind) String() string {
	switch k {
	case KindProfile:
		return "profile"
	case KindMessage:
		return "message"
	case KindComment:
		return "comment"
	default:
		return "action"
	}
}

// ParseKind reads a kind name. The second result is false for unknown names.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "action":
		return KindAction, true
	case "profile", "profile_scrape":
		return KindProfile, true
	case "message":
		return KindMessage, true
	case "comment":
		return KindComment, true
	default:
		return KindAction, false
	}
}

// Allows reports whether both the kind's own budget and the hourly budget
// have room.
func (l *Limiter) Allows(k Kind) bool {
	if !l.CanPerformAction() {
		return false
	}
	switch k {
	case KindProfile:
		return l.CanScrapeProfile()
	case KindMessage:
		return l.CanSendMessage()
	case KindComment:
		return l.CanPostComment()
	default:
		return true
	}
}

// Record records one action of kind k.
func (l *Limiter) Record(k Kind) {
	switch k {
	case KindProfile:
		l.RecordProfileScrape()
	case KindMessage:
		l.RecordMessage()
	case KindComment:
		l.RecordComment()
	default:
		l.RecordAction()
	}
}

// Release undoes one Record of kind k: the kind's counter drops by one and
// the newest hourly entry is removed. Counters never go below zero.
func (l *Limiter) Release(k Kind) {
	switch k {
	case KindProfile:
		l.profiles = max(0, l.profiles-1)
	case KindMessage:
		l.messages = max(0, l.messages-1)
	case KindComment:
		l.comments = max(0, l.comments-1)
	}
	if n := len(l.actions); n > 0 {
		l.actions = l.actions[:n-1]
	}
}
