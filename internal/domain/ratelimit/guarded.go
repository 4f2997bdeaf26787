package ratelimit

import (
	"sync"
	"time"
)

// Guarded serializes access to a Limiter so one session's limiter can be
// shared by the API and a campaign run.
type Guarded struct {
	mu sync.Mutex
	l  *Limiter
}

// NewGuarded wraps l.
func NewGuarded(l *Limiter) *Guarded { return &Guarded{l: l} }

// Allows reports whether an action of kind k would be admitted.
func (g *Guarded) Allows(k Kind) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.l.Allows(k)
}

// Admit records an action of kind k if it is admitted and reports whether it was.
func (g *Guarded) Admit(k Kind) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.l.Allows(k) {
		return false
	}
	g.l.Record(k)
	return true
}

// Record records an action of kind k unconditionally.
func (g *Guarded) Record(k Kind) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.l.Record(k)
}

// Release returns a reservation taken by Admit for an action that did not happen.
func (g *Guarded) Release(k Kind) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.l.Release(k)
}

// TimeUntilNextAction delegates to the wrapped limiter.
func (g *Guarded) TimeUntilNextAction() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.l.TimeUntilNextAction()
}

// Status delegates to the wrapped limiter.
func (g *Guarded) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.l.Status()
}

// Snapshot delegates to the wrapped limiter.
func (g *Guarded) Snapshot() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.l.Snapshot()
}

// Restore delegates to the wrapped limiter.
func (g *Guarded) Restore(s State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.l.Restore(s)
}

// ResetSession delegates to the wrapped limiter.
func (g *Guarded) ResetSession() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.l.ResetSession()
}
