// Package pacing spaces executed actions with human-like delays, periodic
// breaks and a bounded session length.
package pacing

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Named delay bases.
const (
	ShortBase  = time.Second
	MediumBase = 3 * time.Second
	LongBase   = 7500 * time.Millisecond
	BreakBase  = time.Minute
)

const spread = 0.3

// Pacer produces delays and break decisions. It is safe for concurrent use.
type Pacer struct {
	mu sync.Mutex

	minDelay    time.Duration
	maxDelay    time.Duration
	maxSession  time.Duration
	breakAfter  int
	breakChance float64
	minSpacing  time.Duration
	seed        int64

	rng     *rand.Rand
	spacing *rate.Limiter
	now     func() time.Time
	sleep   func(context.Context, time.Duration) error

	actions int
	start   time.Time
}

// New creates a Pacer with a 1s-3s delay range, a break after 50 actions or
// at 2% chance, and a 30 minute session.
func New(opts ...Option) *Pacer {
	p := &Pacer{
		minDelay:    time.Second,
		maxDelay:    3 * time.Second,
		maxSession:  30 * time.Minute,
		breakAfter:  50,
		breakChance: 0.02,
		seed:        time.Now().UnixNano(),
		now:         time.Now,
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.rng = rand.New(rand.NewSource(p.seed)) //nolint:gosec // delays are not security sensitive
	p.spacing = rate.NewLimiter(rate.Inf, 1)
	if p.minSpacing > 0 {
		p.spacing = rate.NewLimiter(rate.Every(p.minSpacing), 1)
	}
	p.start = p.now()
	return p
}

// HumanDelay draws a gaussian delay around base with a standard deviation of
// 0.3*base, clamped to [MinDelay/2, 2*MaxDelay]. A zero base centers on the
// midpoint of the delay range.
func (p *Pacer) HumanDelay(base time.Duration) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.humanDelay(base)
}

func (p *Pacer) humanDelay(base time.Duration) time.Duration {
	if base <= 0 {
		base = (p.minDelay + p.maxDelay) / 2
	}
	d := float64(base) + p.rng.NormFloat64()*spread*float64(base)
	lo, hi := float64(p.minDelay)/2, float64(p.maxDelay)*2
	return time.Duration(min(max(d, lo), hi))
}

// ShortDelay is a human delay around one second.
func (p *Pacer) ShortDelay() time.Duration { return p.HumanDelay(ShortBase) }

// MediumDelay is a human delay around three seconds.
func (p *Pacer) MediumDelay() time.Duration { return p.HumanDelay(MediumBase) }

// LongDelay is a human delay around seven and a half seconds.
func (p *Pacer) LongDelay() time.Duration { return p.HumanDelay(LongBase) }

// BreakDuration is a human delay around one minute, still clamped to the
// delay range.
func (p *Pacer) BreakDuration() time.Duration { return p.HumanDelay(BreakBase) }

// ShouldTakeBreak is true once more than BreakAfter actions have been paced,
// which also restarts the count; otherwise it is true with BreakChance.
func (p *Pacer) ShouldTakeBreak() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.actions > p.breakAfter {
		p.actions = 0
		return true
	}
	return p.rng.Float64() < p.breakChance
}

// Actions returns the number of actions paced since the last break.
func (p *Pacer) Actions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.actions
}

// SessionElapsed is the time since the pacer was created or last reset.
func (p *Pacer) SessionElapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.now().Sub(p.start)
}

// SessionTooLong reports whether the session exceeded MaxSession.
func (p *Pacer) SessionTooLong() bool {
	return p.SessionElapsed() > p.maxSession
}

// ResetSession restarts the session clock and the action count.
func (p *Pacer) ResetSession() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.start = p.now()
	p.actions = 0
}

// Wait blocks until the minimum spacing since the previous action has passed
// and then for a human delay around base. It returns the human delay slept.
func (p *Pacer) Wait(ctx context.Context, base time.Duration) (time.Duration, error) {
	if err := p.spacing.Wait(ctx); err != nil {
		return 0, err
	}
	p.mu.Lock()
	d := p.humanDelay(base)
	p.mu.Unlock()

	if err := p.sleep(ctx, d); err != nil {
		return 0, err
	}

	p.mu.Lock()
	p.actions++
	p.mu.Unlock()
	return d, nil
}

// Pause sleeps for d, honoring ctx.
func (p *Pacer) Pause(ctx context.Context, d time.Duration) error {
	return p.sleep(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
