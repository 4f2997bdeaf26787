package worker

import (
	"sync"
	"time"

	"github.com/okian/outreach/internal/campaign"
)

// State is a job's lifecycle position.
type State string

const (
	StateQueued  State = "queued"
	StateRunning State = "running"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

const defaultTrackerSize = 256

// JobStatus is the observable state of one campaign job.
type JobStatus struct {
	ID         string                  `json:"id"`
	Kind       string                  `json:"kind"`
	State      State                   `json:"state"`
	Targets    int                     `json:"targets"`
	Summary    map[campaign.Status]int `json:"summary,omitempty"`
	Outcomes   []campaign.Outcome      `json:"outcomes,omitempty"`
	Error      string                  `json:"error,omitempty"`
	EnqueuedAt time.Time               `json:"enqueued_at"`
	StartedAt  *time.Time              `json:"started_at,omitempty"`
	FinishedAt *time.Time              `json:"finished_at,omitempty"`
}

// Tracker remembers the most recent jobs. Once full, the oldest finished
// job is forgotten first.
type Tracker struct {
	mu    sync.RWMutex
	jobs  map[string]*JobStatus
	order []string
	max   int
}

// NewTracker keeps at most max jobs; max <= 0 uses a default.
func NewTracker(max int) *Tracker {
	if max <= 0 {
		max = defaultTrackerSize
	}
	return &Tracker{jobs: make(map[string]*JobStatus), max: max}
}

// Queued registers j.
func (t *Tracker) Queued(j campaign.Job, at time.Time) JobStatus { //nolint:gocritic // hugeParam: jobs travel by value
	t.mu.Lock()
	defer t.mu.Unlock()
	st := &JobStatus{ID: j.ID, Kind: j.Kind, State: StateQueued, Targets: j.Size(), EnqueuedAt: at}
	if _, ok := t.jobs[j.ID]; !ok {
		t.order = append(t.order, j.ID)
	}
	t.jobs[j.ID] = st
	t.evict()
	return *st
}

// Forget drops a job that never made it into the queue.
func (t *Tracker) Forget(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.jobs, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Started marks id as running.
func (t *Tracker) Started(id string, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st, ok := t.jobs[id]; ok {
		st.State = StateRunning
		st.StartedAt = &at
	}
}

// Finished records the outcomes of id.
func (t *Tracker) Finished(id string, outcomes []campaign.Outcome, err error, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.jobs[id]
	if !ok {
		return
	}
	st.State = StateDone
	if err != nil {
		st.State = StateFailed
		st.Error = err.Error()
	}
	st.Outcomes = outcomes
	st.Summary = campaign.Summarize(outcomes)
	st.FinishedAt = &at
}

// Get returns a copy of the status of id.
func (t *Tracker) Get(id string) (JobStatus, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	st, ok := t.jobs[id]
	if !ok {
		return JobStatus{}, false
	}
	return *st, true
}

// List returns every tracked job, newest first, without outcomes.
func (t *Tracker) List() []JobStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]JobStatus, 0, len(t.order))
	for i := len(t.order) - 1; i >= 0; i-- {
		st := *t.jobs[t.order[i]]
		st.Outcomes = nil
		out = append(out, st)
	}
	return out
}

func (t *Tracker) evict() {
	for len(t.order) > t.max {
		idx := 0
		for i, id := range t.order {
			if s := t.jobs[id].State; s == StateDone || s == StateFailed {
				idx = i
				break
			}
		}
		delete(t.jobs, t.order[idx])
		t.order = append(t.order[:idx], t.order[idx+1:]...)
	}
}
