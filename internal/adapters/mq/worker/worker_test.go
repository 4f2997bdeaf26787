package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/outreach/internal/adapters/mq/queue"
	"github.com/okian/outreach/internal/adapters/mq/worker"
	"github.com/okian/outreach/internal/campaign"
	"github.com/okian/outreach/pkg/logger"
)

type mockExecutor struct {
	mu   sync.Mutex
	ran  []string
	fail map[string]error
}

func (m *mockExecutor) Execute(_ context.Context, j campaign.Job) ([]campaign.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ran = append(m.ran, j.ID)
	if err := m.fail[j.ID]; err != nil {
		return nil, err
	}
	return []campaign.Outcome{{Kind: j.Kind, Target: "t", Status: campaign.StatusDone}}, nil
}

func (m *mockExecutor) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ran)
}

func waitFor(tr *worker.Tracker, id string, want worker.State) worker.JobStatus {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if st, ok := tr.Get(id); ok && st.State == want {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	st, _ := tr.Get(id)
	return st
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool with one worker", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		exec := &mockExecutor{fail: map[string]error{"bad": errors.New("actor offline")}}
		tr := worker.NewTracker(10)
		pool := worker.NewPool(1, q, exec, tr, worker.WithLogger(logger.Nop()))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("A queued job runs to done with a summary", func() {
			j := campaign.Job{ID: "ok", Kind: "comment"}
			tr.Queued(j, time.Now())
			convey.So(q.Enqueue(ctx, j), convey.ShouldBeTrue)

			st := waitFor(tr, "ok", worker.StateDone)
			convey.So(st.State, convey.ShouldEqual, worker.StateDone)
			convey.So(st.Summary[campaign.StatusDone], convey.ShouldEqual, 1)
			convey.So(st.StartedAt, convey.ShouldNotBeNil)
			convey.So(st.FinishedAt, convey.ShouldNotBeNil)
		})

		convey.Convey("An executor error marks the job failed", func() {
			j := campaign.Job{ID: "bad", Kind: "message"}
			tr.Queued(j, time.Now())
			q.Enqueue(ctx, j)

			st := waitFor(tr, "bad", worker.StateFailed)
			convey.So(st.State, convey.ShouldEqual, worker.StateFailed)
			convey.So(st.Error, convey.ShouldEqual, "actor offline")
		})

		convey.Convey("Shutdown drains queued jobs", func() {
			for _, id := range []string{"a", "b"} {
				j := campaign.Job{ID: id, Kind: "comment"}
				tr.Queued(j, time.Now())
				q.Enqueue(ctx, j)
			}
			convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
			convey.So(exec.count(), convey.ShouldEqual, 2)
			convey.So(q.IsClosed(), convey.ShouldBeTrue)
		})
	})
}

type blockingExecutor struct {
	started chan struct{}
}

func (b *blockingExecutor) Execute(ctx context.Context, _ campaign.Job) ([]campaign.Outcome, error) {
	close(b.started)
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestPoolShutdownCancels(t *testing.T) {
	convey.Convey("Given a worker stuck in a long job", t, func() {
		q := queue.NewInMemoryQueue()
		exec := &blockingExecutor{started: make(chan struct{})}
		tr := worker.NewTracker(0)
		pool := worker.NewPool(1, q, exec, tr)
		pool.Start(context.Background())

		j := campaign.Job{ID: "slow", Kind: "comment"}
		tr.Queued(j, time.Now())
		q.Enqueue(context.Background(), j)
		<-exec.started

		convey.Convey("Shutdown with an expired context cancels it", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)

			st := waitFor(tr, "slow", worker.StateFailed)
			convey.So(st.State, convey.ShouldEqual, worker.StateFailed)
			convey.So(st.Error, convey.ShouldEqual, context.Canceled.Error())
		})
	})
}

func TestTracker(t *testing.T) {
	convey.Convey("Given a tracker holding two jobs", t, func() {
		tr := worker.NewTracker(2)
		now := time.Now()
		tr.Queued(campaign.Job{ID: "1"}, now)
		tr.Queued(campaign.Job{ID: "2"}, now)

		convey.Convey("List is newest first", func() {
			list := tr.List()
			convey.So(list, convey.ShouldHaveLength, 2)
			convey.So(list[0].ID, convey.ShouldEqual, "2")
		})

		convey.Convey("Finished jobs are evicted before pending ones", func() {
			tr.Finished("2", nil, nil, now)
			tr.Queued(campaign.Job{ID: "3"}, now)
			_, ok := tr.Get("2")
			convey.So(ok, convey.ShouldBeFalse)
			_, ok = tr.Get("1")
			convey.So(ok, convey.ShouldBeTrue)
		})

		convey.Convey("Forget drops a job", func() {
			tr.Forget("1")
			_, ok := tr.Get("1")
			convey.So(ok, convey.ShouldBeFalse)
			convey.So(tr.List(), convey.ShouldHaveLength, 1)
		})
	})
}
