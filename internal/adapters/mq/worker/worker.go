// Package worker runs queued campaign jobs in the background.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/outreach/internal/adapters/mq/queue"
	"github.com/okian/outreach/internal/campaign"
	"github.com/okian/outreach/pkg/logger"
	"github.com/okian/outreach/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Executor runs one job to completion.
type Executor interface {
	Execute(ctx context.Context, j campaign.Job) ([]campaign.Outcome, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after the job in hand finishes.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker pulls jobs off a Queue and hands them to an Executor.
type InMemoryWorker struct {
	queue   Queue
	exec    Executor
	tracker *Tracker
	name    string
	now     func() time.Time

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker reporting progress to tracker.
func NewInMemoryWorker(q Queue, exec Executor, tracker *Tracker, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		exec:     exec,
		tracker:  tracker,
		name:     "worker",
		now:      time.Now,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				w.logger.Error(ctx, "job failed", logger.String("job_id", j.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, j queue.Job) error { //nolint:gocritic // hugeParam: jobs travel by value
	start := w.now()
	w.tracker.Started(j.ID, start)
	w.logger.Info(ctx, "job started",
		logger.String("job_id", j.ID),
		logger.String("kind", j.Kind),
		logger.Int("targets", j.Size()))

	outcomes, err := w.exec.Execute(ctx, j)
	end := w.now()
	w.tracker.Finished(j.ID, outcomes, err, end)
	metrics.RecordJobDuration(end.Sub(start).Seconds())

	if err != nil {
		metrics.RecordJob("failed")
		return fmt.Errorf("job %s: %w", j.ID, err)
	}
	metrics.RecordJob("done")
	w.logger.Info(ctx, "job finished",
		logger.String("job_id", j.ID),
		logger.Any("summary", campaign.Summarize(outcomes)))
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	cancel  context.CancelFunc
	logger  logger.Logger
}

// NewPool creates count workers. Workers share the limiter behind the
// executor, so one worker is the usual choice.
func NewPool(count int, q Queue, exec Executor, tracker *Tracker, opts ...Option) *Pool {
	if count < 1 {
		count = 1
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, count),
		queue:   q,
	}
	for i := range count {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, exec, tracker, wopts...)
	}
	p.logger = p.workers[0].logger
	return p
}

// Size is the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	for _, w := range p.workers {
		go w.Run(runCtx)
	}
}

// Shutdown closes the queue and lets workers drain it. Once ctx ends, or
// after 30 seconds, jobs in hand are cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	if p.cancel == nil {
		return nil
	}
	defer p.cancel()

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out; cancelling job in hand", logger.Int("worker_id", i))
			p.cancel()
			<-w.done
		}
	}
	return nil
}
