package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/retention/internal/adapters/mq/queue"
	"github.com/okian/retention/pkg/logger"
	"github.com/okian/retention/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Queue defines how the pool receives jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker runs jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the source closes.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker pulls jobs from a channel and replies with their results.
type InMemoryWorker struct {
	source     <-chan queue.Job
	name       string
	jobTimeout time.Duration
	active     *atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker reading from source.
func NewInMemoryWorker(source <-chan queue.Job, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		source:   source,
		name:     "worker",
		active:   &atomic.Int64{},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named("worker")
	}
	w.logger = w.logger.With(logger.String("worker", w.name))
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-w.source:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) {
	value, err := w.execute(ctx, job)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", job.Kind)
		w.logger.Debug(ctx, "job failed",
			logger.String("job_id", job.ID),
			logger.String("kind", job.Kind),
			logger.Error(err),
		)
	}
	job.Reply(queue.Result{Value: value, Err: err})
}

// execute runs the job with the active gauge raised for its duration.
func (w *InMemoryWorker) execute(ctx context.Context, job queue.Job) (any, error) {
	start := time.Now()
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if w.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.jobTimeout)
		defer cancel()
	}
	return w.run(ctx, job)
}

func (w *InMemoryWorker) run(ctx context.Context, job queue.Job) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error(ctx, "job panicked",
				logger.String("job_id", job.ID),
				logger.String("kind", job.Kind),
				logger.Any("panic", r),
			)
			value, err = nil, &jobPanicError{kind: job.Kind, value: r}
		}
	}()
	if job.Task == nil {
		return nil, fmt.Errorf("%s job has no task", job.Kind)
	}
	return job.Task(ctx)
}

// Pool manages a fixed set of workers sharing one job source.
type Pool struct {
	workers    []*InMemoryWorker
	queue      Queue
	count      int
	workerOpts []Option
	active     atomic.Int64
	started    atomic.Bool

	logger logger.Logger
}

// NewPool creates a worker pool. A count below one uses runtime.NumCPU().
func NewPool(workerCount int, q Queue, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		queue: q,
		count: workerCount,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("worker-pool")
	}
	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Size returns the configured number of workers.
func (p *Pool) Size() int { return p.count }

// Active returns the number of workers currently running a job.
func (p *Pool) Active() int { return int(p.active.Load()) }

// Start starts all workers. Calling Start twice is a no-op.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	source := p.queue.Dequeue(ctx)
	p.workers = make([]*InMemoryWorker, p.count)
	for i := range p.workers {
		opts := append([]Option{WithName("worker-" + strconv.Itoa(i)), WithLogger(p.logger)}, p.workerOpts...)
		w := NewInMemoryWorker(source, opts...)
		w.active = &p.active
		p.workers[i] = w
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", p.count))
}

// Shutdown closes the queue, lets workers drain it and waits for them.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker %d: %w", i, shutdownCtx.Err())
		}
	}
	return nil
}
