package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/careerpoint/institute-api/pkg/logger"
)

// Job is a unit of background work
type Job func(ctx context.Context) error

// Worker runs background jobs on a bounded pool. Scheduled jobs re-enqueue
// themselves on their ticker until the worker stops.
type Worker struct {
	jobs    chan namedJob
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	mu      sync.Mutex
}

type namedJob struct {
	name string
	run  Job
}

// NewWorker creates a worker with the given pool size and queue depth
func NewWorker(workers int) *Worker {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		jobs:   make(chan namedJob, workers*4),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < workers; i++ {
		w.wg.Add(1)
		go w.loop()
	}
	w.started = true
	return w
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case job, ok := <-w.jobs:
			if !ok {
				return
			}
			w.run(job)
		}
	}
}

func (w *Worker) run(job namedJob) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("job panicked", "job", job.name, "panic", r)
		}
	}()
	start := time.Now()
	if err := job.run(w.ctx); err != nil {
		logger.Error("job failed", "job", job.name, "error", err, "duration", time.Since(start))
		return
	}
	logger.Debug("job finished", "job", job.name, "duration", time.Since(start))
}

// Enqueue submits a job for execution. Returns false when the queue is
// full or the worker has stopped.
func (w *Worker) Enqueue(name string, job Job) bool {
	select {
	case <-w.ctx.Done():
		return false
	case w.jobs <- namedJob{name: name, run: job}:
		return true
	default:
		logger.Warn("job queue full, dropping job", "job", name)
		return false
	}
}

// ScheduleEvery runs a job immediately and then on every tick of the
// interval until the worker stops.
func (w *Worker) ScheduleEvery(name string, interval time.Duration, job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.Enqueue(name, job)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.Enqueue(name, job)
			}
		}
	}()
}

// Stop drains the worker and waits for in-flight jobs
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.started = false
	w.cancel()
	w.wg.Wait()
}
