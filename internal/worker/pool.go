package worker

import (
	"context"
	"log/slog"
	"sync"
)

// Task represents a unit of work to be processed by the worker pool
type Task func(ctx context.Context) error

// Pool runs fire-and-forget tasks on a fixed number of goroutines.
type Pool struct {
	workerCount int
	taskQueue   chan Task
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *slog.Logger

	closeMu sync.RWMutex
	closed  bool
}

// NewPool creates a pool with workerCount workers and a queue of queueSize
// pending tasks. Call Start before submitting.
func NewPool(workerCount, queueSize int, logger *slog.Logger) *Pool {
	return NewPoolWithContext(context.Background(), workerCount, queueSize, logger)
}

// NewPoolWithContext creates a pool whose workers stop when ctx is cancelled.
func NewPoolWithContext(ctx context.Context, workerCount, queueSize int, logger *slog.Logger) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	poolCtx, cancel := context.WithCancel(ctx)
	return &Pool{
		workerCount: workerCount,
		taskQueue:   make(chan Task, queueSize),
		ctx:         poolCtx,
		cancel:      cancel,
		logger:      logger,
	}
}

// Start launches worker goroutines
func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info("worker_pool_started", "workers", p.workerCount, "queue", cap(p.taskQueue))
}

// TrySubmit queues a task without blocking. It returns false when the queue is
// full or the pool is closed; the task is then dropped.
func (p *Pool) TrySubmit(task Task) bool {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		return false
	}

	select {
	case p.taskQueue <- task:
		return true
	case <-p.ctx.Done():
		return false
	default:
		return false
	}
}

// Close stops accepting tasks and waits for queued tasks to finish.
func (p *Pool) Close() {
	p.closeMu.Lock()
	if !p.closed {
		close(p.taskQueue)
		p.closed = true
	}
	p.closeMu.Unlock()

	p.wg.Wait()
	p.cancel()
	p.logger.Info("worker_pool_drained")
}

// Shutdown cancels running tasks, discards queued ones and waits for workers.
func (p *Pool) Shutdown() {
	p.cancel()
	p.Close()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for task := range p.taskQueue {
		select {
		case <-p.ctx.Done():
			continue // drain without running
		default:
		}

		if err := p.run(task); err != nil {
			p.logger.Warn("worker_task_failed", "worker", id, "error", err)
		}
	}
}

func (p *Pool) run(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker_task_panic", "panic", r)
		}
	}()
	return task(p.ctx)
}
