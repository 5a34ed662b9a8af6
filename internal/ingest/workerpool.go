package ingest

import (
	"context"
	"log"
	"sync"
)

// Task is a unit of row-processing work.
type Task func(ctx context.Context) error

// WorkerPool fans row processing out over a fixed number of goroutines.
// Submit after Wait is a no-op; the pool is not reusable.
type WorkerPool struct {
	workerCount int
	taskQueue   chan Task
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *log.Logger
	closed      bool
	closeMux    sync.Mutex
}

// NewWorkerPool creates a pool with the given number of workers, bound to the
// parent context.
func NewWorkerPool(ctx context.Context, workerCount int, logger *log.Logger) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	poolCtx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		workerCount: workerCount,
		taskQueue:   make(chan Task, workerCount*2),
		ctx:         poolCtx,
		cancel:      cancel,
		logger:      logger,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Submit queues a task, blocking when all workers are busy and the queue is
// full. Tasks are dropped once the queue is closed or the pool context is
// cancelled.
func (wp *WorkerPool) Submit(task Task) {
	wp.closeMux.Lock()
	if wp.closed {
		wp.closeMux.Unlock()
		return
	}
	wp.closeMux.Unlock()
	select {
	case wp.taskQueue <- task:
	case <-wp.ctx.Done():
	}
}

// Wait closes the queue and blocks until every queued task has finished.
// The caller must not Submit concurrently with Wait.
func (wp *WorkerPool) Wait() {
	wp.closeMux.Lock()
	if !wp.closed {
		close(wp.taskQueue)
		wp.closed = true
	}
	wp.closeMux.Unlock()
	wp.wg.Wait()
}

// Shutdown cancels in-flight work and waits for the workers to exit.
func (wp *WorkerPool) Shutdown() {
	wp.cancel()
	wp.Wait()
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()
	for {
		select {
		case task, ok := <-wp.taskQueue:
			if !ok {
				return
			}
			if err := task(wp.ctx); err != nil {
				wp.logger.Printf("ingest: worker %d: %v", id, err)
			}
		case <-wp.ctx.Done():
			return
		}
	}
}
