package concurrent

import (
	"errors"
	"sync"
)

var ErrWorkerClosed = errors.New("background worker is closed")

type JobFunc[T any] func(job T)

// BackgroundWorker runs jobs on a fixed pool of goroutines fed by a buffered channel.
type BackgroundWorker[T any] struct {
	workers   int
	msgC      chan T
	waitGroup sync.WaitGroup
	jobFunc   JobFunc[T]

	mu     sync.RWMutex
	closed bool
}

func NewBackgroundWorker[T any](workers, buffer int, jobFunc JobFunc[T]) *BackgroundWorker[T] {
	if workers < 1 {
		workers = 1
	}
	return &BackgroundWorker[T]{
		workers: workers,
		msgC:    make(chan T, buffer),
		jobFunc: jobFunc,
	}
}

// TriggerProcessing queues a job, blocking while the buffer is full.
func (bw *BackgroundWorker[T]) TriggerProcessing(job T) error {
	bw.mu.RLock()
	defer bw.mu.RUnlock()
	if bw.closed {
		return ErrWorkerClosed
	}
	bw.msgC <- job
	return nil
}

func (bw *BackgroundWorker[T]) Start() {
	bw.waitGroup.Add(bw.workers)
	for i := 0; i < bw.workers; i++ {
		go func() {
			defer bw.waitGroup.Done()
			for job := range bw.msgC {
				bw.jobFunc(job)
			}
		}()
	}
}

// Close stops accepting jobs and waits until every queued job is processed.
func (bw *BackgroundWorker[T]) Close() {
	bw.mu.Lock()
	if bw.closed {
		bw.mu.Unlock()
		return
	}
	bw.closed = true
	close(bw.msgC)
	bw.mu.Unlock()

	bw.waitGroup.Wait()
}
