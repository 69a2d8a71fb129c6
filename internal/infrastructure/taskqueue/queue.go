package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"

	"rentalhub/pkg/logger"
)

var ErrClosed = errors.New("task queue closed")

// Task is a unit of deferred work. Errors are logged, never retried.
type Task func(ctx context.Context) error

type job struct {
	key  string
	name string
	run  Task
}

// Queue runs tasks on a fixed set of workers. Tasks sharing a key always land
// on the same worker, so they execute in the order they were enqueued.
type Queue struct {
	shards []chan job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mutex  sync.RWMutex
	closed bool
}

func New(workers, queueSize int) *Queue {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		shards: make([]chan job, workers),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := range q.shards {
		q.shards[i] = make(chan job, queueSize)
		q.wg.Add(1)
		go q.work(q.shards[i])
	}
	return q
}

// Enqueue hands the task to the worker owning key. It blocks while that
// worker's buffer is full, until ctx is done.
func (q *Queue) Enqueue(ctx context.Context, key, name string, task Task) error {
	q.mutex.RLock()
	defer q.mutex.RUnlock()
	if q.closed {
		return ErrClosed
	}

	shard := q.shards[xxhash.Sum64String(key)%uint64(len(q.shards))]
	select {
	case shard <- job{key: key, name: name, run: task}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop refuses new tasks and waits for queued ones to finish. When ctx
// expires first, running tasks see their context cancelled.
func (q *Queue) Stop(ctx context.Context) error {
	q.mutex.Lock()
	if !q.closed {
		q.closed = true
		for _, shard := range q.shards {
			close(shard)
		}
	}
	q.mutex.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		return ctx.Err()
	}
}

func (q *Queue) work(jobs <-chan job) {
	defer q.wg.Done()
	for j := range jobs {
		if err := q.run(j); err != nil {
			logger.Error("Task %s for %s failed: %v", j.name, j.key, err)
		}
	}
}

func (q *Queue) run(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return j.run(q.ctx)
}
