// Package taskqueue provides a single-worker serialized task queue. Work
// deferred on a queue runs strictly one unit at a time, in submission order;
// a unit runs to completion (including any blocking I/O) before the next one
// starts.
package taskqueue

import (
	"errors"
	"sync"
)

var ErrQueueClosed = errors.New("queue is closed")

// Job is the completion handle of a deferred unit of work.
type Job struct {
	work func() error
	err  error
	done chan struct{}
}

// Done is closed once the job has finished running (or was discarded because
// the queue closed first).
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job has finished and returns its outcome.
func (j *Job) Wait() error {
	<-j.done
	return j.err
}

// Err returns the job outcome without blocking. It is only meaningful after
// Done is closed.
func (j *Job) Err() error {
	return j.err
}

// Queue runs deferred jobs sequentially on a private worker goroutine. Defer
// never blocks the caller.
type Queue struct {
	mu      sync.Mutex
	pending []*Job
	kick    chan struct{}
	quit    chan struct{}
	closed  bool
}

func New() *Queue {
	q := &Queue{
		kick: make(chan struct{}, 1),
		quit: make(chan struct{}),
	}
	go q.run()

	return q
}

// Defer enqueues work to run after all previously deferred work on this
// queue has completed. The returned Job resolves with the work's error once
// it has run, or with ErrQueueClosed if the queue shuts down first.
func (q *Queue) Defer(work func() error) *Job {
	job := &Job{
		work: work,
		done: make(chan struct{}),
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		job.err = ErrQueueClosed
		close(job.done)
		return job
	}
	q.pending = append(q.pending, job)
	q.mu.Unlock()

	select {
	case q.kick <- struct{}{}:
	default:
	}

	return job
}

// Close stops the worker. Jobs not yet started resolve with ErrQueueClosed;
// a job already running finishes normally.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	close(q.quit)
}

func (q *Queue) run() {
	for {
		job := q.next()
		if job != nil {
			job.err = job.work()
			close(job.done)
			continue
		}

		select {
		case <-q.kick:
		case <-q.quit:
			q.drain()
			return
		}
	}
}

func (q *Queue) next() *Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil
	}
	job := q.pending[0]
	q.pending = q.pending[1:]

	return job
}

func (q *Queue) drain() {
	q.mu.Lock()
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, job := range pending {
		job.err = ErrQueueClosed
		close(job.done)
	}
}
