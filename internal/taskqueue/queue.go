package taskqueue

import (
	"context"
	"fmt"
	"sync"
)

// Task is one unit of queued work.
type Task func(ctx context.Context) error

type pending struct {
	ctx  context.Context
	task Task
	done chan error
}

// Queue runs submitted tasks with bounded concurrency. Admission is FIFO;
// each task settles independently, so one task's failure never cancels its
// siblings. All bookkeeping is owned by the queue's mutex; workers report
// back through it rather than sharing counters.
type Queue struct {
	mu      sync.Mutex
	limit   int
	running int
	waiting []*pending
}

// New creates a queue admitting at most limit concurrent tasks. Limits
// below one are clamped to one.
func New(limit int) *Queue {
	if limit < 1 {
		limit = 1
	}
	return &Queue{limit: limit}
}

// Push submits a task. The task starts immediately when capacity allows and
// queues otherwise. The returned channel settles exactly once with the
// task's result; a panicking task settles with an error instead of taking
// the queue down.
func (q *Queue) Push(ctx context.Context, task Task) <-chan error {
	done := make(chan error, 1)
	if ctx == nil {
		ctx = context.Background()
	}

	q.mu.Lock()
	q.waiting = append(q.waiting, &pending{ctx: ctx, task: task, done: done})
	q.admitLocked()
	q.mu.Unlock()

	return done
}

// SetConcurrency adjusts the limit for future admissions. Raising it admits
// queued work immediately; lowering it never interrupts running tasks.
// Values below one are clamped to one.
func (q *Queue) SetConcurrency(limit int) {
	if limit < 1 {
		limit = 1
	}
	q.mu.Lock()
	q.limit = limit
	q.admitLocked()
	q.mu.Unlock()
}

// Concurrency returns the current admission limit.
func (q *Queue) Concurrency() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.limit
}

// Running returns the number of tasks currently executing.
func (q *Queue) Running() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// admitLocked starts queued tasks while capacity allows. Callers hold q.mu.
func (q *Queue) admitLocked() {
	for q.running < q.limit && len(q.waiting) > 0 {
		next := q.waiting[0]
		q.waiting = q.waiting[1:]

		if err := next.ctx.Err(); err != nil {
			next.done <- err
			close(next.done)
			continue
		}

		q.running++
		go q.run(next)
	}
}

func (q *Queue) run(p *pending) {
	err := call(p.ctx, p.task)

	q.mu.Lock()
	q.running--
	q.admitLocked()
	q.mu.Unlock()

	p.done <- err
	close(p.done)
}

func call(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task(ctx)
}
