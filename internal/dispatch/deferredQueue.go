package dispatch

import "github.com/gammazero/deque"

// Queue defers callbacks until the current call stack returns to the
// Scheduler, then runs them strictly in enqueue order, one per scheduler
// step. A callback enqueued while the queue drains runs after everything
// queued before it and before the queue goes idle again.
//
// Queue is not safe for concurrent use: call it from the goroutine that
// runs the Scheduler.
type Queue struct {
	scheduler  Scheduler
	funcs      deque.Deque[func()]
	processing bool
	metrics    *Metrics
}

type QueueOption func(*Queue)

func WithMetrics(m *Metrics) QueueOption {
	return func(q *Queue) {
		q.metrics = m
	}
}

func NewQueue(scheduler Scheduler, opts ...QueueOption) *Queue {
	q := &Queue{scheduler: scheduler}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// ExecLater appends fn. From idle it also schedules the drain loop;
// while draining the running loop picks fn up.
func (q *Queue) ExecLater(fn func()) {
	q.funcs.PushBack(fn)
	q.metrics.enqueued()
	if q.processing {
		return
	}
	q.processing = true
	q.metrics.drainStarted()
	q.scheduler.Post(q.step)
}

// Processing reports whether a drain loop is in flight.
func (q *Queue) Processing() bool {
	return q.processing
}

// Pending returns the number of callbacks not yet started.
func (q *Queue) Pending() int {
	return q.funcs.Len()
}

// step runs one callback. The next step is posted before the callback runs,
// so a panicking callback leaves the loop scheduled and the rest queued.
func (q *Queue) step() {
	if q.funcs.Len() == 0 {
		q.processing = false
		return
	}
	fn := q.funcs.PopFront()
	q.scheduler.Post(q.step)
	q.metrics.executed()
	fn()
}
