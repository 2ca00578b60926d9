// Package dispatch runs address-space work on a single goroutine and
// defers notifications until the current call stack has unwound.
package dispatch

import (
	"context"
	"sync"

	"github.com/gammazero/deque"
)

// Scheduler runs posted tasks later, one at a time, in post order.
// Done is closed once the scheduler has stopped and posted tasks no longer run.
type Scheduler interface {
	Post(task func())
	Done() <-chan struct{}
}

// PanicHandler receives the value of a task that panicked.
type PanicHandler func(recovered any)

// EventLoop is a Scheduler owned by one goroutine. Post is safe from any
// goroutine; tasks only ever run on the goroutine calling Run, RunOnce or
// RunPending.
type EventLoop struct {
	mu      sync.Mutex
	tasks   deque.Deque[func()]
	wake    chan struct{}
	done    chan struct{}
	stop    sync.Once
	onPanic PanicHandler
}

type LoopOption func(*EventLoop)

// WithPanicHandler keeps the loop alive when a task panics. Without it the
// panic leaves the loop the same way it left the task.
func WithPanicHandler(h PanicHandler) LoopOption {
	return func(l *EventLoop) {
		l.onPanic = h
	}
}

func NewEventLoop(opts ...LoopOption) *EventLoop {
	l := &EventLoop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *EventLoop) Post(task func()) {
	l.mu.Lock()
	l.tasks.PushBack(task)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of tasks waiting to run.
func (l *EventLoop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tasks.Len()
}

// RunOnce runs the oldest task, it returns false when there was none.
func (l *EventLoop) RunOnce() bool {
	l.mu.Lock()
	if l.tasks.Len() == 0 {
		l.mu.Unlock()
		return false
	}
	task := l.tasks.PopFront()
	l.mu.Unlock()

	l.run(task)
	return true
}

// RunPending runs tasks until none are left, including the ones posted
// while it runs, and returns how many ran.
func (l *EventLoop) RunPending() int {
	n := 0
	for l.RunOnce() {
		n++
	}
	return n
}

// Done is closed when Run returns.
func (l *EventLoop) Done() <-chan struct{} {
	return l.done
}

// Run processes tasks until ctx is done.
func (l *EventLoop) Run(ctx context.Context) error {
	defer l.stop.Do(func() { close(l.done) })
	for {
		l.RunPending()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *EventLoop) run(task func()) {
	if l.onPanic != nil {
		defer func() {
			if r := recover(); r != nil {
				l.onPanic(r)
			}
		}()
	}
	task()
}
