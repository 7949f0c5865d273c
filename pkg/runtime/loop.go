package runtime

import "errors"

// Deferrer runs tasks after the current synchronous work completes.
type Deferrer interface {
	Defer(task func() error)
}

// Loop is a single-goroutine microtask queue. Tasks deferred while the
// loop drains run in the same drain, after the tasks queued before them.
//
// A Loop is not safe for concurrent use; the goroutine that writes state
// also drains the loop.
type Loop struct {
	tasks WorkList[func() error]
}

// NewLoop creates an empty loop.
func NewLoop() *Loop {
	return &Loop{}
}

// Defer implements Deferrer.
func (l *Loop) Defer(task func() error) {
	l.tasks.Push(task)
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	return l.tasks.Len()
}

// Drain runs queued tasks until the queue is empty. Errors returned by
// tasks do not stop the drain; they are joined and returned.
func (l *Loop) Drain() error {
	var errs []error
	l.tasks.Drain(func(task func() error) {
		if err := task(); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}
