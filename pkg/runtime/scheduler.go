package runtime

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/vango-dev/labeled-input/internal/errors"
)

// Scheduler batches instance updates into flushes. It owns the dirty queue
// and the callback lists that a browser runtime would keep as module
// globals; every application root or test creates its own.
//
// A Scheduler is single-threaded: all writes and flushes for its instances
// must happen on one goroutine.
type Scheduler struct {
	deferrer Deferrer
	logger   *slog.Logger
	observer Observer

	dirty    WorkList[*Instance]
	bindings WorkList[func()]
	renders  WorkList[*Callback]
	flushes  WorkList[func()]
	seen     map[*Callback]struct{}

	scheduled bool
	flushing  bool
	current   *Instance
	nextID    uint64
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithLogger sets the logger used for fault and flush reporting.
func WithLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver installs an observer for flush events.
func WithObserver(o Observer) SchedulerOption {
	return func(s *Scheduler) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewScheduler creates a scheduler that defers flushes through d.
func NewScheduler(d Deferrer, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		deferrer: d,
		logger:   slog.Default(),
		observer: nopObserver{},
		seen:     make(map[*Callback]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Logger returns the scheduler's logger.
func (s *Scheduler) Logger() *slog.Logger {
	return s.logger
}

// Scheduled reports whether a deferred flush is pending.
func (s *Scheduler) Scheduled() bool {
	return s.scheduled
}

// Flushing reports whether a flush is running.
func (s *Scheduler) Flushing() bool {
	return s.flushing
}

// Current returns the instance being updated, or nil.
func (s *Scheduler) Current() *Instance {
	return s.current
}

// schedule defers a flush unless one is already pending.
func (s *Scheduler) schedule() {
	if s.scheduled {
		return
	}
	s.scheduled = true
	s.deferrer.Defer(s.Flush)
}

// MarkDirty records slot as changed on inst and schedules a flush. The
// first dirty slot of a clean instance queues it; later slots only add
// bits.
func (s *Scheduler) MarkDirty(inst *Instance, slot int) {
	if inst.destroyed {
		return
	}
	if !inst.queued {
		inst.queued = true
		inst.dirty.Reset()
		s.dirty.Push(inst)
		s.schedule()
	}
	inst.dirty.Set(slot)
}

// AddRenderCallback queues cb to run after the current flush's patches.
func (s *Scheduler) AddRenderCallback(cb *Callback) {
	cb.queued = true
	s.renders.Push(cb)
}

// AddBinding queues a binding callback. Binding callbacks run once the
// dirty queue has stabilized, newest first.
func (s *Scheduler) AddBinding(fn func()) {
	s.bindings.Push(fn)
	s.schedule()
}

// AfterFlush registers a one-shot callback that runs at the end of the
// next flush, after all after-update callbacks.
func (s *Scheduler) AfterFlush(fn func()) {
	s.flushes.Push(fn)
	s.schedule()
}

func (s *Scheduler) idle() bool {
	return s.dirty.Len() == 0 && s.bindings.Len() == 0 &&
		s.renders.Len() == 0 && s.flushes.Len() == 0
}

// Flush applies all pending updates. Calling Flush while a flush is
// running returns nil immediately; the running flush picks up the new work.
//
// A panic raised by a recompute step, a patch, or a callback resets the
// scheduler and is returned as an E001 error.
func (s *Scheduler) Flush() (err error) {
	if s.flushing {
		return nil
	}
	if s.idle() {
		s.scheduled = false
		return nil
	}

	s.flushing = true
	s.observer.FlushStarted()
	start := time.Now()
	var stats FlushStats

	defer func() {
		if r := recover(); r != nil {
			err = s.fault(r)
			s.Reset()
		}
		stats.Duration = time.Since(start)
		s.observer.FlushFinished(stats, err)
		if err == nil {
			s.logger.Debug("runtime: flush",
				"rounds", stats.Rounds,
				"instances", stats.Instances,
				"callbacks", stats.Callbacks,
				"duration", stats.Duration)
		}
	}()

	for {
		stats.Rounds++

		s.dirty.Drain(func(inst *Instance) {
			s.current = inst
			s.update(inst, &stats)
		})
		s.current = nil

		s.bindings.DrainReverse(func(fn func()) {
			fn()
		})

		s.renders.Drain(func(cb *Callback) {
			if !cb.queued {
				return // drained by Destroy
			}
			cb.queued = false
			if _, ok := s.seen[cb]; ok {
				return
			}
			s.seen[cb] = struct{}{}
			stats.Callbacks++
			cb.Run()
		})

		if s.dirty.Len() == 0 {
			break
		}
	}

	s.flushes.Drain(func(fn func()) {
		fn()
	})

	s.scheduled = false
	s.flushing = false
	clear(s.seen)
	return nil
}

// update runs one instance's recompute, before-update callbacks and patch,
// then queues its after-update callbacks.
func (s *Scheduler) update(inst *Instance, stats *FlushStats) {
	if inst.destroyed {
		inst.queued = false
		return
	}

	// Writes made here land in inst.dirty; the instance is still queued.
	if inst.component.Update != nil {
		inst.component.Update(inst, inst.dirty)
	}
	inst.lifecycle.runBeforeUpdate()

	slots := len(inst.component.Slots)
	dirty := inst.dirty
	inst.dirty = Clean(slots)
	inst.queued = false

	if inst.fragment != nil {
		inst.fragment.Patch(inst.state, dirty)
	}

	n := dirty.Count(slots)
	stats.Instances++
	stats.Slots += n
	s.observer.InstancePatched(inst.component.Name, n)

	if inst.destroyed {
		return
	}
	for _, cb := range inst.lifecycle.afterUpdate {
		inst.queueRender(cb)
	}
}

func (s *Scheduler) fault(r any) error {
	e := errors.New("E001")
	if s.current != nil {
		e.WithDetail(fmt.Sprintf("instance %d (%s) panicked during update", s.current.id, s.current.component.Name))
	}
	if cause, ok := r.(error); ok {
		e.Wrap(cause)
	} else {
		e.Wrap(fmt.Errorf("%v", r))
	}
	s.logger.Error("runtime: scheduling fault", "error", e)
	return e
}

// Reset empties the queue and callback lists and clears scheduling state.
// Instances that were queued are left clean.
func (s *Scheduler) Reset() {
	if s.current != nil {
		s.current.queued = false
		s.current.dirty.Reset()
	}
	s.dirty.Drain(func(inst *Instance) {
		inst.queued = false
		inst.dirty.Reset()
	})
	s.bindings.Reset()
	s.renders.Drain(func(cb *Callback) {
		cb.queued = false
	})
	s.flushes.Reset()
	clear(s.seen)
	s.scheduled = false
	s.flushing = false
	s.current = nil
}
