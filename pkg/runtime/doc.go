// Package runtime is the reactive core that element components are built on.
//
// An Instance stores its state in indexed slots. Writing a slot through
// Invalidate compares the new value with the old one and, on a change,
// marks the slot in the instance's dirty Bitmask and asks the Scheduler for
// a flush. All writes made in one tick are coalesced: the scheduler defers
// a single Flush through its Deferrer, and the flush hands each dirty
// instance's Fragment the union of changed slots.
//
// # Flush order
//
// For every queued instance, in queue order:
//
//  1. Component.Update re-derives computed slots.
//  2. Before-update callbacks run.
//  3. Fragment.Patch receives the accumulated dirty set.
//  4. After-update callbacks are queued.
//
// Instances dirtied during the drain are picked up by the same drain.
// Once the queue is empty, binding callbacks run newest first, then render
// callbacks run at most once each. The loop repeats until nothing new was
// queued, then AfterFlush callbacks run.
//
// A panic anywhere in a flush resets the scheduler and is returned to the
// caller of Flush as an E001 error.
//
// # Example
//
//	loop := runtime.NewLoop()
//	sched := runtime.NewScheduler(loop)
//	inst, err := runtime.New(sched, counter, runtime.Options{Target: doc.Body()})
//	if err != nil {
//	    return err
//	}
//	inst.Invalidate(0, 1)
//	inst.Invalidate(0, 2)
//	return loop.Drain() // one patch, slot 0 = 2
package runtime
