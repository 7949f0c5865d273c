package runtime

import "time"

// FlushStats summarizes one flush.
type FlushStats struct {
	Rounds    int // Drain rounds until the queue stabilized
	Instances int // Instances updated, counting repeats
	Slots     int // Dirty slots seen by patches
	Callbacks int // After-update callbacks run
	Duration  time.Duration
}

// Observer receives scheduler events. Implementations must not write
// instance state.
type Observer interface {
	FlushStarted()
	InstancePatched(component string, dirtySlots int)
	FlushFinished(stats FlushStats, err error)
}

type nopObserver struct{}

func (nopObserver) FlushStarted() {}

func (nopObserver) InstancePatched(string, int) {}

func (nopObserver) FlushFinished(FlushStats, error) {}

type multiObserver []Observer

// Observers fans events out to every observer in order.
func Observers(obs ...Observer) Observer {
	return multiObserver(obs)
}

func (m multiObserver) FlushStarted() {
	for _, o := range m {
		o.FlushStarted()
	}
}

func (m multiObserver) InstancePatched(component string, dirtySlots int) {
	for _, o := range m {
		o.InstancePatched(component, dirtySlots)
	}
}

func (m multiObserver) FlushFinished(stats FlushStats, err error) {
	for _, o := range m {
		o.FlushFinished(stats, err)
	}
}
