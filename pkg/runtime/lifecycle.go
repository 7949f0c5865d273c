package runtime

// Callback is a zero-argument callback with stable identity, so the
// scheduler can tell whether it already ran during the current flush.
type Callback struct {
	fn     func()
	queued bool
}

// NewCallback wraps fn.
func NewCallback(fn func()) *Callback {
	return &Callback{fn: fn}
}

// Run invokes the callback.
func (c *Callback) Run() {
	c.fn()
}

// Lifecycle holds an instance's ordered callback lists. The lists are
// appended to during setup only.
type Lifecycle struct {
	mount        []func() func()
	beforeUpdate []*Callback
	afterUpdate  []*Callback
	destroy      []func()
}

// runMount runs the on-mount callbacks and returns the cleanups they
// produced.
func (l *Lifecycle) runMount() []func() {
	var cleanups []func()
	for _, fn := range l.mount {
		if cleanup := fn(); cleanup != nil {
			cleanups = append(cleanups, cleanup)
		}
	}
	return cleanups
}

func (l *Lifecycle) runBeforeUpdate() {
	for _, cb := range l.beforeUpdate {
		cb.Run()
	}
}

func runAll(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}
