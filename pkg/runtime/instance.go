package runtime

import (
	"fmt"
	"sort"

	"github.com/vango-dev/labeled-input/internal/errors"
	"github.com/vango-dev/labeled-input/pkg/dom"
)

// Component describes a kind of instance: its slots, which of them are
// public properties, and how it renders.
type Component struct {
	// Name identifies the component in logs and metrics.
	Name string

	// Slots names every state slot in index order.
	Slots []string

	// Props maps public property names to slot indices.
	Props map[string]int

	// NotEqual decides whether a write is a change. Defaults to SafeNotEqual.
	NotEqual NotEqualFunc

	// Setup runs once after initial props are stored. Lifecycle callbacks
	// may only be registered here.
	Setup func(inst *Instance)

	// Update re-derives computed slots. It runs at the start of every
	// update with the accumulated dirty set, and once at construction with
	// every slot dirty.
	Update func(inst *Instance, dirty Bitmask)

	// Fragment builds the render description. Nil means headless.
	Fragment func(inst *Instance) Fragment

	// Coerce converts an incoming property value before it is stored.
	Coerce func(inst *Instance, prop string, v any) any
}

// Options configures instance construction.
type Options struct {
	// Target is the node the fragment mounts into. Without a target the
	// instance is created but not mounted.
	Target *dom.Node

	// Anchor is the node inside Target to insert before.
	Anchor *dom.Node

	// Document creates the fragment's nodes. Defaults to Target's document.
	Document *dom.Document

	// Props are the initial property values.
	Props map[string]any

	// Hydrate claims Target's existing children instead of creating nodes.
	Hydrate bool

	// CustomElement defers on-mount callbacks to Connect.
	CustomElement bool
}

// Emitter delivers component events somewhere other than the instance's
// own listeners, such as the DOM.
type Emitter interface {
	Emit(source *dom.Node, e *dom.Event) bool
}

type handler struct {
	fn func(*dom.Event)
}

// Instance is one running component.
type Instance struct {
	id        uint64
	component *Component
	scheduler *Scheduler
	doc       *dom.Document
	notEqual  NotEqualFunc

	state *State
	dirty Bitmask

	lifecycle    Lifecycle
	fragment     Fragment
	bound        map[int]func(any)
	onDisconnect []func()
	mountCB      *Callback

	handlers map[string][]*handler
	emitter  Emitter

	queued        bool
	inSetup       bool
	ready         bool
	mounted       bool
	destroyed     bool
	skipBound     bool
	customElement bool
}

// New constructs an instance of c on scheduler s. When opts.Target is set
// the instance is mounted and the scheduler flushed before New returns.
func New(s *Scheduler, c *Component, opts Options) (*Instance, error) {
	s.nextID++
	inst := &Instance{
		id:            s.nextID,
		component:     c,
		scheduler:     s,
		doc:           opts.Document,
		notEqual:      c.NotEqual,
		state:         NewState(c.Slots),
		dirty:         Clean(len(c.Slots)),
		bound:         make(map[int]func(any)),
		handlers:      make(map[string][]*handler),
		customElement: opts.CustomElement,
	}
	if inst.notEqual == nil {
		inst.notEqual = SafeNotEqual
	}
	if inst.doc == nil && opts.Target != nil {
		inst.doc = opts.Target.Document()
	}

	for _, prop := range inst.propNames(opts.Props) {
		inst.state.swap(c.Props[prop], inst.coerce(prop, opts.Props[prop]))
	}

	if c.Setup != nil {
		inst.inSetup = true
		c.Setup(inst)
		inst.inSetup = false
	}
	if c.Update != nil {
		c.Update(inst, All(inst.state.Len()))
	}
	inst.ready = true
	inst.lifecycle.runBeforeUpdate()

	if c.Fragment != nil {
		if inst.doc == nil {
			return nil, errors.New("E002").
				WithDetail(fmt.Sprintf("component %s has a fragment but no document", c.Name)).
				WithSuggestion("Pass Options.Target or Options.Document")
		}
		inst.fragment = c.Fragment(inst)
	}

	if opts.Target != nil {
		inst.mount(opts.Target, opts.Anchor, opts.Hydrate)
		return inst, s.Flush()
	}
	return inst, nil
}

// propNames returns the known property names in props, in slot order.
func (inst *Instance) propNames(props map[string]any) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		if _, ok := inst.component.Props[name]; ok {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return inst.component.Props[names[i]] < inst.component.Props[names[j]]
	})
	return names
}

func (inst *Instance) coerce(prop string, v any) any {
	if inst.component.Coerce == nil {
		return v
	}
	return inst.component.Coerce(inst, prop, v)
}

// Mount attaches the fragment to target before anchor and flushes.
func (inst *Instance) Mount(target, anchor *dom.Node) error {
	if inst.destroyed {
		return errors.New("E003").WithDetail("cannot mount a destroyed instance")
	}
	if target == nil {
		return errors.New("E002").WithDetail(fmt.Sprintf("component %s mounted without a target", inst.component.Name))
	}
	if inst.mounted {
		return nil
	}
	if inst.fragment == nil && inst.component.Fragment != nil {
		if inst.doc == nil {
			inst.doc = target.Document()
		}
		inst.fragment = inst.component.Fragment(inst)
	}
	inst.mount(target, anchor, false)
	return inst.scheduler.Flush()
}

func (inst *Instance) mount(target, anchor *dom.Node, hydrate bool) {
	if inst.fragment != nil {
		if c, ok := inst.fragment.(Claimer); ok && hydrate {
			nodes := Children(target)
			c.Claim(&nodes)
			nodes.Detach()
		} else {
			inst.fragment.Create()
		}
		inst.fragment.Mount(target, anchor)
	}
	inst.mounted = true

	if !inst.customElement {
		inst.mountCB = NewCallback(inst.runMount)
		inst.scheduler.AddRenderCallback(inst.mountCB)
	}
	for _, cb := range inst.lifecycle.afterUpdate {
		inst.queueRender(cb)
	}
}

// runMount runs on-mount callbacks once. Cleanups become on-destroy
// callbacks, or run at once if the instance is already gone.
func (inst *Instance) runMount() {
	cleanups := inst.lifecycle.runMount()
	inst.lifecycle.mount = nil
	if inst.destroyed {
		runAll(cleanups)
		return
	}
	inst.lifecycle.destroy = append(inst.lifecycle.destroy, cleanups...)
}

func (inst *Instance) queueRender(cb *Callback) {
	if !cb.queued {
		inst.scheduler.AddRenderCallback(cb)
	}
}

// Connect runs the on-mount callbacks and keeps their cleanups as
// on-disconnect callbacks. It is used by custom element hosts, which may
// connect an instance many times.
func (inst *Instance) Connect() {
	if inst.destroyed {
		return
	}
	inst.onDisconnect = append(inst.onDisconnect, inst.lifecycle.runMount()...)
}

// Disconnect runs the callbacks collected by Connect. It never destroys.
func (inst *Instance) Disconnect() {
	fns := inst.onDisconnect
	inst.onDisconnect = nil
	runAll(fns)
}

// Invalidate stores v in slot. When the value changed it runs the slot's
// binding callback and, once setup is complete, marks the slot dirty. It
// reports whether the value changed.
func (inst *Instance) Invalidate(slot int, v any) bool {
	if inst.state == nil {
		return false
	}
	old := inst.state.swap(slot, v)
	if !inst.notEqual(old, v) {
		return false
	}
	if !inst.skipBound {
		if fn := inst.bound[slot]; fn != nil {
			fn(v)
		}
	}
	if inst.ready {
		inst.scheduler.MarkDirty(inst, slot)
	}
	return true
}

// ForceUpdate queues a full patch.
func (inst *Instance) ForceUpdate() {
	if !inst.ready || inst.destroyed {
		return
	}
	inst.scheduler.MarkDirty(inst, 0)
	inst.dirty.Fill()
}

// Bind registers fn as the two-way binding callback of a property. fn is
// called with the current value immediately.
func (inst *Instance) Bind(prop string, fn func(any)) error {
	slot, ok := inst.component.Props[prop]
	if !ok {
		return errors.New("E006").WithDetail(fmt.Sprintf("%s has no property %q", inst.component.Name, prop))
	}
	inst.bound[slot] = fn
	fn(inst.state.Get(slot))
	return nil
}

// Binding queues fn to run after the current flush's patches, newest
// first, before after-update callbacks.
func (inst *Instance) Binding(fn func()) {
	inst.scheduler.AddBinding(fn)
}

// Apply writes props as an external set. Binding callbacks are suppressed
// so values flowing in are not echoed back. Unknown names are reported as
// E006 after the known ones are applied.
func (inst *Instance) Apply(props map[string]any) error {
	if inst.destroyed {
		return errors.New("E003").WithDetail("cannot set properties on a destroyed instance")
	}

	var unknown []string
	for name := range props {
		if _, ok := inst.component.Props[name]; !ok {
			unknown = append(unknown, name)
		}
	}

	inst.skipBound = true
	for _, prop := range inst.propNames(props) {
		inst.Invalidate(inst.component.Props[prop], inst.coerce(prop, props[prop]))
	}
	inst.skipBound = false

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return errors.New("E006").WithDetail(fmt.Sprintf("%s has no properties %v", inst.component.Name, unknown))
	}
	return nil
}

// Get returns a property value. Destroyed instances return nil.
func (inst *Instance) Get(prop string) (any, error) {
	slot, ok := inst.component.Props[prop]
	if !ok {
		return nil, errors.New("E006").WithDetail(fmt.Sprintf("%s has no property %q", inst.component.Name, prop))
	}
	if inst.state == nil {
		return nil, nil
	}
	return inst.state.Get(slot), nil
}

// Set writes a property and, when mounted, flushes before returning.
func (inst *Instance) Set(prop string, v any) error {
	if err := inst.Apply(map[string]any{prop: v}); err != nil {
		return err
	}
	if inst.mounted {
		return inst.scheduler.Flush()
	}
	return nil
}

func (inst *Instance) mustBeInSetup(fn string) {
	if !inst.inSetup {
		panic(fmt.Sprintf("[E008] %s called outside of %s setup", fn, inst.component.Name))
	}
}

// OnMount registers a callback run after the first mount. A non-nil
// return value runs on destroy, or on disconnect for custom elements.
func (inst *Instance) OnMount(fn func() func()) {
	inst.mustBeInSetup("OnMount")
	inst.lifecycle.mount = append(inst.lifecycle.mount, fn)
}

// BeforeUpdate registers a callback run before every patch.
func (inst *Instance) BeforeUpdate(fn func()) {
	inst.mustBeInSetup("BeforeUpdate")
	inst.lifecycle.beforeUpdate = append(inst.lifecycle.beforeUpdate, NewCallback(fn))
}

// AfterUpdate registers a callback run at most once per flush after the
// instance is patched.
func (inst *Instance) AfterUpdate(fn func()) {
	inst.mustBeInSetup("AfterUpdate")
	inst.lifecycle.afterUpdate = append(inst.lifecycle.afterUpdate, NewCallback(fn))
}

// OnDestroy registers a callback run when the instance is destroyed.
func (inst *Instance) OnDestroy(fn func()) {
	inst.mustBeInSetup("OnDestroy")
	inst.lifecycle.destroy = append(inst.lifecycle.destroy, fn)
}

// Destroy tears the instance down. Pending after-update callbacks run
// first, then on-destroy callbacks, then the fragment is destroyed. The
// instance is inert afterwards; further calls do nothing.
func (inst *Instance) Destroy(detaching bool) {
	if inst.destroyed {
		return
	}
	inst.destroyed = true

	for _, cb := range inst.lifecycle.afterUpdate {
		if cb.queued {
			cb.queued = false
			cb.Run()
		}
	}

	fns := inst.lifecycle.destroy
	inst.lifecycle.destroy = nil
	runAll(fns)

	if inst.fragment != nil {
		inst.fragment.Destroy(detaching)
	}
	inst.fragment = nil
	inst.state = nil
	inst.bound = nil
	inst.handlers = nil
	inst.mounted = false
}

// On registers a listener on the instance's private event bus.
func (inst *Instance) On(typ string, fn func(*dom.Event)) func() {
	if inst.handlers == nil {
		return func() {}
	}
	h := &handler{fn: fn}
	inst.handlers[typ] = append(inst.handlers[typ], h)
	return func() {
		list := inst.handlers[typ]
		for i, x := range list {
			if x == h {
				inst.handlers[typ] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// SetEmitter routes Dispatch through e instead of the private bus.
func (inst *Instance) SetEmitter(e Emitter) {
	inst.emitter = e
}

// Dispatch raises a component event from source. It returns false when a
// listener canceled a cancelable event.
func (inst *Instance) Dispatch(source *dom.Node, typ string, detail any, cancelable bool) bool {
	if inst.destroyed {
		return true
	}
	e := dom.NewEvent(typ, dom.EventInit{Detail: detail, Cancelable: cancelable})
	if inst.emitter != nil {
		return inst.emitter.Emit(source, e)
	}

	list := append([]*handler(nil), inst.handlers[typ]...)
	for _, h := range list {
		h.fn(e)
	}
	return !e.DefaultPrevented()
}

// ID returns the instance's scheduler-unique id.
func (inst *Instance) ID() uint64 {
	return inst.id
}

// Component returns the instance's component.
func (inst *Instance) Component() *Component {
	return inst.component
}

// Scheduler returns the scheduler the instance belongs to.
func (inst *Instance) Scheduler() *Scheduler {
	return inst.scheduler
}

// Document returns the document the fragment's nodes belong to.
func (inst *Instance) Document() *dom.Document {
	return inst.doc
}

// State returns the slot storage, or nil once destroyed.
func (inst *Instance) State() *State {
	return inst.state
}

// Fragment returns the render description, or nil.
func (inst *Instance) Fragment() Fragment {
	return inst.fragment
}

// Mounted reports whether the fragment is attached.
func (inst *Instance) Mounted() bool {
	return inst.mounted
}

// Destroyed reports whether Destroy has run.
func (inst *Instance) Destroyed() bool {
	return inst.destroyed
}
