package runtime

import (
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/vango-dev/labeled-input/internal/errors"
	"github.com/vango-dev/labeled-input/pkg/dom"
)

const (
	slotValue = iota
	slotLabel
	slotUpper
)

// textFragment renders <p>value</p> and records every patch.
type textFragment struct {
	doc     *dom.Document
	patches *[]Bitmask
	onPatch func(*State)

	el, text *dom.Node
	off      func()
}

func (f *textFragment) Create() {
	f.el = f.doc.CreateElement("p")
	f.text = f.doc.CreateTextNode("")
	f.el.AppendChild(f.text)
}

func (f *textFragment) Mount(target, anchor *dom.Node) {
	target.InsertBefore(f.el, anchor)
	f.off = Listen(f.el, "click", func(*dom.Event) {})
}

func (f *textFragment) Patch(state *State, dirty Bitmask) {
	*f.patches = append(*f.patches, dirty.Clone())
	if f.onPatch != nil {
		f.onPatch(state)
	}
	if dirty.Has(slotValue) {
		SetText(f.text, state.Get(slotValue))
	}
}

func (f *textFragment) Destroy(detaching bool) {
	if detaching {
		f.el.Remove()
	}
	if f.off != nil {
		f.off()
	}
}

type harness struct {
	t       *testing.T
	loop    *Loop
	sched   *Scheduler
	doc     *dom.Document
	patches map[*Instance]*[]Bitmask
}

func newHarness(t *testing.T, opts ...SchedulerOption) *harness {
	t.Helper()
	loop := NewLoop()
	opts = append([]SchedulerOption{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return &harness{
		t:       t,
		loop:    loop,
		sched:   NewScheduler(loop, opts...),
		doc:     dom.NewDocument(),
		patches: make(map[*Instance]*[]Bitmask),
	}
}

type fieldHooks struct {
	setup   func(*Instance)
	onPatch func(*Instance, *State)
}

func (h *harness) component(hooks fieldHooks) *Component {
	return &Component{
		Name:  "field",
		Slots: []string{"value", "label", "upper"},
		Props: map[string]int{"value": slotValue, "label": slotLabel},
		Setup: hooks.setup,
		Update: func(inst *Instance, dirty Bitmask) {
			if dirty.Has(slotValue) {
				inst.Invalidate(slotUpper, strings.ToUpper(inst.State().String(slotValue)))
			}
		},
		Fragment: func(inst *Instance) Fragment {
			log := &[]Bitmask{}
			h.patches[inst] = log
			f := &textFragment{doc: inst.Document(), patches: log}
			if hooks.onPatch != nil {
				f.onPatch = func(s *State) { hooks.onPatch(inst, s) }
			}
			return f
		},
	}
}

func (h *harness) mount(hooks fieldHooks, props map[string]any) *Instance {
	h.t.Helper()
	inst, err := New(h.sched, h.component(hooks), Options{Target: h.doc.Body(), Props: props})
	if err != nil {
		h.t.Fatalf("New() error = %v", err)
	}
	return inst
}

func (h *harness) drain() {
	h.t.Helper()
	if err := h.loop.Drain(); err != nil {
		h.t.Fatalf("Drain() error = %v", err)
	}
}

func (h *harness) patchCount(inst *Instance) int {
	return len(*h.patches[inst])
}

type recordingObserver struct {
	started  int
	finished []FlushStats
	errs     []error
	patched  []string
}

func (o *recordingObserver) FlushStarted() { o.started++ }

func (o *recordingObserver) InstancePatched(component string, dirtySlots int) {
	o.patched = append(o.patched, component)
}

func (o *recordingObserver) FlushFinished(stats FlushStats, err error) {
	o.finished = append(o.finished, stats)
	o.errs = append(o.errs, err)
}

func TestConstructionDoesNotPatch(t *testing.T) {
	h := newHarness(t)
	inst := h.mount(fieldHooks{}, map[string]any{"value": "hi", "label": "Name"})

	if got := h.patchCount(inst); got != 0 {
		t.Errorf("expected no patches after construction, got %d", got)
	}
	if got := inst.State().Get(slotUpper); got != "HI" {
		t.Errorf("derived slot = %v, want HI", got)
	}
	if h.loop.Pending() != 0 {
		t.Errorf("construction should not defer a flush, %d pending", h.loop.Pending())
	}
	if !inst.Mounted() {
		t.Error("instance with a target should be mounted")
	}
}

func TestWritesCoalesceIntoOneFlush(t *testing.T) {
	obs := &recordingObserver{}
	h := newHarness(t, WithObserver(obs))
	inst := h.mount(fieldHooks{}, nil)
	obs.started = 0

	inst.Invalidate(slotValue, "a")
	inst.Invalidate(slotLabel, "Email")
	inst.Invalidate(slotValue, "ab")

	if h.loop.Pending() != 1 {
		t.Fatalf("expected exactly one deferred flush, got %d", h.loop.Pending())
	}
	h.drain()

	patches := *h.patches[inst]
	if len(patches) != 1 {
		t.Fatalf("expected 1 patch, got %d", len(patches))
	}
	if got, want := patches[0].Slots(3), []int{slotValue, slotLabel, slotUpper}; !reflect.DeepEqual(got, want) {
		t.Errorf("patch dirty slots = %v, want %v", got, want)
	}
	if got := h.doc.Body().TextContent(); got != "ab" {
		t.Errorf("rendered text = %q, want %q", got, "ab")
	}
	if obs.started != 1 {
		t.Errorf("observer saw %d flushes, want 1", obs.started)
	}
}

func TestEqualWriteDoesNotSchedule(t *testing.T) {
	h := newHarness(t)
	inst := h.mount(fieldHooks{}, map[string]any{"label": "Name"})

	if inst.Invalidate(slotLabel, "Name") {
		t.Error("Invalidate reported a change for an equal value")
	}
	if h.loop.Pending() != 0 || h.sched.Scheduled() {
		t.Error("equal write must not schedule a flush")
	}
	h.drain()
	if h.patchCount(inst) != 0 {
		t.Error("equal write must not patch")
	}
}

func TestMountAndDestroyCallbacks(t *testing.T) {
	h := newHarness(t)
	var events []string
	inst := h.mount(fieldHooks{setup: func(inst *Instance) {
		inst.OnMount(func() func() {
			events = append(events, "mount")
			return func() { events = append(events, "cleanup") }
		})
		inst.AfterUpdate(func() { events = append(events, "after") })
		inst.OnDestroy(func() { events = append(events, "destroy") })
	}}, nil)

	if want := []string{"mount", "after"}; !reflect.DeepEqual(events, want) {
		t.Errorf("after mount events = %v, want %v", events, want)
	}

	inst.Destroy(true)
	inst.Destroy(true)
	if want := []string{"mount", "after", "destroy", "cleanup"}; !reflect.DeepEqual(events, want) {
		t.Errorf("after destroy events = %v, want %v", events, want)
	}
	if h.doc.Body().FirstChild() != nil {
		t.Error("destroy(true) should detach the fragment")
	}
}

func TestDestroyedInstanceIsInert(t *testing.T) {
	h := newHarness(t)
	afterA := 0
	var a *Instance
	a = h.mount(fieldHooks{setup: func(inst *Instance) {
		inst.AfterUpdate(func() { afterA++ })
	}}, nil)
	afterA = 0

	// b destroys a while patching, after a was updated in the same flush.
	b := h.mount(fieldHooks{onPatch: func(_ *Instance, _ *State) { a.Destroy(true) }}, nil)

	a.Invalidate(slotValue, "x")
	b.Invalidate(slotValue, "y")
	h.drain()

	if afterA != 1 {
		t.Errorf("pending after-update ran %d times, want 1", afterA)
	}

	patches := h.patchCount(a)
	if a.Invalidate(slotValue, "z") {
		t.Error("destroyed instance accepted a write")
	}
	h.drain()
	if h.patchCount(a) != patches {
		t.Error("destroyed instance was patched")
	}
	if err := a.Set("value", "q"); !errors.HasCode(err, "E003") {
		t.Errorf("Set on destroyed instance error = %v, want E003", err)
	}
	if v, _ := a.Get("value"); v != nil {
		t.Errorf("Get on destroyed instance = %v, want nil", v)
	}
}

func TestFaultResetsScheduler(t *testing.T) {
	obs := &recordingObserver{}
	h := newHarness(t, WithObserver(obs))
	bad := h.mount(fieldHooks{onPatch: func(_ *Instance, s *State) {
		if s.Get(slotValue) == "boom" {
			panic("patch exploded")
		}
	}}, nil)
	good := h.mount(fieldHooks{}, nil)

	bad.Invalidate(slotValue, "boom")
	err := h.loop.Drain()
	if !errors.HasCode(err, "E001") {
		t.Fatalf("Drain() error = %v, want E001", err)
	}
	if !strings.Contains(err.Error(), "patch exploded") {
		t.Errorf("error should carry the panic value, got %v", err)
	}
	if h.sched.Flushing() || h.sched.Scheduled() {
		t.Error("scheduler should be reset after a fault")
	}
	if obs.errs[len(obs.errs)-1] == nil {
		t.Error("observer should receive the fault")
	}

	good.Invalidate(slotValue, "fine")
	bad.Invalidate(slotValue, "recovered")
	h.drain()

	if h.patchCount(good) != 1 {
		t.Errorf("unrelated instance patches = %d, want 1", h.patchCount(good))
	}
	if got := h.patchCount(bad); got != 2 {
		t.Errorf("faulted instance patches = %d, want 2", got)
	}
}

func TestFaultInUpdateRequeues(t *testing.T) {
	h := newHarness(t)
	c := h.component(fieldHooks{})
	c.Update = func(inst *Instance, dirty Bitmask) {
		if inst.State().Get(slotValue) == "boom" {
			panic("update exploded")
		}
	}
	inst, err := New(h.sched, c, Options{Target: h.doc.Body()})
	if err != nil {
		t.Fatal(err)
	}

	inst.Invalidate(slotValue, "boom")
	if err := h.loop.Drain(); !errors.HasCode(err, "E001") {
		t.Fatalf("Drain() error = %v, want E001", err)
	}

	inst.Invalidate(slotValue, "ok")
	h.drain()
	if h.patchCount(inst) != 1 {
		t.Errorf("instance should be queueable after a fault, patches = %d", h.patchCount(inst))
	}
}

func TestCascadingUpdatesInOneFlush(t *testing.T) {
	obs := &recordingObserver{}
	h := newHarness(t, WithObserver(obs))
	target := h.mount(fieldHooks{}, nil)
	source := h.mount(fieldHooks{setup: func(inst *Instance) {
		inst.AfterUpdate(func() {
			target.Invalidate(slotValue, inst.State().Get(slotValue))
		})
	}}, nil)
	obs.finished = nil

	source.Invalidate(slotValue, "copied")
	h.drain()

	if len(obs.finished) != 1 {
		t.Fatalf("expected one flush, got %d", len(obs.finished))
	}
	if got := obs.finished[0].Rounds; got != 2 {
		t.Errorf("Rounds = %d, want 2", got)
	}
	if got := target.State().Get(slotValue); got != "copied" {
		t.Errorf("target value = %v", got)
	}
	if h.patchCount(target) != 1 {
		t.Errorf("target patches = %d, want 1", h.patchCount(target))
	}
}

func TestAfterUpdateRunsOncePerFlush(t *testing.T) {
	h := newHarness(t)
	runs := 0
	inst := h.mount(fieldHooks{setup: func(inst *Instance) {
		inst.AfterUpdate(func() {
			runs++
			inst.Invalidate(slotLabel, "done")
		})
	}}, nil)
	h.drain()
	runs = 0
	before := h.patchCount(inst)

	inst.Invalidate(slotLabel, "again")
	h.drain()

	if runs != 1 {
		t.Errorf("after-update ran %d times in one flush, want 1", runs)
	}
	if got := h.patchCount(inst) - before; got != 2 {
		t.Errorf("patches = %d, want 2", got)
	}
	if got := inst.State().Get(slotLabel); got != "done" {
		t.Errorf("label = %v", got)
	}
}

func TestBindingCallbacksRunNewestFirst(t *testing.T) {
	h := newHarness(t)
	inst := h.mount(fieldHooks{}, nil)

	var order []string
	inst.Binding(func() { order = append(order, "parent") })
	inst.Binding(func() { order = append(order, "child") })
	h.drain()

	if want := []string{"child", "parent"}; !reflect.DeepEqual(order, want) {
		t.Errorf("binding order = %v, want %v", order, want)
	}
}

func TestAfterFlushRunsLast(t *testing.T) {
	h := newHarness(t)
	var order []string
	inst := h.mount(fieldHooks{setup: func(inst *Instance) {
		inst.AfterUpdate(func() { order = append(order, "after-update") })
	}}, nil)
	order = nil

	h.sched.AfterFlush(func() { order = append(order, "post-flush") })
	inst.Invalidate(slotValue, "x")
	h.drain()

	if want := []string{"after-update", "post-flush"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestTwoWayBinding(t *testing.T) {
	h := newHarness(t)
	inst := h.mount(fieldHooks{}, map[string]any{"value": "seed"})

	var seen []any
	if err := inst.Bind("value", func(v any) { seen = append(seen, v) }); err != nil {
		t.Fatal(err)
	}
	inst.Invalidate(slotValue, "typed")
	if err := inst.Apply(map[string]any{"value": "external"}); err != nil {
		t.Fatal(err)
	}

	if want := []any{"seed", "typed"}; !reflect.DeepEqual(seen, want) {
		t.Errorf("binding saw %v, want %v", seen, want)
	}
	if err := inst.Bind("missing", func(any) {}); !errors.HasCode(err, "E006") {
		t.Errorf("Bind(missing) error = %v, want E006", err)
	}
}

func TestSetFlushesSynchronously(t *testing.T) {
	h := newHarness(t)
	inst := h.mount(fieldHooks{}, nil)

	if err := inst.Set("value", "now"); err != nil {
		t.Fatal(err)
	}
	if h.patchCount(inst) != 1 {
		t.Fatalf("Set should patch before returning, patches = %d", h.patchCount(inst))
	}
	if got := h.doc.Body().TextContent(); got != "now" {
		t.Errorf("text = %q", got)
	}
	if v, err := inst.Get("value"); err != nil || v != "now" {
		t.Errorf("Get(value) = %v, %v", v, err)
	}
	if _, err := inst.Get("nope"); !errors.HasCode(err, "E006") {
		t.Errorf("Get(nope) error = %v, want E006", err)
	}

	h.drain()
	if h.patchCount(inst) != 1 {
		t.Error("deferred flush after a synchronous one should be a no-op")
	}
}

func TestApplyReportsUnknownProps(t *testing.T) {
	h := newHarness(t)
	inst := h.mount(fieldHooks{}, nil)

	err := inst.Apply(map[string]any{"label": "Email", "color": "red"})
	if !errors.HasCode(err, "E006") {
		t.Fatalf("Apply() error = %v, want E006", err)
	}
	if got, _ := inst.Get("label"); got != "Email" {
		t.Errorf("known prop should still apply, label = %v", got)
	}
}

func TestForceUpdatePatchesEverything(t *testing.T) {
	h := newHarness(t)
	inst := h.mount(fieldHooks{}, nil)

	inst.ForceUpdate()
	h.drain()

	patches := *h.patches[inst]
	if len(patches) != 1 || !patches[0].IsAll() {
		t.Errorf("expected one all-dirty patch, got %v", patches)
	}
}

func TestLifecycleOutsideSetupPanics(t *testing.T) {
	h := newHarness(t)
	inst := h.mount(fieldHooks{}, nil)

	defer func() {
		r := recover()
		if r == nil || !strings.Contains(r.(string), "[E008]") {
			t.Errorf("recover() = %v, want E008 panic", r)
		}
	}()
	inst.AfterUpdate(func() {})
}

func TestMissingMountTarget(t *testing.T) {
	h := newHarness(t)
	if _, err := New(h.sched, h.component(fieldHooks{}), Options{}); !errors.HasCode(err, "E002") {
		t.Errorf("New without document error = %v, want E002", err)
	}

	inst, err := New(h.sched, h.component(fieldHooks{}), Options{Document: h.doc})
	if err != nil {
		t.Fatal(err)
	}
	if err := inst.Mount(nil, nil); !errors.HasCode(err, "E002") {
		t.Errorf("Mount(nil) error = %v, want E002", err)
	}
	if err := inst.Mount(h.doc.Body(), nil); err != nil {
		t.Fatal(err)
	}
	if h.doc.Body().Find("p") == nil {
		t.Error("fragment should be mounted into the body")
	}
}

func TestConnectDisconnect(t *testing.T) {
	h := newHarness(t)
	var events []string
	c := h.component(fieldHooks{setup: func(inst *Instance) {
		inst.OnMount(func() func() {
			events = append(events, "connect")
			return func() { events = append(events, "disconnect") }
		})
	}})
	inst, err := New(h.sched, c, Options{Target: h.doc.Body(), CustomElement: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Fatalf("custom element mount callbacks must wait for Connect, got %v", events)
	}

	inst.Connect()
	inst.Disconnect()
	inst.Connect()
	inst.Disconnect()

	want := []string{"connect", "disconnect", "connect", "disconnect"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
	if inst.Destroyed() {
		t.Error("disconnect must not destroy")
	}
}

func TestEventBus(t *testing.T) {
	h := newHarness(t)
	inst := h.mount(fieldHooks{}, nil)

	var details []any
	off := inst.On("change", func(e *dom.Event) { details = append(details, e.Detail) })
	inst.On("change", func(e *dom.Event) { e.PreventDefault() })

	if inst.Dispatch(nil, "change", "a", false) != true {
		t.Error("non-cancelable dispatch should report true")
	}
	if inst.Dispatch(nil, "change", "b", true) != false {
		t.Error("canceled dispatch should report false")
	}
	off()
	inst.Dispatch(nil, "change", "c", false)

	if want := []any{"a", "b"}; !reflect.DeepEqual(details, want) {
		t.Errorf("details = %v, want %v", details, want)
	}
}
