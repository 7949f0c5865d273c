package labeledinput

import (
	"fmt"

	"github.com/vango-dev/labeled-input/internal/errors"
	"github.com/vango-dev/labeled-input/pkg/dom"
	"github.com/vango-dev/labeled-input/pkg/runtime"
)

var (
	valueBits       = runtime.Mask(slotValue)
	nameBits        = runtime.Mask(slotName)
	placeholderBits = runtime.Mask(slotPlaceholder)
	labelBits       = runtime.Mask(slotLabel)
	errorBits       = runtime.Mask(slotError)
	rangeBits       = runtime.Mask(slotMin, slotMax)
	rowsBits        = runtime.Mask(slotRows)
	controlBits     = nameBits | placeholderBits | rangeBits | rowsBits
)

// layout renders
//
//	<main><div class="field">
//	  <span class="error">{error}</span> {control} <label for={name}>{label}</label>
//	</div></main>
//
// where control is picked from the type slot.
type layout struct {
	inst *runtime.Instance
	doc  *dom.Document
	sw   *runtime.Switch

	main      *dom.Node
	div       *dom.Node
	span      *dom.Node
	errText   *dom.Node
	t1        *dom.Node
	t2        *dom.Node
	label     *dom.Node
	labelText *dom.Node

	off func()
}

func newLayout(inst *runtime.Instance) runtime.Fragment {
	f := &layout{inst: inst, doc: inst.Document()}
	f.sw = runtime.NewSwitch(f.doc, inst.State(), variantKey, map[string]runtime.Variant{
		"text":     f.variant("input", "text"),
		"password": f.variant("input", "password"),
		"number":   f.variant("input", "number"),
		"textarea": f.variant("textarea", ""),
	}, "text")
	return f
}

func (f *layout) variant(tag, kind string) runtime.Variant {
	return runtime.Variant{New: func() runtime.Fragment {
		return &control{f: f, tag: tag, kind: kind}
	}}
}

// variantKey picks the control; unknown types render as text.
func variantKey(s *runtime.State) string {
	return s.String(slotType)
}

func (f *layout) Create() {
	state := f.inst.State()
	f.main = f.doc.CreateElement("main")
	f.div = f.doc.CreateElement("div")
	f.span = f.doc.CreateElement("span")
	f.errText = f.doc.CreateTextNode(state.String(slotError))
	f.t1 = f.doc.CreateTextNode(" ")
	f.sw.Create()
	f.t2 = f.doc.CreateTextNode(" ")
	f.label = f.doc.CreateElement("label")
	f.labelText = f.doc.CreateTextNode(state.String(slotLabel))
	f.attrs(state)
}

func (f *layout) Claim(nodes *runtime.NodeList) {
	state := f.inst.State()
	f.main = nodes.ClaimElement(f.doc, "main")

	mainNodes := runtime.Children(f.main)
	f.div = mainNodes.ClaimElement(f.doc, "div")
	mainNodes.Detach()

	divNodes := runtime.Children(f.div)
	f.span = divNodes.ClaimElement(f.doc, "span")
	spanNodes := runtime.Children(f.span)
	f.errText = spanNodes.ClaimText(f.doc, state.String(slotError))
	spanNodes.Detach()

	f.t1 = divNodes.ClaimText(f.doc, " ")
	f.sw.Claim(&divNodes)
	f.t2 = divNodes.ClaimText(f.doc, " ")

	f.label = divNodes.ClaimElement(f.doc, "label")
	labelNodes := runtime.Children(f.label)
	f.labelText = labelNodes.ClaimText(f.doc, state.String(slotLabel))
	labelNodes.Detach()
	divNodes.Detach()

	f.attrs(state)
}

func (f *layout) attrs(state *runtime.State) {
	runtime.SetAttr(f.span, "class", "error")
	runtime.SetAttr(f.label, "for", state.Get(slotName))
	runtime.SetAttr(f.div, "class", "field")
}

func (f *layout) Mount(target, anchor *dom.Node) {
	target.InsertBefore(f.main, anchor)
	f.main.AppendChild(f.div)
	f.div.AppendChild(f.span)
	f.span.AppendChild(f.errText)
	f.div.AppendChild(f.t1)
	f.sw.Mount(f.div, nil)
	f.div.AppendChild(f.t2)
	f.div.AppendChild(f.label)
	f.label.AppendChild(f.labelText)

	f.off = runtime.Listen(f.label, "click", f.setFocus)
}

func (f *layout) Patch(state *runtime.State, dirty runtime.Bitmask) {
	if dirty.Any(0, errorBits) {
		runtime.SetText(f.errText, state.Get(slotError))
	}

	f.sw.Patch(state, dirty)

	if dirty.Any(0, labelBits) {
		runtime.SetText(f.labelText, state.Get(slotLabel))
	}
	if dirty.Any(0, nameBits) {
		runtime.SetAttr(f.label, "for", state.Get(slotName))
	}
}

func (f *layout) Destroy(detaching bool) {
	if detaching {
		f.main.Remove()
	}
	f.sw.Destroy(false)
	if f.off != nil {
		f.off()
		f.off = nil
	}
}

// setFocus focuses the element whose id equals the field name, looked up
// on the owner document. A shadow-isolated field's own input is not
// reachable this way, so for those the lookup usually fails.
func (f *layout) setFocus(*dom.Event) {
	state := f.inst.State()
	if state == nil {
		return
	}
	name := state.String(slotName)
	if el := f.doc.GetElementByID(name); el != nil {
		el.Focus()
		return
	}
	f.inst.Scheduler().Logger().Warn("labeledinput: label click did not focus",
		"name", name,
		"error", errors.New("E007").WithDetail(fmt.Sprintf("no element with id %q in the document", name)))
}

// control is one input variant: <input type=kind> or <textarea>.
type control struct {
	f    *layout
	tag  string
	kind string

	el       *dom.Node
	offs     runtime.Disposers
	emitting bool
}

func (c *control) Create() {
	c.el = c.f.doc.CreateElement(c.tag)
	c.attrs(c.f.inst.State(), runtime.All(len(slotNames)))
}

func (c *control) Claim(nodes *runtime.NodeList) {
	c.el = nodes.ClaimElement(c.f.doc, c.tag)
	c.attrs(c.f.inst.State(), runtime.All(len(slotNames)))
}

func (c *control) attrs(state *runtime.State, dirty runtime.Bitmask) {
	if dirty.Any(0, nameBits) {
		runtime.SetAttr(c.el, "id", state.Get(slotName))
		runtime.SetAttr(c.el, "name", state.Get(slotName))
	}
	if dirty.Any(0, placeholderBits) {
		runtime.SetAttr(c.el, "placeholder", state.Get(slotPlaceholder))
	}
	if c.kind != "" && dirty.IsAll() {
		runtime.SetAttr(c.el, "type", c.kind)
	}
	if c.kind == "number" && dirty.Any(0, rangeBits) {
		runtime.SetAttr(c.el, "min", state.Get(slotMin))
		runtime.SetAttr(c.el, "max", state.Get(slotMax))
	}
	if c.tag == "textarea" && dirty.Any(0, rowsBits) {
		runtime.SetAttr(c.el, "rows", state.Get(slotRows))
	}
}

func (c *control) Mount(target, anchor *dom.Node) {
	target.InsertBefore(c.el, anchor)
	runtime.SetInputValue(c.el, c.f.inst.State().Get(slotValue))

	c.offs.Add(
		runtime.Listen(c.el, "input", c.onInput),
		runtime.Listen(c.el, "change", c.onChange),
		runtime.Listen(c.el, "blur", c.onBlur),
		runtime.Listen(c.el, "keypress", c.onKey),
		runtime.Listen(c.el, "keyup", c.onKey),
	)
}

func (c *control) Patch(state *runtime.State, dirty runtime.Bitmask) {
	if dirty.Any(0, controlBits) {
		c.attrs(state, dirty)
	}
	if dirty.Any(0, valueBits) && c.stale(state.Get(slotValue)) {
		runtime.SetInputValue(c.el, state.Get(slotValue))
	}
}

// stale reports whether the control shows something other than v.
func (c *control) stale(v any) bool {
	if c.kind == "number" {
		return ToNumber(c.el.Value()) != v
	}
	return c.el.Value() != runtime.FormatValue(v)
}

func (c *control) Destroy(detaching bool) {
	if detaching {
		c.el.Remove()
	}
	c.offs.Run()
}

func (c *control) read() any {
	if c.kind == "number" {
		return ToNumber(c.el.Value())
	}
	return c.el.Value()
}

// emit raises a component event from the control. Composed delivery
// re-dispatches on the control itself; those events are ignored here.
func (c *control) emit(typ string, detail any) {
	c.emitting = true
	defer func() { c.emitting = false }()
	c.f.inst.Dispatch(c.el, typ, detail, false)
}

func (c *control) onInput(*dom.Event) {
	if c.emitting {
		return
	}
	v := c.read()
	c.f.inst.Invalidate(slotValue, v)
	c.emit("input", v)
}

func (c *control) onChange(*dom.Event) {
	if c.emitting {
		return
	}
	c.emit("change", c.read())
}

func (c *control) onBlur(*dom.Event) {
	if c.emitting || c.f.inst.Destroyed() {
		return
	}
	validate(c.f.inst, c.el)
	c.emit("blur", c.f.inst.State().Get(slotValue))
}

func (c *control) onKey(e *dom.Event) {
	if c.emitting {
		return
	}
	c.emit(e.Type, e.Key)
}
