package runtime

import "github.com/vango-dev/labeled-input/pkg/dom"

// Fragment is the render description of an instance. It is owned by
// exactly one instance.
//
// Lifecycle: uncreated → Create → Mount → Patch* → Destroy. Patch must only
// touch nodes whose slots are set in dirty.
type Fragment interface {
	// Create builds the nodes without attaching them.
	Create()

	// Mount inserts the nodes into target before anchor, or appends them
	// when anchor is nil.
	Mount(target, anchor *dom.Node)

	// Patch applies the changes for the dirty slots.
	Patch(state *State, dirty Bitmask)

	// Destroy releases listeners. Root nodes are detached only when
	// detaching is true; a parent being removed wholesale passes false.
	Destroy(detaching bool)
}

// Claimer is implemented by fragments that can adopt existing nodes
// instead of creating new ones. Claim is called in place of Create.
type Claimer interface {
	Claim(nodes *NodeList)
}

// NodeList is the pool of existing nodes a fragment claims from during
// hydration. Claimed nodes are removed from the pool.
type NodeList []*dom.Node

// Children returns the child nodes of n as a claim pool.
func Children(n *dom.Node) NodeList {
	return NodeList(n.Children())
}

// ClaimElement removes and returns the first element with the given tag.
// A new element is created when none matches.
func (l *NodeList) ClaimElement(doc *dom.Document, tag string) *dom.Node {
	for i, n := range *l {
		if n.Type == dom.ElementNode && n.Tag == tag {
			*l = append((*l)[:i], (*l)[i+1:]...)
			return n
		}
	}
	return doc.CreateElement(tag)
}

// ClaimText removes and returns the first text node, updating its data. A
// new text node is created when none is left.
func (l *NodeList) ClaimText(doc *dom.Document, data string) *dom.Node {
	for i, n := range *l {
		if n.Type == dom.TextNode {
			*l = append((*l)[:i], (*l)[i+1:]...)
			n.SetData(data)
			return n
		}
	}
	return doc.CreateTextNode(data)
}

// Detach removes every node left in the pool from its parent.
func (l *NodeList) Detach() {
	for _, n := range *l {
		n.Remove()
	}
	*l = nil
}

// Listen registers fn on n and returns the function that removes it.
func Listen(n *dom.Node, typ string, fn dom.Listener) func() {
	return n.AddEventListener(typ, fn)
}

// Disposers collects cleanup functions, such as listener removers.
type Disposers []func()

// Add appends cleanup functions.
func (d *Disposers) Add(fns ...func()) {
	*d = append(*d, fns...)
}

// Run calls every cleanup once and empties the list.
func (d *Disposers) Run() {
	fns := *d
	*d = nil
	runAll(fns)
}

// SetAttr sets an attribute, removing it when value is nil and skipping
// the write when the value is unchanged.
func SetAttr(n *dom.Node, name string, value any) {
	if value == nil {
		n.RemoveAttribute(name)
		return
	}
	s := FormatValue(value)
	if cur, ok := n.GetAttribute(name); ok && cur == s {
		return
	}
	n.SetAttribute(name, s)
}

// SetText updates a text node only when its data differs.
func SetText(n *dom.Node, value any) {
	s := FormatValue(value)
	if n.Data != s {
		n.SetData(s)
	}
}

// SetInputValue writes a form control's value property. nil clears it.
func SetInputValue(n *dom.Node, value any) {
	n.SetValue(FormatValue(value))
}

// Variant describes one alternative sub-view of a Switch.
type Variant struct {
	New func() Fragment
}

// Switch is a fragment that renders exactly one variant chosen by a
// discriminator. The choice is re-evaluated once per patch.
type Switch struct {
	doc      *dom.Document
	table    map[string]Variant
	fallback string
	selector func(*State) string

	key    string
	block  Fragment
	target *dom.Node
	anchor *dom.Node // Empty text node marking the variant's position
}

// NewSwitch creates a switch over table. selector maps the state to a
// variant key; unknown keys fall back to fallback, which must be in table.
func NewSwitch(doc *dom.Document, state *State, selector func(*State) string, table map[string]Variant, fallback string) *Switch {
	if _, ok := table[fallback]; !ok {
		panic("runtime: switch fallback " + fallback + " is not in the variant table")
	}
	sw := &Switch{
		doc:      doc,
		table:    table,
		fallback: fallback,
		selector: selector,
	}
	sw.key = sw.selectKey(state)
	sw.block = table[sw.key].New()
	return sw
}

func (sw *Switch) selectKey(state *State) string {
	key := sw.selector(state)
	if _, ok := sw.table[key]; !ok {
		return sw.fallback
	}
	return key
}

// Key returns the current variant key.
func (sw *Switch) Key() string {
	return sw.key
}

// Block returns the current variant fragment.
func (sw *Switch) Block() Fragment {
	return sw.block
}

// Create implements Fragment.
func (sw *Switch) Create() {
	sw.anchor = sw.doc.CreateTextNode("")
	sw.block.Create()
}

// Claim implements Claimer.
func (sw *Switch) Claim(nodes *NodeList) {
	sw.anchor = sw.doc.CreateTextNode("")
	if c, ok := sw.block.(Claimer); ok {
		c.Claim(nodes)
		return
	}
	sw.block.Create()
}

// Mount implements Fragment.
func (sw *Switch) Mount(target, anchor *dom.Node) {
	sw.target = target
	sw.block.Mount(target, anchor)
	target.InsertBefore(sw.anchor, anchor)
}

// Patch implements Fragment. An unchanged key delegates to the current
// variant; a changed key replaces it at the same position.
func (sw *Switch) Patch(state *State, dirty Bitmask) {
	key := sw.selectKey(state)
	if key == sw.key {
		sw.block.Patch(state, dirty)
		return
	}

	sw.block.Destroy(true)
	sw.key = key
	sw.block = sw.table[key].New()
	sw.block.Create()
	sw.block.Mount(sw.target, sw.anchor)
}

// Destroy implements Fragment.
func (sw *Switch) Destroy(detaching bool) {
	sw.block.Destroy(detaching)
	if detaching && sw.anchor != nil {
		sw.anchor.Remove()
	}
}
