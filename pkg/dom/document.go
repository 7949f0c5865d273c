package dom

import "strings"

// Hooks receive structural notifications from a Document.
type Hooks struct {
	// Connected is called for every element that becomes connected,
	// parents before children.
	Connected func(n *Node)

	// Disconnected is called for every element that stops being connected,
	// parents before children.
	Disconnected func(n *Node)

	// AttributeChanged is called after an attribute write. oldValue is nil
	// when the attribute was added; newValue is nil when it was removed.
	AttributeChanged func(n *Node, name string, oldValue, newValue *string)
}

// Document owns a tree of nodes rooted at a document node with a body
// element.
type Document struct {
	root   *Node
	body   *Node
	active *Node
	hooks  Hooks
}

// NewDocument creates an empty document with a body element.
func NewDocument() *Document {
	d := &Document{}
	d.root = &Node{Type: DocumentNode, doc: d}
	d.body = d.CreateElement("body")
	d.root.AppendChild(d.body)
	return d
}

// SetHooks replaces the document's structural hooks.
func (d *Document) SetHooks(h Hooks) {
	d.hooks = h
}

// Root returns the document node.
func (d *Document) Root() *Node {
	return d.root
}

// Body returns the body element.
func (d *Document) Body() *Node {
	return d.body
}

// ActiveElement returns the focused node, or nil.
func (d *Document) ActiveElement() *Node {
	if d.active != nil && !d.active.IsConnected() {
		d.active = nil
	}
	return d.active
}

// GetElementByID searches the light tree of the document. Nodes inside
// shadow roots are not found.
func (d *Document) GetElementByID(id string) *Node {
	return d.root.GetElementByID(id)
}

// CreateElement creates a detached element owned by d.
func (d *Document) CreateElement(tag string) *Node {
	return &Node{Type: ElementNode, Tag: strings.ToLower(tag), doc: d}
}

// CreateTextNode creates a detached text node owned by d.
func (d *Document) CreateTextNode(data string) *Node {
	return &Node{Type: TextNode, Data: data, doc: d}
}

func (d *Document) notifyConnected(n *Node) {
	if d.hooks.Connected == nil {
		return
	}
	visitElements(n, d.hooks.Connected)
}

func (d *Document) notifyDisconnected(n *Node) {
	if d.active != nil && (d.active == n || contains(n, d.active)) {
		d.active = nil
	}
	if d.hooks.Disconnected == nil {
		return
	}
	visitElements(n, d.hooks.Disconnected)
}

func (d *Document) notifyAttributeChanged(n *Node, name string, oldValue, newValue *string) {
	if d.hooks.AttributeChanged != nil {
		d.hooks.AttributeChanged(n, name, oldValue, newValue)
	}
}

// visitElements calls fn for n and its light-tree element descendants.
func visitElements(n *Node, fn func(*Node)) {
	if n.Type == ElementNode {
		fn(n)
	}
	for _, c := range n.Children() {
		visitElements(c, fn)
	}
}

// contains reports whether target is a shadow-including descendant of n.
func contains(n, target *Node) bool {
	for cur := target; cur != nil; {
		if cur == n {
			return true
		}
		if cur.Type == ShadowRootNode {
			cur = cur.host
		} else {
			cur = cur.parent
		}
	}
	return false
}
