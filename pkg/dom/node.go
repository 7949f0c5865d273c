package dom

import "strings"

// NodeType is the node kind discriminator.
type NodeType uint8

const (
	ElementNode    NodeType = iota + 1 // <div>, <input>, etc.
	TextNode                           // Character data
	DocumentNode                       // Root of a document tree
	ShadowRootNode                     // Root of a shadow tree
)

// String returns the string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case DocumentNode:
		return "Document"
	case ShadowRootNode:
		return "ShadowRoot"
	default:
		return "Unknown"
	}
}

// Attr is a single name/value attribute.
type Attr struct {
	Name  string
	Value string
}

// Node is a node in a document or shadow tree.
type Node struct {
	Type NodeType
	Tag  string // Lowercase tag name for elements
	Data string // Character data for text nodes

	attrs     []Attr
	parent    *Node
	children  []*Node
	listeners map[string][]*listener

	shadow *Node // Attached shadow root (elements)
	host   *Node // Host element (shadow roots)
	doc    *Document

	value    string // Live value property for form controls
	hasValue bool
}

// Document returns the document that owns this node.
func (n *Node) Document() *Document {
	return n.doc
}

// Parent returns the parent node, or nil for a detached or root node.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// NextSibling returns the following sibling, or nil.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	siblings := n.parent.children
	for i, c := range siblings {
		if c == n && i+1 < len(siblings) {
			return siblings[i+1]
		}
	}
	return nil
}

// Host returns the host element of a shadow root.
func (n *Node) Host() *Node {
	return n.host
}

// ShadowRoot returns the attached shadow root, or nil.
func (n *Node) ShadowRoot() *Node {
	return n.shadow
}

// AttachShadow attaches an open shadow root to an element and returns it.
// Calling it again returns the existing root.
func (n *Node) AttachShadow() *Node {
	if n.shadow != nil {
		return n.shadow
	}
	n.shadow = &Node{Type: ShadowRootNode, host: n, doc: n.doc}
	return n.shadow
}

// IsConnected reports whether the node's shadow-including root is a
// document.
func (n *Node) IsConnected() bool {
	for cur := n; cur != nil; {
		switch {
		case cur.Type == DocumentNode:
			return true
		case cur.Type == ShadowRootNode:
			cur = cur.host
		default:
			cur = cur.parent
		}
	}
	return false
}

// AppendChild appends child to n.
func (n *Node) AppendChild(child *Node) {
	n.InsertBefore(child, nil)
}

// InsertBefore inserts child before anchor. A nil anchor (or an anchor that
// is not a child of n) appends. A child that already has a parent is moved.
func (n *Node) InsertBefore(child, anchor *Node) {
	if child == nil || child == anchor {
		return
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}

	idx := len(n.children)
	if anchor != nil {
		for i, c := range n.children {
			if c == anchor {
				idx = i
				break
			}
		}
	}

	n.children = append(n.children, nil)
	copy(n.children[idx+1:], n.children[idx:])
	n.children[idx] = child
	child.parent = n

	if n.IsConnected() && n.doc != nil {
		n.doc.notifyConnected(child)
	}
}

// RemoveChild removes child from n. It is a no-op if child is not a child
// of n.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.children {
		if c != child {
			continue
		}
		wasConnected := n.IsConnected()
		n.children = append(n.children[:i], n.children[i+1:]...)
		child.parent = nil
		if wasConnected && n.doc != nil {
			n.doc.notifyDisconnected(child)
		}
		return
	}
}

// Remove detaches n from its parent.
func (n *Node) Remove() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// GetAttribute returns the attribute value and whether it is present.
func (n *Node) GetAttribute(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Attr returns the attribute value, or "" when absent.
func (n *Node) Attr(name string) string {
	v, _ := n.GetAttribute(name)
	return v
}

// HasAttribute reports whether the attribute is present.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.GetAttribute(name)
	return ok
}

// Attributes returns a copy of the attributes in insertion order.
func (n *Node) Attributes() []Attr {
	out := make([]Attr, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// SetAttribute sets an attribute, preserving its position if it exists.
func (n *Node) SetAttribute(name, value string) {
	name = strings.ToLower(name)
	for i, a := range n.attrs {
		if a.Name == name {
			old := a.Value
			n.attrs[i].Value = value
			n.attributeChanged(name, &old, &value)
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
	n.attributeChanged(name, nil, &value)
}

// RemoveAttribute removes an attribute if present.
func (n *Node) RemoveAttribute(name string) {
	name = strings.ToLower(name)
	for i, a := range n.attrs {
		if a.Name == name {
			old := a.Value
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			n.attributeChanged(name, &old, nil)
			return
		}
	}
}

func (n *Node) attributeChanged(name string, oldValue, newValue *string) {
	if n.doc != nil {
		n.doc.notifyAttributeChanged(n, name, oldValue, newValue)
	}
}

// Value returns the live value property. Until it is set, the value
// attribute is reported.
func (n *Node) Value() string {
	if n.hasValue {
		return n.value
	}
	return n.Attr("value")
}

// SetValue sets the live value property without touching attributes.
func (n *Node) SetValue(v string) {
	n.value = v
	n.hasValue = true
}

// SetData replaces the character data of a text node.
func (n *Node) SetData(data string) {
	n.Data = data
}

// TextContent returns the concatenated character data of the subtree.
func (n *Node) TextContent() string {
	if n.Type == TextNode {
		return n.Data
	}
	var b strings.Builder
	for _, c := range n.children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// GetElementByID returns the first descendant element whose id attribute
// equals id. Shadow trees of descendants are not searched.
func (n *Node) GetElementByID(id string) *Node {
	return n.find(func(c *Node) bool {
		return c.Type == ElementNode && c.Attr("id") == id
	})
}

// Find returns the first descendant element with the given tag.
func (n *Node) Find(tag string) *Node {
	return n.find(func(c *Node) bool {
		return c.Type == ElementNode && c.Tag == tag
	})
}

// FindAll returns every descendant element with the given tag, in tree
// order.
func (n *Node) FindAll(tag string) []*Node {
	var out []*Node
	n.walk(func(c *Node) bool {
		if c.Type == ElementNode && c.Tag == tag {
			out = append(out, c)
		}
		return false
	})
	return out
}

func (n *Node) find(match func(*Node) bool) *Node {
	var found *Node
	n.walk(func(c *Node) bool {
		if match(c) {
			found = c
			return true
		}
		return false
	})
	return found
}

// walk visits descendants depth-first until visit returns true.
func (n *Node) walk(visit func(*Node) bool) bool {
	for _, c := range n.children {
		if visit(c) || c.walk(visit) {
			return true
		}
	}
	return false
}

// Focus makes n the document's active element if it is connected.
func (n *Node) Focus() {
	if n.doc != nil && n.IsConnected() {
		n.doc.active = n
	}
}
