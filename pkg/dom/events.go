package dom

// EventInit configures a new Event.
type EventInit struct {
	Detail     any
	Bubbles    bool
	Composed   bool // Propagate from a shadow tree to its host
	Cancelable bool
	Key        string // Key name for keyboard events
}

// Event is dispatched through a node's propagation path.
type Event struct {
	Type       string
	Detail     any
	Bubbles    bool
	Composed   bool
	Cancelable bool
	Key        string

	// Target is the dispatch target as seen from CurrentTarget. Listeners
	// outside a shadow tree see the host instead of the inner node.
	Target        *Node
	CurrentTarget *Node

	defaultPrevented bool
	stopped          bool
}

// NewEvent creates an event of the given type.
func NewEvent(typ string, init EventInit) *Event {
	return &Event{
		Type:       typ,
		Detail:     init.Detail,
		Bubbles:    init.Bubbles,
		Composed:   init.Composed,
		Cancelable: init.Cancelable,
		Key:        init.Key,
	}
}

// PreventDefault marks a cancelable event as canceled.
func (e *Event) PreventDefault() {
	if e.Cancelable {
		e.defaultPrevented = true
	}
}

// DefaultPrevented reports whether PreventDefault took effect.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// StopPropagation stops the event after the current node's listeners.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Listener handles a dispatched event.
type Listener func(e *Event)

type listener struct {
	fn Listener
}

// AddEventListener registers fn for events of type typ and returns a
// function that removes it.
func (n *Node) AddEventListener(typ string, fn Listener) func() {
	if n.listeners == nil {
		n.listeners = make(map[string][]*listener)
	}
	l := &listener{fn: fn}
	n.listeners[typ] = append(n.listeners[typ], l)

	return func() {
		list := n.listeners[typ]
		for i, c := range list {
			if c == l {
				n.listeners[typ] = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(n.listeners[typ]) == 0 {
			delete(n.listeners, typ)
		}
	}
}

// ListenerCount returns the number of listeners registered for typ.
func (n *Node) ListenerCount(typ string) int {
	return len(n.listeners[typ])
}

// TotalListeners returns the number of listeners of any type on n.
func (n *Node) TotalListeners() int {
	total := 0
	for _, list := range n.listeners {
		total += len(list)
	}
	return total
}

type pathEntry struct {
	node   *Node
	target *Node
}

// DispatchEvent dispatches e with n as the target and returns false if a
// listener canceled it.
func (n *Node) DispatchEvent(e *Event) bool {
	for _, entry := range propagationPath(n, e) {
		e.Target = entry.target
		e.CurrentTarget = entry.node
		entry.node.invoke(e)
		if e.stopped {
			break
		}
	}
	e.CurrentTarget = nil
	return !e.defaultPrevented
}

// propagationPath returns the nodes visited by e, target first. When a
// composed event leaves a shadow root, the retargeted target becomes the
// host.
func propagationPath(n *Node, e *Event) []pathEntry {
	path := []pathEntry{{node: n, target: n}}
	if !e.Bubbles && !e.Composed {
		return path
	}

	target := n
	for cur := n; ; {
		var next *Node
		if cur.Type == ShadowRootNode {
			if !e.Composed {
				break
			}
			next = cur.host
			target = cur.host
		} else {
			next = cur.parent
		}
		if next == nil {
			break
		}
		// Non-bubbling composed events still reach the host.
		if e.Bubbles || next == target {
			path = append(path, pathEntry{node: next, target: target})
		}
		cur = next
	}
	return path
}

func (n *Node) invoke(e *Event) {
	list := n.listeners[e.Type]
	if len(list) == 0 {
		return
	}
	snapshot := make([]*listener, len(list))
	copy(snapshot, list)
	for _, l := range snapshot {
		l.fn(e)
	}
}
