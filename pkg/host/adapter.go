package host

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/vango-dev/labeled-input/internal/errors"
	"github.com/vango-dev/labeled-input/pkg/dom"
	"github.com/vango-dev/labeled-input/pkg/runtime"
)

// Element is the capability set the registration layer drives. Hosts are
// bridged by composition: any value implementing Element can back a tag.
type Element interface {
	Connect()
	Disconnect()
	AttributeChanged(name string, oldValue, newValue *string) error
	Destroy()
}

// DispatchMode selects how component events leave an instance.
type DispatchMode int

const (
	// DispatchBus delivers events to listeners registered with Adapter.On.
	DispatchBus DispatchMode = iota

	// DispatchComposed dispatches a bubbling, composed DOM event on the
	// node that triggered it, so listeners outside the shadow tree see it
	// retargeted to the host.
	DispatchComposed
)

// String returns the config spelling of the mode.
func (m DispatchMode) String() string {
	switch m {
	case DispatchBus:
		return "bus"
	case DispatchComposed:
		return "composed"
	default:
		return fmt.Sprintf("DispatchMode(%d)", int(m))
	}
}

// ParseDispatchMode parses "bus" or "composed".
func ParseDispatchMode(s string) (DispatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bus", "":
		return DispatchBus, nil
	case "composed":
		return DispatchComposed, nil
	}
	return DispatchBus, errors.New("E022").
		WithDetail(fmt.Sprintf("unknown dispatch mode %q", s)).
		WithSuggestion(`Use "bus" or "composed"`)
}

// Definition registers a component under a tag.
type Definition struct {
	Tag       string
	Component *runtime.Component

	// Attributes lists the observed attribute names. Changes to any other
	// attribute are ignored.
	Attributes []string

	// Style is injected once into the rendering root as a <style> element.
	Style string

	// Shadow renders into an open shadow root instead of the host itself.
	Shadow bool

	Dispatch DispatchMode
}

// ObservedAttributes returns a copy of the observed attribute names.
func (d *Definition) ObservedAttributes() []string {
	return slices.Clone(d.Attributes)
}

// Observes reports whether name is an observed attribute.
func (d *Definition) Observes(name string) bool {
	return slices.Contains(d.Attributes, strings.ToLower(name))
}

// Options configures an element created from code.
type Options struct {
	// Target receives the host element, before Anchor.
	Target *dom.Node
	Anchor *dom.Node

	// Props are applied after construction, followed by a flush.
	Props map[string]any

	// Hydrate adopts existing children of the rendering root.
	Hydrate bool
}

// Adapter bridges one host node to one runtime instance.
type Adapter struct {
	def    *Definition
	node   *dom.Node
	root   *dom.Node
	inst   *runtime.Instance
	sched  *runtime.Scheduler
	logger *slog.Logger

	destroyed bool
	onDestroy func()
}

var _ Element = (*Adapter)(nil)

// New upgrades node into an element of def. Without a registry the caller
// is responsible for calling Connect once node is in the document.
func New(s *runtime.Scheduler, def *Definition, node *dom.Node, opts Options) (*Adapter, error) {
	a, err := construct(s, def, node, opts.Hydrate)
	if err != nil {
		return nil, err
	}
	if err := a.place(opts); err != nil {
		return a, err
	}
	return a, nil
}

func construct(s *runtime.Scheduler, def *Definition, node *dom.Node, hydrate bool) (*Adapter, error) {
	if node == nil {
		return nil, errors.New("E002").WithDetail(fmt.Sprintf("<%s> has no host node", def.Tag))
	}

	a := &Adapter{
		def:    def,
		node:   node,
		root:   node,
		sched:  s,
		logger: s.Logger().With("element", def.Tag),
	}
	if def.Shadow {
		a.root = node.AttachShadow()
	}

	props := make(map[string]any)
	for _, name := range def.Attributes {
		if v, ok := node.GetAttribute(name); ok {
			props[name] = v
		}
	}

	inst, err := runtime.New(s, def.Component, runtime.Options{
		Target:        a.root,
		Props:         props,
		Hydrate:       hydrate,
		CustomElement: true,
	})
	if err != nil {
		return nil, err
	}
	a.inst = inst
	if def.Style != "" {
		injectStyle(a.root, def.Style)
	}
	if def.Dispatch == DispatchComposed {
		inst.SetEmitter(composedEmitter{host: node})
	}
	return a, nil
}

// place inserts the host and applies initial props.
func (a *Adapter) place(opts Options) error {
	if opts.Target != nil {
		opts.Target.InsertBefore(a.node, opts.Anchor)
	}
	if len(opts.Props) > 0 {
		if err := a.inst.Apply(opts.Props); err != nil {
			return err
		}
		return a.sched.Flush()
	}
	return nil
}

// injectStyle puts the style element first in root unless it is already
// there.
func injectStyle(root *dom.Node, css string) {
	for _, c := range root.Children() {
		if c.Tag == "style" && c.TextContent() == css {
			return
		}
	}
	doc := root.Document()
	style := doc.CreateElement("style")
	style.AppendChild(doc.CreateTextNode(css))
	root.InsertBefore(style, root.FirstChild())
}

// Connect implements Element.
func (a *Adapter) Connect() {
	if a.destroyed {
		return
	}
	a.inst.Connect()
	a.logger.Debug("host: connected", "instance", a.inst.ID())
}

// Disconnect implements Element. The instance stays alive so a later
// Connect resumes it.
func (a *Adapter) Disconnect() {
	if a.destroyed {
		return
	}
	a.inst.Disconnect()
	a.logger.Debug("host: disconnected", "instance", a.inst.ID())
}

// AttributeChanged implements Element. A removed attribute writes nil.
func (a *Adapter) AttributeChanged(name string, _, newValue *string) error {
	if a.destroyed || !a.def.Observes(name) {
		return nil
	}
	var v any
	if newValue != nil {
		v = *newValue
	}
	return a.Set(strings.ToLower(name), v)
}

// Destroy implements Element.
func (a *Adapter) Destroy() {
	if a.destroyed {
		return
	}
	a.destroyed = true
	a.inst.Destroy(true)
	if a.onDestroy != nil {
		a.onDestroy()
	}
	a.logger.Debug("host: destroyed", "instance", a.inst.ID())
}

// Get returns a property value.
func (a *Adapter) Get(name string) (any, error) {
	return a.inst.Get(name)
}

// Set writes a property and flushes before returning, so a following Get
// and the DOM agree with the write.
func (a *Adapter) Set(name string, v any) error {
	if a.destroyed {
		return errors.New("E003").WithDetail(fmt.Sprintf("<%s> was destroyed", a.def.Tag))
	}
	return a.inst.Set(name, v)
}

// On subscribes to component events on the private bus. Events sent in
// DispatchComposed mode reach DOM listeners instead.
func (a *Adapter) On(typ string, fn func(*dom.Event)) func() {
	return a.inst.On(typ, fn)
}

// Node returns the host element.
func (a *Adapter) Node() *dom.Node {
	return a.node
}

// Root returns the rendering root: the shadow root or the host itself.
func (a *Adapter) Root() *dom.Node {
	return a.root
}

// Instance returns the backing instance.
func (a *Adapter) Instance() *runtime.Instance {
	return a.inst
}

// Definition returns the element's definition.
func (a *Adapter) Definition() *Definition {
	return a.def
}

type composedEmitter struct {
	host *dom.Node
}

func (c composedEmitter) Emit(source *dom.Node, e *dom.Event) bool {
	e.Bubbles = true
	e.Composed = true
	if source == nil {
		source = c.host
	}
	return source.DispatchEvent(e)
}
