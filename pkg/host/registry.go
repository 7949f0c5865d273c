package host

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"

	"github.com/vango-dev/labeled-input/internal/errors"
	"github.com/vango-dev/labeled-input/pkg/dom"
	"github.com/vango-dev/labeled-input/pkg/runtime"
)

var tagPattern = regexp.MustCompile(`^[a-z][a-z0-9._]*-[a-z0-9._-]*$`)

// Registry maps tags to definitions and keeps the adapter of every host
// node it created or upgraded.
type Registry struct {
	sched    *runtime.Scheduler
	logger   *slog.Logger
	defs     map[string]*Definition
	elements map[*dom.Node]*Adapter
}

// NewRegistry creates an empty registry whose elements run on s.
func NewRegistry(s *runtime.Scheduler) *Registry {
	return &Registry{
		sched:    s,
		logger:   s.Logger(),
		defs:     make(map[string]*Definition),
		elements: make(map[*dom.Node]*Adapter),
	}
}

// ValidTag reports whether tag is a valid custom element name.
func ValidTag(tag string) bool {
	return tagPattern.MatchString(tag)
}

// Define registers def under def.Tag.
func (r *Registry) Define(def *Definition) error {
	if !ValidTag(def.Tag) {
		return errors.New("E010").
			WithDetail(fmt.Sprintf("%q is not a valid custom element name", def.Tag)).
			WithSuggestion("Tags must start with a lowercase letter and contain a hyphen")
	}
	if _, ok := r.defs[def.Tag]; ok {
		return errors.New("E005").WithDetail(fmt.Sprintf("<%s> is already defined", def.Tag))
	}
	r.defs[def.Tag] = def
	r.logger.Debug("host: defined", "tag", def.Tag, "observed", def.Attributes)
	return nil
}

// Definition returns the definition registered for tag.
func (r *Registry) Definition(tag string) (*Definition, bool) {
	def, ok := r.defs[tag]
	return def, ok
}

// Tags returns the defined tags in sorted order.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.defs))
	for tag := range r.defs {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Create makes a new host element of tag in doc.
func (r *Registry) Create(doc *dom.Document, tag string, opts Options) (*Adapter, error) {
	def, ok := r.defs[tag]
	if !ok {
		return nil, errors.New("E004").WithDetail(fmt.Sprintf("<%s> is not defined", tag))
	}
	node := doc.CreateElement(tag)
	a, err := r.adopt(def, node, opts.Hydrate)
	if err != nil {
		return nil, err
	}
	return a, a.place(opts)
}

// Upgrade turns every element under root whose tag is defined into a live
// element. Already upgraded nodes are left alone. It returns the new
// adapters in tree order.
func (r *Registry) Upgrade(root *dom.Node) ([]*Adapter, error) {
	var out []*Adapter
	for _, tag := range r.Tags() {
		for _, node := range root.FindAll(tag) {
			if _, ok := r.elements[node]; ok {
				continue
			}
			a, err := r.adopt(r.defs[tag], node, node.ShadowRoot() != nil)
			if err != nil {
				return out, err
			}
			out = append(out, a)
			if node.IsConnected() {
				a.Connect()
			}
		}
	}
	return out, nil
}

func (r *Registry) adopt(def *Definition, node *dom.Node, hydrate bool) (*Adapter, error) {
	a, err := construct(r.sched, def, node, hydrate)
	if err != nil {
		return nil, err
	}
	r.elements[node] = a
	a.onDestroy = func() { delete(r.elements, node) }
	return a, nil
}

// Lookup returns the adapter behind a host node.
func (r *Registry) Lookup(n *dom.Node) (*Adapter, bool) {
	a, ok := r.elements[n]
	return a, ok
}

// Len returns the number of live elements.
func (r *Registry) Len() int {
	return len(r.elements)
}

// Install routes doc's structural notifications to the registry's
// elements: connecting, disconnecting and attribute writes on hosts.
func (r *Registry) Install(doc *dom.Document) {
	doc.SetHooks(dom.Hooks{
		Connected: func(n *dom.Node) {
			if a, ok := r.elements[n]; ok {
				a.Connect()
			}
		},
		Disconnected: func(n *dom.Node) {
			if a, ok := r.elements[n]; ok {
				a.Disconnect()
			}
		},
		AttributeChanged: func(n *dom.Node, name string, oldValue, newValue *string) {
			a, ok := r.elements[n]
			if !ok {
				return
			}
			if err := a.AttributeChanged(name, oldValue, newValue); err != nil {
				r.logger.Error("host: attribute change failed",
					"tag", n.Tag, "attribute", name, "error", err)
			}
		},
	})
}
