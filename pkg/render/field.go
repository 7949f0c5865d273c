package render

import (
	"log/slog"
	"sort"

	"github.com/vango-dev/labeled-input/pkg/dom"
	"github.com/vango-dev/labeled-input/pkg/host"
	"github.com/vango-dev/labeled-input/pkg/runtime"
)

// FieldConfig configures a server-side element.
type FieldConfig struct {
	// Logger receives scheduler and element logs.
	// Default: slog.Default()
	Logger *slog.Logger

	// Observer receives scheduler events.
	Observer runtime.Observer

	// Attributes are set on the host element before it is upgraded.
	Attributes map[string]string
}

// Field is one custom element living in its own document, with its own
// scheduler and task loop. A Field is not safe for concurrent use.
type Field struct {
	Doc      *dom.Document
	Loop     *runtime.Loop
	Sched    *runtime.Scheduler
	Registry *host.Registry
	Element  *host.Adapter
}

// NewField defines def in a fresh document, appends a <def.Tag> carrying
// config.Attributes to the body and upgrades it.
func NewField(def *host.Definition, config FieldConfig) (*Field, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts := []runtime.SchedulerOption{runtime.WithLogger(logger)}
	if config.Observer != nil {
		opts = append(opts, runtime.WithObserver(config.Observer))
	}

	f := &Field{
		Doc:  dom.NewDocument(),
		Loop: runtime.NewLoop(),
	}
	f.Sched = runtime.NewScheduler(f.Loop, opts...)
	f.Registry = host.NewRegistry(f.Sched)
	if err := f.Registry.Define(def); err != nil {
		return nil, err
	}
	f.Registry.Install(f.Doc)

	node := f.Doc.CreateElement(def.Tag)
	names := make([]string, 0, len(config.Attributes))
	for name := range config.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		node.SetAttribute(name, config.Attributes[name])
	}
	f.Doc.Body().AppendChild(node)

	if _, err := f.Registry.Upgrade(f.Doc.Body()); err != nil {
		return nil, err
	}
	f.Element, _ = f.Registry.Lookup(node)
	return f, f.Drain()
}

// Drain runs queued flushes until none remain.
func (f *Field) Drain() error {
	return f.Loop.Drain()
}

// HTML serializes the host element with its shadow root as a declarative
// template and control values as attributes.
func (f *Field) HTML() string {
	return f.Element.Node().OuterHTML()
}

// Control returns the field's input or textarea.
func (f *Field) Control() *dom.Node {
	root := f.Element.Root()
	if n := root.Find("input"); n != nil {
		return n
	}
	return root.Find("textarea")
}

// Close destroys the element.
func (f *Field) Close() {
	f.Element.Destroy()
}
