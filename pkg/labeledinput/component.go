package labeledinput

import (
	"slices"

	"github.com/vango-dev/labeled-input/pkg/host"
	"github.com/vango-dev/labeled-input/pkg/runtime"
)

// Tag is the default element name.
const Tag = "labeled-input"

const (
	slotValue = iota
	slotType
	slotName
	slotPlaceholder
	slotLabel
	slotError
	slotMin
	slotMax
	slotValidator
	slotErrorMessage
	slotRows
)

var slotNames = []string{
	"value",
	"type",
	"name",
	"placeholder",
	"label",
	"error",
	"min",
	"max",
	"validator",
	"errormessage",
	"rows",
}

var props = map[string]int{
	"value":        slotValue,
	"type":         slotType,
	"name":         slotName,
	"placeholder":  slotPlaceholder,
	"label":        slotLabel,
	"min":          slotMin,
	"max":          slotMax,
	"validator":    slotValidator,
	"errormessage": slotErrorMessage,
	"rows":         slotRows,
}

// ObservedAttributes are the attributes a labeled-input host watches.
var ObservedAttributes = []string{
	"name",
	"placeholder",
	"value",
	"label",
	"errormessage",
	"validator",
	"type",
	"min",
	"max",
	"rows",
}

// Component returns the runtime description of the widget.
func Component() *runtime.Component {
	return &runtime.Component{
		Name:     "labeled-input",
		Slots:    slotNames,
		Props:    props,
		NotEqual: runtime.SafeNotEqual,
		Setup:    setup,
		Update:   update,
		Fragment: newLayout,
		Coerce:   coerce,
	}
}

func setup(inst *runtime.Instance) {
	state := inst.State()
	if state.Get(slotType) == nil {
		inst.Invalidate(slotType, "text")
	}
	inst.Invalidate(slotError, "")
}

// update re-derives the validator default and numeric values, then
// validates changed values.
func update(inst *runtime.Instance, dirty runtime.Bitmask) {
	state := inst.State()

	if dirty.Has(slotValidator) && state.Get(slotValidator) == nil {
		inst.Invalidate(slotValidator, true)
	}

	if (dirty.Has(slotType) || dirty.Has(slotValue)) && state.Get(slotType) == "number" {
		inst.Invalidate(slotValue, ToNumber(state.Get(slotValue)))
	}

	if dirty.Has(slotValue) && !dirty.IsAll() {
		validate(inst, nil)
	}
}

func coerce(inst *runtime.Instance, prop string, v any) any {
	switch prop {
	case "validator":
		// The attribute form: any value but "false" leaves the field valid.
		if s, ok := v.(string); ok {
			return s != "false"
		}
	case "value":
		if inst.State().Get(slotType) == "number" {
			return ToNumber(v)
		}
	}
	return v
}

// Option customizes a Definition.
type Option func(*host.Definition)

// WithTag registers the widget under another tag.
func WithTag(tag string) Option {
	return func(d *host.Definition) { d.Tag = tag }
}

// WithShadow selects shadow-root isolation.
func WithShadow(shadow bool) Option {
	return func(d *host.Definition) { d.Shadow = shadow }
}

// WithDispatch selects how events are delivered.
func WithDispatch(mode host.DispatchMode) Option {
	return func(d *host.Definition) { d.Dispatch = mode }
}

// WithStyle replaces the injected style sheet. An empty string injects
// nothing.
func WithStyle(css string) Option {
	return func(d *host.Definition) { d.Style = css }
}

// Definition returns the element definition. By default the widget renders
// into a shadow root and dispatches composed DOM events.
func Definition(opts ...Option) *host.Definition {
	def := &host.Definition{
		Tag:        Tag,
		Component:  Component(),
		Attributes: slices.Clone(ObservedAttributes),
		Style:      Style,
		Shadow:     true,
		Dispatch:   host.DispatchComposed,
	}
	for _, opt := range opts {
		opt(def)
	}
	return def
}

// Define registers the widget with r.
func Define(r *host.Registry, opts ...Option) error {
	return r.Define(Definition(opts...))
}
