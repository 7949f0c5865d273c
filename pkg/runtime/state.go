package runtime

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// NotEqualFunc decides whether a slot write is a change.
type NotEqualFunc func(a, b any) bool

// SafeNotEqual treats container and reference values as always changed,
// since they may have been mutated in place. NaN equals NaN.
func SafeNotEqual(a, b any) bool {
	if isNaN(a) {
		return !isNaN(b)
	}
	if isMutable(a) {
		return true
	}
	if !isComparable(a) || !isComparable(b) {
		return true
	}
	return a != b
}

// NotEqual compares values by identity only. Use it for components whose
// slots hold immutable values.
func NotEqual(a, b any) bool {
	if isNaN(a) {
		return !isNaN(b)
	}
	if !isComparable(a) || !isComparable(b) {
		return true
	}
	return a != b
}

func isNaN(v any) bool {
	switch f := v.(type) {
	case float64:
		return math.IsNaN(f)
	case float32:
		return math.IsNaN(float64(f))
	}
	return false
}

func isMutable(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Func, reflect.Pointer,
		reflect.Struct, reflect.Array, reflect.Chan:
		return true
	}
	return false
}

func isComparable(v any) bool {
	return v == nil || reflect.TypeOf(v).Comparable()
}

// State is an instance's ordered slot storage. Slot indices are assigned
// once from the component's slot names and never change.
type State struct {
	names  []string
	index  map[string]int
	values []any
}

// NewState creates a state container with one nil slot per name.
func NewState(names []string) *State {
	s := &State{
		names:  append([]string(nil), names...),
		index:  make(map[string]int, len(names)),
		values: make([]any, len(names)),
	}
	for i, name := range names {
		s.index[name] = i
	}
	return s
}

// Len returns the number of slots.
func (s *State) Len() int {
	return len(s.values)
}

// Name returns the name of a slot.
func (s *State) Name(slot int) string {
	return s.names[slot]
}

// Index returns the slot index for a name.
func (s *State) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Get returns the current value of a slot.
func (s *State) Get(slot int) any {
	return s.values[slot]
}

// String returns a slot formatted for text content: nil is empty and other
// values use their default formatting.
func (s *State) String(slot int) string {
	return FormatValue(s.values[slot])
}

// Values returns a copy of every slot value in slot order.
func (s *State) Values() []any {
	out := make([]any, len(s.values))
	copy(out, s.values)
	return out
}

// swap stores v and returns the previous value.
func (s *State) swap(slot int, v any) any {
	old := s.values[slot]
	s.values[slot] = v
	return old
}

// FormatValue formats a slot value for the DOM. nil becomes "".
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
