package labeledinput

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vango-dev/labeled-input/pkg/dom"
	"github.com/vango-dev/labeled-input/pkg/runtime"
)

// Violation is one reason a value is invalid.
type Violation struct {
	Message string `json:"message"`
}

// Validator checks a value. An empty result means the value is valid.
type Validator func(value any) []Violation

// Message adapts a validator that reports a single message. An empty
// message means valid.
func Message(fn func(value any) string) Validator {
	return func(value any) []Violation {
		if msg := fn(value); msg != "" {
			return []Violation{{Message: msg}}
		}
		return nil
	}
}

// MinLength fails values shorter than n characters.
func MinLength(n int, msg string) Validator {
	return func(value any) []Violation {
		if utf8.RuneCountInString(runtime.FormatValue(value)) < n {
			return []Violation{{Message: msg}}
		}
		return nil
	}
}

// Required fails empty values.
func Required(msg string) Validator {
	return func(value any) []Violation {
		if strings.TrimSpace(runtime.FormatValue(value)) == "" {
			return []Violation{{Message: msg}}
		}
		return nil
	}
}

// Pattern fails values that do not match re.
func Pattern(re *regexp.Regexp, msg string) Validator {
	return func(value any) []Violation {
		if !re.MatchString(runtime.FormatValue(value)) {
			return []Violation{{Message: msg}}
		}
		return nil
	}
}

// All runs every validator and collects their violations.
func All(validators ...Validator) Validator {
	return func(value any) []Violation {
		var out []Violation
		for _, v := range validators {
			out = append(out, v(value)...)
		}
		return out
	}
}

// Check runs validator against value. It returns the message to show and
// whether the value is valid. Violation messages are joined with ", ";
// when a validator fails without a message, fallback is used.
//
// Accepted validators: nil or true (always valid), false (always invalid),
// Validator, func(any) []Violation, func(any) string and func(any) bool.
// Any other value is invalid.
func Check(validator, value any, fallback string) (string, bool) {
	var violations []Violation
	switch v := validator.(type) {
	case nil:
		return "", true
	case bool:
		if v {
			return "", true
		}
		return fallback, false
	case Validator:
		violations = v(value)
	case func(any) []Violation:
		violations = v(value)
	case func(any) string:
		violations = Message(v)(value)
	case func(any) bool:
		if v(value) {
			return "", true
		}
		return fallback, false
	default:
		return fallback, false
	}

	if len(violations) == 0 {
		return "", true
	}
	msgs := make([]string, 0, len(violations))
	for _, viol := range violations {
		if viol.Message != "" {
			msgs = append(msgs, viol.Message)
		}
	}
	if len(msgs) == 0 {
		return fallback, false
	}
	return strings.Join(msgs, ", "), false
}

// validate updates the error slot and raises an error event on failure.
func validate(inst *runtime.Instance, source *dom.Node) bool {
	state := inst.State()
	msg, ok := Check(state.Get(slotValidator), state.Get(slotValue), state.String(slotErrorMessage))
	if ok {
		inst.Invalidate(slotError, "")
		return true
	}
	inst.Invalidate(slotError, msg)
	inst.Dispatch(source, "error", msg, false)
	return false
}

// ToNumber converts a numeric field value. Empty input means no number and
// yields nil, as does text that does not parse.
func ToNumber(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint64:
		return float64(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return f
	case fmt.Stringer:
		return ToNumber(x.String())
	}
	return nil
}
