package labeledinput

import (
	"regexp"
	"testing"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		validator any
		value     any
		wantMsg   string
		wantValid bool
	}{
		{"nil", nil, "x", "", true},
		{"true", true, "x", "", true},
		{"false uses fallback", false, "x", "Invalid", false},
		{"validator passes", MinLength(2, "short"), "ab", "", true},
		{"validator fails", MinLength(3, "short"), "ab", "short", false},
		{"messages joined", All(MinLength(3, "short"), Pattern(regexp.MustCompile(`^\d+$`), "digits only")), "ab", "short, digits only", false},
		{"empty message uses fallback", Validator(func(any) []Violation { return []Violation{{}} }), "x", "Invalid", false},
		{"plain violations func", func(any) []Violation { return nil }, "x", "", true},
		{"string func", func(v any) string { return "nope" }, "x", "nope", false},
		{"string func valid", func(v any) string { return "" }, "x", "", true},
		{"bool func", func(v any) bool { return v == "ok" }, "bad", "Invalid", false},
		{"unknown type is invalid", 42, "x", "Invalid", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := Check(tt.validator, tt.value, "Invalid")
			if msg != tt.wantMsg || ok != tt.wantValid {
				t.Errorf("Check() = %q, %v, want %q, %v", msg, ok, tt.wantMsg, tt.wantValid)
			}
		})
	}
}

func TestRequired(t *testing.T) {
	v := Required("required")
	if len(v("  ")) != 1 {
		t.Error("blank value should fail")
	}
	if len(v(nil)) != 1 {
		t.Error("nil value should fail")
	}
	if len(v("x")) != 0 {
		t.Error("non-empty value should pass")
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{nil, nil},
		{"", nil},
		{"  ", nil},
		{"5", 5.0},
		{" -2.5 ", -2.5},
		{"abc", nil},
		{5, 5.0},
		{int64(9), 9.0},
		{float32(1.5), 1.5},
		{3.25, 3.25},
		{true, nil},
	}
	for _, tt := range tests {
		if got := ToNumber(tt.in); got != tt.want {
			t.Errorf("ToNumber(%#v) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
