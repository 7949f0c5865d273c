package runtime

import (
	"math"
	"testing"
)

func TestSafeNotEqual(t *testing.T) {
	type point struct{ X, Y int }
	m := map[string]int{"a": 1}
	s := []int{1}
	p := &point{}

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal strings", "a", "a", false},
		{"different strings", "a", "b", true},
		{"nil and nil", nil, nil, false},
		{"nil and empty", nil, "", true},
		{"NaN and NaN", math.NaN(), math.NaN(), false},
		{"NaN and number", math.NaN(), 1.0, true},
		{"same map", m, m, true},
		{"same slice", s, s, true},
		{"same pointer", p, p, true},
		{"same struct", point{1, 2}, point{1, 2}, true},
		{"int and float", 5, 5.0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeNotEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("SafeNotEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestNotEqualIdentity(t *testing.T) {
	p := &struct{}{}
	if NotEqual(p, p) {
		t.Error("identical pointers should be equal")
	}
	if !NotEqual([]int{1}, []int{1}) {
		t.Error("uncomparable values should count as changed")
	}
	if NotEqual(math.NaN(), math.NaN()) {
		t.Error("NaN should equal NaN")
	}
}

func TestStateSlots(t *testing.T) {
	s := NewState([]string{"value", "type", "name"})
	if s.Len() != 3 {
		t.Fatalf("Len() = %d", s.Len())
	}
	if i, ok := s.Index("type"); !ok || i != 1 {
		t.Errorf("Index(type) = %d, %v", i, ok)
	}
	if _, ok := s.Index("missing"); ok {
		t.Error("Index should miss unknown names")
	}

	if old := s.swap(0, 5.0); old != nil {
		t.Errorf("swap returned %v, want nil", old)
	}
	if got := s.String(0); got != "5" {
		t.Errorf("String(0) = %q, want %q", got, "5")
	}
	if got := s.String(2); got != "" {
		t.Errorf("String of nil slot = %q, want empty", got)
	}
	if s.Name(2) != "name" {
		t.Errorf("Name(2) = %q", s.Name(2))
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{2.5, "2.5"},
		{10.0, "10"},
		{true, "true"},
		{7, "7"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
