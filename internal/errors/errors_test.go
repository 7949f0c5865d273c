package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "scheduling fault",
			code:    "E001",
			wantMsg: "Scheduling fault",
			wantCat: CategoryRuntime,
		},
		{
			name:    "platform error",
			code:    "E004",
			wantMsg: "Unknown element",
			wantCat: CategoryPlatform,
		},
		{
			name:    "config error",
			code:    "E022",
			wantMsg: "Invalid dispatch mode",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	err := New("E002")
	if got, want := err.Error(), "E002: Missing mount target"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := New("E001").Wrap(fmt.Errorf("patch exploded"))
	if got, want := wrapped.Error(), "E001: Scheduling fault: patch exploded"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &Error{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryConfig, "file %q not found", "labeled-input.json")
	if err.Message != `file "labeled-input.json" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryConfig {
		t.Errorf("Category = %q, want %q", err.Category, CategoryConfig)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E001") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	e := New("E001")
	if FromError(e, "E002") != e {
		t.Error("FromError should return *Error as-is")
	}

	std := fmt.Errorf("boom")
	result := FromError(std, "E040")
	if result.Wrapped != std || result.Code != "E040" {
		t.Errorf("standard error should be wrapped under E040, got %+v", result)
	}
}

func TestHasCode(t *testing.T) {
	inner := New("E003")
	outer := fmt.Errorf("setting value: %w", New("E001").Wrap(inner))

	if !HasCode(outer, "E001") {
		t.Error("expected E001 to be found through fmt wrapping")
	}
	if !HasCode(outer, "E003") {
		t.Error("expected nested E003 to be found")
	}
	if HasCode(outer, "E004") {
		t.Error("E004 should not be found")
	}
	if HasCode(nil, "E001") {
		t.Error("nil error has no code")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E002").
		WithLocation("labeled-input.yaml", 4, 0).
		WithSuggestion("Pass a document node as Options.Target")
	out := err.Format()

	for _, want := range []string{
		"ERROR E002: Missing mount target",
		"labeled-input.yaml:4",
		"Hint: Pass a document node as Options.Target",
		"Learn more: " + docBase + "E002",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatCause(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New("E040").Wrap(fmt.Errorf("access denied")).Format()
	if !strings.Contains(out, "Cause: access denied") {
		t.Errorf("Format() missing cause in:\n%s", out)
	}
	if !strings.Contains(out, "[cli]") {
		t.Errorf("Format() missing category in:\n%s", out)
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var b strings.Builder
	Fprint(&b, New("E041"))
	if !strings.Contains(b.String(), "ERROR E041: Missing bucket") {
		t.Errorf("Fprint(*Error) = %q", b.String())
	}

	b.Reset()
	Fprint(&b, fmt.Errorf("plain"))
	if !strings.Contains(b.String(), "ERROR: plain") {
		t.Errorf("Fprint(error) = %q", b.String())
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E021").WithLocation("labeled-input.json", 3, 7).Wrap(fmt.Errorf("unexpected token"))
	want := "labeled-input.json:3:7: E021: Invalid config: unexpected token"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	out := New("E005").FormatJSON()
	for _, want := range []string{`"code":"E005"`, `"category":"platform"`, `"message":"Element already defined"`} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatJSON() missing %s in %s", want, out)
		}
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six seven", 10)
	for _, line := range lines {
		if len(line) > 10 {
			t.Errorf("line %q exceeds width", line)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six seven" {
		t.Errorf("wrapText lost words: %v", lines)
	}
}

func TestAllCodesHaveTemplates(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("registry is empty")
	}
	for _, code := range codes {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("code %s has incomplete template %+v", code, tmpl)
		}
		if !strings.HasSuffix(tmpl.DocURL, code) {
			t.Errorf("code %s has DocURL %q", code, tmpl.DocURL)
		}
	}
}

func TestRegistryCategories(t *testing.T) {
	tests := []struct {
		codes    []string
		category Category
	}{
		{[]string{"E001", "E002", "E003", "E006", "E007", "E008"}, CategoryRuntime},
		{[]string{"E004", "E005", "E010"}, CategoryPlatform},
		{[]string{"E020", "E021", "E022", "E023"}, CategoryConfig},
		{[]string{"E040", "E041", "E060", "E061"}, CategoryCLI},
	}
	seen := make(map[string]bool)
	for _, tt := range tests {
		for _, code := range tt.codes {
			seen[code] = true
			if got := registry[code].Category; got != tt.category {
				t.Errorf("%s category = %q, want %q", code, got, tt.category)
			}
		}
	}
	for code := range registry {
		if !seen[code] {
			t.Errorf("%s is registered but not assigned to a range", code)
		}
	}
}
