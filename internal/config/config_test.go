package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/labeled-input/internal/errors"
	"github.com/vango-dev/labeled-input/pkg/host"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Tag != DefaultTag {
		t.Errorf("Tag = %q, want %q", cfg.Tag, DefaultTag)
	}
	if !cfg.ShadowEnabled() {
		t.Error("ShadowEnabled() = false, want true")
	}
	if cfg.DispatchMode() != host.DispatchComposed {
		t.Errorf("DispatchMode() = %v, want composed", cfg.DispatchMode())
	}
	if cfg.Preview.Port != DefaultPort {
		t.Errorf("Preview.Port = %d, want %d", cfg.Preview.Port, DefaultPort)
	}
	if cfg.Publish.Output != DefaultOutput {
		t.Errorf("Publish.Output = %q, want %q", cfg.Publish.Output, DefaultOutput)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if !errors.HasCode(err, "E020") {
		t.Fatalf("Load() error = %v, want E020", err)
	}

	configJSON := `{
  "tag": "app-field",
  "dispatch": "bus",
  "attributes": {"name": "email", "label": "Email"},
  "preview": {"port": 8080},
  "publish": {"bucket": "widgets", "prefix": "/fields/"}
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Tag != "app-field" {
		t.Errorf("Tag = %q, want %q", cfg.Tag, "app-field")
	}
	if cfg.DispatchMode() != host.DispatchBus {
		t.Errorf("DispatchMode() = %v, want bus", cfg.DispatchMode())
	}
	if cfg.Attributes["label"] != "Email" {
		t.Errorf("Attributes[label] = %q, want Email", cfg.Attributes["label"])
	}
	if cfg.Preview.Port != 8080 {
		t.Errorf("Preview.Port = %d, want 8080", cfg.Preview.Port)
	}
	if cfg.Preview.Host != DefaultHost {
		t.Errorf("Preview.Host = %q, want %q", cfg.Preview.Host, DefaultHost)
	}
	if cfg.Publish.Prefix != "fields" {
		t.Errorf("Publish.Prefix = %q, want fields", cfg.Publish.Prefix)
	}
	if cfg.Publish.Region != DefaultRegion {
		t.Errorf("Publish.Region = %q, want %q", cfg.Publish.Region, DefaultRegion)
	}
	if !cfg.ShadowEnabled() {
		t.Error("absent shadow should default to true")
	}
}

func TestLoad_YAML(t *testing.T) {
	tmpDir := t.TempDir()
	configYAML := `tag: pw-field
shadow: false
dispatch: bus
log:
  level: debug
  format: json
publish:
  bucket: widgets
`
	if err := os.WriteFile(filepath.Join(tmpDir, YAMLConfigFileName), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Tag != "pw-field" {
		t.Errorf("Tag = %q, want pw-field", cfg.Tag)
	}
	if cfg.ShadowEnabled() {
		t.Error("ShadowEnabled() = true, want false")
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want debug/json", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestLoad_PrefersJSON(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(`{"tag": "json-field"}`), 0644)
	os.WriteFile(filepath.Join(tmpDir, YAMLConfigFileName), []byte("tag: yaml-field\n"), 0644)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Tag != "json-field" {
		t.Errorf("Tag = %q, want json-field", cfg.Tag)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json", ConfigFileName, "not valid json"},
		{"yaml", YAMLConfigFileName, "tag: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFile(path)
			if !errors.HasCode(err, "E021") {
				t.Errorf("LoadFile() error = %v, want E021", err)
			}
		})
	}
}

func TestSave(t *testing.T) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		t.Run(name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), name)

			cfg := New()
			cfg.Preview.Port = 9000
			cfg.Attributes = map[string]string{"type": "number"}

			// Save should fail without configPath set
			if err := cfg.Save(); err == nil {
				t.Error("Expected error when saving without path")
			}

			if err := cfg.SaveTo(configPath); err != nil {
				t.Fatalf("SaveTo error: %v", err)
			}

			loaded, err := LoadFile(configPath)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if loaded.Preview.Port != 9000 {
				t.Errorf("Preview.Port = %d, want 9000", loaded.Preview.Port)
			}
			if loaded.Attributes["type"] != "number" {
				t.Errorf("Attributes[type] = %q, want number", loaded.Attributes["type"])
			}

			loaded.Preview.Port = 9001
			if err := loaded.Save(); err != nil {
				t.Fatalf("Save error: %v", err)
			}
			reloaded, err := LoadFile(configPath)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if reloaded.Preview.Port != 9001 {
				t.Errorf("Preview.Port = %d, want 9001", reloaded.Preview.Port)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	noShadow := false
	tests := []struct {
		name   string
		modify func(*Config)
		code   string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad tag", func(c *Config) { c.Tag = "field" }, "E010"},
		{"bad dispatch", func(c *Config) { c.Dispatch = "broadcast" }, "E022"},
		{"composed without shadow", func(c *Config) { c.Shadow = &noShadow }, "E022"},
		{"bus without shadow", func(c *Config) { c.Shadow = &noShadow; c.Dispatch = "bus" }, ""},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "E023"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "E021"},
		{"negative port", func(c *Config) { c.Preview.Port = -1 }, "E021"},
		{"port too large", func(c *Config) { c.Preview.Port = 70000 }, "E021"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.code == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.HasCode(err, tt.code) {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestPreviewAddress(t *testing.T) {
	cfg := New()
	cfg.Preview.Host = "0.0.0.0"
	cfg.Preview.Port = 8080

	if got := cfg.PreviewAddress(); got != "0.0.0.0:8080" {
		t.Errorf("PreviewAddress = %q, want %q", got, "0.0.0.0:8080")
	}
	if got := cfg.PreviewURL(); got != "http://0.0.0.0:8080" {
		t.Errorf("PreviewURL = %q", got)
	}
}

func TestPaths(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(configPath, []byte(`{"style": "field.css"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "field.css"), []byte(".field{}"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.OutputPath(); got != filepath.Join(tmpDir, "dist") {
		t.Errorf("OutputPath = %q", got)
	}
	if got := cfg.StylePath(); got != filepath.Join(tmpDir, "field.css") {
		t.Errorf("StylePath = %q", got)
	}
	style, err := cfg.LoadStyle()
	if err != nil || style != ".field{}" {
		t.Errorf("LoadStyle() = %q, %v", style, err)
	}

	cfg.Style = "missing.css"
	if _, err := cfg.LoadStyle(); !errors.HasCode(err, "E021") {
		t.Errorf("LoadStyle() error = %v, want E021", err)
	}

	if style, err := New().LoadStyle(); style != "" || err != nil {
		t.Errorf("LoadStyle() without style = %q, %v", style, err)
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"debug", "INFO", "", "warn", "warning", "error"} {
		if _, err := ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q) error: %v", s, err)
		}
	}
	if _, err := ParseLevel("trace"); !errors.HasCode(err, "E023") {
		t.Errorf("ParseLevel(trace) error = %v, want E023", err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "field", "email")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "shown" || entry["field"] != "email" {
		t.Errorf("entry = %v", entry)
	}

	buf.Reset()
	LogConfig{Format: "text"}.NewLogger(&buf).Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text output = %q", buf.String())
	}
}

func TestFindProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := FindProjectRoot(nested); !errors.HasCode(err, "E020") {
		t.Errorf("FindProjectRoot() error = %v, want E020", err)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, YAMLConfigFileName), []byte("tag: a-b\n"), 0644); err != nil {
		t.Fatal(err)
	}
	root, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot() error: %v", err)
	}
	want, _ := filepath.Abs(tmpDir)
	if root != want {
		t.Errorf("FindProjectRoot() = %q, want %q", root, want)
	}
	if !Exists(tmpDir) || Exists(nested) {
		t.Error("Exists() reported wrong result")
	}
}
