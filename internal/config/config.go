package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/labeled-input/internal/errors"
	"github.com/vango-dev/labeled-input/pkg/host"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "labeled-input.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "labeled-input.yaml"

	// DefaultTag is the default custom element tag.
	DefaultTag = "labeled-input"

	// DefaultPort is the default preview server port.
	DefaultPort = 4600

	// DefaultHost is the default preview server host.
	DefaultHost = "localhost"

	// DefaultOutput is the default bundle output directory.
	DefaultOutput = "dist"

	// DefaultRegion is the default publish region.
	DefaultRegion = "us-east-1"
)

// configFileNames are tried in order by Load.
var configFileNames = []string{ConfigFileName, YAMLConfigFileName, "labeled-input.yml"}

// Config represents the labeled-input.json or labeled-input.yaml file.
type Config struct {
	// Tag is the custom element tag the field is defined under.
	Tag string `json:"tag,omitempty" yaml:"tag,omitempty"`

	// Shadow renders the field into a shadow root (default: true).
	Shadow *bool `json:"shadow,omitempty" yaml:"shadow,omitempty"`

	// Dispatch is the event delivery mode: "bus" or "composed".
	// Default: "composed"
	Dispatch string `json:"dispatch,omitempty" yaml:"dispatch,omitempty"`

	// Style is the path of a style sheet that replaces the built-in one.
	Style string `json:"style,omitempty" yaml:"style,omitempty"`

	// Attributes are the initial attributes of rendered fields.
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	// Preview contains preview server configuration.
	Preview PreviewConfig `json:"preview,omitempty" yaml:"preview,omitempty"`

	// Publish contains bundle publishing configuration.
	Publish PublishConfig `json:"publish,omitempty" yaml:"publish,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default: info).
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is "text" or "json" (default: text).
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// PreviewConfig contains preview server settings.
type PreviewConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`
}

// PublishConfig contains bundle publishing settings.
type PublishConfig struct {
	// Output is the local directory the bundle is written to.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	// Bucket is the destination bucket.
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`

	// Prefix is prepended to every object key.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// Region is the bucket region.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	shadow := true
	return &Config{
		Tag:      DefaultTag,
		Shadow:   &shadow,
		Dispatch: host.DispatchComposed.String(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Preview: PreviewConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Publish: PublishConfig{
			Output: DefaultOutput,
			Region: DefaultRegion,
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// labeled-input.json, then labeled-input.yaml, then labeled-input.yml.
func Load(dir string) (*Config, error) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E020").
		WithDetail("No labeled-input.json or labeled-input.yaml found in " + dir).
		WithSuggestion("Run 'labeled-input init' to write a default config")
}

// LoadFile reads configuration from the specified file path. Files ending
// in .yaml or .yml are parsed as YAML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E020").
				WithDetail("No config file at " + path)
		}
		return nil, errors.New("E021").Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("E021").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid YAML")
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E021").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as YAML or JSON
// depending on the extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E021").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E021").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Tag == "" {
		c.Tag = DefaultTag
	}
	if c.Shadow == nil {
		shadow := true
		c.Shadow = &shadow
	}
	if c.Dispatch == "" {
		c.Dispatch = host.DispatchComposed.String()
	}
	c.Dispatch = strings.ToLower(strings.TrimSpace(c.Dispatch))

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Preview.Host == "" {
		c.Preview.Host = DefaultHost
	}
	if c.Preview.Port == 0 {
		c.Preview.Port = DefaultPort
	}

	if c.Publish.Output == "" {
		c.Publish.Output = DefaultOutput
	}
	if c.Publish.Region == "" {
		c.Publish.Region = DefaultRegion
	}
	c.Publish.Prefix = strings.Trim(c.Publish.Prefix, "/")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !host.ValidTag(c.Tag) {
		return errors.New("E010").
			WithDetail(fmt.Sprintf("tag %q is not a valid custom element name", c.Tag))
	}
	mode, err := host.ParseDispatchMode(c.Dispatch)
	if err != nil {
		return err
	}
	if mode == host.DispatchComposed && !c.ShadowEnabled() {
		return errors.New("E022").
			WithDetail("composed dispatch needs shadow: true").
			WithSuggestion(`Set dispatch to "bus" or enable shadow`)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E021").
			WithDetail(fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.Preview.Port < 0 || c.Preview.Port > 65535 {
		return errors.New("E021").
			WithDetail("preview.port must be between 0 and 65535")
	}
	return nil
}

// ShadowEnabled reports whether fields render into a shadow root.
func (c *Config) ShadowEnabled() bool {
	return c.Shadow == nil || *c.Shadow
}

// DispatchMode returns the parsed dispatch mode. Call Validate first.
func (c *Config) DispatchMode() host.DispatchMode {
	mode, _ := host.ParseDispatchMode(c.Dispatch)
	return mode
}

// PreviewAddress returns the address string for the preview server.
func (c *Config) PreviewAddress() string {
	return c.Preview.Host + ":" + strconv.Itoa(c.Preview.Port)
}

// PreviewURL returns the full URL for the preview server.
func (c *Config) PreviewURL() string {
	return "http://" + c.PreviewAddress()
}

// OutputPath returns the absolute path to the bundle output directory.
func (c *Config) OutputPath() string {
	return c.resolve(c.Publish.Output)
}

// StylePath returns the path of the replacement style sheet, or "" when
// the built-in style is used.
func (c *Config) StylePath() string {
	if c.Style == "" {
		return ""
	}
	return c.resolve(c.Style)
}

// LoadStyle reads the replacement style sheet. It returns "" when none is
// configured.
func (c *Config) LoadStyle() (string, error) {
	path := c.StylePath()
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.New("E021").
			WithDetail("Failed to read style sheet " + path).
			Wrap(err)
	}
	return string(data), nil
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// ParseLevel converts a log level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, errors.New("E023").WithDetail(fmt.Sprintf("unknown log level %q", s))
}

// NewLogger returns a logger writing to w in the configured format at the
// configured level.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(l.Level)
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range configFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a config file, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E020").
				WithDetail("No labeled-input config found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'labeled-input init' to write a default config")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or its nearest parent that has a config file.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
