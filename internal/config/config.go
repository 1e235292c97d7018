package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yildizm/qupid/internal/qupid"
	"github.com/yildizm/qupid/internal/upload"
)

// Config holds the complete application configuration
type Config struct {
	Version string        `yaml:"version" json:"version"`
	Backend BackendConfig `yaml:"backend" json:"backend"`
	Upload  UploadConfig  `yaml:"upload" json:"upload"`
	Session SessionConfig `yaml:"session" json:"session"`
	Output  OutputConfig  `yaml:"output" json:"output"`
	Stub    StubConfig    `yaml:"stub" json:"stub"`
}

// BackendConfig configures the analysis service client
type BackendConfig struct {
	Endpoint    string        `yaml:"endpoint" json:"endpoint"`         // base URL of the service
	AnalyzePath string        `yaml:"analyze_path" json:"analyze_path"` // path of the analyze endpoint
	FieldName   string        `yaml:"field_name" json:"field_name"`     // multipart field for screenshots
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`           // 0 disables the timeout
	UserAgent   string        `yaml:"user_agent" json:"user_agent"`
}

// UploadConfig configures how screenshots are discovered
type UploadConfig struct {
	Extensions    []string      `yaml:"extensions" json:"extensions"`
	Recursive     bool          `yaml:"recursive" json:"recursive"`
	WatchDebounce time.Duration `yaml:"watch_debounce" json:"watch_debounce"`
}

// SessionConfig configures the session controller
type SessionConfig struct {
	// DiscardStale drops results of superseded runs instead of letting the last one to finish win
	DiscardStale bool `yaml:"discard_stale" json:"discard_stale"`
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // text|json|markdown
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Theme         string `yaml:"theme" json:"theme"`                   // qupid|high-contrast|minimal
	Verbose       bool   `yaml:"verbose" json:"verbose"`
	NoEmoji       bool   `yaml:"no_emoji" json:"no_emoji"`
	PlotDir       string `yaml:"plot_dir" json:"plot_dir"` // where decoded plots are saved, empty to skip
}

// StubConfig configures the local stand-in service
type StubConfig struct {
	Addr           string        `yaml:"addr" json:"addr"`
	Fixture        string        `yaml:"fixture" json:"fixture"`
	Latency        time.Duration `yaml:"latency" json:"latency"`
	FailWith       string        `yaml:"fail_with" json:"fail_with"`
	AllowedOrigins []string      `yaml:"allowed_origins" json:"allowed_origins"`
}

// Known enum values
var (
	ValidFormats    = []string{"text", "json", "markdown"}
	ValidColorModes = []string{"auto", "always", "never"}
	ValidThemes     = []string{"qupid", "high-contrast", "minimal"}
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Backend: BackendConfig{
			Endpoint:    qupid.DefaultEndpoint,
			AnalyzePath: qupid.DefaultAnalyzePath,
			FieldName:   qupid.DefaultFieldName,
			Timeout:     qupid.DefaultTimeout,
			UserAgent:   qupid.DefaultUserAgent,
		},
		Upload: UploadConfig{
			Extensions:    append([]string(nil), upload.DefaultExtensions...),
			Recursive:     false,
			WatchDebounce: upload.DefaultDebounce,
		},
		Session: SessionConfig{
			DiscardStale: false,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Theme:         "qupid",
		},
		Stub: StubConfig{
			Addr:           "127.0.0.1:5000",
			AllowedOrigins: []string{"*"},
		},
	}
}

// ClientConfig converts the backend section for the service client
func (c *Config) ClientConfig() *qupid.Config {
	return &qupid.Config{
		Endpoint:    c.Backend.Endpoint,
		AnalyzePath: c.Backend.AnalyzePath,
		FieldName:   c.Backend.FieldName,
		Timeout:     c.Backend.Timeout,
		UserAgent:   c.Backend.UserAgent,
	}
}

// DiscoverOptions converts the upload section for the picker
func (c *Config) DiscoverOptions() upload.DiscoverOptions {
	return upload.DiscoverOptions{
		Extensions: append([]string(nil), c.Upload.Extensions...),
		Recursive:  c.Upload.Recursive,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateBackendConfig(); err != nil {
		return err
	}
	if err := c.validateUploadConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if err := c.validateStubConfig(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBackendConfig() error {
	if err := c.ClientConfig().Validate(); err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	return nil
}

func (c *Config) validateUploadConfig() error {
	if len(c.Upload.Extensions) == 0 {
		return fmt.Errorf("upload: at least one extension is required")
	}
	for _, ext := range c.Upload.Extensions {
		if _, err := upload.MediaTypeFor("file." + strings.TrimPrefix(ext, ".")); err != nil {
			return fmt.Errorf("upload: unsupported extension %q (must be one of: %s)", ext, strings.Join(upload.DefaultExtensions, ", "))
		}
	}
	if c.Upload.WatchDebounce < 0 {
		return fmt.Errorf("upload: watch_debounce must be non-negative")
	}
	return nil
}

func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" && !contains(ValidFormats, c.Output.DefaultFormat) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.DefaultFormat, strings.Join(ValidFormats, ", "))
	}
	if c.Output.ColorMode != "" && !contains(ValidColorModes, c.Output.ColorMode) {
		return fmt.Errorf("invalid color mode: %s (must be one of: %s)", c.Output.ColorMode, strings.Join(ValidColorModes, ", "))
	}
	if c.Output.Theme != "" && !contains(ValidThemes, c.Output.Theme) {
		return fmt.Errorf("invalid theme: %s (must be one of: %s)", c.Output.Theme, strings.Join(ValidThemes, ", "))
	}
	return nil
}

func (c *Config) validateStubConfig() error {
	if c.Stub.Addr == "" {
		return fmt.Errorf("stub: addr is required")
	}
	if c.Stub.Latency < 0 {
		return fmt.Errorf("stub: latency must be non-negative")
	}
	for _, origin := range c.Stub.AllowedOrigins {
		if origin == "*" {
			continue
		}
		if u, err := url.Parse(origin); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("stub: invalid allowed origin %q", origin)
		}
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
