package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Backend.Endpoint != "http://localhost:5000" {
		t.Errorf("Expected default endpoint http://localhost:5000, got %s", cfg.Backend.Endpoint)
	}
	if cfg.Backend.AnalyzePath != "/analyze-run" {
		t.Errorf("Expected default analyze path /analyze-run, got %s", cfg.Backend.AnalyzePath)
	}
	if cfg.Backend.FieldName != "files" {
		t.Errorf("Expected default field name files, got %s", cfg.Backend.FieldName)
	}
	if cfg.Backend.Timeout != 120*time.Second {
		t.Errorf("Expected default timeout 120s, got %v", cfg.Backend.Timeout)
	}
	if cfg.Session.DiscardStale {
		t.Error("Expected discard_stale to default to false")
	}
	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("Expected default output format text, got %s", cfg.Output.DefaultFormat)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid, got %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid default", func(*Config) {}, ""},
		{"zero timeout allowed", func(c *Config) { c.Backend.Timeout = 0 }, ""},
		{"negative timeout", func(c *Config) { c.Backend.Timeout = -time.Second }, "timeout"},
		{"bad endpoint", func(c *Config) { c.Backend.Endpoint = "localhost:5000" }, "backend"},
		{"bad analyze path", func(c *Config) { c.Backend.AnalyzePath = "analyze" }, "analyze path"},
		{"unsupported extension", func(c *Config) { c.Upload.Extensions = []string{".gif"} }, "unsupported extension"},
		{"no extensions", func(c *Config) { c.Upload.Extensions = nil }, "at least one extension"},
		{"extension without dot", func(c *Config) { c.Upload.Extensions = []string{"png"} }, ""},
		{"invalid format", func(c *Config) { c.Output.DefaultFormat = "csv" }, "invalid output format"},
		{"invalid color mode", func(c *Config) { c.Output.ColorMode = "sometimes" }, "invalid color mode"},
		{"invalid theme", func(c *Config) { c.Output.Theme = "neon" }, "invalid theme"},
		{"empty stub addr", func(c *Config) { c.Stub.Addr = "" }, "addr"},
		{"negative latency", func(c *Config) { c.Stub.Latency = -1 }, "latency"},
		{"bad origin", func(c *Config) { c.Stub.AllowedOrigins = []string{"not a url"} }, "allowed origin"},
		{"good origin", func(c *Config) { c.Stub.AllowedOrigins = []string{"http://localhost:5173"} }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestClientConfigAndDiscoverOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend.Endpoint = "https://qupid.example.com"
	cfg.Backend.Timeout = 5 * time.Second
	cfg.Upload.Recursive = true

	client := cfg.ClientConfig()
	if client.Endpoint != "https://qupid.example.com" || client.Timeout != 5*time.Second {
		t.Errorf("Unexpected client config: %+v", client)
	}

	opts := cfg.DiscoverOptions()
	if !opts.Recursive || len(opts.Extensions) != 3 {
		t.Errorf("Unexpected discover options: %+v", opts)
	}
	opts.Extensions[0] = ".bmp"
	if cfg.Upload.Extensions[0] != ".png" {
		t.Error("DiscoverOptions should not share the extension slice")
	}
}

func TestSampleConfigsParse(t *testing.T) {
	for name, content := range map[string]string{
		"full":    SampleConfig(),
		"minimal": MinimalSampleConfig(),
	} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
				t.Fatalf("Sample config does not parse: %v", err)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("Sample config is invalid: %v", err)
			}
			if cfg.Backend.Timeout != 120*time.Second {
				t.Errorf("Expected sample timeout 120s, got %v", cfg.Backend.Timeout)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~/config.yaml", filepath.Join(home, "config.yaml")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"~", "~"},
	}

	for _, tt := range tests {
		if got := expandPath(tt.input); got != tt.expected {
			t.Errorf("expandPath(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := GetConfigPaths()
	if len(paths) != len(ConfigPaths) {
		t.Fatalf("Expected %d paths, got %d", len(ConfigPaths), len(paths))
	}
	for _, p := range paths {
		if strings.HasPrefix(p, "~") {
			t.Errorf("Path %s was not expanded", p)
		}
	}
}
