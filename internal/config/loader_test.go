package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolatedLoader searches only paths inside a temp dir and reads no dotenv file
func isolatedLoader(t *testing.T, paths ...string) *Loader {
	t.Helper()
	l := NewLoader().WithPaths(paths...).WithEnvFiles()
	l.warn = func(format string, args ...interface{}) { t.Logf(format, args...) }
	return l
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if len(loader.configPaths) != 3 {
		t.Errorf("Expected 3 config paths, got %d", len(loader.configPaths))
	}
	if len(loader.envFiles) != 1 || loader.envFiles[0] != ".env" {
		t.Errorf("Expected .env to be read, got %v", loader.envFiles)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := isolatedLoader(t, filepath.Join(t.TempDir(), "missing.yaml")).LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}
	if cfg.Backend.Endpoint != "http://localhost:5000" {
		t.Errorf("Expected default endpoint, got %s", cfg.Backend.Endpoint)
	}
}

func TestLoadConfigExample(t *testing.T) {
	path, err := filepath.Abs(filepath.Join("..", "..", "examples", "qupid.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := isolatedLoader(t).LoadConfig(path)
	if err != nil {
		t.Fatalf("Example config does not load: %v", err)
	}
	if cfg.Stub.Latency != 1500*time.Millisecond {
		t.Errorf("Expected stub latency 1.5s, got %v", cfg.Stub.Latency)
	}
	if cfg.Output.PlotDir != "./plots" {
		t.Errorf("Expected plot_dir ./plots, got %q", cfg.Output.PlotDir)
	}
	if cfg.Upload.WatchDebounce != 500*time.Millisecond {
		t.Errorf("Expected watch_debounce 500ms, got %v", cfg.Upload.WatchDebounce)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "qupid.yaml", `version: "1.0"
backend:
  endpoint: https://qupid.example.com
  timeout: 0s
session:
  discard_stale: true
output:
  default_format: json
  verbose: true
`)

	cfg, err := isolatedLoader(t).LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Backend.Endpoint != "https://qupid.example.com" {
		t.Errorf("Expected endpoint from file, got %s", cfg.Backend.Endpoint)
	}
	if cfg.Backend.Timeout != 0 {
		t.Errorf("Expected explicit zero timeout to be kept, got %v", cfg.Backend.Timeout)
	}
	if !cfg.Session.DiscardStale {
		t.Error("Expected discard_stale from file")
	}
	if cfg.Output.DefaultFormat != "json" || !cfg.Output.Verbose {
		t.Errorf("Unexpected output section: %+v", cfg.Output)
	}
	if cfg.Backend.AnalyzePath != "/analyze-run" {
		t.Errorf("Expected unset keys to keep defaults, got %s", cfg.Backend.AnalyzePath)
	}
}

func TestLoadConfigPriority(t *testing.T) {
	dir := t.TempDir()
	high := writeFile(t, dir, "high.yaml", "output:\n  theme: minimal\n")
	low := writeFile(t, dir, "low.yaml", "output:\n  theme: high-contrast\n  default_format: markdown\n")

	cfg, err := isolatedLoader(t, high, low).LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Output.Theme != "minimal" {
		t.Errorf("Expected higher priority theme minimal, got %s", cfg.Output.Theme)
	}
	if cfg.Output.DefaultFormat != "markdown" {
		t.Errorf("Expected lower priority format to survive, got %s", cfg.Output.DefaultFormat)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "backend: [unclosed\n")

	if _, err := isolatedLoader(t).LoadConfig(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadConfigInvalidValues(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "output:\n  default_format: csv\n")

	_, err := isolatedLoader(t).LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("QUPID_BACKEND_ENDPOINT", "http://10.0.0.2:8080")
	t.Setenv("QUPID_BACKEND_TIMEOUT", "45")
	t.Setenv("QUPID_SESSION_DISCARD_STALE", "true")
	t.Setenv("QUPID_OUTPUT_THEME", "high-contrast")
	t.Setenv("QUPID_UPLOAD_EXTENSIONS", ".png, .jpg")
	t.Setenv("QUPID_STUB_LATENCY", "250ms")

	cfg := DefaultConfig()
	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("Failed to apply overrides: %v", err)
	}

	if cfg.Backend.Endpoint != "http://10.0.0.2:8080" {
		t.Errorf("Expected endpoint override, got %s", cfg.Backend.Endpoint)
	}
	if cfg.Backend.Timeout != 45*time.Second {
		t.Errorf("Expected bare seconds to parse, got %v", cfg.Backend.Timeout)
	}
	if !cfg.Session.DiscardStale {
		t.Error("Expected discard_stale override")
	}
	if cfg.Output.Theme != "high-contrast" {
		t.Errorf("Expected theme override, got %s", cfg.Output.Theme)
	}
	if len(cfg.Upload.Extensions) != 2 || cfg.Upload.Extensions[1] != ".jpg" {
		t.Errorf("Expected extension list override, got %v", cfg.Upload.Extensions)
	}
	if cfg.Stub.Latency != 250*time.Millisecond {
		t.Errorf("Expected latency override, got %v", cfg.Stub.Latency)
	}
}

func TestApplyEnvOverridesInvalidValues(t *testing.T) {
	tests := []struct {
		envVar string
		value  string
	}{
		{"QUPID_BACKEND_TIMEOUT", "soon"},
		{"QUPID_SESSION_DISCARD_STALE", "maybe"},
		{"QUPID_STUB_LATENCY", "fast"},
	}

	for _, tt := range tests {
		t.Run(tt.envVar, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)
			err := applyEnvOverrides(DefaultConfig())
			if err == nil || !strings.Contains(err.Error(), tt.envVar) {
				t.Errorf("Expected error naming %s, got %v", tt.envVar, err)
			}
		})
	}
}

func TestLoadConfigDotEnv(t *testing.T) {
	const key = "QUPID_BACKEND_USER_AGENT"
	if _, set := os.LookupEnv(key); set {
		t.Skipf("%s already set in environment", key)
	}
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	envFile := writeFile(t, t.TempDir(), ".env", key+"=qupid-test/1.0\n")

	cfg, err := NewLoader().WithPaths().WithEnvFiles(envFile, filepath.Join(t.TempDir(), "absent.env")).LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Backend.UserAgent != "qupid-test/1.0" {
		t.Errorf("Expected user agent from .env, got %s", cfg.Backend.UserAgent)
	}
}

func TestParseDuration(t *testing.T) {
	var d time.Duration
	if err := parseDuration("1m30s", &d); err != nil || d != 90*time.Second {
		t.Errorf("Expected 90s, got %v (err %v)", d, err)
	}
	if err := parseDuration("0", &d); err != nil || d != 0 {
		t.Errorf("Expected 0, got %v (err %v)", d, err)
	}
	if err := parseDuration("later", &d); err == nil {
		t.Error("Expected error for invalid duration")
	}
}

func TestParseBool(t *testing.T) {
	var b bool
	if err := parseBool("1", &b); err != nil || !b {
		t.Errorf("Expected true, got %v (err %v)", b, err)
	}
	if err := parseBool("nope", &b); err == nil {
		t.Error("Expected error for invalid bool")
	}
}

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"config.yaml", false},
		{"config.yml", false},
		{"/tmp/qupid.yaml", false},
		{"../config.yaml", true},
		{"config.json", true},
		{"/proc/self/environ.yaml", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfigPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	path, found := FindConfigFile()
	if found && !fileExists(path) {
		t.Errorf("FindConfigFile reported %s which does not exist", path)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b ,c")
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("Unexpected split result %v", got)
	}
}
