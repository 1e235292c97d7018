package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "QUPID_"

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.qupid.yaml",
	"~/.config/qupid/config.yaml",
	"/etc/qupid/config.yaml",
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
	envFiles    []string
	warn        func(format string, args ...interface{})
}

// NewLoader creates a loader searching the standard paths and reading ./.env
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
		envFiles:    []string{".env"},
		warn: func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
		},
	}
}

// WithPaths replaces the search paths
func (l *Loader) WithPaths(paths ...string) *Loader {
	l.configPaths = paths
	return l
}

// WithEnvFiles replaces the dotenv files read before environment overrides
func (l *Loader) WithEnvFiles(files ...string) *Loader {
	l.envFiles = files
	return l
}

// LoadConfig loads configuration with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables, including those from .env
// 3. ./.qupid.yaml
// 4. ~/.config/qupid/config.yaml
// 5. /etc/qupid/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, expandPath(customPath)); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// lowest priority first so later files overwrite earlier ones
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			path := expandPath(l.configPaths[i])
			if !fileExists(path) {
				continue
			}
			if err := l.loadFromFile(config, path); err != nil {
				l.warn("failed to load config from %s: %v", path, err)
			}
		}
	}

	if err := l.loadEnvFiles(); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile decodes a YAML file over config. Keys absent from the file
// keep their current values, so explicit zero values and false are honored.
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() or is a fixed search path
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	next := *config
	if err := yaml.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	*config = next
	return nil
}

// loadEnvFiles exports variables from dotenv files without overriding the real environment
func (l *Loader) loadEnvFiles() error {
	for _, file := range l.envFiles {
		err := godotenv.Load(file)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return fmt.Errorf("failed to load %s: %w", file, err)
	}
	return nil
}

// applyEnvOverrides applies QUPID_* environment variables to the config
func applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// Backend
		"QUPID_BACKEND_ENDPOINT":     func(v string) error { config.Backend.Endpoint = v; return nil },
		"QUPID_BACKEND_ANALYZE_PATH": func(v string) error { config.Backend.AnalyzePath = v; return nil },
		"QUPID_BACKEND_FIELD_NAME":   func(v string) error { config.Backend.FieldName = v; return nil },
		"QUPID_BACKEND_TIMEOUT":      func(v string) error { return parseDuration(v, &config.Backend.Timeout) },
		"QUPID_BACKEND_USER_AGENT":   func(v string) error { config.Backend.UserAgent = v; return nil },

		// Upload
		"QUPID_UPLOAD_RECURSIVE":      func(v string) error { return parseBool(v, &config.Upload.Recursive) },
		"QUPID_UPLOAD_WATCH_DEBOUNCE": func(v string) error { return parseDuration(v, &config.Upload.WatchDebounce) },
		"QUPID_UPLOAD_EXTENSIONS":     func(v string) error { config.Upload.Extensions = splitList(v); return nil },

		// Session
		"QUPID_SESSION_DISCARD_STALE": func(v string) error { return parseBool(v, &config.Session.DiscardStale) },

		// Output
		"QUPID_OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"QUPID_OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"QUPID_OUTPUT_THEME":          func(v string) error { config.Output.Theme = v; return nil },
		"QUPID_OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },
		"QUPID_OUTPUT_NO_EMOJI":       func(v string) error { return parseBool(v, &config.Output.NoEmoji) },
		"QUPID_OUTPUT_PLOT_DIR":       func(v string) error { config.Output.PlotDir = v; return nil },

		// Stub
		"QUPID_STUB_ADDR":            func(v string) error { config.Stub.Addr = v; return nil },
		"QUPID_STUB_FIXTURE":         func(v string) error { config.Stub.Fixture = v; return nil },
		"QUPID_STUB_LATENCY":         func(v string) error { return parseDuration(v, &config.Stub.Latency) },
		"QUPID_STUB_FAIL_WITH":       func(v string) error { config.Stub.FailWith = v; return nil },
		"QUPID_STUB_ALLOWED_ORIGINS": func(v string) error { config.Stub.AllowedOrigins = splitList(v); return nil },
	}

	for envVar, setter := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range GetConfigPaths() {
		if fileExists(path) {
			return path, true
		}
	}
	return "", false
}

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(expandPath(cleanPath))
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/proc/") || strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Type conversion helpers

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		// bare integers are seconds
		secs, intErr := strconv.Atoi(s)
		if intErr != nil {
			return err
		}
		val = time.Duration(secs) * time.Second
	}
	*dst = val
	return nil
}
