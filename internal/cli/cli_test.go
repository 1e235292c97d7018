package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yildizm/qupid/internal/emoji"
	"github.com/yildizm/qupid/internal/formatter"
	"github.com/yildizm/qupid/internal/qupid"
	"github.com/yildizm/qupid/internal/stub"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// execute runs the root command with args and a private config file
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	t.Cleanup(func() { emoji.SetEmojiDisabled(false) })

	notTerminal := stdoutIsTerminal
	stdoutIsTerminal = func() bool { return false }
	t.Cleanup(func() { stdoutIsTerminal = notTerminal })

	cfgPath := filepath.Join(t.TempDir(), "qupid.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("version: \"1.0\"\n"), 0o600))

	root := NewRootCommand("1.2.3", "abc123", "2026-01-01")
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", cfgPath, "--no-emoji"}, args...))

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func screenshotDir(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	for i := 0; i < n; i++ {
		name := filepath.Join(dir, "chat"+string(rune('a'+i))+".png")
		require.NoError(t, os.WriteFile(name, pngHeader, 0o600))
	}
	return dir
}

func stubServer(t *testing.T, opts stub.Options) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(stub.NewRouter(opts))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnalyze_JSONToFile(t *testing.T) {
	srv := stubServer(t, stub.Options{})
	shots := screenshotDir(t, 3)
	outPath := filepath.Join(t.TempDir(), "result.json")
	plotDir := t.TempDir()

	_, stderr, err := execute(t, "analyze", "--no-tui", "-o", "json",
		"--endpoint", srv.URL, "--output-file", outPath, "--save-plot", plotDir, shots)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var out formatter.JSONOutput
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "succeeded", out.Phase)
	assert.Equal(t, "coherent", out.State)
	assert.True(t, out.Coherent)
	require.NotNil(t, out.HealthScore)
	assert.Equal(t, 74.0, *out.HealthScore)
	assert.Len(t, out.Files, 3)
	assert.Nil(t, out.Error)
	assert.NotEmpty(t, out.Report)
	assert.NotEmpty(t, out.Sections)

	plots, err := filepath.Glob(filepath.Join(plotDir, "qupid-plot-*.png"))
	require.NoError(t, err)
	assert.Len(t, plots, 1)
	assert.Contains(t, stderr, "plot saved to")
}

func TestAnalyze_TextToStdout(t *testing.T) {
	srv := stubServer(t, stub.Options{})

	stdout, _, err := execute(t, "analyze", "--no-tui", "--endpoint", srv.URL, screenshotDir(t, 1))
	require.NoError(t, err)
	assert.Contains(t, stdout, "coherent")
	assert.Contains(t, stdout, "74")
}

func TestAnalyze_NoScreenshotsExitCode(t *testing.T) {
	srv := stubServer(t, stub.Options{})

	stdout, _, err := execute(t, "analyze", "--no-tui", "--endpoint", srv.URL, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))
	assert.True(t, qupid.IsKind(err, qupid.KindNoFilesSelected))
	assert.Contains(t, stdout, qupid.MessageNoFiles)
}

func TestAnalyze_ServerFailure(t *testing.T) {
	srv := stubServer(t, stub.Options{FailWith: "quota exceeded"})

	stdout, stderr, err := execute(t, "analyze", "--no-tui", "-o", "json", "--endpoint", srv.URL, screenshotDir(t, 2))
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))

	var out formatter.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "failed", out.Phase)
	require.NotNil(t, out.Error)
	assert.Equal(t, string(qupid.KindServerFailure), out.Error.Kind)
	assert.Equal(t, "quota exceeded", out.Error.Message)
	assert.Empty(t, out.Report)
	assert.Contains(t, stderr, "quota exceeded (status 500)")
}

func TestAnalyze_UnreachableService(t *testing.T) {
	srv := stubServer(t, stub.Options{})
	url := srv.URL
	srv.Close()

	stdout, stderr, err := execute(t, "analyze", "--no-tui", "--endpoint", url, screenshotDir(t, 1))
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
	assert.True(t, qupid.IsKind(err, qupid.KindTransportFailure))

	// the cause goes to stderr, the report only carries the message
	assert.Contains(t, stdout, qupid.MessageUnreachable)
	assert.Contains(t, stderr, qupid.MessageUnreachable+" (")
	assert.Contains(t, stderr, "127.0.0.1")
	assert.Contains(t, stderr, "request id: ")
}

func TestShouldUseTUIMode(t *testing.T) {
	saved := stdoutIsTerminal
	t.Cleanup(func() {
		stdoutIsTerminal = saved
		analyzeNoTUI, outputFmt, verbose, analyzeOutputFile = false, "text", false, ""
	})

	tests := []struct {
		name     string
		noTUI    bool
		format   string
		verbose  bool
		output   string
		terminal bool
		want     bool
	}{
		{"interactive defaults", false, "text", false, "", true, true},
		{"no-tui flag", true, "text", false, "", true, false},
		{"json output", false, "json", false, "", true, false},
		{"verbose", false, "text", true, "", true, false},
		{"output file", false, "text", false, "out.txt", true, false},
		{"piped stdout", false, "text", false, "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzeNoTUI = tt.noTUI
			outputFmt = tt.format
			verbose = tt.verbose
			analyzeOutputFile = tt.output
			terminal := tt.terminal
			stdoutIsTerminal = func() bool { return terminal }

			assert.Equal(t, tt.want, shouldUseTUIMode())
		})
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "qupid 1.2.3 (abc123) built on 2026-01-01")
	assert.Contains(t, stdout, "Go version:")
}

func TestRoot_UnknownTheme(t *testing.T) {
	_, _, err := execute(t, "--theme", "neon", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown theme: neon")
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "qupid.yaml")

	stdout, _, err := execute(t, "config", "init", "--minimal", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Settings written to "+path)
	assert.FileExists(t, path)

	_, _, err = execute(t, "config", "init", "--output", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	stdout, _, err = execute(t, "config", "show", "--config", path, "--format", "json")
	require.NoError(t, err)
	var shown map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &shown))
	assert.Contains(t, shown, "backend")

	stdout, _, err = execute(t, "config", "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Settings are valid")
	assert.Contains(t, stdout, "Analysis service: http://localhost:5000/analyze-run")
	assert.Contains(t, stdout, "up to 10 screenshots")
	assert.Contains(t, stdout, "Overlapping runs: last response wins")

	stdout, _, err = execute(t, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, stdout, "search paths, first match wins")
	assert.Contains(t, stdout, "QUPID_")
}

func TestWriteSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qupid.yaml")
	require.NoError(t, writeSettingsFile(path, "first", false))

	err := writeSettingsFile(path, "second", false)
	require.Error(t, err)
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "first", string(data))

	require.NoError(t, writeSettingsFile(path, "second", true))
	data, readErr = os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "second", string(data))
}

func TestConfigShow_UnsupportedFormat(t *testing.T) {
	_, _, err := execute(t, "config", "show", "--format", "toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 2, ExitCode(&ExitError{Code: 2, Err: qupid.NewNoFilesError()}))
	assert.Equal(t, 1, ExitCode(&ExitError{Code: 0, Err: errors.New("unset code")}))

	exitErr := &ExitError{Code: 1, Err: qupid.NewServerError(500, "down", nil)}
	assert.True(t, errors.Is(exitErr, qupid.ErrServerFailure))
}

func TestHandleOutputDestination(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, handleOutputDestination(&buf, []byte("hello"), ""))
	assert.Equal(t, "hello", buf.String())

	dir := t.TempDir()
	err := handleOutputDestination(&buf, []byte("x"), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")

	path := filepath.Join(dir, "out.txt")
	require.NoError(t, handleOutputDestination(&buf, []byte("saved"), path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "saved", string(data))
}

func TestValidateWatchDirPath(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, validateWatchDirPath(dir))
	assert.Error(t, validateWatchDirPath("  "))
	assert.Error(t, validateWatchDirPath(filepath.Join(dir, "missing")))

	file := filepath.Join(dir, "shot.png")
	require.NoError(t, os.WriteFile(file, pngHeader, 0o600))
	err := validateWatchDirPath(file)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "not a directory"))
}
