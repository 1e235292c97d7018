package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yildizm/qupid/internal/config"
	"github.com/yildizm/qupid/internal/emoji"
	"github.com/yildizm/qupid/internal/formatter"
	"github.com/yildizm/qupid/internal/logger"
	"github.com/yildizm/qupid/internal/monitor"
	"github.com/yildizm/qupid/internal/presentation"
	"github.com/yildizm/qupid/internal/qupid"
	"github.com/yildizm/qupid/internal/session"
	"github.com/yildizm/qupid/internal/ui"
	"github.com/yildizm/qupid/internal/upload"
)

// sessionStack is one selection store, service client and controller
// wired together from configuration
type sessionStack struct {
	cfg        *config.Config
	log        *logger.Logger
	client     *qupid.Client
	store      *upload.Store
	controller *session.Controller
	presenter  *presentation.Model
	metrics    *monitor.Collector
}

func newSessionStack(cfg *config.Config) (*sessionStack, error) {
	log := newLogger("qupid")

	client, err := qupid.New(cfg.ClientConfig(), log)
	if err != nil {
		return nil, fmt.Errorf("invalid backend configuration: %w", err)
	}

	store := upload.NewStore()
	metrics := monitor.New()
	controller := session.New(store, client, nil, session.Options{
		DiscardStale: cfg.Session.DiscardStale,
		Logger:       log,
		Observer:     sessionMetrics{metrics},
	})

	return &sessionStack{
		cfg:        cfg,
		log:        log,
		client:     client,
		store:      store,
		controller: controller,
		presenter:  presentation.NewModel(),
		metrics:    metrics,
	}, nil
}

// sessionMetrics feeds controller events into the collector
type sessionMetrics struct {
	*monitor.Collector
}

func (m sessionMetrics) AttemptBegun(a *session.Attempt) {
	var size int64
	for _, f := range a.Files {
		size += f.Size
	}
	m.RecordSubmission(len(a.Files), size)
}

func (m sessionMetrics) AttemptResolved(out session.Outcome, stale, _ bool) {
	if stale {
		m.RecordSuperseded()
	}
	m.RecordOperation(monitor.OperationSession, out.Elapsed, out.Err)
}

// discover resolves paths to screenshots with the configured options
func (s *sessionStack) discover(paths []string) ([]*upload.File, error) {
	return s.timedScan(func() ([]*upload.File, error) {
		return upload.Discover(paths, s.cfg.DiscoverOptions())
	})()
}

// timedScan records the duration of every call to scan. Finding no
// screenshots counts as a successful scan.
func (s *sessionStack) timedScan(scan func() ([]*upload.File, error)) func() ([]*upload.File, error) {
	return func() ([]*upload.File, error) {
		start := time.Now()
		files, err := scan()
		recorded := err
		if errors.Is(err, upload.ErrNoImages) {
			recorded = nil
		}
		s.metrics.RecordOperation(monitor.OperationScan, time.Since(start), recorded)
		return files, err
	}
}

// finish logs the collected metrics in verbose mode
func (s *sessionStack) finish() {
	if s.log.Verbose() {
		s.metrics.Snapshot().Log(s.log)
	}
}

// selectPaths fills the selection from paths. Finding nothing is not an
// error here; the session reports the empty selection itself.
func (s *sessionStack) selectPaths(paths []string) error {
	files, err := s.discover(paths)
	switch {
	case errors.Is(err, upload.ErrNoImages):
		s.log.Warn("no screenshots found in %s", strings.Join(paths, ", "))
	case err != nil:
		return err
	}

	if dropped := s.store.Select(files); dropped > 0 {
		s.log.Warn("only the first %d screenshots are sent, %d left out", upload.MaxFiles, dropped)
	}
	s.log.DebugWithFields("selection ready", []logger.Field{
		logger.Count(s.store.Count()),
		logger.F("bytes", s.store.TotalSize()),
	})
	return nil
}

// uiOptions returns TUI options bound to this stack
func (s *sessionStack) uiOptions(ctx context.Context) ui.Options {
	return ui.Options{
		Controller: s.controller,
		Store:      s.store,
		Presenter:  s.presenter,
		Endpoint:   s.client.URL(),
		Context:    ctx,
	}
}

// view builds the presentation of the controller's current state
func (s *sessionStack) view() *presentation.View {
	return s.presenter.Build(s.controller.Phase(), s.controller.Result(), s.controller.Err())
}

// writeReport formats the current state and writes it to w
func (s *sessionStack) writeReport(w io.Writer, format string, color bool) error {
	f, err := formatter.New(format, color)
	if err != nil {
		return err
	}

	output, err := f.Format(&formatter.Report{
		View:        s.view(),
		Files:       s.store.Files(),
		Endpoint:    s.client.URL(),
		GeneratedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if _, err := w.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// savePlot writes the decoded plot into dir, if there is one. A plot that
// cannot be decoded is reported and skipped.
func (s *sessionStack) savePlot(dir string, w io.Writer) error {
	if dir == "" {
		return nil
	}

	v := s.view()
	plot := v.DecodedPlot()
	if plot == nil {
		if v.Plot.Error != "" {
			fmt.Fprintf(w, "%s %s\n", emoji.GetEmoji("warning"), v.Plot.Error)
		}
		return nil
	}

	path, err := plot.Save(dir, "qupid-plot-"+time.Now().Format("20060102-150405"))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s plot saved to %s\n", emoji.GetEmoji("chart"), path)
	return nil
}

// writeFailureDetail prints the cause behind a failed session. The formatted
// output only carries the user-facing message.
func (s *sessionStack) writeFailureDetail(w io.Writer) {
	var qe *qupid.Error
	if !errors.As(s.controller.Err(), &qe) || qe.Cause == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", emoji.GetEmoji("info"), qe.Detail())
	if qe.RequestID != "" {
		fmt.Fprintf(w, "   request id: %s\n", qe.RequestID)
	}
}

// sessionExitError converts the controller's final state into the command's exit error
func (s *sessionStack) sessionExitError() error {
	err := s.controller.Err()
	if err == nil {
		return nil
	}
	code := 1
	if qupid.IsKind(err, qupid.KindNoFilesSelected) {
		code = 2
	}
	return &ExitError{Code: code, Err: err}
}

// ExitError is a failure whose message was already shown to the user
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit status for an error returned by a command
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code != 0 {
		return exitErr.Code
	}
	return 1
}

// handleOutputDestination writes output to file or to w
func handleOutputDestination(w io.Writer, output []byte, path string) error {
	if path == "" {
		_, err := w.Write(output)
		return err
	}

	if err := validateOutputFilePath(path); err != nil {
		return fmt.Errorf("invalid output file path: %w", err)
	}
	if err := writeOutputBytesToFile(output, path); err != nil {
		return fmt.Errorf("failed to write output to file: %w", err)
	}
	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Output saved to: %s\n", path)
	}
	return nil
}

func validateOutputFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty file path")
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	return nil
}

// writeOutputBytesToFile writes output to a file with proper error handling
func writeOutputBytesToFile(output []byte, filePath string) error {
	cleanPath := filepath.Clean(filePath)

	file, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", closeErr)
		}
	}()

	if _, err := file.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	// Sync to ensure data is written
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}
	return nil
}
