package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yildizm/qupid/internal/emoji"
	"github.com/yildizm/qupid/internal/logger"
	"github.com/yildizm/qupid/internal/session"
	"github.com/yildizm/qupid/internal/ui"
	"github.com/yildizm/qupid/internal/upload"
)

var (
	watchAutoRun  bool
	watchNoTUI    bool
	watchEndpoint string
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Follow a screenshot directory",
		Long: `Keep the selection in sync with a screenshot directory.

Uses file system notifications to notice new, changed or removed screenshots
and reselects the newest ones. With --auto-run a session starts whenever the
selection changes and no run is in flight. Press Ctrl+C to stop watching.

Examples:
  qupid watch ~/Pictures/Screenshots
  qupid watch --auto-run --no-tui -o json ./shots`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().BoolVar(&watchAutoRun, "auto-run", false, "start a session whenever the selection changes")
	cmd.Flags().BoolVar(&watchNoTUI, "no-tui", false, "print selection changes and results instead of the terminal UI")
	cmd.Flags().StringVar(&watchEndpoint, "endpoint", "", "analysis service base URL (default from config)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	if err := validateWatchDirPath(dir); err != nil {
		return fmt.Errorf("invalid directory: %w", err)
	}

	cfg := GetGlobalConfig()
	if cmd.Flag("endpoint").Changed {
		cfg.Backend.Endpoint = watchEndpoint
	}

	stack, err := newSessionStack(cfg)
	if err != nil {
		return err
	}
	defer stack.finish()

	watcher, err := upload.NewWatcher(dir, cfg.DiscoverOptions(), stack.log)
	if err != nil {
		return err
	}
	defer cleanupWatcher(watcher, stack.log)
	watcher.SetDebounce(cfg.Upload.WatchDebounce)

	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if watchNoTUI || isVerbose() || !stdoutIsTerminal() {
		return runWatchLoop(ctx, cmd.OutOrStdout(), stack, watcher)
	}
	return runWatchTUI(ctx, stack, watcher, dir)
}

// runWatchTUI feeds watcher rescans into the running program
func runWatchTUI(ctx context.Context, stack *sessionStack, watcher *upload.Watcher, dir string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := stack.uiOptions(ctx)
	opts.Start = session.RouteLab
	opts.AutoRun = watchAutoRun
	opts.Source = dir
	opts.Rescan = stack.timedScan(watcher.Scan)

	program := ui.NewProgram(ui.New(opts))

	done := make(chan error, 1)
	go func() {
		done <- watcher.Run(ctx, func(files []*upload.File, err error) {
			program.Send(ui.SelectionChanged(files, err))
		})
	}()

	_, runErr := program.Run()
	cancel()
	if err := <-done; err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return fmt.Errorf("terminal UI failed: %w", runErr)
	}
	return nil
}

// runWatchLoop prints each selection change and, with auto-run, the result of
// a session over it. Sessions run one at a time on the watcher's goroutine.
func runWatchLoop(ctx context.Context, out io.Writer, stack *sessionStack, watcher *upload.Watcher) error {
	fmt.Fprintf(out, "%s watching %s (Ctrl+C to stop)\n", emoji.GetEmoji("folder"), watcher.Dir())

	defer func() {
		if watchAutoRun {
			fmt.Fprintf(out, "%s %s\n", emoji.GetEmoji("chart"), stack.metrics.Snapshot().Summary())
		}
	}()

	var last string
	return watcher.Run(ctx, func(files []*upload.File, err error) {
		if err != nil {
			stack.log.WarnWithFields("rescan failed", []logger.Field{logger.Error(err)})
			return
		}

		dropped := stack.store.Select(files)
		current := selectionKey(stack.store.Files())
		if current == last {
			return
		}
		last = current

		fmt.Fprintf(out, "%s selected: %d screenshot(s)\n", emoji.GetEmoji("upload"), stack.store.Count())
		if dropped > 0 {
			fmt.Fprintf(out, "%s %d older screenshot(s) not selected\n", emoji.GetEmoji("warning"), dropped)
		}

		if !watchAutoRun || stack.store.IsEmpty() {
			return
		}
		// the session error is part of the formatted output
		_ = stack.controller.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(out, "%s run %d\n", emoji.GetEmoji("zap"), stack.controller.Seq())
		if err := stack.writeReport(out, getOutputFormat(), false); err != nil {
			stack.log.WarnWithFields("failed to write result", []logger.Field{logger.Error(err)})
		}
		stack.writeFailureDetail(out)
	})
}

// selectionKey identifies a selection by its files and their modification times
func selectionKey(files []*upload.File) string {
	keys := make([]string, 0, len(files))
	for _, f := range files {
		keys = append(keys, f.Key()+"@"+f.ModTime.String())
	}
	return strings.Join(keys, "|")
}

// cleanupWatcher safely closes watcher with error logging
func cleanupWatcher(watcher *upload.Watcher, log *logger.Logger) {
	if err := watcher.Close(); err != nil {
		log.Debug("failed to close watcher: %v", err)
	}
}

// validateWatchDirPath validates that a path is a directory that can be watched
func validateWatchDirPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty directory path")
	}

	cleanPath := filepath.Clean(path)
	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", cleanPath)
	}
	return nil
}
