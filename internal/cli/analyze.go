package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/yildizm/qupid/internal/qupid"
	"github.com/yildizm/qupid/internal/session"
	"github.com/yildizm/qupid/internal/ui"
	"golang.org/x/term"
)

var (
	analyzeEndpoint   string
	analyzeTimeout    time.Duration
	analyzeNoTUI      bool
	analyzeOutputFile string
	analyzeSavePlot   string
)

// stdoutIsTerminal reports whether stdout is an interactive terminal
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [paths...]",
		Short: "Analyze conversation screenshots",
		Long: `Send up to 10 conversation screenshots to the analysis service and show
the predicted trajectory.

Paths may be PNG or JPEG files or directories; directories contribute their
newest screenshots first. Only the first 10 screenshots are sent.

Examples:
  qupid analyze chat1.png chat2.jpg
  qupid analyze ~/Pictures/Screenshots
  qupid analyze --no-tui -o json --output-file result.json ./shots
  qupid analyze --save-plot ./plots ./shots`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyze,
	}

	cmd.Flags().StringVar(&analyzeEndpoint, "endpoint", "", "analysis service base URL (default from config)")
	cmd.Flags().DurationVar(&analyzeTimeout, "timeout", qupid.DefaultTimeout, "request timeout, 0 disables it")
	cmd.Flags().BoolVar(&analyzeNoTUI, "no-tui", false, "disable terminal UI, output to stdout")
	cmd.Flags().StringVar(&analyzeOutputFile, "output-file", "", "save output to file instead of stdout")
	cmd.Flags().StringVar(&analyzeSavePlot, "save-plot", "", "directory to save the trajectory plot PNG into")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	// Get configuration
	cfg := GetGlobalConfig()

	// Flags override config values only when explicitly set
	if cmd.Flag("endpoint").Changed {
		cfg.Backend.Endpoint = analyzeEndpoint
	}
	if cmd.Flag("timeout").Changed {
		cfg.Backend.Timeout = analyzeTimeout
	}
	plotDir := cfg.Output.PlotDir
	if cmd.Flag("save-plot").Changed {
		plotDir = analyzeSavePlot
	}

	stack, err := newSessionStack(cfg)
	if err != nil {
		return err
	}
	defer stack.finish()
	if err := stack.selectPaths(args); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if shouldUseTUIMode() {
		opts := stack.uiOptions(ctx)
		opts.Start = session.RouteLab
		opts.RunOnStart = true
		if err := ui.Run(ui.New(opts)); err != nil {
			return fmt.Errorf("terminal UI failed: %w", err)
		}
		return stack.savePlot(plotDir, cmd.ErrOrStderr())
	}

	return runAnalysisAndOutput(ctx, cmd, stack, plotDir)
}

// runAnalysisAndOutput runs one session synchronously and prints its result
func runAnalysisAndOutput(ctx context.Context, cmd *cobra.Command, stack *sessionStack, plotDir string) error {
	// the session error is part of the formatted output
	_ = stack.controller.Run(ctx)

	var buf bytes.Buffer
	color := useColor() && analyzeOutputFile == "" && stdoutIsTerminal()
	if err := stack.writeReport(&buf, getOutputFormat(), color); err != nil {
		return err
	}
	if err := handleOutputDestination(cmd.OutOrStdout(), buf.Bytes(), analyzeOutputFile); err != nil {
		return err
	}
	stack.writeFailureDetail(cmd.ErrOrStderr())
	if err := stack.savePlot(plotDir, cmd.ErrOrStderr()); err != nil {
		return err
	}
	return stack.sessionExitError()
}

// shouldUseTUIMode determines if TUI mode should be used
func shouldUseTUIMode() bool {
	return !analyzeNoTUI &&
		getOutputFormat() == "text" &&
		!isVerbose() &&
		analyzeOutputFile == "" &&
		stdoutIsTerminal()
}
