package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yildizm/qupid/internal/session"
	"github.com/yildizm/qupid/internal/ui"
	"github.com/yildizm/qupid/internal/upload"
)

var labEndpoint string

func newLabCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lab [paths...]",
		Short: "Open the interactive lab",
		Long: `Open the terminal UI on the landing view. Paths given on the command line
are preselected; press r in the lab to rescan them after taking new screenshots.

Examples:
  qupid lab
  qupid lab ~/Pictures/Screenshots`,
		Args: cobra.ArbitraryArgs,
		RunE: runLab,
	}

	cmd.Flags().StringVar(&labEndpoint, "endpoint", "", "analysis service base URL (default from config)")

	return cmd
}

func runLab(cmd *cobra.Command, args []string) error {
	if !stdoutIsTerminal() {
		return fmt.Errorf("the lab needs an interactive terminal; use 'qupid analyze --no-tui' instead")
	}

	cfg := GetGlobalConfig()
	if cmd.Flag("endpoint").Changed {
		cfg.Backend.Endpoint = labEndpoint
	}

	stack, err := newSessionStack(cfg)
	if err != nil {
		return err
	}
	defer stack.finish()
	if len(args) > 0 {
		if err := stack.selectPaths(args); err != nil {
			return err
		}
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := stack.uiOptions(ctx)
	opts.Start = session.RouteLanding
	if len(args) > 0 {
		opts.Rescan = func() ([]*upload.File, error) {
			return stack.discover(args)
		}
	}

	if err := ui.Run(ui.New(opts)); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return stack.savePlot(cfg.Output.PlotDir, cmd.ErrOrStderr())
}
