package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yildizm/qupid/internal/config"
	"github.com/yildizm/qupid/internal/emoji"
	"github.com/yildizm/qupid/internal/logger"
	"github.com/yildizm/qupid/internal/ui"
)

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	noEmoji   bool
	outputFmt string
	themeName string

	globalConfig *config.Config
)

// skipConfigAnnotation marks commands that load configuration themselves
const skipConfigAnnotation = "qupid/skip-config"

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "qupid",
		Short: "Predict your situationship with quantum physics",
		Long: `qupid runs your relationship through a time-dependent quantum engine.

Select up to 10 screenshots of your most recent text conversations, send them
to the analysis service and read the evolved trajectory: a coherence badge,
the inferred relationship parameters and a sectioned report.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Auto-disable emojis on Windows if not explicitly set
			if runtime.GOOS == "windows" && !cmd.Flag("no-emoji").Changed {
				noEmoji = true
			}

			cfg := config.DefaultConfig()
			if !skipsConfig(cmd) {
				loaded, err := config.NewLoader().LoadConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("failed to load configuration: %w", err)
				}
				cfg = loaded
			}
			applyOutputConfig(cmd, cfg)
			globalConfig = cfg

			// Set emoji state for all components
			emoji.SetEmojiDisabled(noEmoji)
			if noColor {
				if err := os.Setenv("NO_COLOR", "1"); err != nil {
					return fmt.Errorf("failed to disable colors: %w", err)
				}
			}
			if !ui.SetThemeByName(themeName) {
				return fmt.Errorf("unknown theme: %s (available: %s)", themeName, strings.Join(ui.GetAvailableThemes(), ", "))
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "output format (text, json, markdown)")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "qupid", "TUI theme (qupid, high-contrast, minimal)")

	// Add subcommands
	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newLabCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newStubCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

// applyOutputConfig fills global flags the user did not set from the output section
func applyOutputConfig(cmd *cobra.Command, cfg *config.Config) {
	if !flagChanged(cmd, "output") && cfg.Output.DefaultFormat != "" {
		outputFmt = cfg.Output.DefaultFormat
	}
	if !flagChanged(cmd, "verbose") && cfg.Output.Verbose {
		verbose = true
	}
	if !flagChanged(cmd, "no-emoji") && cfg.Output.NoEmoji {
		noEmoji = true
	}
	if !flagChanged(cmd, "no-color") && cfg.Output.ColorMode == "never" {
		noColor = true
	}
	if !flagChanged(cmd, "theme") && cfg.Output.Theme != "" {
		themeName = cfg.Output.Theme
	}
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	return f != nil && f.Changed
}

func skipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipConfigAnnotation] == "true" {
			return true
		}
	}
	return false
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "qupid %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// GetGlobalConfig returns the configuration loaded for the running command
func GetGlobalConfig() *config.Config {
	if globalConfig == nil {
		return config.DefaultConfig()
	}
	return globalConfig
}

// Global helpers
func isVerbose() bool {
	return verbose
}

func getOutputFormat() string {
	return outputFmt
}

func useColor() bool {
	return !noColor && !ui.IsColorDisabled()
}

// newLogger returns a stderr logger that follows the --verbose flag
func newLogger(component string) *logger.Logger {
	return logger.NewWithCallback(component, isVerbose)
}
