package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yildizm/qupid/internal/config"
	"github.com/yildizm/qupid/internal/emoji"
	"github.com/yildizm/qupid/internal/upload"
	"gopkg.in/yaml.v3"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create the qupid settings file",
		Long: `Inspect and create the settings file that points qupid at an analysis
service and controls how screenshots are picked and results are shown.

The file holds the backend endpoint and timeout, the accepted screenshot
extensions, the stale-result policy, output defaults and the stand-in
service started by "qupid stub".`,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
	}

	configCmd.AddCommand(
		newConfigInitCommand(),
		newConfigShowCommand(),
		newConfigValidateCommand(),
		newConfigPathCommand(),
	)

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		outputPath string
		minimal    bool
		force      bool
	)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with every option documented",
		Long: `Write a settings file pointing at the default analysis service.

The full file documents every section (backend, upload, session, output,
stub). --minimal writes only the endpoint, the timeout and the output format,
enough to aim qupid at another backend.`,
		Example: `  # Settings for the current directory
  qupid config init

  # Just the endpoint and timeout
  qupid config init --minimal

  # Per-user settings
  qupid config init --output ~/.config/qupid/config.yaml

  # Replace an existing file
  qupid config init --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			content := config.SampleConfig()
			if minimal {
				content = config.MinimalSampleConfig()
			}
			if err := writeSettingsFile(outputPath, content, force); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Settings written to %s\n", emoji.GetEmoji("success"), outputPath)
			if minimal {
				fmt.Fprintf(out, "%s Edit backend.endpoint to point qupid at your analysis service\n", emoji.GetEmoji("server"))
			} else {
				fmt.Fprintf(out, "%s Every section is documented inline; run \"qupid config validate\" after editing\n", emoji.GetEmoji("report"))
			}

			return nil
		},
	}

	initCmd.Flags().StringVarP(&outputPath, "output", "o", defaultSettingsFile, "where to write the settings file")
	initCmd.Flags().BoolVarP(&minimal, "minimal", "m", false, "only the endpoint, timeout and output format")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing file")

	return initCmd
}

func newConfigShowCommand() *cobra.Command {
	var (
		format     string
		configPath string
	)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the settings a session would run with",
		Long: `Print the effective settings: built-in defaults, then the settings file,
then QUPID_ variables from the environment or a .env file.

Use it to check which endpoint and timeout "qupid analyze" will use.`,
		Example: `  # As YAML
  qupid config show

  # As JSON, for scripts
  qupid config show --format json

  # From a specific file
  qupid config show --config ./staging.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(configPath)
			if err != nil {
				return err
			}
			return printSettings(cmd.OutOrStdout(), cfg, format)
		},
	}

	showCmd.Flags().StringVarP(&format, "format", "f", "yaml", "print as yaml or json")
	showCmd.Flags().StringVarP(&configPath, "config", "c", "", "settings file to read instead of searching")

	return showCmd
}

func newConfigValidateCommand() *cobra.Command {
	var configPath string

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a settings file before running a session",
		Long: `Load a settings file and report the first problem found: a malformed
endpoint URL, a negative timeout, a screenshot extension other than png or
jpeg, an unknown output format or theme, or a bad stub origin.`,
		Example: `  # The file qupid would pick up
  qupid config validate

  # A specific file
  qupid config validate --config ./staging.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := loadSettings(configPath)
			if err != nil {
				fmt.Fprintf(out, "%s Settings are not usable:\n", emoji.GetEmoji("error"))
				fmt.Fprintf(out, "   %v\n", err)
				return err
			}

			fmt.Fprintf(out, "%s Settings are valid\n", emoji.GetEmoji("success"))

			timeout := cfg.Backend.Timeout.String()
			if cfg.Backend.Timeout == 0 {
				timeout = "none"
			}
			stale := "last response wins"
			if cfg.Session.DiscardStale {
				stale = "superseded responses discarded"
			}
			fmt.Fprintf(out, "%s Sessions will use:\n", emoji.GetEmoji("chart"))
			fmt.Fprintf(out, "   Analysis service: %s%s\n", cfg.Backend.Endpoint, cfg.Backend.AnalyzePath)
			fmt.Fprintf(out, "   Upload field: %s (up to %d screenshots)\n", cfg.Backend.FieldName, upload.MaxFiles)
			fmt.Fprintf(out, "   Timeout: %s\n", timeout)
			fmt.Fprintf(out, "   Screenshots: %s\n", strings.Join(cfg.Upload.Extensions, ", "))
			fmt.Fprintf(out, "   Overlapping runs: %s\n", stale)
			fmt.Fprintf(out, "   Output: %s, theme %s\n", cfg.Output.DefaultFormat, cfg.Output.Theme)

			return nil
		},
	}

	validateCmd.Flags().StringVarP(&configPath, "config", "c", "", "settings file to check instead of searching")

	return validateCmd
}

func newConfigPathCommand() *cobra.Command {
	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "List where qupid looks for its settings file",
		Long: `List the settings file locations in the order qupid tries them and mark
the ones present. A --config flag skips the search entirely.`,
		Example: `  qupid config path`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Settings file search paths, first match wins:\n", emoji.GetEmoji("folder"))

			for i, path := range config.GetConfigPaths() {
				status := emoji.GetEmoji("error") + " missing"
				if fileExists(path) {
					status = emoji.GetEmoji("success") + " present"
				}
				fmt.Fprintf(out, "  %d. %s  %s\n", i+1, path, status)
			}
			fmt.Fprintln(out)

			if current, found := config.FindConfigFile(); found {
				fmt.Fprintf(out, "%s Sessions use %s\n", emoji.GetEmoji("target"), current)
			} else {
				fmt.Fprintf(out, "%s No settings file found, sessions use %s\n", emoji.GetEmoji("info"), config.DefaultConfig().Backend.Endpoint)
			}
			fmt.Fprintf(out, "%s %s* variables, also read from ./.env, override the file\n", emoji.GetEmoji("sparkles"), config.EnvPrefix)
		},
	}

	return pathCmd
}

const defaultSettingsFile = ".qupid.yaml"

// writeSettingsFile writes content to path, creating parent directories.
// An existing file is kept unless force is set.
func writeSettingsFile(path, content string, force bool) error {
	if path == "" {
		path = defaultSettingsFile
	}
	if fileExists(path) && !force {
		return fmt.Errorf("%s already exists (use --force to replace it)", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("cannot create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("cannot write settings: %w", err)
	}
	return nil
}

// loadSettings loads the file named by path, the global --config, or the search paths
func loadSettings(path string) (*config.Config, error) {
	cfg, err := config.NewLoader().LoadConfig(resolveConfigPath(path))
	if err != nil {
		return nil, fmt.Errorf("cannot load settings: %w", err)
	}
	return cfg, nil
}

// printSettings encodes cfg as yaml or json
func printSettings(w io.Writer, cfg *config.Config, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "yaml", "yml":
		data, err = yaml.Marshal(cfg)
	case "json":
		data, err = json.MarshalIndent(cfg, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("unsupported format: %s (use yaml or json)", format)
	}
	if err != nil {
		return fmt.Errorf("cannot encode settings as %s: %w", format, err)
	}
	_, err = w.Write(data)
	return err
}

// resolveConfigPath prefers the subcommand's --config, then the global one
func resolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	return cfgFile
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
