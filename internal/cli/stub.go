package cli

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/yildizm/qupid/internal/emoji"
	"github.com/yildizm/qupid/internal/qupid"
	"github.com/yildizm/qupid/internal/stub"
)

var (
	stubAddr     string
	stubFixture  string
	stubLatency  time.Duration
	stubFailWith string
)

func newStubCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Run a local stand-in analysis service",
		Long: `Serve the analysis endpoint locally with a canned result, for trying the
client without the real backend.

The service accepts the same multipart upload as the real one and answers
with the built-in fixture or one loaded from a YAML or JSON file.

Examples:
  qupid stub
  qupid stub --addr 127.0.0.1:5001 --latency 2s
  qupid stub --fixture ./fixtures/decohered.yaml
  qupid stub --fail-with "analyzer failed: quota exceeded"`,
		Args: cobra.NoArgs,
		RunE: runStub,
	}

	cmd.Flags().StringVar(&stubAddr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&stubFixture, "fixture", "", "YAML or JSON file with the result to serve")
	cmd.Flags().DurationVar(&stubLatency, "latency", 0, "artificial delay before each analyze response")
	cmd.Flags().StringVar(&stubFailWith, "fail-with", "", "answer every analyze request with a 500 and this message")

	return cmd
}

func runStub(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()
	if cmd.Flag("addr").Changed {
		cfg.Stub.Addr = stubAddr
	}
	if cmd.Flag("fixture").Changed {
		cfg.Stub.Fixture = stubFixture
	}
	if cmd.Flag("latency").Changed {
		cfg.Stub.Latency = stubLatency
	}
	if cmd.Flag("fail-with").Changed {
		cfg.Stub.FailWith = stubFailWith
	}

	opts := stub.Options{
		Latency:        cfg.Stub.Latency,
		FailWith:       cfg.Stub.FailWith,
		AllowedOrigins: cfg.Stub.AllowedOrigins,
		FieldName:      cfg.Backend.FieldName,
		AnalyzePath:    cfg.Backend.AnalyzePath,
		Logger:         newLogger("stub"),
	}
	if cfg.Stub.Fixture != "" {
		fixture, err := stub.LoadFixture(cfg.Stub.Fixture)
		if err != nil {
			return err
		}
		opts.Fixture = fixture
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	out := cmd.OutOrStdout()
	return stub.ListenAndServe(ctx, cfg.Stub.Addr, stub.NewRouter(opts), opts.Logger, func(addr net.Addr) {
		path := opts.AnalyzePath
		if path == "" {
			path = qupid.DefaultAnalyzePath
		}
		fmt.Fprintf(out, "%s stand-in service listening on http://%s%s (Ctrl+C to stop)\n", emoji.GetEmoji("server"), addr, path)
	})
}
