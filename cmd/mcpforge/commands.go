// file: cmd/mcpforge/commands.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/mcpforge/internal/config"
	"github.com/dkoosis/mcpforge/internal/logging"
	"github.com/dkoosis/mcpforge/internal/transport"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	debug      bool
	trace      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "mcpforge",
		Short:         "MCP server that scaffolds Go MCP server projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			// A missing .env is the normal case.
			_ = godotenv.Load()
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML configuration file.")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging.")
	root.PersistentFlags().BoolVar(&opts.trace, "trace", false, "Write dispatch spans to stderr.")

	root.AddCommand(newServeCmd(opts), newInfoCmd(opts), newVersionCmd())
	return root
}

// loadConfig loads configuration and installs the default logger.
func loadConfig(opts *rootOptions) (*config.Config, logging.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %+v\n", err)
		return nil, nil, err
	}
	if opts.trace {
		cfg.Tracing.Exporter = config.TraceExporterStdout
	}
	level := cfg.Logging.Level
	if opts.debug {
		level = "debug"
	}
	logging.SetupDefaultLogger(level, cfg.Logging.Format)
	return cfg, logging.GetLogger("main"), nil
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdin/stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = runServe(ctx, cfg, logger, transport.NewStdioTransport(logger))
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Server failed.", "error", fmt.Sprintf("%+v", err))
				return err
			}
			return nil
		},
	}
}

func newInfoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print server information and the capability catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())
			return printInfo(cmd.OutOrStdout(), a)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mcpforge version %s\n", Version)
			fmt.Fprintf(out, "Build: %s (%s)\n", commitHash, buildDate)
		},
	}
}

func printInfo(w io.Writer, a *app) error {
	info := a.server.Info()
	lines := []string{
		fmt.Sprintf("Server: %s (%s) %s", info.Identity.Name, info.Identity.Title, info.Identity.Version),
		fmt.Sprintf("Workspace: %s", a.out.Dir()),
		fmt.Sprintf("Tools (%d): %s", len(info.Tools), strings.Join(info.Tools, ", ")),
		fmt.Sprintf("Resources (%d): %s", len(info.Resources), strings.Join(info.Resources, ", ")),
		fmt.Sprintf("Prompts (%d): %s", len(info.Prompts), strings.Join(info.Prompts, ", ")),
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return errors.Wrap(err, "write info")
		}
	}
	return nil
}
