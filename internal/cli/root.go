// Package cli implements the gokanprop command line tool.
package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/gitrdm/gokanprop/internal/config"
	"github.com/gitrdm/gokanprop/internal/logger"
	"github.com/gitrdm/gokanprop/pkg/engine"
	"github.com/gitrdm/gokanprop/pkg/metrics"
)

// RootOptions holds global flags for all commands and the state they set up.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Workers    int
	Metrics    bool

	Config    config.Config
	Logger    *slog.Logger
	Registry  *prometheus.Registry
	Collector *metrics.Collector
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the gokanprop CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gokanprop",
		Short: "gokanprop - finite-domain propagation engine",
		Long: "Check constraint models for root-level consistency and enumerate their solutions.\n" +
			"Models are YAML files declaring variables and constraints.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logs on stderr)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().IntVar(&opts.Workers, "workers", 0, "model files checked concurrently (default from config)")
	cmd.PersistentFlags().BoolVar(&opts.Metrics, "metrics", false, "print Prometheus metrics on stderr when done")

	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewSolveCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// setup validates flags, loads the configuration and builds the logger and
// metrics registry shared by subcommands.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !slices.Contains(ValidFormats, o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Workers > 0 {
		cfg.Workers = o.Workers
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}
	o.Config = cfg

	log, err := logger.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to configure logging", err)
	}
	o.Logger = log

	o.Registry = prometheus.NewRegistry()
	o.Collector = metrics.New(o.Registry)
	return nil
}

// newEngine returns an engine wired to the configured logger and metrics.
func (o *RootOptions) newEngine() *engine.Engine {
	cfg := o.Config.Engine
	return engine.New(
		engine.WithConfig(&cfg),
		engine.WithLogger(o.Logger),
		engine.WithObserver(o.Collector),
	)
}

// finish prints metrics when requested.
func (o *RootOptions) finish(cmd *cobra.Command) error {
	if !o.Metrics {
		return nil
	}
	return writeMetrics(cmd.ErrOrStderr(), o.Registry)
}
