// Package cli implements the retention command-line tool: analyze, compare,
// scrape and chart, all running through the same service as the HTTP server.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	service "github.com/okian/retention/internal/app"
	"github.com/okian/retention/internal/config"
	"github.com/okian/retention/pkg/logger"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

var formats = []string{FormatJSON, FormatYAML, FormatText}

type rootFlags struct {
	configFile string
	verbose    bool
	format     string
}

type cli struct {
	flags rootFlags
	cfg   *config.Config
	extra []service.Option
}

// NewRootCommand builds the command tree. extra is appended to the service
// options derived from configuration.
func NewRootCommand(extra ...service.Option) *cobra.Command {
	c := &cli{extra: extra}

	root := &cobra.Command{
		Use:           "retention",
		Short:         "YouTube audience retention analysis",
		Long:          "Analyze, compare and chart audience retention series from CSV exports or scraped pages.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&c.flags.configFile, "config", "", "YAML config file (default: $RETENTION_CONFIG)")
	root.PersistentFlags().BoolVarP(&c.flags.verbose, "verbose", "v", false, "verbose logging on stderr")
	root.PersistentFlags().StringVarP(&c.flags.format, "format", "f", FormatText, "output format: json, yaml or text")

	root.AddCommand(
		c.analyzeCommand(),
		c.compareCommand(),
		c.scrapeCommand(),
		c.chartCommand(),
	)
	return root
}

// setup loads configuration and routes logs to stderr.
func (c *cli) setup(cmd *cobra.Command) error {
	if !slices.Contains(formats, c.flags.format) {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, c.flags.format)
	}

	var opts []config.LoadOption
	if c.flags.configFile != "" {
		opts = append(opts, config.WithFile(c.flags.configFile))
	}
	cfg, err := config.Load(cmd.Context(), opts...)
	if err != nil {
		return err
	}
	c.cfg = cfg

	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	level := "warn"
	if c.flags.verbose {
		level = "debug"
	}
	return logger.SetLevelString(level)
}

// withService starts a service for the duration of fn.
func (c *cli) withService(fn func(ctx context.Context, cmd *cobra.Command, svc *service.Service, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		opts, err := service.OptionsFromConfig(c.cfg)
		if err != nil {
			return err
		}
		opts = append(opts, service.WithLogger(logger.Named("cli")))
		svc := service.New(append(opts, c.extra...)...)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := svc.Start(ctx); err != nil {
			return err
		}
		defer svc.Stop()
		return fn(ctx, cmd, svc, args)
	}
}
