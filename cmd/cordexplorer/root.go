package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"cordexplorer/internal/config"
	"cordexplorer/internal/infrastructure"
	"cordexplorer/internal/validation"
	"cordexplorer/pkg/contracts"
)

type rootArgs struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCmd builds the cordexplorer command tree.
func NewRootCmd() *cobra.Command {
	args := &rootArgs{}

	cmd := &cobra.Command{
		Use:   "cordexplorer",
		Short: "Explore the CORD-19 research paper metadata",
		Long: `cordexplorer loads a CORD-19 metadata.csv, cleans it and either renders
summary charts to a directory (analyze) or serves an interactive dashboard
with a publication year range control (serve).

Configuration is read from defaults, then an optional YAML file, then
CORD_* environment variables. Flags override all three.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       contracts.Version,
	}

	cmd.PersistentFlags().StringVar(&args.configPath, "config", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&args.logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&args.logFormat, "log-format", "", "Override the log format (json, text)")
	if err := cmd.MarkPersistentFlagFilename("config", "yaml", "yml"); err != nil {
		panic(err)
	}

	cmd.AddCommand(
		newAnalyzeCmd(args),
		newServeCmd(args),
		newVersionCmd(),
	)
	return cmd
}

// setup loads the configuration, applies the logging overrides and builds a
// logger writing to the command's stderr.
func (a *rootArgs) setup(cc *cobra.Command, override func(*config.Config) error) (*config.Config, *slog.Logger, error) {
	bootstrap := infrastructure.NewLogger(config.Default().Logging, cc.ErrOrStderr())
	if err := validation.NewFileValidator(bootstrap).ValidateConfigFile(a.configPath); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, nil, err
	}

	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	if override != nil {
		if err := override(cfg); err != nil {
			return nil, nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	out := cc.ErrOrStderr()
	if cfg.Logging.Output == "stdout" {
		out = cc.OutOrStdout()
	}
	logger := infrastructure.NewLogger(cfg.Logging, out)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
