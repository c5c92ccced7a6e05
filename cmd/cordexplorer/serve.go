package main

import (
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"cordexplorer/internal/app"
	"cordexplorer/internal/config"
	apperrors "cordexplorer/internal/errors"
	"cordexplorer/internal/validation"
)

type serveArgs struct {
	input string
	addr  string
}

func newServeCmd(root *rootArgs) *cobra.Command {
	args := &serveArgs{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive explorer dashboard",
		Long: `serve loads and cleans the metadata file once, then serves a dashboard
whose year range control recomputes the sample table, the year and journal
charts and the title word cloud. The server stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			cfg, logger, err := root.setup(cc, func(cfg *config.Config) error {
				if cc.Flags().Changed("input") {
					cfg.Paths.InputFile = args.input
				}
				if cc.Flags().Changed("addr") {
					host, port, err := parseAddr(args.addr)
					if err != nil {
						return err
					}
					cfg.Server.Host, cfg.Server.Port = host, port
				}
				return nil
			})
			if err != nil {
				return err
			}

			if err := validation.NewFileValidator(logger).ValidateCSVFile(cfg.Paths.InputFile); err != nil {
				return err
			}

			application, err := app.NewApplication(cc.Context(), cfg, logger)
			if err != nil {
				return err
			}
			return application.Run(cc.Context())
		},
	}

	cmd.Flags().StringVarP(&args.input, "input", "i", "", "Path to metadata.csv (default from config)")
	cmd.Flags().StringVar(&args.addr, "addr", "", "Listen address as host:port or :port (default from config)")
	return cmd
}

// parseAddr splits a listen address into host and port.
func parseAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, apperrors.NewConfigError("invalid listen address", err).WithContext("addr", addr)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, apperrors.NewConfigError("invalid listen port", err).WithContext("addr", addr)
	}
	return host, port, nil
}
