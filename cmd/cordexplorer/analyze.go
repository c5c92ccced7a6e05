package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"cordexplorer/internal/config"
	"cordexplorer/internal/infrastructure"
	"cordexplorer/internal/services"
	"cordexplorer/internal/validation"
)

type analyzeArgs struct {
	input  string
	output string
	report bool
}

func newAnalyzeCmd(root *rootArgs) *cobra.Command {
	args := &analyzeArgs{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Clean the metadata file and save the summary charts",
		Long: `analyze prints the dataset summary, cleans the rows and saves
publications_by_year.png, top_journals.png, title_wordcloud.png and
top_sources.png to the output directory. With --report it also writes
summary.xlsx, summary.md and the CSV tables behind the charts.`,
		Args: cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			cfg, logger, err := root.setup(cc, func(cfg *config.Config) error {
				if cc.Flags().Changed("input") {
					cfg.Paths.InputFile = args.input
				}
				if cc.Flags().Changed("output") {
					cfg.Paths.OutputDir = args.output
				}
				return nil
			})
			if err != nil {
				return err
			}
			return runAnalyze(cc, cfg, args.report, logger)
		},
	}

	cmd.Flags().StringVarP(&args.input, "input", "i", "", "Path to metadata.csv (default from config)")
	cmd.Flags().StringVarP(&args.output, "output", "o", "", "Directory for the saved charts (default from config)")
	cmd.Flags().BoolVar(&args.report, "report", false, "Also write spreadsheet, markdown and CSV reports")
	return cmd
}

func runAnalyze(cc *cobra.Command, cfg *config.Config, reports bool, logger *slog.Logger) error {
	ctx := infrastructure.EnsureTraceID(cc.Context())

	fv := validation.NewFileValidator(logger)
	if err := fv.ValidateCSVFile(cfg.Paths.InputFile); err != nil {
		return err
	}
	if err := fv.ValidateOutputDirectory(cfg.Paths.OutputDir); err != nil {
		return err
	}

	otelCfg := infrastructure.OTelConfigFrom(cfg.Telemetry)
	otelCfg.TraceWriter = cc.ErrOrStderr()
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("OpenTelemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		return err
	}

	analysis, err := services.NewAnalysisService(cfg, providers.Tracer, metrics, logger)
	if err != nil {
		return err
	}

	result, err := analysis.Run(ctx, services.AnalysisOptions{
		InputFile: cfg.Paths.InputFile,
		OutputDir: cfg.Paths.OutputDir,
		Reports:   reports,
	}, cc.OutOrStdout())
	if err != nil {
		return err
	}

	for _, path := range append(result.Artifacts, result.Reports...) {
		logger.Debug("artifact written", slog.String("path", path))
	}
	return nil
}
