// Package services implements the business logic of the CORD-19 explorer.
// It sits between the dataprocessing/charts/exporter packages and the
// transports (CLI, HTTP, websocket).
//
// # Available Services
//
//	- DatasetLoader: load, summarize and clean the metadata file
//	- ChartRenderer: render figures with spans and metrics
//	- AnalysisService: the batch pipeline behind `cordexplorer analyze`
//	- ExplorerService: year-range views for the dashboard
//	- HealthService: liveness and readiness checks
//
// # Common Service Pattern
//
//	svc, err := services.NewAnalysisService(cfg, tracer, metrics, logger)
//	if err != nil {
//	    return err
//	}
//	result, err := svc.Run(ctx, services.AnalysisOptions{
//	    InputFile: cfg.Paths.InputFile,
//	    OutputDir: cfg.Paths.OutputDir,
//	}, os.Stdout)
//
// # Error Handling
//
// Services return *errors.AppError or *errors.APIError values from
// internal/errors; HTTP handlers turn them into problem documents.
package services
