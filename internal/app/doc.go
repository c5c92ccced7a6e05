// Package app wires the interactive explorer together: configuration,
// logging and telemetry, the cleaned dataset, the explorer service, the
// websocket hub and the chi router.
//
// # Initialization Flow
//
//	1. Initialize OpenTelemetry and business metrics
//	2. Load, summarize and clean the input CSV
//	3. Build the explorer (fails when no row has a publication year)
//	4. Start the websocket hub
//	5. Set up middleware and routes
//	6. Serve until the context is cancelled
//
// # Usage
//
//	application, err := app.NewApplication(ctx, cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// Run never calls os.Exit. The command decides the exit status.
//
// # Graceful Shutdown
//
// When the context passed to Run is cancelled the hub closes every
// websocket client, the HTTP server drains in-flight requests within
// the configured shutdown timeout, and telemetry providers are flushed.
package app
