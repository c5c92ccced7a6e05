// Package http implements the explorer's HTTP handlers. Handlers stay thin:
// they parse and validate the request, call a service and render either a
// JSON envelope or an RFC 7807 problem.
//
// # Routes
//
//	GET  /                                 dashboard page
//	GET  /api/explorer/bounds              slider bounds and default range
//	GET  /api/explorer/view?from=&to=      recomputed view for a range
//	POST /api/explorer/view                same, with a JSON body
//	GET  /api/explorer/charts/{chart}.png  one chart as PNG
//	GET  /api/explorer/export.csv          cleaned papers in a range
//	POST /api/client-log                   dashboard log forwarding
//	GET  /api/health[/ready|/live]         health probes
//	GET  /api/version                      build information
//	GET  /metrics[/websocket]              Prometheus scrape and hub counters
//
// Missing from/to fall back to the dashboard's default range. Ranges that
// are inverted or outside the data's year bounds answer 400 with error_code
// INVALID_YEAR_RANGE.
package http
