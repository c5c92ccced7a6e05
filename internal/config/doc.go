// Package config provides configuration loading for the CORD-19 explorer.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later sources
// overriding earlier ones:
//
//	1. Default values (Default)
//	2. A YAML file (--config, or config.yaml / configs/config.yaml)
//	3. Environment variables prefixed with CORD_
//
// # Environment Variables
//
// Nested sections map to underscore-separated names:
//
//	CORD_SERVER_PORT=8501
//	CORD_PATHS_INPUT_FILE=data/metadata.csv
//	CORD_PATHS_OUTPUT_DIR=outputs
//	CORD_LOGGING_LEVEL=debug
//	CORD_DASHBOARD_DEFAULT_YEAR_FROM=2019
//
// # Validation
//
// Load validates the merged result with go-playground/validator struct tags
// and returns an error describing the first failing field.
package config
