// Package config loads the screener configuration.
//
// # Configuration Sources
//
// Configuration is layered, later sources overriding earlier ones:
//
//	1. Default() values
//	2. A YAML file: $SCREENER_CONFIG, screener.yaml or configs/screener.yaml
//	3. A .env file in the working directory
//	4. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern SCREENER_<SECTION>_<KEY>:
//
//	SCREENER_SERVER_PORT=8080
//	SCREENER_DATA_FILE=52week_high_combined.xlsx
//	SCREENER_SCREEN_MIN_PRICE=10
//	SCREENER_LOGGING_LEVEL=debug
//	SCREENER_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tests and the export CLI start from config.Default().
package config
