// Package config loads storefront's settings.
//
// # Configuration Discovery
//
// Load resolves settings in this order, later sources winning:
//
//  1. Built-in defaults
//  2. The TOML file at the given path, or ~/.config/storefront/config.toml
//  3. STOREFRONT_* environment variables
//
// A missing file is not an error. Empty or non-positive values in the file
// or environment leave the previous value in place.
//
// # Fields
//
//	api_url                  STOREFRONT_API_URL                  http://localhost:3001
//	request_timeout_seconds  STOREFRONT_REQUEST_TIMEOUT_SECONDS  5
//	poll_interval_seconds    STOREFRONT_POLL_INTERVAL_SECONDS    30
//	log_file                 STOREFRONT_LOG_FILE                 ~/.local/state/storefront/storefront.log
//
// # Path Expansion
//
// Paths beginning with ~ are expanded with os.UserHomeDir and made
// absolute. If expansion fails the path is used unchanged.
package config
