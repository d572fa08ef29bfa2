// Package config loads server settings with viper.
//
// Precedence, highest first: MCPIZZA_* environment variables (a .env file
// is loaded into the environment at startup), the config file, defaults.
// Nested keys map to variables by replacing dots with underscores, so
// api.base_url is MCPIZZA_API_BASE_URL.
//
// The optional profile section supplies customer defaults for create_order.
// It is read once at startup and never written.
package config
