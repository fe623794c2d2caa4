// Package config loads the watchdog configuration.
//
// It uses Viper to read a YAML file and environment variables, and godotenv
// to load a .env file first. Files are searched in standard locations
// unless given explicitly:
//
//	cfg, err := config.Load(config.WithConfigFile("watchdog.yml"))
//
// Environment variables override file values using the WATCHDOG_ prefix with
// underscore-separated paths (e.g., WATCHDOG_SUPERVISOR_GRACE_PERIOD=10s).
package config
