// Package config loads and validates the vitaltrace-server configuration.
//
// Configuration is a YAML file with a `server:` section; the `agent:` key
// in the same file is ignored. Missing fields are filled with defaults
// before validation, including the stock classification thresholds
// (hr > 120, spo2 < 88, temp > 39). Secrets (the Telegram bot token,
// webhook URLs) are never stored in the file; the file names environment
// variables that hold them.
//
// Watch re-reads the file on change so threshold edits take effect without
// a restart.
package config
