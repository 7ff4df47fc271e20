// Package config loads and validates the vitaltrace-agent configuration.
//
// Configuration is a YAML file with an `agent:` section; the `server:` key
// in the same file is ignored, so server and agent can share one file.
package config
