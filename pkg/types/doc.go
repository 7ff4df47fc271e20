// Package types defines shared Go types used by both the agent and server.
// These are the canonical in-memory representations of vital-sign telemetry,
// separate from any storage or wire layout.
package types
