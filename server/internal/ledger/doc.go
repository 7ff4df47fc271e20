// Package ledger is the client for the external fingerprint-anchoring
// service.
//
// The service is opaque to the pipeline: it accepts a 32-byte fingerprint
// (Anchor) and can later confirm it was recorded (Verify). Availability is
// a startup-time configuration state, not a per-call error path: New
// returns a Disabled anchorer when no endpoint is configured, and anchors
// are then logged and skipped. Every remote call is bounded by the
// configured timeout. Verify exists for external audit and is never called
// on the ingestion path.
package ledger
