// Package api implements the operational HTTP surface for
// vitaltrace-server.
//
// Only GET /api/v1/health is exposed: a liveness summary with the stored
// record count, connected observer count, and ledger mode. Historical
// reading queries are deliberately absent.
package api
