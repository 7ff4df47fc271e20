// Package store persists readings as an append-only log.
//
// Store is the driver-neutral interface; NewStore selects the sqlite or
// postgres implementation from configuration. Append is synchronous and
// durable: it returns only once the record is committed, and a record is
// never updated or deleted afterwards. Recent and Count exist for the
// operational health surface and for verification; the broadcast and alert
// paths never read the store.
package store
