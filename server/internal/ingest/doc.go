// Package ingest implements the ingestion pipeline and its HTTP boundary.
//
// Pipeline.Ingest runs the synchronous half of an ingestion: validate,
// fingerprint, classify, append to the durable store, and publish to the
// live observer hub. Only a validation or persistence failure fails the
// request; once the record is committed the response is decided and
// everything downstream degrades independently.
//
// Fatal readings additionally enqueue two background tasks, alert
// notification and ledger anchoring, on a buffered task queue drained by
// Pipeline.Run workers. Enqueueing never blocks the response path, task
// outcomes are logged and counted but never surfaced to the submitter, and
// nothing is retried.
package ingest
