// Package ingest turns extracted document fragments into persisted records.
// It merges per-chunk extraction results, gates entry creation on a
// composite dedup key, and orchestrates ingestion jobs through a bounded
// worker pool with monotonic progress reporting.
package ingest
