// Package repositories implements SQLite persistence for the download ledger.
//
// The ledger records every finished audio file so that later runs and the history command
// can answer "was this track already downloaded, and where did it go?" without probing tags.
// Files on disk stay authoritative: a ledger row whose file has been removed is ignored.
//
// Key Implementations:
//   - [DownloadRepository] : Download rows with track-based lookups
//   - [Ledger] : Adapter satisfying tasks.Ledger on top of [DownloadRepository]
//
// Sequence numbers provide stable, human-readable ordering independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
