// Package store keeps a SQLite history of schematic invocations.
//
// Each run of a schematic is recorded once with its options, the merge
// strategy it ran under, its outcome and the files of the resulting tree.
// Records are keyed by invocation ID and writes are idempotent on that key.
//
// # Ordering
//
// Records carry a logical seq. Queries order by seq, then id, so listings
// are stable regardless of wall time.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON: file rows are removed with their invocation
package store
