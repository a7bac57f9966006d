// Package store provides the SQLite configuration catalog.
//
// Each generation run is recorded as one session:
//   - Sessions: design name, design hash, output root, and counts
//   - Architectures: unique architecture entries by catalog index
//   - Workloads: unique workload entries by catalog index
//   - Configurations: manifest rows pairing the two
//
// A session and all of its rows are written in a single transaction, so a
// catalog never holds a partially recorded run.
//
// Entry bodies are stored as canonical JSON (RFC 8785) with their
// domain-separated hash, which makes identical entries findable across
// sessions.
//
// # Ordering
//
//   - Sessions are ordered by seq, a logical counter, never by timestamps
//   - Entries and configurations are ordered by their catalog index
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
