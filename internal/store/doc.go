// Package store provides SQLite-backed storage for the dragsort catalogue
// and the attempt trace.
//
// The store holds two groups of tables:
//   - Catalogue: sections, categories and tasks imported from CUE sources.
//     Tasks are keyed by (category_id, id).
//   - Trace: sessions and their attempts, append-only.
//
// # Ordering
//
// Catalogue reads follow declaration order (the position columns).
// Attempt reads are ordered by seq ASC, id ASC COLLATE BINARY. Ordering
// never uses timestamps, so a replayed trace reads back identically.
//
// # Idempotency
//
// Attempt ids are content addressed (ir.AttemptID); writing the same
// attempt twice is a no-op. Session writes are idempotent by id.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
