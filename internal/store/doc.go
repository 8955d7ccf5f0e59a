// Package store provides the SQLite schema and read path for contactdb.
//
// The schema is table-per-detail-kind:
//   - Contacts: one row per contact holding the scalar fields
//   - one table per detail kind, each row owned by a contact
//   - Details: common metadata (detail URI, linked URIs, contexts) of a
//     detail row, written only when non-empty
//   - GlobalPresences: at most one derived presence row per contact
//   - Relationships: one row per typed edge, unique on (firstId, secondId, type)
//   - Identities: the self contact slot
//
// Writes are performed by package writer inside a transaction obtained from
// BeginTx. The Load* helpers accept either the database or a transaction so
// the writer can take its validation snapshot inside the transaction.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Detail rows cascade with their contact
//
// Timestamps are stored as INTEGER Unix milliseconds (UTC). Tag sets are
// stored as JSON array text.
package store
