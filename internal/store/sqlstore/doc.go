// Package sqlstore is a SQLite-backed store.Store.
//
// A DB holds one SQLite file; each record type gets a Collection within it.
// Records are stored as canonical JSON in a single records table keyed by
// (collection, id).
//
// # Ordering
//
// Every row carries a seq assigned on first insert. Listings are
// ORDER BY seq ASC, id ASC so repeated runs return identical results;
// updating a record keeps its seq.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout: wait for locks (default 5 seconds)
//   - one open connection: SQLite has a single writer
package sqlstore
