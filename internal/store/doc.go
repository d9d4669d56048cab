// Package store provides local durable storage for Leveller.
//
// Two layers live here:
//
//   - Store: a SQLite-backed record store multiplexing several named
//     collections over one database. Records are opaque JSON payloads
//     keyed by (collection, id); typing happens one level up in the
//     vault facade. Memory is the in-process twin used for tests and
//     for degraded "state lost on restart" operation when SQLite
//     cannot be opened.
//
//   - KV: a synchronous scalar key/value layer for flags and
//     "last active id" pointers. KV never surfaces errors; failures
//     are logged and defaults returned.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//
// # Schema upgrades
//
// Schema changes are additive-only, tracked via PRAGMA user_version.
// Registering a new collection on a version bump inserts its name into
// the collections table; existing collections are never dropped or
// renamed without an explicit migration. Open is idempotent and
// tolerates collections that already exist.
package store
