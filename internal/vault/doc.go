// Package vault is the typed persistence facade over the record store
// and the scalar KV layer.
//
// One load/save method pair exists per domain entity. The vault is the
// only place defaults are injected (singleton settings, app settings),
// so the rest of the system never observes "missing settings". It
// holds no mutable state of its own; side effects are confined to the
// injected store.Records and store.KV.
//
// Store failures propagate as *PersistenceError carrying the
// collection and operation. Callers surface a warning and keep their
// in-memory state authoritative - a failed save never rolls back
// memory (last-known-good).
package vault
