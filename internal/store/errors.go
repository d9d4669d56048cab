package store

import "errors"

// Sentinel errors returned by the record store. Callers match with
// errors.Is; all wrapped errors preserve the underlying cause.
var (
	// ErrStoreUnavailable indicates the storage engine could not be
	// opened (quota, disabled storage, bad path). Fatal to persistence
	// but not to in-memory operation - callers fall back to Memory.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound indicates no record exists under the requested id.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateID indicates Add was called with an id that already
	// exists in the collection. Put upserts and never returns this.
	ErrDuplicateID = errors.New("duplicate record id")

	// ErrUnknownCollection indicates an operation named a collection
	// that was not registered at open time.
	ErrUnknownCollection = errors.New("unknown collection")
)
