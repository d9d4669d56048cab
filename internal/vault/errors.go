package vault

import "fmt"

// PersistenceError wraps a store failure with the collection and
// operation that produced it. The underlying cause is preserved for
// errors.Is/As (store.ErrNotFound, store.ErrDuplicateID,
// store.ErrStoreUnavailable all remain matchable).
type PersistenceError struct {
	Collection string
	Op         string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistErr(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Collection: collection, Op: op, Err: err}
}
