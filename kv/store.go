// Package kv defines the contract between the index engine and the key-value
// backends that hold index tables.
//
// A backend stores entries addressed by (table, key) and supports exactly
// three operations: point read, conditional write and conditional delete.
// Conditions are the only concurrency primitive: a write or delete that names
// the expected id set (or requires absence) fails with ErrConditionFailed when
// the stored state differs, and the caller re-reads and retries.
package kv

import (
	"context"
	"errors"
)

// ErrConditionFailed is returned by Store.Write and Store.Delete when the
// supplied condition does not hold against the stored state. Implementations
// may wrap it; check with errors.Is.
var ErrConditionFailed = errors.New("condition failed")

// Store is a key-value backend holding index tables.
//
// Implementations must apply conditions atomically with respect to other
// writers of the same entry. They do not retry: transient errors and failed
// conditions are both reported to the caller.
type Store interface {
	// Read retrieves the entry at the given key. The second return value
	// reports whether the entry exists.
	Read(ctx context.Context, table string, key Key) (Entry, bool, error)

	// Write stores the entry if the condition holds against the current state
	// of the entry at the same key, and fails with ErrConditionFailed
	// otherwise.
	Write(ctx context.Context, table string, entry Entry, cond Condition) error

	// Delete removes the entry at the given key if the condition holds, and
	// fails with ErrConditionFailed otherwise. Unconditional deletion of an
	// absent entry succeeds.
	Delete(ctx context.Context, table string, key Key, cond Condition) error
}

// Lister is an optional extension of Store for administrative tooling.
// It is not used on the index maintenance path.
type Lister interface {
	// List calls fn for every entry of the table in unspecified order.
	// A non-nil error from fn stops the iteration and is returned as is.
	List(ctx context.Context, table string, fn func(Entry) error) error
}
