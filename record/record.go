// Package record defines the view of stored entities that index maintenance
// and reference resolution work with.
//
// The caller's persistence layer owns the records themselves; karst only
// needs identity, attribute values and dirty-attribute tracking. Map is a
// schemaless implementation for tests and dynamic callers; Tracked binds a
// surveyed Go struct to the contract.
package record

// Change describes one dirty attribute: the value at the last save point and
// the current value. A nil Before means the attribute had no value.
type Change struct {
	Before, After any
}

// Record is a stored entity as seen by index maintenance and reference
// resolution.
type Record interface {
	// ID returns the record's primary key, or "" if it has not been assigned
	// one yet.
	ID() string

	// Persisted reports whether the record has been stored at least once.
	Persisted() bool

	// Attributes returns the current attribute values by attribute name.
	// The returned map is the caller's to keep; mutating it does not affect
	// the record.
	Attributes() map[string]any

	// Changes returns the attributes modified since the last save point.
	Changes() map[string]Change

	// SetAttribute modifies an attribute, marking it dirty. Schema-bound
	// implementations fail on attributes their schema does not have.
	SetAttribute(name string, value any) error
}
