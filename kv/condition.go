package kv

import (
	"encoding/json"

	"go.uber.org/zap/zapcore"
)

// Condition restricts a write or delete. The zero value is unconditional.
//
// Its JSON form is {"ifIdsEqual":[...]}, {"unlessExists":true} or {}.
type Condition struct {
	ifIDs  IDSet
	absent bool
}

// IfIDsEqual returns a condition requiring the entry to exist with exactly
// the given id set.
func IfIDsEqual(ids IDSet) Condition {
	return Condition{ifIDs: ids.Clone()}
}

// IfAbsent returns a condition requiring the entry to not exist.
func IfAbsent() Condition {
	return Condition{absent: true}
}

// Unconditional reports whether the condition allows any state.
func (c Condition) Unconditional() bool {
	return c.ifIDs == nil && !c.absent
}

// RequiresAbsence reports whether the condition requires the entry to not
// exist.
func (c Condition) RequiresAbsence() bool {
	return c.absent
}

// ExpectedIDs returns the id set the entry must hold, or nil if the condition
// does not name one.
func (c Condition) ExpectedIDs() IDSet {
	return c.ifIDs
}

// Holds reports whether the condition is satisfied by the given state of an
// entry. exists reports whether the entry is present; entry is consulted only
// when it is.
func (c Condition) Holds(entry *Entry, exists bool) bool {
	switch {
	case c.absent:
		return !exists
	case c.ifIDs != nil:
		return exists && c.ifIDs.Equal(entry.IDs)
	default:
		return true
	}
}

func (c Condition) String() string {
	switch {
	case c.absent:
		return "unless exists"
	case c.ifIDs != nil:
		return "if ids equal"
	default:
		return "unconditional"
	}
}

// MarshalLogObject implements zapcore.ObjectMarshaler to allow logging of Condition with zap.Object
func (c Condition) MarshalLogObject(e zapcore.ObjectEncoder) error {
	if c.absent {
		e.AddBool("unlessExists", true)
	}
	if c.ifIDs != nil {
		if err := e.AddArray("ifIdsEqual", c.ifIDs); err != nil {
			return err
		}
	}
	return nil
}

type conditionJSON struct {
	IfIDsEqual   *[]string `json:"ifIdsEqual,omitempty"`
	UnlessExists bool      `json:"unlessExists,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (c Condition) MarshalJSON() ([]byte, error) {
	var cj conditionJSON
	if c.ifIDs != nil {
		ids := c.ifIDs.Sorted()
		cj.IfIDsEqual = &ids
	}
	cj.UnlessExists = c.absent
	return json.Marshal(cj)
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Condition) UnmarshalJSON(data []byte) error {
	var cj conditionJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return err
	}
	*c = Condition{absent: cj.UnlessExists}
	if cj.IfIDsEqual != nil {
		c.ifIDs = NewIDSet(*cj.IfIDsEqual...)
	}
	return nil
}
