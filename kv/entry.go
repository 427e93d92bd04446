package kv

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap/zapcore"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Key addresses one entry within a table: a string hash value and, for ranged
// tables, a numeric range value.
type Key struct {
	Hash  string   `json:"hash"`
	Range *float64 `json:"range,omitempty"`
}

// HashKey returns a key with no range value.
func HashKey(hash string) Key {
	return Key{Hash: hash}
}

// RangedKey returns a key with a range value.
func RangedKey(hash string, rng float64) Key {
	return Key{Hash: hash, Range: &rng}
}

// Ranged reports whether the key carries a range value.
func (k Key) Ranged() bool {
	return k.Range != nil
}

// Equal reports whether two keys address the same entry.
func (k Key) Equal(other Key) bool {
	if k.Hash != other.Hash || k.Ranged() != other.Ranged() {
		return false
	}
	return !k.Ranged() || *k.Range == *other.Range
}

func (k Key) String() string {
	if k.Ranged() {
		return fmt.Sprintf("%s@%v", k.Hash, *k.Range)
	}
	return k.Hash
}

// MarshalLogObject implements zapcore.ObjectMarshaler to allow logging of Key with zap.Object
func (k Key) MarshalLogObject(e zapcore.ObjectEncoder) error {
	e.AddString("hash", k.Hash)
	if k.Ranged() {
		e.AddFloat64("range", *k.Range)
	}
	return nil
}

// IDSet is a set of record ids. Its JSON form is a sorted array of strings.
type IDSet map[string]struct{}

// NewIDSet returns a set of the given ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is a member.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id into the set.
func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

// Remove deletes id from the set.
func (s IDSet) Remove(id string) {
	delete(s, id)
}

// Clone returns an independent copy of the set. Clone of nil is an empty set.
func (s IDSet) Clone() IDSet {
	c := make(IDSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Equal reports whether two sets have the same members.
func (s IDSet) Equal(other IDSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// Sorted returns the members in ascending order.
func (s IDSet) Sorted() []string {
	ids := maps.Keys(s)
	slices.Sort(ids)
	return ids
}

// MarshalJSON implements json.Marshaler
func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON implements json.Unmarshaler
func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}

// MarshalLogArray implements zapcore.ArrayMarshaler to allow logging of IDSet with zap.Array
func (s IDSet) MarshalLogArray(e zapcore.ArrayEncoder) error {
	for _, id := range s.Sorted() {
		e.AppendString(id)
	}
	return nil
}

// Entry is one row of an index table: the set of ids of the records whose
// derived key currently equals Key.
type Entry struct {
	Key Key   `json:"key"`
	IDs IDSet `json:"ids"`
}

// MarshalLogObject implements zapcore.ObjectMarshaler to allow logging of Entry with zap.Object
func (entry Entry) MarshalLogObject(e zapcore.ObjectEncoder) error {
	if err := e.AddObject("key", entry.Key); err != nil {
		return err
	}
	return e.AddArray("ids", entry.IDs)
}
