// Package assoc resolves references between records.
//
// A record refers to another through a referential attribute holding the
// target's id (singular) or a sorted set of ids (plural). A resolver wraps
// one such attribute of one record and loads the targets lazily through a
// Lookup, memoizing the result until Reset. Setters keep both sides of a
// linked association consistent; the caller persists the mutated records.
//
// Resolvers are not safe for concurrent use.
package assoc

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/ridge/karst/record"
	"golang.org/x/exp/slices"
)

// Arity says how many targets an association refers to.
type Arity string

// Arity values
const (
	Singular Arity = "singular"
	Plural   Arity = "plural"
)

// Decl declares one side of an association.
type Decl struct {
	Name  string // association name, for errors and logging
	Attr  string // referential attribute on the owning record
	Arity Arity

	// Inverse is the declaration of the opposite side, if the association
	// is bidirectional. Wired with Link.
	Inverse *Decl
}

// Link makes two declarations inverses of each other. It panics if either
// side is already linked.
func Link(a, b *Decl) {
	if a.Inverse != nil || b.Inverse != nil {
		panic(fmt.Sprintf("assoc: %s and %s are already linked", a.Name, b.Name))
	}
	a.Inverse = b
	b.Inverse = a
}

// Lookup fetches a record by id.
type Lookup[T record.Record] func(ctx context.Context, id string) (T, bool, error)

// Association errors
var (
	ErrTargetNotIdentified = errors.New("target record has no id")
	ErrSourceNotIdentified = errors.New("source record has no id")
)

// associate records the back-reference to sourceID on the target.
func associate(inverse *Decl, target record.Record, sourceID string) error {
	switch inverse.Arity {
	case Singular:
		return target.SetAttribute(inverse.Attr, sourceID)
	case Plural:
		ids := idsOf(target.Attributes()[inverse.Attr])
		return target.SetAttribute(inverse.Attr, withID(ids, sourceID))
	}
	panic(fmt.Sprintf("assoc: %s has unknown arity %q", inverse.Name, inverse.Arity))
}

// disassociate removes the back-reference to sourceID from the target. A
// singular inverse pointing elsewhere is left alone.
func disassociate(inverse *Decl, target record.Record, sourceID string) error {
	switch inverse.Arity {
	case Singular:
		if idOf(target.Attributes()[inverse.Attr]) != sourceID {
			return nil
		}
		return target.SetAttribute(inverse.Attr, nil)
	case Plural:
		ids := idsOf(target.Attributes()[inverse.Attr])
		return target.SetAttribute(inverse.Attr, withoutID(ids, sourceID))
	}
	panic(fmt.Sprintf("assoc: %s has unknown arity %q", inverse.Name, inverse.Arity))
}

// idOf reads a referential attribute value as an id. Anything but a
// string-kind value reads as blank.
func idOf(v any) string {
	if v == nil {
		return ""
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return ""
	}
	return rv.String()
}

// idsOf reads a referential attribute value as a normalized id set: sorted
// and deduplicated. The value may be a slice of any string-kind type.
func idsOf(v any) []string {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil
	}
	ids := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		ev := rv.Index(i)
		if ev.Kind() == reflect.Interface {
			ev = ev.Elem()
		}
		if ev.Kind() != reflect.String || ev.Len() == 0 {
			continue
		}
		ids = append(ids, ev.String())
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

func withID(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return ids
	}
	ids = append(slices.Clone(ids), id)
	slices.Sort(ids)
	return ids
}

func withoutID(ids []string, id string) []string {
	i := slices.Index(ids, id)
	if i == -1 {
		return ids
	}
	return append(slices.Clone(ids[:i]), ids[i+1:]...)
}
